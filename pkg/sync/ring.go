package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over the partitions [0, partitions).
type ring struct {
	points *treemap.Map // int64 hash -> int partition

	// first caches the partition at the lowest point, which owns every hash
	// past the highest point.
	first int
}

// newRing places each partition on the ring replicationFactor times.
func newRing(partitions int, replicationFactor uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	for partition := 0; partition < partitions; partition++ {
		name, _ := murmur3.Sum128([]byte(fmt.Sprintf("partition%d", partition)))

		var buf [12]byte
		binary.LittleEndian.PutUint64(buf[:8], name)
		for i := uint(0); i < replicationFactor; i++ {
			binary.LittleEndian.PutUint32(buf[8:], uint32(i))
			point, _ := murmur3.Sum128(buf[:])
			points.Put(int64(point), partition)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// partition returns the partition owning key.
func (r *ring) partition(key []byte) int {
	hash, _ := murmur3.Sum128(key)
	if _, partition := r.points.Ceiling(int64(hash)); partition != nil {
		return partition.(int)
	}
	return r.first
}
