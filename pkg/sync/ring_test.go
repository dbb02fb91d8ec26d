package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		expected := r.partition(key)

		assert.True(t, expected >= 0 && expected < 64)
		for j := 0; j < 16; j++ {
			assert.Equal(t, expected, r.partition(key))
		}
	}
}

func TestRing_Distribution(t *testing.T) {
	partitions := 5
	iterations := 500000
	marginOfError := 0.25
	expectedFrequency := iterations / partitions

	r := newRing(partitions, 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.partition([]byte(fmt.Sprintf("key%d", i)))]++
	}

	assert.Len(t, hits, partitions)
	for _, count := range hits {
		assert.True(t, math.Abs(float64(count-expectedFrequency)) <= marginOfError*float64(expectedFrequency))
	}
}

func TestRing_SinglePartition(t *testing.T) {
	r := newRing(1, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.partition([]byte(fmt.Sprintf("key%d", i))))
	}
}
