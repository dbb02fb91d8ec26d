package sync

import (
	base "sync"
)

const (
	pointsPerStripe = 200
)

// StripedLock consistently maps an unbounded key space, such as asset ids, to
// a fixed set of mutexes. Two callers holding the same key always contend on
// the same mutex.
type StripedLock struct {
	locks []base.Mutex
	ring  *ring
}

// NewStripedLock returns a StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks: make([]base.Mutex, stripes),
		ring:  newRing(int(stripes), pointsPerStripe),
	}
}

// Get returns the mutex for key.
func (l *StripedLock) Get(key string) *base.Mutex {
	return &l.locks[l.ring.partition([]byte(key))]
}
