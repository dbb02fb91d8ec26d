package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-bubblegum/pkg/retry/backoff"
)

func TestRealSleeper(t *testing.T) {
	sleeperImpl = &realSleeper{}

	start := time.Now()
	n, err := Retry(context.Background(), func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)

	assert.NotNil(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 500*time.Millisecond <= time.Since(start))
	assert.True(t, 1*time.Second > time.Since(start))
}

func TestRetrier(t *testing.T) {
	retriableErr := errors.New("retriable")
	r := NewRetrier(Limit(5), RetriableErrors(retriableErr))

	// Happy path always goes through
	attempts, err := r.Retry(context.Background(), func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, uint(1), attempts)

	// Test ordering does not matter, by triggering 1 filter, then the other.
	attempts, err = r.Retry(context.Background(), func() error { return errors.New("unknown") })
	assert.Error(t, err)
	assert.Equal(t, uint(1), attempts)

	attempts, err = r.Retry(context.Background(), func() error { return retriableErr })
	assert.EqualError(t, retriableErr, err.Error())
	assert.Equal(t, uint(5), attempts)
}

func TestRetry_ContextDone(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	retriableErr := errors.New("retriable")
	attempts, err := Retry(ctx, func() error {
		calls++
		if calls == 3 {
			cancel()
		}
		return retriableErr
	}, RetriableErrors(retriableErr), Backoff(backoff.Constant(time.Millisecond), time.Millisecond))

	assert.Equal(t, retriableErr, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, 3, calls)
	assert.Len(t, ts.sleepTimes, 3)
}
