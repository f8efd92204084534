package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerialisesSameKey(t *testing.T) {
	k := newKeyedMutex()
	ctx := context.Background()

	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(ctx, "doc")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inside.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, k.size())
}

func TestKeyedMutex_DistinctKeysProceed(t *testing.T) {
	k := newKeyedMutex()
	ctx := context.Background()

	unlockA, err := k.Lock(ctx, "a")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		unlock, err := k.Lock(ctx, "b")
		if err == nil {
			unlock()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}

	assert.Equal(t, 1, k.size())
	unlockA()
	assert.Zero(t, k.size())
}

func TestKeyedMutex_WaitHonoursContext(t *testing.T) {
	k := newKeyedMutex()

	unlock, err := k.Lock(context.Background(), "doc")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = k.Lock(ctx, "doc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, k.size())

	unlock()
	assert.Zero(t, k.size())

	// The key is usable again after an abandoned wait.
	unlock, err = k.Lock(context.Background(), "doc")
	require.NoError(t, err)
	unlock()
}
