package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/switchboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManager_SerializesSameSender(t *testing.T) {
	manager := session.NewManager()
	ctx := context.Background()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, "u1", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					old := atomic.LoadInt32(&maxInside)
					if n <= old || atomic.CompareAndSwapInt32(&maxInside, old, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond) // Simulate a slow dispatch
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside, "same sender must never run concurrently")
	assert.Equal(t, 0, manager.Held())
}

func TestManager_ParallelAcrossSenders(t *testing.T) {
	manager := session.NewManager()
	ctx := context.Background()

	// Both senders must be inside at the same time, otherwise this deadlocks.
	ready := make(chan struct{})
	var wg sync.WaitGroup
	var arrived int32

	for _, sender := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			_ = manager.WithLock(ctx, sender, func(context.Context) error {
				if atomic.AddInt32(&arrived, 1) == 2 {
					close(ready)
				}
				select {
				case <-ready:
				case <-time.After(2 * time.Second):
					t.Errorf("sender %s blocked by another sender", sender)
				}
				return nil
			})
		}(sender)
	}
	wg.Wait()
}

func TestManager_PropagatesErrors(t *testing.T) {
	manager := session.NewManager()
	boom := errors.New("boom")

	err := manager.WithLock(context.Background(), "u1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestManager_CanceledContext(t *testing.T) {
	manager := session.NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := manager.WithLock(ctx, "u1", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
