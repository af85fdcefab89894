package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	calls int64
	err   error
}

func (f *fakePruner) PruneStale(ctx context.Context) (int, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestScheduler_TicksUntilCancelled(t *testing.T) {
	pruner := &fakePruner{}
	s := New(pruner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	assert.GreaterOrEqual(t, atomic.LoadInt64(&pruner.calls), int64(2))
}

func TestScheduler_KeepsRunningAfterPruneError(t *testing.T) {
	pruner := &fakePruner{err: errors.New("db down")}
	s := New(pruner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, atomic.LoadInt64(&pruner.calls), int64(2))
}
