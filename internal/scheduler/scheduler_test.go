package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestEvery_RunsJob(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs atomic.Int32
	s.Every("tick", 10*time.Millisecond, func(_ context.Context) error {
		runs.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	if runs.Load() == 0 {
		t.Error("job never ran")
	}
}

func TestEvery_SameNameSerialized(t *testing.T) {
	s := New(zap.NewNop())

	var concurrent, peak atomic.Int32
	s.Every("slow", 10*time.Millisecond, func(_ context.Context) error {
		n := concurrent.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(50 * time.Millisecond)
		concurrent.Add(-1)
		return nil
	})

	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if peak.Load() > 1 {
		t.Errorf("runs of one job overlapped, peak concurrency %d", peak.Load())
	}
}

func TestStop_WaitsForInflightRun(t *testing.T) {
	s := New(zap.NewNop())

	done := make(chan struct{})
	var finished, once atomic.Bool
	s.Every("inflight", 10*time.Millisecond, func(_ context.Context) error {
		time.Sleep(40 * time.Millisecond)
		finished.Store(true)
		if once.CompareAndSwap(false, true) {
			close(done)
		}
		return nil
	})

	// Let one run start.
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	default:
		t.Fatal("Stop returned before the in-flight run finished")
	}
	if !finished.Load() {
		t.Error("in-flight run did not complete")
	}
}

func TestEvery_IndependentJobsRunConcurrently(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var a, b atomic.Int32
	s.Every("a", 10*time.Millisecond, func(_ context.Context) error {
		a.Add(1)
		return nil
	})
	s.Every("b", 10*time.Millisecond, func(_ context.Context) error {
		b.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	if a.Load() == 0 || b.Load() == 0 {
		t.Errorf("both jobs must run, got a=%d b=%d", a.Load(), b.Load())
	}
}
