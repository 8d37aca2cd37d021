package executor

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func bufferLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSerial_RunsInOrder(t *testing.T) {
	s := NewSerial("ordered")

	var got []int
	for i := 0; i < 100; i++ {
		s.Schedule(func() { got = append(got, i) })
	}
	s.Close()

	if len(got) != 100 {
		t.Fatalf("ran %d items, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d ran as %d", i, v)
		}
	}
}

func TestSerial_NeverRunsInline(t *testing.T) {
	s := NewSerial("async")
	defer s.Close()

	release := make(chan struct{})
	ran := make(chan struct{})
	returned := make(chan struct{})

	go func() {
		s.Schedule(func() {
			<-release
			close(ran)
		})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Schedule blocked on the work item")
	}

	close(release)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("work never ran")
	}
}

func TestSerial_OneAtATime(t *testing.T) {
	s := NewSerial("exclusive")

	var active, maxActive int32
	for i := 0; i < 50; i++ {
		s.Schedule(func() {
			n := atomic.AddInt32(&active, 1)
			if n > atomic.LoadInt32(&maxActive) {
				atomic.StoreInt32(&maxActive, n)
			}
			time.Sleep(100 * time.Microsecond)
			atomic.AddInt32(&active, -1)
		})
	}
	s.Close()

	if maxActive != 1 {
		t.Errorf("max concurrent work items = %d, want 1", maxActive)
	}
}

func TestSerial_CloseDrainsQueue(t *testing.T) {
	s := NewSerial("drain")

	block := make(chan struct{})
	var count int32
	s.Schedule(func() { <-block })
	for i := 0; i < 10; i++ {
		s.Schedule(func() { atomic.AddInt32(&count, 1) })
	}

	if s.Len() == 0 {
		t.Error("expected queued work while the first item blocks")
	}

	close(block)
	s.Close()

	if count != 10 {
		t.Errorf("ran %d queued items, want 10", count)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", s.Len())
	}
}

func TestSerial_ScheduleAfterCloseDrops(t *testing.T) {
	logger, buf := bufferLogger()
	s := NewSerial("closed", WithLogger(logger))
	s.Close()
	s.Close() // idempotent

	ran := false
	s.Schedule(func() { ran = true })

	if ran {
		t.Error("work ran after Close")
	}
	if !strings.Contains(buf.String(), "dropping work") {
		t.Errorf("expected drop to be logged, got %q", buf.String())
	}
}

func TestSerial_RecoversPanics(t *testing.T) {
	logger, buf := bufferLogger()
	s := NewSerial("panicky", WithLogger(logger))

	ran := false
	s.Schedule(func() { panic("boom") })
	s.Schedule(func() { ran = true })
	s.Close()

	if !ran {
		t.Error("work after a panic did not run")
	}
	if !strings.Contains(buf.String(), "executor work panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
	if s.Name() != "panicky" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestPool_RespectsLimit(t *testing.T) {
	p := NewPool("bounded", 3)

	var active, maxActive int32
	var mu sync.Mutex
	for i := 0; i < 30; i++ {
		p.Schedule(func() {
			n := atomic.AddInt32(&active, 1)
			mu.Lock()
			if n > maxActive {
				maxActive = n
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		})
	}
	p.Wait()

	if maxActive > 3 {
		t.Errorf("max concurrent work items = %d, want <= 3", maxActive)
	}
	if p.Limit() != 3 {
		t.Errorf("Limit() = %d, want 3", p.Limit())
	}
}

func TestPool_DefaultLimit(t *testing.T) {
	p := NewPool("default", 0)
	if p.Limit() < 1 {
		t.Errorf("Limit() = %d, want >= 1", p.Limit())
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	logger, buf := bufferLogger()
	p := NewPool("panicky", 2, WithLogger(logger))

	var count int32
	p.Schedule(func() { panic("boom") })
	p.Schedule(func() { atomic.AddInt32(&count, 1) })
	p.Wait()

	if count != 1 {
		t.Errorf("ran %d items, want 1", count)
	}
	if !strings.Contains(buf.String(), "executor work panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}
