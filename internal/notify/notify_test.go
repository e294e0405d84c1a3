package notify

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

func newTestStore(errTTL, okTTL time.Duration) *Store {
	return NewStore(Config{
		ErrorTTL:   errTTL,
		SuccessTTL: okTTL,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(Config{})

	if s.errTTL != DefaultErrorTTL {
		t.Errorf("errTTL = %v, want %v", s.errTTL, DefaultErrorTTL)
	}
	if s.okTTL != DefaultSuccessTTL {
		t.Errorf("okTTL = %v, want %v", s.okTTL, DefaultSuccessTTL)
	}
	if snap := s.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("Snapshot() = %+v, want empty", snap)
	}
}

func TestStore_LatestMessageWins(t *testing.T) {
	s := newTestStore(time.Minute, time.Minute)
	defer s.Clear()

	s.ReportError(domain.NewNotice(domain.ErrEmptyCart, "first"))
	s.ReportError(domain.NewNotice(domain.ErrEmptyCart, "second"))
	s.ReportSuccess("saved")
	s.ReportSuccess("saved again")

	snap := s.Snapshot()
	if snap.Error != "second" {
		t.Errorf("Error = %q, want second", snap.Error)
	}
	if snap.Success != "saved again" {
		t.Errorf("Success = %q, want saved again", snap.Success)
	}
}

func TestStore_SlotsAreIndependent(t *testing.T) {
	s := newTestStore(200*time.Millisecond, 100*time.Millisecond)

	s.ReportError(domain.NewNotice(domain.ErrBusy, "boom"))
	s.ReportSuccess("done")

	snap := s.Snapshot()
	if snap.Error != "boom" || snap.Success != "done" {
		t.Fatalf("Snapshot() = %+v, want both visible", snap)
	}

	time.Sleep(150 * time.Millisecond)
	snap = s.Snapshot()
	if snap.Success != "" {
		t.Errorf("Success = %q, want cleared after its own delay", snap.Success)
	}
	if snap.Error != "boom" {
		t.Errorf("Error = %q, want still visible", snap.Error)
	}

	time.Sleep(150 * time.Millisecond)
	if snap := s.Snapshot(); snap.Error != "" {
		t.Errorf("Error = %q, want cleared", snap.Error)
	}
}

func TestStore_NewMessageRestartsTimer(t *testing.T) {
	s := newTestStore(200*time.Millisecond, time.Minute)

	s.ReportError(domain.NewNotice(domain.ErrBusy, "old"))
	time.Sleep(120 * time.Millisecond)
	s.ReportError(domain.NewNotice(domain.ErrBusy, "new"))

	// past the first message's deadline
	time.Sleep(120 * time.Millisecond)
	if got := s.Snapshot().Error; got != "new" {
		t.Fatalf("Error = %q, want new", got)
	}

	time.Sleep(200 * time.Millisecond)
	if got := s.Snapshot().Error; got != "" {
		t.Errorf("Error = %q, want cleared", got)
	}
}

func TestStore_StaleTimerIgnored(t *testing.T) {
	s := newTestStore(time.Minute, time.Minute)
	defer s.Clear()

	s.ReportSuccess("first")
	staleGen := s.okSlot.gen
	s.ReportSuccess("second")

	// simulate the first timer firing after it was superseded
	s.expire(KindSuccess, staleGen)

	if got := s.Snapshot().Success; got != "second" {
		t.Errorf("Success = %q, want second", got)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(50*time.Millisecond, 50*time.Millisecond)

	s.ReportError(errors.New("x"))
	s.ReportSuccess("y")
	s.Clear()

	if snap := s.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("Snapshot() = %+v, want empty", snap)
	}
	if s.errSlot.timer != nil || s.okSlot.timer != nil {
		t.Error("Clear() should cancel timers")
	}

	// a message set after Clear keeps its full lifetime
	s.ReportSuccess("after")
	if got := s.Snapshot().Success; got != "after" {
		t.Errorf("Success = %q, want after", got)
	}
}

func TestStore_ReportError_UserSafeText(t *testing.T) {
	s := newTestStore(time.Minute, time.Minute)
	defer s.Clear()

	s.ReportError(errors.New("dial tcp 127.0.0.1:8000: connection refused"))
	if got := s.Snapshot().Error; got != domain.FallbackMessage {
		t.Errorf("Error = %q, want fallback", got)
	}

	s.ReportError(nil)
	if got := s.Snapshot().Error; got != domain.FallbackMessage {
		t.Errorf("ReportError(nil) should not change the slot, got %q", got)
	}
}

func TestStore_Current(t *testing.T) {
	s := newTestStore(time.Minute, time.Minute)
	defer s.Clear()

	if _, ok := s.Current(KindError); ok {
		t.Error("Current(error) should be empty")
	}

	before := time.Now()
	s.ReportSuccess("ok")

	n, ok := s.Current(KindSuccess)
	if !ok {
		t.Fatal("Current(success) missing")
	}
	if n.Kind != KindSuccess || n.Text != "ok" {
		t.Errorf("Current() = %+v", n)
	}
	if n.ExpiresAt.Before(before.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want at least a minute out", n.ExpiresAt)
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(time.Minute, time.Minute)
	defer s.Clear()

	var mu sync.Mutex
	var got []Notification
	unsubscribe := s.Subscribe(func(n Notification) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, n)
	})

	s.ReportSuccess("one")
	s.ReportError(domain.NewNotice(domain.ErrBusy, "two"))
	unsubscribe()
	s.ReportSuccess("three")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("listener saw %d notifications, want 2", len(got))
	}
	if got[0].Text != "one" || got[1].Kind != KindError {
		t.Errorf("listener saw %+v", got)
	}
}

func TestStore_Concurrency(t *testing.T) {
	s := newTestStore(10*time.Millisecond, 10*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.ReportSuccess("ok")
		}()
		go func() {
			defer wg.Done()
			s.ReportError(errors.New("bad"))
		}()
		go func() {
			defer wg.Done()
			s.Snapshot()
		}()
	}
	wg.Wait()
	s.Clear()
}
