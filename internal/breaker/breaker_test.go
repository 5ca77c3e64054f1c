package breaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

// fakeClock lets tests advance the breaker's notion of time.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, recovery time.Duration) (*Breaker, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	b := New("Test Service", threshold, recovery)
	b.now = clk.now
	return b, clk
}

func TestClosedSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Second)

	_ = b.Do(func() error { return errBoom })
	_ = b.Do(func() error { return errBoom })
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("success call: %v", err)
	}
	if b.failures != 0 {
		t.Fatalf("failures = %d after success, want 0", b.failures)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestThresholdOneTripsOnFirstFailure(t *testing.T) {
	b, _ := newTestBreaker(1, time.Second)

	if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("first call error = %v, want boom", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v after first failure, want open", b.State())
	}
}

func TestOpenRejectsWithoutInvoking(t *testing.T) {
	b, clk := newTestBreaker(1, time.Second)
	_ = b.Do(func() error { return errBoom })

	clk.advance(500 * time.Millisecond)
	invoked := false
	err := b.Do(func() error { invoked = true; return nil })

	var open *OpenError
	if !errors.As(err, &open) {
		t.Fatalf("error = %v, want *OpenError", err)
	}
	if open.Service != "Test Service" {
		t.Fatalf("OpenError.Service = %q", open.Service)
	}
	if invoked {
		t.Fatal("operation must not run while the breaker is open")
	}
}

func TestRecoveryAllowsTrial(t *testing.T) {
	b, clk := newTestBreaker(1, time.Second)
	_ = b.Do(func() error { return errBoom })

	clk.advance(1500 * time.Millisecond)
	invoked := false
	if err := b.Do(func() error { invoked = true; return nil }); err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if !invoked {
		t.Fatal("trial call must reach the operation")
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v after successful trial, want closed", b.State())
	}
	if b.failures != 0 {
		t.Fatalf("failures = %d after successful trial, want 0", b.failures)
	}
}

func TestTrialFailureReopensAndResetsTimer(t *testing.T) {
	b, clk := newTestBreaker(1, time.Second)
	_ = b.Do(func() error { return errBoom })

	clk.advance(time.Second)
	if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("trial error = %v, want boom", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v after failed trial, want open", b.State())
	}

	// Timer restarted: just under a full recovery period later the breaker
	// still rejects.
	clk.advance(900 * time.Millisecond)
	var open *OpenError
	if err := b.Do(func() error { return nil }); !errors.As(err, &open) {
		t.Fatalf("error = %v, want *OpenError before recovery elapses", err)
	}
}

func TestSingleHalfOpenTrial(t *testing.T) {
	b, clk := newTestBreaker(1, time.Second)
	_ = b.Do(func() error { return errBoom })
	clk.advance(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// While the trial is in flight, a second caller must be rejected.
	var open *OpenError
	if err := b.Do(func() error { return nil }); !errors.As(err, &open) {
		t.Fatalf("concurrent caller error = %v, want *OpenError", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("trial: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" ||
		StateHalfOpen.String() != "half-open" || State(42).String() != "unknown" {
		t.Fatal("unexpected state names")
	}
}
