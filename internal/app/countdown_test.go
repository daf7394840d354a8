package app

import "testing"

func TestCountdownNilWithoutLimit(t *testing.T) {
	if NewCountdown(0) != nil || NewCountdown(-1) != nil {
		t.Fatalf("expected no countdown without a limit")
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	c := NewCountdown(1)
	if c.Remaining() != 60 {
		t.Fatalf("expected 60 seconds, got %d", c.Remaining())
	}

	expiries := 0
	for i := 0; i < 75; i++ {
		if c.Tick() {
			expiries++
			if i != 59 {
				t.Fatalf("expired on tick %d", i+1)
			}
		}
	}
	if expiries != 1 {
		t.Fatalf("expected one expiry, got %d", expiries)
	}
	if c.Remaining() != 0 || !c.Expired() {
		t.Fatalf("expected expired at zero, got %d", c.Remaining())
	}
}

func TestCountdownStopFreezes(t *testing.T) {
	c := NewCountdown(1)
	c.Tick()
	c.Stop()
	for i := 0; i < 100; i++ {
		if c.Tick() {
			t.Fatalf("stopped countdown must not expire")
		}
	}
	if c.Remaining() != 59 || !c.Stopped() || c.Expired() {
		t.Fatalf("unexpected state: remaining=%d stopped=%v expired=%v", c.Remaining(), c.Stopped(), c.Expired())
	}
}
