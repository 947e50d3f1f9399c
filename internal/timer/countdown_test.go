package timer

import (
	"testing"
	"time"
)

func TestCountdownExpiresOnce(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Stop()

	select {
	case <-c.Expired():
	case <-time.After(time.Second):
		t.Fatal("countdown never expired")
	}

	// A closed channel stays readable but the signal fired exactly once;
	// both reads observing the close is the contract.
	select {
	case <-c.Expired():
	default:
		t.Fatal("expired channel should remain closed")
	}
}

func TestCountdownStopPreemptsExpiry(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.Stop()

	select {
	case <-c.Expired():
		t.Fatal("stopped countdown must not expire")
	case <-time.After(120 * time.Millisecond):
	}
}

func TestCountdownStopAfterExpiryIsSafe(t *testing.T) {
	c := New(10 * time.Millisecond)
	<-c.Expired()
	c.Stop()
	c.Stop() // repeated Stop must not panic
}

func TestCountdownRemainingClamps(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	if r := c.Remaining(); r <= 0 || r > 10*time.Millisecond {
		t.Fatalf("fresh countdown remaining out of range: %v", r)
	}

	<-c.Expired()
	time.Sleep(5 * time.Millisecond)
	if r := c.Remaining(); r != 0 {
		t.Fatalf("expected zero remaining after expiry, got %v", r)
	}
}
