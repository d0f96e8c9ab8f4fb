package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow("api.openai.com") {
		t.Error("first call should be allowed")
	}
	if !l.Allow("api.openai.com") {
		t.Error("second call within burst should be allowed")
	}
	if l.Allow("api.openai.com") {
		t.Error("third call should exceed burst")
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("api.openai.com") {
		t.Error("first host should be allowed")
	}
	if !l.Allow("localhost:11434") {
		t.Error("second host should have its own budget")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("slow.example.com") // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "slow.example.com"); err == nil {
		t.Error("expected Wait to fail once context expires")
	}
}

func TestNewLimiter_BurstFloor(t *testing.T) {
	l := NewLimiter(1, 0)
	if !l.Allow("h") {
		t.Error("burst floor of 1 should allow one call")
	}
}
