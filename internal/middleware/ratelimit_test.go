package middleware

import (
	"testing"
)

func TestRateLimiterAllowsBurstThenDenies(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	limiter := rl.getLimiter("203.0.113.7")

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d within burst denied", i+1)
		}
	}
	if limiter.Allow() {
		t.Error("request beyond burst allowed")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.getLimiter("203.0.113.1").Allow() {
		t.Fatal("first client denied")
	}
	if !rl.getLimiter("203.0.113.2").Allow() {
		t.Error("second client throttled by first client's usage")
	}
}

func TestWebhookRateLimitDefaults(t *testing.T) {
	if WebhookRPS != 10 || WebhookBurst != 20 {
		t.Errorf("webhook limiter defaults = %d/%d, want 10/20", WebhookRPS, WebhookBurst)
	}
}
