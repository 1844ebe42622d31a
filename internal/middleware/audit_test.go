package middleware

import (
	"strings"
	"testing"
)

func TestParseModule(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/requests/:id/accept", "requests"},
		{"/api/admin/tiers", "admin"},
		{"/api/webhooks/gateway", "webhooks"},
		{"/api/", "api"},
		{"", "api"},
	}

	for _, tt := range tests {
		if got := parseModule(tt.path); got != tt.want {
			t.Errorf("parseModule(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	body := `{"email":"a@b.com","password":"hunter2","api_key":"sk_live_abc","note":"keep"}`
	masked := maskSensitiveFields(body)

	if strings.Contains(masked, "hunter2") {
		t.Error("password value not masked")
	}
	if strings.Contains(masked, "sk_live_abc") {
		t.Error("api_key value not masked")
	}
	if !strings.Contains(masked, "a@b.com") || !strings.Contains(masked, "keep") {
		t.Error("non-sensitive values altered")
	}
}
