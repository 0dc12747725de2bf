package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	ti, generated, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if generated {
		t.Error("generated = true with explicit secret")
	}

	token, exp, err := ti.Issue("session-1", "grammar")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := ti.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.SessionID != "session-1" || claims.Kind != "grammar" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenIssuerRejects(t *testing.T) {
	ti, _, _ := NewTokenIssuer("secret-a", time.Hour)
	other, _, _ := NewTokenIssuer("secret-b", time.Hour)
	expired, _, _ := NewTokenIssuer("secret-a", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	foreign, _, _ := other.Issue("s", "matching")
	stale, _, _ := expired.Issue("s", "matching")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ti.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenIssuerGeneratesSecret(t *testing.T) {
	ti, generated, err := NewTokenIssuer("", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !generated || len(ti.secret) == 0 {
		t.Errorf("generated = %v, secret length %d", generated, len(ti.secret))
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other client rejected")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("request after window rejected")
	}

	now = now.Add(5 * time.Minute)
	rl.sweep()
	rl.mu.RLock()
	left := len(rl.visitors)
	rl.mu.RUnlock()
	if left != 0 {
		t.Errorf("visitors after sweep = %d, want 0", left)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	for i := 0; i < 100; i++ {
		if !rl.Allow("x") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:1", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "127.0.0.1:1", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBearerOrCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie"})
	if got := BearerOrCookie(r); got != "abc" {
		t.Errorf("BearerOrCookie() = %q, want abc", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie"})
	if got := BearerOrCookie(r); got != "cookie" {
		t.Errorf("BearerOrCookie() = %q, want cookie", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := BearerOrCookie(r); got != "" {
		t.Errorf("BearerOrCookie() = %q, want empty", got)
	}
}

func TestCreateSessionCookieSecureBehindProxy(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	c := CreateSessionCookie(r, "v", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly || c.Name != SessionCookieName {
		t.Errorf("cookie = %+v", c)
	}
}
