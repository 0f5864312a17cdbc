package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:4521",
			want:       "203.0.113.7",
		},
		{
			name:       "proxy headers ignored without trust",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "10.0.0.1",
		},
		{
			name:       "forwarded-for first entry wins",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			trustProxy: true,
			want:       "203.0.113.7",
		},
		{
			name:       "cf-connecting-ip preferred",
			remoteAddr: "10.0.0.1:80",
			headers: map[string]string{
				"CF-Connecting-IP": "198.51.100.3",
				"X-Forwarded-For":  "203.0.113.7",
			},
			trustProxy: true,
			want:       "198.51.100.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"127.0.0.1", "10.0.0.0/8", "", "not-an-ip"})

	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}
	if !m.Allow("127.0.0.1") {
		t.Error("exact IP should match")
	}
	if !m.Allow("10.42.0.9") {
		t.Error("CIDR member should match")
	}
	if m.Allow("192.168.1.1") {
		t.Error("unlisted IP should not match")
	}
	if m.Allow("garbage") {
		t.Error("unparseable IP should not match")
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("empty list should yield an empty matcher")
	}
}
