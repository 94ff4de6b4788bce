package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/cvbuilder/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:51234",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for wins over remote addr",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4",
			want:       "198.51.100.4",
		},
		{
			name:       "first forwarded-for entry wins",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4, 10.0.0.2, 10.0.0.3",
			want:       "198.51.100.4",
		},
		{
			name:       "forwarded-for entries with spaces",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "  198.51.100.4 , 10.0.0.2",
			want:       "198.51.100.4",
		},
		{
			name:       "invalid forwarded-for falls back to remote addr",
			remoteAddr: "203.0.113.7:51234",
			forwarded:  "not-an-ip",
			want:       "203.0.113.7",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:51234",
			want:       "2001:db8::1",
		},
		{
			name:       "unparseable remote addr returned raw",
			remoteAddr: "garbage",
			want:       "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}
