// Package clientip extracts the client IP address from HTTP requests.
//
// X-Forwarded-For is consulted first (leftmost entry, the original
// client), falling back to the transport-layer peer address. Values are
// validated and normalized with net.ParseIP; if nothing valid is found
// the raw RemoteAddr is returned so the caller always gets a non-empty
// rate-limiting key.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client IP for the given request.
func GetIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// May contain multiple IPs: "client, proxy1, proxy2".
		first, _, _ := strings.Cut(xff, ",")
		if ip := normalize(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := normalize(host); ip != "" {
			return ip
		}
	}
	return r.RemoteAddr
}

// normalize validates and canonicalizes an IP string, returning ""
// for anything unparseable or the meaningless 0.0.0.0.
func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
