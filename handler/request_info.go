package handler

import (
	"net"
	"net/http"
	"strings"
)

const maxDeviceInfoLen = 500

// ClientIP resolves the caller's network origin: first hop of X-Forwarded-For,
// then X-Real-IP, then the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// DeviceInfo returns the truncated User-Agent, or nil when absent.
// Absence is a first-class state, not an empty string.
func DeviceInfo(r *http.Request) *string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return nil
	}
	if len(ua) > maxDeviceInfoLen {
		ua = ua[:maxDeviceInfoLen]
	}
	return &ua
}
