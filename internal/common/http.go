package common

import (
	"net"
	"net/http"
	"net/netip"
)

// ClientIP returns the caller address from RemoteAddr. Proxy headers are
// trusted only through chi's RealIP, which rewrites RemoteAddr upstream of
// every handler. IPv4-mapped IPv6 addresses are unmapped so both forms share
// one rate-limit key.
func ClientIP(r *http.Request) string {
	if r == nil || r.RemoteAddr == "" {
		return ""
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	return addr.Unmap().String()
}
