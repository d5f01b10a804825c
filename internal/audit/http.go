package audit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating address for an audit entry. Proxy
// headers take precedence over the socket peer: X-Forwarded-For carries the
// full hop chain and its first entry is the caller; X-Real-IP is the single
// address stamped by the edge proxy. RemoteAddr is the fallback, with the
// port stripped when present.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if chain := r.Header.Get("X-Forwarded-For"); chain != "" {
		first, _, _ := strings.Cut(chain, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if edge := strings.TrimSpace(r.Header.Get("X-Real-IP")); edge != "" {
		return edge
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
