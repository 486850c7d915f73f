// Package clientip resolves the address of the client behind an HTTP request.
//
// Forwarding headers are only honored when the Resolver is told to trust
// them; a service reachable without a proxy must not let clients pick the
// address that per-IP throttling keys on.
package clientip

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Well-known forwarding headers.
const (
	HeaderCloudflare   = "CF-Connecting-IP"
	HeaderDigitalOcean = "DO-Connecting-IP"
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// Resolver extracts the client IP from a request.
type Resolver struct {
	headers []string
}

// New creates a Resolver that consults the given headers in order before
// falling back to RemoteAddr. With no headers only RemoteAddr is used.
func New(trustedHeaders ...string) *Resolver {
	hs := make([]string, 0, len(trustedHeaders))
	for _, h := range trustedHeaders {
		if h = strings.TrimSpace(h); h != "" {
			hs = append(hs, h)
		}
	}
	return &Resolver{headers: hs}
}

// GetIP returns the normalized client IP or an empty string when none of the
// sources holds a valid address. X-Forwarded-For contributes its first
// valid entry.
func (r *Resolver) GetIP(req *http.Request) string {
	for _, h := range r.headers {
		v := req.Header.Get(h)
		if v == "" {
			continue
		}
		if strings.EqualFold(h, HeaderForwardedFor) {
			for part := range strings.SplitSeq(v, ",") {
				if ip := parseIP(part); ip != "" {
					return ip
				}
			}
			continue
		}
		if ip := parseIP(v); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return parseIP(req.RemoteAddr)
	}
	return parseIP(host)
}

// Middleware stores the resolved client IP in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(WithContext(req.Context(), r.GetIP(req))))
	})
}

func parseIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || addr.Zone() != "" {
		return ""
	}
	return addr.Unmap().String()
}

type contextKey struct{}

// WithContext stores ip in ctx.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the IP stored by Middleware or an empty string.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}
