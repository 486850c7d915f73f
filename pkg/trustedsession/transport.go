package trustedsession

import (
	"net/http"
	"strings"
	"time"
)

// DefaultHeader carries the trusted session token between client and server.
const DefaultHeader = "X-Trusted-Session"

// HeaderTransport reads and writes trusted session tokens in HTTP headers.
// Where the client keeps the token between requests is up to the client.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// HeaderOption is a functional option for HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a prefix expected before the token, such as "Bearer ".
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport creates a header transport. An empty name selects
// DefaultHeader.
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	if headerName == "" {
		headerName = DefaultHeader
	}
	t := &HeaderTransport{headerName: headerName}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the header name.
func (t *HeaderTransport) Name() string {
	return t.headerName
}

// GetToken extracts the token from the request header.
func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(t.headerName))
	if t.prefix != "" {
		value = strings.TrimPrefix(value, t.prefix)
	}
	if value == "" {
		return "", ErrSessionNotFound
	}
	return value, nil
}

// SetToken writes the token and its expiry to the response headers.
func (t *HeaderTransport) SetToken(w http.ResponseWriter, token string, expiresAt time.Time) {
	w.Header().Set(t.headerName, t.prefix+token)
	if !expiresAt.IsZero() {
		w.Header().Set(t.headerName+"-Expires", expiresAt.UTC().Format(time.RFC3339))
	}
}

// ClearToken removes the token headers from the response.
func (t *HeaderTransport) ClearToken(w http.ResponseWriter) {
	w.Header().Del(t.headerName)
	w.Header().Del(t.headerName + "-Expires")
}
