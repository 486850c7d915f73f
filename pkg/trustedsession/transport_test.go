package trustedsession_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

func TestHeaderTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []trustedsession.HeaderOption
		header  string
		want    string
		wantErr error
	}{
		{name: "plain token", header: "abc", want: "abc"},
		{name: "trims whitespace", header: "  abc ", want: "abc"},
		{name: "missing header", header: "", wantErr: trustedsession.ErrSessionNotFound},
		{name: "prefix stripped", opts: []trustedsession.HeaderOption{trustedsession.WithHeaderPrefix("Bearer ")}, header: "Bearer abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := trustedsession.NewHeaderTransport("", tt.opts...)
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set(trustedsession.DefaultHeader, tt.header)
			}

			got, err := tr.GetToken(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("set and clear", func(t *testing.T) {
		t.Parallel()

		tr := trustedsession.NewHeaderTransport("X-Device")
		w := httptest.NewRecorder()
		exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		tr.SetToken(w, "tok", exp)
		assert.Equal(t, "tok", w.Header().Get("X-Device"))
		assert.Equal(t, "2026-01-01T00:00:00Z", w.Header().Get("X-Device-Expires"))

		tr.ClearToken(w)
		assert.Empty(t, w.Header().Get("X-Device"))
		assert.Empty(t, w.Header().Get("X-Device-Expires"))
	})
}
