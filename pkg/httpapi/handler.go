package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/requestid"
)

// HandlerFunc handles a request whose JSON body has already been bound
// into req.
type HandlerFunc[R any] func(r *http.Request, req R) Response

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error turns err into a Response. Wrap maps it to a status code and an
// error envelope.
func Error(err error) Response {
	return errorResponse{err: err}
}

type wrapConfig struct {
	optionalBody bool
	noBody       bool
}

type wrapOption func(*wrapConfig)

// optionalBody accepts requests without a body.
func optionalBody() wrapOption {
	return func(c *wrapConfig) { c.optionalBody = true }
}

// noBody skips binding entirely.
func noBody() wrapOption {
	return func(c *wrapConfig) { c.noBody = true }
}

// wrap converts a typed HandlerFunc to http.HandlerFunc.
func wrap[R any](a *API, h HandlerFunc[R], opts ...wrapOption) http.HandlerFunc {
	cfg := &wrapConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		if !cfg.noBody {
			if err := bindJSON(r, &req, a.maxBodyBytes, cfg.optionalBody); err != nil {
				a.writeError(w, r, err)
				return
			}
		}

		resp := h(r, req)
		if resp == nil {
			NoContent().Render(w, r)
			return
		}
		if e, ok := resp.(errorResponse); ok {
			a.writeError(w, r, e.err)
			return
		}
		if err := resp.Render(w, r); err != nil {
			a.log.ErrorContext(r.Context(), "failed to render response",
				logger.Error(err),
				logger.RequestID(requestid.FromContext(r.Context())),
			)
		}
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr, opts := classify(err)

	if httpErr.Code >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			slog.String("path", r.URL.Path),
			logger.RequestID(requestid.FromContext(r.Context())),
		)
	} else {
		a.log.DebugContext(r.Context(), "request rejected",
			slog.String("reason", httpErr.Key),
			slog.String("path", r.URL.Path),
		)
	}

	if rerr := JSONError(httpErr, opts...).Render(w, r); rerr != nil {
		a.log.ErrorContext(r.Context(), "failed to render error response", logger.Error(rerr))
	}
}
