package trustedsession

import "context"

type metaContextKey struct{}

// WithMeta attaches device labels to ctx so the code that creates a session
// deep in a call chain can record where the request came from.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaContextKey{}, meta)
}

// MetaFromContext returns the labels attached by WithMeta, or a zero Meta.
func MetaFromContext(ctx context.Context) Meta {
	meta, _ := ctx.Value(metaContextKey{}).(Meta)
	return meta
}
