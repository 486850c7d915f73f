// Package httpapi exposes the second-factor operations as a JSON API.
//
// The front end that owns primary login forwards requests with the caller in
// the X-User-ID header and, when configured, a shared bearer token:
//
//	api := httpapi.New(coordinator, cfg,
//		httpapi.WithLogger(log),
//		httpapi.WithIPLimiter(limiter),
//		httpapi.WithMetricsHandler(promhttp.Handler()),
//	)
//	srv.Run(ctx, api.Handler())
//
// Every response body is an envelope with either a data or an error field.
// Error codes are stable strings such as "invalid_code", "not_enabled" or
// "too_many_attempts". Dependency faults are reported as 503 and never as a
// wrong code.
package httpapi
