// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUID, stores it in the request context and echoes it in the
// response. LogExtractor plugs the ID into loggers built by pkg/logger:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LogExtractor()))
//	handler := requestid.Middleware(mux)
package requestid
