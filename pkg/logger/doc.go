// Package logger builds *slog.Logger values for the service and provides
// attribute helpers that keep key names consistent across packages.
//
// New applies Option values over JSON output at info level and wraps the
// handler with NewContextHandler, which runs ContextExtractor callbacks on
// every record so request-scoped values such as the request ID appear
// without being passed explicitly.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "twofactord"),
//	    logger.WithConfig(cfg.Log),
//	    logger.WithContextExtractors(requestid.LogExtractor()),
//	)
//	log.InfoContext(ctx, "two-factor enabled",
//	    logger.UserID(userID),
//	    logger.Component("twofactor"),
//	)
//
// Error, UserID, RequestID and ClientIP return an empty attribute for nil or
// empty input, so callers can pass them unconditionally.
package logger
