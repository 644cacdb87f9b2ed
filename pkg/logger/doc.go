// Package logger builds configured slog loggers with context attribute
// injection.
//
// The factory applies environment presets (development: text/debug,
// production: JSON/info) and wraps the handler with a decorator that pulls
// request-scoped attributes out of the context at log time. Combined with
// tenant.LoggerExtractor this stamps every record produced during a request
// with the resolved tenant id and resolution source.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "eventpix"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
package logger
