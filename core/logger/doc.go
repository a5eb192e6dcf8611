// Package logger provides structured logging utilities built on the
// standard slog package: a factory with environment-driven
// configuration and attribute helpers for common request-logging
// fields.
//
// Attribute helpers return the empty Attr for absent values, so they
// compose without nil checks:
//
//	log := logger.New(logger.WithFormat(logger.FormatText))
//	log.Info("request",
//		logger.Method("GET"),
//		logger.Path("/users/42"),
//		logger.Error(err), // no-op when err is nil
//	)
package logger
