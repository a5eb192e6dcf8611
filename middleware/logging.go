package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/relayhttp/relay/core/handler"
	"github.com/relayhttp/relay/core/logger"
)

// statusWriter is implemented by the router's response writer.
type statusWriter interface {
	Status() int
	Written() bool
}

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level
	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration
}

// Logging creates a request logging middleware writing to the given
// logger. Pass nil to use slog.Default().
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. Each request is logged once, after the handler's
// response has rendered, with method, path, status, and duration.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			resp := next(ctx)
			if resp == nil {
				// Preserve the router's nil-result handling; log what
				// is known at this point.
				cfg.Logger.LogAttrs(ctx, cfg.LogLevel, "request",
					logger.Method(ctx.Request().Method),
					logger.Path(ctx.Request().URL.Path),
					logger.Elapsed(start),
				)
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				err := resp(w, r)

				duration := time.Since(start)
				status := 0
				if sw, ok := w.(statusWriter); ok {
					status = sw.Status()
				}

				attrs := []slog.Attr{
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Status(status),
					logger.Duration(duration),
					logger.RequestID(GetRequestID(ctx)),
					logger.Error(err),
				}

				level := cfg.LogLevel
				if duration > cfg.SlowRequestThreshold {
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow", true))
				}
				cfg.Logger.LogAttrs(ctx, level, "request", attrs...)

				return err
			}
		}
	}
}
