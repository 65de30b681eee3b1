// logger/logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequestStart logs the initiation of an HTTP request, including the HTTP method, URL, and headers.
// Headers are expected to be redacted by the caller.
func (d *defaultLogger) LogRequestStart(event string, requestID string, method string, url string, headers map[string][]string) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug("HTTP request started",
			zap.String("event", event),
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", url),
			zap.Any("headers", headers),
		)
	}
}

// LogRequestEnd logs the completion of an HTTP request, including the HTTP method, URL, status code, and duration.
func (d *defaultLogger) LogRequestEnd(event string, method string, url string, statusCode int, duration time.Duration) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug("HTTP request completed",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LogError logs an error that occurs during the processing of an HTTP request.
func (d *defaultLogger) LogError(event string, method string, url string, statusCode int, serverStatusMessage string, err error, rawResponse string) {
	if d.logLevel <= LogLevelError {
		errorMessage := ""
		if err != nil {
			errorMessage = err.Error()
		}
		d.logger.Error("Error during HTTP request",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.String("status_message", serverStatusMessage),
			zap.String("error_message", errorMessage),
			zap.String("raw_response", rawResponse),
		)
	}
}

// LogAuthTokenError logs a request rejected with an authorization failure that was not recovered.
func (d *defaultLogger) LogAuthTokenError(event string, method string, url string, statusCode int, err error) {
	if d.logLevel <= LogLevelWarn {
		d.logger.Warn("Authorization failure",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.Error(err),
		)
	}
}

// LogTokenRefresh logs the outcome of a token refresh. shared is true when the caller joined
// a refresh that another request had already started.
func (d *defaultLogger) LogTokenRefresh(event string, shared bool, rotated bool, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.Bool("shared", shared),
		zap.Bool("refresh_token_rotated", rotated),
		zap.Duration("duration", duration),
	}
	if err != nil {
		if d.logLevel <= LogLevelWarn {
			d.logger.Warn("Token refresh failed", append(fields, zap.Error(err))...)
		}
		return
	}
	if d.logLevel <= LogLevelInfo {
		d.logger.Info("Token refreshed", fields...)
	}
}
