package logger

import (
	"github.com/deploymenttheory/go-menu-admin-client/headers/redact"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// redactingCore replaces the value of credential-bearing fields before they reach the encoder.
type redactingCore struct {
	zapcore.Core
}

// With redacts fields bound to a child logger as well.
func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{c.Core.With(redactFields(fields))}
}

// Check must be overridden so the entry is written through this core rather than the wrapped one.
func (c *redactingCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, c)
	}
	return checkedEntry
}

// Write serializes the Entry and any Fields supplied at the log site.
func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, field := range fields {
		if redact.IsSensitiveKey(field.Key) {
			out = append(out, zap.String(field.Key, redact.Redacted))
			continue
		}
		out = append(out, field)
	}
	return out
}
