package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Shared field keys so log queries stay consistent across components.
const (
	FieldComponent = "component"
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
)

// WithFields safely attaches the provided fields to the logger. A nil logger
// is replaced with a no-op one to avoid panics.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithComponent tags every entry with the owning subsystem name.
func WithComponent(logger *zap.Logger, name string) *zap.Logger {
	return WithFields(logger, zap.String(FieldComponent, name))
}

// WithCommonFields attaches the standard AI provider and model fields. Empty
// values are skipped to keep entries compact when information is missing.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if v := strings.TrimSpace(provider); v != "" {
		fields = append(fields, zap.String(FieldProvider, v))
	}
	if v := strings.TrimSpace(model); v != "" {
		fields = append(fields, zap.String(FieldModel, v))
	}

	return WithFields(logger, fields...)
}
