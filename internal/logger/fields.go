package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldUser       = "user_id"
	FieldTargetRole = "target_role"
	FieldSession    = "session_id"
	FieldMode       = "mode"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Entries with an empty
// key or value after trimming are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes who is practicing and for which role.
func SessionFields(user, role string) []zap.Field {
	return StringFields(
		StringField{Key: FieldUser, Value: user},
		StringField{Key: FieldTargetRole, Value: role},
	)
}

func WithSession(logger *zap.Logger, user, role string) *zap.Logger {
	return WithFields(logger, SessionFields(user, role)...)
}
