package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidateID is the structured log field key for a candidate identifier.
	FieldCandidateID = "candidate_id"
	// FieldCandidateName is the structured log field key for a candidate display name.
	FieldCandidateName = "candidate_name"
	// FieldGroup is the structured log field key for a diversity group label.
	FieldGroup = "group"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields returns the fields identifying a candidate.
// A zero id is treated as missing and omitted.
func CandidateFields(id int, name string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if id > 0 {
		fields = append(fields, zap.Int(FieldCandidateID, id))
	}
	return append(fields, StringFields(StringField{Key: FieldCandidateName, Value: name})...)
}

// WithCandidate attaches the candidate identity fields to the provided logger.
func WithCandidate(logger *zap.Logger, id int, name string) *zap.Logger {
	return WithFields(logger, CandidateFields(id, name)...)
}
