// Package oplog forwards library operation events to a zap logger.
package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
	"go.uber.org/zap"
)

const statusError = "error"

// Logger implements library.OperationLogger on top of zap.
type Logger struct {
	logger *zap.Logger
}

// New wraps the given zap logger. A nil logger discards every entry.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("library")}
}

// LogOperation writes one structured line per operation.
func (adapter *Logger) LogOperation(_ context.Context, entry library.OperationLog) {
	fields := Fields(entry)
	if entry.Status == statusError {
		adapter.logger.Warn("library operation failed", fields...)
		return
	}
	adapter.logger.Info("library operation", fields...)
}

// Fields renders an entry as zap fields, skipping empty subjects.
func Fields(entry library.OperationLog) []zap.Field {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("operation_id", entry.OperationID),
		zap.String("status", entry.Status),
	}
	if entry.Member != "" {
		fields = append(fields, zap.String("member", entry.Member))
	}
	if entry.Title != "" {
		fields = append(fields, zap.String("title", entry.Title))
	}
	if entry.Edition != "" {
		fields = append(fields, zap.String("edition", entry.Edition))
	}
	if !entry.Amount.IsZero() {
		fields = append(fields, zap.String("amount", entry.Amount.StringFixed(2)))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
	}
	return fields
}
