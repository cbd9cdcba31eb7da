package library

import (
	"context"

	"github.com/shopspring/decimal"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing lending operation.
type OperationLog struct {
	Operation   string
	OperationID string
	Member      string
	Title       string
	Edition     string
	Amount      decimal.Decimal
	Status      string
	Error       error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithOperationIDs overrides how operation identifiers are generated.
func WithOperationIDs(next func() string) ServiceOption {
	return func(service *Service) {
		if next != nil {
			service.operationIDFn = next
		}
	}
}
