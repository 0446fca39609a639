package orders

import (
	"go.temporal.io/sdk/workflow"

	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-shop-server/internal/durable/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "orders.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker processing checkouts.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
)

// CheckoutWorkflowInput captures the checkout command.
type CheckoutWorkflowInput struct {
	Command orderports.CheckoutInput
	TraceID string
}

// CheckoutWorkflow drives one checkout to completion.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*orderports.CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	userID := input.Command.UserID
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "userId", userID)...)
	result, err := sequences.RunCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "userId", userID, "error", err)...)
		return nil, err
	}
	if result.Order != nil {
		logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", result.Order.ID)...)
	}
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
