package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows runs checkouts as Temporal workflows.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
	newKey    func() string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.CheckoutTaskQueue, newKey: uuid.NewString}
}

// Checkout starts the checkout workflow and waits for its result. A command
// without an idempotency key gets a generated one so activity retries stay
// exactly-once.
func (o *TemporalOrderWorkflows) Checkout(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = o.newKey()
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildCheckoutWorkflowID(input)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.CheckoutWorkflowName,
		orderworkflows.CheckoutWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.CheckoutResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, orderactivities.FromWorkflowError(err)
	}
	return &result, nil
}

// InlineOrderWorkflows executes checkout directly without Temporal, useful for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service ports.Service
}

// NewInlineOrderWorkflows wraps the order service for synchronous execution.
func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// Checkout delegates to the application service without durable orchestration.
func (o *InlineOrderWorkflows) Checkout(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.Checkout(ctx, input)
}

func buildCheckoutWorkflowID(input ports.CheckoutInput) string {
	scoped := strings.TrimSpace(input.UserID) + "\x00" + strings.TrimSpace(input.IdempotencyKey)
	return fmt.Sprintf("order-checkout-%s", hashIdempotencyKey(scoped))
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow ids readable and deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
