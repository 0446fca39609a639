package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	orderworkflows "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/workflows/orders"
)

func TestBuildCheckoutWorkflowID_IsDeterministic(t *testing.T) {
	a := buildCheckoutWorkflowID(ports.CheckoutInput{IdempotencyKey: "key-1"})
	b := buildCheckoutWorkflowID(ports.CheckoutInput{IdempotencyKey: " key-1 "})
	c := buildCheckoutWorkflowID(ports.CheckoutInput{IdempotencyKey: "key-2"})
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, len("order-checkout-")+16)
}

func TestBuildCheckoutWorkflowID_ScopedByUser(t *testing.T) {
	alice := buildCheckoutWorkflowID(ports.CheckoutInput{UserID: "alice", IdempotencyKey: "key-1"})
	bob := buildCheckoutWorkflowID(ports.CheckoutInput{UserID: "bob", IdempotencyKey: "key-1"})
	require.NotEqual(t, alice, bob)
}

func TestTemporalCheckout_GeneratesKeyAndReturnsResult(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	var started client.StartWorkflowOptions
	var command orderworkflows.CheckoutWorkflowInput
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, orderworkflows.CheckoutWorkflowName, mock.Anything).
		Run(func(args mock.Arguments) {
			started = args.Get(1).(client.StartWorkflowOptions)
			command = args.Get(3).(orderworkflows.CheckoutWorkflowInput)
		}).
		Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			result := args.Get(1).(*ports.CheckoutResult)
			result.Order = &domain.Order{ID: 11}
		}).
		Return(nil)

	orchestrator := NewTemporalOrderWorkflows(c)
	orchestrator.newKey = func() string { return "generated" }
	result, err := orchestrator.Checkout(context.Background(), ports.CheckoutInput{UserID: "alice", Delivery: domain.DeliveryPickUp})
	require.NoError(t, err)
	require.Equal(t, int64(11), result.Order.ID)
	require.Equal(t, "generated", command.Command.IdempotencyKey)
	require.Equal(t, orderworkflows.CheckoutTaskQueue, started.TaskQueue)
	require.Equal(t, buildCheckoutWorkflowID(ports.CheckoutInput{UserID: "alice", IdempotencyKey: "generated"}), started.ID)
}

func TestTemporalCheckout_MapsBusinessErrors(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Return(temporal.NewNonRetryableApplicationError(
		"insufficient funds: balance 1.00, order total 2.00", orderapp.ErrorTypeInsufficientFunds, nil))

	_, err := NewTemporalOrderWorkflows(c).Checkout(context.Background(), ports.CheckoutInput{UserID: "alice", IdempotencyKey: "k"})
	require.ErrorIs(t, err, walletdomain.ErrInsufficientFunds)
}

type stubService struct {
	ports.Service
	got ports.CheckoutInput
}

func (s *stubService) Checkout(_ context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	s.got = input
	return &ports.CheckoutResult{Order: &domain.Order{ID: 1}}, nil
}

func TestInlineCheckout_DelegatesToService(t *testing.T) {
	svc := &stubService{}
	result, err := NewInlineOrderWorkflows(svc).Checkout(context.Background(), ports.CheckoutInput{UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Order.ID)
	require.Equal(t, "alice", svc.got.UserID)

	_, err = NewInlineOrderWorkflows(nil).Checkout(context.Background(), ports.CheckoutInput{})
	require.Error(t, err)
}
