package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/observability/service"

// Service decorates checkout and the order lifecycle with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Checkout(ctx context.Context, input orderports.CheckoutInput) (*orderports.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout", trace.WithAttributes(
		attribute.String("user.id", input.UserID),
		attribute.String("order.delivery", string(input.Delivery)),
		attribute.Bool("checkout.idempotent", input.IdempotencyKey != "")))
	defer span.End()

	s.logInfo(ctx, "checking out", slog.String("user.id", input.UserID), slog.String("order.delivery", string(input.Delivery)))
	result, err := s.inner.Checkout(ctx, input)
	if err != nil {
		s.metrics.recordCheckout(ctx, outcome(err))
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("user.id", input.UserID))
	}
	s.metrics.recordCheckout(ctx, replayedOr(result.Replayed, "placed"))
	span.SetAttributes(attribute.Int64("order.id", result.Order.ID), attribute.Bool("checkout.replayed", result.Replayed))
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.Order.ID),
		slog.String("order.total", result.Order.TotalAmount.StringFixed(2)),
		slog.String("wallet.balance", result.Balance.StringFixed(2)),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actorID string, orderID int64, status orderdomain.StatusID) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("actor.id", actorID), attribute.Int64("order.id", orderID), attribute.Int("order.status", int(status))))
	defer span.End()

	result, err := s.inner.UpdateStatus(ctx, actorID, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("actor.id", actorID), slog.Int64("order.id", orderID))
	}
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", orderID), slog.String("order.status", result.Status.String()))
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, userID string, orderID int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Cancel", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("user.id", userID), slog.Int64("order.id", orderID))
	result, err := s.inner.Cancel(ctx, userID, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order",
			slog.String("user.id", userID), slog.Int64("order.id", orderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", orderID), slog.String("order.total", result.TotalAmount.StringFixed(2)))
	return result, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForUser", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.ListForUser(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) GetDetails(ctx context.Context, userID string, orderID int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetDetails", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.inner.GetDetails(ctx, userID, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order",
			slog.String("user.id", userID), slog.Int64("order.id", orderID))
	}
	return result, nil
}

func (s *Service) ListAll(ctx context.Context, actorID string) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll", trace.WithAttributes(attribute.String("actor.id", actorID)))
	defer span.End()

	result, err := s.inner.ListAll(ctx, actorID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list all orders", slog.String("actor.id", actorID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) ListStatuses(ctx context.Context) ([]orderdomain.Status, error) {
	return s.inner.ListStatuses(ctx)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs business rejections at warn and everything else at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	kind := orderapp.ErrorType(err)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind != "" {
			span.SetAttributes(attribute.String("error.kind", kind))
		}
	}
	if s.logger == nil {
		return err
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	level := slog.LevelError
	if kind != "" {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error.kind", kind))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func outcome(err error) string {
	if kind := orderapp.ErrorType(err); kind != "" {
		return kind
	}
	return "error"
}

func replayedOr(replayed bool, fallback string) string {
	if replayed {
		return "replayed"
	}
	return fallback
}

type serviceMetrics struct {
	checkouts     metric.Int64Counter
	cancellations metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	checkouts, _ := m.Int64Counter("orders.service.checkouts", metric.WithDescription("Checkout attempts by outcome"))
	cancellations, _ := m.Int64Counter("orders.service.cancellations", metric.WithDescription("Orders cancelled and refunded"))
	return serviceMetrics{checkouts: checkouts, cancellations: cancellations}
}

func (m serviceMetrics) recordCheckout(ctx context.Context, result string) {
	if m.checkouts != nil {
		m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("checkout.outcome", result)))
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.cancellations != nil {
		m.cancellations.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
