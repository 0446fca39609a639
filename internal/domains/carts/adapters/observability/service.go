package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	cartdomain "github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/observability/service"

// Service decorates the cart engine with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
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

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
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

func (s *Service) GetActiveCart(ctx context.Context, userID string) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetActiveCart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int64("cart.id", result.ID), attribute.Int("cart.items", len(result.Items)))
	return result, nil
}

func (s *Service) EnsureActiveCart(ctx context.Context, userID string) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.EnsureActiveCart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.EnsureActiveCart(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open cart", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int64("cart.id", result.ID))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("product.id", productID), attribute.Int("quantity", quantity)))
	defer span.End()

	s.logInfo(ctx, "adding cart item", slog.String("user.id", userID), slog.Int64("product.id", productID), slog.Int("quantity", quantity))
	result, err := s.inner.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item",
			slog.String("user.id", userID), slog.Int64("product.id", productID))
	}
	s.metrics.recordAdded(ctx, quantity)
	s.logInfo(ctx, "cart item added", slog.Int64("cart.item.id", result.ID), slog.Int("cart.item.quantity", result.Quantity))
	return result, nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateItemQuantity", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("cart.item.id", itemID), attribute.Int("quantity", quantity)))
	defer span.End()

	s.logInfo(ctx, "updating cart item", slog.String("user.id", userID), slog.Int64("cart.item.id", itemID), slog.Int("quantity", quantity))
	result, err := s.inner.UpdateItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item",
			slog.String("user.id", userID), slog.Int64("cart.item.id", itemID))
	}
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, itemID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("cart.item.id", itemID)))
	defer span.End()

	removed, err := s.inner.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to remove cart item",
			slog.String("user.id", userID), slog.Int64("cart.item.id", itemID))
	}
	span.SetAttributes(attribute.Bool("cart.item.removed", removed))
	if removed {
		s.logInfo(ctx, "cart item removed", slog.String("user.id", userID), slog.Int64("cart.item.id", itemID))
	}
	return removed, nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	cleared, err := s.inner.ClearCart(ctx, userID)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to clear cart", slog.String("user.id", userID))
	}
	if cleared {
		s.logInfo(ctx, "cart cleared", slog.String("user.id", userID))
	}
	return cleared, nil
}

func (s *Service) TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.TotalPrice", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	total, err := s.inner.TotalPrice(ctx, userID)
	if err != nil {
		return decimal.Zero, s.handleError(ctx, span, err, "failed to price cart", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.String("cart.total", total.StringFixed(2)))
	return total, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	itemsAdded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsAdded, _ := m.Int64Counter("carts.service.items_added", metric.WithDescription("Units reserved into carts"))
	return serviceMetrics{itemsAdded: itemsAdded}
}

func (m serviceMetrics) recordAdded(ctx context.Context, quantity int) {
	if m.itemsAdded != nil {
		m.itemsAdded.Add(ctx, int64(quantity))
	}
}

var _ cartports.Service = (*Service)(nil)
