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

	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalogue with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) ListProducts(ctx context.Context) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	result, err := s.inner.ListProducts(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("products.count", len(result)))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) SaveProduct(ctx context.Context, actorID string, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SaveProduct", trace.WithAttributes(attribute.String("actor.id", actorID)))
	defer span.End()

	result, err := s.inner.SaveProduct(ctx, actorID, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to save product", slog.String("actor.id", actorID))
	}
	s.logInfo(ctx, "product saved", slog.Int64("product.id", result.ID), slog.String("product.name", result.Name))
	return result, nil
}

func (s *Service) SetAvailability(ctx context.Context, actorID string, id int64, available bool) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SetAvailability", trace.WithAttributes(
		attribute.String("actor.id", actorID), attribute.Int64("product.id", id), attribute.Bool("product.available", available)))
	defer span.End()

	result, err := s.inner.SetAvailability(ctx, actorID, id, available)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change availability", slog.Int64("product.id", id))
	}
	s.logInfo(ctx, "availability changed", slog.Int64("product.id", id), slog.Bool("product.available", result.Available))
	return result, nil
}

func (s *Service) Restock(ctx context.Context, actorID string, id int64, quantity int) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Restock", trace.WithAttributes(
		attribute.String("actor.id", actorID), attribute.Int64("product.id", id), attribute.Int("quantity", quantity)))
	defer span.End()

	result, err := s.inner.Restock(ctx, actorID, id, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to restock", slog.Int64("product.id", id))
	}
	s.metrics.recordRestock(ctx, id, quantity)
	s.logInfo(ctx, "product restocked", slog.Int64("product.id", id), slog.Int("product.stock", result.Stock))
	return result, nil
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
	restocked metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	restocked, _ := m.Int64Counter("catalog.service.units_restocked",
		metric.WithDescription("Units added to stock by restocking"))
	return serviceMetrics{restocked: restocked}
}

func (m serviceMetrics) recordRestock(ctx context.Context, productID int64, quantity int) {
	if m.restocked != nil {
		m.restocked.Add(ctx, int64(quantity), metric.WithAttributes(attribute.Int64("product.id", productID)))
	}
}

var _ catalogports.Service = (*Service)(nil)
