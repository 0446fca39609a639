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

	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/observability/service"

// Service decorates the wallet ledger with tracing, logging, and metrics.
type Service struct {
	inner   walletports.Service
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

// New wraps the core wallet service.
func New(inner walletports.Service, opts ...Option) walletports.Service {
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

func (s *Service) EnsureWallet(ctx context.Context, userID string) (*walletdomain.Wallet, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.EnsureWallet", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open wallet", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int64("wallet.id", result.ID))
	return result, nil
}

func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.GetBalance", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	balance, err := s.inner.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, s.handleError(ctx, span, err, "failed to read balance", slog.String("user.id", userID))
	}
	return balance, nil
}

func (s *Service) HasSufficientFunds(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.HasSufficientFunds", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.String("amount", amount.StringFixed(2))))
	defer span.End()

	ok, err := s.inner.HasSufficientFunds(ctx, userID, amount)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check funds", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Bool("wallet.sufficient", ok))
	return ok, nil
}

func (s *Service) AddFunds(ctx context.Context, userID string, amount decimal.Decimal) (*walletdomain.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.AddFunds", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.String("amount", amount.StringFixed(2))))
	defer span.End()

	s.logInfo(ctx, "depositing funds", slog.String("user.id", userID), slog.String("amount", amount.StringFixed(2)))
	result, err := s.inner.AddFunds(ctx, userID, amount)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to deposit funds", slog.String("user.id", userID))
	}
	s.metrics.recordDeposit(ctx)
	s.logInfo(ctx, "funds deposited", slog.Int64("wallet.id", result.WalletID), slog.Int64("transaction.id", result.ID))
	return result, nil
}

func (s *Service) RecordPurchase(ctx context.Context, userID string, orderID int64, amount decimal.Decimal) (*walletdomain.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.RecordPurchase", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.inner.RecordPurchase(ctx, userID, orderID, amount)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record purchase",
			slog.String("user.id", userID), slog.Int64("order.id", orderID))
	}
	s.logInfo(ctx, "purchase recorded", slog.Int64("transaction.id", result.ID), slog.Int64("order.id", orderID))
	return result, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string) ([]*walletdomain.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "WalletService.ListTransactions", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.ListTransactions(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list transactions", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("transactions.count", len(result)))
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
	deposits metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	deposits, _ := m.Int64Counter("wallets.service.deposits", metric.WithDescription("Number of wallet deposits"))
	return serviceMetrics{deposits: deposits}
}

func (m serviceMetrics) recordDeposit(ctx context.Context) {
	if m.deposits != nil {
		m.deposits.Add(ctx, 1)
	}
}

var _ walletports.Service = (*Service)(nil)
