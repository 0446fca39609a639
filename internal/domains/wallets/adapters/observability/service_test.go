package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

type stubLedger struct {
	walletports.Service
	deposit *walletdomain.Transaction
	err     error
}

func (s stubLedger) AddFunds(context.Context, string, decimal.Decimal) (*walletdomain.Transaction, error) {
	return s.deposit, s.err
}

func decorate(inner walletports.Service) (walletports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	logs := &bytes.Buffer{}
	svc := New(inner,
		WithTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")),
		WithMeter(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(logs, nil))))
	return svc, spans, reader, logs
}

func deposits(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "wallets.service.deposits" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, point := range sum.DataPoints {
				total += point.Value
			}
		}
	}
	return total
}

func TestAddFunds_CountsDeposit(t *testing.T) {
	svc, spans, reader, logs := decorate(stubLedger{deposit: &walletdomain.Transaction{ID: 9, WalletID: 2}})

	_, err := svc.AddFunds(context.Background(), "alice", decimal.RequireFromString("25"))
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "WalletService.AddFunds", ended[0].Name())
	require.EqualValues(t, 1, deposits(t, reader))
	require.Contains(t, logs.String(), `"amount":"25.00"`)
	require.Contains(t, logs.String(), `"transaction.id":9`)
}

func TestAddFunds_FailureMarksSpanAndSkipsCounter(t *testing.T) {
	svc, spans, reader, logs := decorate(stubLedger{err: walletdomain.ErrInvalidAmount})

	_, err := svc.AddFunds(context.Background(), "alice", decimal.Zero)
	require.ErrorIs(t, err, walletdomain.ErrInvalidAmount)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Zero(t, deposits(t, reader))
	require.Contains(t, logs.String(), `"level":"ERROR"`)
}
