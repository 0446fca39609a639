package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/persistence/postgres"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	orderpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/persistence/postgres"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

var _ unitofwork.Store = (*Store)(nil)

// defaultAttempts bounds retries of serialization failures and deadlocks.
const defaultAttempts = 3

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Store runs callbacks inside GORM transactions at READ COMMITTED. Row locks taken
// through the ForUpdate repository methods provide the isolation the writes need.
type Store struct {
	db       *gorm.DB
	attempts int
	logger   *slog.Logger
}

// Option configures Store.
type Option func(*Store)

// WithAttempts overrides how many times a retryable transaction is run.
func WithAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithLogger logs retried transactions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore wires the PostgreSQL unit of work. Caller manages DB lifecycle.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, attempts: defaultAttempts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	if s == nil || s.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			return fn(ctx, bind(db))
		}, opts)
		if err == nil || !Retryable(err) || ctx.Err() != nil {
			return err
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "retrying transaction",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// Retryable reports whether err is a serialization failure or deadlock.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

type txRepos struct {
	products     *catalogpostgres.Repository
	carts        *cartpostgres.Repository
	orders       *orderpostgres.Repository
	checkoutKeys *orderpostgres.CheckoutKeyStore
	wallets      *walletpostgres.Repository
	transactions *walletpostgres.Ledger
}

func bind(db *gorm.DB) *txRepos {
	return &txRepos{
		products:     catalogpostgres.NewRepository(db),
		carts:        cartpostgres.NewRepository(db),
		orders:       orderpostgres.NewRepository(db),
		checkoutKeys: orderpostgres.NewCheckoutKeyStore(db),
		wallets:      walletpostgres.NewRepository(db),
		transactions: walletpostgres.NewLedger(db),
	}
}

func (t *txRepos) Products() catalogports.Repository               { return t.products }
func (t *txRepos) Carts() cartports.Repository                     { return t.carts }
func (t *txRepos) Orders() orderports.Repository                   { return t.orders }
func (t *txRepos) CheckoutKeys() orderports.CheckoutKeyStore       { return t.checkoutKeys }
func (t *txRepos) Wallets() walletports.Repository                 { return t.wallets }
func (t *txRepos) Transactions() walletports.TransactionRepository { return t.transactions }
