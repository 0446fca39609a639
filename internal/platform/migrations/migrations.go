// Package migrations owns the PostgreSQL schema of the shop: the adapter
// records, the order status reference rows and the foreign keys that cross
// bounded contexts.
package migrations

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/persistence/postgres"
	catalogpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/persistence/postgres"
	orderpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/persistence/postgres"
	walletpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/persistence/postgres"
)

// foreignKey is added with raw DDL because the records of one context do not
// reference the records of another.
type foreignKey struct {
	name, table, column, refTable, onDelete string
}

var foreignKeys = []foreignKey{
	{"fk_cart_items_cart", "cart_items", "cart_id", "carts", "CASCADE"},
	{"fk_cart_items_product", "cart_items", "product_id", "products", "RESTRICT"},
	{"fk_orders_status", "orders", "status_id", "order_statuses", "RESTRICT"},
	{"fk_order_items_product", "order_items", "product_id", "products", "RESTRICT"},
	{"fk_transactions_wallet", "transactions", "wallet_id", "wallets", "RESTRICT"},
	{"fk_transactions_order", "transactions", "order_id", "orders", "RESTRICT"},
	{"fk_checkout_keys_order", "checkout_idempotency_keys", "order_id", "orders", "CASCADE"},
}

// Models lists every record in dependency order.
func Models() []any {
	var models []any
	models = append(models, catalogpostgres.Models()...)
	models = append(models, cartpostgres.Models()...)
	models = append(models, orderpostgres.Models()...)
	models = append(models, walletpostgres.Models()...)
	return models
}

// Run applies the schema. It is idempotent.
func Run(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return nil
	}
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(orderpostgres.StatusRows()).Error; err != nil {
		return fmt.Errorf("seed order statuses: %w", err)
	}
	for _, fk := range foreignKeys {
		if err := addForeignKey(db, fk); err != nil {
			return err
		}
	}
	return nil
}

func addForeignKey(db *gorm.DB, fk foreignKey) error {
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM pg_constraint WHERE conname = ?", fk.name).Scan(&count).Error; err != nil {
		return fmt.Errorf("inspect %s: %w", fk.name, err)
	}
	if count > 0 {
		return nil
	}
	ddl := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s",
		fk.table, fk.name, fk.column, fk.refTable, fk.onDelete)
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("add %s: %w", fk.name, err)
	}
	return nil
}

// SyncSequences moves identity sequences past rows inserted with explicit ids,
// such as the demo catalogue.
func SyncSequences(ctx context.Context, db *gorm.DB, tables ...string) error {
	for _, table := range tables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM %[1]s), 1))",
			table)
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("sync %s sequence: %w", table, err)
		}
	}
	return nil
}
