package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

// DemoProducts is a small catalogue for local runs and contract tests.
func DemoProducts() []*domain.Product {
	rows := []struct {
		name, description, price string
		stock                    int
	}{
		{"Desk Lamp", "Adjustable LED desk lamp", "30.00", 5},
		{"Coffee Mug", "Stoneware mug, 350 ml", "12.50", 20},
		{"Notebook", "A5 dotted notebook", "7.99", 40},
		{"Headphones", "Over-ear wireless headphones", "89.90", 3},
	}
	products := make([]*domain.Product, 0, len(rows))
	for i, row := range rows {
		p, err := domain.NewProduct(int64(i+1), row.name, decimal.RequireFromString(row.price), row.stock)
		if err != nil {
			panic(err)
		}
		p.Description = row.description
		products = append(products, p)
	}
	return products
}

// Seed inserts products whose ids are not taken yet. Existing rows are left
// untouched so reseeding never resets stock.
func Seed(ctx context.Context, store unitofwork.Store, products []*domain.Product) (int, error) {
	inserted := 0
	err := store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		inserted = 0
		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		existing, err := tx.Products().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, p := range products {
			if _, ok := existing[p.ID]; ok && p.ID != 0 {
				continue
			}
			if _, err := tx.Products().Save(ctx, p); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, mapError(err)
	}
	return inserted, nil
}
