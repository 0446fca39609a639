package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
)

// StockDetail carries a stock failure across the Temporal boundary.
type StockDetail struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

// AsApplicationError turns business failures into non-retryable application
// errors typed with their error kind. Other errors are returned unchanged so the
// activity retry policy applies.
func AsApplicationError(err error) error {
	kind := orderapp.ErrorType(err)
	if kind == "" {
		return err
	}
	var stockErr *catalogdomain.StockError
	if errors.As(err, &stockErr) {
		detail := StockDetail{
			ProductID:   stockErr.ProductID,
			ProductName: stockErr.ProductName,
			Requested:   stockErr.Requested,
			Available:   stockErr.Available,
		}
		return temporal.NewNonRetryableApplicationError(err.Error(), kind, err, detail)
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), kind, err)
}

// FromWorkflowError rebuilds the business error behind a failed checkout run.
// Errors without a known kind are returned unchanged.
func FromWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	rebuilt := orderapp.ErrorFromType(appErr.Type(), appErr.Message())
	if orderapp.ErrorType(rebuilt) == "" {
		return err
	}
	if appErr.HasDetails() {
		var detail StockDetail
		if appErr.Details(&detail) == nil && detail.ProductID != 0 {
			return &catalogdomain.StockError{
				ProductID:   detail.ProductID,
				ProductName: detail.ProductName,
				Requested:   detail.Requested,
				Available:   detail.Available,
				Err:         orderapp.ErrorFromType(appErr.Type(), ""),
			}
		}
	}
	return rebuilt
}
