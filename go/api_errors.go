package shopserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cartapp "github.com/Apurer/go-gin-shop-server/internal/domains/carts/application"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogapp "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletapp "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/application"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

var responder = apierrors.NewChainedResponder("",
	validationProblem,
	stockProblem,
	fundsProblem,
	conflictProblem,
	notFoundProblem,
	forbiddenProblem,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError answers transport-level failures with the problem for status.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	default:
		responder.RespondError(c, err)
		return
	}
	respondProblem(c, problem)
}

// respondServiceError maps application errors to problems. Unknown errors are 500s.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationProblem(err error) (apierrors.ProblemDetail, bool) {
	if !isAny(err, cartapp.ErrInvalidInput, catalogapp.ErrInvalidInput, orderapp.ErrInvalidInput, walletapp.ErrInvalidInput) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrValidation.WithDetail(err.Error()), true
}

func stockProblem(err error) (apierrors.ProblemDetail, bool) {
	if !isAny(err, catalogdomain.ErrInsufficientStock, catalogdomain.ErrProductUnavailable) {
		return apierrors.ProblemDetail{}, false
	}
	problem := apierrors.ErrOutOfStock.WithDetail(err.Error())
	if errors.Is(err, catalogdomain.ErrProductUnavailable) {
		problem = apierrors.ErrProductUnavailable.WithDetail(err.Error())
	}
	var stockErr *catalogdomain.StockError
	if errors.As(err, &stockErr) {
		problem = problem.
			WithExtension("productId", stockErr.ProductID).
			WithExtension("productName", stockErr.ProductName).
			WithExtension("requested", stockErr.Requested).
			WithExtension("available", stockErr.Available)
	}
	return problem, true
}

func fundsProblem(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, walletdomain.ErrInsufficientFunds) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrInsufficientFunds.WithDetail(err.Error()), true
}

func conflictProblem(err error) (apierrors.ProblemDetail, bool) {
	if !isAny(err, orderdomain.ErrEmptyCart, orderdomain.ErrNothingToPay, orderdomain.ErrInvalidState, orderports.ErrIdempotencyConflict) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrConflict.WithDetail(err.Error()), true
}

func notFoundProblem(err error) (apierrors.ProblemDetail, bool) {
	if !isAny(err,
		cartports.ErrNotFound, cartports.ErrItemNotFound,
		catalogports.ErrNotFound,
		orderports.ErrNotFound, orderdomain.ErrStatusNotFound,
		walletports.ErrNotFound,
	) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrNotFound.WithDetail(err.Error()), true
}

func forbiddenProblem(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, authz.ErrForbidden) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrForbidden.WithDetail(err.Error()), true
}
