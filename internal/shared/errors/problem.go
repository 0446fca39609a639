// Package errors renders API failures as RFC 7807 problem documents.
package errors

import (
	"net/http"
	"strings"
)

// ProblemDetail is the application/problem+json body returned on failure.
// It also satisfies error so handlers can return it directly.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return p.Title + ": " + p.Detail
}

// WithDetail copies p with the occurrence-specific message set.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = strings.TrimSpace(detail)
	return p
}

// WithExtension copies p with one more extension member. The receiver's
// map is never mutated, so templates stay safe to share.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type references, relative to the responder's base URI.
const (
	TypeBadRequest   = "/problems/bad-request"
	TypeValidation   = "/problems/validation-error"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"

	TypeOutOfStock         = "/problems/out-of-stock"
	TypeProductUnavailable = "/problems/product-unavailable"
	TypeInsufficientFunds  = "/problems/insufficient-funds"
)

func template(kind, title string, status int) ProblemDetail {
	return ProblemDetail{Type: kind, Title: title, Status: status}
}

// Generic request failures.
var (
	ErrBadRequest   = template(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrValidation   = template(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrUnauthorized = template(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = template(TypeForbidden, "Forbidden", http.StatusForbidden)
	ErrNotFound     = template(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrConflict     = template(TypeConflict, "Conflict", http.StatusConflict)
	ErrInternal     = template(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
)

// Checkout failures the buyer can act on.
var (
	ErrOutOfStock         = template(TypeOutOfStock, "Insufficient Stock", http.StatusConflict)
	ErrProductUnavailable = template(TypeProductUnavailable, "Product Unavailable", http.StatusConflict)
	ErrInsufficientFunds  = template(TypeInsufficientFunds, "Insufficient Funds", http.StatusUnprocessableEntity)
)
