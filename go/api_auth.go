package shopserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the caller identity established by the authentication collaborator.
	HeaderUserID = "X-User-ID"
	// HeaderIdempotencyKey makes checkout safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"
)

const maxIdempotencyKeyLen = 255

var (
	errMissingUser = errors.New("X-User-ID header is required")
	errKeyTooLong  = errors.New("Idempotency-Key must be at most 255 characters")
)

// requireUser returns the caller id or answers 401.
func requireUser(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if userID == "" {
		respondError(c, http.StatusUnauthorized, errMissingUser)
		return "", false
	}
	return userID, true
}

func idempotencyKey(c *gin.Context) (string, bool) {
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		respondError(c, http.StatusBadRequest, errKeyTooLong)
		return "", false
	}
	return key, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
