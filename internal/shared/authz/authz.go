// Package authz models the role capability supplied by the auth boundary.
package authz

import (
	"context"
	"errors"
	"strings"
)

// RoleAdmin gates catalogue management and the privileged order operations.
const RoleAdmin = "admin"

// ErrForbidden signals the actor lacks the role a privileged operation needs.
var ErrForbidden = errors.New("operation requires a privileged role")

// RoleChecker reports whether userID holds role.
type RoleChecker func(ctx context.Context, userID, role string) bool

// AllowAll grants every role; for trusted in-process callers and tests.
func AllowAll(context.Context, string, string) bool { return true }

// DenyAll grants nothing.
func DenyAll(context.Context, string, string) bool { return false }

// StaticAdmins grants RoleAdmin to a fixed set of user ids.
func StaticAdmins(userIDs []string) RoleChecker {
	admins := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return func(_ context.Context, userID, role string) bool {
		if role != RoleAdmin {
			return false
		}
		_, ok := admins[strings.TrimSpace(userID)]
		return ok
	}
}

// Require returns ErrForbidden unless check grants role to userID. A nil check denies.
func Require(ctx context.Context, check RoleChecker, userID, role string) error {
	if check == nil || !check(ctx, userID, role) {
		return ErrForbidden
	}
	return nil
}
