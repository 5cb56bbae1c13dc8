// Package authz gates every data operation on the acting admin. The acting
// admin travels on the request context; services assert on it before
// touching the gateway.
package authz

import (
	"context"
	"errors"

	"github.com/cebutourist/sugbo/internal/model"
)

// ErrUnauthenticated is returned when no admin is attached to the context.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden is returned when the acting admin lacks the required role.
var ErrForbidden = errors.New("insufficient permissions")

type contextKey string

const adminKey contextKey = "acting_admin"

// WithAdmin returns a context carrying the acting admin. The admin is
// sanitized first so a credential digest can never ride a context.
func WithAdmin(ctx context.Context, admin model.Admin) context.Context {
	return context.WithValue(ctx, adminKey, admin.Sanitized())
}

// AdminFrom extracts the acting admin from the context.
func AdminFrom(ctx context.Context) (model.Admin, bool) {
	admin, ok := ctx.Value(adminKey).(model.Admin)
	return admin, ok
}

// RequireLoggedIn asserts that an admin is attached to the context and
// returns it.
func RequireLoggedIn(ctx context.Context) (model.Admin, error) {
	admin, ok := AdminFrom(ctx)
	if !ok {
		return model.Admin{}, ErrUnauthenticated
	}
	return admin, nil
}

// RequireRole asserts that the acting admin satisfies the given role.
// The baseline "admin" role is satisfied by super-admins as well.
func RequireRole(ctx context.Context, role string) (model.Admin, error) {
	admin, err := RequireLoggedIn(ctx)
	if err != nil {
		return model.Admin{}, err
	}
	if !admin.HasRole(role) {
		return model.Admin{}, ErrForbidden
	}
	return admin, nil
}
