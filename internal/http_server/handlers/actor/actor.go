// Package actor resolves the authenticated caller into a catalog.Actor.
package actor

import (
	"context"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/catalog"
	"campus_delivery/internal/middleware/authgate"
	"campus_delivery/internal/models"
)

type UserProvider interface {
	Me(ctx context.Context, uid int64) (models.User, error)
}

// Resolve loads the caller's role. Requests that did not pass the gate are
// rejected as unauthenticated.
func Resolve(ctx context.Context, users UserProvider) (catalog.Actor, error) {
	uid, ok := authgate.UserID(ctx)
	if !ok {
		return catalog.Actor{}, &auth.Error{Kind: auth.ErrAuthentication, Message: auth.MsgInvalidSession}
	}

	user, err := users.Me(ctx, uid)
	if err != nil {
		return catalog.Actor{}, err
	}

	return catalog.Actor{UserID: user.ID, Role: user.Role}, nil
}
