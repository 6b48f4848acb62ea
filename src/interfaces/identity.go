package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IIdentityProvider is the opaque identity and session source.
// -----------------------------------------------------------------------------

type IIdentityProvider interface {
	SignIn(ctx context.Context, user models.MUser) (*models.MUser, error)

	SignOut(ctx context.Context) error

	// Current returns the signed-in user or nil.
	Current() *models.MUser

	// OnChange delivers the current user immediately, then every change.
	OnChange(listener func(user *models.MUser)) (unsubscribe func())
}
