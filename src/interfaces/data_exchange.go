package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// IViewPublisher fans projected views out to presentation surfaces.
// -----------------------------------------------------------------------------

type IViewPublisher interface {
	// -----------------------------------------------------------------------------
	// Publish replaces the snapshot every surface renders from.
	Publish(snapshot *models.MFeedSnapshot)

	// -----------------------------------------------------------------------------
	// IdentityChanged re-renders surfaces after a sign-in or sign-out.
	IdentityChanged(user *models.MUser)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
