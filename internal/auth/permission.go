package auth

import "github.com/spec-kit/store-dashboard/internal/domain"

// CanAccessDashboard reports whether identity may view a dashboard. Without a
// store id any signed-in user may; with one, only the store's owner may.
func CanAccessDashboard(identity *domain.User, storeID *int64) bool {
	if identity == nil {
		return false
	}
	if storeID == nil {
		return true
	}
	return identity.OwnsStore(*storeID)
}
