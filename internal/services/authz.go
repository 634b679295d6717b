package services

import "webstore/internal/models"

// Authorize reports whether a caller holding role may perform an operation
// restricted to required. An empty required list allows any authenticated
// role.
func Authorize(role models.UserRole, required ...models.UserRole) bool {
	if !models.ValidRole(string(role)) {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
