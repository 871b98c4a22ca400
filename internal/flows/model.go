package flows

import (
	"time"

	"diagnostics-backend/internal/flows/engine"
)

// ServiceCategories lists the categories trees may be authored under.
var ServiceCategories = []string{"plumbing", "electrical", "hvac", "appliance", "roofing", "general"}

// Flow is a stored diagnostic question tree with its authoring metadata.
type Flow struct {
	ID        string
	Tree      engine.Tree
	Active    bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KnownCategory reports whether the category is one the platform serves.
func KnownCategory(category string) bool {
	for _, c := range ServiceCategories {
		if c == category {
			return true
		}
	}
	return false
}
