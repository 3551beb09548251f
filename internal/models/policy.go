// Package models defines server-side data models persisted in the database.
package models

import "time"

// Visibility is the coarse sharing mode of a stored object.
type Visibility string

const (
	// VisibilityPublic allows any authenticated user to read the object.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate restricts reads to the owner, admins, and
	// relationship-derived grants.
	VisibilityPrivate Visibility = "private"
)

// ValidVisibility reports whether v is one of the known modes.
func ValidVisibility(v Visibility) bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// ObjectPolicy is the access record for one stored object. The path is the
// primary key; the owner is fixed by the first write and never changes.
type ObjectPolicy struct {
	// Path is the canonical stored-object path, leading slash included.
	Path string
	// OwnerID is the user whose prefix the object lives under.
	OwnerID string
	// Visibility is the current sharing mode.
	Visibility Visibility

	CreatedAt time.Time
	UpdatedAt time.Time
}
