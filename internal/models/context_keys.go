package models

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ChildIDContextKey holds the caller's child id (uuid.UUID).
	ChildIDContextKey ContextKey = "child_id"
)
