package types

import (
	"time"

	"github.com/google/uuid"
)

// ContactID represents a UUIDv7 contact identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type ContactID string

// ListID represents a UUIDv7 list identifier.
type ListID string

// NewContactID generates a UUIDv7 contact identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewContactID() ContactID {
	return ContactID(uuid.Must(uuid.NewV7()).String())
}

// NewListID generates a UUIDv7 list identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewListID() ListID {
	return ListID(uuid.Must(uuid.NewV7()).String())
}

// ParseContactID validates and converts a string to ContactID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseContactID(s string) (ContactID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ContactID(s), nil
}

// ParseListID validates and converts a string to ListID.
func ParseListID(s string) (ListID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ListID(s), nil
}

// ContactIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables time-based queries without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func ContactIDTime(id ContactID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
