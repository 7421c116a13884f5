package staff

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClerkID   string    `json:"clerk_id" db:"clerk_id"`
	LocalID   uuid.UUID `json:"local_id" db:"local_id"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StaffWithLocal is what the staff screen shows after login: who you are
// and which local your QR codes will be issued for.
type StaffWithLocal struct {
	Staff
	LocalSlug string `json:"local_slug"`
	LocalName string `json:"local_name"`
}

type CreateStaffRequest struct {
	ClerkID   string `json:"clerk_id" validate:"required"`
	LocalSlug string `json:"local_slug" validate:"required"`
}
