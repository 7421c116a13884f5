package local

import (
	"time"

	"github.com/google/uuid"
)

type Local struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateLocalRequest struct {
	Slug    string `json:"slug" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type UpdateLocalRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}
