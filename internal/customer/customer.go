package customer

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ClerkID      string    `json:"clerk_id" db:"clerk_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PointBalance int       `json:"point_balance" db:"point_balance"`
	Tier         string    `json:"tier" db:"tier"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type CreateCustomerRequest struct {
	ClerkID string `json:"clerk_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile is the dashboard payload: current balance, tier and how far
// the customer is from the next one.
type Profile struct {
	Customer
	NextTier         string `json:"next_tier,omitempty"`
	PointsToNextTier int    `json:"points_to_next_tier,omitempty"`
}
