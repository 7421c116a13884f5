package benefit

import (
	"time"

	"github.com/google/uuid"
)

type Benefit struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	LocalID        *uuid.UUID `json:"local_id,omitempty" db:"local_id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	TierRequired   *string    `json:"tier_required,omitempty" db:"tier_required"`
	PointsRequired *int       `json:"points_required,omitempty" db:"points_required"`
	Active         bool       `json:"active" db:"active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// BenefitForCustomer annotates a benefit with whether the requesting
// customer has unlocked it yet.
type BenefitForCustomer struct {
	Benefit
	Unlocked  bool   `json:"unlocked"`
	LocalName string `json:"local_name,omitempty"`
}

type CreateBenefitRequest struct {
	LocalSlug      string  `json:"local_slug"`
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description"`
	TierRequired   *string `json:"tier_required"`
	PointsRequired *int    `json:"points_required"`
}
