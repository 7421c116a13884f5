package visit

import (
	"time"

	"github.com/google/uuid"
)

type Visit struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CustomerID    uuid.UUID  `json:"customer_id" db:"customer_id"`
	LocalID       uuid.UUID  `json:"local_id" db:"local_id"`
	PointsAwarded int        `json:"points_awarded" db:"points_awarded"`
	TokenID       *uuid.UUID `json:"token_id,omitempty" db:"token_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type VisitWithLocal struct {
	Visit
	LocalName string `json:"local_name"`
	LocalSlug string `json:"local_slug"`
}

type HistoryResponse struct {
	Visits      []*VisitWithLocal `json:"visits"`
	TotalVisits int               `json:"total_visits"`
	TotalPoints int               `json:"total_points"`
}
