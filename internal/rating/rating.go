package rating

import (
	"time"

	"github.com/google/uuid"
)

type VisitRating struct {
	ID            uuid.UUID `json:"id" db:"id"`
	VisitID       uuid.UUID `json:"visit_id" db:"visit_id"`
	CustomerID    uuid.UUID `json:"customer_id" db:"customer_id"`
	LocalID       uuid.UUID `json:"local_id" db:"local_id"`
	RatingService int       `json:"rating_service" db:"rating_service"`
	RatingPlace   int       `json:"rating_place" db:"rating_place"`
	RatingProduct int       `json:"rating_product" db:"rating_product"`
	Comment       string    `json:"comment" db:"comment"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateRatingRequest struct {
	RatingService int    `json:"rating_service"`
	RatingPlace   int    `json:"rating_place"`
	RatingProduct int    `json:"rating_product"`
	Comment       string `json:"comment"`
}
