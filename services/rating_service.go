package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/rating"
)

type RatingService struct {
	db *pgxpool.Pool
}

func NewRatingService(db *pgxpool.Pool) *RatingService {
	return &RatingService{db: db}
}

// AddRating records the post-visit service rating. The visit must
// belong to the requesting customer.
func (s *RatingService) AddRating(ctx context.Context, customerClerkID string, visitID string, req *rating.CreateRatingRequest) (*rating.VisitRating, error) {
	vid, err := uuid.Parse(visitID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid visit id", apperrors.ErrInvalidInput)
	}
	for _, v := range []int{req.RatingService, req.RatingPlace, req.RatingProduct} {
		if v < 1 || v > 5 {
			return nil, fmt.Errorf("%w: ratings must be between 1 and 5", apperrors.ErrInvalidInput)
		}
	}

	var customerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM customers WHERE clerk_id = $1`, customerClerkID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	var localID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT local_id FROM visits WHERE id = $1 AND customer_id = $2`, vid, customerID).Scan(&localID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	r := &rating.VisitRating{
		ID:            uuid.New(),
		VisitID:       vid,
		CustomerID:    customerID,
		LocalID:       localID,
		RatingService: req.RatingService,
		RatingPlace:   req.RatingPlace,
		RatingProduct: req.RatingProduct,
		Comment:       req.Comment,
		CreatedAt:     time.Now(),
	}

	query := `
		INSERT INTO visit_ratings (id, visit_id, customer_id, local_id, rating_service, rating_place, rating_product, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.Exec(ctx, query,
		r.ID, r.VisitID, r.CustomerID, r.LocalID, r.RatingService, r.RatingPlace, r.RatingProduct, r.Comment, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	return r, nil
}
