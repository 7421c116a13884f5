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
	"lokalyAPI/internal/benefit"
	"lokalyAPI/internal/tier"
)

type BenefitService struct {
	db *pgxpool.Pool
}

func NewBenefitService(db *pgxpool.Pool) *BenefitService {
	return &BenefitService{db: db}
}

// ListForCustomer returns active benefits annotated with whether the
// customer has unlocked them. A benefit unlocks when the customer's
// tier is at or above the required tier and their balance meets the
// points floor, when either is set.
func (s *BenefitService) ListForCustomer(ctx context.Context, customerClerkID string) ([]*benefit.BenefitForCustomer, error) {
	var (
		balance  int
		tierName string
	)
	err := s.db.QueryRow(ctx, `SELECT point_balance, tier FROM customers WHERE clerk_id = $1`, customerClerkID).
		Scan(&balance, &tierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	tiersByName := make(map[string]tier.Tier)
	tierRows, err := s.db.Query(ctx, `SELECT id, name, points_min, points_max FROM tiers`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var t tier.Tier
		if err := tierRows.Scan(&t.ID, &t.Name, &t.PointsMin, &t.PointsMax); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiersByName[t.Name] = t
	}
	if err := tierRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tiers: %w", err)
	}

	query := `
		SELECT b.id, b.local_id, b.title, b.description, b.tier_required, b.points_required, b.active, b.created_at,
		       COALESCE(l.name, '')
		FROM benefits b
		LEFT JOIN locals l ON l.id = b.local_id
		WHERE b.active = true
		ORDER BY b.created_at
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	customerTier := tiersByName[tierName]

	benefits := []*benefit.BenefitForCustomer{}
	for rows.Next() {
		b := &benefit.BenefitForCustomer{}
		err := rows.Scan(
			&b.ID, &b.LocalID, &b.Title, &b.Description, &b.TierRequired, &b.PointsRequired, &b.Active, &b.CreatedAt,
			&b.LocalName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}

		b.Unlocked = true
		if b.TierRequired != nil {
			required, ok := tiersByName[*b.TierRequired]
			if !ok || customerTier.PointsMin < required.PointsMin {
				b.Unlocked = false
			}
		}
		if b.PointsRequired != nil && balance < *b.PointsRequired {
			b.Unlocked = false
		}

		benefits = append(benefits, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read benefits: %w", err)
	}

	return benefits, nil
}

func (s *BenefitService) Create(ctx context.Context, req *benefit.CreateBenefitRequest) (*benefit.Benefit, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}

	var localID *uuid.UUID
	if req.LocalSlug != "" {
		var id uuid.UUID
		err := s.db.QueryRow(ctx, `SELECT id FROM locals WHERE slug = $1`, req.LocalSlug).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrLocalNotFound
			}
			return nil, fmt.Errorf("failed to resolve local: %w", err)
		}
		localID = &id
	}

	if req.TierRequired != nil {
		var exists bool
		err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tiers WHERE name = $1)`, *req.TierRequired).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check tier: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: unknown tier %q", apperrors.ErrInvalidInput, *req.TierRequired)
		}
	}

	b := &benefit.Benefit{
		ID:             uuid.New(),
		LocalID:        localID,
		Title:          req.Title,
		Description:    req.Description,
		TierRequired:   req.TierRequired,
		PointsRequired: req.PointsRequired,
		Active:         true,
		CreatedAt:      time.Now(),
	}

	query := `
		INSERT INTO benefits (id, local_id, title, description, tier_required, points_required, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query, b.ID, b.LocalID, b.Title, b.Description, b.TierRequired, b.PointsRequired, b.Active, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create benefit: %w", err)
	}

	return b, nil
}
