package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/tier"
)

type TierService struct {
	db *pgxpool.Pool
}

func NewTierService(db *pgxpool.Pool) *TierService {
	return &TierService{db: db}
}

func (s *TierService) ListTiers(ctx context.Context) ([]tier.Tier, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, points_min, points_max FROM tiers ORDER BY points_min`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}
	defer rows.Close()

	var table []tier.Tier
	for rows.Next() {
		var t tier.Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.PointsMin, &t.PointsMax); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		table = append(table, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tiers: %w", err)
	}
	return table, nil
}

// ReplaceTiers swaps in a whole new tier table. The incoming ranges are
// validated before anything is written, and every customer's tier is
// recomputed against the new table in the same transaction.
func (s *TierService) ReplaceTiers(ctx context.Context, req *tier.UpsertTiersRequest) ([]tier.Tier, error) {
	table := make([]tier.Tier, 0, len(req.Tiers))
	for _, in := range req.Tiers {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: tier name is required", apperrors.ErrInvalidInput)
		}
		table = append(table, tier.Tier{
			ID:        uuid.New(),
			Name:      in.Name,
			PointsMin: in.PointsMin,
			PointsMax: in.PointsMax,
		})
	}

	if err := tier.ValidateTable(table); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tiers`); err != nil {
		return nil, fmt.Errorf("failed to clear tiers: %w", err)
	}

	for _, t := range table {
		_, err := tx.Exec(ctx,
			`INSERT INTO tiers (id, name, points_min, points_max) VALUES ($1, $2, $3, $4)`,
			t.ID, t.Name, t.PointsMin, t.PointsMax,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert tier %q: %w", t.Name, err)
		}
	}

	// Re-slot every customer into the tier covering their balance.
	recompute := `
		UPDATE customers c
		SET tier = t.name
		FROM tiers t
		WHERE c.point_balance >= t.points_min
		  AND (t.points_max IS NULL OR c.point_balance < t.points_max)
	`
	if _, err := tx.Exec(ctx, recompute); err != nil {
		return nil, fmt.Errorf("failed to recompute customer tiers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit tier update: %w", err)
	}

	return table, nil
}

// CheckIntegrity validates the stored tier table. Called at startup so
// a hand-edited table fails loudly instead of breaking redemptions.
func (s *TierService) CheckIntegrity(ctx context.Context) error {
	table, err := s.ListTiers(ctx)
	if err != nil {
		return err
	}
	if err := tier.ValidateTable(table); err != nil {
		return fmt.Errorf("tier table integrity check failed: %w", err)
	}
	return nil
}
