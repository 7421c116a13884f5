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
	"lokalyAPI/internal/customer"
	"lokalyAPI/internal/tier"
	"lokalyAPI/internal/visit"
)

type CustomerService struct {
	db *pgxpool.Pool
}

func NewCustomerService(db *pgxpool.Pool) *CustomerService {
	return &CustomerService{db: db}
}

// CreateCustomer provisions a customer from the Clerk webhook. New
// accounts start at zero points in the lowest tier.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	if req.ClerkID == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: clerk_id and email are required", apperrors.ErrInvalidInput)
	}

	table, err := s.tierTable(ctx)
	if err != nil {
		return nil, err
	}
	baseTier, err := tier.TierFor(0, table)
	if err != nil {
		return nil, fmt.Errorf("tier lookup failed: %w", err)
	}

	c := &customer.Customer{
		ID:           uuid.New(),
		ClerkID:      req.ClerkID,
		Email:        req.Email,
		Name:         req.Name,
		PointBalance: 0,
		Tier:         baseTier.Name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO customers (id, clerk_id, email, name, point_balance, tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.Exec(ctx, query, c.ID, c.ClerkID, c.Email, c.Name, c.PointBalance, c.Tier, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return c, nil
}

func (s *CustomerService) GetByClerkID(ctx context.Context, clerkID string) (*customer.Customer, error) {
	query := `
		SELECT id, clerk_id, email, name, point_balance, tier, created_at, updated_at
		FROM customers
		WHERE clerk_id = $1
	`
	c := &customer.Customer{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&c.ID, &c.ClerkID, &c.Email, &c.Name, &c.PointBalance, &c.Tier, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// GetProfile returns the dashboard view: the customer plus how many
// points remain until the next tier.
func (s *CustomerService) GetProfile(ctx context.Context, clerkID string) (*customer.Profile, error) {
	c, err := s.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	profile := &customer.Profile{Customer: *c}

	table, err := s.tierTable(ctx)
	if err != nil {
		return nil, err
	}
	current, err := tier.TierFor(c.PointBalance, table)
	if err != nil {
		return nil, fmt.Errorf("tier lookup failed: %w", err)
	}
	if next, ok := tier.NextTier(current, table); ok {
		profile.NextTier = next.Name
		profile.PointsToNextTier = next.PointsMin - c.PointBalance
	}

	return profile, nil
}

func (s *CustomerService) UpdateProfile(ctx context.Context, clerkID string, req *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	query := `
		UPDATE customers
		SET
			name = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING id, clerk_id, email, name, point_balance, tier, created_at, updated_at
	`
	c := &customer.Customer{}
	err := s.db.QueryRow(ctx, query, clerkID, req.Name, req.Email).Scan(
		&c.ID, &c.ClerkID, &c.Email, &c.Name, &c.PointBalance, &c.Tier, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM customers WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}
	return nil
}

// GetVisitHistory lists the customer's visits, newest first.
func (s *CustomerService) GetVisitHistory(ctx context.Context, clerkID string, limit int) (*visit.HistoryResponse, error) {
	c, err := s.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT v.id, v.customer_id, v.local_id, v.points_awarded, v.token_id, v.created_at, l.name, l.slug
		FROM visits v
		JOIN locals l ON l.id = v.local_id
		WHERE v.customer_id = $1
		ORDER BY v.created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, c.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load visit history: %w", err)
	}
	defer rows.Close()

	resp := &visit.HistoryResponse{Visits: []*visit.VisitWithLocal{}}
	for rows.Next() {
		v := &visit.VisitWithLocal{}
		err := rows.Scan(
			&v.ID, &v.CustomerID, &v.LocalID, &v.PointsAwarded, &v.TokenID, &v.CreatedAt,
			&v.LocalName, &v.LocalSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		resp.Visits = append(resp.Visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visits: %w", err)
	}

	statsQuery := `SELECT COUNT(*), COALESCE(SUM(points_awarded), 0) FROM visits WHERE customer_id = $1`
	if err := s.db.QueryRow(ctx, statsQuery, c.ID).Scan(&resp.TotalVisits, &resp.TotalPoints); err != nil {
		return nil, fmt.Errorf("failed to load visit stats: %w", err)
	}

	return resp, nil
}

func (s *CustomerService) tierTable(ctx context.Context) ([]tier.Tier, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, points_min, points_max FROM tiers ORDER BY points_min`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier table: %w", err)
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
