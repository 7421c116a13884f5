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
	"lokalyAPI/internal/staff"
)

type StaffService struct {
	db *pgxpool.Pool
}

func NewStaffService(db *pgxpool.Pool) *StaffService {
	return &StaffService{db: db}
}

func (s *StaffService) GetByClerkID(ctx context.Context, clerkID string) (*staff.StaffWithLocal, error) {
	query := `
		SELECT s.id, s.clerk_id, s.local_id, s.active, s.created_at, l.slug, l.name
		FROM staff s
		JOIN locals l ON l.id = s.local_id
		WHERE s.clerk_id = $1
	`
	sw := &staff.StaffWithLocal{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&sw.ID, &sw.ClerkID, &sw.LocalID, &sw.Active, &sw.CreatedAt, &sw.LocalSlug, &sw.LocalName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return sw, nil
}

// Create binds an identity to exactly one local. A staff member issuing
// QR codes always issues them for this local.
func (s *StaffService) Create(ctx context.Context, req *staff.CreateStaffRequest) (*staff.Staff, error) {
	if req.ClerkID == "" || req.LocalSlug == "" {
		return nil, fmt.Errorf("%w: clerk_id and local_slug are required", apperrors.ErrInvalidInput)
	}

	var localID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM locals WHERE slug = $1 AND active = true`, req.LocalSlug).Scan(&localID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLocalNotFound
		}
		return nil, fmt.Errorf("failed to resolve local: %w", err)
	}

	st := &staff.Staff{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		LocalID:   localID,
		Active:    true,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO staff (id, clerk_id, local_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, st.ID, st.ClerkID, st.LocalID, st.Active, st.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}

	return st, nil
}

func (s *StaffService) Deactivate(ctx context.Context, staffID string) error {
	id, err := uuid.Parse(staffID)
	if err != nil {
		return fmt.Errorf("%w: invalid staff id", apperrors.ErrInvalidInput)
	}

	ct, err := s.db.Exec(ctx, `UPDATE staff SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate staff member: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrStaffNotFound
	}
	return nil
}
