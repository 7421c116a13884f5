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
	"lokalyAPI/internal/local"
)

type LocalService struct {
	db *pgxpool.Pool
}

func NewLocalService(db *pgxpool.Pool) *LocalService {
	return &LocalService{db: db}
}

func (s *LocalService) ListActive(ctx context.Context) ([]*local.Local, error) {
	query := `
		SELECT id, slug, name, address, active, created_at
		FROM locals
		WHERE active = true
		ORDER BY name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list locals: %w", err)
	}
	defer rows.Close()

	locals := []*local.Local{}
	for rows.Next() {
		l := &local.Local{}
		if err := rows.Scan(&l.ID, &l.Slug, &l.Name, &l.Address, &l.Active, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan local: %w", err)
		}
		locals = append(locals, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locals: %w", err)
	}

	return locals, nil
}

func (s *LocalService) GetBySlug(ctx context.Context, slug string) (*local.Local, error) {
	query := `
		SELECT id, slug, name, address, active, created_at
		FROM locals
		WHERE slug = $1
	`
	l := &local.Local{}
	err := s.db.QueryRow(ctx, query, slug).Scan(&l.ID, &l.Slug, &l.Name, &l.Address, &l.Active, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLocalNotFound
		}
		return nil, fmt.Errorf("failed to get local: %w", err)
	}
	return l, nil
}

func (s *LocalService) Create(ctx context.Context, req *local.CreateLocalRequest) (*local.Local, error) {
	if req.Slug == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: slug and name are required", apperrors.ErrInvalidInput)
	}

	l := &local.Local{
		ID:        uuid.New(),
		Slug:      req.Slug,
		Name:      req.Name,
		Address:   req.Address,
		Active:    true,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO locals (id, slug, name, address, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, l.ID, l.Slug, l.Name, l.Address, l.Active, l.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create local: %w", err)
	}

	return l, nil
}

// Update edits name, address and the active flag. The slug is the
// local's identity and never changes after creation; deactivation is a
// soft flag, never a delete.
func (s *LocalService) Update(ctx context.Context, slug string, req *local.UpdateLocalRequest) (*local.Local, error) {
	query := `
		UPDATE locals
		SET
			name = COALESCE(NULLIF($2, ''), name),
			address = COALESCE(NULLIF($3, ''), address),
			active = COALESCE($4, active)
		WHERE slug = $1
		RETURNING id, slug, name, address, active, created_at
	`
	l := &local.Local{}
	err := s.db.QueryRow(ctx, query, slug, req.Name, req.Address, req.Active).Scan(
		&l.ID, &l.Slug, &l.Name, &l.Address, &l.Active, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLocalNotFound
		}
		return nil, fmt.Errorf("failed to update local: %w", err)
	}
	return l, nil
}
