package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skip2/go-qrcode"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/qrtoken"
)

const (
	DefaultValidityMinutes = 5
	DefaultPointsPerVisit  = 25
)

type TokenService struct {
	db *pgxpool.Pool
}

func NewTokenService(db *pgxpool.Pool) *TokenService {
	return &TokenService{db: db}
}

// generateToken returns the opaque string printed into the QR code. It
// gates point issuance, so it comes from crypto/rand, never from a
// counter or timestamp.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IssueToken mints a QR token for the POS slot, bound to the local of
// the staff member making the request. Outstanding tokens for the same
// slot stay redeemable until their own expiry or use; regenerating is a
// plain insert.
func (s *TokenService) IssueToken(ctx context.Context, staffClerkID string, req *qrtoken.IssueTokenRequest) (*qrtoken.IssueTokenResponse, error) {
	if req.PosIdentifier == "" {
		return nil, fmt.Errorf("%w: pos_identifier is required", apperrors.ErrInvalidInput)
	}
	if req.ValidityMinutes < 0 {
		return nil, fmt.Errorf("%w: validity_minutes must be positive", apperrors.ErrInvalidInput)
	}
	validity := req.ValidityMinutes
	if validity == 0 {
		validity = DefaultValidityMinutes
	}

	points := DefaultPointsPerVisit
	if req.PointsToAward != nil {
		if *req.PointsToAward < 0 {
			return nil, fmt.Errorf("%w: points_to_award must not be negative", apperrors.ErrInvalidInput)
		}
		points = *req.PointsToAward
	}

	var (
		staffID     uuid.UUID
		localID     uuid.UUID
		localActive bool
	)
	staffQuery := `
		SELECT s.id, s.local_id, l.active
		FROM staff s
		JOIN locals l ON l.id = s.local_id
		WHERE s.clerk_id = $1 AND s.active = true
	`
	err := s.db.QueryRow(ctx, staffQuery, staffClerkID).Scan(&staffID, &localID, &localActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to resolve staff member: %w", err)
	}
	if !localActive {
		return nil, apperrors.ErrLocalNotFound
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(validity) * time.Minute)

	insertQuery := `
		INSERT INTO qr_tokens (id, token, local_id, staff_id, pos_identifier, points_to_award, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	`
	_, err = s.db.Exec(ctx, insertQuery, uuid.New(), token, localID, staffID, req.PosIdentifier, points, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create qr token: %w", err)
	}

	qrContent := fmt.Sprintf("lokaly://visit/%s", token)
	pngBytes, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &qrtoken.IssueTokenResponse{
		Token:         token,
		PosIdentifier: req.PosIdentifier,
		PointsToAward: points,
		ExpiresAt:     expiresAt,
		QrCodeBase64:  base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}
