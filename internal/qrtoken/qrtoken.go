package qrtoken

import (
	"time"

	"github.com/google/uuid"
)

type QRToken struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Token         string    `json:"token" db:"token"`
	LocalID       uuid.UUID `json:"local_id" db:"local_id"`
	StaffID       uuid.UUID `json:"staff_id" db:"staff_id"`
	PosIdentifier string    `json:"pos_identifier" db:"pos_identifier"`
	PointsToAward int       `json:"points_to_award" db:"points_to_award"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	Used          bool      `json:"used" db:"used"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type IssueTokenRequest struct {
	PosIdentifier   string `json:"pos_identifier" validate:"required"`
	ValidityMinutes int    `json:"validity_minutes"`
	PointsToAward   *int   `json:"points_to_award"`
}

// IssueTokenResponse carries everything the staff screen needs to show
// the QR: the raw token, its expiry and a ready-to-render PNG.
type IssueTokenResponse struct {
	Token         string    `json:"token"`
	PosIdentifier string    `json:"pos_identifier"`
	PointsToAward int       `json:"points_to_award"`
	ExpiresAt     time.Time `json:"expires_at"`
	QrCodeBase64  string    `json:"qr_code_base64"`
}

type RedeemRequest struct {
	Token string `json:"token" validate:"required"`
}

type RedemptionResult struct {
	PointsAwarded int    `json:"points_awarded"`
	NewBalance    int    `json:"new_balance"`
	PreviousTier  string `json:"previous_tier"`
	NewTier       string `json:"new_tier"`
	LocalName     string `json:"local_name"`
	VisitID       string `json:"visit_id"`
}
