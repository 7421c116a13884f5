package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/qrtoken"
	"lokalyAPI/internal/tier"
)

// RedemptionService consumes QR tokens. Everything a successful scan
// does (mark token used, record the visit, credit points, recompute the
// tier) happens inside one transaction: either all of it commits or the
// token stays redeemable.
type RedemptionService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService

	// One visit per customer per local per calendar day.
	limitDailyVisits bool
}

func NewRedemptionService(db *pgxpool.Pool, notificationService *NotificationService) *RedemptionService {
	return &RedemptionService{
		db:                  db,
		notificationService: notificationService,
		limitDailyVisits:    true,
	}
}

func (s *RedemptionService) Redeem(ctx context.Context, customerClerkID string, token string) (*qrtoken.RedemptionResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", apperrors.ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		tokenID   uuid.UUID
		localID   uuid.UUID
		points    int
		expiresAt time.Time
		localName string
	)
	tokenQuery := `
		SELECT t.id, t.local_id, t.points_to_award, t.expires_at, l.name
		FROM qr_tokens t
		JOIN locals l ON l.id = t.local_id
		WHERE t.token = $1
	`
	err = tx.QueryRow(ctx, tokenQuery, token).Scan(&tokenID, &localID, &points, &expiresAt, &localName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	// Expiry outranks the used flag: an expired token reports expired
	// even if it was also consumed at some point.
	if !expiresAt.After(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}

	// The single-use guard. The conditional update either wins the row
	// or loses it to a concurrent scan; two redemptions of the same
	// token can never both see RowsAffected == 1.
	ct, err := tx.Exec(ctx, `UPDATE qr_tokens SET used = true WHERE id = $1 AND used = false`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark token used: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.ErrTokenAlreadyUsed
	}

	var (
		customerID   uuid.UUID
		prevTierName string
	)
	err = tx.QueryRow(ctx, `SELECT id, tier FROM customers WHERE clerk_id = $1`, customerClerkID).Scan(&customerID, &prevTierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if s.limitDailyVisits {
		var alreadyVisited bool
		dupQuery := `
			SELECT EXISTS(
				SELECT 1 FROM visits
				WHERE customer_id = $1 AND local_id = $2 AND created_at::date = CURRENT_DATE
			)
		`
		if err := tx.QueryRow(ctx, dupQuery, customerID, localID).Scan(&alreadyVisited); err != nil {
			return nil, fmt.Errorf("failed to check daily visit window: %w", err)
		}
		if alreadyVisited {
			return nil, apperrors.ErrDuplicateVisit
		}
	}

	visitID := uuid.New()
	insertVisitQuery := `
		INSERT INTO visits (id, customer_id, local_id, points_awarded, token_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := tx.Exec(ctx, insertVisitQuery, visitID, customerID, localID, points, tokenID); err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}

	// Atomic increment, never read-modify-write: concurrent redemptions
	// by the same customer against different tokens must not lose points.
	var newBalance int
	updateBalanceQuery := `
		UPDATE customers
		SET point_balance = point_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING point_balance
	`
	if err := tx.QueryRow(ctx, updateBalanceQuery, points, customerID).Scan(&newBalance); err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	table, err := loadTierTable(ctx, tx)
	if err != nil {
		return nil, err
	}
	newTier, err := tier.TierFor(newBalance, table)
	if err != nil {
		return nil, fmt.Errorf("tier lookup failed: %w", err)
	}
	if newTier.Name != prevTierName {
		if _, err := tx.Exec(ctx, `UPDATE customers SET tier = $1 WHERE id = $2`, newTier.Name, customerID); err != nil {
			return nil, fmt.Errorf("failed to update tier: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	result := &qrtoken.RedemptionResult{
		PointsAwarded: points,
		NewBalance:    newBalance,
		PreviousTier:  prevTierName,
		NewTier:       newTier.Name,
		LocalName:     localName,
		VisitID:       visitID.String(),
	}

	// Push is fire and forget; a failed send never unwinds the visit.
	if s.notificationService != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notificationService.NotifyRedemption(ctx, customerID, result); err != nil {
				log.Printf("Failed to send redemption push: %v", err)
			}
		}()
	}

	return result, nil
}

func loadTierTable(ctx context.Context, tx pgx.Tx) ([]tier.Tier, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, points_min, points_max FROM tiers ORDER BY points_min`)
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
