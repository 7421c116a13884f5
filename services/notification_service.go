package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/notification"
	"lokalyAPI/internal/qrtoken"
)

// PushProvider abstracts the push transport so the service works with
// or without FCM credentials (the provider is injected after startup).
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

func (s *NotificationService) RegisterDevice(ctx context.Context, customerClerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", apperrors.ErrInvalidInput)
	}

	var customerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM customers WHERE clerk_id = $1`, customerClerkID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCustomerNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	query := `
		INSERT INTO device_tokens (customer_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET customer_id = $1, platform = $3
	`
	if _, err := s.db.Exec(ctx, query, customerID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

// NotifyRedemption pushes "points earned" after a successful scan, and
// a separate congratulation when the scan crossed a tier boundary.
// Best effort only; redemption correctness never depends on it.
func (s *NotificationService) NotifyRedemption(ctx context.Context, customerID uuid.UUID, result *qrtoken.RedemptionResult) error {
	if s.pushProvider == nil {
		return nil
	}

	tokens, err := s.deviceTokens(ctx, customerID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	title := fmt.Sprintf("+%d points at %s", result.PointsAwarded, result.LocalName)
	body := fmt.Sprintf("Your balance is now %d points.", result.NewBalance)
	data := map[string]any{
		"type":        "redemption",
		"new_balance": result.NewBalance,
	}
	if err := s.pushProvider.SendPush(ctx, tokens, title, body, data); err != nil {
		return fmt.Errorf("failed to send redemption push: %w", err)
	}

	if result.NewTier != result.PreviousTier {
		title := fmt.Sprintf("You reached %s!", result.NewTier)
		body := fmt.Sprintf("Congratulations, you leveled up from %s to %s.", result.PreviousTier, result.NewTier)
		if err := s.pushProvider.SendPush(ctx, tokens, title, body, map[string]any{"type": "tier_up", "tier": result.NewTier}); err != nil {
			log.Printf("Failed to send tier-up push: %v", err)
		}
	}

	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, customerID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT customer_id, token, platform, created_at FROM device_tokens WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.CustomerID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device tokens: %w", err)
	}
	return tokens, nil
}
