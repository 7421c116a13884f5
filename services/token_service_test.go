package services

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/qrtoken"
)

func TestGenerateTokenIsOpaqueAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := generateToken()
		require.NoError(t, err)

		// 32 random bytes in unpadded url-safe base64.
		assert.Len(t, token, 43)
		_, err = base64.RawURLEncoding.DecodeString(token)
		assert.NoError(t, err)

		assert.False(t, seen[token], "token collision: %s", token)
		seen[token] = true
	}
}

func TestIssueTokenRejectsBadInput(t *testing.T) {
	svc := NewTokenService(nil)
	negative := -5

	cases := []struct {
		name string
		req  *qrtoken.IssueTokenRequest
	}{
		{"missing pos identifier", &qrtoken.IssueTokenRequest{}},
		{"negative validity", &qrtoken.IssueTokenRequest{PosIdentifier: "table-1", ValidityMinutes: -1}},
		{"negative points", &qrtoken.IssueTokenRequest{PosIdentifier: "table-1", PointsToAward: &negative}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.IssueToken(context.Background(), "staff_x", c.req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestIssueTokenDefaults(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-issue")
	_, staffClerkID := seedStaff(t, pool, localID)

	svc := NewTokenService(pool)
	before := time.Now()
	resp, err := svc.IssueToken(context.Background(), staffClerkID, &qrtoken.IssueTokenRequest{
		PosIdentifier: "table-3",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "table-3", resp.PosIdentifier)
	assert.Equal(t, DefaultPointsPerVisit, resp.PointsToAward)

	wantExpiry := before.Add(DefaultValidityMinutes * time.Minute)
	assert.WithinDuration(t, wantExpiry, resp.ExpiresAt, 5*time.Second)

	png, err := base64.StdEncoding.DecodeString(resp.QrCodeBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	var storedPoints int
	var storedUsed bool
	err = pool.QueryRow(context.Background(),
		`SELECT points_to_award, used FROM qr_tokens WHERE token = $1`, resp.Token).
		Scan(&storedPoints, &storedUsed)
	require.NoError(t, err)
	assert.Equal(t, DefaultPointsPerVisit, storedPoints)
	assert.False(t, storedUsed)
}

func TestIssueTokenUnknownStaff(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	svc := NewTokenService(pool)
	_, err := svc.IssueToken(context.Background(), "staff_test_unknown", &qrtoken.IssueTokenRequest{
		PosIdentifier: "table-1",
	})
	assert.ErrorIs(t, err, apperrors.ErrStaffNotFound)
}

// Regenerating a code for the same POS slot leaves earlier tokens
// redeemable until they expire or get used.
func TestIssueTokenRegenerationKeepsOldTokenAlive(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-regen")
	_, staffClerkID := seedStaff(t, pool, localID)
	_, customerClerkID := seedCustomer(t, pool, 0, "Bronze")

	tokenSvc := NewTokenService(pool)
	first, err := tokenSvc.IssueToken(context.Background(), staffClerkID, &qrtoken.IssueTokenRequest{
		PosIdentifier: "table-9",
	})
	require.NoError(t, err)

	second, err := tokenSvc.IssueToken(context.Background(), staffClerkID, &qrtoken.IssueTokenRequest{
		PosIdentifier: "table-9",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	redemptionSvc := NewRedemptionService(pool, nil)
	_, err = redemptionSvc.Redeem(context.Background(), customerClerkID, first.Token)
	assert.NoError(t, err, "older token stays valid after regeneration")
}
