package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokalyAPI/internal/apperrors"
)

func TestRedeemRejectsEmptyToken(t *testing.T) {
	svc := NewRedemptionService(nil, nil)

	_, err := svc.Redeem(context.Background(), "customer_x", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRedeemSuccess(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-central")
	staffID, _ := seedStaff(t, pool, localID)
	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	token := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)
	result, err := svc.Redeem(context.Background(), customerClerkID, token)
	require.NoError(t, err)

	assert.Equal(t, 25, result.PointsAwarded)
	assert.Equal(t, 25, result.NewBalance)
	assert.Equal(t, "Bronze", result.PreviousTier)
	assert.Equal(t, "Bronze", result.NewTier)
	assert.Equal(t, "Test Local test-cafe-central", result.LocalName)
	assert.NotEmpty(t, result.VisitID)

	assert.Equal(t, 25, customerBalance(t, pool, customerID))

	var visitCount int
	err = pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM visits WHERE customer_id = $1`, customerID).Scan(&visitCount)
	require.NoError(t, err)
	assert.Equal(t, 1, visitCount)
}

func TestRedeemSameTokenTwice(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-reuse")
	staffID, _ := seedStaff(t, pool, localID)
	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	token := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)

	_, err := svc.Redeem(context.Background(), customerClerkID, token)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), customerClerkID, token)
	assert.ErrorIs(t, err, apperrors.ErrTokenAlreadyUsed)

	// The failed attempt must not move the balance.
	assert.Equal(t, 25, customerBalance(t, pool, customerID))
}

func TestRedeemUnknownToken(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	_, customerClerkID := seedCustomer(t, pool, 0, "Bronze")

	svc := NewRedemptionService(pool, nil)
	_, err := svc.Redeem(context.Background(), customerClerkID, "no-such-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestRedeemExpiredToken(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-expired")
	staffID, _ := seedStaff(t, pool, localID)
	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	token := seedToken(t, pool, localID, staffID, 25, time.Now().Add(-time.Minute))

	svc := NewRedemptionService(pool, nil)
	_, err := svc.Redeem(context.Background(), customerClerkID, token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	assert.Equal(t, 0, customerBalance(t, pool, customerID))

	// The expired token must still be unused: expiry never consumes it.
	var used bool
	err = pool.QueryRow(context.Background(),
		`SELECT used FROM qr_tokens WHERE token = $1`, token).Scan(&used)
	require.NoError(t, err)
	assert.False(t, used)
}

func TestRedeemUnknownCustomer(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-nocust")
	staffID, _ := seedStaff(t, pool, localID)
	token := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)
	_, err := svc.Redeem(context.Background(), "customer_does_not_exist", token)
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

	// The rollback must leave the token redeemable.
	var used bool
	err = pool.QueryRow(context.Background(),
		`SELECT used FROM qr_tokens WHERE token = $1`, token).Scan(&used)
	require.NoError(t, err)
	assert.False(t, used)
}

func TestRedeemSecondVisitSameLocalSameDay(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-daily")
	staffID, _ := seedStaff(t, pool, localID)
	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	first := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))
	second := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)

	_, err := svc.Redeem(context.Background(), customerClerkID, first)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), customerClerkID, second)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateVisit)

	assert.Equal(t, 25, customerBalance(t, pool, customerID))
}

func TestRedeemCrossesTierBoundary(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-levelup")
	staffID, _ := seedStaff(t, pool, localID)
	_, customerClerkID := seedCustomer(t, pool, 95, "Bronze")
	token := seedToken(t, pool, localID, staffID, 10, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)
	result, err := svc.Redeem(context.Background(), customerClerkID, token)
	require.NoError(t, err)

	assert.Equal(t, 105, result.NewBalance)
	assert.Equal(t, "Bronze", result.PreviousTier)
	assert.Equal(t, "Silver", result.NewTier)

	var storedTier string
	err = pool.QueryRow(context.Background(),
		`SELECT tier FROM customers WHERE clerk_id = $1`, customerClerkID).Scan(&storedTier)
	require.NoError(t, err)
	assert.Equal(t, "Silver", storedTier)
}

// TestRedeemConcurrentSameToken is the single-use race: N simultaneous
// scans of one fresh token must produce exactly one success, and the
// balance must move exactly once.
func TestRedeemConcurrentSameToken(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	localID := seedLocal(t, pool, "test-cafe-race")
	staffID, _ := seedStaff(t, pool, localID)
	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	token := seedToken(t, pool, localID, staffID, 25, time.Now().Add(5*time.Minute))

	svc := NewRedemptionService(pool, nil)

	const n = 10
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), customerClerkID, token)
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperrors.ErrTokenAlreadyUsed):
			conflicts++
		default:
			t.Errorf("unexpected redemption error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one scan wins")
	assert.Equal(t, n-1, conflicts, "every other scan sees the token as used")
	assert.Equal(t, 25, customerBalance(t, pool, customerID), "points credited exactly once")
}

// TestRedeemBalanceConservation: K successful redemptions add exactly
// the sum of their point values, failed attempts add nothing.
func TestRedeemBalanceConservation(t *testing.T) {
	pool := setupTestDB(t)
	seedTiers(t, pool)

	customerID, customerClerkID := seedCustomer(t, pool, 0, "Bronze")
	svc := NewRedemptionService(pool, nil)

	points := []int{25, 10, 40}
	want := 0
	for i, p := range points {
		localID := seedLocal(t, pool, "test-cafe-sum-"+string(rune('a'+i)))
		staffID, _ := seedStaff(t, pool, localID)
		token := seedToken(t, pool, localID, staffID, p, time.Now().Add(5*time.Minute))

		result, err := svc.Redeem(context.Background(), customerClerkID, token)
		require.NoError(t, err)
		want += p
		assert.Equal(t, want, result.NewBalance)
	}

	// A failed attempt on a bogus token leaves the sum intact.
	_, err := svc.Redeem(context.Background(), customerClerkID, "bogus")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	assert.Equal(t, want, customerBalance(t, pool, customerID))
}
