package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL (see
// db/schema.sql). Tests that need Postgres skip when it is unset so the
// pure-logic tests still run everywhere.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	t.Cleanup(func() {
		cleanupTestData(t, pool)
		pool.Close()
	})

	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	// Order matters: visits and tokens reference locals and customers.
	statements := []string{
		`DELETE FROM visit_ratings WHERE customer_id IN (SELECT id FROM customers WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM visits WHERE customer_id IN (SELECT id FROM customers WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM qr_tokens WHERE local_id IN (SELECT id FROM locals WHERE slug LIKE 'test-%')`,
		`DELETE FROM device_tokens WHERE customer_id IN (SELECT id FROM customers WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM customers WHERE email LIKE 'test%@example.com'`,
		`DELETE FROM staff WHERE clerk_id LIKE 'staff_test_%'`,
		`DELETE FROM benefits WHERE local_id IN (SELECT id FROM locals WHERE slug LIKE 'test-%')`,
		`DELETE FROM locals WHERE slug LIKE 'test-%'`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
	}
}

// seedTiers installs the Bronze/Silver/Gold table the tests assume.
func seedTiers(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `DELETE FROM tiers`)
	require.NoError(t, err)

	silverMin, goldMin := 100, 500
	rows := []struct {
		name string
		min  int
		max  *int
	}{
		{"Bronze", 0, &silverMin},
		{"Silver", silverMin, &goldMin},
		{"Gold", goldMin, nil},
	}
	for _, r := range rows {
		_, err := pool.Exec(ctx,
			`INSERT INTO tiers (id, name, points_min, points_max) VALUES ($1, $2, $3, $4)`,
			uuid.New(), r.name, r.min, r.max,
		)
		require.NoError(t, err)
	}
}

func seedLocal(t *testing.T, pool *pgxpool.Pool, slug string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO locals (id, slug, name, address, active, created_at) VALUES ($1, $2, $3, 'Test St 1', true, NOW())`,
		id, slug, "Test Local "+slug,
	)
	require.NoError(t, err)
	return id
}

func seedStaff(t *testing.T, pool *pgxpool.Pool, localID uuid.UUID) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	clerkID := fmt.Sprintf("staff_test_%s", id.String()[:8])
	_, err := pool.Exec(context.Background(),
		`INSERT INTO staff (id, clerk_id, local_id, active, created_at) VALUES ($1, $2, $3, true, NOW())`,
		id, clerkID, localID,
	)
	require.NoError(t, err)
	return id, clerkID
}

func seedCustomer(t *testing.T, pool *pgxpool.Pool, balance int, tierName string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	clerkID := fmt.Sprintf("customer_test_%s", id.String()[:8])
	email := fmt.Sprintf("test+%s@example.com", id.String()[:8])
	_, err := pool.Exec(context.Background(),
		`INSERT INTO customers (id, clerk_id, email, name, point_balance, tier, created_at, updated_at)
		 VALUES ($1, $2, $3, 'Test Customer', $4, $5, NOW(), NOW())`,
		id, clerkID, email, balance, tierName,
	)
	require.NoError(t, err)
	return id, clerkID
}

func seedToken(t *testing.T, pool *pgxpool.Pool, localID, staffID uuid.UUID, points int, expiresAt time.Time) string {
	t.Helper()
	token, err := generateToken()
	require.NoError(t, err)
	_, err = pool.Exec(context.Background(),
		`INSERT INTO qr_tokens (id, token, local_id, staff_id, pos_identifier, points_to_award, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, 'table-7', $5, $6, false, NOW())`,
		uuid.New(), token, localID, staffID, points, expiresAt,
	)
	require.NoError(t, err)
	return token
}

func customerBalance(t *testing.T, pool *pgxpool.Pool, customerID uuid.UUID) int {
	t.Helper()
	var balance int
	err := pool.QueryRow(context.Background(),
		`SELECT point_balance FROM customers WHERE id = $1`, customerID).Scan(&balance)
	require.NoError(t, err)
	return balance
}
