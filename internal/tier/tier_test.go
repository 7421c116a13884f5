package tier

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func standardTable() []Tier {
	return []Tier{
		{ID: uuid.New(), Name: "Bronze", PointsMin: 0, PointsMax: intPtr(100)},
		{ID: uuid.New(), Name: "Silver", PointsMin: 100, PointsMax: intPtr(500)},
		{ID: uuid.New(), Name: "Gold", PointsMin: 500, PointsMax: nil},
	}
}

func TestTierForBoundaries(t *testing.T) {
	table := standardTable()

	cases := []struct {
		balance int
		want    string
	}{
		{0, "Bronze"},
		{99, "Bronze"},
		{100, "Silver"}, // points_max is exclusive
		{105, "Silver"},
		{499, "Silver"},
		{500, "Gold"},
		{1000000, "Gold"},
	}

	for _, c := range cases {
		got, err := TierFor(c.balance, table)
		require.NoError(t, err)
		assert.Equal(t, c.want, got.Name, "balance %d", c.balance)
	}
}

func TestTierForIsDeterministic(t *testing.T) {
	table := standardTable()

	first, err := TierFor(250, table)
	require.NoError(t, err)
	second, err := TierFor(250, table)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTierForCrossesBoundary(t *testing.T) {
	// A customer at 95 points who earns 10 lands in Silver.
	table := standardTable()

	before, err := TierFor(95, table)
	require.NoError(t, err)
	after, err := TierFor(95+10, table)
	require.NoError(t, err)

	assert.Equal(t, "Bronze", before.Name)
	assert.Equal(t, "Silver", after.Name)
}

func TestTierForEmptyTable(t *testing.T) {
	_, err := TierFor(10, nil)
	assert.Error(t, err)
}

func TestValidateTableAcceptsStandardTable(t *testing.T) {
	assert.NoError(t, ValidateTable(standardTable()))
}

func TestValidateTableRejectsBadTables(t *testing.T) {
	cases := []struct {
		name  string
		table []Tier
	}{
		{"empty", nil},
		{"does not start at zero", []Tier{
			{Name: "Bronze", PointsMin: 10, PointsMax: nil},
		}},
		{"gap between tiers", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: intPtr(100)},
			{Name: "Silver", PointsMin: 150, PointsMax: nil},
		}},
		{"overlap between tiers", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: intPtr(100)},
			{Name: "Silver", PointsMin: 50, PointsMax: nil},
		}},
		{"bounded top tier", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: intPtr(100)},
			{Name: "Silver", PointsMin: 100, PointsMax: intPtr(500)},
		}},
		{"unbounded middle tier", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: nil},
			{Name: "Silver", PointsMin: 100, PointsMax: nil},
		}},
		{"empty range", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: intPtr(0)},
			{Name: "Silver", PointsMin: 0, PointsMax: nil},
		}},
		{"duplicate name", []Tier{
			{Name: "Bronze", PointsMin: 0, PointsMax: intPtr(100)},
			{Name: "Bronze", PointsMin: 100, PointsMax: nil},
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Error(t, ValidateTable(c.table))
		})
	}
}

func TestNextTier(t *testing.T) {
	table := standardTable()

	bronze, err := TierFor(0, table)
	require.NoError(t, err)
	next, ok := NextTier(bronze, table)
	require.True(t, ok)
	assert.Equal(t, "Silver", next.Name)

	gold, err := TierFor(9999, table)
	require.NoError(t, err)
	_, ok = NextTier(gold, table)
	assert.False(t, ok, "top tier has no next tier")
}
