package tier

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Tier is one loyalty level. PointsMax is exclusive; nil means the tier
// is unbounded at the top.
type Tier struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	PointsMin int       `json:"points_min" db:"points_min"`
	PointsMax *int      `json:"points_max" db:"points_max"`
}

type UpsertTiersRequest struct {
	Tiers []TierInput `json:"tiers" validate:"required"`
}

type TierInput struct {
	Name      string `json:"name" validate:"required"`
	PointsMin int    `json:"points_min"`
	PointsMax *int   `json:"points_max"`
}

// TierFor selects the tier whose [PointsMin, PointsMax) range contains
// balance. The table must have passed ValidateTable, which makes the
// lookup total: exactly one tier matches any non-negative balance.
func TierFor(balance int, table []Tier) (Tier, error) {
	for _, t := range table {
		if balance >= t.PointsMin && (t.PointsMax == nil || balance < *t.PointsMax) {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("no tier covers balance %d", balance)
}

// ValidateTable checks that the tier ranges are contiguous and
// non-overlapping: the lowest starts at 0, each PointsMax equals the
// next PointsMin, and only the last tier is unbounded.
func ValidateTable(table []Tier) error {
	if len(table) == 0 {
		return fmt.Errorf("tier table is empty")
	}

	sorted := make([]Tier, len(table))
	copy(sorted, table)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PointsMin < sorted[j].PointsMin
	})

	if sorted[0].PointsMin != 0 {
		return fmt.Errorf("lowest tier %q must start at 0, got %d", sorted[0].Name, sorted[0].PointsMin)
	}

	seen := make(map[string]bool)
	for i, t := range sorted {
		if seen[t.Name] {
			return fmt.Errorf("duplicate tier name %q", t.Name)
		}
		seen[t.Name] = true

		last := i == len(sorted)-1
		if last {
			if t.PointsMax != nil {
				return fmt.Errorf("top tier %q must be unbounded", t.Name)
			}
			continue
		}

		if t.PointsMax == nil {
			return fmt.Errorf("tier %q is unbounded but is not the top tier", t.Name)
		}
		if *t.PointsMax <= t.PointsMin {
			return fmt.Errorf("tier %q has empty range [%d, %d)", t.Name, t.PointsMin, *t.PointsMax)
		}
		if next := sorted[i+1]; *t.PointsMax != next.PointsMin {
			return fmt.Errorf("gap or overlap between %q (ends %d) and %q (starts %d)",
				t.Name, *t.PointsMax, next.Name, next.PointsMin)
		}
	}

	return nil
}

// NextTier returns the tier directly above the given one, or false when
// the customer is already at the top.
func NextTier(current Tier, table []Tier) (Tier, bool) {
	if current.PointsMax == nil {
		return Tier{}, false
	}
	for _, t := range table {
		if t.PointsMin == *current.PointsMax {
			return t, true
		}
	}
	return Tier{}, false
}
