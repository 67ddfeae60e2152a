// Package selection picks the top scored articles for a run.
package selection

import (
	"sort"

	"ContentAgent/internal/domain"
)

// Top filters out articles below minThreshold, orders the rest by overall
// score descending, and returns at most targetCount of them. The sort is
// stable so equal scores keep their incoming order. A non-positive
// targetCount selects nothing.
func Top(scored []domain.Scored, targetCount int, minThreshold float64) []domain.Scored {
	if targetCount <= 0 {
		return []domain.Scored{}
	}

	eligible := make([]domain.Scored, 0, len(scored))
	for _, s := range scored {
		if s.Overall >= minThreshold {
			eligible = append(eligible, s)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Overall > eligible[j].Overall
	})

	if len(eligible) > targetCount {
		eligible = eligible[:targetCount]
	}
	return eligible
}
