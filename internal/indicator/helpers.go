package indicator

import (
	"sort"

	"github.com/hydrosight/ipastat/internal/aggregate"
)

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func meanOf(values []float64) (float64, bool) { return aggregate.Mean(values) }

func roundTo(v float64, places int) float64 { return aggregate.Round(v, places) }

func fptr(v float64) *float64 { return &v }
