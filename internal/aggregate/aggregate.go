// Package aggregate implements the groupby/filter/reduce primitives shared
// by the indicator calculators. A key with zero matching rows is absent
// from the result map, never zero, so consumers can distinguish "no data"
// from a genuine zero.
package aggregate

import (
	"slices"
	"sort"

	"github.com/hydrosight/ipastat/internal/model"
)

// Filter is a row predicate. Filters compose with And.
type Filter func(model.SeasonCropRecord) bool

// DefaultExcludedCrops lists crop types removed from adequacy, equity,
// cropping-intensity, and irrigation-utilization computations. Fixed
// policy, not configuration.
var DefaultExcludedCrops = []string{"Other Unirrigated"}

// And combines filters; the zero-filter case matches everything.
func And(filters ...Filter) Filter {
	return func(r model.SeasonCropRecord) bool {
		for _, f := range filters {
			if !f(r) {
				return false
			}
		}
		return true
	}
}

// SeasonIs matches rows of one season code.
func SeasonIs(s model.Season) Filter {
	return func(r model.SeasonCropRecord) bool { return r.Season == s }
}

// Irrigated matches rows flagged IRRIGATED.
func Irrigated() Filter {
	return func(r model.SeasonCropRecord) bool { return r.Irrigated() }
}

// YearIs matches rows of one year.
func YearIs(year int) Filter {
	return func(r model.SeasonCropRecord) bool { return r.Year == year }
}

// CropIs matches rows of one crop type.
func CropIs(crop string) Filter {
	return func(r model.SeasonCropRecord) bool { return r.CropType == crop }
}

// CropIDIs matches rows of one CropID category.
func CropIDIs(id int) Filter {
	return func(r model.SeasonCropRecord) bool { return r.CropID == id }
}

// ExcludeCrops removes the named crop types.
func ExcludeCrops(names ...string) Filter {
	return func(r model.SeasonCropRecord) bool {
		return !slices.Contains(names, r.CropType)
	}
}

// Rows returns the subset of rows matching the filter.
func Rows(rows []model.SeasonCropRecord, f Filter) []model.SeasonCropRecord {
	var out []model.SeasonCropRecord
	for _, r := range rows {
		if f(r) {
			out = append(out, r)
		}
	}
	return out
}

// SumBy groups matching rows by key and sums the value. Keys with no
// matching rows are absent.
func SumBy[K comparable](rows []model.SeasonCropRecord, f Filter, key func(model.SeasonCropRecord) K, value func(model.SeasonCropRecord) float64) map[K]float64 {
	out := make(map[K]float64)
	for _, r := range rows {
		if !f(r) {
			continue
		}
		out[key(r)] += value(r)
	}
	return out
}

// MeanBy groups matching rows by key and takes the arithmetic mean of the
// value over each non-empty group. Keys with no matching rows are absent.
func MeanBy[K comparable](rows []model.SeasonCropRecord, f Filter, key func(model.SeasonCropRecord) K, value func(model.SeasonCropRecord) float64) map[K]float64 {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, r := range rows {
		if !f(r) {
			continue
		}
		k := key(r)
		sums[k] += value(r)
		counts[k]++
	}
	out := make(map[K]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out
}

// YearCrop is the composite key for year-by-crop matrices.
type YearCrop struct {
	Year int
	Crop string
}

// Years returns the distinct years of matching rows in ascending order.
func Years(rows []model.SeasonCropRecord, f Filter) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range rows {
		if f(r) && !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Crops returns the distinct crop types of matching rows in order of first
// appearance.
func Crops(rows []model.SeasonCropRecord, f Filter) []string {
	seen := make(map[string]bool)
	var crops []string
	for _, r := range rows {
		if f(r) && !seen[r.CropType] {
			seen[r.CropType] = true
			crops = append(crops, r.CropType)
		}
	}
	return crops
}

// CropsSorted returns the distinct crop types of matching rows in
// lexicographic order.
func CropsSorted(rows []model.SeasonCropRecord, f Filter) []string {
	crops := Crops(rows, f)
	sort.Strings(crops)
	return crops
}
