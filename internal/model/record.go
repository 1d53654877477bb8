// Package model defines the domain types shared by the loader, the
// indicator calculators, and the scoring engine.
package model

import (
	"fmt"
	"strings"
)

// Season is the cropping-season code used in the raw datasets.
type Season int

const (
	SeasonAnnual Season = 0
	SeasonKharif Season = 1
	SeasonRabi   Season = 2
	SeasonZaid   Season = 3
	// SeasonFullYear appears only in the productivity dataset, where the
	// whole-year rollup is coded 4 instead of 0.
	SeasonFullYear Season = 4
)

// Label returns the display label used in detail tables, e.g. "Kharif (1)".
func (s Season) Label() string {
	switch s {
	case SeasonAnnual:
		return "Annual (0)"
	case SeasonKharif:
		return "Kharif (1)"
	case SeasonRabi:
		return "Rabi (2)"
	case SeasonZaid:
		return "Zaid (3)"
	case SeasonFullYear:
		return "Full Year (4)"
	}
	return fmt.Sprintf("Season (%d)", int(s))
}

// Key returns the lowercase summary-table key for the season. Both annual
// codes map to "annual" so the two dataset shapes share one summary layout.
func (s Season) Key() string {
	switch s {
	case SeasonKharif:
		return "kharif"
	case SeasonRabi:
		return "rabi"
	case SeasonZaid:
		return "zaid"
	case SeasonAnnual, SeasonFullYear:
		return "annual"
	}
	return ""
}

// StatusIrrigated is the row status marking irrigated area. Comparison is
// case-insensitive; anything else counts as unirrigated.
const StatusIrrigated = "IRRIGATED"

// SeasonCropRecord is one row of raw input: the reported area and water
// figures for a (year, season, crop) slice of the scheme.
type SeasonCropRecord struct {
	Year     int     `json:"year"`
	Season   Season  `json:"season"`
	CropType string  `json:"crop_type"`
	CropID   int     `json:"crop_id,omitempty"` // 1-8 category, 0 when the column is absent
	Area     float64 `json:"area"`              // hectares
	ETa      float64 `json:"eta"`               // actual evapotranspiration
	ETa90    float64 `json:"eta90"`             // reference ET at the 90% threshold
	TBP      float64 `json:"tbp"`               // total biomass production
	Status   string  `json:"status"`
}

// Irrigated reports whether the row is flagged IRRIGATED.
func (r SeasonCropRecord) Irrigated() bool {
	return strings.EqualFold(r.Status, StatusIrrigated)
}

// Crop categories referenced by the CropID column, as laid out in the
// source workbooks.
const (
	MinCropID = 1
	MaxCropID = 8
)

// CropCategoryLabels maps CropID to its display label.
var CropCategoryLabels = map[int]string{
	1: "Double Crop Kharif/Rabi",
	2: "Double Crop Rabi/Zaid",
	3: "Triple Crop",
	4: "Perennial Crops",
	5: "Kharif Crop",
	6: "Rabi Crop",
	7: "Double Crop Kharif/Zaid",
	8: "Zaid Crop",
}
