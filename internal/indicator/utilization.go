package indicator

import (
	"github.com/hydrosight/ipastat/internal/aggregate"
	"github.com/hydrosight/ipastat/internal/model"
)

// UtilizationRow is one year of the irrigation-utilization table.
type UtilizationRow struct {
	Year          int     `json:"year"`
	IrrigatedArea float64 `json:"irrigated_area"`
	Ratio         float64 `json:"utilization_ratio"`
}

// UtilizationAverage is the simple mean of the per-year values.
type UtilizationAverage struct {
	IrrigatedArea float64 `json:"irrigated_area"`
	Ratio         float64 `json:"utilization_ratio"`
}

// IrrigationUtilizationResult is the irrigated-area share of the scheme's
// command area, per year. When the dataset carries a CropID column the
// result also breaks the ratio down per crop category.
type IrrigationUtilizationResult struct {
	CCA     float64            `json:"cca"`
	Rows    []UtilizationRow   `json:"data"`
	Average UtilizationAverage `json:"average"`

	// Normalized is the per-category irrigated area divided by CCA, one
	// row per year. Empty when the dataset has no CropID categories; the
	// headline ratio never depends on the column.
	Normalized        []CategoryRow   `json:"normalized_area,omitempty"`
	NormalizedAverage map[int]float64 `json:"normalized_area_average,omitempty"`
}

// IrrigationUtilization computes totalIrrigatedArea/CCA per year over rows
// flagged IRRIGATED, plus the CCA-normalized per-category breakdown.
func IrrigationUtilization(rows []model.SeasonCropRecord, cca float64) (*IrrigationUtilizationResult, error) {
	if cca <= 0 {
		return nil, ErrInvalidCCA
	}

	base := aggregate.Rows(rows, aggregate.ExcludeCrops(aggregate.DefaultExcludedCrops...))
	irrigatedByYear := aggregate.SumBy(base, aggregate.Irrigated(),
		func(r model.SeasonCropRecord) int { return r.Year },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)
	irrigatedByYearCat := aggregate.SumBy(base, aggregate.Irrigated(),
		func(r model.SeasonCropRecord) [2]int { return [2]int{r.Year, r.CropID} },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)
	hasCategories := firstCropID(base) != 0

	result := &IrrigationUtilizationResult{CCA: cca}
	var areas, ratios []float64
	for _, year := range aggregate.Years(base, aggregate.And()) {
		area := irrigatedByYear[year]
		row := UtilizationRow{
			Year:          year,
			IrrigatedArea: roundTo(area, 2),
			Ratio:         roundTo(area/cca, 4),
		}
		result.Rows = append(result.Rows, row)
		areas = append(areas, row.IrrigatedArea)
		ratios = append(ratios, row.Ratio)

		if hasCategories {
			normalized := CategoryRow{Year: year, Areas: make(map[int]float64)}
			for id := model.MinCropID; id <= model.MaxCropID; id++ {
				normalized.Areas[id] = roundTo(irrigatedByYearCat[[2]int{year, id}]/cca, 4)
			}
			result.Normalized = append(result.Normalized, normalized)
		}
	}

	if mean, ok := meanOf(areas); ok {
		result.Average.IrrigatedArea = roundTo(mean, 2)
	}
	if mean, ok := meanOf(ratios); ok {
		result.Average.Ratio = roundTo(mean, 4)
	}

	if hasCategories {
		result.NormalizedAverage = make(map[int]float64)
		for id := model.MinCropID; id <= model.MaxCropID; id++ {
			result.NormalizedAverage[id] = roundTo(categoryMean(result.Normalized, id), 4)
		}
	}

	return result, nil
}
