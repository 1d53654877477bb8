package indicator

import (
	"github.com/rotisserie/eris"

	"github.com/hydrosight/ipastat/internal/aggregate"
	"github.com/hydrosight/ipastat/internal/model"
)

// ErrMissingCropID is returned when the cropping-intensity breakdown is
// requested on a dataset without a usable CropID column.
var ErrMissingCropID = eris.New("indicator: dataset has no CropID categories")

// CategoryRow is one year of per-category area figures, keyed by CropID.
type CategoryRow struct {
	Year  int             `json:"year"`
	Areas map[int]float64 `json:"areas"`
}

// IntensityRow is one year of the CCA-based table.
type IntensityRow struct {
	Year             int     `json:"year"`
	Intensity        float64 `json:"cropping_intensity"`
	TotalCroppedArea float64 `json:"total_cropped_area"`
}

// IntensityAverage is the simple mean of the per-year totals, not a
// re-aggregation of the raw rows.
type IntensityAverage struct {
	Intensity        float64 `json:"cropping_intensity"`
	TotalCroppedArea float64 `json:"total_cropped_area"`
}

// CroppingIntensityResult holds the three cropping-intensity tables:
// per-category cropped area, the same breakdown normalized by CCA, and the
// per-year intensity ratio.
type CroppingIntensityResult struct {
	CCA            float64        `json:"cca"`
	CategoryLabels map[int]string `json:"category_labels"`

	CroppedArea        []CategoryRow   `json:"cropped_area"`
	CroppedAreaAverage map[int]float64 `json:"cropped_area_average"`

	Normalized        []CategoryRow   `json:"normalized_area"`
	NormalizedAverage map[int]float64 `json:"normalized_area_average"`

	Intensity        []IntensityRow   `json:"intensity"`
	IntensityAverage IntensityAverage `json:"intensity_average"`
}

// CroppingIntensity computes totalCroppedArea/CCA per year plus the
// per-category breakdown. Cropped area counts every row regardless of
// irrigation status; the indicator measures land use, not irrigation.
func CroppingIntensity(rows []model.SeasonCropRecord, cca float64) (*CroppingIntensityResult, error) {
	if cca <= 0 {
		return nil, ErrInvalidCCA
	}

	base := aggregate.Rows(rows, aggregate.ExcludeCrops(aggregate.DefaultExcludedCrops...))
	if firstCropID(base) == 0 {
		return nil, ErrMissingCropID
	}

	years := aggregate.Years(base, aggregate.And())
	areaByYearCat := aggregate.SumBy(base, aggregate.And(),
		func(r model.SeasonCropRecord) [2]int { return [2]int{r.Year, r.CropID} },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)
	areaByYear := aggregate.SumBy(base, aggregate.And(),
		func(r model.SeasonCropRecord) int { return r.Year },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)

	result := &CroppingIntensityResult{
		CCA:                cca,
		CategoryLabels:     model.CropCategoryLabels,
		CroppedAreaAverage: make(map[int]float64),
		NormalizedAverage:  make(map[int]float64),
	}

	for _, year := range years {
		cropped := CategoryRow{Year: year, Areas: make(map[int]float64)}
		normalized := CategoryRow{Year: year, Areas: make(map[int]float64)}
		for id := model.MinCropID; id <= model.MaxCropID; id++ {
			area := areaByYearCat[[2]int{year, id}]
			cropped.Areas[id] = roundTo(area, 0)
			normalized.Areas[id] = roundTo(area/cca, 3)
		}
		result.CroppedArea = append(result.CroppedArea, cropped)
		result.Normalized = append(result.Normalized, normalized)

		total := areaByYear[year]
		result.Intensity = append(result.Intensity, IntensityRow{
			Year:             year,
			Intensity:        roundTo(total/cca, 2),
			TotalCroppedArea: roundTo(total, 0),
		})
	}

	for id := model.MinCropID; id <= model.MaxCropID; id++ {
		result.CroppedAreaAverage[id] = roundTo(categoryMean(result.CroppedArea, id), 0)
		result.NormalizedAverage[id] = roundTo(categoryMean(result.Normalized, id), 3)
	}

	var intensities, totals []float64
	for _, row := range result.Intensity {
		intensities = append(intensities, row.Intensity)
		totals = append(totals, row.TotalCroppedArea)
	}
	if mean, ok := meanOf(intensities); ok {
		result.IntensityAverage.Intensity = roundTo(mean, 2)
	}
	if mean, ok := meanOf(totals); ok {
		result.IntensityAverage.TotalCroppedArea = roundTo(mean, 0)
	}

	return result, nil
}

func categoryMean(rows []CategoryRow, id int) float64 {
	var values []float64
	for _, row := range rows {
		values = append(values, row.Areas[id])
	}
	mean, _ := meanOf(values)
	return mean
}
