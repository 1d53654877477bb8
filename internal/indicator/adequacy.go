package indicator

import (
	"math"

	"github.com/hydrosight/ipastat/internal/aggregate"
	"github.com/hydrosight/ipastat/internal/model"
)

// adequacySeasons are the season codes processed independently by the
// adequacy calculator.
var adequacySeasons = []model.Season{
	model.SeasonAnnual,
	model.SeasonKharif,
	model.SeasonRabi,
	model.SeasonZaid,
}

// AdequacySeason holds one season's matrices. Adequacy cell =
// 1 - avg(ETa)/avg(ETa90) over IRRIGATED rows of the (year, crop) group;
// nil when the group has no irrigated area, no rows, or a zero ETa90 mean.
type AdequacySeason struct {
	Season model.Season `json:"season"`
	Label  string       `json:"label"`
	Years  []int        `json:"years"`
	Crops  []string     `json:"crop_types"` // discovery order

	// Area is the irrigated area per year and crop, rounded to whole
	// hectares. Crops with no irrigated rows in a year hold 0.
	Area map[int]map[string]int `json:"area_matrix"`

	// Adequacy is the per-cell deficit value, 2 decimal places.
	Adequacy map[int]map[string]*float64 `json:"adequacy_matrix"`

	// Combined is the area-weighted mean of non-nil adequacy cells per
	// year; nil when the year has no valid cell.
	Combined map[int]*float64 `json:"combined_adequacy"`
}

// AdequacyResult is the full adequacy output: per-season detail plus the
// cross-season summary. Seasons without any matching row are absent from
// Seasons and contribute nil cells to the summary.
type AdequacyResult struct {
	Summary []SummaryRow                     `json:"summary"`
	Average SeasonAverages                   `json:"average"`
	Seasons map[model.Season]*AdequacySeason `json:"season_results"`
}

// Adequacy computes the water-adequacy indicator for seasons 0-3.
func Adequacy(rows []model.SeasonCropRecord) (*AdequacyResult, error) {
	result := &AdequacyResult{
		Seasons: make(map[model.Season]*AdequacySeason),
	}

	for _, season := range adequacySeasons {
		if sr := adequacySeason(rows, season); sr != nil {
			result.Seasons[season] = sr
		}
	}

	result.Summary = adequacySummary(result.Seasons)
	result.Average = averagesFromSummary(result.Summary, 2)
	return result, nil
}

func adequacySeason(rows []model.SeasonCropRecord, season model.Season) *AdequacySeason {
	base := aggregate.Rows(rows, aggregate.And(
		aggregate.SeasonIs(season),
		aggregate.ExcludeCrops(aggregate.DefaultExcludedCrops...),
	))
	if len(base) == 0 {
		return nil
	}

	irrigated := aggregate.Irrigated()
	areaSums := aggregate.SumBy(base, irrigated,
		func(r model.SeasonCropRecord) aggregate.YearCrop {
			return aggregate.YearCrop{Year: r.Year, Crop: r.CropType}
		},
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)

	years := aggregate.Years(base, irrigated)

	// Crop columns follow first appearance in the season's rows, kept only
	// when the crop shows up in the irrigated subset at all.
	irrigatedCrops := make(map[string]bool)
	for key := range areaSums {
		irrigatedCrops[key.Crop] = true
	}
	var crops []string
	for _, crop := range aggregate.Crops(base, aggregate.And()) {
		if irrigatedCrops[crop] {
			crops = append(crops, crop)
		}
	}

	sr := &AdequacySeason{
		Season:   season,
		Label:    season.Label(),
		Years:    years,
		Crops:    crops,
		Area:     make(map[int]map[string]int, len(years)),
		Adequacy: make(map[int]map[string]*float64, len(years)),
		Combined: make(map[int]*float64, len(years)),
	}

	for _, year := range years {
		sr.Area[year] = make(map[string]int, len(crops))
		sr.Adequacy[year] = make(map[string]*float64, len(crops))
		for _, crop := range crops {
			area := int(math.Round(areaSums[aggregate.YearCrop{Year: year, Crop: crop}]))
			sr.Area[year][crop] = area
			sr.Adequacy[year][crop] = adequacyCell(base, year, crop, area)
		}
		sr.Combined[year] = combinedAdequacy(sr.Area[year], sr.Adequacy[year], crops)
	}

	return sr
}

// adequacyCell computes one matrix cell. The area guard uses the rounded
// area: a cell without irrigated area is "no data", not zero deficit.
func adequacyCell(base []model.SeasonCropRecord, year int, crop string, area int) *float64 {
	if area <= 0 {
		return nil
	}

	subset := aggregate.Rows(base, aggregate.And(
		aggregate.YearIs(year),
		aggregate.CropIs(crop),
		aggregate.Irrigated(),
	))
	if len(subset) == 0 {
		return nil
	}

	var etaSum, eta90Sum float64
	for _, r := range subset {
		etaSum += r.ETa
		eta90Sum += r.ETa90
	}
	n := float64(len(subset))
	avgETa90 := eta90Sum / n
	if avgETa90 == 0 || math.IsNaN(avgETa90) {
		return nil
	}

	return fptr(roundTo(1-(etaSum/n)/avgETa90, 2))
}

// combinedAdequacy weights non-nil cells by their irrigated area. Nil when
// no crop has a valid cell or the total weight is zero.
func combinedAdequacy(area map[string]int, adequacy map[string]*float64, crops []string) *float64 {
	var weighted, totalWeight float64
	for _, crop := range crops {
		cell := adequacy[crop]
		if cell == nil {
			continue
		}
		w := float64(area[crop])
		weighted += *cell * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil
	}
	return fptr(roundTo(weighted/totalWeight, 2))
}

func adequacySummary(seasons map[model.Season]*AdequacySeason) []SummaryRow {
	yearSet := make(map[int]bool)
	for _, sr := range seasons {
		for _, y := range sr.Years {
			yearSet[y] = true
		}
	}

	var summary []SummaryRow
	for _, year := range sortedKeys(yearSet) {
		row := SummaryRow{Year: year}
		for season, sr := range seasons {
			if v, ok := sr.Combined[year]; ok {
				row.setValue(season.Key(), v)
			}
		}
		summary = append(summary, row)
	}
	return summary
}
