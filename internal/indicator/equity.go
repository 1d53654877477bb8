package indicator

import (
	"github.com/hydrosight/ipastat/internal/aggregate"
	"github.com/hydrosight/ipastat/internal/model"
)

// equitySeasons are the season codes the equity calculator covers.
var equitySeasons = []model.Season{
	model.SeasonAnnual,
	model.SeasonKharif,
	model.SeasonRabi,
	model.SeasonZaid,
}

// EquityResult is the per-year, per-season coefficient of variation of ETa
// over irrigated rows. Lower is better: a uniform delivery has CV 0.
type EquityResult struct {
	Summary []SummaryRow   `json:"summary"`
	Average SeasonAverages `json:"average"`

	// CropID is the category the seasonal subsets were narrowed to;
	// 0 when the dataset carries no category column.
	CropID int `json:"crop_id,omitempty"`
}

// Equity computes stddev(ETa)/mean(ETa) per (year, season). The statistic
// uses the sample standard deviation and is nil for groups with fewer than
// two rows or a non-positive mean. cropID narrows seasonal (non-annual)
// subsets; pass 0 to use the first category present in the data.
func Equity(rows []model.SeasonCropRecord, cropID int) (*EquityResult, error) {
	base := aggregate.Rows(rows, aggregate.ExcludeCrops(aggregate.DefaultExcludedCrops...))

	if cropID == 0 {
		cropID = firstCropID(base)
	}

	result := &EquityResult{CropID: cropID}
	for _, year := range aggregate.Years(base, aggregate.And()) {
		row := SummaryRow{Year: year}
		for _, season := range equitySeasons {
			filter := aggregate.And(
				aggregate.YearIs(year),
				aggregate.SeasonIs(season),
				aggregate.Irrigated(),
			)
			// The annual rollup spans every category; seasonal subsets
			// narrow to one.
			if season != model.SeasonAnnual && cropID != 0 {
				filter = aggregate.And(filter, aggregate.CropIDIs(cropID))
			}
			row.setValue(season.Key(), equityValue(base, filter))
		}
		result.Summary = append(result.Summary, row)
	}

	result.Average = averagesFromSummary(result.Summary, 3)
	return result, nil
}

func equityValue(rows []model.SeasonCropRecord, filter aggregate.Filter) *float64 {
	var etas []float64
	for _, r := range rows {
		if filter(r) {
			etas = append(etas, r.ETa)
		}
	}

	sd, ok := aggregate.SampleStdDev(etas)
	if !ok {
		return nil
	}
	mean, _ := aggregate.Mean(etas)
	if mean <= 0 {
		return nil
	}
	return fptr(roundTo(sd/mean, 3))
}

func firstCropID(rows []model.SeasonCropRecord) int {
	for _, r := range rows {
		if r.CropID != 0 {
			return r.CropID
		}
	}
	return 0
}
