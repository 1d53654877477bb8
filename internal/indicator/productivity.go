package indicator

import (
	"github.com/hydrosight/ipastat/internal/aggregate"
	"github.com/hydrosight/ipastat/internal/model"
)

// productivitySeasons are the season codes of the productivity dataset. Its
// whole-year rollup is coded 4, not 0.
var productivitySeasons = []model.Season{
	model.SeasonKharif,
	model.SeasonRabi,
	model.SeasonZaid,
	model.SeasonFullYear,
}

// Matrix is a year-by-crop table with a derived average row and column.
// Nil cells mean the (year, crop) group had no contributing rows; averages
// skip them.
type Matrix struct {
	Cells map[int]map[string]*float64 `json:"cells"`

	// RowAverage is the per-year figure across crops. For the
	// productivity table it is the area-weighted yearly value, not the
	// plain cell mean.
	RowAverage map[int]*float64 `json:"row_average"`

	// ColAverage is the per-crop mean across years.
	ColAverage map[string]*float64 `json:"col_average"`

	// Overall is the mean of the defined row averages.
	Overall *float64 `json:"overall"`
}

// ProductivitySeason holds the four tables for one season plus the
// area-weighted yearly series.
type ProductivitySeason struct {
	Season model.Season `json:"season"`
	Label  string       `json:"label"`
	Years  []int        `json:"years"`
	Crops  []string     `json:"crops"` // sorted lexicographically

	Area         Matrix `json:"area"`
	ETa          Matrix `json:"eta"`
	TBP          Matrix `json:"tbp"`
	Productivity Matrix `json:"productivity"`

	// Weighted is the area-weighted mean of per-row productivity across
	// all crops of the year. Nil when the year's positive-area subset is
	// empty.
	Weighted map[int]*float64 `json:"weighted_productivity"`

	// AverageWeighted is the mean of the defined Weighted values.
	AverageWeighted *float64 `json:"average_weighted_productivity"`
}

// ProductivityResult is the full productivity output keyed by season name.
// A season without matching rows is absent, not zero-filled.
type ProductivityResult struct {
	Summary []SummaryRow                   `json:"summary"`
	Average SeasonAverages                 `json:"average"`
	Seasons map[string]*ProductivitySeason `json:"season_tables"`
}

// rowProductivity is the per-row water productivity: TBP / (ETa * 10).
// Rows with non-positive ETa yield 0 rather than being excluded; this is
// the legacy policy the datasets were calibrated against.
func rowProductivity(r model.SeasonCropRecord) float64 {
	if r.ETa <= 0 {
		return 0
	}
	return r.TBP / (r.ETa * 10)
}

// Productivity computes the yield-per-unit-water indicator for seasons
// 1, 2, 3, and 4.
func Productivity(rows []model.SeasonCropRecord) (*ProductivityResult, error) {
	result := &ProductivityResult{
		Seasons: make(map[string]*ProductivitySeason),
	}

	for _, season := range productivitySeasons {
		if sr := productivitySeason(rows, season); sr != nil {
			result.Seasons[season.Key()] = sr
		}
	}

	result.Summary = productivitySummary(result.Seasons)
	result.Average = averagesFromSummary(result.Summary, 2)
	return result, nil
}

func productivitySeason(rows []model.SeasonCropRecord, season model.Season) *ProductivitySeason {
	base := aggregate.Rows(rows, aggregate.And(
		aggregate.SeasonIs(season),
		aggregate.Irrigated(),
	))
	if len(base) == 0 {
		return nil
	}

	// Mean-type tables only see rows with positive area; zero-area rows
	// still count toward the area sums.
	positive := aggregate.Rows(base, func(r model.SeasonCropRecord) bool { return r.Area > 0 })

	years := aggregate.Years(base, aggregate.And())
	crops := aggregate.CropsSorted(base, aggregate.And())

	sr := &ProductivitySeason{
		Season:   season,
		Label:    season.Label(),
		Years:    years,
		Crops:    crops,
		Weighted: make(map[int]*float64, len(years)),
	}

	sr.Area = areaTable(base, years, crops)
	sr.ETa = meanTable(positive, sr.Area, years, crops,
		func(r model.SeasonCropRecord) float64 { return r.ETa }, 0)
	sr.TBP = meanTable(positive, sr.Area, years, crops,
		func(r model.SeasonCropRecord) float64 { return r.TBP }, 0)
	sr.Productivity, sr.Weighted = productivityTable(positive, years, crops)
	sr.AverageWeighted = sr.Productivity.Overall

	return sr
}

// areaTable sums area per cell, rounding to whole hectares. Cells are
// always defined (0 when the group is empty) and averages include zeros.
func areaTable(base []model.SeasonCropRecord, years []int, crops []string) Matrix {
	sums := aggregate.SumBy(base, aggregate.And(),
		func(r model.SeasonCropRecord) aggregate.YearCrop {
			return aggregate.YearCrop{Year: r.Year, Crop: r.CropType}
		},
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)

	m := newMatrix(years)
	for _, year := range years {
		var rowValues []float64
		for _, crop := range crops {
			v := roundTo(sums[aggregate.YearCrop{Year: year, Crop: crop}], 0)
			m.Cells[year][crop] = fptr(v)
			rowValues = append(rowValues, v)
		}
		if mean, ok := meanOf(rowValues); ok {
			m.RowAverage[year] = fptr(roundTo(mean, 0))
		}
	}
	fillColAverages(&m, years, crops, 0)
	return m
}

// meanTable averages a field per cell over the positive-area subset. A
// cell is nil when the subset is empty or the area table holds no area for
// the group.
func meanTable(positive []model.SeasonCropRecord, area Matrix, years []int, crops []string, value func(model.SeasonCropRecord) float64, places int) Matrix {
	means := aggregate.MeanBy(positive, aggregate.And(),
		func(r model.SeasonCropRecord) aggregate.YearCrop {
			return aggregate.YearCrop{Year: r.Year, Crop: r.CropType}
		},
		value,
	)

	m := newMatrix(years)
	for _, year := range years {
		var rowValues []float64
		for _, crop := range crops {
			mean, ok := means[aggregate.YearCrop{Year: year, Crop: crop}]
			if !ok || cellArea(area, year, crop) <= 0 {
				m.Cells[year][crop] = nil
				continue
			}
			v := roundTo(mean, places)
			m.Cells[year][crop] = fptr(v)
			rowValues = append(rowValues, v)
		}
		if mean, ok := meanOf(rowValues); ok {
			m.RowAverage[year] = fptr(roundTo(mean, places))
		}
	}
	fillColAverages(&m, years, crops, places)
	return m
}

// productivityTable averages per-row productivity per cell and computes the
// area-weighted yearly series. The table's row average IS the weighted
// yearly value.
func productivityTable(positive []model.SeasonCropRecord, years []int, crops []string) (Matrix, map[int]*float64) {
	means := aggregate.MeanBy(positive, aggregate.And(),
		func(r model.SeasonCropRecord) aggregate.YearCrop {
			return aggregate.YearCrop{Year: r.Year, Crop: r.CropType}
		},
		rowProductivity,
	)

	m := newMatrix(years)
	weighted := make(map[int]*float64, len(years))

	for _, year := range years {
		for _, crop := range crops {
			mean, ok := means[aggregate.YearCrop{Year: year, Crop: crop}]
			if !ok {
				m.Cells[year][crop] = nil
				continue
			}
			m.Cells[year][crop] = fptr(roundTo(mean, 2))
		}

		var weightedSum, totalArea float64
		for _, r := range positive {
			if r.Year != year {
				continue
			}
			weightedSum += r.Area * rowProductivity(r)
			totalArea += r.Area
		}
		if totalArea > 0 {
			w := fptr(roundTo(weightedSum/totalArea, 2))
			weighted[year] = w
			m.RowAverage[year] = w
		} else {
			weighted[year] = nil
		}
	}

	fillColAverages(&m, years, crops, 2)
	return m, weighted
}

func newMatrix(years []int) Matrix {
	m := Matrix{
		Cells:      make(map[int]map[string]*float64, len(years)),
		RowAverage: make(map[int]*float64, len(years)),
		ColAverage: make(map[string]*float64),
	}
	for _, year := range years {
		m.Cells[year] = make(map[string]*float64)
	}
	return m
}

func cellArea(area Matrix, year int, crop string) float64 {
	if v := area.Cells[year][crop]; v != nil {
		return *v
	}
	return 0
}

// fillColAverages derives the per-crop column averages and the overall
// value (mean of defined row averages), skipping nil cells.
func fillColAverages(m *Matrix, years []int, crops []string, places int) {
	for _, crop := range crops {
		var values []float64
		for _, year := range years {
			if v := m.Cells[year][crop]; v != nil {
				values = append(values, *v)
			}
		}
		if mean, ok := meanOf(values); ok {
			m.ColAverage[crop] = fptr(roundTo(mean, places))
		} else {
			m.ColAverage[crop] = nil
		}
	}

	var rowAvgs []float64
	for _, year := range years {
		if v := m.RowAverage[year]; v != nil {
			rowAvgs = append(rowAvgs, *v)
		}
	}
	if mean, ok := meanOf(rowAvgs); ok {
		m.Overall = fptr(roundTo(mean, places))
	}
}

func productivitySummary(seasons map[string]*ProductivitySeason) []SummaryRow {
	yearSet := make(map[int]bool)
	for _, sr := range seasons {
		for _, y := range sr.Years {
			yearSet[y] = true
		}
	}

	var summary []SummaryRow
	for _, year := range sortedKeys(yearSet) {
		row := SummaryRow{Year: year}
		for key, sr := range seasons {
			if v, ok := sr.Weighted[year]; ok {
				row.setValue(key, v)
			}
		}
		summary = append(summary, row)
	}
	return summary
}
