package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosight/ipastat/internal/model"
)

func rec(year int, season model.Season, crop string, area float64, status string) model.SeasonCropRecord {
	return model.SeasonCropRecord{
		Year:     year,
		Season:   season,
		CropType: crop,
		Area:     area,
		Status:   status,
	}
}

func TestSumBy_GroupsAndSums(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		rec(2018, model.SeasonKharif, "Paddy", 100, "IRRIGATED"),
		rec(2018, model.SeasonKharif, "Paddy", 50, "IRRIGATED"),
		rec(2019, model.SeasonKharif, "Paddy", 75, "IRRIGATED"),
		rec(2018, model.SeasonKharif, "Maize", 20, "UNIRRIGATED"),
	}

	sums := SumBy(rows, Irrigated(),
		func(r model.SeasonCropRecord) YearCrop { return YearCrop{Year: r.Year, Crop: r.CropType} },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)

	assert.Equal(t, 150.0, sums[YearCrop{Year: 2018, Crop: "Paddy"}])
	assert.Equal(t, 75.0, sums[YearCrop{Year: 2019, Crop: "Paddy"}])

	// Unirrigated Maize never matched: key must be absent, not zero.
	_, ok := sums[YearCrop{Year: 2018, Crop: "Maize"}]
	assert.False(t, ok)
}

func TestSumBy_NoMatches(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		rec(2018, model.SeasonKharif, "Paddy", 100, "UNIRRIGATED"),
	}

	sums := SumBy(rows, Irrigated(),
		func(r model.SeasonCropRecord) int { return r.Year },
		func(r model.SeasonCropRecord) float64 { return r.Area },
	)
	assert.Empty(t, sums)
}

func TestMeanBy_AbsentForEmptyGroups(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		{Year: 2018, Season: model.SeasonKharif, CropType: "Paddy", ETa: 40, Status: "IRRIGATED"},
		{Year: 2018, Season: model.SeasonKharif, CropType: "Paddy", ETa: 60, Status: "IRRIGATED"},
		{Year: 2019, Season: model.SeasonKharif, CropType: "Paddy", ETa: 10, Status: "UNIRRIGATED"},
	}

	means := MeanBy(rows, Irrigated(),
		func(r model.SeasonCropRecord) int { return r.Year },
		func(r model.SeasonCropRecord) float64 { return r.ETa },
	)

	require.Contains(t, means, 2018)
	assert.Equal(t, 50.0, means[2018])

	// 2019 has no irrigated rows: no entry, never 0 or NaN.
	assert.NotContains(t, means, 2019)
}

func TestFilters_Compose(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		rec(2018, model.SeasonKharif, "Paddy", 100, "IRRIGATED"),
		rec(2018, model.SeasonRabi, "Paddy", 100, "IRRIGATED"),
		rec(2018, model.SeasonKharif, "Other Unirrigated", 100, "UNIRRIGATED"),
	}

	filtered := Rows(rows, And(
		SeasonIs(model.SeasonKharif),
		ExcludeCrops(DefaultExcludedCrops...),
	))

	require.Len(t, filtered, 1)
	assert.Equal(t, "Paddy", filtered[0].CropType)
}

func TestIrrigated_CaseInsensitive(t *testing.T) {
	t.Parallel()
	assert.True(t, Irrigated()(rec(2018, 1, "Paddy", 1, "irrigated")))
	assert.True(t, Irrigated()(rec(2018, 1, "Paddy", 1, "Irrigated")))
	assert.False(t, Irrigated()(rec(2018, 1, "Paddy", 1, "UNIRRIGATED")))
}

func TestYears_AscendingUnique(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		rec(2020, 1, "A", 1, "IRRIGATED"),
		rec(2018, 1, "B", 1, "IRRIGATED"),
		rec(2020, 1, "C", 1, "IRRIGATED"),
		rec(2019, 1, "D", 1, "IRRIGATED"),
	}
	assert.Equal(t, []int{2018, 2019, 2020}, Years(rows, And()))
}

func TestCrops_DiscoveryOrderAndSorted(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		rec(2018, 1, "Wheat", 1, "IRRIGATED"),
		rec(2018, 1, "Paddy", 1, "IRRIGATED"),
		rec(2019, 1, "Wheat", 1, "IRRIGATED"),
		rec(2019, 1, "Cotton", 1, "IRRIGATED"),
	}

	assert.Equal(t, []string{"Wheat", "Paddy", "Cotton"}, Crops(rows, And()))
	assert.Equal(t, []string{"Cotton", "Paddy", "Wheat"}, CropsSorted(rows, And()))
}
