package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosight/ipastat/internal/model"
)

func areaRow(year, cropID int, crop string, area float64, status string) model.SeasonCropRecord {
	return model.SeasonCropRecord{
		Year:     year,
		Season:   model.SeasonAnnual,
		CropType: crop,
		CropID:   cropID,
		Area:     area,
		Status:   status,
	}
}

func TestCroppingIntensity_Ratio(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		areaRow(2018, 5, "Paddy", 1000, "IRRIGATED"),
		areaRow(2018, 6, "Wheat", 500, "UNIRRIGATED"),
	}

	res, err := CroppingIntensity(rows, 1000)
	require.NoError(t, err)

	// 1500/1000 regardless of irrigation status.
	require.Len(t, res.Intensity, 1)
	assert.Equal(t, 1.5, res.Intensity[0].Intensity)
	assert.Equal(t, 1500.0, res.Intensity[0].TotalCroppedArea)
}

func TestCroppingIntensity_InvalidCCA(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{areaRow(2018, 5, "Paddy", 100, "IRRIGATED")}

	_, err := CroppingIntensity(rows, 0)
	assert.ErrorIs(t, err, ErrInvalidCCA)

	_, err = CroppingIntensity(rows, -10)
	assert.ErrorIs(t, err, ErrInvalidCCA)
}

func TestCroppingIntensity_MissingCropID(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		{Year: 2018, CropType: "Paddy", Area: 100, Status: "IRRIGATED"},
	}
	_, err := CroppingIntensity(rows, 1000)
	assert.ErrorIs(t, err, ErrMissingCropID)
}

func TestCroppingIntensity_CategoryBreakdown(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		areaRow(2018, 5, "Paddy", 600, "IRRIGATED"),
		areaRow(2018, 5, "Maize", 150, "IRRIGATED"),
		areaRow(2018, 6, "Wheat", 250, "UNIRRIGATED"),
	}

	res, err := CroppingIntensity(rows, 1000)
	require.NoError(t, err)

	require.Len(t, res.CroppedArea, 1)
	assert.Equal(t, 750.0, res.CroppedArea[0].Areas[5])
	assert.Equal(t, 250.0, res.CroppedArea[0].Areas[6])
	assert.Equal(t, 0.0, res.CroppedArea[0].Areas[1])

	assert.Equal(t, 0.75, res.Normalized[0].Areas[5])
	assert.Equal(t, 0.25, res.Normalized[0].Areas[6])

	for id := model.MinCropID; id <= model.MaxCropID; id++ {
		assert.Contains(t, res.CroppedArea[0].Areas, id)
	}
}

func TestCroppingIntensity_AverageRow(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		areaRow(2018, 5, "Paddy", 1000, "IRRIGATED"),
		areaRow(2019, 5, "Paddy", 2000, "IRRIGATED"),
	}

	res, err := CroppingIntensity(rows, 1000)
	require.NoError(t, err)

	// Simple mean of per-year totals, not a re-aggregation.
	assert.Equal(t, 1500.0, res.IntensityAverage.TotalCroppedArea)
	assert.Equal(t, 1.5, res.IntensityAverage.Intensity)
	assert.Equal(t, 1500.0, res.CroppedAreaAverage[5])
	assert.Equal(t, 1.5, res.NormalizedAverage[5])
}

func TestCroppingIntensity_ExcludesOtherUnirrigated(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		areaRow(2018, 5, "Paddy", 1000, "IRRIGATED"),
		areaRow(2018, 8, "Other Unirrigated", 400, "UNIRRIGATED"),
	}

	res, err := CroppingIntensity(rows, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Intensity[0].TotalCroppedArea)
	assert.Equal(t, 0.0, res.CroppedArea[0].Areas[8])
}
