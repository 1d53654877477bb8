package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosight/ipastat/internal/model"
)

func etaRow(year int, season model.Season, cropID int, eta float64) model.SeasonCropRecord {
	return model.SeasonCropRecord{
		Year:     year,
		Season:   season,
		CropType: "Paddy",
		CropID:   cropID,
		ETa:      eta,
		Status:   model.StatusIrrigated,
	}
}

func TestEquity_UniformDeliveryIsZero(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 10),
		etaRow(2018, model.SeasonKharif, 5, 10),
		etaRow(2018, model.SeasonKharif, 5, 10),
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	require.Len(t, res.Summary, 1)
	require.NotNil(t, res.Summary[0].Kharif)
	assert.Equal(t, 0.0, *res.Summary[0].Kharif)
}

func TestEquity_CoefficientOfVariation(t *testing.T) {
	t.Parallel()

	// Sample stddev of {40, 50, 60} is 10, mean 50: CV = 0.2.
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 40),
		etaRow(2018, model.SeasonKharif, 5, 50),
		etaRow(2018, model.SeasonKharif, 5, 60),
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Summary[0].Kharif)
	assert.Equal(t, 0.2, *res.Summary[0].Kharif)
	assert.True(t, res.Average.KharifDefined)
	assert.Equal(t, 0.2, res.Average.Kharif)
}

func TestEquity_SingleRowIsNull(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 40),
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	require.Len(t, res.Summary, 1)
	assert.Nil(t, res.Summary[0].Kharif)
	assert.False(t, res.Average.KharifDefined)
}

func TestEquity_ZeroMeanIsNull(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 0),
		etaRow(2018, model.SeasonKharif, 5, 0),
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	assert.Nil(t, res.Summary[0].Kharif)
}

func TestEquity_CropFilterNarrowsSeasonalSubsets(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 40),
		etaRow(2018, model.SeasonKharif, 5, 60),
		etaRow(2018, model.SeasonKharif, 6, 5), // other category, must not skew kharif
		etaRow(2018, model.SeasonAnnual, 5, 40),
		etaRow(2018, model.SeasonAnnual, 6, 60),
	}

	res, err := Equity(rows, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CropID)

	// Kharif CV over {40, 60}: sd ~14.142, mean 50 -> 0.283.
	require.NotNil(t, res.Summary[0].Kharif)
	assert.InDelta(t, 0.283, *res.Summary[0].Kharif, 0.0005)

	// The annual rollup spans every category: {40, 60} as well here.
	require.NotNil(t, res.Summary[0].Annual)
	assert.InDelta(t, 0.283, *res.Summary[0].Annual, 0.0005)
}

func TestEquity_DefaultsToFirstCropID(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 7, 40),
		etaRow(2018, model.SeasonKharif, 7, 60),
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, res.CropID)
}

func TestEquity_UnirrigatedRowsIgnored(t *testing.T) {
	t.Parallel()
	rows := []model.SeasonCropRecord{
		etaRow(2018, model.SeasonKharif, 5, 40),
		etaRow(2018, model.SeasonKharif, 5, 60),
		{Year: 2018, Season: model.SeasonKharif, CropType: "Paddy", CropID: 5, ETa: 500, Status: "UNIRRIGATED"},
	}

	res, err := Equity(rows, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Summary[0].Kharif)
	assert.InDelta(t, 0.283, *res.Summary[0].Kharif, 0.0005)
}
