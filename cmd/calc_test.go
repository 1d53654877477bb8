package main

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosight/ipastat/internal/indicator"
)

func TestWriteSummaryCSV(t *testing.T) {
	t.Parallel()

	kharif2018 := 0.13
	kharif2019 := 0.06
	adequacy := &indicator.Result{
		Kind: indicator.KindAdequacy,
		Adequacy: &indicator.AdequacyResult{
			Summary: []indicator.SummaryRow{
				{Year: 2018, Kharif: &kharif2018},
				{Year: 2019, Kharif: &kharif2019},
			},
			Average: indicator.SeasonAverages{Kharif: 0.1, KharifDefined: true},
		},
	}
	intensity := &indicator.Result{
		Kind: indicator.KindCroppingIntensity,
		CroppingIntensity: &indicator.CroppingIntensityResult{
			Intensity: []indicator.IntensityRow{
				{Year: 2018, Intensity: 1.5, TotalCroppedArea: 1500},
			},
			IntensityAverage: indicator.IntensityAverage{Intensity: 1.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeSummaryCSV(&buf, []*indicator.Result{adequacy, intensity}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, []string{"indicator", "year", "kharif", "rabi", "zaid", "annual"}, records[0])
	assert.Equal(t, []string{"adequacy", "2018", "0.13", "", "", ""}, records[1])
	assert.Equal(t, []string{"adequacy", "AVERAGE", "0.1", "", "", ""}, records[3])

	// Per-year-only indicators land in the annual column.
	assert.Equal(t, []string{"cropping-intensity", "2018", "", "", "", "1.5"}, records[4])
	assert.Equal(t, []string{"cropping-intensity", "AVERAGE", "", "", "", "1.5"}, records[5])
}

func TestSummaryOf_UtilizationUsesAnnual(t *testing.T) {
	t.Parallel()

	res := &indicator.Result{
		Kind: indicator.KindIrrigationUtilization,
		IrrigationUtilization: &indicator.IrrigationUtilizationResult{
			Rows: []indicator.UtilizationRow{
				{Year: 2018, IrrigatedArea: 400, Ratio: 0.4},
			},
			Average: indicator.UtilizationAverage{Ratio: 0.4},
		},
	}

	summary, avg, ok := summaryOf(res)
	require.True(t, ok)
	require.Len(t, summary, 1)
	require.NotNil(t, summary[0].Annual)
	assert.Equal(t, 0.4, *summary[0].Annual)
	assert.Nil(t, summary[0].Kharif)
	assert.True(t, avg.AnnualDefined)
	assert.Equal(t, 0.4, avg.Annual)
}

func TestSummaryOf_EmptyResult(t *testing.T) {
	t.Parallel()
	_, _, ok := summaryOf(&indicator.Result{Kind: indicator.KindAdequacy})
	assert.False(t, ok)
}
