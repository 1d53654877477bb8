// Package indicator computes irrigation-scheme performance indicators from
// season/crop records: adequacy, productivity, equity, cropping intensity,
// and irrigation utilization. Calculators are pure functions of
// (rows, parameters); every call rebuilds its matrices from the rows it is
// handed.
package indicator

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/hydrosight/ipastat/internal/model"
)

// ErrInvalidCCA rejects a non-positive Culturable Command Area.
var ErrInvalidCCA = eris.New("indicator: cca must be > 0")

// Kind identifies one of the five indicators.
type Kind string

const (
	KindAdequacy              Kind = "adequacy"
	KindProductivity          Kind = "productivity"
	KindEquity                Kind = "equity"
	KindCroppingIntensity     Kind = "cropping-intensity"
	KindIrrigationUtilization Kind = "irrigation-utilization"
)

// Kinds lists all indicators in presentation order.
var Kinds = []Kind{
	KindAdequacy,
	KindProductivity,
	KindEquity,
	KindCroppingIntensity,
	KindIrrigationUtilization,
}

// ParseKind maps an indicator id to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == string(k) {
			return k, nil
		}
	}
	return "", eris.New(fmt.Sprintf("indicator: unknown kind %q", s))
}

// HigherIsBetter reports the scoring direction of the indicator. Adequacy
// measures relative deficit and equity measures delivery variation, so for
// both a lower value is better.
func (k Kind) HigherIsBetter() bool {
	switch k {
	case KindAdequacy, KindEquity:
		return false
	}
	return true
}

// NeedsCCA reports whether the indicator requires the Culturable Command
// Area parameter.
func (k Kind) NeedsCCA() bool {
	return k == KindCroppingIntensity || k == KindIrrigationUtilization
}

// Request carries the inputs for one calculation.
type Request struct {
	Kind   Kind
	Rows   []model.SeasonCropRecord
	CCA    float64 // cropping intensity and irrigation utilization only
	CropID int     // equity only; 0 picks the first CropID in the data
}

// Result wraps the per-indicator outcome; exactly one field is set,
// matching Kind.
type Result struct {
	Kind                  Kind                         `json:"kind"`
	Adequacy              *AdequacyResult              `json:"adequacy,omitempty"`
	Productivity          *ProductivityResult          `json:"productivity,omitempty"`
	Equity                *EquityResult                `json:"equity,omitempty"`
	CroppingIntensity     *CroppingIntensityResult     `json:"cropping_intensity,omitempty"`
	IrrigationUtilization *IrrigationUtilizationResult `json:"irrigation_utilization,omitempty"`
}

// Compute dispatches to the calculator for req.Kind. This is the single
// switch over indicator ids; everything behind it is typed.
func Compute(req Request) (*Result, error) {
	res := &Result{Kind: req.Kind}
	var err error

	switch req.Kind {
	case KindAdequacy:
		res.Adequacy, err = Adequacy(req.Rows)
	case KindProductivity:
		res.Productivity, err = Productivity(req.Rows)
	case KindEquity:
		res.Equity, err = Equity(req.Rows, req.CropID)
	case KindCroppingIntensity:
		res.CroppingIntensity, err = CroppingIntensity(req.Rows, req.CCA)
	case KindIrrigationUtilization:
		res.IrrigationUtilization, err = IrrigationUtilization(req.Rows, req.CCA)
	default:
		return nil, eris.New(fmt.Sprintf("indicator: unknown kind %q", req.Kind))
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

// SummaryRow is one year of the cross-season summary table. Nil means the
// season had no valid value for the year, never zero.
type SummaryRow struct {
	Year   int      `json:"year"`
	Kharif *float64 `json:"kharif"`
	Rabi   *float64 `json:"rabi"`
	Zaid   *float64 `json:"zaid"`
	Annual *float64 `json:"annual"`
}

// value returns the cell for a season key.
func (r SummaryRow) value(key string) *float64 {
	switch key {
	case "kharif":
		return r.Kharif
	case "rabi":
		return r.Rabi
	case "zaid":
		return r.Zaid
	case "annual":
		return r.Annual
	}
	return nil
}

// setValue assigns the cell for a season key.
func (r *SummaryRow) setValue(key string, v *float64) {
	switch key {
	case "kharif":
		r.Kharif = v
	case "rabi":
		r.Rabi = v
	case "zaid":
		r.Zaid = v
	case "annual":
		r.Annual = v
	}
}

// SeasonAverages is the per-season mean of the yearly summary values.
// Seasons with no valid year report 0, matching the legacy output contract;
// the Defined flags make "no data" distinguishable from a real zero.
type SeasonAverages struct {
	Kharif float64 `json:"kharif"`
	Rabi   float64 `json:"rabi"`
	Zaid   float64 `json:"zaid"`
	Annual float64 `json:"annual"`

	KharifDefined bool `json:"kharif_defined"`
	RabiDefined   bool `json:"rabi_defined"`
	ZaidDefined   bool `json:"zaid_defined"`
	AnnualDefined bool `json:"annual_defined"`
}

// averagesFromSummary computes the per-season mean of non-nil summary
// values, rounded to the given precision.
func averagesFromSummary(summary []SummaryRow, places int) SeasonAverages {
	var avg SeasonAverages
	for _, key := range []string{"kharif", "rabi", "zaid", "annual"} {
		var values []float64
		for _, row := range summary {
			if v := row.value(key); v != nil {
				values = append(values, *v)
			}
		}
		mean, ok := meanOf(values)
		if !ok {
			continue
		}
		mean = roundTo(mean, places)
		switch key {
		case "kharif":
			avg.Kharif, avg.KharifDefined = mean, true
		case "rabi":
			avg.Rabi, avg.RabiDefined = mean, true
		case "zaid":
			avg.Zaid, avg.ZaidDefined = mean, true
		case "annual":
			avg.Annual, avg.AnnualDefined = mean, true
		}
	}
	return avg
}
