// Package scoring maps observed indicator values against critical/target
// thresholds to 0-10 scores. The mapping is a pure function; thresholds
// are external configuration and never feed back into indicator values.
package scoring

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/hydrosight/ipastat/internal/indicator"
	"github.com/hydrosight/ipastat/internal/model"
)

// Score maps an observed value to an integer score in [0, 10] by linear
// interpolation between the critical (score 0) and target (score 10)
// bounds. NaN observed scores 0. A degenerate critical==target range
// returns the fixed midpoint 5.
func Score(observed, critical, target float64, higherIsBetter bool) int {
	if math.IsNaN(observed) {
		return 0
	}
	if critical == target {
		return 5
	}

	var s float64
	if higherIsBetter {
		switch {
		case observed <= critical:
			return 0
		case observed >= target:
			return 10
		default:
			s = 10 * (observed - critical) / (target - critical)
		}
	} else {
		switch {
		case observed >= critical:
			return 0
		case observed <= target:
			return 10
		default:
			s = 10 * (critical - observed) / (critical - target)
		}
	}

	return clamp(int(math.Round(s)))
}

// ScoreValue scores a nullable observed value; nil scores 0.
func ScoreValue(observed *float64, critical, target float64, higherIsBetter bool) int {
	if observed == nil {
		return 0
	}
	return Score(*observed, critical, target, higherIsBetter)
}

func clamp(s int) int {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// ForIndicator scores an observed value against the configured threshold
// for the indicator. Productivity uses the per-crop map; pass the crop
// type, or "" for the default entry.
func ForIndicator(ts model.ThresholdSet, kind indicator.Kind, crop string, observed float64) (int, error) {
	if err := ts.Validate(); err != nil {
		return 0, err
	}

	th, err := thresholdFor(ts, kind, crop)
	if err != nil {
		return 0, err
	}
	return Score(observed, th.Critical, th.Target, kind.HigherIsBetter()), nil
}

func thresholdFor(ts model.ThresholdSet, kind indicator.Kind, crop string) (model.Threshold, error) {
	switch kind {
	case indicator.KindAdequacy:
		if ts.Adequacy != nil {
			return *ts.Adequacy, nil
		}
	case indicator.KindEquity:
		if ts.Equity != nil {
			return *ts.Equity, nil
		}
	case indicator.KindCroppingIntensity:
		if ts.CroppingIntensity != nil {
			return *ts.CroppingIntensity, nil
		}
	case indicator.KindIrrigationUtilization:
		if ts.IrrigationUtilization != nil {
			return *ts.IrrigationUtilization, nil
		}
	case indicator.KindProductivity:
		if crop == "" {
			crop = "default"
		}
		if th, ok := ts.ProductivityFor(crop); ok {
			return th, nil
		}
	}
	return model.Threshold{}, eris.New(fmt.Sprintf("scoring: no threshold configured for %s", kind))
}
