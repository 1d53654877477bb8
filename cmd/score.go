package main

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hydrosight/ipastat/internal/indicator"
	"github.com/hydrosight/ipastat/internal/model"
	"github.com/hydrosight/ipastat/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an observed indicator value on the 0-10 scale",
	Long: `Score an observed value against critical/target thresholds.

Direct mode takes the bounds on the command line:
  score --observed 0.25 --critical 0.5 --target 0.1 --lower-is-better

Indicator mode computes the observed value from a dataset and looks the
bounds up in the thresholds file:
  score --indicator adequacy --input data.csv --thresholds thresholds.yaml`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.Float64("observed", math.NaN(), "observed value")
	f.Float64("critical", 0, "critical bound (score 0)")
	f.Float64("target", 0, "target bound (score 10)")
	f.Bool("lower-is-better", false, "invert the scale for deficit-style indicators")
	f.String("indicator", "", "indicator id for indicator mode")
	f.String("input", "", "dataset path for indicator mode")
	f.String("thresholds", "", "thresholds YAML path (default from config)")
	f.String("crop", "", "crop type for productivity thresholds")
	f.Float64("cca", 0, "Culturable Command Area for intensity/utilization")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	indicatorID, _ := f.GetString("indicator")

	if indicatorID == "" {
		observed, _ := f.GetFloat64("observed")
		critical, _ := f.GetFloat64("critical")
		target, _ := f.GetFloat64("target")
		lowerIsBetter, _ := f.GetBool("lower-is-better")

		s := scoring.Score(observed, critical, target, !lowerIsBetter)
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", s)
		return nil
	}

	kind, err := indicator.ParseKind(indicatorID)
	if err != nil {
		return err
	}

	input, _ := f.GetString("input")
	if input == "" {
		return eris.New("score: --input is required in indicator mode")
	}
	charset := ""
	cca, _ := f.GetFloat64("cca")
	if cca == 0 {
		cca = cfg.Scheme.CCA
	}
	crop, _ := f.GetString("crop")

	thresholdsPath, _ := f.GetString("thresholds")
	if thresholdsPath == "" {
		thresholdsPath = cfg.Thresholds.Path
	}
	ts, err := model.LoadThresholds(thresholdsPath)
	if err != nil {
		return err
	}

	rows, err := loadDataset(cmd.Context(), input, charset)
	if err != nil {
		return err
	}

	res, err := indicator.Compute(indicator.Request{Kind: kind, Rows: rows, CCA: cca})
	if err != nil {
		return err
	}

	observed, ok := observedAverage(res)
	if !ok {
		return eris.New("score: indicator produced no defined average to score")
	}

	s, err := scoring.ForIndicator(ts, kind, crop, observed)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: observed %.4g, score %d\n", kind, observed, s)
	return nil
}

// observedAverage picks the scalar the scoring engine consumes: the annual
// average where defined, falling back to the kharif average for seasonal
// datasets without an annual rollup.
func observedAverage(res *indicator.Result) (float64, bool) {
	pick := func(avg indicator.SeasonAverages) (float64, bool) {
		if avg.AnnualDefined {
			return avg.Annual, true
		}
		if avg.KharifDefined {
			return avg.Kharif, true
		}
		return 0, false
	}

	switch {
	case res.Adequacy != nil:
		return pick(res.Adequacy.Average)
	case res.Productivity != nil:
		return pick(res.Productivity.Average)
	case res.Equity != nil:
		return pick(res.Equity.Average)
	case res.CroppingIntensity != nil:
		if len(res.CroppingIntensity.Intensity) == 0 {
			return 0, false
		}
		return res.CroppingIntensity.IntensityAverage.Intensity, true
	case res.IrrigationUtilization != nil:
		if len(res.IrrigationUtilization.Rows) == 0 {
			return 0, false
		}
		return res.IrrigationUtilization.Average.Ratio, true
	}
	return 0, false
}
