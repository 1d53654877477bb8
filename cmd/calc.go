package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hydrosight/ipastat/internal/indicator"
	"github.com/hydrosight/ipastat/internal/loader"
	"github.com/hydrosight/ipastat/internal/model"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute indicators from a season/crop dataset",
	Long: `Compute irrigation performance indicators from a CSV or XLSX dataset.

Examples:
  # Adequacy summary as JSON
  calc --input Data_perSeason_perCrop.csv --indicator adequacy

  # Cropping intensity needs the scheme's Culturable Command Area
  calc --input Data_perSeason_perCrop.csv --indicator cropping-intensity --cca 1000

  # All five indicators at once, summary tables as CSV
  calc --input data.csv --indicator all --cca 1000 --format csv --output summary.csv`,
	RunE: runCalc,
}

func init() {
	f := calcCmd.Flags()
	f.String("input", "", "dataset path (.csv or .xlsx)")
	f.String("indicator", "", "adequacy|productivity|equity|cropping-intensity|irrigation-utilization|all")
	f.Float64("cca", 0, "Culturable Command Area in hectares (overrides config)")
	f.Int("crop-id", 0, "crop category for the equity seasonal filter (default: first in data)")
	f.String("charset", "", "input charset for legacy exports (e.g. windows-1252)")
	f.String("format", "json", "output format: json or csv")
	f.String("output", "", "output file path (default: stdout)")
	_ = calcCmd.MarkFlagRequired("input")
	_ = calcCmd.MarkFlagRequired("indicator")

	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	f := cmd.Flags()

	input, _ := f.GetString("input")
	indicatorID, _ := f.GetString("indicator")
	cca, _ := f.GetFloat64("cca")
	cropID, _ := f.GetInt("crop-id")
	charset, _ := f.GetString("charset")
	format, _ := f.GetString("format")
	output, _ := f.GetString("output")

	if cca == 0 {
		cca = cfg.Scheme.CCA
	}

	rows, err := loadDataset(ctx, input, charset)
	if err != nil {
		return err
	}
	zap.L().Info("dataset loaded",
		zap.String("path", input),
		zap.Int("rows", len(rows)),
	)

	if indicatorID == "all" {
		results, err := computeAll(ctx, rows, cca, cropID)
		if err != nil {
			return err
		}
		return writeResults(results, format, output)
	}

	kind, err := indicator.ParseKind(indicatorID)
	if err != nil {
		return err
	}
	res, err := indicator.Compute(indicator.Request{
		Kind:   kind,
		Rows:   rows,
		CCA:    cca,
		CropID: cropID,
	})
	if err != nil {
		return err
	}
	return writeResults([]*indicator.Result{res}, format, output)
}

// loadDataset picks the parser by file extension.
func loadDataset(ctx context.Context, path, charset string) ([]model.SeasonCropRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loader.ParseXLSX(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "calc: open %s", path)
	}
	defer file.Close()

	return loader.ParseCSV(ctx, file, loader.Options{Charset: charset})
}

// computeAll runs the five calculators concurrently; each is a pure
// function over the shared row slice.
func computeAll(ctx context.Context, rows []model.SeasonCropRecord, cca float64, cropID int) ([]*indicator.Result, error) {
	results := make([]*indicator.Result, len(indicator.Kinds))

	g, _ := errgroup.WithContext(ctx)
	for i, kind := range indicator.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			res, err := indicator.Compute(indicator.Request{
				Kind:   kind,
				Rows:   rows,
				CCA:    cca,
				CropID: cropID,
			})
			if err != nil {
				return eris.Wrapf(err, "calc: %s", kind)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeResults(results []*indicator.Result, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "calc: create %s", output)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return eris.Wrap(enc.Encode(results[0]), "calc: encode result")
		}
		return eris.Wrap(enc.Encode(results), "calc: encode results")
	case "csv":
		return writeSummaryCSV(w, results)
	default:
		return eris.New(fmt.Sprintf("calc: unknown format %q", format))
	}
}

// writeSummaryCSV flattens each indicator's year-by-season summary table,
// with an AVERAGE row per indicator.
func writeSummaryCSV(w io.Writer, results []*indicator.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"indicator", "year", "kharif", "rabi", "zaid", "annual"}); err != nil {
		return eris.Wrap(err, "calc: write csv header")
	}

	for _, res := range results {
		summary, avg, ok := summaryOf(res)
		if !ok {
			continue
		}
		for _, row := range summary {
			rec := []string{
				string(res.Kind),
				strconv.Itoa(row.Year),
				formatCell(row.Kharif),
				formatCell(row.Rabi),
				formatCell(row.Zaid),
				formatCell(row.Annual),
			}
			if err := cw.Write(rec); err != nil {
				return eris.Wrap(err, "calc: write csv row")
			}
		}
		rec := []string{
			string(res.Kind),
			"AVERAGE",
			formatAvg(avg.Kharif, avg.KharifDefined),
			formatAvg(avg.Rabi, avg.RabiDefined),
			formatAvg(avg.Zaid, avg.ZaidDefined),
			formatAvg(avg.Annual, avg.AnnualDefined),
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "calc: write csv average")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "calc: flush csv")
}

// summaryOf extracts the cross-season summary where the indicator has one.
// Cropping intensity and utilization are per-year only and are exported as
// annual values.
func summaryOf(res *indicator.Result) ([]indicator.SummaryRow, indicator.SeasonAverages, bool) {
	switch {
	case res.Adequacy != nil:
		return res.Adequacy.Summary, res.Adequacy.Average, true
	case res.Productivity != nil:
		return res.Productivity.Summary, res.Productivity.Average, true
	case res.Equity != nil:
		return res.Equity.Summary, res.Equity.Average, true
	case res.CroppingIntensity != nil:
		var summary []indicator.SummaryRow
		for _, row := range res.CroppingIntensity.Intensity {
			v := row.Intensity
			summary = append(summary, indicator.SummaryRow{Year: row.Year, Annual: &v})
		}
		avg := indicator.SeasonAverages{
			Annual:        res.CroppingIntensity.IntensityAverage.Intensity,
			AnnualDefined: len(summary) > 0,
		}
		return summary, avg, true
	case res.IrrigationUtilization != nil:
		var summary []indicator.SummaryRow
		for _, row := range res.IrrigationUtilization.Rows {
			v := row.Ratio
			summary = append(summary, indicator.SummaryRow{Year: row.Year, Annual: &v})
		}
		avg := indicator.SeasonAverages{
			Annual:        res.IrrigationUtilization.Average.Ratio,
			AnnualDefined: len(summary) > 0,
		}
		return summary, avg, true
	}
	return nil, indicator.SeasonAverages{}, false
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatAvg(v float64, defined bool) string {
	if !defined {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
