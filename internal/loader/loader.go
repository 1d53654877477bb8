// Package loader parses season/crop datasets from CSV and XLSX sources
// into typed records. Header columns are matched case-insensitively and
// malformed rows are skipped rather than surfaced; only a dataset with no
// usable rows at all is an error.
package loader

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hydrosight/ipastat/internal/model"
)

// ErrNoData is returned when parsing yields zero usable records.
var ErrNoData = eris.New("loader: no data loaded")

// Options configures parsing. The zero value handles standard UTF-8 CSV
// exports.
type Options struct {
	Delimiter rune   // default ','
	Charset   string // IANA charset name for legacy exports; "" = UTF-8
}

// columns maps logical fields to header indexes. -1 means the column is
// absent; its numeric value defaults to zero.
type columns struct {
	year, season, cropType, cropID, area, eta, eta90, tbp, status int
}

func mapHeader(header []string) columns {
	cols := columns{year: -1, season: -1, cropType: -1, cropID: -1, area: -1, eta: -1, eta90: -1, tbp: -1, status: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "year":
			cols.year = i
		case "season":
			cols.season = i
		case "croptype":
			cols.cropType = i
		case "cropid":
			cols.cropID = i
		case "area":
			cols.area = i
		case "eta":
			cols.eta = i
		case "eta90":
			cols.eta90 = i
		case "tbp":
			cols.tbp = i
		case "status":
			cols.status = i
		}
	}
	return cols
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
	return name
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// intField parses a required integer column. Empty means absent (0, ok);
// anything unparseable rejects the row.
func intField(row []string, idx int) (int, bool) {
	s := field(row, idx)
	if s == "" {
		return 0, true
	}
	// Tolerate "2018.0" style exports.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func floatField(row []string, idx int) (float64, bool) {
	s := field(row, idx)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// recordFromRow converts one data row. ok is false when the row is ragged
// or a required numeric field fails to parse; such rows are dropped.
func recordFromRow(header columns, headerLen int, row []string) (model.SeasonCropRecord, bool) {
	if len(row) < headerLen {
		return model.SeasonCropRecord{}, false
	}

	year, ok := intField(row, header.year)
	if !ok {
		return model.SeasonCropRecord{}, false
	}
	season, ok := intField(row, header.season)
	if !ok {
		return model.SeasonCropRecord{}, false
	}
	area, ok := floatField(row, header.area)
	if !ok {
		return model.SeasonCropRecord{}, false
	}
	eta, ok := floatField(row, header.eta)
	if !ok {
		return model.SeasonCropRecord{}, false
	}
	tbp, ok := floatField(row, header.tbp)
	if !ok {
		return model.SeasonCropRecord{}, false
	}

	// eta90 and cropID tolerate garbage: they default to zero.
	eta90, ok := floatField(row, header.eta90)
	if !ok {
		eta90 = 0
	}
	cropID, ok := intField(row, header.cropID)
	if !ok {
		cropID = 0
	}

	return model.SeasonCropRecord{
		Year:     year,
		Season:   model.Season(season),
		CropType: field(row, header.cropType),
		CropID:   cropID,
		Area:     area,
		ETa:      eta,
		ETa90:    eta90,
		TBP:      tbp,
		Status:   field(row, header.status),
	}, true
}

// recordsFromRows maps a header row plus data rows to records, dropping
// rows that fail to parse.
func recordsFromRows(header []string, rows [][]string) ([]model.SeasonCropRecord, error) {
	cols := mapHeader(header)

	var records []model.SeasonCropRecord
	for _, row := range rows {
		rec, ok := recordFromRow(cols, len(header), row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}
