package loader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hydrosight/ipastat/internal/model"
)

// ParseXLSX reads the first sheet of an Excel workbook laid out like the
// CSV exports: header row first, one record per row. Same row-drop policy
// as ParseCSV.
func ParseXLSX(path string) ([]model.SeasonCropRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, ErrNoData
	}

	sheet := f.Sheets[0]

	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	if header == nil {
		return nil, ErrNoData
	}
	return recordsFromRows(header, rows)
}
