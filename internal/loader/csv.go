package loader

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/hydrosight/ipastat/internal/model"
)

// ParseCSV reads a delimited dataset with a header row. Rows with fewer
// fields than the header or with unparseable required numerics are dropped
// silently; a dataset with zero usable rows returns ErrNoData.
func ParseCSV(ctx context.Context, r io.Reader, opts Options) ([]model.SeasonCropRecord, error) {
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: unsupported charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // ragged rows are handled per row
	reader.LazyQuotes = true

	var header []string
	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "loader: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep scanning; a single broken line must not reject the
			// rest of a ragged real-world export.
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, eris.Wrap(err, "loader: read csv")
		}

		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, ErrNoData
	}
	return recordsFromRows(header, rows)
}
