package loader

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// XLSXLoader reads Excel workbooks through the excelize streaming row API.
type XLSXLoader struct {
	opts Options
}

// Load reads one worksheet into a dataset. The first row is the header;
// rows shorter than the header are padded with null cells.
func (l *XLSXLoader) Load(ctx context.Context, path string) (*model.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to open xlsx file").
			WithContext("path", path)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			list := f.GetSheetList()
			if len(list) == 0 {
				return nil, qaerrors.New(qaerrors.CodeInvalidFormat, "no sheets found in xlsx file").
					WithContext("path", path)
			}
			sheet = list[0]
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to read sheet").
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, qaerrors.EmptyDataset().WithContext("path", path)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeParseFailed, "failed to read header row").
			WithContext("path", path)
	}
	if len(header) == 0 {
		return nil, qaerrors.EmptyDataset().WithContext("path", path)
	}

	ds := model.NewDataset(header)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cols, err := rows.Columns()
		if err != nil {
			continue
		}
		if len(cols) == 0 {
			continue
		}

		cells := make([]model.Cell, len(cols))
		for i, v := range cols {
			cells[i] = toCell(v)
		}
		ds.AddRow(cells)
	}

	return ds, nil
}
