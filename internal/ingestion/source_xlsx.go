package ingestion

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/wakala/attendance/internal/domain"
)

// readXLSX reads the active sheet of a workbook. Cell values are taken raw,
// so dates and times arrive as serial numbers and the workbook's date1904
// property decides how they are decoded.
func readXLSX(data []byte) (*Upload, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableUpload, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = f.GetSheetList()[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", domain.ErrUnreadableUpload, sheet, err)
	}

	up := &Upload{Source: domain.ImportXLSX}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		up.Date1904 = *props.Date1904
	}

	headerIdx := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, domain.ErrEmptyUpload
	}

	cols, err := mapColumns(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		line := i + 1
		up.Rows = append(up.Rows, RawRow{
			Line:       line,
			Identifier: cell(row, cols.identifier),
			Date:       xlsxValue(f, sheet, row, cols.date, line),
			CheckIn:    xlsxValue(f, sheet, row, cols.checkIn, line),
			CheckOut:   xlsxValue(f, sheet, row, cols.checkOut, line),
		})
	}
	return up, nil
}

// xlsxValue returns a numeric cell as float64 and anything typed as text as
// a string, so "8:00" typed into a cell and 0.3333 formatted as a time are
// told apart.
func xlsxValue(f *excelize.File, sheet string, row []string, col, line int) any {
	s := cell(row, col)
	if s == "" {
		return s
	}

	axis, err := excelize.CoordinatesToCellName(col+1, line)
	if err != nil {
		return s
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return s
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeDate:
		return s
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
