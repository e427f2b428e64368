package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/wakala/attendance/internal/domain"
)

// readCSV parses a comma separated attendance sheet. Serial numbers exported
// from a spreadsheet are recognised in the date column; in the time columns
// only fractions of a day are, so that "8" and "17.30" read as clock times.
func readCSV(data []byte) (*Upload, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrUnreadableUpload, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	up := &Upload{Source: domain.ImportCSV}
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrUnreadableUpload, lineNum, err)
		}
		if blankRow(row) {
			continue
		}

		up.Rows = append(up.Rows, RawRow{
			Line:       lineNum,
			Identifier: cell(row, cols.identifier),
			Date:       csvDate(cell(row, cols.date)),
			CheckIn:    csvTime(cell(row, cols.checkIn)),
			CheckOut:   csvTime(cell(row, cols.checkOut)),
		})
	}
	return up, nil
}

func csvDate(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

var paddedClock = regexp.MustCompile(`^\d{2}\.\d{2}$`)

// csvTime keeps a time cell as text unless it is a spreadsheet fraction of a
// day in [0,1). "08.00" and "17.30" stay text and go through clock parsing.
func csvTime(s string) any {
	if !strings.ContainsAny(s, ".eE") || paddedClock.MatchString(s) {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f < 1 {
		return f
	}
	return s
}
