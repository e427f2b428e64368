package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wakala/attendance/internal/domain"
)

// RawRow is one data row of an upload, before any normalization. Date and
// time values keep the type the source produced: float64 for numeric cells,
// string otherwise.
type RawRow struct {
	Line       int
	Identifier string
	Date       any
	CheckIn    any
	CheckOut   any
}

// Upload is a decoded spreadsheet.
type Upload struct {
	Source   domain.ImportSource
	Date1904 bool
	Rows     []RawRow
}

// column positions in the header row; -1 when absent.
type columns struct {
	identifier int
	date       int
	checkIn    int
	checkOut   int
}

var headerAliases = map[string]string{
	"workerid":      "identifier",
	"fingerprint":   "identifier",
	"fingerprintid": "identifier",
	"date":          "date",
	"workdate":      "date",
	"checkin":       "checkIn",
	"checkout":      "checkOut",
}

func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// mapColumns locates the recognised columns. The first matching header wins
// when an alias appears twice.
func mapColumns(header []string) (columns, error) {
	cols := columns{identifier: -1, date: -1, checkIn: -1, checkOut: -1}
	for i, h := range header {
		var slot *int
		switch headerAliases[canonicalHeader(h)] {
		case "identifier":
			slot = &cols.identifier
		case "date":
			slot = &cols.date
		case "checkIn":
			slot = &cols.checkIn
		case "checkOut":
			slot = &cols.checkOut
		default:
			continue
		}
		if *slot < 0 {
			*slot = i
		}
	}

	var missing []string
	if cols.identifier < 0 {
		missing = append(missing, "worker_id/fingerprint")
	}
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.checkIn < 0 {
		missing = append(missing, "check_in")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isBlank reports whether a raw value carries nothing.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

var zipMagic = []byte("PK\x03\x04")

// ReadUpload decodes an xlsx or csv upload. The format comes from the file
// extension, or from the content when the name does not tell.
func ReadUpload(data []byte, filename string) (*Upload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrEmptyUpload
	}

	var (
		up  *Upload
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		up, err = readXLSX(data)
	case ".csv", ".txt":
		up, err = readCSV(data)
	default:
		if bytes.HasPrefix(data, zipMagic) {
			up, err = readXLSX(data)
		} else {
			up, err = readCSV(data)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(up.Rows) == 0 {
		return nil, domain.ErrEmptyUpload
	}
	return up, nil
}
