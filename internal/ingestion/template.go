package ingestion

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/temporal"
)

const templateSheet = "Attendance"

// Built-in number formats.
const (
	numFmtDate = 14 // m/d/yyyy
	numFmtTime = 20 // h:mm
)

// WriteTemplate writes a workbook with one pre-filled row per worker for
// day, leaving the clock columns empty. The reader accepts the file as is;
// the name column is ignored on upload.
func WriteTemplate(w io.Writer, workers []domain.Worker, day time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []any{"worker_id", "name", "date", "check_in", "check_out"}
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtDate})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	timeStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTime})
	if err != nil {
		return fmt.Errorf("time style: %w", err)
	}

	serial := temporal.ToSerial(day, temporal.Epoch1900)
	for i, wk := range workers {
		id := wk.ID
		if wk.FingerprintID != "" {
			id = wk.FingerprintID
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{id, wk.Name, serial}
		if err := f.SetSheetRow(templateSheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if last := len(workers) + 1; last > 1 {
		if err := f.SetCellStyle(templateSheet, "C2", fmt.Sprintf("C%d", last), dateStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(templateSheet, "D2", fmt.Sprintf("E%d", last), timeStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(templateSheet, "A", "E", 16); err != nil {
		return err
	}

	return f.Write(w)
}
