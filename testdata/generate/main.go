package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/temporal"
)

type shift struct {
	workerID string
	date     time.Time
	in       time.Duration
	out      time.Duration // zero means no check-out
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	// Work week: 2024-03-04 to 2024-03-08.
	startDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	days := 5

	names := []string{"Ade", "Bola", "Chidi", "Dewi", "Eko", "Fatima", "Gede", "Hana", "Ivan", "Joko", "Kemi", "Lina"}
	workers := make([]domain.Worker, len(names))
	for i, name := range names {
		w := domain.Worker{
			ID:        fmt.Sprintf("W%03d", i+1),
			Name:      name,
			DailyWage: decimal.NewFromInt(int64(600 + rng.Intn(9)*50)),
		}
		// Two thirds of the workforce is enrolled on the biometric terminal.
		if i%3 != 2 {
			w.FingerprintID = fmt.Sprintf("FP-%04d", 1000+i*7)
		}
		workers[i] = w
	}

	writeJSONFile(filepath.Join(baseDir, "workers.json"), workers)
	fmt.Printf("Generated %d workers -> workers.json\n", len(workers))

	var shifts []shift
	for d := 0; d < days; d++ {
		date := startDate.AddDate(0, 0, d)
		for _, w := range workers {
			roll := rng.Float64()
			// 10% absent.
			if roll > 0.90 {
				continue
			}

			id := w.ID
			if w.FingerprintID != "" && rng.Intn(2) == 0 {
				id = w.FingerprintID
			}

			in := 7*time.Hour + time.Duration(rng.Intn(120))*time.Minute
			length := 6*time.Hour + time.Duration(rng.Intn(300))*time.Minute
			s := shift{workerID: id, date: date, in: in, out: in + length}

			switch {
			// 5% night shift crossing midnight.
			case roll > 0.85:
				s.in = 22 * time.Hour
				s.out = 22*time.Hour + 8*time.Hour
			// 5% forgot to check out.
			case roll > 0.80:
				s.out = 0
			}
			shifts = append(shifts, s)
		}
	}

	// A few rows the pipeline must reject without stopping.
	shifts = append(shifts, shift{workerID: "W999", date: startDate, in: 8 * time.Hour, out: 17 * time.Hour})

	generateCSV(shifts, baseDir)
	generateXLSX(shifts, baseDir)

	fmt.Println("Test data generation complete.")
}

func clock(d time.Duration) string {
	d %= 24 * time.Hour
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func generateCSV(shifts []shift, baseDir string) {
	filePath := filepath.Join(baseDir, "attendance_sample.csv")
	f, err := os.Create(filePath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"worker_id", "date", "check_in", "check_out"})
	for _, s := range shifts {
		out := ""
		if s.out != 0 {
			out = clock(s.out)
		}
		// Day-first dates, as exported by the HR office.
		w.Write([]string{s.workerID, s.date.Format("02/01/2006"), clock(s.in), out})
	}
	w.Write([]string{"W001", "31/02/2024", "08:00", "17:00"})
	w.Write([]string{"W002", "2024-03-05", "", "17:00"})

	fmt.Printf("Generated %d CSV rows -> attendance_sample.csv\n", len(shifts)+2)
}

func generateXLSX(shifts []shift, baseDir string) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	header := []any{"Worker ID", "Date", "Check In", "Check Out"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		panic(err)
	}

	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 14})
	timeStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 20})

	for i, s := range shifts {
		row := []any{s.workerID, temporal.ToSerial(s.date, temporal.Epoch1900), s.in.Hours() / 24}
		if s.out != 0 {
			row = append(row, (s.out%(24*time.Hour)).Hours()/24)
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			panic(err)
		}
	}

	last := len(shifts) + 1
	f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", last), dateStyle)
	f.SetCellStyle(sheet, "C2", fmt.Sprintf("D%d", last), timeStyle)

	if err := f.SaveAs(filepath.Join(baseDir, "attendance_sample.xlsx")); err != nil {
		panic(err)
	}
	fmt.Printf("Generated %d XLSX rows -> attendance_sample.xlsx\n", len(shifts))
}

func writeJSONFile(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	candidates := []string{
		"testdata",
		"./testdata",
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
