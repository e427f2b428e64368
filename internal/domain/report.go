package domain

import "time"

// UnknownWorker is echoed in a failure when the row carried no identifier.
const UnknownWorker = "unknown"

// RowFailure is a single failed row in an IngestionReport.
type RowFailure struct {
	WorkerID string `json:"workerId"`
	Error    string `json:"error"`
	Row      int    `json:"row,omitempty"`
}

// IngestionReport aggregates the outcome of one batch.
type IngestionReport struct {
	ProcessedCount int          `json:"processedCount"`
	FailedCount    int          `json:"failedCount"`
	Errors         []RowFailure `json:"errors"`
}

type ImportSource string

const (
	ImportXLSX     ImportSource = "xlsx"
	ImportCSV      ImportSource = "csv"
	ImportTerminal ImportSource = "terminal"
)

// ImportBatch is the audit row kept for every ingestion call. FileHash is
// informational; the same file may be ingested again.
type ImportBatch struct {
	ID         string       `json:"id"`
	Source     ImportSource `json:"source"`
	FileName   string       `json:"file_name,omitempty"`
	FileHash   string       `json:"file_hash,omitempty"`
	Date1904   bool         `json:"date1904"`
	Processed  int          `json:"processed"`
	Failed     int          `json:"failed"`
	IngestedAt time.Time    `json:"ingested_at"`
}
