package upload

import (
	"context"
	"encoding/json"
	"time"
)

// File kinds accepted by the upload endpoint.
const (
	KindCSV  = "csv"
	KindJSON = "json"
	KindText = "txt"
)

// File is an uploaded dataset together with its processed form
// (the "uploaded_files" collection).
type File struct {
	ID            string          `json:"id"`
	Filename      string          `json:"filename"`
	FileType      string          `json:"file_type"`
	Size          int64           `json:"size"`
	ProcessedData json.RawMessage `json:"processed_data"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store persists uploaded files.
type Store interface {
	SaveFile(ctx context.Context, f File) error
	GetFile(ctx context.Context, id string) (File, error)
}
