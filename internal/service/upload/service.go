// Package upload accepts CSV, JSON and plain text datasets, summarises them
// and keeps them for use as generation context.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
)

// MaxFileSize is the largest accepted upload, inclusive.
const MaxFileSize int64 = 10 << 20

var kindsByMediaType = map[string]string{
	"text/csv":         upload.KindCSV,
	"application/json": upload.KindJSON,
	"text/plain":       upload.KindText,
}

// KindFor maps a Content-Type header to a file kind. Parameters such as
// charset are ignored.
func KindFor(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: invalid content type %q", apperr.ErrValidation, contentType)
	}
	kind, ok := kindsByMediaType[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: invalid file type %q, only CSV, TXT and JSON files are allowed", apperr.ErrValidation, mediaType)
	}
	return kind, nil
}

// Service processes and stores uploads.
type Service struct {
	store upload.Store
	now   func() time.Time
}

func NewService(store upload.Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upload reads at most MaxFileSize bytes from r, processes them according to
// contentType and stores the result.
func (s *Service) Upload(ctx context.Context, filename, contentType string, r io.Reader) (upload.File, error) {
	kind, err := KindFor(contentType)
	if err != nil {
		return upload.File{}, err
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return upload.File{}, fmt.Errorf("%w: read upload: %v", apperr.ErrValidation, err)
	}
	if int64(len(content)) > MaxFileSize {
		return upload.File{}, fmt.Errorf("%w: file too large, maximum size is 10MB", apperr.ErrValidation)
	}

	processed, err := process(kind, content)
	if err != nil {
		return upload.File{}, err
	}
	data, err := json.Marshal(processed)
	if err != nil {
		return upload.File{}, fmt.Errorf("encode processed data: %w", err)
	}

	f := upload.File{
		ID:            uuid.NewString(),
		Filename:      filename,
		FileType:      kind,
		Size:          int64(len(content)),
		ProcessedData: data,
		CreatedAt:     s.now(),
	}
	if err := s.store.SaveFile(ctx, f); err != nil {
		return upload.File{}, err
	}

	log := observability.FromContext(ctx)
	log.Info().
		Str("file_id", f.ID).
		Str("file_type", kind).
		Int64("size", f.Size).
		Msg("processed upload")
	return f, nil
}

// Insights summarises a stored upload in one line for a generation prompt.
func (s *Service) Insights(ctx context.Context, fileID string) (string, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	switch f.FileType {
	case upload.KindCSV:
		var d CSVData
		if err := json.Unmarshal(f.ProcessedData, &d); err != nil {
			return "", fmt.Errorf("%w: decode %s: %v", apperr.ErrPersistence, f.ID, err)
		}
		line := fmt.Sprintf("%s: CSV dataset with %d rows; columns: %s", f.Filename, d.Summary.TotalRows, strings.Join(d.Headers, ", "))
		if len(d.Summary.SampleData) > 0 {
			sample, _ := json.Marshal(d.Summary.SampleData[0])
			line += "; example row: " + string(sample)
		}
		return line, nil

	case upload.KindJSON:
		var d JSONData
		if err := json.Unmarshal(f.ProcessedData, &d); err != nil {
			return "", fmt.Errorf("%w: decode %s: %v", apperr.ErrPersistence, f.ID, err)
		}
		return fmt.Sprintf("%s: JSON %s with %d items; keys: %s",
			f.Filename, d.Summary.DataType, d.Summary.ItemCount, strings.Join(d.Summary.Keys, ", ")), nil

	default:
		var d TextData
		if err := json.Unmarshal(f.ProcessedData, &d); err != nil {
			return "", fmt.Errorf("%w: decode %s: %v", apperr.ErrPersistence, f.ID, err)
		}
		tone := d.Summary.Sentiment
		return fmt.Sprintf("%s: text with %d lines and %d words; tone: %s (%d positive, %d negative, %d mixed); excerpt: %s",
			f.Filename, d.Summary.LineCount, d.Summary.WordCount,
			tone.Overall(), tone.Positive, tone.Negative, tone.Mixed,
			excerpt(strings.Join(d.Summary.SampleLines, " / "), 300)), nil
	}
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
