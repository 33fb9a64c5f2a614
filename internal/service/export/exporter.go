// Package export renders persona sets as downloadable CSV or JSON files.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	// Version is stamped into JSON exports.
	Version = "1.0"
)

// Columns is the CSV header row.
var Columns = []string{
	"Name", "Age", "Gender", "Location", "Occupation", "Income",
	"Traits", "Pain Points", "Motivations", "Goals",
	"Messaging Tone", "Preferred Channels", "Budget Range",
}

// File is a rendered export ready to be written as an attachment.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Disposition returns the Content-Disposition header value.
func (f File) Disposition() string {
	return fmt.Sprintf("attachment; filename=%q", f.Filename)
}

type jsonExport struct {
	Personas   []persona.Persona `json:"personas"`
	ExportedAt time.Time         `json:"exported_at"`
	Version    string            `json:"version"`
}

// Exporter renders persona sets. The zero value uses the wall clock.
type Exporter struct {
	now func() time.Time
}

func NewExporter() *Exporter {
	return &Exporter{now: func() time.Time { return time.Now().UTC() }}
}

// Export renders personas in format; an empty format means CSV.
func (e *Exporter) Export(personas []persona.Persona, format string) (File, error) {
	if len(personas) == 0 {
		return File{}, fmt.Errorf("%w: no personas provided for export", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	if e != nil && e.now != nil {
		now = e.now()
	}
	day := now.Format("2006-01-02")

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		body, err := renderCSV(personas)
		if err != nil {
			return File{}, err
		}
		return File{
			Filename:    "personas_" + day + ".csv",
			ContentType: "text/csv; charset=utf-8",
			Body:        body,
		}, nil

	case FormatJSON:
		body, err := json.MarshalIndent(jsonExport{Personas: personas, ExportedAt: now, Version: Version}, "", "  ")
		if err != nil {
			return File{}, fmt.Errorf("encode export: %w", err)
		}
		return File{
			Filename:    "personas_" + day + ".json",
			ContentType: "application/json",
			Body:        body,
		}, nil

	default:
		return File{}, fmt.Errorf("%w: invalid export format %q", apperr.ErrValidation, format)
	}
}

func renderCSV(personas []persona.Persona) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, p := range personas {
		if err := w.Write(row(p)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

func row(p persona.Persona) []string {
	d := p.Demographics
	return []string{
		p.Name,
		d.Get("age"),
		d.Get("gender"),
		d.Get("location"),
		d.Get("occupation"),
		d.Get("income"),
		strings.Join(p.Traits, "; "),
		strings.Join(p.PainPoints, "; "),
		strings.Join(p.Motivations, "; "),
		strings.Join(p.Goals, "; "),
		p.MessagingTone,
		strings.Join(p.PreferredChannels, "; "),
		p.BudgetRange(),
	}
}
