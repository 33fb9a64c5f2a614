package upload

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zhouzirui/persona-studio/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
)

const sampleSize = 3

const bom = "\ufeff"

// CSVData is the processed form of a CSV upload.
type CSVData struct {
	Type    string              `json:"type"`
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
	Summary CSVSummary          `json:"summary"`
}

type CSVSummary struct {
	TotalRows  int                 `json:"total_rows"`
	Columns    int                 `json:"columns"`
	SampleData []map[string]string `json:"sample_data"`
}

// JSONData is the processed form of a JSON upload.
type JSONData struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Summary JSONSummary     `json:"summary"`
}

type JSONSummary struct {
	Keys       []string          `json:"keys"`
	DataType   string            `json:"data_type"`
	ItemCount  int               `json:"item_count"`
	SampleData []json.RawMessage `json:"sample_data,omitempty"`
}

// TextData is the processed form of a plain text upload.
type TextData struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Summary TextSummary `json:"summary"`
}

type TextSummary struct {
	LineCount   int             `json:"line_count"`
	WordCount   int             `json:"word_count"`
	CharCount   int             `json:"char_count"`
	SampleLines []string        `json:"sample_lines"`
	Sentiment   sentiment.Tally `json:"sentiment"`
}

// process dispatches on kind and returns one of the *Data types.
func process(kind string, content []byte) (any, error) {
	switch kind {
	case upload.KindCSV:
		return processCSV(content)
	case upload.KindJSON:
		return processJSON(content)
	case upload.KindText:
		return processText(content), nil
	default:
		return nil, fmt.Errorf("%w: unsupported file kind %q", apperr.ErrValidation, kind)
	}
}

func processCSV(content []byte) (*CSVData, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte(bom))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: csv file is empty", apperr.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %v", apperr.ErrValidation, err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid csv: %v", apperr.ErrValidation, err)
		}

		row := make(map[string]string, len(headers))
		blank := true
		for i, h := range headers {
			var v string
			if i < len(record) {
				v = strings.TrimSpace(record[i])
			}
			if v != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}

	return &CSVData{
		Type:    "csv",
		Headers: headers,
		Rows:    rows,
		Summary: CSVSummary{
			TotalRows:  len(rows),
			Columns:    len(headers),
			SampleData: rows[:min(sampleSize, len(rows))],
		},
	}, nil
}

func processJSON(content []byte) (*JSONData, error) {
	content = bytes.TrimSpace(bytes.TrimPrefix(content, []byte(bom)))
	if !json.Valid(content) {
		return nil, fmt.Errorf("%w: invalid json format", apperr.ErrValidation)
	}

	out := &JSONData{Type: "json", Data: json.RawMessage(content)}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(content, &object); err == nil && object != nil {
		out.Summary = JSONSummary{Keys: sortedKeys(object), DataType: "object", ItemCount: len(object)}
		return out, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err == nil {
		keys := make(map[string]json.RawMessage)
		for _, item := range items {
			var fields map[string]json.RawMessage
			if json.Unmarshal(item, &fields) == nil {
				for k := range fields {
					keys[k] = nil
				}
			}
		}
		out.Summary = JSONSummary{
			Keys:       sortedKeys(keys),
			DataType:   "array",
			ItemCount:  len(items),
			SampleData: items[:min(sampleSize, len(items))],
		}
		return out, nil
	}

	out.Summary = JSONSummary{Keys: []string{}, DataType: "scalar", ItemCount: 1}
	return out, nil
}

func processText(content []byte) *TextData {
	text := string(bytes.TrimPrefix(content, []byte(bom)))

	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}

	var samples []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			samples = append(samples, line)
		}
		if len(samples) == 5 {
			break
		}
	}
	if samples == nil {
		samples = []string{}
	}

	return &TextData{
		Type:    "text",
		Content: text,
		Summary: TextSummary{
			LineCount:   lines,
			WordCount:   len(strings.Fields(text)),
			CharCount:   utf8.RuneCountInString(text),
			SampleLines: samples,
			Sentiment:   sentiment.AnalyzeLines(text),
		},
	}
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
