package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
	"github.com/zhouzirui/persona-studio/backend/internal/store/memory"
)

func TestKindFor(t *testing.T) {
	cases := map[string]string{
		"text/csv":                        upload.KindCSV,
		"text/csv; charset=utf-8":         upload.KindCSV,
		"application/json":                upload.KindJSON,
		"Application/JSON; charset=UTF-8": upload.KindJSON,
		"text/plain":                      upload.KindText,
	}
	for ct, want := range cases {
		got, err := KindFor(ct)
		require.NoError(t, err, ct)
		assert.Equal(t, want, got, ct)
	}

	for _, ct := range []string{"", "application/pdf", "image/png", "text/html"} {
		_, err := KindFor(ct)
		assert.ErrorIs(t, err, apperr.ErrValidation, ct)
	}
}

func TestUploadSizeBoundary(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	exact := bytes.Repeat([]byte("a"), int(MaxFileSize))
	f, err := svc.Upload(ctx, "big.txt", "text/plain", bytes.NewReader(exact))
	require.NoError(t, err)
	assert.Equal(t, MaxFileSize, f.Size)

	over := bytes.Repeat([]byte("a"), int(MaxFileSize)+1)
	_, err = svc.Upload(ctx, "bigger.txt", "text/plain", bytes.NewReader(over))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadCSV(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	content := "name, age ,plan\nAna,31,pro\n\n, ,\nBo,45\nCy,22,free\nDee,39,pro\n"

	f, err := svc.Upload(context.Background(), "survey.csv", "text/csv", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, upload.KindCSV, f.FileType)

	var d CSVData
	require.NoError(t, json.Unmarshal(f.ProcessedData, &d))
	assert.Equal(t, []string{"name", "age", "plan"}, d.Headers)
	assert.Equal(t, 4, d.Summary.TotalRows)
	assert.Equal(t, 3, d.Summary.Columns)
	require.Len(t, d.Summary.SampleData, 3)
	assert.Equal(t, map[string]string{"name": "Bo", "age": "45", "plan": ""}, d.Rows[1])

	stored, err := store.GetFile(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "survey.csv", stored.Filename)

	insight, err := svc.Insights(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Contains(t, insight, "survey.csv: CSV dataset with 4 rows; columns: name, age, plan")
	assert.Contains(t, insight, `"name":"Ana"`)
}

func TestUploadJSON(t *testing.T) {
	svc := NewService(memory.New())

	f, err := svc.Upload(context.Background(), "users.json", "application/json",
		strings.NewReader(`[{"id":1,"plan":"pro"},{"id":2,"churned":true},{"id":3},{"id":4}]`))
	require.NoError(t, err)

	var d JSONData
	require.NoError(t, json.Unmarshal(f.ProcessedData, &d))
	assert.Equal(t, "array", d.Summary.DataType)
	assert.Equal(t, 4, d.Summary.ItemCount)
	assert.Equal(t, []string{"churned", "id", "plan"}, d.Summary.Keys)
	assert.Len(t, d.Summary.SampleData, 3)

	f, err = svc.Upload(context.Background(), "cfg.json", "application/json", strings.NewReader(`{"b":1,"a":[1,2]}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(f.ProcessedData, &d))
	assert.Equal(t, "object", d.Summary.DataType)
	assert.Equal(t, []string{"a", "b"}, d.Summary.Keys)

	insight, err := svc.Insights(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "cfg.json: JSON object with 2 items; keys: a, b", insight)
}

func TestUploadInvalidJSON(t *testing.T) {
	_, err := NewService(memory.New()).Upload(context.Background(), "x.json", "application/json", strings.NewReader(`{"a":`))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadText(t *testing.T) {
	svc := NewService(memory.New())
	content := "line one here\n\nline two\nthree\nfour\nfive\nsix"

	f, err := svc.Upload(context.Background(), "notes.txt", "text/plain; charset=utf-8", strings.NewReader(content))
	require.NoError(t, err)

	var d TextData
	require.NoError(t, json.Unmarshal(f.ProcessedData, &d))
	assert.Equal(t, content, d.Content)
	assert.Equal(t, 7, d.Summary.LineCount)
	assert.Equal(t, 9, d.Summary.WordCount)
	assert.Equal(t, len(content), d.Summary.CharCount)
	assert.Equal(t, []string{"line one here", "line two", "three", "four", "five"}, d.Summary.SampleLines)

	insight, err := svc.Insights(context.Background(), f.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(insight, "notes.txt: text with 7 lines and 9 words; tone: neutral (0 positive, 0 negative, 0 mixed); excerpt: line one here / line two"), insight)
}

func TestUploadReviewsCarrySentiment(t *testing.T) {
	svc := NewService(memory.New())
	reviews := "Love it, great value\nCrashes every morning\nI recommend it to friends\nGreat app but too expensive\n"

	f, err := svc.Upload(context.Background(), "reviews.txt", "text/plain", strings.NewReader(reviews))
	require.NoError(t, err)

	var d TextData
	require.NoError(t, json.Unmarshal(f.ProcessedData, &d))
	assert.Equal(t, 2, d.Summary.Sentiment.Positive)
	assert.Equal(t, 1, d.Summary.Sentiment.Negative)
	assert.Equal(t, 1, d.Summary.Sentiment.Mixed)

	insight, err := svc.Insights(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Contains(t, insight, "tone: mixed (2 positive, 1 negative, 1 mixed)")
}

func TestUploadEmptyCSV(t *testing.T) {
	_, err := NewService(memory.New()).Upload(context.Background(), "e.csv", "text/csv", strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestInsightsMissingFile(t *testing.T) {
	_, err := NewService(memory.New()).Insights(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abc...", excerpt("abcdef", 3))
	assert.Equal(t, "é...", excerpt("éé", 3))
}
