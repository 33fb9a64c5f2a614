package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exportservice "github.com/zhouzirui/persona-studio/backend/internal/service/export"
)

func setupRouter() *chi.Mux {
	handler := New(exportservice.NewExporter())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postExport(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/personas", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

const personasBody = `"personas":[{"id":"persona_a1b2c3d4","name":"Sarah Chen","demographics":{"age":32,"location":"Austin"},
	"traits":["curious","frugal"],"buyingBehavior":{"budgetRange":"$20-50"}}]`

func TestExportCSVByDefault(t *testing.T) {
	resp := postExport(setupRouter(), `{`+personasBody+`}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Regexp(t, `^attachment; filename="personas_\d{4}-\d{2}-\d{2}\.csv"$`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-cache", resp.Header().Get("Cache-Control"))

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportservice.Columns, records[0])
	assert.Equal(t, "Sarah Chen", records[1][0])
	assert.Equal(t, "32", records[1][1])
	assert.Equal(t, "Austin", records[1][3])
	assert.Equal(t, "curious; frugal", records[1][6])
	assert.Equal(t, "$20-50", records[1][12])
}

func TestExportJSON(t *testing.T) {
	resp := postExport(setupRouter(), `{"format":"json",`+personasBody+`}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Regexp(t, `filename="personas_\d{4}-\d{2}-\d{2}\.json"`, resp.Header().Get("Content-Disposition"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "1.0", out["version"])
	assert.NotEmpty(t, out["exported_at"])
	personas := out["personas"].([]any)
	require.Len(t, personas, 1)
	// camelCase input comes back in canonical form
	buying := personas[0].(map[string]any)["buying_behavior"].(map[string]any)
	assert.Equal(t, "$20-50", buying["budgetRange"])
}

func TestExportRejects(t *testing.T) {
	r := setupRouter()

	resp := postExport(r, `{"format":"pdf",`+personasBody+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postExport(r, `{"personas":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postExport(r, `{"format":"csv"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
