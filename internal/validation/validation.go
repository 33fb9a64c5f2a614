// Package validation checks request bodies against the JSON schemas embedded
// under schemas/ before they are decoded into typed requests.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 2 << 20

// Schema names, one per file in schemas/.
const (
	Generate = "generate"
	Refine   = "refine"
	Chat     = "chat"
	Share    = "share"
	Export   = "export"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var compiled = mustCompile()

func mustCompile() map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema)
	for _, name := range []string{Generate, Refine, Chat, Share, Export} {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("validation: read schema %s: %v", name, err))
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("validation: compile schema %s: %v", name, err))
		}
		out[name] = s
	}
	return out
}

// Validate checks body against the named schema. Any problem is returned as
// apperr.ErrValidation with every violation joined by "; ".
func Validate(schema string, body []byte) error {
	s, ok := compiled[schema]
	if !ok {
		return fmt.Errorf("validation: unknown schema %q", schema)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: request body is not valid json", apperr.ErrValidation)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, describe(e))
	}
	return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(problems, "; "))
}

// Decode validates body and unmarshals it into dst.
func Decode(schema string, body []byte, dst any) error {
	if err := Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// DecodeRequest reads at most MaxBodyBytes of the request body, validates it
// and unmarshals it into dst.
func DecodeRequest(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", apperr.ErrValidation, err)
	}
	return Decode(schema, body, dst)
}

func describe(e gojsonschema.ResultError) string {
	field := e.Field()
	if field == "" || field == "(root)" {
		return e.Description()
	}
	return field + ": " + e.Description()
}
