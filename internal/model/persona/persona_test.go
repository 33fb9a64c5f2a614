package persona

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalLenientFields(t *testing.T) {
	var p Persona
	err := json.Unmarshal([]byte(`{
		"id": "persona_1234abcd",
		"name": "Emma Thompson",
		"bio": null,
		"messagingTone": 42,
		"traits": "curious",
		"painPoints": ["time", 3, true],
		"demographics": {"age": "25-34", "income": 85000},
		"buyingBehavior": {"budgetRange": "$200+"},
		"psychographics": {"values": ["family"]}
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, "persona_1234abcd", p.ID)
	assert.Equal(t, "", p.Bio)
	assert.Equal(t, "42", p.MessagingTone)
	assert.Equal(t, []string{"curious"}, p.Traits)
	assert.Equal(t, []string{"time", "3", "true"}, p.PainPoints)
	assert.Equal(t, "25-34", p.Demographics.Get("age"))
	assert.Equal(t, "85000", p.Demographics.Get("income"))
	assert.Equal(t, "", p.Demographics.Get("gender"))
	assert.Equal(t, "$200+", p.BudgetRange())
	assert.Contains(t, p.Extra, "psychographics")
	assert.NotContains(t, p.Extra, "painPoints")
}

func TestUnmarshalCanonicalKeyWins(t *testing.T) {
	var p Persona
	require.NoError(t, json.Unmarshal([]byte(`{"pain_points":["a"],"painPoints":["b"]}`), &p))
	assert.Equal(t, []string{"a"}, p.PainPoints)
	assert.Nil(t, p.Extra)
}

func TestUnmarshalRejects(t *testing.T) {
	cases := map[string]string{
		"not an object": `["a"]`,
		"object trait":  `{"traits":{"a":1}}`,
		"array name":    `{"name":["x"]}`,
	}
	for name, body := range cases {
		var p Persona
		assert.Error(t, json.Unmarshal([]byte(body), &p), name)
	}
}

func TestMarshalCanonicalKeys(t *testing.T) {
	p := Persona{
		Name:           "Mike Rodriguez",
		PainPoints:     []string{"cost"},
		MessagingTone:  "direct",
		BuyingBehavior: map[string]any{"budget_range": "$50"},
		Extra:          map[string]json.RawMessage{"campaigns": json.RawMessage(`["spring"]`)},
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "", out["id"])
	assert.Equal(t, "Mike Rodriguez", out["name"])
	assert.Equal(t, []any{"cost"}, out["pain_points"])
	assert.Equal(t, "direct", out["messaging_tone"])
	assert.Equal(t, []any{"spring"}, out["campaigns"])
	assert.NotContains(t, out, "avatar")
	assert.NotContains(t, out, "traits")
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	in := `{"id":"persona_00000001","name":"A","quotes":["hi"],"campaigns":["x"],"psychographics":{"lifestyle":"busy"}}`
	var p Persona
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestGenerationRequestContext(t *testing.T) {
	ctx := GenerationRequest{
		ProductPositioning: "p",
		Industry:           "i",
		TargetRegion:       "r",
		ProductCategory:    "c",
		ReviewData:         "great",
	}.Context()
	assert.Equal(t, "great", ctx["review_data"])
	assert.NotContains(t, ctx, "survey_data")
	assert.Len(t, ctx, 5)
}
