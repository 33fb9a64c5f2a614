package persona

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
)

var idPattern = regexp.MustCompile(`^persona_[0-9a-f]{8}$`)

const personasJSON = `[
  {"name": "Sarah Chen", "demographics": {"age": 28, "gender": "Female", "location": "San Francisco, CA",
   "occupation": "UX Designer", "income": "$85,000"}, "bio": "Designs for humans.",
   "traits": ["Creative"], "pain_points": ["Limited time"], "goals": ["Ship faster"],
   "quotes": ["Design is how it works."], "psychographics": {"values": ["craft"]}},
  {"id": "persona_keepme01", "name": "Mike Rodriguez", "avatar": "https://cdn.test/mike.png",
   "traits": [], "pain_points": [], "goals": [], "quotes": []},
  {"traits": ["anonymous"]}
]`

func TestNormalizeFencedObject(t *testing.T) {
	n := NewNormalizer("")
	raw := "```json\n{\"personas\": " + personasJSON + "}\n```"

	got, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Regexp(t, idPattern, got[0].ID)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=SarahChen", got[0].Avatar)

	assert.Equal(t, "persona_keepme01", got[1].ID)
	assert.Equal(t, "https://cdn.test/mike.png", got[1].Avatar)

	assert.Regexp(t, idPattern, got[2].ID)
	assert.Empty(t, got[2].Avatar, "unnamed personas get no avatar")
}

func TestNormalizeKeepsEverythingElse(t *testing.T) {
	got, err := NewNormalizer("").Normalize("```\n{\"personas\": " + personasJSON + "}\n```")
	require.NoError(t, err)

	out, err := json.Marshal(got)
	require.NoError(t, err)

	var gotMaps, wantMaps []map[string]any
	require.NoError(t, json.Unmarshal(out, &gotMaps))
	require.NoError(t, json.Unmarshal([]byte(personasJSON), &wantMaps))

	for i := range wantMaps {
		if _, ok := wantMaps[i]["id"]; !ok {
			wantMaps[i]["id"] = gotMaps[i]["id"]
		}
		if _, ok := wantMaps[i]["avatar"]; !ok {
			if avatar, ok := gotMaps[i]["avatar"]; ok {
				wantMaps[i]["avatar"] = avatar
			}
		}
	}
	assert.Equal(t, wantMaps, gotMaps)
}

func TestNormalizeBareListMatchesObject(t *testing.T) {
	n := NewNormalizer("")
	n.newID = func() string { return "persona_00000000" }

	fromList, err := n.Normalize(personasJSON)
	require.NoError(t, err)
	fromObject, err := n.Normalize(`{"personas": ` + personasJSON + `}`)
	require.NoError(t, err)

	assert.Equal(t, fromObject, fromList)
}

func TestNormalizeErrors(t *testing.T) {
	n := NewNormalizer("")
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "Sure! Here are your personas:", apperr.ErrMalformedResponse},
		{"truncated", `{"personas": [{"name": "A"`, apperr.ErrMalformedResponse},
		{"empty", "```json\n```", apperr.ErrMalformedResponse},
		{"string", `"personas"`, apperr.ErrUnrecognizedShape},
		{"number", `42`, apperr.ErrUnrecognizedShape},
		{"object without personas", `{"items": []}`, apperr.ErrUnrecognizedShape},
		{"personas not a list", `{"personas": {"name": "A"}}`, apperr.ErrUnrecognizedShape},
		{"list of strings", `["A", "B"]`, apperr.ErrUnrecognizedShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalizeEmptyList(t *testing.T) {
	got, err := NewNormalizer("").Normalize(`{"personas": []}`)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeCamelCaseAliases(t *testing.T) {
	got, err := NewNormalizer("").Normalize(`[{"name":"Emma Thompson","painPoints":["Scale"],"messagingTone":"Sophisticated",
		"buyingBehavior":{"budgetRange":"$200-1000/month"}}]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Scale"}, got[0].PainPoints)
	assert.Equal(t, "Sophisticated", got[0].MessagingTone)
	assert.Equal(t, "$200-1000/month", got[0].BudgetRange())
}

func TestAvatarURL(t *testing.T) {
	n := NewNormalizer("https://avatars.test/svg")
	assert.Equal(t, "https://avatars.test/svg?seed=MaryAnnLee", n.AvatarURL("Mary Ann Lee"))
	assert.Equal(t, n.AvatarURL("Mary Ann Lee"), n.AvatarURL("MaryAnn Lee"))
	assert.Equal(t, "https://avatars.test/svg?seed=Jos%C3%A9%26Ana", n.AvatarURL("José & Ana"))
	assert.Equal(t, "https://avatars.test/svg?seed=A%2BB", n.AvatarURL("A+B"))
}

func TestRandomIDShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := randomID()
		assert.Regexp(t, idPattern, id)
		seen[id] = struct{}{}
	}
	assert.Greater(t, len(seen), 95)
}

func TestFillKeepsExistingIDs(t *testing.T) {
	n := NewNormalizer("")
	got := n.Fill([]persona.Persona{{ID: "persona_aaaaaaaa", Name: "A"}, {Name: "B"}})
	assert.Equal(t, "persona_aaaaaaaa", got[0].ID)
	assert.NotEmpty(t, got[1].ID)
}
