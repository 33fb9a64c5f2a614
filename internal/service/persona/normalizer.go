package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
)

// DefaultAvatarBaseURL renders cartoon avatars seeded by name.
const DefaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// IDPrefix marks identifiers assigned by the normalizer.
const IDPrefix = "persona_"

// Normalizer turns raw model output into personas that are safe to hand to
// clients: every persona gets an id and, when named, an avatar.
type Normalizer struct {
	avatarBaseURL string
	newID         func() string
}

// NewNormalizer uses avatarBaseURL, or DefaultAvatarBaseURL when empty.
func NewNormalizer(avatarBaseURL string) *Normalizer {
	if avatarBaseURL == "" {
		avatarBaseURL = DefaultAvatarBaseURL
	}
	return &Normalizer{avatarBaseURL: avatarBaseURL, newID: randomID}
}

// randomID is persona_ plus 8 hex chars. Uniqueness is probabilistic only.
func randomID() string {
	return IDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Normalize parses raw, which is either {"personas": [...]} or a bare list,
// optionally wrapped in a ``` or ```json fence.
func (n *Normalizer) Normalize(raw string) ([]persona.Persona, error) {
	personas, err := decodePersonas([]byte(stripFences(raw)))
	if err != nil {
		return nil, err
	}
	return n.Fill(personas), nil
}

// Fill assigns missing ids and avatars in place and returns the slice.
func (n *Normalizer) Fill(personas []persona.Persona) []persona.Persona {
	for i := range personas {
		p := &personas[i]
		if strings.TrimSpace(p.ID) == "" {
			p.ID = n.newID()
		}
		if p.Avatar == "" && strings.TrimSpace(p.Name) != "" {
			p.Avatar = n.AvatarURL(p.Name)
		}
	}
	return personas
}

// AvatarURL derives the avatar for name. Equal names share an avatar. The
// space-stripped name is query-escaped so "&" or "+" cannot split the seed.
func (n *Normalizer) AvatarURL(name string) string {
	seed := strings.ReplaceAll(name, " ", "")
	return n.avatarBaseURL + "?seed=" + url.QueryEscape(seed)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodePersonas decodes the object form first and the list form second.
func decodePersonas(data []byte) ([]persona.Persona, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrMalformedResponse, preview(data))
	}

	list := data
	switch firstByte(data) {
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
		}
		inner, ok := envelope["personas"]
		if !ok || firstByte(inner) != '[' {
			return nil, fmt.Errorf("%w: object without a personas list", apperr.ErrUnrecognizedShape)
		}
		list = inner
	case '[':
	default:
		return nil, fmt.Errorf("%w: top-level %s", apperr.ErrUnrecognizedShape, preview(data))
	}

	var personas []persona.Persona
	if err := json.Unmarshal(list, &personas); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnrecognizedShape, err)
	}
	if personas == nil {
		personas = []persona.Persona{}
	}
	return personas, nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func preview(b []byte) string {
	const limit = 80
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return fmt.Sprintf("%q", s)
}
