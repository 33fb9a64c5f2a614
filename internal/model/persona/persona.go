package persona

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Demographics is kept free-form: the AI returns age as a number or as a
// range string depending on the prompt and model.
type Demographics map[string]any

// Get renders a demographic field as text, "" when absent.
func (d Demographics) Get(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	return formatScalar(v)
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Persona is a synthetic customer profile. Keys the service does not model
// (psychographics, campaigns, ...) survive a decode/encode cycle via Extra.
type Persona struct {
	ID                string
	Name              string
	Avatar            string
	Demographics      Demographics
	Bio               string
	Traits            []string
	PainPoints        []string
	Goals             []string
	Motivations       []string
	MessagingTone     string
	PreferredChannels []string
	BuyingBehavior    any
	Quotes            []string
	Extra             map[string]json.RawMessage
}

// camelCase spellings produced by some prompts are folded into the
// canonical snake_case keys.
var aliases = map[string][]string{
	"pain_points":        {"painPoints"},
	"messaging_tone":     {"messagingTone"},
	"preferred_channels": {"preferredChannels"},
	"buying_behavior":    {"buyingBehavior"},
}

func (p *Persona) fields() []struct {
	key string
	dst any
} {
	return []struct {
		key string
		dst any
	}{
		{"id", &p.ID},
		{"name", &p.Name},
		{"avatar", &p.Avatar},
		{"demographics", &p.Demographics},
		{"bio", &p.Bio},
		{"traits", &p.Traits},
		{"pain_points", &p.PainPoints},
		{"goals", &p.Goals},
		{"motivations", &p.Motivations},
		{"messaging_tone", &p.MessagingTone},
		{"preferred_channels", &p.PreferredChannels},
		{"buying_behavior", &p.BuyingBehavior},
		{"quotes", &p.Quotes},
	}
}

// UnmarshalJSON decodes a persona object, tolerating numbers where text is
// expected and a lone string where a list is expected.
func (p *Persona) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("persona must be a json object")
	}

	*p = Persona{}
	for _, f := range p.fields() {
		v := take(raw, f.key)
		if v == nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}

		var err error
		switch dst := f.dst.(type) {
		case *string:
			err = decodeText(v, dst)
		case *[]string:
			err = decodeList(v, dst)
		default:
			err = json.Unmarshal(v, dst)
		}
		if err != nil {
			return fmt.Errorf("persona field %q: %w", f.key, err)
		}
	}

	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// MarshalJSON emits canonical snake_case keys plus any preserved extras.
func (p Persona) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+13)
	for k, v := range p.Extra {
		out[k] = v
	}

	out["id"] = p.ID
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Avatar != "" {
		out["avatar"] = p.Avatar
	}
	if p.Demographics != nil {
		out["demographics"] = p.Demographics
	}
	if p.Bio != "" {
		out["bio"] = p.Bio
	}
	if p.MessagingTone != "" {
		out["messaging_tone"] = p.MessagingTone
	}
	if p.BuyingBehavior != nil {
		out["buying_behavior"] = p.BuyingBehavior
	}

	lists := map[string][]string{
		"traits":             p.Traits,
		"pain_points":        p.PainPoints,
		"goals":              p.Goals,
		"motivations":        p.Motivations,
		"preferred_channels": p.PreferredChannels,
		"quotes":             p.Quotes,
	}
	for k, v := range lists {
		if v != nil {
			out[k] = v
		}
	}

	return json.Marshal(out)
}

// BudgetRange digs the budget out of buying_behavior, which is either an
// object ({"budget_range": ...} / {"budgetRange": ...}) or plain text.
func (p Persona) BudgetRange() string {
	switch bb := p.BuyingBehavior.(type) {
	case map[string]any:
		for _, k := range []string{"budget_range", "budgetRange"} {
			if v, ok := bb[k]; ok && v != nil {
				return Demographics(bb).Get(k)
			}
		}
	}
	return ""
}

func take(raw map[string]json.RawMessage, key string) json.RawMessage {
	var found json.RawMessage
	for _, name := range append([]string{key}, aliases[key]...) {
		if v, ok := raw[name]; ok {
			if found == nil {
				found = v
			}
			delete(raw, name)
		}
	}
	return found
}

func decodeText(v json.RawMessage, dst *string) error {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		*dst = s
		return nil
	}

	var scalar any
	if err := json.Unmarshal(v, &scalar); err != nil {
		return err
	}
	switch t := scalar.(type) {
	case float64, bool:
		*dst = formatScalar(t)
		return nil
	}
	return fmt.Errorf("expected text, got %s", kindOf(v))
}

func decodeList(v json.RawMessage, dst *[]string) error {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		var single string
		if err := decodeText(v, &single); err != nil {
			return fmt.Errorf("expected list, got %s", kindOf(v))
		}
		*dst = []string{single}
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := decodeText(item, &s); err != nil {
			return err
		}
		out = append(out, s)
	}
	*dst = out
	return nil
}

func kindOf(v json.RawMessage) string {
	b := bytes.TrimSpace(v)
	if len(b) == 0 {
		return "nothing"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	default:
		return "scalar"
	}
}

// Session is a stored batch of personas tied to one generation request.
type Session struct {
	ID              string             `json:"id"`
	Personas        []Persona          `json:"personas"`
	OriginalRequest *GenerationRequest `json:"original_request,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}
