package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
)

// DefaultHistoryLimit is how many prior chat messages reach the prompt.
const DefaultHistoryLimit = 5

// BuildGenerationPrompt asks for three personas as a {"personas": [...]} object.
// insights are short analyses of uploaded datasets.
func BuildGenerationPrompt(req persona.GenerationRequest, insights []string) string {
	parts := []string{
		"Acting as a world-class market research analyst, create 3 detailed and distinct customer personas.",
		fmt.Sprintf("The personas must be tailored for a product with this context: %s in the %s industry for the %s region.",
			req.ProductPositioning, req.Industry, req.TargetRegion),
		fmt.Sprintf("Product category: %s.", req.ProductCategory),
		"For each persona, you MUST provide: a 'name', 'demographics' (age, gender, location, occupation, income), " +
			"a 'bio' string, lists for 'traits', 'pain_points', 'goals', 'motivations', 'preferred_channels' and 'quotes', " +
			"a 'messaging_tone' string and a 'buying_behavior' object with a 'budget_range'.",
		"Format the entire output as a single, valid JSON object with a root key 'personas' which is a list of the 3 persona objects. " +
			"Do not include any text or markdown formatting before or after the JSON object.",
	}

	if req.SurveyData != "" {
		parts = append(parts, "Incorporate insights from this survey data: "+req.SurveyData)
	}
	if req.ReviewData != "" {
		parts = append(parts, "Incorporate insights from these customer reviews: "+req.ReviewData)
	}
	if len(insights) > 0 {
		parts = append(parts, "Incorporate insights from these uploaded datasets:\n- "+strings.Join(insights, "\n- "))
	}

	return strings.Join(parts, "\n")
}

// BuildRefinementPrompt embeds the full persona list, the original context and
// the refinement instructions as sorted "- key: value" lines.
func BuildRefinementPrompt(personas []persona.Persona, refinements, originalContext map[string]any) (string, error) {
	personasJSON, err := json.MarshalIndent(personas, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode personas: %w", err)
	}

	contextJSON := []byte("{}")
	if len(originalContext) > 0 {
		if contextJSON, err = json.MarshalIndent(originalContext, "", "  "); err != nil {
			return "", fmt.Errorf("encode original context: %w", err)
		}
	}

	keys := make([]string, 0, len(refinements))
	for k := range refinements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	instructions := make([]string, 0, len(keys))
	for _, k := range keys {
		instructions = append(instructions, fmt.Sprintf("- %s: %s", k, instructionValue(refinements[k])))
	}

	var b strings.Builder
	b.WriteString("You are an AI assistant that refines customer personas based on instructions. ")
	b.WriteString("Read the original personas and the user's refinement instructions carefully. ")
	b.WriteString("Then, return the complete, updated list of all personas in the exact same JSON format as the original, ")
	b.WriteString("keeping every persona's \"id\" unchanged. ")
	b.WriteString("Do not add any commentary before or after the JSON object.\n\n")
	b.WriteString("REFINEMENT INSTRUCTIONS:\n")
	b.WriteString(strings.Join(instructions, "\n"))
	b.WriteString("\n\nORIGINAL CONTEXT:\n")
	b.Write(contextJSON)
	b.WriteString("\n\nORIGINAL PERSONAS JSON:\n")
	b.Write(personasJSON)
	b.WriteString("\n\nREFINED PERSONAS JSON:")
	return b.String(), nil
}

func instructionValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// BuildChatPrompt role-plays p answering message, with at most limit of the
// most recent history messages as context.
func BuildChatPrompt(p persona.Persona, message string, history []chat.HistoryMessage, limit int) string {
	var b strings.Builder

	b.WriteString("You are ")
	b.WriteString(p.Name)
	if intro := describe(p.Demographics); intro != "" {
		b.WriteString(", ")
		b.WriteString(intro)
	}
	b.WriteString(".\n\n")

	writeLine := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	writeLine("Your background", p.Bio)
	writeLine("Your personality traits", strings.Join(p.Traits, ", "))
	writeLine("Your main concerns", strings.Join(p.PainPoints, ", "))
	writeLine("Your goals", strings.Join(p.Goals, ", "))
	writeLine("Your communication style", p.MessagingTone)
	writeLine("Your typical quotes", strings.Join(p.Quotes, " | "))

	if recent := lastN(history, limit); len(recent) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, msg := range recent {
			speaker := p.Name
			if msg.Role == "user" {
				speaker = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser just said: %s\n\n", message)
	fmt.Fprintf(&b, "Respond as %s would, staying completely in character. "+
		"Use your specific personality, concerns, and communication style. "+
		"Keep the response conversational, authentic, and under 150 words. "+
		"Do not break character or mention that you are an AI.", p.Name)
	return b.String()
}

// describe renders "a 32-year-old UX Designer from Seattle, WA" from whatever
// demographic fields are present.
func describe(d persona.Demographics) string {
	var words []string
	if age := d.Get("age"); age != "" {
		words = append(words, age+"-year-old")
	}
	if occupation := d.Get("occupation"); occupation != "" {
		words = append(words, occupation)
	}

	out := ""
	if len(words) > 0 {
		out = "a " + strings.Join(words, " ")
	}
	if location := d.Get("location"); location != "" {
		if out == "" {
			return "from " + location
		}
		out += " from " + location
	}
	return out
}

func lastN(history []chat.HistoryMessage, n int) []chat.HistoryMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
