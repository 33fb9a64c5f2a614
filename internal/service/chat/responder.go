package chat

import (
	"context"
	"math/rand/v2"

	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/service/ai"
)

// Responder produces a persona's reply to a message.
type Responder interface {
	Reply(ctx context.Context, p persona.Persona, message string, history []chat.HistoryMessage) (string, error)
}

// AIResponder asks the text generator to role-play the persona.
type AIResponder struct {
	gen          ai.TextGenerator
	historyLimit int
}

// NewAIResponder keeps the last historyLimit history messages in the prompt.
func NewAIResponder(gen ai.TextGenerator, historyLimit int) *AIResponder {
	return &AIResponder{gen: gen, historyLimit: historyLimit}
}

func (r *AIResponder) Reply(ctx context.Context, p persona.Persona, message string, history []chat.HistoryMessage) (string, error) {
	return r.gen.Generate(ctx, ai.BuildChatPrompt(p, message, history, r.historyLimit))
}

// Picker chooses one of n candidates.
type Picker interface {
	Pick(n int) int
}

// RandomPicker picks uniformly at random.
type RandomPicker struct{}

func (RandomPicker) Pick(n int) int { return rand.IntN(n) }

// IndexPicker always picks the same position, wrapping around n.
type IndexPicker int

func (p IndexPicker) Pick(n int) int {
	i := int(p) % n
	if i < 0 {
		i += n
	}
	return i
}

var cannedReplies = map[string][]string{
	"Sarah Chen": {
		"That's a great question! As a UX designer, I always think about how users will interact with features like that.",
		"I really value tools that don't require a steep learning curve. Time is so precious in our industry.",
		"Collaboration features are huge for me. I work with developers and PMs daily, so seamless integration is key.",
		"I'm willing to invest in quality tools, but they need to prove their worth quickly.",
		"Clean, intuitive design isn't just nice to have - it's essential for my workflow.",
	},
	"Mike Rodriguez": {
		"I need to see clear ROI before I invest in any new tool. Show me the numbers!",
		"As a small business owner, every dollar counts. I can't afford tools that don't deliver value.",
		"I prefer straightforward solutions. If it takes more than 10 minutes to set up, it's too complex.",
		"Customer support is crucial. When something breaks, I need it fixed fast.",
		"I trust recommendations from other small business owners more than fancy marketing.",
	},
	"Emma Thompson": {
		"We need enterprise-grade solutions that can handle our scale and complexity.",
		"Integration capabilities are non-negotiable. Any new tool must work with our existing stack.",
		"I value premium support and dedicated account management. White-glove service is expected.",
		"Brand reputation and security are paramount. We can't risk our data with unknown vendors.",
		"Advanced features and customization options are essential for our sophisticated campaigns.",
	},
}

var genericReplies = []string{
	"That's an interesting perspective! Let me think about that from my point of view.",
	"I appreciate you asking. Based on my experience, I'd say...",
	"That resonates with me. In my situation, I usually consider...",
}

// CannedResponder answers from a fixed table keyed by persona name.
type CannedResponder struct {
	picker Picker
}

// NewCannedResponder uses RandomPicker when picker is nil.
func NewCannedResponder(picker Picker) *CannedResponder {
	if picker == nil {
		picker = RandomPicker{}
	}
	return &CannedResponder{picker: picker}
}

func (r *CannedResponder) Reply(_ context.Context, p persona.Persona, _ string, _ []chat.HistoryMessage) (string, error) {
	lines := CannedLines(p.Name)
	return lines[r.picker.Pick(len(lines))], nil
}

// CannedLines returns the candidate replies for name, or the generic set.
func CannedLines(name string) []string {
	if lines, ok := cannedReplies[name]; ok {
		return lines
	}
	return genericReplies
}
