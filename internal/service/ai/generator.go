package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/config"
)

// TextGenerator turns a prompt into model text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a TextGenerator that owns provider resources.
type Client interface {
	TextGenerator
	io.Closer
}

// NewClient builds the generator for cfg.Provider.
func NewClient(ctx context.Context, cfg config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderArk:
		g, err := NewArkGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "":
		return nil, fmt.Errorf("%w: no ai provider configured", apperr.ErrUnavailable)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

type boundedGenerator struct {
	next    TextGenerator
	timeout time.Duration
}

// WithTimeout bounds every call to next and folds provider failures into
// ErrUpstreamTimeout or ErrUpstream. A non-positive timeout only maps errors.
func WithTimeout(next TextGenerator, timeout time.Duration) TextGenerator {
	return &boundedGenerator{next: next, timeout: timeout}
}

func (g *boundedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.next.Generate(callCtx, prompt)
	switch {
	case err == nil && strings.TrimSpace(text) == "":
		return "", fmt.Errorf("%w: empty response", apperr.ErrUpstream)
	case err == nil:
		return text, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w: no answer within %s", apperr.ErrUpstreamTimeout, g.timeout)
	case errors.Is(err, context.Canceled):
		return "", err
	case errors.Is(err, apperr.ErrUpstream), errors.Is(err, apperr.ErrUpstreamTimeout):
		return "", err
	default:
		return "", fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
}
