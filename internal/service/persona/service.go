package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/observability"
	"github.com/zhouzirui/persona-studio/backend/internal/service/ai"
)

// Field limits applied to generation requests.
const (
	MaxPositioningLength = 1000
	MaxDatasetLength     = 10000
)

// InsightSource renders a short analysis of a previously uploaded file.
type InsightSource interface {
	Insights(ctx context.Context, fileID string) (string, error)
}

// Service generates, refines and looks up persona sessions.
type Service struct {
	gen        ai.TextGenerator
	sessions   persona.SessionStore
	normalizer *Normalizer
	insights   InsightSource
	now        func() time.Time
}

// NewService wires the collaborators. gen may be nil when no AI provider is
// configured; generation and refinement then fail with ErrUnavailable.
// insights may be nil, in which case uploaded file ids are rejected.
func NewService(gen ai.TextGenerator, sessions persona.SessionStore, normalizer *Normalizer, insights InsightSource) *Service {
	if normalizer == nil {
		normalizer = NewNormalizer("")
	}
	return &Service{
		gen:        gen,
		sessions:   sessions,
		normalizer: normalizer,
		insights:   insights,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds a persona batch from req and stores it as a new session.
func (s *Service) Generate(ctx context.Context, req persona.GenerationRequest) (persona.Session, error) {
	req = trimRequest(req)
	if err := ValidateRequest(req); err != nil {
		return persona.Session{}, err
	}
	if s.gen == nil {
		return persona.Session{}, fmt.Errorf("%w: ai provider not configured", apperr.ErrUnavailable)
	}

	insights, err := s.collectInsights(ctx, req.UploadedFileIDs)
	if err != nil {
		return persona.Session{}, err
	}

	text, err := s.gen.Generate(ctx, ai.BuildGenerationPrompt(req, insights))
	if err != nil {
		return persona.Session{}, err
	}

	personas, err := s.normalizer.Normalize(text)
	if err != nil {
		return persona.Session{}, err
	}

	session := persona.Session{
		ID:              uuid.NewString(),
		Personas:        personas,
		OriginalRequest: &req,
		CreatedAt:       s.now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return persona.Session{}, err
	}

	log := observability.FromContext(ctx)
	log.Info().
		Str("session_id", session.ID).
		Int("personas", len(personas)).
		Int("insights", len(insights)).
		Msg("generated personas")
	return session, nil
}

// Refine asks the model to apply refinements to personas. The result is not
// persisted.
func (s *Service) Refine(ctx context.Context, personas []persona.Persona, refinements, originalContext map[string]any) ([]persona.Persona, error) {
	if len(personas) == 0 {
		return nil, fmt.Errorf("%w: at least one persona is required", apperr.ErrValidation)
	}
	if len(refinements) == 0 {
		return nil, fmt.Errorf("%w: at least one refinement is required", apperr.ErrValidation)
	}
	if s.gen == nil {
		return nil, fmt.Errorf("%w: ai provider not configured", apperr.ErrUnavailable)
	}

	prompt, err := ai.BuildRefinementPrompt(personas, refinements, originalContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	refined, err := s.normalizer.Normalize(text)
	if err != nil {
		return nil, err
	}

	log := observability.FromContext(ctx)
	log.Info().
		Int("personas_in", len(personas)).
		Int("personas_out", len(refined)).
		Msg("refined personas")
	return refined, nil
}

// GetSession returns a stored session.
func (s *Service) GetSession(ctx context.Context, id string) (persona.Session, error) {
	if strings.TrimSpace(id) == "" {
		return persona.Session{}, fmt.Errorf("%w: session id is required", apperr.ErrValidation)
	}
	return s.sessions.GetSession(ctx, id)
}

// collectInsights looks up every uploaded file concurrently, keeping order.
func (s *Service) collectInsights(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if s.insights == nil {
		return nil, fmt.Errorf("%w: uploaded files are not supported", apperr.ErrValidation)
	}

	insights, err := iter.MapErr(ids, func(id *string) (string, error) {
		return s.insights.Insights(ctx, *id)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown uploaded file: %v", apperr.ErrValidation, err)
		}
		return nil, err
	}
	return insights, nil
}

func trimRequest(req persona.GenerationRequest) persona.GenerationRequest {
	req.ProductPositioning = strings.TrimSpace(req.ProductPositioning)
	req.Industry = strings.TrimSpace(req.Industry)
	req.TargetRegion = strings.TrimSpace(req.TargetRegion)
	req.ProductCategory = strings.TrimSpace(req.ProductCategory)
	req.SurveyData = strings.TrimSpace(req.SurveyData)
	req.ReviewData = strings.TrimSpace(req.ReviewData)
	return req
}

// ValidateRequest checks required fields and length limits of a trimmed request.
func ValidateRequest(req persona.GenerationRequest) error {
	var problems []string
	required := []struct{ name, value string }{
		{"product_positioning", req.ProductPositioning},
		{"industry", req.Industry},
		{"target_region", req.TargetRegion},
		{"product_category", req.ProductCategory},
	}
	for _, f := range required {
		if f.value == "" {
			problems = append(problems, f.name+" is required")
		}
	}

	if utf8.RuneCountInString(req.ProductPositioning) > MaxPositioningLength {
		problems = append(problems, fmt.Sprintf("product_positioning must be at most %d characters", MaxPositioningLength))
	}
	if utf8.RuneCountInString(req.SurveyData) > MaxDatasetLength {
		problems = append(problems, fmt.Sprintf("survey_data must be at most %d characters", MaxDatasetLength))
	}
	if utf8.RuneCountInString(req.ReviewData) > MaxDatasetLength {
		problems = append(problems, fmt.Sprintf("review_data must be at most %d characters", MaxDatasetLength))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
