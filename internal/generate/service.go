package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/llm"
)

// ErrInvalidInput wraps problems with the Input itself.
var ErrInvalidInput = errors.New("invalid generate input")

// Service authors new games with an LLM.
type Service struct {
	provider llm.Provider
	registry *catalog.Registry
	config   Config
	logger   hclog.Logger
	tracer   trace.Tracer
}

// NewService creates a Service. The registry, when non-nil, is used to
// allocate game ids, resolve Next and list prompts to avoid repeating.
func NewService(provider llm.Provider, registry *catalog.Registry, cfg Config, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		provider: provider,
		registry: registry,
		config:   cfg,
		logger:   logger.Named("generate"),
		tracer:   otel.Tracer("github.com/abhisek/kidquest/internal/generate"),
	}
}

// Generate asks the model for a game matching in. A game that fails
// validation is regenerated up to Config.Attempts times with the failure
// described in the prompt. The returned game always passes
// engine.Validate.
func (s *Service) Generate(ctx context.Context, in Input) (catalog.Game, error) {
	in, err := s.normalize(in)
	if err != nil {
		return catalog.Game{}, err
	}

	ctx, span := s.tracer.Start(ctx, "generate.Game", trace.WithAttributes(
		attribute.String("game.id", in.GameID),
		attribute.String("game.pillar", string(in.Pillar)),
		attribute.Int("game.challenges", in.Count),
	))
	defer span.End()

	g, err := s.generate(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return catalog.Game{}, err
	}
	return g, nil
}

func (s *Service) generate(ctx context.Context, in Input) (catalog.Game, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGameGeneration)
	avoid := s.avoidList(in.Pillar)

	var (
		feedback string
		lastErr  error
	)
	for attempt := 1; attempt <= max(s.config.Attempts, 1); attempt++ {
		g, err := s.attempt(ctx, in, avoid, feedback)
		if err == nil {
			s.logger.Info("game generated", "id", g.ID, "title", g.Title, "attempt", attempt)
			return g, nil
		}

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return catalog.Game{}, err
		}
		s.logger.Warn("generated game rejected", "id", in.GameID, "attempt", attempt, "reason", verr.Message)
		feedback = verr.Message
		lastErr = err
	}
	return catalog.Game{}, lastErr
}

func (s *Service) attempt(ctx context.Context, in Input, avoid []string, feedback string) (catalog.Game, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, avoid, feedback)}},
		Schema:      GameSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return catalog.Game{}, fmt.Errorf("LLM generation failed: %w", err)
	}

	var out gameOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return catalog.Game{}, &ValidationError{Check: "structure", Message: "response is not a game object: " + err.Error(), Retryable: true}
	}
	return toGame(out, in, s.config)
}

func (s *Service) normalize(in Input) (Input, error) {
	bad := func(format string, args ...any) (Input, error) {
		return Input{}, fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
	}

	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return bad("topic is required")
	}
	if !in.Pillar.Valid() {
		return bad("unknown pillar %q", in.Pillar)
	}
	if in.AgeGroup == "" {
		in.AgeGroup = AgeGroups[0]
	}
	if !slices.Contains(AgeGroups, in.AgeGroup) {
		return bad("age group must be one of %s", strings.Join(AgeGroups, ", "))
	}
	if in.Count == 0 {
		in.Count = s.config.MinChallenges
	}
	if in.Count < s.config.MinChallenges || in.Count > s.config.MaxChallenges {
		return bad("count must be between %d and %d", s.config.MinChallenges, s.config.MaxChallenges)
	}
	for _, v := range in.Variants {
		if !slices.Contains(Generatable, v) {
			return bad("variant %q cannot be generated (use %s)", v, joinVariants(Generatable))
		}
	}
	in.Variants = slices.Clone(in.Variants)
	slices.Sort(in.Variants)
	in.Variants = slices.Compact(in.Variants)

	if in.GameID == "" {
		if s.registry != nil {
			in.GameID = s.registry.NextID(in.Pillar, in.AgeGroup)
		} else {
			in.GameID = fmt.Sprintf("%s-%s-1", in.Pillar, in.AgeGroup)
		}
	}
	if p, ok := catalog.PillarOf(in.GameID); !ok || p != in.Pillar {
		return bad("game id %q must start with %q", in.GameID, string(in.Pillar)+"-")
	}
	if s.registry != nil {
		if _, exists := s.registry.Get(in.GameID); exists {
			return bad("game %q already exists", in.GameID)
		}
		if in.Next != "" {
			if _, ok := s.registry.Get(in.Next); !ok {
				return bad("next game %q not found", in.Next)
			}
		}
	}
	if in.Next == in.GameID && in.Next != "" {
		return bad("next must name another game")
	}
	return in, nil
}

// avoidList returns prompts from existing games in the pillar, most
// recent games last, capped at Config.MaxAvoid.
func (s *Service) avoidList(p catalog.Pillar) []string {
	if s.registry == nil {
		return nil
	}
	var prompts []string
	for _, g := range s.registry.ByPillar(p) {
		for _, c := range g.Challenges {
			prompts = append(prompts, c.Prompt)
		}
	}
	if n := s.config.MaxAvoid; n > 0 && len(prompts) > n {
		prompts = prompts[len(prompts)-n:]
	}
	return prompts
}
