package extract

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-editor/internal/config"
	"github.com/dvloznov/statement-editor/internal/domain"
)

// Extractor produces a structured statement from raw text.
type Extractor interface {
	// Name returns the extractor identifier (e.g. "gemini", "offline").
	Name() string

	// Extract parses raw statement text into a statement aggregate.
	Extract(ctx context.Context, rawText string) (*domain.Statement, error)
}

// Service runs the primary extractor and falls back to the offline
// heuristics when the primary path is unconfigured or fails. Because the
// offline extractor never fails, the service always returns a structurally
// valid statement.
type Service struct {
	primary Extractor
	offline *OfflineExtractor
	log     zerolog.Logger
}

// NewService wires extractors from the configuration. With
// LLM_PROVIDER=offline there is no primary extractor and every request goes
// straight to the heuristics.
func NewService(cfg *config.Config, log zerolog.Logger) *Service {
	s := &Service{
		offline: NewOfflineExtractor(),
		log:     log,
	}
	if cfg.LLMProvider == config.ProviderGemini {
		s.primary = NewGeminiExtractor(cfg.GeminiModel, cfg.MaxPromptChars)
	}
	return s
}

// NewServiceWith wires an explicit primary extractor; nil means offline only.
// Used by tests to substitute the model call.
func NewServiceWith(primary Extractor, log zerolog.Logger) *Service {
	return &Service{
		primary: primary,
		offline: NewOfflineExtractor(),
		log:     log,
	}
}

// ExtractStatement parses raw text into a statement, reporting which
// extractor produced it.
func (s *Service) ExtractStatement(ctx context.Context, rawText string) (*domain.Statement, string) {
	if s.primary != nil {
		st, err := s.primary.Extract(ctx, rawText)
		if err == nil {
			s.log.Info().
				Str("extractor", s.primary.Name()).
				Int("transactions", len(st.Transactions)).
				Msg("Statement extracted")
			return st, s.primary.Name()
		}
		s.log.Warn().
			Err(err).
			Str("extractor", s.primary.Name()).
			Msg("Primary extraction failed, falling back to offline heuristics")
	}

	st, _ := s.offline.Extract(ctx, rawText)
	s.log.Info().
		Str("extractor", s.offline.Name()).
		Int("transactions", len(st.Transactions)).
		Msg("Statement extracted")
	return st, s.offline.Name()
}
