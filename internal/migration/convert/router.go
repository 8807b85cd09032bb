package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/metrics"
)

// Primary is the rule-based converter service.
type Primary interface {
	Convert(ctx context.Context, source string, kind domain.ObjectKind) (*domain.ConversionResult, error)
}

// Translator is the fallback translator service.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, error)
}

// PatternSource supplies prior successful patterns to prime fallback
// calls.
type PatternSource interface {
	RecentPatterns(kind domain.ObjectKind, outcome domain.PatternOutcome, limit int) []domain.Pattern
}

// Config holds routing thresholds.
type Config struct {
	// WarningThreshold is the maximum primary warning count still
	// accepted when the error count is zero.
	WarningThreshold int `yaml:"warning_threshold"`

	// PatternLimit caps how many prior successful patterns prime a
	// fallback call.
	PatternLimit int `yaml:"pattern_limit"`

	// Dialect names the target dialect in fallback prompts.
	Dialect string `yaml:"-"`
}

// Router decides per object between the primary converter and the
// fallback translator.
type Router struct {
	primary  Primary
	fallback Translator
	patterns PatternSource
	cfg      Config
	log      *slog.Logger
}

// NewRouter creates a router. Zero thresholds take the defaults
// (warning threshold 5, pattern limit 5).
func NewRouter(primary Primary, fallback Translator, patterns PatternSource, cfg Config, log *slog.Logger) *Router {
	if cfg.WarningThreshold <= 0 {
		cfg.WarningThreshold = 5
	}
	if cfg.PatternLimit <= 0 {
		cfg.PatternLimit = 5
	}
	return &Router{
		primary:  primary,
		fallback: fallback,
		patterns: patterns,
		cfg:      cfg,
		log:      log,
	}
}

// Convert runs the primary converter and accepts its result when the
// error count is zero and warnings are within the threshold; otherwise,
// or when the primary call itself fails, it invokes the fallback
// translator primed with recent successful patterns of the same kind.
func (r *Router) Convert(ctx context.Context, obj *domain.MigrationObject) (*domain.ConversionResult, error) {
	result, err := r.primary.Convert(ctx, obj.SourceText, obj.Kind)
	if err != nil {
		// Primary tool failure is non-fatal and does not consume the
		// repair budget; the fallback takes over.
		r.log.Warn("primary converter failed, using fallback",
			"object", obj.QualifiedName(), "error", err)
		return r.convertFallback(ctx, obj)
	}

	metrics.ConversionsTotal.WithLabelValues(string(domain.ToolPrimary)).Inc()

	if result.ErrorCount == 0 && result.WarningCount <= r.cfg.WarningThreshold {
		return result, nil
	}

	r.log.Info("primary result rejected, using fallback",
		"object", obj.QualifiedName(),
		"errors", result.ErrorCount,
		"warnings", result.WarningCount,
		"threshold", r.cfg.WarningThreshold)
	return r.convertFallback(ctx, obj)
}

func (r *Router) convertFallback(ctx context.Context, obj *domain.MigrationObject) (*domain.ConversionResult, error) {
	req := translate.Request{
		Source:   obj.SourceText,
		Kind:     obj.Kind,
		Dialect:  r.cfg.Dialect,
		Patterns: r.patterns.RecentPatterns(obj.Kind, domain.PatternSuccess, r.cfg.PatternLimit),
	}

	text, err := r.fallback.Translate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fallback translation: %w", err)
	}

	metrics.ConversionsTotal.WithLabelValues(string(domain.ToolFallback)).Inc()
	return &domain.ConversionResult{
		Tool: domain.ToolFallback,
		Text: text,
	}, nil
}
