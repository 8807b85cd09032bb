package repair

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/websearch"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/metrics"
)

// Deployer executes statement text against the target and returns the
// raw server error on failure.
type Deployer interface {
	Deploy(ctx context.Context, text string) error
}

// Classifier maps raw error text to the error taxonomy.
type Classifier interface {
	Classify(raw string) domain.ErrorKind
}

// Translator produces patched statement text from a repair request.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, error)
}

// MemoryStore is the slice of the shared memory the loop reads and
// writes.
type MemoryStore interface {
	GetSolutions(signature string, limit int) []domain.ErrorSolution
	AppendSolution(sol domain.ErrorSolution)
	AppendPattern(p domain.Pattern)
}

// Config bounds the loop.
type Config struct {
	// MaxAttempts is the repair budget per object, valid range 1-10.
	MaxAttempts int `yaml:"max_attempts"`

	// DeployTimeout bounds one deployment attempt; hitting it counts as
	// a failure of kind timeout and consumes one attempt.
	DeployTimeout time.Duration `yaml:"deploy_timeout"`

	// SolutionLimit caps memory hits folded into a repair request.
	SolutionLimit int `yaml:"solution_limit"`

	// Dialect names the target dialect in repair prompts.
	Dialect string `yaml:"-"`
}

// Normalize clamps the config into its valid range.
func (c *Config) Normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.MaxAttempts > 10 {
		c.MaxAttempts = 10
	}
	if c.DeployTimeout <= 0 {
		c.DeployTimeout = 2 * time.Minute
	}
	if c.SolutionLimit <= 0 {
		c.SolutionLimit = 5
	}
}

// Loop drives bounded deploy-classify-fix-redeploy for one object at a
// time.
type Loop struct {
	deployer   Deployer
	classifier Classifier
	translator Translator
	memory     MemoryStore
	search     websearch.Searcher
	cfg        Config
	log        *slog.Logger
}

// NewLoop creates a repair loop. search may be nil when no search
// collaborator is configured.
func NewLoop(
	deployer Deployer,
	classifier Classifier,
	translator Translator,
	memory MemoryStore,
	search websearch.Searcher,
	cfg Config,
	log *slog.Logger,
) *Loop {
	cfg.Normalize()
	return &Loop{
		deployer:   deployer,
		classifier: classifier,
		translator: translator,
		memory:     memory,
		search:     search,
		cfg:        cfg,
		log:        log,
	}
}

// Repair deploys the converted text and, on failure, repairs and
// redeploys until success or the attempt budget is exhausted. The
// object's target text tracks the latest deployed candidate. A
// cancelled context discards the in-flight attempt and returns the
// context error; nothing partial is recorded.
func (l *Loop) Repair(ctx context.Context, obj *domain.MigrationObject, converted string) (domain.ObjectStatus, []domain.DeploymentAttempt, error) {
	start := time.Now()
	defer func() {
		metrics.RepairDuration.WithLabelValues(string(obj.Kind)).Observe(time.Since(start).Seconds())
	}()

	current := converted
	attempts := make([]domain.DeploymentAttempt, 0, l.cfg.MaxAttempts)

	// One web search per distinct normalized error per object.
	searched := make(map[string]bool)
	searchHits := make(map[string][]string)

	// Provenance of the most recent fix, for solution recording when it
	// turns out to be the winning one.
	var lastFix fixRecord

	for index := 1; index <= l.cfg.MaxAttempts; index++ {
		if err := ctx.Err(); err != nil {
			return obj.Status, attempts, err
		}

		obj.TargetText = current
		attemptStart := time.Now()
		rawErr := l.deploy(ctx, current)
		duration := time.Since(attemptStart)

		if ctx.Err() != nil {
			// Run cancelled mid-attempt; the attempt is discarded.
			return obj.Status, attempts, ctx.Err()
		}

		if rawErr == "" {
			attempts = append(attempts, domain.DeploymentAttempt{
				ID:        uuid.New().String(),
				Index:     index,
				Outcome:   domain.OutcomeSuccess,
				StartedAt: attemptStart,
				Duration:  duration,
			})
			metrics.DeployAttemptsTotal.WithLabelValues(string(obj.Kind), string(domain.OutcomeSuccess)).Inc()
			l.recordSuccess(obj, len(attempts), lastFix)
			return domain.StatusDeployed, attempts, nil
		}

		kind := l.classifier.Classify(rawErr)
		metrics.DeployAttemptsTotal.WithLabelValues(string(obj.Kind), string(domain.OutcomeFailed)).Inc()
		metrics.ClassifiedErrorsTotal.WithLabelValues(string(kind)).Inc()

		l.log.Warn("deployment failed",
			"object", obj.QualifiedName(),
			"attempt", index,
			"error_kind", kind,
			"error", rawErr)

		attempt := domain.DeploymentAttempt{
			ID:        uuid.New().String(),
			Index:     index,
			Error:     rawErr,
			ErrorKind: kind,
			Outcome:   domain.OutcomeFailed,
			StartedAt: attemptStart,
			Duration:  duration,
		}

		// No point computing a fix that will never be deployed.
		if index < l.cfg.MaxAttempts {
			fix := l.buildFix(ctx, obj, current, rawErr, kind, searched, searchHits)
			if fix.text != "" {
				attempt.FixApplied = fix.text
				current = fix.text
				lastFix = fix
			}
		}

		attempts = append(attempts, attempt)
	}

	l.memory.AppendPattern(domain.Pattern{
		Kind:    obj.Kind,
		Outcome: domain.PatternFailure,
		Summary: fmt.Sprintf("%s unresolved after %d attempts: %s",
			obj.QualifiedName(), l.cfg.MaxAttempts, domain.CanonicalError(attempts[len(attempts)-1].Error)),
	})
	return domain.StatusUnresolved, attempts, nil
}

// deploy runs one bounded attempt and returns the raw error text, empty
// on success.
func (l *Loop) deploy(ctx context.Context, text string) string {
	deployCtx, cancel := context.WithTimeout(ctx, l.cfg.DeployTimeout)
	defer cancel()

	if err := l.deployer.Deploy(deployCtx, text); err != nil {
		return err.Error()
	}
	return ""
}

// fixRecord is one produced fix plus where its context came from.
type fixRecord struct {
	text       string
	signature  string
	fromMemory bool
	fromSearch bool
}

// buildFix assembles the repair context and asks the translator for a
// patched text. Returns a zero record when no fix could be produced.
func (l *Loop) buildFix(
	ctx context.Context,
	obj *domain.MigrationObject,
	current, rawErr string,
	kind domain.ErrorKind,
	searched map[string]bool,
	searchHits map[string][]string,
) fixRecord {
	signature := domain.Signature(obj.Kind, kind, rawErr)
	memoryHits := l.memory.GetSolutions(signature, l.cfg.SolutionLimit)

	canonical := domain.CanonicalError(rawErr)
	if len(memoryHits) == 0 && l.search != nil && !searched[canonical] {
		searched[canonical] = true
		metrics.WebSearchesTotal.Inc()

		snippets, err := l.search.Search(ctx, canonical)
		if err != nil {
			l.log.Warn("web search failed", "object", obj.QualifiedName(), "error", err)
		} else {
			hits := make([]string, 0, len(snippets))
			for _, s := range snippets {
				hits = append(hits, s.Content)
			}
			searchHits[canonical] = hits
		}
	}

	req := translate.Request{
		Source:  obj.SourceText,
		Kind:    obj.Kind,
		Dialect: l.cfg.Dialect,
		Repair: &translate.RepairContext{
			CurrentText: current,
			RawError:    rawErr,
			ErrorKind:   kind,
			MemoryHits:  memoryHits,
			SearchHits:  searchHits[canonical],
		},
	}

	fix, err := l.translator.Translate(ctx, req)
	if err != nil {
		l.log.Error("repair translation failed", "object", obj.QualifiedName(), "error", err)
		return fixRecord{}
	}
	return fixRecord{
		text:       fix,
		signature:  signature,
		fromMemory: len(memoryHits) > 0,
		fromSearch: len(searchHits[canonical]) > 0,
	}
}

// recordSuccess appends the success pattern and, when the winning fix
// was freshly produced rather than drawn from pre-existing memory, a new
// ErrorSolution under the signature of the error it resolved.
func (l *Loop) recordSuccess(obj *domain.MigrationObject, n int, lastFix fixRecord) {
	summary := fmt.Sprintf("%s deployed on attempt %d", obj.QualifiedName(), n)
	if n == 1 {
		summary = fmt.Sprintf("%s deployed cleanly", obj.QualifiedName())
	}
	l.memory.AppendPattern(domain.Pattern{
		Kind:    obj.Kind,
		Outcome: domain.PatternSuccess,
		Summary: summary,
	})

	if lastFix.text == "" || lastFix.fromMemory {
		// First-attempt success, or a fix the memory store already knew.
		return
	}

	provenance := domain.ProvenanceTranslator
	if lastFix.fromSearch {
		provenance = domain.ProvenanceWebSearch
	}
	l.memory.AppendSolution(domain.ErrorSolution{
		Signature:  lastFix.signature,
		Solution:   lastFix.text,
		Provenance: provenance,
		RecordedAt: time.Now().UTC(),
	})
}
