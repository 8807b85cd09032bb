package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/config"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/converter"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/oracle"
	pgtarget "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/postgres"
	redisclient "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/redis"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/sqlserver"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/file"
	memstorage "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/memory"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/postgres"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/websearch"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/classify"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/convert"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/memory"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/orchestrator"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/repair"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/ops"
)

// targetDeployer is what the engine needs from a target database:
// statement execution plus catalog introspection for deployed objects.
type targetDeployer interface {
	Deploy(ctx context.Context, text string) error
	Describe(ctx context.Context, obj *domain.MigrationObject) (*domain.ObjectMetadata, error)
	Health(ctx context.Context) error
	Close() error
}

// Engine wires the whole migration pipeline: source extractor, converter
// clients, repair loop, shared memory, and the ops server.
type Engine struct {
	cfg       *config.AppConfig
	extractor *oracle.Extractor
	deployer  targetDeployer
	converter converter.Client
	redis     *redisclient.Client
	db        *postgres.DB
	memory    *memory.Manager
	orch      *orchestrator.Orchestrator
	opsServer *ops.Server
	log       *slog.Logger
}

// NewEngine creates an Engine with all dependencies initialized. A
// source or target that cannot be reached is fatal; everything else is
// degraded around at runtime.
func NewEngine(ctx context.Context, cfg *config.AppConfig) (*Engine, error) {
	log := slog.Default()

	// 1. Storage backend for shared memory and unresolved reports.
	var storeRepo storage.StoreRepository
	var reportRepo storage.ReportRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		storeRepo = postgres.NewStoreRepo(db, log)
		reportRepo = postgres.NewReportRepo(db)
		log.Info("Using PostgreSQL storage")
	} else if cfg.Memory.Path != "" {
		storeRepo = file.NewStoreRepo(cfg.Memory.Path, log)
		reportRepo = file.NewReportRepo(cfg.Memory.ReportsDir)
		log.Info("Using file storage", "path", cfg.Memory.Path)
	} else {
		store := memstorage.New()
		storeRepo = store.StoreRepo()
		reportRepo = store.ReportRepo()
		log.Info("Using in-memory storage, nothing will persist")
	}

	memMgr := memory.NewManager(storeRepo, log, cfg.Memory.FlushEvery)

	// 2. Source and target connections. Connectivity failures here are
	// the one fatal error class.
	srcCreds, err := cfg.Source.Normalize()
	if err != nil {
		return nil, fmt.Errorf("source connection: %w", err)
	}
	extractor, err := oracle.Connect(ctx, srcCreds.DSN(), srcCreds.Schema)
	if err != nil {
		return nil, err
	}

	tgtCreds, err := cfg.Target.Normalize()
	if err != nil {
		return nil, fmt.Errorf("target connection: %w", err)
	}
	var deployer targetDeployer
	switch tgtCreds.Dialect {
	case "sqlserver":
		deployer, err = sqlserver.Connect(ctx, tgtCreds.DSN())
	case "postgres":
		deployer, err = pgtarget.Connect(ctx, tgtCreds.DSN())
	default:
		err = fmt.Errorf("unsupported target dialect %q", tgtCreds.Dialect)
	}
	if err != nil {
		return nil, err
	}

	// 3. Converter clients.
	convClient, err := converter.New(ctx, cfg.Converter)
	if err != nil {
		return nil, err
	}
	translator, err := translate.NewClient(cfg.Translator)
	if err != nil {
		return nil, err
	}

	// 4. Web search, cached through Redis when available.
	var search websearch.Searcher
	var rdb *redisclient.Client
	if cfg.Search.Endpoint != "" {
		search = websearch.NewClient(cfg.Search)
		if cfg.Redis.URL != "" {
			rdb, err = redisclient.NewClient(cfg.Redis)
			if err != nil {
				log.Warn("Failed to connect to Redis, search cache disabled", "error", err)
			} else {
				search = websearch.NewCachedSearcher(search, rdb, cfg.Search.CacheTTL, log)
			}
		}
	}

	// 5. Pipeline.
	router := convert.NewRouter(convClient, translator, memMgr, convert.Config{
		WarningThreshold: cfg.Migration.WarningThreshold,
		PatternLimit:     cfg.Migration.PatternLimit,
		Dialect:          tgtCreds.Dialect,
	}, log)

	loop := repair.NewLoop(deployer, classify.New(), translator, memMgr, search, repair.Config{
		MaxAttempts:   cfg.Migration.MaxAttempts,
		DeployTimeout: cfg.Migration.DeployTimeout,
		SolutionLimit: cfg.Migration.SolutionLimit,
		Dialect:       tgtCreds.Dialect,
	}, log)

	orch := orchestrator.New(extractor, router, loop, deployer, memMgr, reportRepo, log)

	// 6. Ops server.
	pingers := map[string]ops.Pinger{
		"source": extractor,
		"target": deployer,
	}
	if db != nil {
		pingers["database"] = db
	}
	opsServer := ops.NewServer(cfg.Server.Port, pingers)

	return &Engine{
		cfg:       cfg,
		extractor: extractor,
		deployer:  deployer,
		converter: convClient,
		redis:     rdb,
		db:        db,
		memory:    memMgr,
		orch:      orch,
		opsServer: opsServer,
		log:       log,
	}, nil
}

// Run executes one full migration pass: discover objects in dependency
// order, drive each through the pipeline, and flush the shared memory.
func (e *Engine) Run(ctx context.Context) error {
	go serveOps(e.opsServer, e.log)

	if err := e.memory.Load(ctx); err != nil {
		return err
	}

	objects, err := e.extractor.ListObjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list source objects: %w", err)
	}
	e.log.Info("Discovered source objects", "count", len(objects), "schema", e.cfg.Source.Schema)

	summary := e.orch.RunBatch(ctx, objects)

	e.memory.Flush(ctx)
	if e.memory.Degraded() {
		e.log.Warn("Shared memory ran degraded, learned state was not persisted")
	}

	renderSummary(os.Stdout, summary)

	if summary.Cancelled {
		return ctx.Err()
	}
	return nil
}

// Stop releases every held connection.
func (e *Engine) Stop(ctx context.Context) error {
	if err := e.extractor.Close(); err != nil {
		e.log.Warn("Failed to close source connection", "error", err)
	}
	if err := e.deployer.Close(); err != nil {
		e.log.Warn("Failed to close target connection", "error", err)
	}
	if err := e.converter.Close(); err != nil {
		e.log.Warn("Failed to close converter client", "error", err)
	}
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warn("Failed to close database", "error", err)
		}
	}
	return e.opsServer.Stop(ctx)
}

// serveOps runs the ops server until shutdown. A clean shutdown is not
// an error.
func serveOps(s *ops.Server, log *slog.Logger) {
	if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Ops server failed", "error", err)
	}
}

// renderSummary prints per-kind outcomes and pointers to the unresolved
// reports of failed objects.
func renderSummary(out io.Writer, s *domain.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "KIND\tMIGRATED\tFAILED")
	for _, kind := range domain.MigrationOrder {
		c, ok := s.Counts[kind]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", kind, c.Migrated, c.Failed)
	}
	_ = w.Flush()

	if len(s.Failed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Unresolved objects:")
		for _, f := range s.Failed {
			fmt.Fprintf(out, "  %s (%s) report=%s\n", f.Object, f.Kind, f.ReportID)
		}
	}
	if s.Cancelled {
		fmt.Fprintln(out, "Run cancelled before completion.")
	}
	fmt.Fprintf(out, "Completed in %s\n", s.Duration.Round(time.Millisecond))
}
