package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/config"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/file"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the learned migration memory and unresolved reports",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// openRepos picks the storage backend the way the engine does: the
// database when configured, the memory file otherwise.
func openRepos(ctx context.Context, cfg *config.AppConfig) (storage.StoreRepository, storage.ReportRepository, func(), error) {
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = db.Close() }
		return postgres.NewStoreRepo(db, slog.Default()), postgres.NewReportRepo(db), closeFn, nil
	}
	return file.NewStoreRepo(cfg.Memory.Path, slog.Default()),
		file.NewReportRepo(cfg.Memory.ReportsDir),
		func() {}, nil
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	storeRepo, reportRepo, closeFn, err := openRepos(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	doc, err := storeRepo.Load(ctx)
	if err != nil && !errors.Is(err, storage.ErrStoreNotFound) {
		slog.Error("Failed to load memory store", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SECTION\tENTRIES")
	if doc != nil {
		_, _ = fmt.Fprintf(w, "schemas\t%d\n", len(doc.Schemas))
		_, _ = fmt.Fprintf(w, "identity_columns\t%d\n", len(doc.IdentityColumns))
		_, _ = fmt.Fprintf(w, "table_mappings\t%d\n", len(doc.TableMappings))
		_, _ = fmt.Fprintf(w, "error_solutions\t%d\n", len(doc.ErrorSolutions))
		_, _ = fmt.Fprintf(w, "patterns\t%d\n", len(doc.Patterns))
	} else {
		_, _ = fmt.Fprintln(w, "(empty)\t0")
	}
	_ = w.Flush()

	reports, err := reportRepo.List(ctx)
	if err != nil {
		slog.Error("Failed to list unresolved reports", "error", err)
		os.Exit(1)
	}
	if len(reports) == 0 {
		fmt.Println("\nNo unresolved reports.")
		return
	}

	fmt.Println()
	rw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(rw, "OBJECT\tKIND\tATTEMPTS\tCREATED\tREPORT")
	for _, r := range reports {
		_, _ = fmt.Fprintf(rw, "%s.%s\t%s\t%d\t%s\t%s\n",
			r.Schema, r.ObjectName, r.Kind, len(r.Attempts),
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID)
	}
	_ = rw.Flush()
}
