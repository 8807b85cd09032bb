package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/config"
)

var resetMemoryCmd = &cobra.Command{
	Use:   "reset-memory",
	Short: "Delete the learned migration memory so the next run starts clean",
	Run:   runResetMemory,
}

func init() {
	rootCmd.AddCommand(resetMemoryCmd)
}

func runResetMemory(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	storeRepo, _, closeFn, err := openRepos(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	if err := storeRepo.Reset(ctx); err != nil {
		slog.Error("Failed to reset memory store", "error", err)
		os.Exit(1)
	}

	fmt.Println("Migration memory reset.")
}
