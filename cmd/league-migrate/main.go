package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smashpoint/league/internal/app"
	"github.com/smashpoint/league/internal/infra"
	"github.com/smashpoint/league/internal/migration"
	"github.com/smashpoint/league/internal/repository"
)

var (
	fromFile string
	force    bool
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "league-migrate",
	Short: "Copy the league document from a JSON file into the configured store",
	Long: `Reads a league document from a JSON file and writes it to the backend named by
STORE_BACKEND (postgres or s3). The source must pass the ledger integrity checks.`,
	SilenceUsage: true,
	RunE:         runCopy,
}

func init() {
	rootCmd.Flags().StringVar(&fromFile, "from", "data/store.json", "Path of the JSON document to copy.")
	rootCmd.Flags().BoolVar(&force, "force", false, "Replace a document already present in the destination.")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check the source and destination without writing.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCopy(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StoreBackend == infra.StoreFile && filepath.Clean(cfg.DataFile) == filepath.Clean(fromFile) {
		return fmt.Errorf("source and destination are the same file %s", fromFile)
	}

	to, closeStore, err := app.OpenDocumentStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	from := repository.NewFileDocumentRepository(fromFile)
	result, err := migration.NewCopier(from, to, logger).Copy(ctx, force, dryRun)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
