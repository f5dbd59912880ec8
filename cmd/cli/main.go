package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cbctsurvey/adapters/postgres"
	"cbctsurvey/app"
	"cbctsurvey/domain/stats"
	"cbctsurvey/internal/config"
	"cbctsurvey/internal/report"
	"cbctsurvey/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "survey-cli",
		Short: "CBCT survey analysis: cleaning, tabulation, association tests and logistic models",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool
	var store bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full analysis pipeline over a survey export",
		Long: `Load a CSV or XLSX survey export, normalize structurally-missing
answers, and produce frequency tables, chi-square tests and odds ratios.

Example: survey-cli analyze responses.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			result, err := runAnalysis(args[0], cfg)
			if err != nil {
				return err
			}

			if store {
				if err := archiveRun(cmd.Context(), cfg, result); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Print(report.Markdown(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the structured report as JSON instead of Markdown")
	cmd.Flags().BoolVar(&store, "store", false, "Archive the run to DATABASE_URL")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Analyze a survey export and serve the results over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Server.Port
			}

			result, err := runAnalysis(args[0], cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ui.NewServer(result).Run(ctx, ":"+port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from PORT env)")

	return cmd
}

// runAnalysis loads the file and executes the pipeline with the
// configured statistical settings.
func runAnalysis(path string, cfg *config.Config) (*stats.AnalysisReport, error) {
	tbl, err := app.Load(path)
	if err != nil {
		return nil, err
	}

	pipeline := app.NewPipeline(app.Config{
		Positive:   cfg.Analysis.PositiveLevel,
		Confidence: cfg.Analysis.Confidence,
	})
	return pipeline.Run(tbl, path)
}

// archiveRun saves the report to the configured results store.
func archiveRun(ctx context.Context, cfg *config.Config, result *stats.AnalysisReport) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("--store requires DATABASE_URL")
	}
	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.Save(ctx, result)
}
