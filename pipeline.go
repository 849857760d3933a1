package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"placement-stats/fetcher"
	"placement-stats/models"
	"placement-stats/report"
	"placement-stats/services"
	"placement-stats/storage"
	"placement-stats/utils"
)

var (
	pipelineSkipDB  bool
	pipelinePDFPath string
)

func init() {
	rootCmd.Flags().BoolVar(&pipelineSkipDB, "no-db", false, "Skip PostgreSQL and compute statistics from the cleaned fetch")
	rootCmd.Flags().StringVar(&pipelinePDFPath, "pdf", "", "Write a PDF report to this path (overrides REPORT_PDF_PATH)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if pipelinePDFPath != "" {
		cfg.ReportPDFPath = pipelinePDFPath
	}

	logger.Info("=== Placement Statistics starting ===")
	logger.Info("Config: api %s | retries: %d | concurrency: %d | rate: %dms",
		cfg.APIBaseURL, cfg.MaxRetries, cfg.MaxConcurrency, cfg.RateLimitMs)

	client := fetcher.New(cfg, logger)
	snap, err := client.FetchAll(ctx)
	if err != nil {
		logger.Error("Fetching placements failed: %v", err)
		return err
	}
	if len(snap.Placements) == 0 {
		logger.Error("No placements were fetched. Exiting.")
		return errors.New("no placements fetched")
	}

	logger.Info("Fetched %d raw placements, writing to CSV...", len(snap.Placements))
	writeRawCSV(cfg.CSVOutputPath, snap.Placements, logger)

	cleaner := services.NewCleaner(logger)
	placements := cleaner.Clean(snap.Placements)
	if len(placements) == 0 {
		logger.Error("All placements were dropped during cleaning. Exiting.")
		return errors.New("no placements left after cleaning")
	}
	logger.Info("Cleaned dataset: %d placements", len(placements))

	if !pipelineSkipDB {
		store, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure the database is running: docker compose up -d, or pass --no-db")
			return err
		}
		defer store.Close()

		placements = persist(ctx, store, placements, logger)
	}

	insightSvc := services.NewInsightService(logger)
	rep := insightSvc.Generate(placements)
	insightSvc.Print(os.Stdout, rep)

	reconcile(insightSvc, rep, snap, logger)

	if cfg.ReportMarkdownPath != "" {
		md := report.Markdown(rep, rep.GeneratedAt)
		if err := writeFile(cfg.ReportMarkdownPath, []byte(md)); err != nil {
			logger.Error("Markdown report failed: %v", err)
		} else {
			logger.Info("Markdown report saved to %s", cfg.ReportMarkdownPath)
		}
	}

	if cfg.ReportPDFPath != "" {
		if err := writePDF(cmd, cfg.ReportPDFPath, cfg.ChromeBin, rep, logger); err != nil {
			logger.Error("PDF report failed: %v", err)
		} else {
			logger.Info("PDF report saved to %s", cfg.ReportPDFPath)
		}
	}

	dest := "PostgreSQL (placements table)"
	if pipelineSkipDB {
		dest = "not stored (--no-db)"
	}
	fmt.Printf("  Done. Raw CSV → %s | Clean data → %s\n\n", cfg.CSVOutputPath, dest)
	return nil
}

// persist stores placements and returns the stored copy for the statistics.
// When the write fails the store still holds an earlier run, so the freshly
// cleaned placements are returned instead of reading it back.
func persist(ctx context.Context, store storage.PlacementStore, placements []models.Placement, logger *utils.Logger) []models.Placement {
	if err := store.Write(ctx, placements); err != nil {
		logger.Error("PostgreSQL write failed, using the cleaned fetch for statistics: %v", err)
		return placements
	}
	logger.Info("Clean placements stored in PostgreSQL (tables: placements, placement_branches)")

	stored, err := store.FetchAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch placements from DB for statistics: %v", err)
		return placements
	}
	return stored
}

func writeRawCSV(path string, raw []*models.RawPlacement, logger *utils.Logger) {
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		return
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteRaw(raw); err != nil {
		logger.Error("CSV write failed: %v", err)
		return
	}
	logger.Info("Raw placements saved to %s", path)
}

// reconcile warns when the mappings the upstream computed disagree with the local rollups.
func reconcile(svc *services.InsightService, rep *models.StatsReport, snap *fetcher.Snapshot, logger *utils.Logger) {
	if snap.CompanyBranch == nil {
		logger.Debug("Upstream company-branch mapping unavailable, skipping cross-check")
		return
	}
	diffs := svc.Reconcile(rep.CompanyBranch, snap.CompanyBranch)
	for _, d := range diffs {
		logger.Warn("[reconcile] %s", d)
	}
	if len(diffs) == 0 {
		logger.Info("[reconcile] Local company-branch rollup matches the upstream")
	}
	if snap.BranchCompany != nil && len(snap.BranchCompany) != len(rep.BranchCompany) {
		logger.Warn("[reconcile] Upstream lists %d branches, local rollup %d",
			len(snap.BranchCompany), len(rep.BranchCompany))
	}
}

func writePDF(cmd *cobra.Command, path, chromeBin string, rep *models.StatsReport, logger *utils.Logger) error {
	page, err := report.ToHTML(report.Markdown(rep, rep.GeneratedAt))
	if err != nil {
		return err
	}
	pdf, err := report.NewPDFRenderer(chromeBin, logger).Render(cmd.Context(), page)
	if err != nil {
		return err
	}
	return writeFile(path, pdf)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
