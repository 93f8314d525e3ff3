package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/vantage/internal/config"
	"github.com/FranksOps/vantage/internal/extract"
	"github.com/FranksOps/vantage/internal/fingerprint"
	"github.com/FranksOps/vantage/internal/intel"
	"github.com/FranksOps/vantage/internal/metrics"
	"github.com/FranksOps/vantage/internal/report"
	"github.com/FranksOps/vantage/internal/serp"
	"github.com/FranksOps/vantage/internal/storage"
	"github.com/FranksOps/vantage/internal/storage/csvbackend"
	"github.com/FranksOps/vantage/internal/storage/jsonbackend"
	"github.com/FranksOps/vantage/internal/storage/postgres"
	"github.com/FranksOps/vantage/internal/storage/sqlite"
	"github.com/FranksOps/vantage/pkg/ratelimit"
)

var (
	format      string
	outPath     string
	provider    string
	tlsProfile  string
	storeKind   string
	storeDSN    string
	count       int
	concurrency int
	metricsPort int
)

func main() {
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	rootCmd := &cobra.Command{
		Use:   "vantage",
		Short: "Competitive intelligence from search results",
		Long: `Vantage researches company domains through fixed search angles
(positioning, customers, strategic moves, product strategy) and assembles the
findings into an intelligence briefing.`,
	}

	researchCmd := &cobra.Command{
		Use:   "research DOMAIN [DOMAIN...]",
		Short: "Research one or more company domains",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResearch,
	}

	researchCmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or pdf")
	researchCmd.Flags().StringVarP(&outPath, "out", "o", "", "PDF output path (default derived from the domains)")
	researchCmd.Flags().StringVarP(&provider, "provider", "p", "brightdata", "SERP provider: brightdata or direct")
	researchCmd.Flags().StringVar(&tlsProfile, "fingerprint", string(fingerprint.ProfileChrome), "TLS fingerprint for the direct provider: chrome, firefox, safari, go or random")
	researchCmd.Flags().StringVar(&storeKind, "store", "", "archive backend: json, csv, sqlite or postgres")
	researchCmd.Flags().StringVar(&storeDSN, "store-dsn", "", "archive file path or connection string")
	researchCmd.Flags().IntVarP(&count, "count", "n", 0, "results kept per category (default from RESULT_COUNT)")
	researchCmd.Flags().IntVar(&concurrency, "concurrency", 1, "concurrent queries per domain")
	researchCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "expose Prometheus metrics on this port (0 disables)")

	rootCmd.AddCommand(researchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	prov, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	archive, err := buildArchive(ctx)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	if metricsPort > 0 {
		srv := metrics.Start(metricsPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	var limiter *ratelimit.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.NewLimiter(cfg.RequestsPerSecond, cfg.Jitter)
	}

	if count <= 0 {
		count = cfg.ResultCount
	}

	agent, err := intel.New(prov, intel.Config{
		Country:     cfg.Country,
		Language:    cfg.Language,
		Count:       count,
		Concurrency: concurrency,
		Limiter:     limiter,
		Archive:     archive,
	})
	if err != nil {
		return err
	}

	reports, errs := agent.ResearchMany(ctx, args)
	for _, e := range errs {
		slog.Error("domain research failed", "err", e)
	}
	if len(reports) == 0 {
		return fmt.Errorf("no domains researched successfully")
	}

	switch format {
	case "text":
		err = report.WriteText(os.Stdout, reports)
	case "json":
		err = report.WriteJSON(os.Stdout, reports)
	case "pdf":
		path := outPath
		if path == "" {
			path = report.PDFName(reports)
		}
		if err = report.WritePDF(path, reports); err == nil {
			slog.Info("wrote pdf report", "path", path)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d domains failed", len(errs), len(args))
	}
	return nil
}

func buildProvider(cfg config.Config) (serp.Provider, error) {
	extractor := extract.New()

	switch provider {
	case "brightdata":
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return serp.NewClient(serp.ClientConfig{
			APIKey:   cfg.APIKey,
			Zone:     cfg.Zone,
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
		}, extractor)
	case "direct":
		return serp.NewDirect(serp.DirectConfig{
			Timeout:     cfg.Timeout,
			Fingerprint: fingerprint.Profile(tlsProfile),
		}, extractor)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func buildArchive(ctx context.Context) (storage.Backend, error) {
	switch storeKind {
	case "":
		return nil, nil
	case "json":
		return jsonbackend.New(dsnOr("vantage_reports.ndjson"))
	case "csv":
		return csvbackend.New(dsnOr("vantage_reports.csv"))
	case "sqlite":
		return sqlite.New(dsnOr("vantage_reports.db"))
	case "postgres":
		if storeDSN == "" {
			return nil, fmt.Errorf("--store postgres requires --store-dsn")
		}
		return postgres.New(ctx, storeDSN)
	default:
		return nil, fmt.Errorf("unknown store %q", storeKind)
	}
}

func dsnOr(fallback string) string {
	if storeDSN != "" {
		return storeDSN
	}
	return fallback
}
