package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	corecfg "github.com/sentio-lab/sentio/internal/core/config"
	"github.com/sentio-lab/sentio/internal/core/sentiment"
	"github.com/sentio-lab/sentio/internal/corpus"
	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/ingestion"
	"github.com/sentio-lab/sentio/internal/projection"
	"github.com/sentio-lab/sentio/internal/report"
	"github.com/sentio-lab/sentio/internal/server"
	"github.com/sentio-lab/sentio/internal/text"
)

var cfg *corecfg.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentio",
	Short: "Comment sentiment ingestion and aggregation engine",
	Long: `Sentio ingests comment corpora from CSV, classifies each comment,
aggregates sentiment distributions and term frequencies, and exports
deterministic reports in text, CSV and JSON formats.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		slog.SetDefault(logger)

		configPath, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = corecfg.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// pipeline bundles the components shared by serve and analyze.
type pipeline struct {
	reader    *corpus.Reader
	ingestor  *ingestion.Service
	projector *projection.Service
	agg       *engine.Engine
}

func buildPipeline(cfg *corecfg.Config) (*pipeline, error) {
	classifier, err := buildClassifier(cfg)
	if err != nil {
		return nil, err
	}

	granularity, err := engine.ParseGranularity(cfg.Analysis.Granularity)
	if err != nil {
		return nil, err
	}

	agg := engine.New(engine.Options{
		Granularity:       granularity,
		TopTerms:          cfg.Analysis.TopTerms,
		RetainRaw:         cfg.Ingestion.RetainRaw,
		RetentionCapacity: cfg.Ingestion.RetentionCapacity,
	})

	extractor := text.NewExtractor(cfg.Analysis.ExtraStopwords)
	reader := corpus.NewReader(cfg.Ingestion.MaxRows, cfg.Ingestion.MaxBytes)

	ingestor := ingestion.NewService(
		reader,
		classifier,
		extractor,
		agg,
		cfg.Ingestion.WorkerCount,
		cfg.Server.MaxBodySizeMB,
	)
	projector := projection.NewService(
		agg,
		report.NewBuilder(),
		text.NewSummarizer(extractor),
		cfg.Analysis.SummarySentences,
		cfg.Metrics.ModelMetrics(),
	)

	return &pipeline{
		reader:    reader,
		ingestor:  ingestor,
		projector: projector,
		agg:       agg,
	}, nil
}

func buildClassifier(cfg *corecfg.Config) (sentiment.Classifier, error) {
	lexicon := sentiment.DefaultLexicon()
	if cfg.Analysis.LexiconDir != "" {
		repo, err := sentiment.NewFileSystemLexiconRepository(cfg.Analysis.LexiconDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon directory: %w", err)
		}
		lexicon = repo.Lexicon()
		slog.Info("Loaded lexicon files",
			"dir", cfg.Analysis.LexiconDir,
			"files", len(repo.Files()),
			"entries", len(lexicon),
		)
	}

	base := sentiment.NewLexiconClassifier(lexicon)
	if cfg.Classifier.Type == "remote" {
		slog.Info("Using remote classifier with lexicon fallback",
			"url", cfg.Classifier.RemoteURL,
			"timeout", cfg.Classifier.RemoteTimeout(),
		)
		return sentiment.NewRemoteClassifier(
			cfg.Classifier.RemoteURL,
			cfg.Classifier.RemoteTimeout(),
			base,
		), nil
	}
	return base, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP ingestion and reporting server",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("Loaded config", "config", cfg)

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), p.agg, cfg.Server.Mode)
		p.ingestor.RegisterRoutes(srv.Engine)
		p.projector.RegisterRoutes(srv.Engine)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Signal handler triggers the shutdown sequence below.
		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit
			slog.Info("Signal received, shutting down...")
			cancel()
		}()

		// HTTP server blocks until ctx is cancelled.
		if err := srv.Run(ctx); err != nil {
			slog.Error("Server stopped with error", "error", err)
			return err
		}

		slog.Info("Shutdown complete")
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [csv-file]",
	Short: "Analyze a local CSV corpus and write a report",
	Long: `Run the ingestion pipeline over a local CSV file and write the
resulting report to stdout or to a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportType, _ := cmd.Flags().GetString("type")
		format, _ := cmd.Flags().GetString("format")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		outDir, _ := cmd.Flags().GetString("output")

		spec, err := buildSpec(reportType, format, from, to)
		if err != nil {
			return err
		}

		// Raw-data and insight sections need the retained comment window.
		cfg.Ingestion.RetainRaw = true

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		defer f.Close()

		result, err := p.ingestor.IngestBatch(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		slog.Info("Corpus ingested",
			"accepted", result.Accepted,
			"skipped_empty", result.SkippedEmpty,
			"skipped_malformed", result.SkippedMalformed,
			"degraded", result.Degraded,
		)

		rep, err := p.projector.BuildReport(spec)
		if err != nil {
			return fmt.Errorf("report build failed: %w", err)
		}

		if outDir == "" {
			_, err = os.Stdout.Write(rep.Bytes)
			return err
		}
		path := filepath.Join(outDir, rep.Filename)
		if err := os.WriteFile(path, rep.Bytes, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		slog.Info("Report written", "path", path, "bytes", len(rep.Bytes))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("type", "comprehensive", "report type (comprehensive, summary, data)")
	analyzeCmd.Flags().String("format", "text", "report format (text, csv, json)")
	analyzeCmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	analyzeCmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	analyzeCmd.Flags().String("output", "", "directory to write the report file (default: stdout)")
}

func buildSpec(reportType, format, from, to string) (report.Spec, error) {
	t, err := report.ParseType(reportType)
	if err != nil {
		return report.Spec{}, err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.Spec{}, err
	}

	var r engine.DateRange
	if from != "" {
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return report.Spec{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		r.Start = start
	}
	if to != "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return report.Spec{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		// End of day, inclusive.
		r.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return report.Spec{}, fmt.Errorf("to date precedes from date")
	}

	return report.Spec{
		Type:   t,
		Format: f,
		Range:  r,
		Include: report.IncludeFlags{
			Insights: true,
			TopTerms: true,
			Metrics:  true,
		},
	}, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
