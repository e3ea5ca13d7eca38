package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/internal/logger"
	"github.com/02loveslollipop/patient-health-monitor/services/reporter/internal/client"
	"github.com/02loveslollipop/patient-health-monitor/services/reporter/internal/config"
	"github.com/02loveslollipop/patient-health-monitor/services/reporter/internal/report"
)

type runOptions struct {
	date    string
	outDir  string
	genders []string
	dryRun  bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "reporter",
		Short:         "Daily patient health report generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "reporter failed: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch one day's analysis and write the xlsx report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				opts.outDir = cfg.OutputDir
			}
			if !cmd.Flags().Changed("dry-run") {
				opts.dryRun = cfg.DryRun
			}

			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "health-reporter")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return run(cmd.Context(), cfg, opts, log)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "analysis date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (REPORT_OUTPUT_DIR)")
	cmd.Flags().StringSliceVar(&opts.genders, "gender", nil, "restrict to these genders")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log rows instead of writing the report (DRY_RUN)")
	return cmd
}

func run(ctx context.Context, cfg config.Config, opts runOptions, log *zap.Logger) error {
	date := opts.date
	if date == "" {
		date = time.Now().In(cfg.Location).Format(analysis.DateLayout)
	} else if _, err := time.Parse(analysis.DateLayout, date); err != nil {
		return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout+10*time.Second)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	res, err := client.FetchAnalysis(ctx, httpClient, cfg.APIBaseURL, date, opts.genders)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Error("api store unavailable, no report written", zap.String("date", date), zap.Error(err))
		}
		return err
	}
	log.Info("fetched analysis",
		zap.String("run_id", res.RunID),
		zap.String("date", res.Date),
		zap.Int("patients", len(res.Rows)),
		zap.Int("critical", res.Summary.Critical.Count),
	)
	if res.Diagnostic != nil {
		log.Warn("analysis diagnostic", zap.String("code", res.Diagnostic.Code), zap.String("message", res.Diagnostic.Message))
	}

	if opts.dryRun {
		for _, row := range res.Rows {
			log.Info("dry-run: " + report.PatientLine(row))
		}
		log.Info("dry-run: skipping report write", zap.Int("rows", len(res.Rows)))
		return nil
	}

	path, err := report.WriteWorkbook(res, opts.outDir)
	if err != nil {
		return err
	}
	log.Info("report written", zap.String("path", path), zap.Int("rows", len(res.Rows)))
	return nil
}
