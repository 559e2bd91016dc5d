// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/osdscan/pkg/report"
	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

type scanOptions struct {
	ConfigFile       string
	Workers          int
	ProbeTimeoutSec  int
	LatencyThreshold int64
	TempThreshold    int64

	NoColor    bool
	NoProgress bool

	ExportCSV    bool
	CSVFile      string
	ExportJSON   bool
	JSONFile     string
	HistoryFile  string
	TextfilePath string

	NatsURL     string
	NatsSubject string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3KeyPrefix string
}

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan controllers, drives and OSDs and report health",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := mergeScanOptionsWithEnv(scanOpts)

		if err := scanner.CheckPreconditions(); err != nil {
			return err
		}

		cfg := scanner.DefaultConfig()
		if opts.ConfigFile != "" {
			loaded, err := scanner.LoadConfig(opts.ConfigFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		applyScanOverrides(&cfg, opts)

		log.Info().
			Int("workers", cfg.ProbeWorkers).
			Dur("probe_timeout", cfg.ProbeTimeout).
			Int64("latency_threshold_ms", cfg.CommitLatencyThresholdMS).
			Int64("temperature_threshold_c", cfg.TemperatureThresholdC).
			Msg("configuration_loaded")

		progressFn := scanner.ProgressFunc(nil)
		if !opts.NoProgress {
			progressFn = newProgressSink()
		}

		s := scanner.New(cfg, scanner.NewProber(cfg))
		result, err := s.Scan(cmd.Context(), progressFn)
		if err != nil {
			return err
		}

		if err := report.NewTableWriter(os.Stdout, opts.NoColor).Write(result); err != nil {
			return err
		}

		return exportScan(cmd.Context(), opts, result)
	},
}

// exportScan runs the optional sinks. Each failure is reported but does
// not suppress the remaining sinks; the first error wins.
func exportScan(ctx context.Context, opts scanOptions, result *scanner.ScanResult) error {
	var firstErr error
	keep := func(err error) {
		if err != nil {
			log.Error().Err(err).Msg("export failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if opts.ExportCSV || opts.CSVFile != "" {
		file, err := report.ExportCSV(opts.CSVFile, result)
		keep(err)
		if err == nil {
			fmt.Fprintf(os.Stderr, "CSV report written to %s\n", file)
		}
	}

	if opts.ExportJSON || opts.JSONFile != "" {
		file, err := report.ExportJSON(opts.JSONFile, result)
		keep(err)
		if err == nil {
			fmt.Fprintf(os.Stderr, "JSON report written to %s\n", file)
		}
	}

	if opts.HistoryFile != "" {
		keep(report.AppendHistory(opts.HistoryFile, result))
	}

	if opts.TextfilePath != "" {
		keep(report.WriteTextfileMetrics(opts.TextfilePath, result))
	}

	if opts.NatsURL != "" {
		keep(report.PublishHealthEvents(opts.NatsURL, opts.NatsSubject, result))
	}

	if opts.S3Bucket != "" {
		keep(report.UploadJSON(ctx, report.S3Config{
			Endpoint:  opts.S3Endpoint,
			Region:    opts.S3Region,
			Bucket:    opts.S3Bucket,
			AccessKey: opts.S3AccessKey,
			SecretKey: opts.S3SecretKey,
			KeyPrefix: opts.S3KeyPrefix,
		}, result))
	}

	return firstErr
}

func mergeScanOptionsWithEnv(opts scanOptions) scanOptions {
	opts.ConfigFile = getEnv("OSDSCAN_CONFIG", opts.ConfigFile)
	opts.Workers = getEnvInt("OSDSCAN_WORKERS", opts.Workers)
	opts.ProbeTimeoutSec = getEnvInt("OSDSCAN_PROBE_TIMEOUT", opts.ProbeTimeoutSec)
	opts.LatencyThreshold = getEnvInt64("OSDSCAN_LATENCY_THRESHOLD_MS", opts.LatencyThreshold)
	opts.TempThreshold = getEnvInt64("OSDSCAN_TEMPERATURE_THRESHOLD_C", opts.TempThreshold)
	opts.NoColor = getEnvBool("NO_COLOR", opts.NoColor)
	opts.HistoryFile = getEnv("OSDSCAN_HISTORY_FILE", opts.HistoryFile)
	opts.TextfilePath = getEnv("OSDSCAN_TEXTFILE_PATH", opts.TextfilePath)
	opts.NatsURL = getEnv("NATS_URL", opts.NatsURL)
	opts.NatsSubject = getEnv("NATS_SUBJECT", opts.NatsSubject)
	opts.S3Endpoint = getEnv("S3_ENDPOINT", opts.S3Endpoint)
	opts.S3Region = getEnv("S3_REGION", opts.S3Region)
	opts.S3Bucket = getEnv("S3_BUCKET", opts.S3Bucket)
	opts.S3AccessKey = getEnv("S3_ACCESS_KEY", opts.S3AccessKey)
	opts.S3SecretKey = getEnv("S3_SECRET_KEY", opts.S3SecretKey)
	opts.S3KeyPrefix = getEnv("S3_KEY_PREFIX", opts.S3KeyPrefix)
	return opts
}

// applyScanOverrides layers non-zero flag values over the loaded config.
func applyScanOverrides(cfg *scanner.Config, opts scanOptions) {
	if opts.Workers > 0 {
		cfg.ProbeWorkers = opts.Workers
	}
	if opts.ProbeTimeoutSec > 0 {
		cfg.ProbeTimeout = time.Duration(opts.ProbeTimeoutSec) * time.Second
	}
	if opts.LatencyThreshold > 0 {
		cfg.CommitLatencyThresholdMS = opts.LatencyThreshold
	}
	if opts.TempThreshold > 0 {
		cfg.TemperatureThresholdC = opts.TempThreshold
	}
}

// newProgressSink adapts the enumerator's progress callback to a terminal
// progress bar on stderr. The bar is created once the total is known and
// recreated if a later stage reports a different total.
func newProgressSink() scanner.ProgressFunc {
	var bar *progressbar.ProgressBar
	barTotal := -1

	return func(current, total int, message string) {
		if total <= 0 {
			return
		}
		if bar == nil || total != barTotal {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			barTotal = total
		}
		bar.Describe(message)
		_ = bar.Set(current)
	}
}

func init() {
	scanCmd.Flags().StringVar(&scanOpts.ConfigFile, "config", "", "Path to YAML config file with scan tuning")
	scanCmd.Flags().IntVar(&scanOpts.Workers, "workers", 0, "Concurrent SMART probes per controller (0 = default)")
	scanCmd.Flags().IntVar(&scanOpts.ProbeTimeoutSec, "probe-timeout", 0, "Per-command timeout in seconds (0 = default)")
	scanCmd.Flags().Int64Var(&scanOpts.LatencyThreshold, "latency-threshold", 0, "Commit latency alert threshold in ms (0 = default)")
	scanCmd.Flags().Int64Var(&scanOpts.TempThreshold, "temperature-threshold", 0, "Drive temperature alert threshold in C (0 = default)")
	scanCmd.Flags().BoolVar(&scanOpts.NoColor, "no-color", false, "Disable colored output")
	scanCmd.Flags().BoolVar(&scanOpts.NoProgress, "no-progress", false, "Disable the progress bar")

	scanCmd.Flags().BoolVar(&scanOpts.ExportCSV, "export-csv", false, "Export the report as CSV (timestamped filename)")
	scanCmd.Flags().StringVar(&scanOpts.CSVFile, "csv-file", "", "CSV export filename (implies --export-csv)")
	scanCmd.Flags().BoolVar(&scanOpts.ExportJSON, "export-json", false, "Export the report as JSON (timestamped filename)")
	scanCmd.Flags().StringVar(&scanOpts.JSONFile, "json-file", "", "JSON export filename (implies --export-json)")
	scanCmd.Flags().StringVar(&scanOpts.HistoryFile, "history-file", "", "Append the scan to this CSV history file")
	scanCmd.Flags().StringVar(&scanOpts.TextfilePath, "prom-textfile", "", "Write Prometheus textfile-collector metrics to this path")

	scanCmd.Flags().StringVar(&scanOpts.NatsURL, "nats-url", "", "Publish health events to this NATS server")
	scanCmd.Flags().StringVar(&scanOpts.NatsSubject, "nats-subject", "osd.scan.health", "NATS subject for health events")

	scanCmd.Flags().StringVar(&scanOpts.S3Endpoint, "s3-endpoint", "", "S3-compatible endpoint for report upload")
	scanCmd.Flags().StringVar(&scanOpts.S3Region, "s3-region", "", "S3 region")
	scanCmd.Flags().StringVar(&scanOpts.S3Bucket, "s3-bucket", "", "Upload the JSON report to this bucket")
	scanCmd.Flags().StringVar(&scanOpts.S3AccessKey, "s3-access-key", "", "S3 access key")
	scanCmd.Flags().StringVar(&scanOpts.S3SecretKey, "s3-secret-key", "", "S3 secret key")
	scanCmd.Flags().StringVar(&scanOpts.S3KeyPrefix, "s3-prefix", "osdscan", "Object key prefix for uploaded reports")
}
