// Command scamdetect classifies messages as Scam, Not Scam or Uncertain.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	scam_detector "gw-interactive.com/finya/scam-detector-cloudfunction"
)

type options struct {
	configPath string
	envFile    string
	model      string
	strategy   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "scamdetect",
		Short: "Classify messages as Scam, Not Scam or Uncertain using an LLM",
		Long: `scamdetect formats a message into a prompt template, sends it to a
text-generation API and validates the JSON verdict it returns.

Settings come from config.yaml, SCAM_DETECTOR_* environment variables and
the flags below. GEMINI_API_KEY or OPENAI_API_KEY must be set.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: $SCAM_DETECTOR_CONFIG or ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading config")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "Model as provider:model, e.g. gemini:gemini-2.5-flash or openai:gpt-5-mini")
	root.PersistentFlags().StringVar(&opts.strategy, "strategy", "", "Prompt strategy: "+strings.Join(scam_detector.SupportedStrategies(), ", "))

	root.AddCommand(newClassifyCmd(opts), newBatchCmd(opts))
	return root
}

func newClassifyCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify [message]",
		Short: "Classify a single message (reads stdin when no argument is given)",
		Example: `  scamdetect classify "Your account is locked, verify at http://bank-secure.example"
  echo "Lunch tomorrow?" | scamdetect classify --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if message == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				message = string(data)
			}

			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			detector, err := scam_detector.NewDetectorFromConfig(cfg, logger)
			if err != nil {
				return err
			}

			output, err := detector.Detect(cmd.Context(), message, opts.strategy)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(output)
			}
			fmt.Fprint(cmd.OutOrStdout(), scam_detector.FormatVerdict(output))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the validated JSON record")
	return cmd
}

func newBatchCmd(opts *options) *cobra.Command {
	var (
		dataset string
		out     string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Classify every message of a CSV dataset, one request at a time",
		Example: `  scamdetect batch --dataset scam_detection_dataset.csv --limit 20
  scamdetect batch --dataset test_scam_dataset.csv --out results.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			path, err := scam_detector.ResolveDatasetPath(dataset, cfg.DatasetRoot)
			if err != nil {
				return err
			}

			records, err := scam_detector.ReadDataset(path, cfg.TextColumnList(), cfg.LabelColumn)
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			detector, err := scam_detector.NewDetectorFromConfig(cfg, logger)
			if err != nil {
				return err
			}

			if out == "" {
				if err := os.MkdirAll(cfg.OutputsDir, 0o755); err != nil {
					return err
				}
				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				out = filepath.Join(cfg.OutputsDir, fmt.Sprintf("%s-%s.jsonl", base, time.Now().UTC().Format("20060102T150405Z")))
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			summary, err := scam_detector.RunBatch(cmd.Context(), detector, records, opts.strategy, f, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Classified %d messages (%d ok, %d failed), results in %s\n",
				summary.Total, summary.Succeeded, summary.Failed, out)
			if summary.Labelled > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Matched expected label: %d/%d\n", summary.Matched, summary.Labelled)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "scam_detection_dataset.csv", "CSV dataset file name or path")
	cmd.Flags().StringVar(&out, "out", "", "Output JSONL file (default: <outputs_dir>/<dataset>-<time>.jsonl)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Classify at most this many records (0 = all)")
	return cmd
}

func setup(opts *options) (*scam_detector.Config, *zap.Logger, error) {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
	}

	cfg, err := scam_detector.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}

	logger, err := scam_detector.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
