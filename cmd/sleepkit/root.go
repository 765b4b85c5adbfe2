package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/config"
	"github.com/XingXingYuoos/sleep-kit-project/dataset"
	"github.com/XingXingYuoos/sleep-kit-project/export"
	"github.com/XingXingYuoos/sleep-kit-project/pipeline"
	"github.com/XingXingYuoos/sleep-kit-project/store"
)

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "PSG preprocessing toolkit",
		Long: `Sleepkit converts raw polysomnography recordings from heterogeneous
clinical and research datasets into one canonical representation:
fixed-length multichannel epochs grouped into fixed-length sequences,
each epoch tagged with a canonical sleep-stage label.

It handles per-dataset annotation formats, channel-name aliasing,
filtering and resampling, and writes NPY tensors ready for modeling.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(preprocessCmd())
	cmd.AddCommand(datasetsCmd())
	cmd.AddCommand(decodeCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func setupLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func preprocessCmd() *cobra.Command {
	var (
		datasetName string
		dataRoot    string
		annoRoot    string
		outRoot     string
		configPath  string
		rulesPath   string
		channels    string
		rate        int
		seqLen      int
		workers     int
		overwrite   bool
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Convert a dataset of raw PSG recordings into sequence tensors",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(slog.Default())
			cfg, err := loader.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Flags override file configuration when set.
			if cmd.Flags().Changed("channels") {
				cfg.Process.Channels = strings.Split(channels, ",")
				cfg.NormalizeChannels()
			}
			if cmd.Flags().Changed("rate") {
				cfg.Process.SampleRate = rate
			}
			if cmd.Flags().Changed("seq-len") {
				cfg.Process.SeqLen = seqLen
			}
			if cmd.Flags().Changed("workers") {
				cfg.Process.Workers = workers
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Root = outRoot
			}
			if cmd.Flags().Changed("overwrite") {
				cfg.Output.Overwrite = overwrite
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			rules, err := dataset.LoadRules(rulesPath)
			if err != nil {
				return fmt.Errorf("load dataset rules: %w", err)
			}

			var exporter pipeline.Exporter
			if cfg.Influx.Enabled() {
				writer := export.NewInfluxWriter(cfg.Influx)
				defer writer.Close()
				exporter = export.NewHypnogramExporter(writer.Sink(), cfg.Influx.Measurement, cfg.Process.EpochSeconds)
				slog.Info("Hypnogram export enabled", "url", cfg.Influx.URL, "bucket", cfg.Influx.Bucket)
			}

			var metrics *pipeline.Metrics
			if metricsAddr != "" {
				metrics = pipeline.NewMetrics()
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				go func() {
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						slog.Error("Metrics endpoint failed", "addr", metricsAddr, "error", err)
					}
				}()
				slog.Info("Metrics endpoint started", "addr", metricsAddr)
			}

			runner, err := pipeline.New(pipeline.Options{
				Dataset:  datasetName,
				DataRoot: dataRoot,
				AnnoRoot: annoRoot,
				Rules:    rules,
				Config:   cfg,
				Writer:   store.NewWriter(cfg.Output.Root),
				Exporter: exporter,
				Metrics:  metrics,
				Logger:   slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Processed %s of %s subjects (%s skipped), %s sequences written\n",
				humanize.Comma(int64(summary.Processed)),
				humanize.Comma(int64(summary.Subjects)),
				humanize.Comma(int64(summary.Skipped)),
				humanize.Comma(int64(summary.Sequences)))

			if watch {
				watcher, err := pipeline.NewWatcher(runner, 0)
				if err != nil {
					return fmt.Errorf("create watcher: %w", err)
				}
				if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetName, "dataset", "", "Dataset name in the rule table (e.g. SHHS1)")
	cmd.Flags().StringVar(&dataRoot, "data", "", "Root directory of raw recordings")
	cmd.Flags().StringVar(&annoRoot, "anno", "", "Root directory of annotation files (defaults to --data)")
	cmd.Flags().StringVar(&outRoot, "out", "", "Output directory for processed tensors")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Dataset rule overlay file (YAML)")
	cmd.Flags().StringVar(&channels, "channels", "F4,E1", "Comma-separated canonical channels to extract")
	cmd.Flags().IntVar(&rate, "rate", 100, "Target sampling rate in Hz")
	cmd.Flags().IntVar(&seqLen, "seq-len", 20, "Epochs per packaged sequence")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent subject workers")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow reuse of an existing output directory")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the data root for new recordings")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func datasetsCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the configured dataset rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := dataset.LoadRules(rulesPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET\tPSG\tANNOTATION\tFORMAT\tCHANNELS")
			for _, name := range rules.Names() {
				rule := rules[name]
				format := string(rule.Format)
				if format == "" {
					format = "(none)"
				}
				mode := "alias table"
				switch {
				case rule.Aliases == nil:
					mode = "heuristic"
				case len(rule.Aliases) == 0:
					mode = "bare names"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, rule.PSGExt, rule.AnnoExt, format, mode)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "Dataset rule overlay file (YAML)")
	return cmd
}

func decodeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Decode one annotation file and print the stage sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := annotation.Decode(args[0], annotation.Format(format))
			if err != nil {
				return err
			}
			if len(stages) == 0 {
				return fmt.Errorf("no stages decoded from %s", args[0])
			}

			for i, s := range stages {
				fmt.Printf("%d\t%s\n", i, s)
			}
			fmt.Fprintf(os.Stderr, "%s epochs decoded\n", humanize.Comma(int64(len(stages))))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Annotation format selector (see 'sleepkit datasets')")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}
