// Package pipeline orchestrates the batch conversion of raw PSG recordings
// into packaged sequence tensors: scan and pair files, acquire signals,
// resolve channels, condition each channel, decode annotations, epoch and
// package, persist, and optionally export hypnograms. Subjects are
// independent; any per-subject failure is a skip with a diagnostic, never
// an aborted batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
	"github.com/XingXingYuoos/sleep-kit-project/config"
	"github.com/XingXingYuoos/sleep-kit-project/dataset"
	"github.com/XingXingYuoos/sleep-kit-project/epoch"
	"github.com/XingXingYuoos/sleep-kit-project/psg"
	"github.com/XingXingYuoos/sleep-kit-project/sigproc"
	"github.com/XingXingYuoos/sleep-kit-project/stage"
	"github.com/XingXingYuoos/sleep-kit-project/store"
)

// Source loads one recording from disk. The default implementation reads
// EDF containers; tests substitute synthetic recordings.
type Source interface {
	Load(path string) (*psg.Recording, error)
}

// edfSource is the production Source.
type edfSource struct{}

func (edfSource) Load(path string) (*psg.Recording, error) {
	return psg.Load(path)
}

// Exporter publishes a decoded hypnogram. Optional.
type Exporter interface {
	Export(dataset, subject string, start time.Time, stages []stage.Stage) error
}

// Options configures a Runner. Dataset, DataRoot, Config, and Writer are
// required; everything else has a default.
type Options struct {
	// Dataset is the rule-table identifier of the dataset to process.
	Dataset string

	// DataRoot is the directory scanned recursively for recordings.
	DataRoot string

	// AnnoRoot is the directory scanned for annotation files; defaults to
	// DataRoot.
	AnnoRoot string

	// Rules is the dataset rule table; defaults to the built-in table.
	Rules dataset.Table

	// Config carries the processing parameters.
	Config *config.Config

	// Writer persists packaged sequences.
	Writer *store.Writer

	// Source acquires recordings; defaults to the EDF loader.
	Source Source

	// Registry decodes annotations; defaults to the built-in registry.
	Registry *annotation.Registry

	// Exporter, when set, publishes each subject's hypnogram.
	Exporter Exporter

	// Metrics, when set, receives batch progress counters.
	Metrics *Metrics

	// Logger for per-subject diagnostics; nil falls back to the default.
	Logger *slog.Logger
}

// Runner processes one dataset batch.
type Runner struct {
	name     string
	rule     dataset.Rule
	cfg      *config.Config
	writer   *store.Writer
	source   Source
	registry *annotation.Registry
	exporter Exporter
	metrics  *Metrics
	logger   *slog.Logger

	dataRoot string
	annoRoot string
}

// Summary aggregates one batch run.
type Summary struct {
	// RunID identifies the batch in logs and diagnostics.
	RunID string

	// Subjects is the number of recordings found.
	Subjects int

	// Processed is the number of subjects written to completion.
	Processed int

	// Skipped is the number of subjects dropped for any reason.
	Skipped int

	// Sequences is the total number of sequences written.
	Sequences int
}

// New creates a Runner. An unknown dataset identifier is a hard
// configuration error.
func New(opts Options) (*Runner, error) {
	if opts.Dataset == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	if opts.DataRoot == "" {
		return nil, fmt.Errorf("data root is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("writer is required")
	}

	rules := opts.Rules
	if rules == nil {
		rules = dataset.Builtin()
	}
	rule, err := rules.Lookup(opts.Dataset)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		name:     opts.Dataset,
		rule:     rule,
		cfg:      opts.Config,
		writer:   opts.Writer,
		source:   opts.Source,
		registry: opts.Registry,
		exporter: opts.Exporter,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		dataRoot: opts.DataRoot,
		annoRoot: opts.AnnoRoot,
	}
	if r.source == nil {
		r.source = edfSource{}
	}
	if r.registry == nil {
		r.registry = annotation.DefaultRegistry
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.annoRoot == "" {
		r.annoRoot = r.dataRoot
	}
	return r, nil
}

// Run scans for recordings, pairs them with annotations, and processes
// every subject through a pool of workers. Per-subject failures are
// skipped and counted; only setup problems (output layout, scanning)
// return an error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if err := r.writer.EnsureLayout(r.name, r.cfg.Output.Overwrite); err != nil {
		return nil, err
	}

	psgFiles, err := Scan(r.dataRoot, r.rule.PSGExt)
	if err != nil {
		return nil, err
	}
	annoFiles, err := Scan(r.annoRoot, r.rule.AnnoExt)
	if err != nil {
		return nil, err
	}
	subjects := Pair(psgFiles, annoFiles)

	summary := &Summary{
		RunID:    uuid.NewString(),
		Subjects: len(psgFiles),
	}
	r.logger.Info("batch started",
		"run_id", summary.RunID,
		"dataset", r.name,
		"recordings", len(psgFiles),
		"annotations", len(annoFiles),
		"paired", len(subjects))

	unpaired := len(psgFiles) - len(subjects)
	summary.Skipped += unpaired
	if r.metrics != nil && unpaired > 0 {
		r.metrics.SubjectsSkipped.Add(float64(unpaired))
	}

	workers := r.cfg.Process.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan Subject)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				n, err := r.processSubject(sub)
				mu.Lock()
				if err != nil {
					summary.Skipped++
				} else {
					summary.Processed++
					summary.Sequences += n
				}
				mu.Unlock()

				if err != nil {
					r.logger.Warn("subject skipped", "subject", sub.Stem, "reason", err)
					if r.metrics != nil {
						r.metrics.SubjectsSkipped.Inc()
					}
				} else {
					r.logger.Debug("subject processed", "subject", sub.Stem, "sequences", n)
					if r.metrics != nil {
						r.metrics.SubjectsProcessed.Inc()
						r.metrics.SequencesWritten.Add(float64(n))
					}
				}
			}
		}()
	}

feed:
	for _, sub := range subjects {
		select {
		case jobs <- sub:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	r.logger.Info("batch finished",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"sequences", summary.Sequences)
	return summary, nil
}

// referenceRole picks the reference electrode for a target role: the
// contralateral mastoid for EEG positions, M2 for the EOG leads, and none
// for EMG roles.
func referenceRole(role channel.Role) channel.Role {
	switch role {
	case channel.F4, channel.C4, channel.O2:
		return channel.M1
	case channel.F3, channel.C3, channel.O1:
		return channel.M2
	}
	if role.IsEMG() {
		return ""
	}
	return channel.M2
}

// band returns the band-pass range for a role from the configured filter
// settings.
func (r *Runner) band(role channel.Role) sigproc.Band {
	cut := r.cfg.Process.Filter.EEG
	if role.IsEMG() {
		cut = r.cfg.Process.Filter.EMG
	}
	return sigproc.Band{Low: cut[0], High: cut[1]}
}

// processSubject runs one subject end to end and returns the number of
// sequences written. Every failure mode is an error the caller records as
// a skip.
func (r *Runner) processSubject(sub Subject) (int, error) {
	if r.rule.Format == "" {
		return 0, fmt.Errorf("dataset %s has no annotation reader", r.name)
	}

	rec, err := r.source.Load(sub.PSGPath)
	if err != nil {
		return 0, fmt.Errorf("load recording: %w", err)
	}

	stages, err := r.registry.Decode(sub.AnnoPath, r.rule.Format)
	if err != nil {
		return 0, fmt.Errorf("decode annotation: %w", err)
	}
	if len(stages) == 0 {
		return 0, fmt.Errorf("annotation %s decoded to an empty stage sequence", sub.AnnoPath)
	}

	resolved := channel.Resolve(rec.Names(), r.rule.Aliases)

	rows := make([][]float64, 0, len(r.cfg.Process.Channels))
	for _, name := range r.cfg.Process.Channels {
		role := channel.Role(name)
		raw, ok := resolved[role]
		if !ok {
			return 0, fmt.Errorf("channel %s not resolved among %v", role, rec.Names())
		}

		refRaw := ""
		if ref := referenceRole(role); ref != "" {
			refRaw = resolved[ref]
		}

		sig, err := sigproc.Process(rec, raw, refRaw, r.band(role),
			r.cfg.Process.Filter.Notch, r.cfg.Process.SampleRate)
		if err != nil {
			return 0, fmt.Errorf("process channel %s: %w", role, err)
		}
		rows = append(rows, sig)
	}

	signal, err := epoch.NewSignalFromRows(rows)
	if err != nil {
		return 0, fmt.Errorf("stack channels: %w", err)
	}

	epochs, labels := epoch.Slice(signal, stages, r.cfg.Process.SampleRate, r.cfg.Process.EpochSeconds)
	if epochs == nil {
		return 0, fmt.Errorf("no usable epochs after alignment")
	}
	if r.cfg.Process.Standardize {
		epochs = epoch.Standardize(epochs)
	}

	seqs, seqLabels := epoch.Package(epochs, labels, r.cfg.Process.SeqLen)
	if seqs == nil {
		return 0, fmt.Errorf("fewer than one full sequence (%d epochs, sequence length %d)",
			epochs.N, r.cfg.Process.SeqLen)
	}

	subject := store.SubjectKey(sub.PSGPath)
	n, err := r.writer.WriteSubject(r.name, subject, seqs, seqLabels)
	if err != nil {
		return n, fmt.Errorf("persist sequences: %w", err)
	}

	if r.exporter != nil {
		if err := r.exporter.Export(r.name, subject, rec.StartTime, stages); err != nil {
			// Export is advisory; the subject's tensors are already on disk.
			r.logger.Warn("hypnogram export failed", "subject", subject, "error", err)
		}
	}
	return n, nil
}
