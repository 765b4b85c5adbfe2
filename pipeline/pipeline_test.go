package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
	"github.com/XingXingYuoos/sleep-kit-project/config"
	"github.com/XingXingYuoos/sleep-kit-project/dataset"
	"github.com/XingXingYuoos/sleep-kit-project/npy"
	"github.com/XingXingYuoos/sleep-kit-project/psg"
	"github.com/XingXingYuoos/sleep-kit-project/stage"
	"github.com/XingXingYuoos/sleep-kit-project/store"
)

// fakeSource serves synthetic recordings keyed by file stem.
type fakeSource struct {
	recordings map[string]*psg.Recording
}

func (f *fakeSource) Load(path string) (*psg.Recording, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, ok := f.recordings[stem]
	if !ok {
		return nil, fmt.Errorf("no synthetic recording for %s", stem)
	}
	return rec, nil
}

// syntheticRecording builds a two-channel 100 Hz recording spanning the
// given number of 30-second epochs.
func syntheticRecording(epochs int) *psg.Recording {
	n := epochs * 30 * 100
	rec := psg.NewRecording("synthetic.edf", time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC))
	eeg := make([]float64, n)
	eog := make([]float64, n)
	for i := range eeg {
		eeg[i] = 40 * math.Sin(2*math.Pi*10*float64(i)/100)
		eog[i] = 25 * math.Sin(2*math.Pi*2*float64(i)/100)
	}
	rec.AddChannel("EEG F4", 100, eeg)
	rec.AddChannel("EOG(L)", 100, eog)
	return rec
}

func testRules() dataset.Table {
	return dataset.Table{
		"TESTSET": {
			PSGExt:  "edf",
			AnnoExt: "eannot",
			Format:  annotation.FormatEannot,
			Aliases: channel.AliasTable{
				channel.F4: {"EEG F4"},
				channel.E1: {"EOG(L)"},
			},
		},
	}
}

func testConfig(outRoot string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Process.SeqLen = 20
	cfg.Process.Workers = 2
	cfg.Output.Root = outRoot
	return cfg
}

// writeEannot writes one stage token per line.
func writeEannot(t *testing.T, path string, tokens []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(tokens, "\n")+"\n"), 0644))
}

func TestRunEndToEnd(t *testing.T) {
	dataRoot := t.TempDir()
	outRoot := t.TempDir()

	// 41 epochs of signal, 40 labels: alignment truncates to 40 epochs,
	// which pack into exactly 2 sequences of 20.
	touch(t, filepath.Join(dataRoot, "subj1.edf"))
	tokens := make([]string, 40)
	for i := range tokens {
		tokens[i] = "N2"
	}
	writeEannot(t, filepath.Join(dataRoot, "subj1.eannot"), tokens)

	runner, err := New(Options{
		Dataset:  "TESTSET",
		DataRoot: dataRoot,
		Rules:    testRules(),
		Config:   testConfig(outRoot),
		Writer:   store.NewWriter(outRoot),
		Source:   &fakeSource{recordings: map[string]*psg.Recording{"subj1": syntheticRecording(41)}},
		Metrics:  NewMetrics(),
	})
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Subjects)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 2, summary.Sequences)
	assert.NotEmpty(t, summary.RunID)

	// Label tensor carries the decoded stages.
	f, err := os.Open(filepath.Join(outRoot, "TESTSET", "label", "subj1", "subj1-0.npy"))
	require.NoError(t, err)
	defer f.Close()
	values, shape, err := npy.ReadInt64(f)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, shape)
	for _, v := range values {
		assert.Equal(t, int64(stage.N2), v)
	}

	assert.FileExists(t, filepath.Join(outRoot, "TESTSET", "seq", "subj1", "subj1-1.npy"))
	assert.NoFileExists(t, filepath.Join(outRoot, "TESTSET", "seq", "subj1", "subj1-2.npy"))
}

func TestRunSkipAndContinue(t *testing.T) {
	dataRoot := t.TempDir()
	outRoot := t.TempDir()

	tokens := make([]string, 20)
	for i := range tokens {
		tokens[i] = "wake"
	}

	// subj1 is healthy; subj2 has no synthetic recording; subj3 has no
	// annotation file at all.
	touch(t, filepath.Join(dataRoot, "subj1.edf"))
	writeEannot(t, filepath.Join(dataRoot, "subj1.eannot"), tokens)
	touch(t, filepath.Join(dataRoot, "subj2.edf"))
	writeEannot(t, filepath.Join(dataRoot, "subj2.eannot"), tokens)
	touch(t, filepath.Join(dataRoot, "zzz.edf"))

	runner, err := New(Options{
		Dataset:  "TESTSET",
		DataRoot: dataRoot,
		Rules:    testRules(),
		Config:   testConfig(outRoot),
		Writer:   store.NewWriter(outRoot),
		Source:   &fakeSource{recordings: map[string]*psg.Recording{"subj1": syntheticRecording(20)}},
	})
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Subjects)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Sequences)
}

func TestRunTooFewEpochsIsSkip(t *testing.T) {
	dataRoot := t.TempDir()
	outRoot := t.TempDir()

	// 19 labelled epochs cannot fill a 20-epoch sequence.
	touch(t, filepath.Join(dataRoot, "subj1.edf"))
	tokens := make([]string, 19)
	for i := range tokens {
		tokens[i] = "N1"
	}
	writeEannot(t, filepath.Join(dataRoot, "subj1.eannot"), tokens)

	runner, err := New(Options{
		Dataset:  "TESTSET",
		DataRoot: dataRoot,
		Rules:    testRules(),
		Config:   testConfig(outRoot),
		Writer:   store.NewWriter(outRoot),
		Source:   &fakeSource{recordings: map[string]*psg.Recording{"subj1": syntheticRecording(19)}},
	})
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRunExporterReceivesHypnogram(t *testing.T) {
	dataRoot := t.TempDir()
	outRoot := t.TempDir()

	touch(t, filepath.Join(dataRoot, "subj1.edf"))
	tokens := make([]string, 20)
	for i := range tokens {
		tokens[i] = "REM"
	}
	writeEannot(t, filepath.Join(dataRoot, "subj1.eannot"), tokens)

	exp := &captureExporter{}
	runner, err := New(Options{
		Dataset:  "TESTSET",
		DataRoot: dataRoot,
		Rules:    testRules(),
		Config:   testConfig(outRoot),
		Writer:   store.NewWriter(outRoot),
		Source:   &fakeSource{recordings: map[string]*psg.Recording{"subj1": syntheticRecording(20)}},
		Exporter: exp,
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, exp.calls, 1)
	assert.Equal(t, "TESTSET", exp.calls[0].dataset)
	assert.Equal(t, "subj1", exp.calls[0].subject)
	assert.Len(t, exp.calls[0].stages, 20)
	assert.Equal(t, stage.REM, exp.calls[0].stages[0])
}

type exportCall struct {
	dataset string
	subject string
	start   time.Time
	stages  []stage.Stage
}

type captureExporter struct {
	calls []exportCall
}

func (c *captureExporter) Export(dataset, subject string, start time.Time, stages []stage.Stage) error {
	c.calls = append(c.calls, exportCall{dataset, subject, start, stages})
	return nil
}

func TestNewUnknownDataset(t *testing.T) {
	_, err := New(Options{
		Dataset:  "NOPE",
		DataRoot: t.TempDir(),
		Config:   config.DefaultConfig(),
		Writer:   store.NewWriter(t.TempDir()),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrUnknownDataset)
}
