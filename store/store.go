// Package store persists packaged sequences and their labels as NPY files,
// keyed by dataset, subject, and sequence index:
//
//	<root>/<dataset>/seq/<subject>/<subject>-<i>.npy    float32 (L, C, T)
//	<root>/<dataset>/label/<subject>/<subject>-<i>.npy  int64   (L,)
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/epoch"
	"github.com/XingXingYuoos/sleep-kit-project/npy"
	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// Writer writes processed tensors under a fixed output root.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at root.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// SubjectKey derives the on-disk subject identifier from a recording path:
// the file stem with dots replaced by underscores, so versioned stems like
// "subj.2" stay single path elements.
func SubjectKey(psgPath string) string {
	stem := filepath.Base(psgPath)
	if ext := filepath.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}
	return strings.ReplaceAll(stem, ".", "_")
}

// DatasetDir returns the output directory of one dataset.
func (w *Writer) DatasetDir(dataset string) string {
	return filepath.Join(w.root, dataset)
}

// EnsureLayout creates the seq/ and label/ directories for a dataset. When
// the dataset directory already exists and overwrite is false, it reports
// an error so existing output is never silently mixed with new runs.
func (w *Writer) EnsureLayout(dataset string, overwrite bool) error {
	dir := w.DatasetDir(dataset)
	if !overwrite {
		if _, err := os.Stat(dir); err == nil {
			return fmt.Errorf("output directory %s already exists (use overwrite)", dir)
		}
	}
	for _, sub := range []string{"seq", "label"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

// WriteSubject writes every sequence of one subject and returns the number
// written. Sequences go out as float32 in (L, C, T) order, labels as int64
// vectors of length L.
func (w *Writer) WriteSubject(dataset, subject string, seqs *epoch.Sequences, labels [][]stage.Stage) (int, error) {
	if seqs == nil || seqs.S == 0 {
		return 0, nil
	}
	if len(labels) != seqs.S {
		return 0, fmt.Errorf("label count %d does not match sequence count %d", len(labels), seqs.S)
	}

	seqDir := filepath.Join(w.DatasetDir(dataset), "seq", subject)
	lblDir := filepath.Join(w.DatasetDir(dataset), "label", subject)
	for _, dir := range []string{seqDir, lblDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create subject directory: %w", err)
		}
	}

	shape := []int{seqs.L, seqs.C, seqs.T}
	for i := 0; i < seqs.S; i++ {
		name := fmt.Sprintf("%s-%d.npy", subject, i)

		flat := seqs.Sequence(i)
		data := make([]float32, len(flat))
		for j, v := range flat {
			data[j] = float32(v)
		}
		if err := writeNPY(filepath.Join(seqDir, name), func(f *os.File) error {
			return npy.WriteFloat32(f, shape, data)
		}); err != nil {
			return i, err
		}

		lbl := make([]int64, len(labels[i]))
		for j, s := range labels[i] {
			lbl[j] = int64(s)
		}
		if err := writeNPY(filepath.Join(lblDir, name), func(f *os.File) error {
			return npy.WriteInt64(f, []int{len(lbl)}, lbl)
		}); err != nil {
			return i, err
		}
	}
	return seqs.S, nil
}

func writeNPY(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
