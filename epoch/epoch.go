// Package epoch aligns continuous multichannel signals with epoch-level
// stage labels and packages them for modeling: slice into fixed-duration
// epochs, standardize per channel, group into fixed-length sequences. All
// operations are pure; alignment shortfalls surface as nil results rather
// than errors.
package epoch

import (
	"fmt"
	"math"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// Signal is a continuous multichannel waveform at a uniform sampling rate,
// stored row-major: channel c occupies Data[c*Samples : (c+1)*Samples].
type Signal struct {
	Data     []float64
	Channels int
	Samples  int
}

// NewSignalFromRows stacks per-channel sample slices into a Signal. All
// rows must be non-empty and equally long.
func NewSignalFromRows(rows [][]float64) (*Signal, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no channels to stack")
	}
	samples := len(rows[0])
	if samples == 0 {
		return nil, fmt.Errorf("channel 0 is empty")
	}
	for i, row := range rows {
		if len(row) != samples {
			return nil, fmt.Errorf("channel %d has %d samples, want %d", i, len(row), samples)
		}
	}

	s := &Signal{
		Data:     make([]float64, len(rows)*samples),
		Channels: len(rows),
		Samples:  samples,
	}
	for i, row := range rows {
		copy(s.Data[i*samples:], row)
	}
	return s, nil
}

// Row returns the samples of one channel, backed by the signal's storage.
func (s *Signal) Row(c int) []float64 {
	return s.Data[c*s.Samples : (c+1)*s.Samples]
}

// Epochs is an epoch tensor of shape (N, C, T): N epochs, C channels,
// T samples per epoch, stored row-major in that order.
type Epochs struct {
	Data    []float64
	N, C, T int
}

// At returns the sample at (epoch n, channel c, offset t).
func (e *Epochs) At(n, c, t int) float64 {
	return e.Data[(n*e.C+c)*e.T+t]
}

// Sequences is a sequence tensor of shape (S, L, C, T): S sequences of L
// epochs each, stored row-major.
type Sequences struct {
	Data       []float64
	S, L, C, T int
}

// At returns the sample at (sequence s, position l, channel c, offset t).
func (q *Sequences) At(s, l, c, t int) float64 {
	return q.Data[((s*q.L+l)*q.C+c)*q.T+t]
}

// Sequence returns the flat data of one sequence, backed by the tensor's
// storage, in (L, C, T) order.
func (q *Sequences) Sequence(s int) []float64 {
	size := q.L * q.C * q.T
	return q.Data[s*size : (s+1)*size]
}

// Slice cuts a continuous signal into fixed-duration epochs aligned with
// the label sequence. The signal is truncated to whole epochs; when fewer
// labels than epochs exist the epoch count shrinks to match, and surplus
// labels are truncated. A zero usable epoch count yields (nil, nil).
// Epochs carrying Unknown labels are kept; filtering them is a downstream
// choice.
func Slice(sig *Signal, labels []stage.Stage, sampleRate, epochSeconds int) (*Epochs, []stage.Stage) {
	if sig == nil || sampleRate <= 0 || epochSeconds <= 0 {
		return nil, nil
	}

	spe := sampleRate * epochSeconds
	n := sig.Samples / spe
	if len(labels) < n {
		n = len(labels)
	}
	if n == 0 {
		return nil, nil
	}

	e := &Epochs{
		Data: make([]float64, n*sig.Channels*spe),
		N:    n,
		C:    sig.Channels,
		T:    spe,
	}
	for c := 0; c < sig.Channels; c++ {
		row := sig.Row(c)
		for i := 0; i < n; i++ {
			copy(e.Data[(i*e.C+c)*e.T:(i*e.C+c+1)*e.T], row[i*spe:(i+1)*spe])
		}
	}

	aligned := make([]stage.Stage, n)
	copy(aligned, labels)
	return e, aligned
}

// Standardize z-scores each channel over all epochs and time samples
// jointly and returns a new tensor. A zero-variance channel is centered
// only. Degenerate input passes through unchanged.
func Standardize(e *Epochs) *Epochs {
	if e == nil || e.N == 0 {
		return e
	}

	out := &Epochs{
		Data: make([]float64, len(e.Data)),
		N:    e.N,
		C:    e.C,
		T:    e.T,
	}
	count := float64(e.N * e.T)

	for c := 0; c < e.C; c++ {
		var sum float64
		for n := 0; n < e.N; n++ {
			base := (n*e.C + c) * e.T
			for t := 0; t < e.T; t++ {
				sum += e.Data[base+t]
			}
		}
		mean := sum / count

		var ss float64
		for n := 0; n < e.N; n++ {
			base := (n*e.C + c) * e.T
			for t := 0; t < e.T; t++ {
				d := e.Data[base+t] - mean
				ss += d * d
			}
		}
		std := math.Sqrt(ss / count)
		if std == 0 {
			std = 1
		}

		for n := 0; n < e.N; n++ {
			base := (n*e.C + c) * e.T
			for t := 0; t < e.T; t++ {
				out.Data[base+t] = (e.Data[base+t] - mean) / std
			}
		}
	}
	return out
}

// Package groups epochs into non-overlapping sequences of seqLen epochs
// with parallel label sequences. Trailing epochs that do not fill a whole
// sequence are discarded, never padded; zero full sequences yields
// (nil, nil).
func Package(e *Epochs, labels []stage.Stage, seqLen int) (*Sequences, [][]stage.Stage) {
	if e == nil || seqLen <= 0 {
		return nil, nil
	}

	nSeq := e.N / seqLen
	if nSeq == 0 {
		return nil, nil
	}
	used := nSeq * seqLen
	if len(labels) < used {
		return nil, nil
	}

	q := &Sequences{
		Data: make([]float64, used*e.C*e.T),
		S:    nSeq,
		L:    seqLen,
		C:    e.C,
		T:    e.T,
	}
	copy(q.Data, e.Data[:used*e.C*e.T])

	labelSeqs := make([][]stage.Stage, nSeq)
	for i := range labelSeqs {
		seq := make([]stage.Stage, seqLen)
		copy(seq, labels[i*seqLen:(i+1)*seqLen])
		labelSeqs[i] = seq
	}
	return q, labelSeqs
}
