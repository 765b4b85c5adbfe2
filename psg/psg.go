// Package psg acquires raw polysomnography recordings. It exposes, per
// recording, the trimmed channel labels, per-channel sample arrays, and
// per-channel sampling rates derived from the container's record geometry.
// Only EDF containers are supported; acquisition failure is always an
// absence, never a partial recording.
package psg

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/ishiikurisu/edf"
)

var (
	// ErrUnsupportedContainer reports a recording file the loader cannot
	// decode, such as the HDF5 and MAT dumps some datasets ship.
	ErrUnsupportedContainer = errors.New("unsupported recording container")

	// ErrMalformedRecording reports an EDF file whose structure could not
	// be read.
	ErrMalformedRecording = errors.New("malformed recording")
)

// startTimeLayout matches the EDF header's startdate and starttime fields.
const startTimeLayout = "02.01.06 15.04.05"

// Recording is one loaded PSG recording: named channels over a common
// duration, each at its own sampling rate.
type Recording struct {
	// Path is the source file the recording was loaded from.
	Path string

	// StartTime is the acquisition start from the EDF header; zero when
	// the header carried no parseable date.
	StartTime time.Time

	names []string
	rates map[string]int
	data  map[string][]float64
}

// NewRecording builds an empty recording. It exists for collaborators that
// synthesize recordings, such as tests and non-EDF loaders.
func NewRecording(path string, start time.Time) *Recording {
	return &Recording{
		Path:      path,
		StartTime: start,
		rates:     make(map[string]int),
		data:      make(map[string][]float64),
	}
}

// AddChannel appends one channel's samples at the given rate. Channel order
// is preserved.
func (r *Recording) AddChannel(name string, rate int, samples []float64) {
	r.names = append(r.names, name)
	r.rates[name] = rate
	r.data[name] = samples
}

// Names returns the channel labels in file order.
func (r *Recording) Names() []string {
	return r.names
}

// SampleRate returns the sampling rate of a channel in Hz.
func (r *Recording) SampleRate(name string) (int, bool) {
	rate, ok := r.rates[name]
	return rate, ok
}

// Data returns the samples of a channel.
func (r *Recording) Data(name string) ([]float64, bool) {
	samples, ok := r.data[name]
	return samples, ok
}

// Load reads an EDF recording from path. Any structural problem surfaces
// as an error with no recording; the EDF library panics on malformed
// input, which Load converts to ErrMalformedRecording.
func Load(path string) (rec *Recording, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".edf" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContainer, ext)
	}

	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%w: %s: %v", ErrMalformedRecording, path, r)
		}
	}()

	data := edf.ReadFile(path)
	if len(data.PhysicalRecords) == 0 {
		return nil, fmt.Errorf("%w: %s: no signal records", ErrMalformedRecording, path)
	}

	labels := data.GetLabels()
	if len(labels) < len(data.PhysicalRecords) {
		return nil, fmt.Errorf("%w: %s: %d labels for %d signals",
			ErrMalformedRecording, path, len(labels), len(data.PhysicalRecords))
	}

	recordSeconds := data.GetDuration()
	samplesPerRecord := data.GetSampling()
	if recordSeconds <= 0 || samplesPerRecord <= 0 {
		return nil, fmt.Errorf("%w: %s: bad record geometry", ErrMalformedRecording, path)
	}

	// Per-channel rates follow from the shared recording duration: the
	// first signal's geometry fixes the total seconds, every other
	// signal's rate is its sample count over that span.
	baseRate := float64(samplesPerRecord) / recordSeconds
	totalSeconds := float64(len(data.PhysicalRecords[0])) / baseRate
	if totalSeconds <= 0 {
		return nil, fmt.Errorf("%w: %s: empty first signal", ErrMalformedRecording, path)
	}

	var start time.Time
	if t, terr := time.ParseInLocation(startTimeLayout,
		data.Header["startdate"]+" "+data.Header["starttime"], time.Local); terr == nil {
		start = t
	}

	rec = NewRecording(path, start)
	for i, series := range data.PhysicalRecords {
		name := strings.TrimSpace(labels[i])
		if name == "EDF Annotations" || name == "Crc16" {
			continue
		}
		rate := int(math.Round(float64(len(series)) / totalSeconds))
		if rate <= 0 {
			continue
		}
		rec.AddChannel(name, rate, series)
	}

	if len(rec.Names()) == 0 {
		return nil, fmt.Errorf("%w: %s: no usable channels", ErrMalformedRecording, path)
	}
	return rec, nil
}
