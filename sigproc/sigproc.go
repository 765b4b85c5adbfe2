// Package sigproc implements the per-channel conditioning applied before
// epoching: rereferencing, mains notch filtering, band-pass filtering,
// resampling to the target rate, and amplitude-unit normalization. Filters
// are first-order Butterworth sections run as a single forward pass.
package sigproc

import (
	"errors"
	"fmt"
	"math"

	"github.com/jfcg/butter"

	"github.com/XingXingYuoos/sleep-kit-project/psg"
)

var (
	// ErrChannelNotFound reports a channel name absent from the recording.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrFilterDesign reports cutoffs that do not fit the sampling rate.
	ErrFilterDesign = errors.New("filter design failed")
)

// Band is a [low, high] band-pass range in Hz.
type Band struct {
	Low  float64
	High float64
}

// Standard bands per signal class, and the mains frequencies notched out
// of high-rate recordings.
var (
	EEGBand    = Band{Low: 0.3, High: 35}
	EMGBand    = Band{Low: 10, High: 49}
	MainsFreqs = []float64{50, 60}
)

// notchHalfWidth is the half-width in Hz of the stop band around each
// mains frequency.
const notchHalfWidth = 2.0

// notchMinRate is the sampling rate at or below which mains filtering is
// skipped: the mains frequencies sit too close to (or beyond) Nyquist.
const notchMinRate = 120

// Process conditions one channel of a recording: optional linear
// rereferencing against refName, mains notch filtering, band-pass
// filtering, resampling to targetRate, and volts-to-microvolts
// normalization when the amplitude implies a unit mismatch. The recording
// is never modified; name-based selection failure reports
// ErrChannelNotFound.
func Process(rec *psg.Recording, name, refName string, band Band, notch []float64, targetRate int) ([]float64, error) {
	data, ok := rec.Data(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
	}
	rate, ok := rec.SampleRate(name)
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("%w: %q has no sampling rate", ErrChannelNotFound, name)
	}

	out := make([]float64, len(data))
	copy(out, data)

	if refName != "" {
		ref, ok := rec.Data(refName)
		if !ok {
			return nil, fmt.Errorf("%w: reference %q", ErrChannelNotFound, refName)
		}
		if len(ref) != len(out) {
			return nil, fmt.Errorf("reference %q has %d samples, channel %q has %d",
				refName, len(ref), name, len(out))
		}
		for i := range out {
			out[i] -= ref[i]
		}
	}

	if rate > notchMinRate {
		for _, f0 := range notch {
			var err error
			out, err = notchFilter(out, rate, f0)
			if err != nil {
				return nil, err
			}
		}
	}

	var err error
	out, err = bandPass(out, rate, band)
	if err != nil {
		return nil, err
	}

	if rate != targetRate {
		out = Resample(out, rate, targetRate)
	}

	// A standard deviation this small means the signal is still in volts;
	// scale to microvolts.
	if stddev(out) < 1e-3 {
		for i := range out {
			out[i] *= 1e6
		}
	}
	return out, nil
}

// bandPass runs a high-pass at band.Low cascaded with a low-pass at
// band.High.
func bandPass(data []float64, rate int, band Band) ([]float64, error) {
	hp := butter.NewHighPass1(angular(band.Low, rate))
	lp := butter.NewLowPass1(angular(band.High, rate))
	if hp == nil || lp == nil {
		return nil, fmt.Errorf("%w: band [%g, %g] Hz at %d Hz", ErrFilterDesign, band.Low, band.High, rate)
	}

	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = lp.Next(hp.Next(x))
	}
	return out, nil
}

// notchFilter removes a narrow band around f0 by summing a low-pass below
// the band with a high-pass above it.
func notchFilter(data []float64, rate int, f0 float64) ([]float64, error) {
	lp := butter.NewLowPass1(angular(f0-notchHalfWidth, rate))
	hp := butter.NewHighPass1(angular(f0+notchHalfWidth, rate))
	if lp == nil || hp == nil {
		return nil, fmt.Errorf("%w: notch %g Hz at %d Hz", ErrFilterDesign, f0, rate)
	}

	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = lp.Next(x) + hp.Next(x)
	}
	return out, nil
}

// angular converts a cutoff in Hz to the normalized angular frequency the
// filter sections take.
func angular(hz float64, rate int) float64 {
	return 2 * math.Pi * hz / float64(rate)
}

// Resample converts data from srcRate to dstRate by linear interpolation.
// Equal rates and degenerate inputs return the data unchanged.
func Resample(data []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(data) < 2 || srcRate <= 0 || dstRate <= 0 {
		return data
	}

	n := int(math.Round(float64(len(data)) * float64(dstRate) / float64(srcRate)))
	if n < 1 {
		n = 1
	}

	out := make([]float64, n)
	scale := float64(len(data)-1) / float64(n-1)
	if n == 1 {
		scale = 0
	}
	for i := range out {
		pos := float64(i) * scale
		j := int(pos)
		if j >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = data[j]*(1-frac) + data[j+1]*frac
	}
	return out
}

func stddev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, x := range data {
		sum += x
	}
	mean := sum / float64(len(data))

	var ss float64
	for _, x := range data {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(data)))
}
