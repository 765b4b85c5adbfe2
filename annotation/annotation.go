// Package annotation decodes heterogeneous PSG hypnogram files into canonical
// stage sequences. Each supported dataset family ships its own on-disk
// layout; a reader per format maps it onto the shared stage vocabulary at
// 30-second epoch resolution. Readers recover from structural problems by
// returning an empty sequence so that one malformed subject never aborts a
// batch.
package annotation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// Format identifies an annotation reader.
type Format string

const (
	// FormatProfusion is NSRR Profusion XML (SleepStages element list).
	FormatProfusion Format = "profusion"

	// FormatMASS is the MASS event log (Onset,Duration,Annotation header).
	FormatMASS Format = "mass"

	// FormatSAF is the SAF event stream (repeated "Sleep stage" markers).
	FormatSAF Format = "saf"

	// FormatEannot is the Luna eannot file, one stage token per line.
	FormatEannot Format = "eannot"

	// FormatStagesCSV is the STAGES export, comma rows with durations.
	FormatStagesCSV Format = "stages-csv"

	// FormatDCSM is the DCSM ids file, comma rows with durations.
	FormatDCSM Format = "dcsm-ids"

	// FormatTSV is the BIDS-style events table, tab separated.
	FormatTSV Format = "tsv"

	// FormatArray is a pre-computed integer array in NPY form.
	FormatArray Format = "array"

	// FormatHMC is the HMC scoring log with lights on/off markers.
	FormatHMC Format = "hmc"

	// FormatWSC is the WSC stage table, tab separated numeric codes.
	FormatWSC Format = "wsc"

	// FormatPHY is the PHY challenge container, not decodable generically.
	FormatPHY Format = "phy"
)

// String returns the selector string for the format.
func (f Format) String() string {
	return string(f)
}

// charStages is the single-character stage alphabet shared by the MASS and
// SAF readers. Legacy stage 4 collapses onto N3.
var charStages = map[string]stage.Stage{
	"?": stage.Unknown,
	"W": stage.Wake,
	"1": stage.N1,
	"2": stage.N2,
	"3": stage.N3,
	"4": stage.N3,
	"R": stage.REM,
}

// ReaderFunc converts one raw annotation stream into canonical stages.
// Structural problems yield an empty sequence, not an error.
type ReaderFunc func(r io.Reader) ([]stage.Stage, error)

// Registry manages annotation readers keyed by format selector.
type Registry struct {
	mu      sync.RWMutex
	readers map[Format]ReaderFunc
}

// DefaultRegistry is the global registry with all built-in readers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the built-in readers registered.
func NewRegistry() *Registry {
	r := &Registry{
		readers: make(map[Format]ReaderFunc),
	}

	r.Register(FormatProfusion, readProfusion)
	r.Register(FormatMASS, readMASS)
	r.Register(FormatSAF, readSAF)
	r.Register(FormatEannot, readEannot)
	r.Register(FormatStagesCSV, readStagesCSV)
	r.Register(FormatDCSM, readDCSM)
	r.Register(FormatTSV, readTSV)
	r.Register(FormatArray, readArray)
	r.Register(FormatHMC, readHMC)
	r.Register(FormatWSC, readWSC)
	r.Register(FormatPHY, readPHY)

	return r
}

// Register adds a reader for a format selector.
func (r *Registry) Register(f Format, fn ReaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[f] = fn
}

// Formats returns the registered format selectors in sorted order.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.readers))
	for f := range r.readers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Decode reads the annotation file at path with the reader selected by
// format. An unrecognized selector reports ErrUnknownFormat. A file that is
// missing or structurally broken decodes to an empty sequence with a nil
// error; callers treat an empty sequence as "subject unusable".
func (r *Registry) Decode(path string, format Format) ([]stage.Stage, error) {
	r.mu.RLock()
	read, ok := r.readers[format]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	return read(f)
}

// Decode reads an annotation file using the default registry.
func Decode(path string, format Format) ([]stage.Stage, error) {
	return DefaultRegistry.Decode(path, format)
}

// readLines reads r fully and splits it into lines without terminators,
// treating CRLF and LF alike. A read failure reports nil lines so the caller
// decodes to an empty sequence.
func readLines(r io.Reader) []string {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
		}
		if err != nil {
			if err != io.EOF {
				return nil
			}
			return lines
		}
	}
}
