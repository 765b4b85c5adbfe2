package annotation

import (
	"io"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// tsvStages covers the spellings seen across BIDS-style event tables,
// both named and numeric R&K variants.
var tsvStages = map[string]stage.Stage{
	"sleep stage w":    stage.Wake,
	"sleep stage wake": stage.Wake,
	"sleep stage n1":   stage.N1,
	"sleep stage 1":    stage.N1,
	"sleep stage n2":   stage.N2,
	"sleep stage 2":    stage.N2,
	"sleep stage n3":   stage.N3,
	"sleep stage 3":    stage.N3,
	"sleep stage 4":    stage.N3,
	"sleep stage r":    stage.REM,
	"sleep stage rem":  stage.REM,
	"sleep stage ?":    stage.Unknown,
}

// readTSV decodes a tab-separated events table. The header row is skipped,
// the stage text in the third column is trimmed and case-folded, and rows
// outside the table are skipped.
func readTSV(r io.Reader) ([]stage.Stage, error) {
	lines := readLines(r)
	if len(lines) < 2 {
		return nil, nil
	}

	var anno []stage.Stage
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}

		ann := strings.ToLower(strings.TrimSpace(parts[2]))
		if code, ok := tsvStages[ann]; ok {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
