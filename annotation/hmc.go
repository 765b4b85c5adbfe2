package annotation

import (
	"io"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

var hmcStages = map[string]stage.Stage{
	"sleep stage w":  stage.Wake,
	"sleep stage n1": stage.N1,
	"sleep stage n2": stage.N2,
	"sleep stage n3": stage.N3,
	"sleep stage r":  stage.REM,
}

// readHMC decodes an HMC scoring log. Fields are separated by comma-space
// and the stage text is the fifth field. A "lights on" marker ends the
// session and stops the decode; a "lights off" marker is skipped but
// decoding continues. Rows outside the table are skipped.
func readHMC(r io.Reader) ([]stage.Stage, error) {
	lines := readLines(r)
	if len(lines) < 2 {
		return nil, nil
	}

	var anno []stage.Stage
	for _, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), ", ")
		if len(parts) < 5 {
			continue
		}

		ann := strings.ToLower(parts[4])
		if strings.Contains(ann, "lights on") {
			break
		}
		if strings.Contains(ann, "lights off") {
			continue
		}

		if code, ok := hmcStages[ann]; ok {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
