package annotation

import (
	"io"
	"strconv"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

var dcsmStages = map[string]stage.Stage{
	"W":   stage.Wake,
	"N1":  stage.N1,
	"N2":  stage.N2,
	"N3":  stage.N3,
	"REM": stage.REM,
}

// readDCSM decodes a DCSM ids annotation: comma rows of (init, duration,
// stage). Each row repeats its code once per full 30 seconds of duration;
// zero or negative durations contribute nothing and rows with unmapped
// stage tokens are skipped. A malformed duration aborts the decode.
func readDCSM(r io.Reader) ([]stage.Stage, error) {
	var anno []stage.Stage
	for _, line := range readLines(r) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}

		duration, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, nil
		}

		code, ok := dcsmStages[parts[2]]
		if !ok {
			continue
		}
		for i := 0; i < duration/30; i++ {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
