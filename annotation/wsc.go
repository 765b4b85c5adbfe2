package annotation

import (
	"io"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// wscStages maps the numeric codes WSC tables use; 5 is REM and both 6 and
// 7 mean unscored.
var wscStages = map[string]stage.Stage{
	"0": stage.Wake,
	"1": stage.N1,
	"2": stage.N2,
	"3": stage.N3,
	"4": stage.N3,
	"5": stage.REM,
	"6": stage.Unknown,
	"7": stage.Unknown,
}

// readWSC decodes a WSC stage table: header row skipped, tab-separated rows
// with the numeric stage code in the second field. Rows outside the table
// are skipped.
func readWSC(r io.Reader) ([]stage.Stage, error) {
	lines := readLines(r)
	if len(lines) < 2 {
		return nil, nil
	}

	var anno []stage.Stage
	for _, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) < 2 {
			continue
		}

		if code, ok := wscStages[parts[1]]; ok {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
