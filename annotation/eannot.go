package annotation

import (
	"io"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// eannotStages is the token table for Luna-style eannot files. The table is
// case-sensitive and deliberately includes export quirks: a lone space and
// "NaN" mean unscored, "8" shows up for N2 in some exports.
var eannotStages = map[string]stage.Stage{
	"wake":     stage.Wake,
	"N1":       stage.N1,
	"Nwake":    stage.N1,
	"N2":       stage.N2,
	"N3":       stage.N3,
	"N4":       stage.N3,
	"REM":      stage.REM,
	"unscored": stage.Unknown,
	"9":        stage.Unknown,
	" ":        stage.Unknown,
	"8":        stage.N2,
	"NN1":      stage.N1,
	"NN2":      stage.N2,
	"NN3":      stage.N3,
	"NaN":      stage.Unknown,
}

// readEannot decodes a plain-line annotation, one stage token per line.
// Lines outside the token table are skipped entirely.
func readEannot(r io.Reader) ([]stage.Stage, error) {
	var anno []stage.Stage
	for _, line := range readLines(r) {
		if len(line) == 0 {
			continue
		}
		if code, ok := eannotStages[line]; ok {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
