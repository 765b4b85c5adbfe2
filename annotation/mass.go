package annotation

import (
	"io"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// massHeader is the exact header line a MASS annotation file must carry.
const massHeader = "Onset,Duration,Annotation"

// readMASS decodes a MASS event-log annotation. Only records whose
// annotation text mentions "stage" contribute; the stage token is the last
// space-separated word and tokens outside the table decode to Unknown
// rather than being dropped, unlike the other event-log readers.
func readMASS(r io.Reader) ([]stage.Stage, error) {
	lines := readLines(r)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != massHeader {
		return nil, nil
	}

	var anno []stage.Stage
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}

		ann := parts[2]
		if !strings.Contains(ann, "stage") {
			continue
		}

		words := strings.Split(ann, " ")
		token := words[len(words)-1]
		code, ok := charStages[token]
		if !ok {
			code = stage.Unknown
		}
		anno = append(anno, code)
	}
	return anno, nil
}
