package annotation

import (
	"bytes"
	"io"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// safMarker precedes every stage character in a SAF event stream.
const safMarker = "Sleep stage"

// readSAF decodes a SAF annotation. The whole hypnogram sits on the first
// line of the file as a byte stream of repeated "Sleep stage X" events; the
// stage character follows the marker and its separator. Characters outside
// the table decode to Unknown.
func readSAF(r io.Reader) ([]stage.Stage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil
	}
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i+1]
	}

	var anno []stage.Stage
	s := string(raw)
	for {
		i := strings.Index(s, safMarker)
		if i < 0 {
			break
		}
		if i+len(safMarker)+1 >= len(s) {
			s = ""
			continue
		}
		s = s[i+len(safMarker)+1:]
		code, ok := charStages[s[:1]]
		if !ok {
			code = stage.Unknown
		}
		anno = append(anno, code)
	}
	return anno, nil
}
