package annotation

import (
	"io"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// readPHY is a placeholder. The PHY challenge stores hypnograms inside
// MAT v7.3 containers whose internal structure varies per record, so there
// is no generic decoding; selecting this format reports ErrNotImplemented.
func readPHY(io.Reader) ([]stage.Stage, error) {
	return nil, ErrNotImplemented
}
