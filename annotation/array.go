package annotation

import (
	"io"

	"github.com/XingXingYuoos/sleep-kit-project/npy"
	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// readArray decodes a pre-computed hypnogram stored as an NPY integer
// array. The values are taken as canonical stage codes with no further
// mapping; anything that is not a readable integer array decodes to an
// empty sequence.
func readArray(r io.Reader) ([]stage.Stage, error) {
	values, _, err := npy.ReadInt64(r)
	if err != nil {
		return nil, nil
	}

	anno := make([]stage.Stage, len(values))
	for i, v := range values {
		anno[i] = stage.Stage(v)
	}
	return anno, nil
}
