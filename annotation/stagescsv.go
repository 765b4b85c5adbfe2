package annotation

import (
	"io"
	"strconv"
	"strings"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// stagesCSVStages keys carry the leading space the export writes after each
// comma; rows are matched against the unstripped third field.
var stagesCSVStages = map[string]stage.Stage{
	" Wake":         stage.Wake,
	" Stage1":       stage.N1,
	" Stage2":       stage.N2,
	" Stage3":       stage.N3,
	" REM":          stage.REM,
	" STAGE4":       stage.N3,
	" UnknownStage": stage.Unknown,
}

// readStagesCSV decodes a duration-carrying CSV annotation. Each stage row
// repeats its code once per 30 seconds of duration, with a minimum of one
// repeat for positive durations shorter than an epoch; zero or negative
// durations contribute nothing. A malformed duration aborts the decode.
func readStagesCSV(r io.Reader) ([]stage.Stage, error) {
	var anno []stage.Stage
	for _, line := range readLines(r) {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if len(parts) < 3 {
			continue
		}

		code, ok := stagesCSVStages[parts[2]]
		if !ok {
			continue
		}

		duration, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, nil
		}
		if duration <= 0 {
			continue
		}

		count := int(duration / 30)
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			anno = append(anno, code)
		}
	}
	return anno, nil
}
