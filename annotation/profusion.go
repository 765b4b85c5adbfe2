package annotation

import (
	"encoding/xml"
	"io"

	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// profusionStageCodes maps the numeric codes of NSRR Profusion exports.
// Codes 9 (unscored) and 6 (movement) both collapse onto Unknown.
var profusionStageCodes = map[string]stage.Stage{
	"0": stage.Wake,
	"1": stage.N1,
	"2": stage.N2,
	"3": stage.N3,
	"4": stage.N3,
	"5": stage.REM,
	"9": stage.Unknown,
	"6": stage.Unknown,
}

type profusionDocument struct {
	SleepStages *profusionStageList `xml:"SleepStages"`
}

type profusionStageList struct {
	Stages []string `xml:"SleepStage"`
}

// readProfusion decodes a Profusion-style XML annotation. The stage texts
// live under the SleepStages element, one SleepStage element per 30-second
// epoch. Texts outside the known code table decode to Unknown.
func readProfusion(r io.Reader) ([]stage.Stage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil
	}

	var doc profusionDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}
	if doc.SleepStages == nil {
		return nil, nil
	}

	anno := make([]stage.Stage, 0, len(doc.SleepStages.Stages))
	for _, text := range doc.SleepStages.Stages {
		code, ok := profusionStageCodes[text]
		if !ok {
			code = stage.Unknown
		}
		anno = append(anno, code)
	}
	return anno, nil
}
