// Package stage defines the canonical sleep-stage vocabulary shared by the
// annotation decoders and the epoch packager. Source datasets score sleep in
// several native vocabularies (R&K numeric stages, AASM names, export-specific
// sentinels); all of them collapse onto six integer codes, with legacy stage 4
// merged into N3.
package stage

import "fmt"

// Stage is a canonical sleep-stage code. The integer values are part of the
// on-disk contract: label tensors persist them directly.
type Stage int

const (
	// Wake is stage W.
	Wake Stage = 0

	// N1 is light sleep.
	N1 Stage = 1

	// N2 is intermediate sleep.
	N2 Stage = 2

	// N3 is deep sleep; legacy stage 4 scores collapse here.
	N3 Stage = 3

	// REM is rapid-eye-movement sleep.
	REM Stage = 4

	// Unknown marks unscored, ambiguous, or unmappable epochs.
	Unknown Stage = 5
)

// IsValid checks whether s is one of the six canonical codes.
func (s Stage) IsValid() bool {
	return s >= Wake && s <= Unknown
}

// String returns the AASM-style name for the stage, "?" for Unknown.
func (s Stage) String() string {
	switch s {
	case Wake:
		return "W"
	case N1:
		return "N1"
	case N2:
		return "N2"
	case N3:
		return "N3"
	case REM:
		return "REM"
	case Unknown:
		return "?"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Parse converts a canonical stage name to its code. It accepts exactly the
// names String produces and reports false for anything else.
func Parse(s string) (Stage, bool) {
	switch s {
	case "W":
		return Wake, true
	case "N1":
		return N1, true
	case "N2":
		return N2, true
	case "N3":
		return N3, true
	case "REM":
		return REM, true
	case "?":
		return Unknown, true
	}
	return Unknown, false
}
