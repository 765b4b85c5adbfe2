package channel

import (
	"strings"
	"unicode"
)

// eogFallbacks are the per-side alias chains tried when no referenced EOG
// name is present.
var eogFallbacks = map[Role][]string{
	E1: {"E1", "LOC", "EOG1", "EOGL", "LEOG"},
	E2: {"E2", "ROC", "EOG2", "EOGR", "REOG"},
}

// emgCandidates is the chin-EMG priority list; emgRefCandidates is the
// second-channel list tried for EMGref.
var (
	emgCandidates    = []string{"CHIN1", "LCHIN", "CHINL", "CCHIN", "CHINC", "CHIN", "EMG"}
	emgRefCandidates = []string{"CHIN2", "CHIN3", "RCHIN", "CHINR", "CHIN"}
)

// ResolveAuto infers canonical roles from the raw names alone. Names are
// normalized to uppercase alphanumerics for matching; leg-EMG channels are
// discarded before normalization. EEG positions prefer a name that embeds
// the contralateral reference (M2/A2 for the left positions F3/C3/O1, M1/A1
// for the right), falling back to a bare position match plus an
// opportunistically recorded default reference.
func ResolveAuto(rawNames []string) Map {
	var raw []string
	for _, s := range rawNames {
		if !strings.Contains(s, "LEG") {
			raw = append(raw, s)
		}
	}
	norm := make([]string, len(raw))
	for i, s := range raw {
		norm[i] = normalize(s)
	}

	m := make(Map)

	// needRef stays true until some EEG position matches with an explicit
	// reference; only then is a default reference worth inferring.
	needRef := true

	for _, ee := range []Role{F3, F4, C3, C4, O1, O2} {
		contra := [2]string{"M1", "A1"}
		if last := ee[len(ee)-1]; last == '3' || last == '1' {
			contra = [2]string{"M2", "A2"}
		}

		if i := findSubstring(string(ee)+contra[0], norm); i >= 0 {
			m[ee] = raw[i]
			needRef = false
		} else if i := findSubstring(string(ee)+contra[1], norm); i >= 0 {
			m[ee] = raw[i]
			needRef = false
		} else if i := findSubstring(string(ee), norm); i >= 0 {
			m[ee] = raw[i]
			if needRef {
				for _, ref := range []string{"A1", "A2", "M1", "M2"} {
					if j := findSubstring(ref, norm); j >= 0 {
						if _, ok := m[M2]; !ok {
							m[M2] = raw[j]
						}
					}
				}
			}
		}
	}

	for _, ee := range []Role{E1, E2} {
		if i := findSubstring(string(ee)+"M", norm); i >= 0 {
			m[ee] = raw[i]
			continue
		}
		if i := findSubstring(string(ee)+"A", norm); i >= 0 {
			m[ee] = raw[i]
			continue
		}
		for _, name := range eogFallbacks[ee] {
			if i := findSubstring(name, norm); i >= 0 {
				m[ee] = raw[i]
				break
			}
		}
	}

	emgIdx := -1
	for _, cand := range emgCandidates {
		if i := findSubstring(cand, norm); i >= 0 {
			m[EMG] = raw[i]
			emgIdx = i
			break
		}
	}

	// A name already carrying two CHIN/EMG tokens is a bipolar channel and
	// needs no separate reference. A candidate whose first match is the EMG
	// channel itself is rejected, not rescanned.
	if emgIdx >= 0 &&
		strings.Count(norm[emgIdx], "CHIN") < 2 &&
		strings.Count(norm[emgIdx], "EMG") < 2 {
		for _, cand := range emgRefCandidates {
			if i := findSubstring(cand, norm); i >= 0 && i != emgIdx {
				m[EMGref] = raw[i]
				break
			}
		}
	}

	return m
}

// findSubstring returns the index of the first name containing want,
// rejecting oxygen-saturation channels so "O2" never lands on "SPO2".
func findSubstring(want string, names []string) int {
	for i, name := range names {
		if strings.Contains(name, want) && !strings.Contains(name, "SPO2") {
			return i
		}
	}
	return -1
}

// normalize strips non-alphanumerics and uppercases, so "EEG F4-M1"
// becomes "EEGF4M1".
func normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
