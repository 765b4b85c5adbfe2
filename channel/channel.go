// Package channel resolves the raw electrode labels found in a PSG recording
// onto a fixed vocabulary of canonical roles. Datasets name the same
// electrode in wildly different ways ("EEG F4-M1", "F4-A1", "EEG(sec)"), so
// resolution either walks a per-dataset alias table or, when no table
// exists, infers roles from the label strings themselves.
package channel

import "strings"

// Role is a canonical electrode role: EEG positions, EOG leads, chin EMG,
// and references.
type Role string

const (
	F3     Role = "F3"
	F4     Role = "F4"
	C3     Role = "C3"
	C4     Role = "C4"
	O1     Role = "O1"
	O2     Role = "O2"
	E1     Role = "E1"
	E2     Role = "E2"
	EMG    Role = "EMG"
	EMGref Role = "EMGref"
	M1     Role = "M1"
	M2     Role = "M2"
)

// Roles lists every canonical role.
var Roles = []Role{F3, F4, C3, C4, O1, O2, E1, E2, EMG, EMGref, M1, M2}

// resolutionOrder is the order roles are matched in; EMGref deliberately
// comes after the references so its fallback donation happens last.
var resolutionOrder = []Role{F3, F4, C3, C4, O1, O2, E1, E2, EMG, M1, M2, EMGref}

// IsValid checks whether r is one of the canonical roles.
func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// IsEMG reports whether the role carries chin EMG rather than EEG/EOG.
func (r Role) IsEMG() bool {
	return strings.Contains(string(r), "EMG")
}

// AliasTable maps a canonical role to its acceptable raw-name spellings in
// priority order. Tables are static per-dataset configuration and are never
// mutated after load; a nil table selects heuristic inference instead.
type AliasTable map[Role][]string

// Map is the per-recording resolution result: at most one raw channel name
// per canonical role, with unresolvable roles absent.
type Map map[Role]string

// Resolve maps raw channel names onto canonical roles. With an alias table
// it runs the table-driven pipeline (match, prune self-references, apply
// fallback substitutions); with a nil table it infers roles heuristically
// from the names alone. Resolution is deterministic and never mutates its
// inputs.
func Resolve(rawNames []string, aliases AliasTable) Map {
	if aliases == nil {
		return ResolveAuto(rawNames)
	}
	return ApplyFallbacks(PruneSelfReferences(ResolveTable(rawNames, aliases)))
}
