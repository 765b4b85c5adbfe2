package channel

import "strings"

// ResolveTable matches each canonical role against its configured aliases,
// with the bare role name appended as the lowest-priority candidate. A
// candidate matches a raw name on case-insensitive equality; the first hit
// wins the role.
func ResolveTable(rawNames []string, aliases AliasTable) Map {
	m := make(Map)
	for _, role := range resolutionOrder {
		candidates := make([]string, 0, len(aliases[role])+1)
		candidates = append(candidates, aliases[role]...)
		candidates = append(candidates, string(role))

	scan:
		for _, cand := range candidates {
			for _, raw := range rawNames {
				if strings.EqualFold(cand, raw) {
					m[role] = raw
					break scan
				}
			}
		}
	}
	return m
}

// PruneSelfReferences drops a resolved reference (M1/M2) whose raw name is
// embedded in a raw name already resolved to a signal role, so the same
// physical channel is never both signal and its own reference.
func PruneSelfReferences(m Map) Map {
	out := make(Map, len(m))
	for role, name := range m {
		out[role] = name
	}

	for _, ref := range []Role{M1, M2} {
		refName, ok := out[ref]
		if !ok {
			continue
		}
		for _, sig := range []Role{F3, F4, C3, C4, O1, O2, E1, E2} {
			if name, ok := out[sig]; ok && strings.Contains(name, refName) {
				delete(out, ref)
				break
			}
		}
	}
	return out
}

// fallbackMoves lists the substitutions applied when a preferred role is
// unresolved: the source role donates its raw name and is removed.
var fallbackMoves = [4][2]Role{
	{F4, F3},
	{C4, C3},
	{O2, O1},
	{EMG, EMGref},
}

// ApplyFallbacks applies the substitution chain in fixed order. Each move
// fires only when the target is unresolved and the source is resolved.
func ApplyFallbacks(m Map) Map {
	out := make(Map, len(m))
	for role, name := range m {
		out[role] = name
	}

	for _, mv := range fallbackMoves {
		target, source := mv[0], mv[1]
		if _, ok := out[target]; ok {
			continue
		}
		if name, ok := out[source]; ok {
			out[target] = name
			delete(out, source)
		}
	}
	return out
}
