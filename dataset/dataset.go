// Package dataset holds the per-dataset processing rules: which container
// format the recordings use, which annotation format accompanies them, and
// how raw channel names map onto canonical roles. The rule table is static
// configuration loaded once and never mutated; an optional YAML overlay can
// add datasets or override the built-in entries.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
)

// ErrUnknownDataset reports a dataset identifier with no configured rule.
// A missing dataset is a configuration error, never a silent default.
var ErrUnknownDataset = errors.New("unknown dataset")

// Rule binds one dataset to its file extensions, annotation format, and
// channel alias table.
type Rule struct {
	// PSGExt is the raw recording file extension, without the dot.
	PSGExt string

	// AnnoExt is the annotation file extension, without the dot.
	AnnoExt string

	// Format selects the annotation reader. An empty selector marks a
	// dataset whose annotations have no generic reader.
	Format annotation.Format

	// Aliases is the channel alias table. nil selects heuristic channel
	// inference; an empty non-nil table resolves by bare role names only.
	Aliases channel.AliasTable
}

// Table maps dataset identifiers to their rules.
type Table map[string]Rule

// Lookup returns the rule for a dataset identifier.
func (t Table) Lookup(name string) (Rule, error) {
	rule, ok := t[name]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return rule, nil
}

// Names returns the configured dataset identifiers in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
