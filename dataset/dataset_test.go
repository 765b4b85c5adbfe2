package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
)

func TestLookup(t *testing.T) {
	table := Builtin()

	rule, err := table.Lookup("SHHS1")
	require.NoError(t, err)
	assert.Equal(t, "edf", rule.PSGExt)
	assert.Equal(t, "xml", rule.AnnoExt)
	assert.Equal(t, annotation.FormatProfusion, rule.Format)
	assert.Equal(t, []string{"EEG"}, rule.Aliases[channel.C4])
}

func TestLookupUnknownDataset(t *testing.T) {
	table := Builtin()

	_, err := table.Lookup("NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestBuiltinAliasModes(t *testing.T) {
	table := Builtin()

	// STAGES has no alias table: heuristic inference.
	stages, err := table.Lookup("STAGES")
	require.NoError(t, err)
	assert.Nil(t, stages.Aliases)

	// PHY carries a placeholder table: bare-name matching only.
	phy, err := table.Lookup("PHY")
	require.NoError(t, err)
	require.NotNil(t, phy.Aliases)
	assert.Empty(t, phy.Aliases)

	// ISRC has annotations but no reader for them.
	isrc, err := table.Lookup("ISRC")
	require.NoError(t, err)
	assert.Empty(t, string(isrc.Format))
}

func TestBuiltinFormatsRegistered(t *testing.T) {
	registered := make(map[annotation.Format]bool)
	for _, f := range annotation.DefaultRegistry.Formats() {
		registered[f] = true
	}

	for name, rule := range Builtin() {
		if rule.Format == "" {
			continue
		}
		assert.True(t, registered[rule.Format],
			"dataset %s references unregistered format %q", name, rule.Format)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	content := `
MYLAB:
  psg_ext: edf
  anno_ext: tsv
  format: tsv
  aliases:
    C4: EEG
    C3: [EEG(sec), EEG2]
SHHS1:
  psg_ext: edf
  anno_ext: xml
  format: profusion
  aliases:
    C4: Override
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadRules(path)
	require.NoError(t, err)

	// New dataset added with scalar and list alias values decoded alike.
	mylab, err := table.Lookup("MYLAB")
	require.NoError(t, err)
	assert.Equal(t, annotation.FormatTSV, mylab.Format)
	assert.Equal(t, []string{"EEG"}, mylab.Aliases[channel.C4])
	assert.Equal(t, []string{"EEG(sec)", "EEG2"}, mylab.Aliases[channel.C3])

	// Built-in entry replaced wholesale.
	shhs1, err := table.Lookup("SHHS1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Override"}, shhs1.Aliases[channel.C4])
	assert.NotContains(t, shhs1.Aliases, channel.E1)

	// Untouched built-ins survive.
	_, err = table.Lookup("MESA")
	assert.NoError(t, err)
}

func TestLoadRulesRejectsUnknownRole(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
BAD:
  psg_ext: edf
  anno_ext: xml
  format: profusion
  aliases:
    XX: nope
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel role")
}

func TestLoadRulesEmptyPath(t *testing.T) {
	table, err := LoadRules("")
	require.NoError(t, err)
	assert.Len(t, table, len(Builtin()))
}

func TestNamesSorted(t *testing.T) {
	names := Builtin().Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
