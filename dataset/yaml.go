package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
)

// aliasValue accepts either a single raw-name string or a list of them, so
// overlay files can write `C4: EEG` and `C3: [EEG(sec), EEG2]` alike.
type aliasValue []string

func (a *aliasValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*a = aliasValue{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = aliasValue(list)
		return nil
	}
	return fmt.Errorf("alias value must be a string or a list of strings (line %d)", node.Line)
}

// ruleYAML is the overlay file shape of one rule.
type ruleYAML struct {
	PSGExt  string                `yaml:"psg_ext"`
	AnnoExt string                `yaml:"anno_ext"`
	Format  string                `yaml:"format"`
	Aliases map[string]aliasValue `yaml:"aliases"`
}

func (r ruleYAML) toRule() (Rule, error) {
	rule := Rule{
		PSGExt:  r.PSGExt,
		AnnoExt: r.AnnoExt,
		Format:  annotation.Format(r.Format),
	}
	if r.Aliases != nil {
		rule.Aliases = make(channel.AliasTable, len(r.Aliases))
		for name, values := range r.Aliases {
			role := channel.Role(name)
			if !role.IsValid() {
				return Rule{}, fmt.Errorf("unknown channel role %q", name)
			}
			rule.Aliases[role] = []string(values)
		}
	}
	return rule, nil
}

// LoadRules reads a YAML overlay file and merges it over the built-in rule
// table. Overlay entries replace built-in entries wholesale; new dataset
// identifiers are added.
func LoadRules(path string) (Table, error) {
	table := Builtin()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var overlay map[string]ruleYAML
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	for name, raw := range overlay {
		rule, err := raw.toRule()
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		table[name] = rule
	}
	return table, nil
}
