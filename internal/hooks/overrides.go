package hooks

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/sheetform/internal/errors"
)

// OverridePriority is the priority static file overrides register with
const OverridePriority = 1

// OverrideFile is the YAML layout of a hook override file:
//
//	hooks:
//	  agent_prompt_prefix: |
//	    You are a stern dwarven quartermaster.
type OverrideFile struct {
	Hooks map[string]string `yaml:"hooks"`
}

// LoadOverrides reads path and registers each entry as a static override.
// It returns the hook names that were registered.
func (r *Registry) LoadOverrides(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("hook override file %s not found", path)
		}
		return nil, errors.Wrap(err, "failed to read hook override file")
	}

	return r.LoadOverridesYAML(data)
}

// LoadOverridesYAML registers the overrides in an in-memory YAML document
func (r *Registry) LoadOverridesYAML(data []byte) ([]string, error) {
	var file OverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid hook override file")
	}

	names := make([]string, 0, len(file.Hooks))
	for name, value := range file.Hooks {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		r.Register(name, OverridePriority, Static(file.Hooks[name]))
	}
	return names, nil
}
