package permit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelConfig is the serialized form of a model definition. Section maps key
// assertion names to their definition strings, so multi-type models list
// "p" and "p2" side by side.
type ModelConfig struct {
	RequestDefinition map[string]string `json:"request_definition" yaml:"request_definition"`
	PolicyDefinition  map[string]string `json:"policy_definition" yaml:"policy_definition"`
	RoleDefinition    map[string]string `json:"role_definition,omitempty" yaml:"role_definition,omitempty"`
	PolicyEffect      map[string]string `json:"policy_effect" yaml:"policy_effect"`
	Matchers          map[string]string `json:"matchers" yaml:"matchers"`
}

// Build converts the config into a Model and validates it.
func (c *ModelConfig) Build() (Model, error) {
	m := NewModel()
	sections := []struct {
		sec  string
		defs map[string]string
	}{
		{"r", c.RequestDefinition},
		{"p", c.PolicyDefinition},
		{"g", c.RoleDefinition},
		{"e", c.PolicyEffect},
		{"m", c.Matchers},
	}
	for _, s := range sections {
		keys := make([]string, 0, len(s.defs))
		for k := range s.defs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.AddDef(s.sec, k, s.defs[k])
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadModelFromYAML builds a model from YAML bytes.
func LoadModelFromYAML(data []byte) (Model, error) {
	cfg := &ModelConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, configError("parse model yaml: %v", err)
	}
	return cfg.Build()
}

// LoadModelFromJSON builds a model from JSON bytes.
func LoadModelFromJSON(data []byte) (Model, error) {
	cfg := &ModelConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, configError("parse model json: %v", err)
	}
	return cfg.Build()
}

// LoadModelFromFile builds a model from a .yaml/.yml or .json file.
func LoadModelFromFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadModelFromJSON(data)
	default:
		return LoadModelFromYAML(data)
	}
}
