package pipeline

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"degrader/pkg/degrade"
)

// Composite is the meta name whose params hold several effect configs,
// flattened in document order.
const Composite = "composite"

func NewConfig(name string, params degrade.Params) Config {
	return Config{Name: name, Params: params}
}

// Config is one pipeline entry. Decoded configs remember the key order of
// their params so composite entries expand in the order they were written.
type Config struct {
	Name   string         `yaml:"name" json:"name"`
	Params degrade.Params `yaml:"params,omitempty" json:"params,omitempty"`
	order  []string
	inner  []string
}

// Keys returns the params keys in document order, sorted when the config
// was built in code.
func (c Config) Keys() []string {
	if len(c.order) == len(c.Params) {
		return append([]string(nil), c.order...)
	}
	return c.Params.Keys()
}

// innerKeys is Keys for a params mapping that was a lone {params: {...}}
// wrapper around the real one.
func (c Config) innerKeys(inner degrade.Params) []string {
	if len(c.inner) == len(inner) {
		return append([]string(nil), c.inner...)
	}
	return inner.Keys()
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("entry must be a mapping, got %s", kindName(node))
	}

	var named bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			if val.Kind != yaml.ScalarNode {
				return errors.Errorf("name must be a string, got %s", kindName(val))
			}
			c.Name, named = val.Value, true
		case "params":
			if val.Tag == "!!null" {
				continue
			}
			if val.Kind != yaml.MappingNode {
				return errors.Errorf("params must be a mapping, got %s", kindName(val))
			}
			var p map[string]any
			if err := val.Decode(&p); err != nil {
				return errors.Wrap(err, "decode params")
			}
			c.Params = degrade.Params(p)
			c.order = mappingKeys(val)
			if len(c.order) == 1 && c.order[0] == "params" && val.Content[1].Kind == yaml.MappingNode {
				c.inner = mappingKeys(val.Content[1])
			}
		}
	}

	if !named || c.Name == "" {
		return errors.New("missing required key 'name'")
	}
	return nil
}

// ParseConfigs decodes a YAML (or JSON) list of {name, params} entries.
func ParseConfigs(doc []byte) ([]Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, &degrade.ConfigError{Err: errors.Wrap(err, "parse")}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &degrade.ConfigError{Err: errors.New("empty document")}
	}

	list := root.Content[0]
	if list.Kind != yaml.SequenceNode {
		return nil, &degrade.ConfigError{Err: errors.Errorf("configs must be a list, got %s", kindName(list))}
	}

	configs := make([]Config, len(list.Content))
	for i, item := range list.Content {
		if err := item.Decode(&configs[i]); err != nil {
			return nil, &degrade.ConfigError{Index: i + 1, Name: configs[i].Name, Err: err}
		}
	}
	return configs, nil
}

func mappingKeys(node *yaml.Node) []string {
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar " + node.Tag
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}
