package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSpec is the YAML form of one field specification.
type fileSpec struct {
	Target    string      `yaml:"target"`
	Source    string      `yaml:"source"`
	Value     interface{} `yaml:"value,omitempty"`
	Transform string      `yaml:"transform,omitempty"`
}

// tableFile is the YAML form of a mapping table.
type tableFile struct {
	Fields []fileSpec `yaml:"fields"`
}

// LoadTable reads a mapping table from a YAML file, resolving transform
// names against the registry. File order becomes table order.
func LoadTable(path string, registry *Registry) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return ParseTable(data, registry)
}

// ParseTable parses YAML mapping-table data against the registry.
func ParseTable(data []byte, registry *Registry) (Table, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	if len(tf.Fields) == 0 {
		return nil, fmt.Errorf("mapping file defines no fields")
	}

	table := make(Table, 0, len(tf.Fields))
	for i, fs := range tf.Fields {
		if fs.Target == "" {
			return nil, fmt.Errorf("mapping entry %d: target is required", i)
		}
		if fs.Source == SourceStatic && fs.Value == nil {
			return nil, fmt.Errorf("mapping entry %s: static source requires a value", fs.Target)
		}

		spec := FieldSpec{
			Target: fs.Target,
			Source: fs.Source,
			Value:  fs.Value,
		}
		if fs.Transform != "" {
			fn, ok := registry.Get(fs.Transform)
			if !ok {
				return nil, fmt.Errorf("mapping entry %s: unknown transform %q", fs.Target, fs.Transform)
			}
			spec.Transform = fn
		}

		table = append(table, spec)
	}

	return table, nil
}
