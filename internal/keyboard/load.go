package keyboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://keyboard-model.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// keyList accepts either "AQZ" or ["A", "Q", "Z"].
type keyList string

func (k *keyList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*k = keyList(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*k = keyList(strings.Join(items, ""))
		return nil
	default:
		return fmt.Errorf("line %d: keys must be a string or a list", node.Line)
	}
}

type modelFile struct {
	Groups map[string]keyList `yaml:"groups"`
	Colors map[string]string  `yaml:"colors"`
}

// LoadModel reads a finger model from a JSON or YAML file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyboard model: %w", err)
	}
	return ParseModel(data)
}

// ParseModel validates and decodes a finger model document.
func ParseModel(data []byte) (*Model, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode keyboard model: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile keyboard schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid keyboard model: %w", err)
	}

	var raw modelFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode keyboard model: %w", err)
	}
	groups := make(map[string]string, len(raw.Groups))
	for finger, keys := range raw.Groups {
		groups[finger] = string(keys)
	}
	return NewModel(groups, raw.Colors)
}
