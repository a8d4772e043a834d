package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is a factory that catalog files can instantiate by name. It plays the
// part a module path plays in dynamic languages.
type Kind struct {
	Dependencies []string
	Factory      Factory
}

// Kinds maps kind names to their factories.
type Kinds map[string]Kind

// entry is one element of a catalog file. A bare scalar is shorthand for
// {kind: <scalar>}.
type entry struct {
	Kind    string   `yaml:"kind"`
	Name    string   `yaml:"name,omitempty"`
	Startup bool     `yaml:"startup,omitempty"`
	Options any      `yaml:"options,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// LoadFile reads a YAML catalog from path.
//
//	# catalog.yaml
//	- logger
//	- kind: static
//	  name: greeting
//	  startup: true
//	  options:
//	    text: "{1}|hello"
func LoadFile(path string, kinds Kinds) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, kinds)
}

// Load reads a YAML catalog. The document root must be a sequence.
func Load(r io.Reader, kinds Kinds) (*Catalog, error) {
	c := New()
	if err := c.Decode(r, kinds); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode adds the entries of a YAML catalog to c.
func (c *Catalog) Decode(r io.Reader, kinds Kinds) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &InvalidConfigurationError{Err: errors.New("catalog is empty, expected a sequence")}
		}
		return &InvalidConfigurationError{Err: err}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return &InvalidConfigurationError{Err: fmt.Errorf("catalog can only be configured with a sequence (line %d)", root.Line)}
	}

	for _, node := range root.Content {
		var e entry
		switch node.Kind {
		case yaml.ScalarNode:
			e.Kind = node.Value
		case yaml.MappingNode:
			if err := node.Decode(&e); err != nil {
				return &InvalidConfigurationError{Err: fmt.Errorf("line %d: %w", node.Line, err)}
			}
		default:
			return &InvalidConfigurationError{Err: fmt.Errorf("line %d: entry must be a kind name or a mapping", node.Line)}
		}
		if e.Name == "" {
			e.Name = e.Kind
		}
		kind, ok := kinds[e.Kind]
		if !ok {
			return &InvalidConfigurationError{Component: e.Name, Err: fmt.Errorf("line %d: unknown kind %q", node.Line, e.Kind)}
		}
		if err := c.Register(Descriptor{
			Name:         e.Name,
			Dependencies: kind.Dependencies,
			Factory:      kind.Factory,
			Settings:     e.Options,
			Startup:      e.Startup,
			Aliases:      e.Aliases,
		}); err != nil {
			return err
		}
	}
	return nil
}
