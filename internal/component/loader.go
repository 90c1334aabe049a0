package component

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Section is one top-level domain of a configuration document.
type Section struct {
	Domain string
	// List is set when the domain holds a sequence of entries.
	List    bool
	Entries []map[string]any
	Line    int
}

// Document is a parsed configuration file. Sections keep file order.
type Document struct {
	Sections []Section
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("reading device config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document. The top level must be a mapping of domain to
// either one mapping, a list of mappings, or nothing.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc := &Document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", ErrInvalidDocument, top.Line)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		sec := Section{Domain: key.Value, Line: key.Line}

		switch value.Kind {
		case yaml.SequenceNode:
			sec.List = true
			for _, item := range value.Content {
				entry, err := decodeEntry(item)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, sec.Domain, err)
				}
				sec.Entries = append(sec.Entries, entry)
			}
		case yaml.MappingNode:
			entry, err := decodeEntry(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, sec.Domain, err)
			}
			sec.Entries = []map[string]any{entry}
		case yaml.ScalarNode:
			if value.Tag != "!!null" {
				return nil, fmt.Errorf("%w: line %d: %s must be a mapping or a list", ErrInvalidDocument, value.Line, sec.Domain)
			}
			sec.Entries = []map[string]any{{}}
		default:
			return nil, fmt.Errorf("%w: line %d: %s must be a mapping or a list", ErrInvalidDocument, value.Line, sec.Domain)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc, nil
}

func decodeEntry(n *yaml.Node) (map[string]any, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: entry must be a mapping", n.Line)
	}
	entry := map[string]any{}
	if err := n.Decode(&entry); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return entry, nil
}
