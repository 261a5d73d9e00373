package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kardolus/agentic/internal/fsio"
)

const (
	tagInt = "!!int"
	tagMap = "!!map"
)

// Parse decodes a scenario description. JSON documents are accepted as a
// subset of YAML, which keeps the declared key order intact.
func Parse(data []byte) (*Dir, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: root must be a mapping", ErrInvalidScenario)
	}

	return parseDir(root, Root())
}

// Load reads and parses the scenario at path.
func Load(r fsio.Reader, path string) (*Dir, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	dir, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dir, nil
}

func parseDir(n *yaml.Node, at Path) (*Dir, error) {
	dir := &Dir{index: make(map[string]int, len(n.Content)/2)}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar name under %s", ErrInvalidScenario, at)
		}

		child, err := parseNode(value, at.Child(key.Value))
		if err != nil {
			return nil, err
		}

		if err := dir.add(Entry{Name: key.Value, Node: child}); err != nil {
			return nil, fmt.Errorf("%w (under %s)", err, at)
		}
	}

	return dir, nil
}

func parseNode(n *yaml.Node, at Path) (Node, error) {
	switch {
	case n.Kind == yaml.MappingNode && n.ShortTag() == tagMap:
		return parseDir(n, at)
	case n.Kind == yaml.ScalarNode && n.ShortTag() == tagInt:
		var size int64
		if err := n.Decode(&size); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScenario, at, err)
		}
		return File{Size: size}, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected mapping or integer size, got %q", ErrInvalidScenario, at, n.Value)
	}
}
