package envspec

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ActiveState/devenv/internal/errs"
)

// Parse reads a spec from a YAML mapping of role names to lists of dependency names:
//
//	native-build-tool:
//	  - pkg-config
//	linkable-library:
//	  - systemd
//	  - dbus
//
// Role names are not validated here, Validate reports unknown roles.
func Parse(data []byte) (*Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(err, "Could not parse environment spec")
	}

	s := New()
	if doc.Kind == 0 {
		return s, nil // empty document
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if isNull(root) {
		return s, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, errs.New("Environment spec must be a mapping of roles to dependency lists (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		role, err := ParseRole(key.Value)
		if err != nil {
			// kept as is so Validate reports it
			role = Role(key.Value)
		}
		refs, err := parseRefs(key.Value, value)
		if err != nil {
			return nil, err
		}
		s.Add(role, refs...)
	}
	return s, nil
}

// parseRefs reads the dependency list of a role. Null items become empty names, which Validate rejects.
func parseRefs(role string, value *yaml.Node) ([]Ref, error) {
	if isNull(value) {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, errs.New("Dependencies of role %s must be a list of names (line %d)", role, value.Line)
	}
	refs := make([]Ref, 0, len(value.Content))
	for _, item := range value.Content {
		switch {
		case isNull(item):
			refs = append(refs, Ref(""))
		case item.Kind == yaml.ScalarNode:
			refs = append(refs, Ref(item.Value))
		default:
			return nil, errs.New("Dependency of role %s must be a name (line %d)", role, item.Line)
		}
	}
	return refs, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Load reads and parses a spec file
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "Could not read environment spec %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errs.Wrap(err, "Could not load environment spec %s", path)
	}
	return s, nil
}

// Marshal renders the spec as YAML with roles in fold order
func (s *Spec) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, role := range s.Roles() {
		list := &yaml.Node{Kind: yaml.SequenceNode}
		for _, ref := range s.deps[role] {
			list.Content = append(list.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: string(ref)})
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: string(role)}, list)
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, errs.Wrap(err, "Could not marshal environment spec")
	}
	return out, nil
}
