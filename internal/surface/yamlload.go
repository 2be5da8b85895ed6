package surface

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes a YAML document into the generic RawNode shape
// expected by the Parser. It is the only place in this module that
// imports a YAML library — per §1 the concrete syntax layer is an
// external collaborator; the Parser itself works on RawNode values.
func LoadYAML(data []byte) (RawNode, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding organization document: %w", err)
	}
	root, err := AsMapping(doc)
	if err != nil {
		return nil, fmt.Errorf("organization document root: %w", err)
	}
	return root, nil
}
