package catalogimport

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlCatalog struct {
	Books []Record `yaml:"books"`
}

// readYAML accepts either a top-level list or a mapping with a books key.
func readYAML(reader io.Reader) ([]Record, error) {
	var document yaml.Node
	if err := yaml.NewDecoder(reader).Decode(&document); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	root := &document
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.SequenceNode {
		var records []Record
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		return records, nil
	}
	var catalog yamlCatalog
	if err := root.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return catalog.Books, nil
}
