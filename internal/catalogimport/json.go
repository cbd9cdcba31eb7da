package catalogimport

import (
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

func readJSON(reader io.Reader, selector string) ([]Record, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read json catalog: %w", err)
	}
	if !codec.Valid(data) {
		return nil, fmt.Errorf("%w: catalog is not valid json", ErrInvalidRecord)
	}
	if selector != "" {
		data, err = selectJSON(data, selector)
		if err != nil {
			return nil, err
		}
	}
	var records []Record
	if err := codec.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return records, nil
}

// selectJSON narrows a document to the list found at selector.
func selectJSON(data []byte, selector string) ([]byte, error) {
	var document interface{}
	if err := codec.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	selected, err := jsonpath.Get(selector, document)
	if err != nil {
		return nil, fmt.Errorf("%w: selector %q: %v", ErrInvalidRecord, selector, err)
	}
	if _, isList := selected.([]interface{}); !isList {
		return nil, fmt.Errorf("%w: selector %q does not point at a list", ErrInvalidRecord, selector)
	}
	narrowed, err := codec.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return narrowed, nil
}
