package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MissingFieldError reports a required field that is absent or null.
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Object, e.Field)
}

// DuplicateFieldError reports a known field that appears more than once in an object.
type DuplicateFieldError struct {
	Object string
	Field  string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s: duplicate field %q", e.Object, e.Field)
}

type requiredField struct {
	name string
	dst  any
}

// decodeRequired decodes a JSON object into fields. Keys match exactly (no case
// folding), every field must be present and non-null, a known field may appear
// only once, and unknown keys are ignored. A null object reports its first
// field as missing.
func decodeRequired(data []byte, object string, fields []requiredField) error {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
	}

	values, err := objectValues(data, object, known)
	if err != nil {
		return err
	}

	label := object
	if raw, ok := values["item_id"]; ok {
		var id string
		if json.Unmarshal(raw, &id) == nil {
			label = fmt.Sprintf("%s %q", object, id)
		}
	}

	for _, f := range fields {
		raw, ok := values[f.name]
		if !ok || string(raw) == "null" {
			return &MissingFieldError{Object: label, Field: f.name}
		}
	}

	for _, f := range fields {
		if err := json.Unmarshal(values[f.name], f.dst); err != nil {
			return fmt.Errorf("%s: field %q: %w", label, f.name, err)
		}
	}
	return nil
}

// objectValues walks the tokens of a single JSON object and returns its raw
// member values keyed by their exact name.
func objectValues(data []byte, object string, known map[string]bool) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", object, err)
	}
	if tok == nil {
		return map[string]json.RawMessage{}, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%s: expected object, got %v", object, tok)
	}

	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", object, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected member name, got %v", object, tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", object, key, err)
		}

		if _, dup := values[key]; dup && known[key] {
			return nil, &DuplicateFieldError{Object: object, Field: key}
		}
		values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%s: %w", object, err)
	}
	return values, nil
}
