// Package form renders a terminal's dynamic schema into an editable control
// tree and normalizes the schema shapes the backend is known to serve.
package form

import (
	"bytes"
	"encoding/json"

	"p9e.in/bib/models"
)

// Normalize converts a raw schema value into an ordered descriptor list.
// Three shapes are accepted: an explicit descriptor array, a wrapper object
// holding a "fields" array, and a flat name→type mapping. Anything else
// (null, scalars, malformed JSON) yields an empty list, which the renderer
// turns into a "schema unavailable" notice rather than an error.
func Normalize(raw json.RawMessage) []models.FieldDescriptor {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var fields []models.FieldDescriptor
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil
		}
		return fields
	case '{':
		var wrapper struct {
			Fields json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil
		}
		if inner := bytes.TrimSpace(wrapper.Fields); len(inner) > 0 && inner[0] == '[' {
			var fields []models.FieldDescriptor
			if err := json.Unmarshal(inner, &fields); err != nil {
				return nil
			}
			return fields
		}
		return normalizeFlatMap(trimmed)
	default:
		return nil
	}
}

// normalizeFlatMap walks the object token by token so descriptors keep the
// source key order. Values that are non-empty strings become the field type;
// everything else defaults to "text". Label mirrors the name.
func normalizeFlatMap(raw []byte) []models.FieldDescriptor {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil
	}

	var fields []models.FieldDescriptor
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		ftype := "text"
		if s, ok := value.(string); ok && s != "" {
			ftype = s
		}
		fields = append(fields, models.FieldDescriptor{Name: name, Label: name, Type: ftype})
	}
	return fields
}
