package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldDescriptor describes one form field from a terminal's form schema.
// Name is the stable key the rendered control is bound to; rendering a second
// descriptor with the same name replaces the earlier control.
type FieldDescriptor struct {
	Name        string        `json:"name"`
	Label       string        `json:"label,omitempty"`
	Type        string        `json:"type,omitempty"`
	Required    bool          `json:"required,omitempty"`
	Options     []FieldOption `json:"options,omitempty"`
	Value       any           `json:"value,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Step        *float64      `json:"step,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// DefaultValue renders the declared default as the string a control carries.
func (f FieldDescriptor) DefaultValue() string {
	if f.Value == nil {
		return ""
	}
	return stringify(f.Value)
}

// FieldOption is a single choice of a select field. Schemas declare options
// either as primitives or as objects keyed value/label (with id/name accepted
// as aliases), so decoding accepts both.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for FieldOption.
func (o *FieldOption) UnmarshalJSON(data []byte) error {
	var obj struct {
		Value *json.RawMessage `json:"value"`
		ID    *json.RawMessage `json:"id"`
		Label *string          `json:"label"`
		Name  *string          `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Value != nil || obj.ID != nil || obj.Label != nil || obj.Name != nil) {
		raw := obj.Value
		if raw == nil {
			raw = obj.ID
		}
		if raw != nil {
			var v any
			if err := json.Unmarshal(*raw, &v); err != nil {
				return err
			}
			o.Value = stringify(v)
		}
		switch {
		case obj.Label != nil:
			o.Label = *obj.Label
		case obj.Name != nil:
			o.Label = *obj.Name
		default:
			o.Label = o.Value
		}
		return nil
	}

	var prim any
	if err := json.Unmarshal(data, &prim); err != nil {
		return err
	}
	s := stringify(prim)
	o.Value = s
	o.Label = s
	return nil
}

// stringify converts a decoded JSON scalar to its control-value string.
// Integral floats print without a decimal point so numeric ids stay stable.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
