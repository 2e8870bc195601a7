package form

import (
	"strings"

	"p9e.in/bib/models"
)

// Render materializes one descriptor into a control. Validation of required
// fields happens at submission, not here; the descriptor's constraints are
// carried as control attributes only. No network calls are made.
func Render(f models.FieldDescriptor) *Control {
	c := &Control{
		Name:        f.Name,
		Label:       f.DisplayLabel(),
		Placeholder: f.Placeholder,
		Required:    f.Required,
	}

	ftype := strings.ToLower(f.Type)
	if ftype == "" {
		ftype = "text"
	}

	switch {
	case ftype == "select" && f.Options != nil:
		c.Kind = KindSelect
		c.SetOptions(f.Options)
	case ftype == "textarea":
		c.Kind = KindTextArea
		c.Rows = 3
	case ftype == "checkbox":
		c.Kind = KindCheckbox
	case ftype == "number":
		c.Kind = KindNumber
		c.Min = f.Min
		c.Max = f.Max
		c.Step = f.Step
	default:
		c.Kind = KindText
		c.InputType = ftype
	}

	if v := f.DefaultValue(); v != "" {
		c.Value = v
	}
	return c
}
