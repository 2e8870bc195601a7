package form

import "p9e.in/bib/models"

// Kind discriminates the concrete control a descriptor rendered into.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindCheckbox Kind = "checkbox"
	KindNumber   Kind = "number"
	KindSelect   Kind = "select"
)

// Control is one editable form control, tagged with the logical field name it
// was rendered from so its value can be extracted later.
type Control struct {
	Name        string               `json:"name"`
	Label       string               `json:"label"`
	Kind        Kind                 `json:"kind"`
	InputType   string               `json:"input_type,omitempty"`
	Options     []models.FieldOption `json:"options,omitempty"`
	Value       string               `json:"value"`
	Checked     bool                 `json:"checked,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	ReadOnly    bool                 `json:"read_only,omitempty"`
	Hidden      bool                 `json:"hidden,omitempty"`
	Placeholder string               `json:"placeholder,omitempty"`
	Rows        int                  `json:"rows,omitempty"`
	Min         *float64             `json:"min,omitempty"`
	Max         *float64             `json:"max,omitempty"`
	Step        *float64             `json:"step,omitempty"`
}

// SetOptions replaces the option list and resets the selection to the first
// entry, matching how repopulating a select control behaves.
func (c *Control) SetOptions(opts []models.FieldOption) {
	c.Options = opts
	c.Value = ""
	if len(opts) > 0 {
		c.Value = opts[0].Value
	}
}

// StatusGroup is the single-item status block: a Bagus/Rusak choice plus the
// damage note shown when Rusak is selected.
type StatusGroup struct {
	Status     string `json:"status"`
	Keterangan string `json:"keterangan"`
}

// ChecklistRow is one item of the bulk checklist.
type ChecklistRow struct {
	ItemID  int64  `json:"item_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Catatan string `json:"catatan"`
}

// Checklist is the bulk-mode block: a shift selector plus one row per item of
// the resolved area, in catalog order.
type Checklist struct {
	Shift string          `json:"shift"`
	Rows  []*ChecklistRow `json:"rows"`
}

// View is the rendered form: an ordered control tree plus the mode-specific
// blocks. It is the engine's stand-in for the form's document tree.
type View struct {
	Controls    []*Control   `json:"controls"`
	Notice      string       `json:"notice,omitempty"`
	StatusGroup *StatusGroup `json:"status_group,omitempty"`
	Checklist   *Checklist   `json:"checklist,omitempty"`
}

// NewView returns an empty view.
func NewView() *View {
	return &View{}
}

// Append adds a control. A control with the same name overwrites the earlier
// one in place instead of accumulating a duplicate.
func (v *View) Append(c *Control) {
	for i, existing := range v.Controls {
		if existing.Name == c.Name {
			v.Controls[i] = c
			return
		}
	}
	v.Controls = append(v.Controls, c)
}

// Get returns the control bound to name, or nil.
func (v *View) Get(name string) *Control {
	for _, c := range v.Controls {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Replace swaps the control bound to name for a new control, keeping its
// position. It reports whether a control was replaced.
func (v *View) Replace(name string, c *Control) bool {
	for i, existing := range v.Controls {
		if existing.Name == name {
			v.Controls[i] = c
			return true
		}
	}
	return false
}

// Hide marks the named control hidden without removing it.
func (v *View) Hide(name string) {
	if c := v.Get(name); c != nil {
		c.Hidden = true
	}
}

// Clear resets the view to its pre-render state.
func (v *View) Clear() {
	v.Controls = nil
	v.Notice = ""
	v.StatusGroup = nil
	v.Checklist = nil
}

// Values extracts every control's current value keyed by field name.
// Checkboxes contribute their boolean state, everything else its string value.
func (v *View) Values() map[string]any {
	data := make(map[string]any, len(v.Controls))
	for _, c := range v.Controls {
		if c.Name == "" {
			continue
		}
		if c.Kind == KindCheckbox {
			data[c.Name] = c.Checked
		} else {
			data[c.Name] = c.Value
		}
	}
	return data
}
