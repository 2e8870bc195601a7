package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/bib/models"
)

func TestRenderKinds(t *testing.T) {
	step := 0.5
	cases := []struct {
		name  string
		field models.FieldDescriptor
		check func(t *testing.T, c *Control)
	}{
		{
			name:  "default text",
			field: models.FieldDescriptor{Name: "Nama"},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindText, c.Kind)
				assert.Equal(t, "text", c.InputType)
			},
		},
		{
			name:  "unknown type rides along as input type",
			field: models.FieldDescriptor{Name: "Tanggal", Type: "date"},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindText, c.Kind)
				assert.Equal(t, "date", c.InputType)
			},
		},
		{
			name:  "textarea",
			field: models.FieldDescriptor{Name: "Catatan", Type: "textarea"},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindTextArea, c.Kind)
				assert.Equal(t, 3, c.Rows)
			},
		},
		{
			name:  "checkbox",
			field: models.FieldDescriptor{Name: "Aktif", Type: "checkbox"},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindCheckbox, c.Kind)
			},
		},
		{
			name:  "number with constraints",
			field: models.FieldDescriptor{Name: "Suhu", Type: "number", Step: &step},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindNumber, c.Kind)
				require.NotNil(t, c.Step)
				assert.Equal(t, 0.5, *c.Step)
			},
		},
		{
			name: "select seeds first option",
			field: models.FieldDescriptor{
				Name: "Shift", Type: "select",
				Options: []models.FieldOption{{Value: "Pagi", Label: "Pagi"}, {Value: "Malam", Label: "Malam"}},
			},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindSelect, c.Kind)
				assert.Equal(t, "Pagi", c.Value)
			},
		},
		{
			name:  "select without options degrades to text",
			field: models.FieldDescriptor{Name: "Pilihan", Type: "select"},
			check: func(t *testing.T, c *Control) {
				assert.Equal(t, KindText, c.Kind)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Render(tc.field))
		})
	}
}

func TestRenderLabelFallback(t *testing.T) {
	c := Render(models.FieldDescriptor{Name: "ID_Lokasi"})
	assert.Equal(t, "ID_Lokasi", c.Label)

	c = Render(models.FieldDescriptor{Name: "ID_Lokasi", Label: "ID Lokasi"})
	assert.Equal(t, "ID Lokasi", c.Label)
}

func TestRenderDeclaredDefault(t *testing.T) {
	c := Render(models.FieldDescriptor{Name: "Baris", Type: "number", Value: float64(3)})
	assert.Equal(t, "3", c.Value)
}

func TestViewAppendOverwritesByName(t *testing.T) {
	v := NewView()
	v.Append(&Control{Name: "Lokasi", Kind: KindText})
	v.Append(&Control{Name: "Area", Kind: KindText})
	v.Append(&Control{Name: "Lokasi", Kind: KindSelect})

	require.Len(t, v.Controls, 2)
	assert.Equal(t, KindSelect, v.Controls[0].Kind)
	assert.Equal(t, "Area", v.Controls[1].Name)
}

func TestViewValues(t *testing.T) {
	v := NewView()
	v.Append(&Control{Name: "Nama", Kind: KindText, Value: "Gate A"})
	v.Append(&Control{Name: "Aktif", Kind: KindCheckbox, Checked: true})

	values := v.Values()
	assert.Equal(t, "Gate A", values["Nama"])
	assert.Equal(t, true, values["Aktif"])
}
