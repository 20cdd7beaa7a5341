package forms

import "fmt"

// Widget is the JSON control descriptor a client renders for one field.
// Checkbox labels render inline with the control; every other kind renders
// its label above.
type Widget struct {
	Control      string      `json:"control"`
	Name         string      `json:"name"`
	Label        string      `json:"label,omitempty"`
	LabelInline  bool        `json:"label_inline,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty"`
	Required     bool        `json:"required,omitempty"`
	Icon         string      `json:"icon,omitempty"`
	DateFormat   string      `json:"date_format,omitempty"`
	ShowTime     bool        `json:"show_time,omitempty"`
	CallingCode  string      `json:"calling_code,omitempty"`
	Options      []Option    `json:"options,omitempty"`
	MaxSizeBytes int64       `json:"max_size_bytes,omitempty"`
	AcceptedMIME []string    `json:"accepted_mime,omitempty"`
	Value        interface{} `json:"value,omitempty"`
}

// Render produces the widget for one field bound to its current value. It is
// a pure function of its inputs and matches exhaustively on the field kind;
// a kind outside the closed set is an error.
func Render(f FieldSpec, v Value) (*Widget, error) {
	meta := f.Common()
	w := &Widget{
		Name:        meta.Name,
		Label:       meta.Label,
		Placeholder: meta.Placeholder,
		Required:    meta.Required,
	}

	switch spec := f.(type) {
	case TextField:
		w.Control = "text"
		w.Icon = spec.Icon
		if !v.IsZero() {
			w.Value = v.Str()
		}
	case TextareaField:
		w.Control = "textarea"
		if !v.IsZero() {
			w.Value = v.Str()
		}
	case PhoneField:
		w.Control = "phone"
		w.CallingCode = spec.DefaultCallingCode
		if !v.IsZero() {
			w.Value = v.Str()
		}
	case DateField:
		w.Control = "date"
		w.DateFormat = spec.DateLayout()
		w.ShowTime = spec.ShowTime
		if !v.IsZero() {
			w.Value = v.Date().Format(spec.DateLayout())
		}
	case SelectField:
		w.Control = "select"
		w.Options = spec.Options
		if !v.IsZero() {
			w.Value = v.Str()
		}
	case RadioGroupField:
		w.Control = "radio-group"
		w.Options = spec.Options
		if !v.IsZero() {
			w.Value = v.Str()
		}
	case CheckboxField:
		w.Control = "checkbox"
		w.LabelInline = true
		if v.Kind() == ValueBool {
			w.Value = v.Bool()
		}
	case FileUploadField:
		w.Control = "file-upload"
		w.MaxSizeBytes = spec.MaxSizeBytes
		w.AcceptedMIME = spec.AcceptedMIME
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownFieldKind, f)
	}

	return w, nil
}

// RenderedSection is one section of a rendered form.
type RenderedSection struct {
	Key     string    `json:"key"`
	Title   string    `json:"title"`
	Widgets []*Widget `json:"widgets"`
}

// RenderedForm is the full form descriptor served to clients.
type RenderedForm struct {
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Sections []RenderedSection `json:"sections"`
}

// RenderForm renders every field of the definition bound to the given
// values; pass the definition's defaults for a fresh form.
func RenderForm(d *Definition, vals Values) (*RenderedForm, error) {
	out := &RenderedForm{Name: d.Name, Title: d.Title}
	for _, s := range d.Sections {
		rs := RenderedSection{Key: s.Key, Title: s.Title}
		for _, f := range s.Fields {
			w, err := Render(f, vals.Get(f.Common().Name))
			if err != nil {
				return nil, fmt.Errorf("render field %q: %w", f.Common().Name, err)
			}
			rs.Widgets = append(rs.Widgets, w)
		}
		out.Sections = append(out.Sections, rs)
	}
	return out, nil
}
