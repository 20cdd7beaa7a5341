// Package forms holds the declarative form machinery for patient intake:
// a closed set of field kinds, the built-in form definitions, value coercion,
// validation rules, and the widget renderer the clients consume.
package forms

import "errors"

// ErrUnknownFieldKind is returned when rendering or validating a field kind
// the closed variant set does not cover. An unrecognized kind is an error,
// never a silent no-op.
var ErrUnknownFieldKind = errors.New("unknown field kind")

// Option is one selectable choice of a select or radio-group field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// Meta carries the configuration shared by every field kind.
type Meta struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// FieldSpec is the sealed interface over the field kind variants. Each
// variant carries only the configuration its control needs; the set is
// closed so the renderer and validator can match exhaustively.
type FieldSpec interface {
	Common() Meta
	isField()
}

func (m Meta) Common() Meta { return m }

// TextField renders a single-line input with an optional leading icon.
type TextField struct {
	Meta
	Icon   string
	MinLen int
	MaxLen int
	Email  bool // validate as an email address
}

// TextareaField renders a multi-line free-text input.
type TextareaField struct {
	Meta
	MaxLen int
}

// PhoneField renders an international phone input. Values normalize to
// E.164; DefaultCallingCode is prefixed when a national number is entered.
type PhoneField struct {
	Meta
	DefaultCallingCode string
}

// DateField renders a calendar-pickable control. Format follows Go reference
// time layout; ShowTime adds a time-of-day component.
type DateField struct {
	Meta
	Format   string
	ShowTime bool
}

// SelectField renders a trigger plus an overlay list of options.
type SelectField struct {
	Meta
	Options []Option
}

// RadioGroupField renders its options as an inline radio group.
type RadioGroupField struct {
	Meta
	Options []Option
}

// CheckboxField renders a boolean toggle with its label inline. MustBeTrue
// marks consents that block submission until checked.
type CheckboxField struct {
	Meta
	MustBeTrue bool
}

// FileUploadField renders a file picker. The field itself is optional unless
// Required; a selected file must carry both content and a filename.
type FileUploadField struct {
	Meta
	MaxSizeBytes int64
	AcceptedMIME []string
}

func (TextField) isField()       {}
func (TextareaField) isField()   {}
func (PhoneField) isField()      {}
func (DateField) isField()       {}
func (SelectField) isField()     {}
func (RadioGroupField) isField() {}
func (CheckboxField) isField()   {}
func (FileUploadField) isField() {}

// DefaultDateFormat is month/day/year, matching the records already stored.
const DefaultDateFormat = "01/02/2006"

// DateLayout returns the field's layout, falling back to the default.
func (f DateField) DateLayout() string {
	if f.Format != "" {
		return f.Format
	}
	return DefaultDateFormat
}

// HasOption reports whether value is one of the field's options.
func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
