package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError names a failing field and the message shown inline next to it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates the per-field failures of one submission so the
// client can render them all at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	return fmt.Sprintf("%d fields failed validation", len(e.Fields))
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate evaluates every field's rules against the complete values
// snapshot. Any returned error blocks submission; each error is attached to
// exactly one field.
func (d *Definition) Validate(vals Values) []FieldError {
	var errs []FieldError
	for _, f := range d.Fields() {
		if fe := validateField(f, vals.Get(f.Common().Name)); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

func validateField(f FieldSpec, v Value) *FieldError {
	meta := f.Common()

	if v.IsZero() {
		if meta.Required {
			return &FieldError{Field: meta.Name, Message: meta.Label + " is required"}
		}
		return nil
	}

	switch spec := f.(type) {
	case TextField:
		s := strings.TrimSpace(v.Str())
		n := utf8.RuneCountInString(s)
		if spec.MinLen > 0 && n < spec.MinLen {
			return &FieldError{Field: meta.Name, Message: fmt.Sprintf("must be at least %d characters", spec.MinLen)}
		}
		if spec.MaxLen > 0 && n > spec.MaxLen {
			return &FieldError{Field: meta.Name, Message: fmt.Sprintf("must be at most %d characters", spec.MaxLen)}
		}
		if spec.Email && !emailPattern.MatchString(s) {
			return &FieldError{Field: meta.Name, Message: "must be a valid email address"}
		}
	case TextareaField:
		if spec.MaxLen > 0 && utf8.RuneCountInString(v.Str()) > spec.MaxLen {
			return &FieldError{Field: meta.Name, Message: fmt.Sprintf("must be at most %d characters", spec.MaxLen)}
		}
	case PhoneField:
		if !e164Pattern.MatchString(v.Str()) {
			return &FieldError{Field: meta.Name, Message: "must be a valid phone number"}
		}
	case DateField:
		if v.Kind() != ValueDate {
			return &FieldError{Field: meta.Name, Message: "must be a date"}
		}
	case SelectField:
		if !hasOption(spec.Options, v.Str()) {
			return &FieldError{Field: meta.Name, Message: "is not one of the allowed choices"}
		}
	case RadioGroupField:
		if !hasOption(spec.Options, v.Str()) {
			return &FieldError{Field: meta.Name, Message: "is not one of the allowed choices"}
		}
	case CheckboxField:
		if spec.MustBeTrue && !v.Bool() {
			return &FieldError{Field: meta.Name, Message: "must be accepted to continue"}
		}
	case FileUploadField:
		fr := v.File()
		if fr.Filename == "" {
			return &FieldError{Field: meta.Name, Message: "uploaded file must have a filename"}
		}
		if len(fr.Content) == 0 {
			return &FieldError{Field: meta.Name, Message: "uploaded file is empty"}
		}
		if spec.MaxSizeBytes > 0 && int64(len(fr.Content)) > spec.MaxSizeBytes {
			return &FieldError{Field: meta.Name, Message: fmt.Sprintf("file exceeds the %d byte limit", spec.MaxSizeBytes)}
		}
		if len(spec.AcceptedMIME) > 0 && fr.MIMEType != "" {
			accepted := false
			for _, m := range spec.AcceptedMIME {
				if m == fr.MIMEType {
					accepted = true
					break
				}
			}
			if !accepted {
				return &FieldError{Field: meta.Name, Message: "file type is not accepted"}
			}
		}
	default:
		return &FieldError{Field: meta.Name, Message: ErrUnknownFieldKind.Error()}
	}
	return nil
}
