package forms

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueString
	ValueDate
	ValueBool
	ValueFile
)

// FileRef is an uploaded file held in memory until the submission pipeline
// forwards it to the bucket.
type FileRef struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Value is the tagged union of everything a form field can hold.
type Value struct {
	kind ValueKind
	str  string
	date time.Time
	b    bool
	file *FileRef
}

func StringValue(s string) Value  { return Value{kind: ValueString, str: s} }
func DateValue(t time.Time) Value { return Value{kind: ValueDate, date: t} }
func BoolValue(b bool) Value      { return Value{kind: ValueBool, b: b} }
func FileValue(f *FileRef) Value  { return Value{kind: ValueFile, file: f} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Str() string     { return v.str }
func (v Value) Date() time.Time { return v.date }
func (v Value) Bool() bool      { return v.b }
func (v Value) File() *FileRef  { return v.file }

// IsZero reports whether the value is absent or empty for its kind.
func (v Value) IsZero() bool {
	switch v.kind {
	case ValueAbsent:
		return true
	case ValueString:
		return strings.TrimSpace(v.str) == ""
	case ValueDate:
		return v.date.IsZero()
	case ValueFile:
		return v.file == nil
	default:
		return false
	}
}

// Values is the live snapshot of all field inputs for one form instance.
// It exists only for the duration of a submission.
type Values map[string]Value

// Get returns the value for a field name, absent when unset.
func (vals Values) Get(name string) Value {
	return vals[name]
}

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// NormalizePhone strips formatting characters and normalizes the number to
// E.164, prefixing the default calling code when a national number was
// entered. The default country can always be overridden by entering a full
// international number.
func NormalizePhone(raw, defaultCallingCode string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", fmt.Errorf("phone number is empty")
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = defaultCallingCode + strings.TrimPrefix(cleaned, "0")
	}
	if !e164Pattern.MatchString(cleaned) {
		return "", fmt.Errorf("phone number is not a valid international number")
	}
	return cleaned, nil
}

// ParseValues coerces raw string inputs (plus any uploaded files) into typed
// Values according to the definition. Coercion failures are reported as
// field errors; fields the definition does not declare are ignored.
func (d *Definition) ParseValues(raw map[string]string, files map[string]*FileRef) (Values, []FieldError) {
	vals := make(Values, len(raw))
	var errs []FieldError

	for _, f := range d.Fields() {
		name := f.Common().Name
		switch spec := f.(type) {
		case TextField, TextareaField, SelectField, RadioGroupField:
			if s, ok := raw[name]; ok {
				vals[name] = StringValue(s)
			}
		case PhoneField:
			s, ok := raw[name]
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			normalized, err := NormalizePhone(s, spec.DefaultCallingCode)
			if err != nil {
				errs = append(errs, FieldError{Field: name, Message: err.Error()})
				continue
			}
			vals[name] = StringValue(normalized)
		case DateField:
			s, ok := raw[name]
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			layout := spec.DateLayout()
			if spec.ShowTime {
				layout += " 15:04"
			}
			t, err := time.Parse(layout, strings.TrimSpace(s))
			if err != nil {
				errs = append(errs, FieldError{
					Field:   name,
					Message: fmt.Sprintf("must be a date in %s format", strings.ToUpper(dateFormatHint(spec))),
				})
				continue
			}
			vals[name] = DateValue(t)
		case CheckboxField:
			s, ok := raw[name]
			if !ok {
				continue
			}
			vals[name] = BoolValue(s == "true" || s == "on" || s == "1")
		case FileUploadField:
			if fr, ok := files[name]; ok && fr != nil {
				vals[name] = FileValue(fr)
			}
		default:
			errs = append(errs, FieldError{Field: name, Message: ErrUnknownFieldKind.Error()})
		}
	}

	return vals, errs
}

func dateFormatHint(f DateField) string {
	hint := f.DateLayout()
	replacer := strings.NewReplacer("01", "mm", "02", "dd", "2006", "yyyy")
	return replacer.Replace(hint)
}
