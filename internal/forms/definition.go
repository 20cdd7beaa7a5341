package forms

import "fmt"

// Section groups related fields under a heading.
type Section struct {
	Key    string
	Title  string
	Fields []FieldSpec
}

// Definition declares one form: its ordered sections, fields, and defaults.
// Definitions are immutable after construction.
type Definition struct {
	Name     string
	Title    string
	Sections []Section
	defaults Values
}

// Built-in form names.
const (
	IntakeFormName       = "patient-intake"
	RegistrationFormName = "patient-registration"
)

// GenderOptions is the closed set of gender choices on the registration form.
var GenderOptions = []Option{
	{Value: "Male", Label: "Male"},
	{Value: "Female", Label: "Female"},
	{Value: "Other", Label: "Other"},
}

// IdentificationTypes lists the accepted identification document types.
var IdentificationTypes = []Option{
	{Value: "Birth Certificate", Label: "Birth Certificate"},
	{Value: "Driver's License", Label: "Driver's License"},
	{Value: "Medical Insurance Card/Policy", Label: "Medical Insurance Card/Policy"},
	{Value: "Military ID Card", Label: "Military ID Card"},
	{Value: "National Identity Card", Label: "National Identity Card"},
	{Value: "Passport", Label: "Passport"},
	{Value: "Resident Alien Card (Green Card)", Label: "Resident Alien Card (Green Card)"},
	{Value: "Social Security Card", Label: "Social Security Card"},
	{Value: "State ID Card", Label: "State ID Card"},
	{Value: "Student ID Card", Label: "Student ID Card"},
	{Value: "Voter ID Card", Label: "Voter ID Card"},
}

// Physicians is the selectable primary physician list. Supplied externally
// in principle; fixed here until a practitioner directory exists.
var Physicians = []Option{
	{Value: "John Green", Label: "Dr. John Green", Image: "/assets/images/dr-green.png"},
	{Value: "Leila Cameron", Label: "Dr. Leila Cameron", Image: "/assets/images/dr-cameron.png"},
	{Value: "David Livingston", Label: "Dr. David Livingston", Image: "/assets/images/dr-livingston.png"},
	{Value: "Evan Peter", Label: "Dr. Evan Peter", Image: "/assets/images/dr-peter.png"},
	{Value: "Jane Powell", Label: "Dr. Jane Powell", Image: "/assets/images/dr-powell.png"},
	{Value: "Alex Ramirez", Label: "Dr. Alex Ramirez", Image: "/assets/images/dr-ramirez.png"},
	{Value: "Jasmine Lee", Label: "Dr. Jasmine Lee", Image: "/assets/images/dr-lee.png"},
	{Value: "Alyana Cruz", Label: "Dr. Alyana Cruz", Image: "/assets/images/dr-cruz.png"},
	{Value: "Hardik Sharma", Label: "Dr. Hardik Sharma", Image: "/assets/images/dr-sharma.png"},
}

const defaultCallingCode = "+1"

// MaxIdentificationFileSize bounds the uploaded identification document.
const MaxIdentificationFileSize = 10 * 1024 * 1024

// Intake returns the short intake form: name, email, phone.
func Intake() *Definition {
	return &Definition{
		Name:  IntakeFormName,
		Title: "Schedule your first appointment",
		Sections: []Section{
			{
				Key:   "identity",
				Title: "Personal Information",
				Fields: []FieldSpec{
					TextField{Meta: Meta{Name: "name", Label: "Full Name", Placeholder: "John Doe", Required: true}, Icon: "user", MinLen: 2, MaxLen: 50},
					TextField{Meta: Meta{Name: "email", Label: "Email", Placeholder: "johndoe@example.com", Required: true}, Icon: "email", Email: true},
					PhoneField{Meta: Meta{Name: "phone", Label: "Phone Number", Placeholder: "+1 555 123 4567", Required: true}, DefaultCallingCode: defaultCallingCode},
				},
			},
		},
	}
}

// Registration returns the long patient registration form: demographics,
// medical history, identification, consent.
func Registration() *Definition {
	d := &Definition{
		Name:  RegistrationFormName,
		Title: "Patient Registration",
		Sections: []Section{
			{
				Key:   "identity",
				Title: "Personal Information",
				Fields: []FieldSpec{
					TextField{Meta: Meta{Name: "name", Label: "Full Name", Placeholder: "John Doe", Required: true}, Icon: "user", MinLen: 2, MaxLen: 50},
					TextField{Meta: Meta{Name: "email", Label: "Email", Placeholder: "johndoe@example.com", Required: true}, Icon: "email", Email: true},
					PhoneField{Meta: Meta{Name: "phone", Label: "Phone Number", Placeholder: "+1 555 123 4567", Required: true}, DefaultCallingCode: defaultCallingCode},
					DateField{Meta: Meta{Name: "birthDate", Label: "Date of Birth", Required: true}},
					RadioGroupField{Meta: Meta{Name: "gender", Label: "Gender", Required: true}, Options: GenderOptions},
					TextField{Meta: Meta{Name: "address", Label: "Address", Placeholder: "14th Street, New York"}, MaxLen: 500},
					TextField{Meta: Meta{Name: "occupation", Label: "Occupation", Placeholder: "Software Engineer"}, MaxLen: 500},
					TextField{Meta: Meta{Name: "emergencyContactName", Label: "Emergency Contact Name", Placeholder: "Guardian's name"}, MinLen: 2, MaxLen: 50},
					PhoneField{Meta: Meta{Name: "emergencyContactNumber", Label: "Emergency Phone Number", Placeholder: "+1 555 123 4567"}, DefaultCallingCode: defaultCallingCode},
				},
			},
			{
				Key:   "medical",
				Title: "Medical Information",
				Fields: []FieldSpec{
					SelectField{Meta: Meta{Name: "primaryPhysician", Label: "Primary Physician", Placeholder: "Select a physician", Required: true}, Options: Physicians},
					TextField{Meta: Meta{Name: "insuranceProvider", Label: "Insurance Provider", Placeholder: "BlueCross BlueShield"}, MaxLen: 50},
					TextField{Meta: Meta{Name: "insurancePolicyNumber", Label: "Insurance Policy Number", Placeholder: "ABC123456789"}, MaxLen: 50},
					TextareaField{Meta: Meta{Name: "allergies", Label: "Allergies (if any)", Placeholder: "Peanuts, Penicillin, Pollen"}, MaxLen: 2000},
					TextareaField{Meta: Meta{Name: "currentMedication", Label: "Current Medication (if any)", Placeholder: "Ibuprofen 200mg"}, MaxLen: 2000},
					TextareaField{Meta: Meta{Name: "familyMedicalHistory", Label: "Family Medical History", Placeholder: "Mother had diabetes"}, MaxLen: 2000},
					TextareaField{Meta: Meta{Name: "pastMedicalHistory", Label: "Past Medical History", Placeholder: "Appendectomy"}, MaxLen: 2000},
				},
			},
			{
				Key:   "identification",
				Title: "Identification and Verification",
				Fields: []FieldSpec{
					SelectField{Meta: Meta{Name: "identificationType", Label: "Identification Type", Placeholder: "Select an identification type"}, Options: IdentificationTypes},
					TextField{Meta: Meta{Name: "identificationNumber", Label: "Identification Number", Placeholder: "1234567890"}, MaxLen: 50},
					FileUploadField{
						Meta:         Meta{Name: "identificationDocument", Label: "Scanned copy of identification document"},
						MaxSizeBytes: MaxIdentificationFileSize,
						AcceptedMIME: []string{"image/png", "image/jpeg", "application/pdf"},
					},
				},
			},
			{
				Key:   "consent",
				Title: "Consent and Privacy",
				Fields: []FieldSpec{
					CheckboxField{Meta: Meta{Name: "treatmentConsent", Label: "I consent to receive treatment for my health condition."}},
					CheckboxField{Meta: Meta{Name: "disclosureConsent", Label: "I consent to the use and disclosure of my health information for treatment purposes."}},
					CheckboxField{Meta: Meta{Name: "privacyConsent", Label: "I acknowledge that I have reviewed and agree to the privacy policy", Required: true}, MustBeTrue: true},
				},
			},
		},
	}
	d.defaults = Values{
		"gender":             StringValue("Male"),
		"identificationType": StringValue("Birth Certificate"),
		"primaryPhysician":   StringValue(""),
		"treatmentConsent":   BoolValue(false),
		"disclosureConsent":  BoolValue(false),
		"privacyConsent":     BoolValue(false),
	}
	return d
}

// Lookup returns a built-in definition by name.
func Lookup(name string) (*Definition, error) {
	switch name {
	case IntakeFormName:
		return Intake(), nil
	case RegistrationFormName:
		return Registration(), nil
	default:
		return nil, fmt.Errorf("unknown form %q", name)
	}
}

// Names lists the built-in form names.
func Names() []string {
	return []string{IntakeFormName, RegistrationFormName}
}

// Fields returns the definition's fields in declaration order.
func (d *Definition) Fields() []FieldSpec {
	var out []FieldSpec
	for _, s := range d.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

// Field returns the named field spec.
func (d *Definition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields() {
		if f.Common().Name == name {
			return f, true
		}
	}
	return nil, false
}

// Defaults returns a fresh copy of the definition's default values.
func (d *Definition) Defaults() Values {
	out := make(Values, len(d.defaults))
	for k, v := range d.defaults {
		out[k] = v
	}
	return out
}
