package patient

import "time"

// Patient is one registration record. A user has at most one; the record
// carries everything the registration form collects.
type Patient struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`

	Address                string `json:"address,omitempty"`
	Occupation             string `json:"occupation,omitempty"`
	EmergencyContactName   string `json:"emergency_contact_name,omitempty"`
	EmergencyContactNumber string `json:"emergency_contact_number,omitempty"`

	PrimaryPhysician      string `json:"primary_physician"`
	InsuranceProvider     string `json:"insurance_provider,omitempty"`
	InsurancePolicyNumber string `json:"insurance_policy_number,omitempty"`
	Allergies             string `json:"allergies,omitempty"`
	CurrentMedication     string `json:"current_medication,omitempty"`
	FamilyMedicalHistory  string `json:"family_medical_history,omitempty"`
	PastMedicalHistory    string `json:"past_medical_history,omitempty"`

	IdentificationType   string `json:"identification_type,omitempty"`
	IdentificationNumber string `json:"identification_number,omitempty"`

	// Both are nil when no document was uploaded. They are set together.
	IdentificationDocumentID  *string `json:"identification_document_id"`
	IdentificationDocumentURL *string `json:"identification_document_url"`

	TreatmentConsent  bool `json:"treatment_consent"`
	DisclosureConsent bool `json:"disclosure_consent"`
	PrivacyConsent    bool `json:"privacy_consent"`

	CreatedAt time.Time `json:"created_at"`
}
