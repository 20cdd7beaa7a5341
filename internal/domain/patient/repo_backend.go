package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/platform/backend"
)

// BackendRepository implements Repository and FileStore against the external
// document database and file bucket.
type BackendRepository struct {
	client       *backend.Client
	databaseID   string
	collectionID string
	bucketID     string
}

func NewBackendRepository(client *backend.Client, databaseID, collectionID, bucketID string) *BackendRepository {
	return &BackendRepository{
		client:       client,
		databaseID:   databaseID,
		collectionID: collectionID,
		bucketID:     bucketID,
	}
}

// document is the collection's attribute layout. Attribute names are part of
// the stored data contract and must not change.
type document struct {
	ID                        string    `json:"$id,omitempty"`
	UserID                    string    `json:"userId"`
	Name                      string    `json:"name"`
	Email                     string    `json:"email"`
	Phone                     string    `json:"phone"`
	BirthDate                 time.Time `json:"birthDate"`
	Gender                    string    `json:"gender"`
	Address                   string    `json:"address"`
	Occupation                string    `json:"occupation"`
	EmergencyContactName      string    `json:"emergencyContactName"`
	EmergencyContactNumber    string    `json:"emergencyContactNumber"`
	PrimaryPhysician          string    `json:"primaryPhysician"`
	InsuranceProvider         string    `json:"insuranceProvider"`
	InsurancePolicyNumber     string    `json:"insurancePolicyNumber"`
	Allergies                 string    `json:"allergies"`
	CurrentMedication         string    `json:"currentMedication"`
	FamilyMedicalHistory      string    `json:"familyMedicalHistory"`
	PastMedicalHistory        string    `json:"pastMedicalHistory"`
	IdentificationType        string    `json:"identificationType"`
	IdentificationNumber      string    `json:"identificationNumber"`
	IdentificationDocumentID  *string   `json:"identificationDocumentId"`
	IdentificationDocumentURL *string   `json:"identificationDocumentUrl"`
	TreatmentConsent          bool      `json:"treatmentConsent"`
	DisclosureConsent         bool      `json:"disclosureConsent"`
	PrivacyConsent            bool      `json:"privacyConsent"`
	CreatedAt                 time.Time `json:"$createdAt,omitempty"`
}

func (r *BackendRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	raw, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, p.ID, toDocument(p))
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return nil, fmt.Errorf("%w: user %s", ErrAlreadyRegistered, p.UserID)
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode created patient: %w", err)
	}
	return fromDocument(&doc), nil
}

func (r *BackendRepository) ListByUserID(ctx context.Context, userID string) ([]*Patient, error) {
	raws, err := r.client.ListDocumentsByField(ctx, r.databaseID, r.collectionID, "userId", userID)
	if err != nil {
		return nil, err
	}
	patients := make([]*Patient, 0, len(raws))
	for _, raw := range raws {
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode patient document: %w", err)
		}
		patients = append(patients, fromDocument(&doc))
	}
	return patients, nil
}

func (r *BackendRepository) Upload(ctx context.Context, filename, mimeType string, content []byte) (string, string, error) {
	fileID := uuid.New().String()
	f, err := r.client.CreateFile(ctx, r.bucketID, fileID, filename, bytes.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("upload identification document: %w", err)
	}
	return f.ID, r.client.FileViewURL(r.bucketID, f.ID), nil
}

func toDocument(p *Patient) *document {
	return &document{
		UserID:                    p.UserID,
		Name:                      p.Name,
		Email:                     p.Email,
		Phone:                     p.Phone,
		BirthDate:                 p.BirthDate,
		Gender:                    p.Gender,
		Address:                   p.Address,
		Occupation:                p.Occupation,
		EmergencyContactName:      p.EmergencyContactName,
		EmergencyContactNumber:    p.EmergencyContactNumber,
		PrimaryPhysician:          p.PrimaryPhysician,
		InsuranceProvider:         p.InsuranceProvider,
		InsurancePolicyNumber:     p.InsurancePolicyNumber,
		Allergies:                 p.Allergies,
		CurrentMedication:         p.CurrentMedication,
		FamilyMedicalHistory:      p.FamilyMedicalHistory,
		PastMedicalHistory:        p.PastMedicalHistory,
		IdentificationType:        p.IdentificationType,
		IdentificationNumber:      p.IdentificationNumber,
		IdentificationDocumentID:  p.IdentificationDocumentID,
		IdentificationDocumentURL: p.IdentificationDocumentURL,
		TreatmentConsent:          p.TreatmentConsent,
		DisclosureConsent:         p.DisclosureConsent,
		PrivacyConsent:            p.PrivacyConsent,
	}
}

func fromDocument(doc *document) *Patient {
	return &Patient{
		ID:                        doc.ID,
		UserID:                    doc.UserID,
		Name:                      doc.Name,
		Email:                     doc.Email,
		Phone:                     doc.Phone,
		BirthDate:                 doc.BirthDate,
		Gender:                    doc.Gender,
		Address:                   doc.Address,
		Occupation:                doc.Occupation,
		EmergencyContactName:      doc.EmergencyContactName,
		EmergencyContactNumber:    doc.EmergencyContactNumber,
		PrimaryPhysician:          doc.PrimaryPhysician,
		InsuranceProvider:         doc.InsuranceProvider,
		InsurancePolicyNumber:     doc.InsurancePolicyNumber,
		Allergies:                 doc.Allergies,
		CurrentMedication:         doc.CurrentMedication,
		FamilyMedicalHistory:      doc.FamilyMedicalHistory,
		PastMedicalHistory:        doc.PastMedicalHistory,
		IdentificationType:        doc.IdentificationType,
		IdentificationNumber:      doc.IdentificationNumber,
		IdentificationDocumentID:  doc.IdentificationDocumentID,
		IdentificationDocumentURL: doc.IdentificationDocumentURL,
		TreatmentConsent:          doc.TreatmentConsent,
		DisclosureConsent:         doc.DisclosureConsent,
		PrivacyConsent:            doc.PrivacyConsent,
		CreatedAt:                 doc.CreatedAt,
	}
}
