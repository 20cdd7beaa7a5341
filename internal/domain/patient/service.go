package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/domain/user"
	"github.com/intake/intake/internal/forms"
	"github.com/intake/intake/internal/platform/audit"
)

// AccountDirectory is the slice of the user directory registration needs.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*user.Account, error)
}

// RegisterInput carries one registration form submission. Document is nil
// when the visitor skipped the upload.
type RegisterInput struct {
	Fields   map[string]string
	Document *forms.FileRef
}

type Service struct {
	repo     Repository
	files    FileStore
	accounts AccountDirectory
	recorder *audit.Recorder
	logger   zerolog.Logger
}

func NewService(repo Repository, files FileStore, accounts AccountDirectory, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, files: files, accounts: accounts, recorder: recorder, logger: logger}
}

// Register validates the submission, uploads the identification document when
// one is present, and creates the patient record. The upload happens before
// document creation so a record never references a file that does not exist.
func (s *Service) Register(ctx context.Context, userID string, in RegisterInput) (*Patient, error) {
	if _, err := s.accounts.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserUnknown, userID)
		}
		return nil, err
	}

	def := forms.Registration()
	var files map[string]*forms.FileRef
	if in.Document != nil {
		files = map[string]*forms.FileRef{"identificationDocument": in.Document}
	}
	vals, parseErrs := def.ParseValues(in.Fields, files)
	if errs := append(parseErrs, def.Validate(vals)...); len(errs) > 0 {
		s.recorder.Record(ctx, audit.KindSubmissionRejected, forms.RegistrationFormName, userID, fmt.Sprintf("%d field errors", len(errs)))
		return nil, &forms.ValidationError{Fields: errs}
	}

	existing, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: user %s", ErrAlreadyRegistered, userID)
	}

	p := &Patient{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		Name:                   vals.Get("name").Str(),
		Email:                  vals.Get("email").Str(),
		Phone:                  vals.Get("phone").Str(),
		BirthDate:              vals.Get("birthDate").Date(),
		Gender:                 vals.Get("gender").Str(),
		Address:                vals.Get("address").Str(),
		Occupation:             vals.Get("occupation").Str(),
		EmergencyContactName:   vals.Get("emergencyContactName").Str(),
		EmergencyContactNumber: vals.Get("emergencyContactNumber").Str(),
		PrimaryPhysician:       vals.Get("primaryPhysician").Str(),
		InsuranceProvider:      vals.Get("insuranceProvider").Str(),
		InsurancePolicyNumber:  vals.Get("insurancePolicyNumber").Str(),
		Allergies:              vals.Get("allergies").Str(),
		CurrentMedication:      vals.Get("currentMedication").Str(),
		FamilyMedicalHistory:   vals.Get("familyMedicalHistory").Str(),
		PastMedicalHistory:     vals.Get("pastMedicalHistory").Str(),
		IdentificationType:     vals.Get("identificationType").Str(),
		IdentificationNumber:   vals.Get("identificationNumber").Str(),
		TreatmentConsent:       vals.Get("treatmentConsent").Bool(),
		DisclosureConsent:      vals.Get("disclosureConsent").Bool(),
		PrivacyConsent:         vals.Get("privacyConsent").Bool(),
	}

	if doc := vals.Get("identificationDocument").File(); doc != nil {
		fileID, viewURL, err := s.files.Upload(ctx, doc.Filename, doc.MIMEType, doc.Content)
		if err != nil {
			return nil, err
		}
		p.IdentificationDocumentID = &fileID
		p.IdentificationDocumentURL = &viewURL
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.KindPatientRegistered, forms.RegistrationFormName, created.ID, "")
	return created, nil
}

// GetByUserID returns the user's registration. When duplicates exist the
// newest record wins and the anomaly is logged.
func (s *Service) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	patients, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	newest := patients[0]
	for _, p := range patients[1:] {
		if p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	if len(patients) > 1 {
		s.logger.Warn().
			Str("user_id", userID).
			Int("count", len(patients)).
			Msg("multiple patient records for one user")
	}
	return newest, nil
}
