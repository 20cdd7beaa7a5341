package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/domain/patient"
	"github.com/intake/intake/internal/forms"
	"github.com/intake/intake/internal/platform/audit"
)

// PatientLookup is the slice of the patient service booking needs.
type PatientLookup interface {
	GetByUserID(ctx context.Context, userID string) (*patient.Patient, error)
}

// CreateInput carries one booking request.
type CreateInput struct {
	UserID           string    `json:"user_id"`
	PrimaryPhysician string    `json:"primary_physician"`
	Schedule         time.Time `json:"schedule"`
	Reason           string    `json:"reason"`
	Note             string    `json:"note"`
}

type Service struct {
	repo     Repository
	patients PatientLookup
	recorder *audit.Recorder
	logger   zerolog.Logger
	nowFunc  func() time.Time
}

func NewService(repo Repository, patients PatientLookup, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		recorder: recorder,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Create books a pending appointment for a registered patient.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	var errs []forms.FieldError
	if strings.TrimSpace(in.UserID) == "" {
		errs = append(errs, forms.FieldError{Field: "user_id", Message: "user_id is required"})
	}
	if !physicianKnown(in.PrimaryPhysician) {
		errs = append(errs, forms.FieldError{Field: "primary_physician", Message: "is not one of the allowed choices"})
	}
	if in.Schedule.IsZero() {
		errs = append(errs, forms.FieldError{Field: "schedule", Message: "schedule is required"})
	} else if !in.Schedule.After(s.nowFunc()) {
		errs = append(errs, forms.FieldError{Field: "schedule", Message: "must be in the future"})
	}
	if strings.TrimSpace(in.Reason) == "" {
		errs = append(errs, forms.FieldError{Field: "reason", Message: "reason is required"})
	}
	if len(errs) > 0 {
		return nil, &forms.ValidationError{Fields: errs}
	}

	p, err := s.patients.GetByUserID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, in.UserID)
		}
		return nil, err
	}

	a := &Appointment{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		PatientID:        p.ID,
		PrimaryPhysician: in.PrimaryPhysician,
		Schedule:         in.Schedule.UTC(),
		Reason:           strings.TrimSpace(in.Reason),
		Note:             strings.TrimSpace(in.Note),
		Status:           StatusPending,
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.KindAppointmentBooked, "new-appointment", created.ID, "")
	return created, nil
}

// ListByUser returns the user's appointments, newest schedule first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Appointment, error) {
	appts, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].Schedule.After(appts[j].Schedule)
	})
	return appts, nil
}

func physicianKnown(name string) bool {
	for _, opt := range forms.Physicians {
		if opt.Value == name {
			return true
		}
	}
	return false
}
