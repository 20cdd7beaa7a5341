package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/domain/patient"
	"github.com/intake/intake/internal/forms"
	"github.com/intake/intake/internal/platform/audit"
)

type mockRepo struct {
	mu     sync.Mutex
	byUser map[string][]*Appointment
	fail   error
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	cp := *a
	cp.CreatedAt = time.Now().UTC()
	m.byUser[a.UserID] = append(m.byUser[a.UserID], &cp)
	return &cp, nil
}

func (m *mockRepo) ListByUserID(_ context.Context, userID string) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return m.byUser[userID], nil
}

type mockPatients struct {
	byUser map[string]*patient.Patient
}

func (m *mockPatients) GetByUserID(_ context.Context, userID string) (*patient.Patient, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

type mockAuditRepo struct {
	mu     sync.Mutex
	events []*audit.SubmissionEvent
}

func (m *mockAuditRepo) Insert(_ context.Context, e *audit.SubmissionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, limit, offset int) ([]*audit.SubmissionEvent, int, error) {
	return m.events, len(m.events), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{byUser: make(map[string][]*Appointment)}
	patients := &mockPatients{byUser: map[string]*patient.Patient{
		"user-1": {ID: "patient-1", UserID: "user-1"},
	}}
	svc := NewService(repo, patients, audit.NewRecorder(&mockAuditRepo{}, zerolog.Nop()), zerolog.Nop())
	return svc, repo
}

func validInput() CreateInput {
	return CreateInput{
		UserID:           "user-1",
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(48 * time.Hour),
		Reason:           "Annual check-up",
	}
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("status = %q, want pending", a.Status)
	}
	if a.PatientID != "patient-1" {
		t.Errorf("patient_id = %q", a.PatientID)
	}
	if a.ID == "" {
		t.Error("expected generated appointment ID")
	}
}

func TestCreate_RequiresRegistration(t *testing.T) {
	svc, _ := newTestService()

	in := validInput()
	in.UserID = "unregistered"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"unknown physician", func(in *CreateInput) { in.PrimaryPhysician = "Dr. Nobody" }, "primary_physician"},
		{"past schedule", func(in *CreateInput) { in.Schedule = time.Now().Add(-time.Hour) }, "schedule"},
		{"zero schedule", func(in *CreateInput) { in.Schedule = time.Time{} }, "schedule"},
		{"missing reason", func(in *CreateInput) { in.Reason = "  " }, "reason"},
		{"missing user", func(in *CreateInput) { in.UserID = "" }, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			var verr *forms.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Fields {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %+v", tt.field, verr.Fields)
			}
		})
	}
}

func TestListByUser_SortedNewestFirst(t *testing.T) {
	svc, repo := newTestService()

	early := time.Now().Add(24 * time.Hour)
	late := time.Now().Add(72 * time.Hour)
	repo.byUser["user-1"] = []*Appointment{
		{ID: "a-early", UserID: "user-1", Schedule: early},
		{ID: "a-late", UserID: "user-1", Schedule: late},
	}

	appts, err := svc.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(appts) != 2 || appts[0].ID != "a-late" {
		t.Errorf("expected latest schedule first, got %+v", appts)
	}
}

func TestListByUser_Empty(t *testing.T) {
	svc, _ := newTestService()

	appts, err := svc.ListByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("expected empty list, got %d", len(appts))
	}
}
