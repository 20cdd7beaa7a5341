package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/forms"
	"github.com/intake/intake/internal/platform/audit"
)

type mockRepo struct {
	mu      sync.Mutex
	byID    map[string]*Account
	byEmail map[string]*Account
	failAll bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]*Account),
	}
}

func (m *mockRepo) Create(_ context.Context, acct *Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errors.New("directory down")
	}
	if _, ok := m.byEmail[acct.Email]; ok {
		return nil, ErrEmailTaken
	}
	cp := *acct
	m.byID[cp.ID] = &cp
	m.byEmail[cp.Email] = &cp
	return &cp, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errors.New("directory down")
	}
	acct, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acct, nil
}

func (m *mockRepo) FindByEmail(_ context.Context, email string) ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errors.New("directory down")
	}
	if acct, ok := m.byEmail[email]; ok {
		return []*Account{acct}, nil
	}
	return nil, nil
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

func newTestService() (*Service, *mockRepo, *mockAuditRepo) {
	repo := newMockRepo()
	auditRepo := &mockAuditRepo{}
	svc := NewService(repo, audit.NewRecorder(auditRepo, zerolog.Nop()), zerolog.Nop())
	return svc, repo, auditRepo
}

func validInput() CreateInput {
	return CreateInput{Name: "John Doe", Email: "john@example.com", Phone: "(555) 123-4567"}
}

func TestCreate_Success(t *testing.T) {
	svc, _, auditRepo := newTestService()

	acct, created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created {
		t.Error("expected created=true for a fresh email")
	}
	if acct.ID == "" {
		t.Error("expected a generated account ID")
	}
	if acct.Phone != "+15551234567" {
		t.Errorf("phone = %q, want normalized +15551234567", acct.Phone)
	}
	if len(auditRepo.events) != 1 || auditRepo.events[0].Kind != audit.KindUserCreated {
		t.Errorf("expected one user.created audit event, got %+v", auditRepo.events)
	}
}

func TestCreate_DuplicateEmailResolvesExisting(t *testing.T) {
	svc, _, auditRepo := newTestService()

	first, _, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	second, created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if created {
		t.Error("expected created=false for duplicate email")
	}
	if second.ID != first.ID {
		t.Errorf("expected existing account %s, got %s", first.ID, second.ID)
	}
	if len(auditRepo.events) != 2 || auditRepo.events[1].Kind != audit.KindUserMatched {
		t.Errorf("expected a user.matched audit event, got %+v", auditRepo.events)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc, repo, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"missing name", func(in *CreateInput) { in.Name = "" }, "name"},
		{"short name", func(in *CreateInput) { in.Name = "J" }, "name"},
		{"bad email", func(in *CreateInput) { in.Email = "not-an-email" }, "email"},
		{"bad phone", func(in *CreateInput) { in.Phone = "12" }, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, _, err := svc.Create(context.Background(), in)
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
				t.Errorf("expected error on field %q, got %+v", tt.field, verr.Fields)
			}
		})
	}
	if len(repo.byID) != 0 {
		t.Errorf("expected no accounts created on validation failure, got %d", len(repo.byID))
	}
}

func TestCreate_DirectoryFailure(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failAll = true

	_, _, err := svc.Create(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error when directory is down")
	}
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		t.Error("directory failure must not surface as a validation error")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	svc, _, _ := newTestService()

	acct, _, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "john@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}
