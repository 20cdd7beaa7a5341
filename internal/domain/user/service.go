package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/forms"
	"github.com/intake/intake/internal/platform/audit"
)

// CreateInput carries the intake form submission.
type CreateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Service struct {
	repo     Repository
	recorder *audit.Recorder
	logger   zerolog.Logger
}

func NewService(repo Repository, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// Create registers an account for the submitted intake form. Submitting the
// same email twice resolves to the existing account rather than an error, so
// a visitor who abandons the flow can come back and start over. The second
// return value reports whether a new account was created.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Account, bool, error) {
	def := forms.Intake()
	vals, parseErrs := def.ParseValues(map[string]string{
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	}, nil)
	if errs := append(parseErrs, def.Validate(vals)...); len(errs) > 0 {
		return nil, false, &forms.ValidationError{Fields: errs}
	}

	acct := &Account{
		ID:    uuid.New().String(),
		Name:  vals.Get("name").Str(),
		Email: vals.Get("email").Str(),
		Phone: vals.Get("phone").Str(),
	}

	created, err := s.repo.Create(ctx, acct)
	if err == nil {
		s.recorder.Record(ctx, audit.KindUserCreated, forms.IntakeFormName, created.ID, "")
		return created, true, nil
	}
	if !errors.Is(err, ErrEmailTaken) {
		return nil, false, err
	}

	existing, ferr := s.repo.FindByEmail(ctx, acct.Email)
	if ferr != nil {
		return nil, false, ferr
	}
	if len(existing) == 0 {
		return nil, false, err
	}
	s.logger.Info().
		Str("user_id", existing[0].ID).
		Msg("intake resolved to existing account")
	s.recorder.Record(ctx, audit.KindUserMatched, forms.IntakeFormName, existing[0].ID, "")
	return existing[0], false, nil
}

// Get fetches one account by ID.
func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}
