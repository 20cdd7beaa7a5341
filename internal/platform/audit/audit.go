package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event kinds recorded by the intake pipeline.
const (
	KindUserCreated        = "user.created"
	KindUserMatched        = "user.matched"
	KindPatientRegistered  = "patient.registered"
	KindAppointmentBooked  = "appointment.booked"
	KindSubmissionRejected = "submission.rejected"
)

// SubmissionEvent is one row of the local audit trail. SubjectID is the
// upstream document or account ID the event refers to.
type SubmissionEvent struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id"`
	Kind      string    `json:"kind"`
	FormName  string    `json:"form_name"`
	SubjectID string    `json:"subject_id"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists submission events.
type Repository interface {
	Insert(ctx context.Context, event *SubmissionEvent) error
	List(ctx context.Context, limit, offset int) ([]*SubmissionEvent, int, error)
}

// Recorder writes audit events without ever failing the request that
// produced them. Persistence errors are logged and dropped.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record stores one event. The request ID is read from the context value set
// by the request middleware when present.
func (r *Recorder) Record(ctx context.Context, kind, formName, subjectID, detail string) {
	if r == nil || r.repo == nil {
		return
	}
	event := &SubmissionEvent{
		ID:        uuid.New(),
		RequestID: RequestIDFromContext(ctx),
		Kind:      kind,
		FormName:  formName,
		SubjectID: subjectID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Insert(ctx, event); err != nil {
		r.logger.Warn().
			Err(err).
			Str("kind", kind).
			Str("subject_id", subjectID).
			Msg("audit event dropped")
	}
}

type contextKey struct{}

// WithRequestID tags the context with the request correlation ID so events
// recorded deeper in the call chain carry it.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, contextKey{}, rid)
}

// RequestIDFromContext returns the correlation ID or "".
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(contextKey{}).(string)
	return rid
}
