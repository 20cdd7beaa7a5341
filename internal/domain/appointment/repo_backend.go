package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/intake/intake/internal/platform/backend"
)

// BackendRepository implements Repository against the external document
// database.
type BackendRepository struct {
	client       *backend.Client
	databaseID   string
	collectionID string
}

func NewBackendRepository(client *backend.Client, databaseID, collectionID string) *BackendRepository {
	return &BackendRepository{client: client, databaseID: databaseID, collectionID: collectionID}
}

type document struct {
	ID                 string    `json:"$id,omitempty"`
	UserID             string    `json:"userId"`
	PatientID          string    `json:"patientId"`
	PrimaryPhysician   string    `json:"primaryPhysician"`
	Schedule           time.Time `json:"schedule"`
	Reason             string    `json:"reason"`
	Note               string    `json:"note"`
	Status             string    `json:"status"`
	CancellationReason string    `json:"cancellationReason"`
	CreatedAt          time.Time `json:"$createdAt,omitempty"`
}

func (r *BackendRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	doc := &document{
		UserID:             a.UserID,
		PatientID:          a.PatientID,
		PrimaryPhysician:   a.PrimaryPhysician,
		Schedule:           a.Schedule,
		Reason:             a.Reason,
		Note:               a.Note,
		Status:             a.Status,
		CancellationReason: a.CancellationReason,
	}
	raw, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, a.ID, doc)
	if err != nil {
		return nil, err
	}
	var created document
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("decode created appointment: %w", err)
	}
	return fromDocument(&created), nil
}

func (r *BackendRepository) ListByUserID(ctx context.Context, userID string) ([]*Appointment, error) {
	raws, err := r.client.ListDocumentsByField(ctx, r.databaseID, r.collectionID, "userId", userID)
	if err != nil {
		return nil, err
	}
	appts := make([]*Appointment, 0, len(raws))
	for _, raw := range raws {
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode appointment document: %w", err)
		}
		appts = append(appts, fromDocument(&doc))
	}
	return appts, nil
}

func fromDocument(doc *document) *Appointment {
	return &Appointment{
		ID:                 doc.ID,
		UserID:             doc.UserID,
		PatientID:          doc.PatientID,
		PrimaryPhysician:   doc.PrimaryPhysician,
		Schedule:           doc.Schedule,
		Reason:             doc.Reason,
		Note:               doc.Note,
		Status:             doc.Status,
		CancellationReason: doc.CancellationReason,
		CreatedAt:          doc.CreatedAt,
	}
}
