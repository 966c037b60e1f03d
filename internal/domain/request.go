package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipationRequest struct {
	ID          string
	EventID     string
	RequesterID string
	Status      RequestStatus
	Created     time.Time
	UpdatedAt   time.Time
}

// Admit checks whether requesterID may join e and builds the new request.
// hasActive reports an existing non-canceled request of the same requester.
// confirmed is the current confirmed count of e.
func (e *Event) Admit(requesterID string, hasActive bool, confirmed int, now time.Time) (*ParticipationRequest, error) {
	if e.State != StatePublished {
		return nil, ErrConflict("cannot request unpublished event")
	}
	if e.InitiatorID == requesterID {
		return nil, ErrConflict("initiator cannot request own event")
	}
	if hasActive {
		return nil, ErrConflict("duplicate request")
	}
	if !e.HasCapacity(confirmed) {
		return nil, ErrConflict("participant limit reached")
	}

	status := RequestPending
	if e.AutoConfirms() {
		status = RequestConfirmed
	}
	t := now.UTC()
	return &ParticipationRequest{
		ID:          uuid.NewString(),
		EventID:     e.ID,
		RequesterID: requesterID,
		Status:      status,
		Created:     t,
		UpdatedAt:   t,
	}, nil
}

// Cancel moves the request to CANCELED from any status. It returns false when it already was.
func (r *ParticipationRequest) Cancel(now time.Time) bool {
	if r.Status == RequestCanceled {
		return false
	}
	r.Status = RequestCanceled
	r.UpdatedAt = now.UTC()
	return true
}
