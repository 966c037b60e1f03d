package domain

import "time"

// StatusDecision is the outcome of a batch status update.
type StatusDecision struct {
	Confirmed []*ParticipationRequest
	Rejected  []*ParticipationRequest
}

// Changed returns every request touched by the decision, confirmed first.
func (d StatusDecision) Changed() []*ParticipationRequest {
	out := make([]*ParticipationRequest, 0, len(d.Confirmed)+len(d.Rejected))
	out = append(out, d.Confirmed...)
	return append(out, d.Rejected...)
}

// PlanStatusUpdate applies target to reqs in order against e's participant limit.
// confirmed is the event's confirmed count before the batch. Nothing is mutated
// unless every precondition holds. Confirmations beyond the remaining capacity
// are turned into rejections.
func PlanStatusUpdate(e *Event, reqs []*ParticipationRequest, target RequestStatus, confirmed int, now time.Time) (StatusDecision, error) {
	if target != RequestConfirmed && target != RequestRejected {
		return StatusDecision{}, ErrValidationMeta("invalid status", map[string]string{
			"status": "must be one of: CONFIRMED, REJECTED",
		})
	}
	for _, r := range reqs {
		if r.Status != RequestPending {
			return StatusDecision{}, ErrConflict("request must have status PENDING")
		}
	}
	if target == RequestConfirmed && !e.HasCapacity(confirmed) {
		return StatusDecision{}, ErrConflict("participant limit reached")
	}

	t := now.UTC()
	var d StatusDecision
	for _, r := range reqs {
		r.UpdatedAt = t
		if target == RequestConfirmed && e.HasCapacity(confirmed) {
			r.Status = RequestConfirmed
			confirmed++
			d.Confirmed = append(d.Confirmed, r)
			continue
		}
		r.Status = RequestRejected
		d.Rejected = append(d.Rejected, r)
	}
	return d, nil
}
