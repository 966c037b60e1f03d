package participation

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
)

type UpdateStatusCmd struct {
	ActorID    string
	EventID    string
	RequestIDs []string
	Status     domain.RequestStatus
}

// UpdateRequestStatus confirms or rejects a batch of pending requests of one event.
// Confirmations past the participant limit are rejected instead.
func (s *Service) UpdateRequestStatus(ctx context.Context, cmd UpdateStatusCmd) (domain.StatusDecision, error) {
	if cmd.Status != domain.RequestConfirmed && cmd.Status != domain.RequestRejected {
		return domain.StatusDecision{}, domain.ErrValidationMeta("invalid status", map[string]string{
			"status": "must be one of: CONFIRMED, REJECTED",
		})
	}
	ids := dedupe(cmd.RequestIDs)
	if len(ids) == 0 {
		return domain.StatusDecision{}, domain.ErrValidationMeta("invalid field", map[string]string{
			"requestIds": "must not be empty",
		})
	}

	now := s.clock.Now().UTC()
	var out domain.StatusDecision

	err := s.repo.WithTx(ctx, func(r TxRepo) error {
		ev, err := r.GetEventForUpdate(ctx, cmd.EventID)
		if err != nil {
			return err
		}
		if ev.InitiatorID != cmd.ActorID {
			return domain.ErrForbidden("only the initiator can moderate requests")
		}

		found, err := r.GetRequestsByIDs(ctx, cmd.EventID, ids)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return domain.ErrNotFound("requests not found")
		}
		reqs := inInputOrder(ids, found)

		confirmed, err := r.CountConfirmed(ctx, cmd.EventID)
		if err != nil {
			return err
		}
		d, err := domain.PlanStatusUpdate(ev, reqs, cmd.Status, confirmed, now)
		if err != nil {
			return err
		}

		changed := d.Changed()
		if err := r.UpdateStatuses(ctx, changed); err != nil {
			return err
		}
		for _, req := range changed {
			if err := writeOutbox(ctx, r, routingKeyFor(req.Status), req, now); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return domain.StatusDecision{}, err
	}

	metrics.RecordStatusDecisions(string(domain.RequestConfirmed), len(out.Confirmed))
	metrics.RecordStatusDecisions(string(domain.RequestRejected), len(out.Rejected))
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// inInputOrder reorders found to follow ids; the store does not guarantee order.
func inInputOrder(ids []string, found []*domain.ParticipationRequest) []*domain.ParticipationRequest {
	byID := make(map[string]*domain.ParticipationRequest, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	out := make([]*domain.ParticipationRequest, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
