package participation

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
)

// CreateRequest admits requesterID to eventID. The capacity check and the insert
// happen under the event row lock.
func (s *Service) CreateRequest(ctx context.Context, requesterID, eventID string) (*domain.ParticipationRequest, error) {
	if err := s.ensureUser(ctx, requesterID); err != nil {
		metrics.RecordAdmissionRejected(string(domain.CodeOf(err)))
		return nil, err
	}

	now := s.clock.Now().UTC()
	var out *domain.ParticipationRequest

	err := s.repo.WithTx(ctx, func(r TxRepo) error {
		ev, err := r.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		// cheap checks first, before the counting queries
		if !ev.IsPublished() {
			return domain.ErrConflict("cannot request unpublished event")
		}
		if ev.InitiatorID == requesterID {
			return domain.ErrConflict("initiator cannot request own event")
		}

		active, err := r.ExistsActive(ctx, requesterID, eventID)
		if err != nil {
			return err
		}
		confirmed, err := r.CountConfirmed(ctx, eventID)
		if err != nil {
			return err
		}
		req, err := ev.Admit(requesterID, active, confirmed, now)
		if err != nil {
			return err
		}

		if err := r.InsertRequest(ctx, req); err != nil {
			return err
		}
		if err := writeOutbox(ctx, r, messaging.RKRequestCreated, req, now); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		metrics.RecordAdmissionRejected(string(domain.CodeOf(err)))
		return nil, err
	}

	metrics.RecordRequestCreated(string(out.Status))
	return out, nil
}
