package participation

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
)

// CancelRequest withdraws the requester's own request. Canceling twice is a no-op.
func (s *Service) CancelRequest(ctx context.Context, requesterID, requestID string) (*domain.ParticipationRequest, error) {
	if err := s.ensureUser(ctx, requesterID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	var (
		out     *domain.ParticipationRequest
		changed bool
	)

	err := s.repo.WithTx(ctx, func(r TxRepo) error {
		req, err := r.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requesterID {
			return domain.ErrForbidden("request belongs to another user")
		}
		out = req
		if changed = req.Cancel(now); !changed {
			return nil
		}
		if err := r.UpdateStatuses(ctx, []*domain.ParticipationRequest{req}); err != nil {
			return err
		}
		return writeOutbox(ctx, r, routingKeyFor(req.Status), req, now)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.RecordRequestCanceled()
	}
	return out, nil
}
