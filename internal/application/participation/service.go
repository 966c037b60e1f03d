package participation

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Service is the admission controller for participation requests.
type Service struct {
	repo  Repo
	dir   Directory
	clock Clock
}

func New(repo Repo, dir Directory, clock Clock) *Service {
	return &Service{repo: repo, dir: dir, clock: clock}
}

func (s *Service) ensureUser(ctx context.Context, id string) error {
	ok, err := s.dir.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound("user not found")
	}
	return nil
}

func routingKeyFor(st domain.RequestStatus) string {
	switch st {
	case domain.RequestConfirmed:
		return messaging.RKRequestConfirmed
	case domain.RequestRejected:
		return messaging.RKRequestRejected
	case domain.RequestCanceled:
		return messaging.RKRequestCanceled
	default:
		return messaging.RKRequestCreated
	}
}

func writeOutbox(ctx context.Context, r TxRepo, routingKey string, req *domain.ParticipationRequest, now time.Time) error {
	msg, err := messaging.NewOutboxMessage(ctx, routingKey, messaging.RequestStatusPayload{
		RequestID:   req.ID,
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Status:      string(req.Status),
	}, now)
	if err != nil {
		return err
	}
	return r.InsertOutbox(ctx, msg)
}
