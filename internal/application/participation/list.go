package participation

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

func (s *Service) GetUserRequests(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	if err := s.ensureUser(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByRequester(ctx, requesterID)
}

// GetEventRequests lists every request of an event for its initiator.
func (s *Service) GetEventRequests(ctx context.Context, actorID, eventID string) ([]*domain.ParticipationRequest, error) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.InitiatorID != actorID {
		return nil, domain.ErrForbidden("only the initiator can list event requests")
	}
	return s.repo.ListByEvent(ctx, eventID)
}
