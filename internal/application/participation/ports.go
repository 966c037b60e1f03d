package participation

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

type Repo interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	GetByID(ctx context.Context, requestID string) (*domain.ParticipationRequest, error)

	ListByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error)

	WithTx(ctx context.Context, fn func(r TxRepo) error) error
}

// TxRepo is the transactional view. GetEventForUpdate must be called first:
// it takes the event row lock that serialises admissions per event.
type TxRepo interface {
	GetEventForUpdate(ctx context.Context, eventID string) (*domain.Event, error)
	CountConfirmed(ctx context.Context, eventID string) (int, error)
	ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error)

	// GetRequestsByIDs returns the requests of eventID among ids, locked for update.
	// Unknown ids and ids of other events are skipped.
	GetRequestsByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.ParticipationRequest, error)
	GetRequestForUpdate(ctx context.Context, requestID string) (*domain.ParticipationRequest, error)

	InsertRequest(ctx context.Context, r *domain.ParticipationRequest) error
	UpdateStatuses(ctx context.Context, reqs []*domain.ParticipationRequest) error
	InsertOutbox(ctx context.Context, msg messaging.OutboxMessage) error
}
