package event

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	ListByInitiator(ctx context.Context, initiatorID string, p Page) ([]*domain.Event, error)
	SearchAdmin(ctx context.Context, f AdminFilter) ([]*domain.Event, error)
	SearchPublic(ctx context.Context, f PublicFilter) ([]*domain.Event, error)

	// CountConfirmedByEvents returns confirmed participants per event id; missing ids mean zero.
	CountConfirmedByEvents(ctx context.Context, ids []string) (map[string]int, error)

	WithTx(ctx context.Context, fn func(r TxEventRepo) error) error
}

type TxEventRepo interface {
	GetEventForUpdate(ctx context.Context, id string) (*domain.Event, error)
	UpdateEvent(ctx context.Context, e *domain.Event) error
	InsertOutbox(ctx context.Context, msg messaging.OutboxMessage) error
}

// Directory answers existence lookups for entities owned by other modules.
type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
}

type ViewStats interface {
	Views(ctx context.Context, qs []domain.ViewQuery) (map[string]int64, error)
}

type HitRecorder interface {
	RecordHit(ctx context.Context, uri, ip string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
