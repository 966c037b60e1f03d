package event

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

// Service is the event lifecycle manager: creation, initiator and admin edits,
// moderation transitions and read projections.
type Service struct {
	repo  EventRepo
	dir   Directory
	views ViewStats
	hits  HitRecorder
	cache Cache
	clock Clock

	ttlDetails time.Duration
}

func New(
	repo EventRepo,
	dir Directory,
	views ViewStats,
	hits HitRecorder,
	clock Clock,
	cache Cache,
	ttlDetails time.Duration,
) *Service {
	if ttlDetails == 0 {
		ttlDetails = 5 * time.Minute
	}
	return &Service{
		repo:       repo,
		dir:        dir,
		views:      views,
		hits:       hits,
		cache:      cache,
		clock:      clock,
		ttlDetails: ttlDetails,
	}
}

func isAdmin(role string) bool { return strings.TrimSpace(role) == "admin" }

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

func (s *Service) ensureCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	ok, err := s.dir.CategoryExists(ctx, strings.TrimSpace(*id))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound("category not found")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	key := cacheKeyEventDetails(eventID)
	if err := s.cache.Delete(ctx, key); err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}

func (s *Service) recordHit(ctx context.Context, uri, ip string) {
	if s.hits == nil || ip == "" {
		return
	}
	if err := s.hits.RecordHit(ctx, uri, ip); err != nil {
		zlog.Warn().Err(err).Str("uri", uri).Msg("record hit failed")
	}
}

func statePayload(e *domain.Event, actorRole string) messaging.EventStatePayload {
	return messaging.EventStatePayload{
		EventID:          e.ID,
		InitiatorID:      e.InitiatorID,
		CategoryID:       e.CategoryID,
		Title:            e.Title,
		EventDate:        e.EventDate,
		ParticipantLimit: e.ParticipantLimit,
		State:            string(e.State),
		PublishedOn:      e.PublishedOn,
		ActorRole:        actorRole,
	}
}

func writeOutbox(ctx context.Context, r TxEventRepo, routingKey string, e *domain.Event, actorRole string, now time.Time) error {
	msg, err := messaging.NewOutboxMessage(ctx, routingKey, statePayload(e, actorRole), now)
	if err != nil {
		return err
	}
	return r.InsertOutbox(ctx, msg)
}
