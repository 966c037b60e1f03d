package event

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

// GetUserEvent returns one of the user's own events. Events owned by others are reported as missing.
func (s *Service) GetUserEvent(ctx context.Context, userID, eventID string) (EventView, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	if e.InitiatorID != userID {
		return EventView{}, domain.ErrNotFound("event not found")
	}
	return s.projectOne(ctx, e)
}

// GetPublic returns a published event and records the visit from ip.
func (s *Service) GetPublic(ctx context.Context, eventID, ip string) (EventView, error) {
	e, err := s.loadPublished(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	s.recordHit(ctx, domain.EventURI(e.ID), ip)
	return s.projectOne(ctx, e)
}

func (s *Service) loadPublished(ctx context.Context, id string) (*domain.Event, error) {
	key := cacheKeyEventDetails(id)

	if s.cache != nil {
		var cached domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			zlog.Debug().Str("key", key).Msg("cache hit")
			return &cached, nil
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.State != domain.StatePublished {
		return nil, domain.ErrNotFound("event not found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, e, s.ttlDetails); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return e, nil
}
