package event

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

// EventView is an event with its derived counters. Counters are computed per read
// and never written back to the event.
type EventView struct {
	Event             *domain.Event
	ConfirmedRequests int
	Views             int64
}

func (s *Service) projectOne(ctx context.Context, e *domain.Event) (EventView, error) {
	out, err := s.project(ctx, []*domain.Event{e})
	if err != nil {
		return EventView{}, err
	}
	return out[0], nil
}

func (s *Service) project(ctx context.Context, events []*domain.Event) ([]EventView, error) {
	out := make([]EventView, 0, len(events))
	if len(events) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	confirmed, err := s.repo.CountConfirmedByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := s.countViews(ctx, events)
	for _, e := range events {
		out = append(out, EventView{
			Event:             e,
			ConfirmedRequests: confirmed[e.ID],
			Views:             views[domain.EventURI(e.ID)],
		})
	}
	return out, nil
}

// countViews asks the stats collaborator for unique views since publication.
// Failures degrade to zero views.
func (s *Service) countViews(ctx context.Context, events []*domain.Event) map[string]int64 {
	if s.views == nil {
		return map[string]int64{}
	}
	now := s.clock.Now().UTC()
	qs := make([]domain.ViewQuery, 0, len(events))
	for _, e := range events {
		if e.PublishedOn == nil {
			continue
		}
		qs = append(qs, domain.ViewQuery{
			URI:    domain.EventURI(e.ID),
			Start:  *e.PublishedOn,
			End:    now,
			Unique: true,
		})
	}
	if len(qs) == 0 {
		return map[string]int64{}
	}

	got, err := s.views.Views(ctx, qs)
	if err != nil {
		zlog.Warn().Err(err).Int("queries", len(qs)).Msg("view stats unavailable")
		return map[string]int64{}
	}
	return got
}
