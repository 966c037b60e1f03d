package event

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type CreateCmd struct {
	ActorID string

	CategoryID        string
	Title             string
	Annotation        string
	Description       string
	Location          domain.Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration *bool // nil defaults to true
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (EventView, error) {
	if err := s.ensureUser(ctx, cmd.ActorID); err != nil {
		return EventView{}, err
	}
	if err := s.ensureCategory(ctx, &cmd.CategoryID); err != nil {
		return EventView{}, err
	}

	moderation := true
	if cmd.RequestModeration != nil {
		moderation = *cmd.RequestModeration
	}

	ev, err := domain.NewPending(domain.NewEventParams{
		InitiatorID:       cmd.ActorID,
		CategoryID:        cmd.CategoryID,
		Title:             cmd.Title,
		Annotation:        cmd.Annotation,
		Description:       cmd.Description,
		Location:          cmd.Location,
		EventDate:         cmd.EventDate,
		Paid:              cmd.Paid,
		ParticipantLimit:  cmd.ParticipantLimit,
		RequestModeration: moderation,
	}, s.clock.Now())
	if err != nil {
		return EventView{}, err
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return EventView{}, err
	}
	return EventView{Event: ev}, nil
}
