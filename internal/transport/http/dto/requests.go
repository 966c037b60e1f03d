package dto

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type LocationDto struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (l *LocationDto) toDomain() *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{Lat: l.Lat, Lon: l.Lon}
}

type NewEventRequest struct {
	Annotation        string       `json:"annotation" validate:"required,min=20,max=2000"`
	Category          string       `json:"category" validate:"required,uuid"`
	Description       string       `json:"description" validate:"required,min=20,max=7000"`
	EventDate         time.Time    `json:"eventDate" validate:"required"`
	Location          *LocationDto `json:"location" validate:"required"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit" validate:"gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             string       `json:"title" validate:"required,min=3,max=120"`
}

func (r NewEventRequest) ToCreateCmd(actorID string) event.CreateCmd {
	cmd := event.CreateCmd{
		ActorID:           actorID,
		CategoryID:        r.Category,
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		EventDate:         r.EventDate,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
	}
	if loc := r.Location.toDomain(); loc != nil {
		cmd.Location = *loc
	}
	return cmd
}

// EventFieldsPatch holds the editable fields shared by initiator and admin updates.
type EventFieldsPatch struct {
	Annotation        *string      `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Category          *string      `json:"category" validate:"omitempty,uuid"`
	Description       *string      `json:"description" validate:"omitempty,min=20,max=7000"`
	EventDate         *time.Time   `json:"eventDate"`
	Location          *LocationDto `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             *string      `json:"title" validate:"omitempty,min=3,max=120"`
}

func (p EventFieldsPatch) toDomain() domain.EventPatch {
	return domain.EventPatch{
		CategoryID:        p.Category,
		Title:             p.Title,
		Annotation:        p.Annotation,
		Description:       p.Description,
		Location:          p.Location.toDomain(),
		EventDate:         p.EventDate,
		Paid:              p.Paid,
		ParticipantLimit:  p.ParticipantLimit,
		RequestModeration: p.RequestModeration,
	}
}

type UpdateEventUserRequest struct {
	EventFieldsPatch
	StateAction *string `json:"stateAction" validate:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW"`
}

func (r UpdateEventUserRequest) ToCmd(actorID, eventID string) event.UserUpdateCmd {
	cmd := event.UserUpdateCmd{
		ActorID: actorID,
		EventID: eventID,
		Patch:   r.toDomain(),
	}
	if r.StateAction != nil {
		a := domain.UserStateAction(*r.StateAction)
		cmd.StateAction = &a
	}
	return cmd
}

type UpdateEventAdminRequest struct {
	EventFieldsPatch
	StateAction *string `json:"stateAction" validate:"omitempty,oneof=PUBLISH_EVENT REJECT_EVENT"`
}

func (r UpdateEventAdminRequest) ToCmd(actorRole, eventID string) event.AdminUpdateCmd {
	cmd := event.AdminUpdateCmd{
		ActorRole: actorRole,
		EventID:   eventID,
		Patch:     r.toDomain(),
	}
	if r.StateAction != nil {
		a := domain.AdminStateAction(*r.StateAction)
		cmd.StateAction = &a
	}
	return cmd
}

type StatusUpdateRequest struct {
	RequestIDs []string `json:"requestIds" validate:"required,min=1,dive,uuid"`
	Status     string   `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}
