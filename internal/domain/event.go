package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// InitiatorLeadTime is the minimum gap between an initiator edit and the event date.
	InitiatorLeadTime = 2 * time.Hour
	// AdminLeadTime is the minimum gap between an admin edit and the event date.
	AdminLeadTime = time.Hour
)

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID          string
	InitiatorID string
	CategoryID  string

	Title       string
	Annotation  string
	Description string
	Location    Location
	EventDate   time.Time

	Paid              bool
	ParticipantLimit  int // 0 = unlimited
	RequestModeration bool

	State       EventState
	CreatedOn   time.Time
	PublishedOn *time.Time
	UpdatedAt   time.Time
}

type NewEventParams struct {
	InitiatorID       string
	CategoryID        string
	Title             string
	Annotation        string
	Description       string
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

func NewPending(p NewEventParams, now time.Time) (*Event, error) {
	initiatorID := strings.TrimSpace(p.InitiatorID)
	categoryID := strings.TrimSpace(p.CategoryID)
	if initiatorID == "" {
		return nil, ErrValidation("initiator_id is required")
	}
	if categoryID == "" {
		return nil, ErrValidationMeta("invalid field", map[string]string{"category": "is required"})
	}
	if p.EventDate.IsZero() {
		return nil, ErrValidationMeta("invalid field", map[string]string{"eventDate": "is required"})
	}
	if err := CheckEventDate(p.EventDate, now, InitiatorLeadTime); err != nil {
		return nil, err
	}

	e := &Event{
		ID:                uuid.NewString(),
		InitiatorID:       initiatorID,
		CategoryID:        categoryID,
		Location:          p.Location,
		EventDate:         p.EventDate.UTC(),
		Paid:              p.Paid,
		RequestModeration: p.RequestModeration,
		State:             StatePending,
		CreatedOn:         now.UTC(),
		UpdatedAt:         now.UTC(),
	}
	if err := e.setTexts(p.Title, p.Annotation, p.Description); err != nil {
		return nil, err
	}
	if err := e.setLimit(p.ParticipantLimit); err != nil {
		return nil, err
	}
	return e, nil
}

// CheckEventDate rejects dates earlier than now+lead. The boundary itself is allowed.
func CheckEventDate(date, now time.Time, lead time.Duration) error {
	if date.Before(now.Add(lead)) {
		return ErrValidationMeta("event date is too soon", map[string]string{
			"eventDate": "must not be earlier than " + lead.String() + " from now",
		})
	}
	return nil
}

func (e *Event) IsPublished() bool { return e.State == StatePublished }

// HasCapacity reports whether one more confirmed participant fits.
func (e *Event) HasCapacity(confirmed int) bool {
	return e.ParticipantLimit == 0 || confirmed < e.ParticipantLimit
}

// AutoConfirms reports whether new requests skip the initiator's approval.
func (e *Event) AutoConfirms() bool {
	return e.ParticipantLimit == 0 || !e.RequestModeration
}

// EventPatch carries the optional fields of an update. Nil means "leave as is".
type EventPatch struct {
	CategoryID        *string
	Title             *string
	Annotation        *string
	Description       *string
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

func (e *Event) ApplyPatch(p EventPatch, now time.Time) error {
	title, annotation, description := e.Title, e.Annotation, e.Description
	if p.Title != nil {
		title = *p.Title
	}
	if p.Annotation != nil {
		annotation = *p.Annotation
	}
	if p.Description != nil {
		description = *p.Description
	}
	if err := e.setTexts(title, annotation, description); err != nil {
		return err
	}
	if p.ParticipantLimit != nil {
		if err := e.setLimit(*p.ParticipantLimit); err != nil {
			return err
		}
	}
	if p.CategoryID != nil {
		v := strings.TrimSpace(*p.CategoryID)
		if v == "" {
			return ErrValidationMeta("invalid field", map[string]string{"category": "must not be empty"})
		}
		e.CategoryID = v
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.EventDate != nil {
		e.EventDate = p.EventDate.UTC()
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	e.UpdatedAt = now.UTC()
	return nil
}

// ApplyAdminAction runs the moderation transition. A nil action keeps the current state.
func (e *Event) ApplyAdminAction(a *AdminStateAction, now time.Time) error {
	if a == nil {
		return nil
	}
	switch *a {
	case ActionPublishEvent:
		switch e.State {
		case StatePublished:
			return ErrConflict("event already published")
		case StateCanceled:
			return ErrConflict("cannot publish a rejected event")
		}
		t := now.UTC()
		e.State = StatePublished
		e.PublishedOn = &t
	case ActionRejectEvent:
		switch e.State {
		case StatePublished:
			return ErrConflict("cannot reject a published event")
		case StateCanceled:
			return nil
		}
		e.State = StateCanceled
		e.PublishedOn = nil
	default:
		return ErrValidationMeta("invalid state action", map[string]string{
			"stateAction": "must be one of: PUBLISH_EVENT, REJECT_EVENT",
		})
	}
	e.UpdatedAt = now.UTC()
	return nil
}

// ApplyUserAction runs the initiator review transition. Published events are frozen for initiators.
func (e *Event) ApplyUserAction(a *UserStateAction, now time.Time) error {
	if e.State == StatePublished {
		return ErrConflict("published event cannot be changed")
	}
	if a == nil {
		return nil
	}
	switch *a {
	case ActionSendToReview:
		e.State = StatePending
	case ActionCancelReview:
		e.State = StateCanceled
	default:
		return ErrValidationMeta("invalid state action", map[string]string{
			"stateAction": "must be one of: SEND_TO_REVIEW, CANCEL_REVIEW",
		})
	}
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Event) setTexts(title, annotation, description string) error {
	title = strings.TrimSpace(title)
	annotation = strings.TrimSpace(annotation)
	description = strings.TrimSpace(description)

	if n := utf8.RuneCountInString(title); n < 3 || n > 120 {
		return ErrValidationMeta("invalid field", map[string]string{"title": "length must be 3..120"})
	}
	if n := utf8.RuneCountInString(annotation); n < 20 || n > 2000 {
		return ErrValidationMeta("invalid field", map[string]string{"annotation": "length must be 20..2000"})
	}
	if n := utf8.RuneCountInString(description); n < 20 || n > 7000 {
		return ErrValidationMeta("invalid field", map[string]string{"description": "length must be 20..7000"})
	}
	e.Title, e.Annotation, e.Description = title, annotation, description
	return nil
}

func (e *Event) setLimit(limit int) error {
	if limit < 0 {
		return ErrValidationMeta("invalid field", map[string]string{
			"participantLimit": "must be >= 0 (0 means unlimited)",
		})
	}
	e.ParticipantLimit = limit
	return nil
}
