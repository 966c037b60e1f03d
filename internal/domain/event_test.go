package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tt.UTC()
}

func validParams(now time.Time) NewEventParams {
	return NewEventParams{
		InitiatorID:       "owner-1",
		CategoryID:        "cat-1",
		Title:             "Harbour Run",
		Annotation:        "A relaxed morning run around the harbour",
		Description:       "Meet at the ferry wharf, 5km loop, coffee afterwards.",
		Location:          Location{Lat: -33.85, Lon: 151.21},
		EventDate:         now.Add(3 * time.Hour),
		ParticipantLimit:  10,
		RequestModeration: true,
	}
}

func adminAction(a AdminStateAction) *AdminStateAction { return &a }
func userAction(a UserStateAction) *UserStateAction    { return &a }

func TestNewPending(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	t.Run("created_pending_without_published_on", func(t *testing.T) {
		e, err := NewPending(validParams(now), now)
		require.NoError(t, err)
		assert.Equal(t, StatePending, e.State)
		assert.Nil(t, e.PublishedOn)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, now, e.CreatedOn)
	})

	t.Run("fail_on_negative_limit", func(t *testing.T) {
		p := validParams(now)
		p.ParticipantLimit = -1
		_, err := NewPending(p, now)
		assert.Equal(t, CodeValidation, CodeOf(err))
		assert.Contains(t, err.Error(), "participantLimit")
	})

	t.Run("fail_on_short_title", func(t *testing.T) {
		p := validParams(now)
		p.Title = "ab"
		_, err := NewPending(p, now)
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("fail_when_date_too_soon", func(t *testing.T) {
		p := validParams(now)
		p.EventDate = now.Add(2*time.Hour - time.Second)
		_, err := NewPending(p, now)
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("date_exactly_on_boundary_is_allowed", func(t *testing.T) {
		p := validParams(now)
		p.EventDate = now.Add(2 * time.Hour)
		_, err := NewPending(p, now)
		assert.NoError(t, err)
	})
}

func TestCheckEventDate(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	tests := []struct {
		name    string
		date    time.Time
		lead    time.Duration
		wantErr bool
	}{
		{"initiator_boundary_ok", now.Add(2 * time.Hour), InitiatorLeadTime, false},
		{"initiator_just_before_boundary", now.Add(2*time.Hour - time.Minute), InitiatorLeadTime, true},
		{"admin_boundary_ok", now.Add(time.Hour), AdminLeadTime, false},
		{"admin_just_before_boundary", now.Add(59 * time.Minute), AdminLeadTime, true},
		{"past_date", now.Add(-time.Hour), AdminLeadTime, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEventDate(tt.date, now, tt.lead)
			if tt.wantErr {
				assert.Equal(t, CodeValidation, CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEvent_ApplyAdminAction(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	tests := []struct {
		name      string
		from      EventState
		action    *AdminStateAction
		wantState EventState
		wantCode  ErrCode
	}{
		{"publish_from_pending", StatePending, adminAction(ActionPublishEvent), StatePublished, ""},
		{"publish_from_published_conflicts", StatePublished, adminAction(ActionPublishEvent), StatePublished, CodeConflict},
		{"publish_from_canceled_conflicts", StateCanceled, adminAction(ActionPublishEvent), StateCanceled, CodeConflict},
		{"reject_from_pending", StatePending, adminAction(ActionRejectEvent), StateCanceled, ""},
		{"reject_from_published_conflicts", StatePublished, adminAction(ActionRejectEvent), StatePublished, CodeConflict},
		{"reject_from_canceled_is_noop", StateCanceled, adminAction(ActionRejectEvent), StateCanceled, ""},
		{"no_action_keeps_pending", StatePending, nil, StatePending, ""},
		{"no_action_keeps_canceled", StateCanceled, nil, StateCanceled, ""},
		{"unknown_action_is_validation", StatePending, adminAction("ARCHIVE"), StatePending, CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewPending(validParams(now), now)
			require.NoError(t, err)
			e.State = tt.from
			if tt.from == StatePublished {
				p := now.Add(-time.Hour)
				e.PublishedOn = &p
			}

			err = e.ApplyAdminAction(tt.action, now)
			assert.Equal(t, tt.wantCode, CodeOf(err))
			assert.Equal(t, tt.wantState, e.State)
			assert.Equal(t, e.State == StatePublished, e.PublishedOn != nil)
		})
	}

	t.Run("publish_sets_published_on_to_now", func(t *testing.T) {
		e, _ := NewPending(validParams(now), now)
		require.NoError(t, e.ApplyAdminAction(adminAction(ActionPublishEvent), now))
		require.NotNil(t, e.PublishedOn)
		assert.Equal(t, now, *e.PublishedOn)
	})
}

func TestEvent_ApplyUserAction(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	tests := []struct {
		name      string
		from      EventState
		action    *UserStateAction
		wantState EventState
		wantCode  ErrCode
	}{
		{"cancel_review_from_pending", StatePending, userAction(ActionCancelReview), StateCanceled, ""},
		{"send_to_review_from_canceled", StateCanceled, userAction(ActionSendToReview), StatePending, ""},
		{"send_to_review_from_pending", StatePending, userAction(ActionSendToReview), StatePending, ""},
		{"no_action_keeps_canceled", StateCanceled, nil, StateCanceled, ""},
		{"published_is_frozen", StatePublished, userAction(ActionCancelReview), StatePublished, CodeConflict},
		{"published_is_frozen_without_action", StatePublished, nil, StatePublished, CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := NewPending(validParams(now), now)
			e.State = tt.from

			err := e.ApplyUserAction(tt.action, now)
			assert.Equal(t, tt.wantCode, CodeOf(err))
			assert.Equal(t, tt.wantState, e.State)
		})
	}
}

func TestEvent_ApplyPatch(t *testing.T) {
	now := mustTime(t, "2025-12-25T10:00:00Z")

	t.Run("only_supplied_fields_change", func(t *testing.T) {
		e, _ := NewPending(validParams(now), now)
		title := "Harbour Run Extended"
		limit := 0
		later := now.Add(time.Minute)

		require.NoError(t, e.ApplyPatch(EventPatch{Title: &title, ParticipantLimit: &limit}, later))
		assert.Equal(t, title, e.Title)
		assert.Equal(t, 0, e.ParticipantLimit)
		assert.Equal(t, "cat-1", e.CategoryID)
		assert.Equal(t, later, e.UpdatedAt)
	})

	t.Run("reject_negative_limit", func(t *testing.T) {
		e, _ := NewPending(validParams(now), now)
		limit := -5
		err := e.ApplyPatch(EventPatch{ParticipantLimit: &limit}, now)
		assert.Equal(t, CodeValidation, CodeOf(err))
		assert.Equal(t, 10, e.ParticipantLimit)
	})
}
