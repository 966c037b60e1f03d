package dto

import (
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

func ToEventShort(v event.EventView) EventShort {
	e := v.Event
	return EventShort{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          e.CategoryID,
		ConfirmedRequests: v.ConfirmedRequests,
		EventDate:         e.EventDate,
		Initiator:         e.InitiatorID,
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             v.Views,
	}
}

func ToEventFull(v event.EventView) EventFull {
	e := v.Event
	return EventFull{
		EventShort:        ToEventShort(v),
		CreatedOn:         e.CreatedOn,
		Description:       e.Description,
		Location:          LocationResp{Lat: e.Location.Lat, Lon: e.Location.Lon},
		ParticipantLimit:  e.ParticipantLimit,
		PublishedOn:       e.PublishedOn,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
	}
}

func ToEventShorts(vs []event.EventView) []EventShort {
	out := make([]EventShort, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToEventShort(v))
	}
	return out
}

func ToEventFulls(vs []event.EventView) []EventFull {
	out := make([]EventFull, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToEventFull(v))
	}
	return out
}

func ToRequestResp(r *domain.ParticipationRequest) ParticipationRequestResp {
	return ParticipationRequestResp{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    string(r.Status),
		Created:   r.Created,
	}
}

func ToRequestResps(rs []*domain.ParticipationRequest) []ParticipationRequestResp {
	out := make([]ParticipationRequestResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToRequestResp(r))
	}
	return out
}

func ToStatusUpdateResult(d domain.StatusDecision) StatusUpdateResult {
	return StatusUpdateResult{
		ConfirmedRequests: ToRequestResps(d.Confirmed),
		RejectedRequests:  ToRequestResps(d.Rejected),
	}
}

func ToViewStats(in []domain.ViewStat) []ViewStatResp {
	out := make([]ViewStatResp, 0, len(in))
	for _, s := range in {
		out = append(out, ViewStatResp{App: s.App, URI: s.URI, Hits: s.Hits})
	}
	return out
}
