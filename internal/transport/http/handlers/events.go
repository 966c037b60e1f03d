package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/validate"
)

type EventsHandler struct {
	svc *event.Service
}

func NewEventsHandler(svc *event.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// Public

func (h *EventsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryPage(q)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	paid, err := queryBool(q, "paid")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	onlyAvailable, err := queryBool(q, "onlyAvailable")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	start, err := queryTime(q, "rangeStart")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	end, err := queryTime(q, "rangeEnd")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	f := event.PublicFilter{
		Text:          q.Get("text"),
		Categories:    queryList(q, "categories"),
		Paid:          paid,
		RangeStart:    start,
		RangeEnd:      end,
		OnlyAvailable: onlyAvailable != nil && *onlyAvailable,
		Sort:          event.PublicSort(q.Get("sort")),
		Page:          page,
	}
	items, err := h.svc.SearchPublic(r.Context(), f, clientIP(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventShorts(items))
}

func (h *EventsHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.GetPublic(r.Context(), id, clientIP(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

// Initiator

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NewEventRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.Create(r.Context(), req.ToCreateCmd(middleware.UserID(r)))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToEventFull(v))
}

func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r.URL.Query())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := h.svc.ListUserEvents(r.Context(), middleware.UserID(r), page)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventShorts(items))
}

func (h *EventsHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.GetUserEvent(r.Context(), middleware.UserID(r), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

func (h *EventsHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateEventUserRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.UpdateAsInitiator(r.Context(), req.ToCmd(middleware.UserID(r), id))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

// Admin

func (h *EventsHandler) AdminSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryPage(q)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	start, err := queryTime(q, "rangeStart")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	end, err := queryTime(q, "rangeEnd")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var states []domain.EventState
	for _, s := range queryList(q, "states") {
		states = append(states, domain.EventState(s))
	}

	f := event.AdminFilter{
		Users:      queryList(q, "users"),
		States:     states,
		Categories: queryList(q, "categories"),
		RangeStart: start,
		RangeEnd:   end,
		Page:       page,
	}
	items, err := h.svc.SearchAdmin(r.Context(), middleware.Role(r), f)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventFulls(items))
}

func (h *EventsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateEventAdminRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.UpdateAsAdmin(r.Context(), req.ToCmd(middleware.Role(r), id))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}
