package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/validate"
)

type RequestsHandler struct {
	svc *participation.Service
}

func NewRequestsHandler(svc *participation.Service) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

// Create handles POST /users/me/requests?event_id=...
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	if !validate.IsUUID(eventID) {
		response.Err(w, r, invalidParam("event_id", "must be uuid"))
		return
	}
	req, err := h.svc.CreateRequest(r.Context(), middleware.UserID(r), eventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToRequestResp(req))
}

func (h *RequestsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.GetUserRequests(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResps(reqs))
}

func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "request_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	req, err := h.svc.CancelRequest(r.Context(), middleware.UserID(r), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResp(req))
}

func (h *RequestsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	reqs, err := h.svc.GetEventRequests(r.Context(), middleware.UserID(r), eventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResps(reqs))
}

func (h *RequestsHandler) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var body dto.StatusUpdateRequest
	if err := validate.DecodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		response.Err(w, r, err)
		return
	}
	d, err := h.svc.UpdateRequestStatus(r.Context(), participation.UpdateStatusCmd{
		ActorID:    middleware.UserID(r),
		EventID:    eventID,
		RequestIDs: body.RequestIDs,
		Status:     domain.RequestStatus(body.Status),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToStatusUpdateResult(d))
}
