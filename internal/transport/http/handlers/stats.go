package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/stats"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

type StatsHandler struct {
	svc *stats.Service
}

func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Query handles GET /stats?start&end&uris&unique.
func (h *StatsHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := queryTime(q, "start")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	end, err := queryTime(q, "end")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if start == nil || end == nil {
		response.Err(w, r, invalidParam("start", "start and end are required"))
		return
	}
	unique, err := queryBool(q, "unique")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out, err := h.svc.Query(r.Context(), stats.Filter{
		Start:  *start,
		End:    *end,
		URIs:   queryList(q, "uris"),
		Unique: unique != nil && *unique,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToViewStats(out))
}
