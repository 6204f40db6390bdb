package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
)

type PresenceViewer interface {
	OnlineInLocation(ctx context.Context, locationID uint, limit int) ([]domain.CharacterSummary, error)
}

type PresenceHandler struct {
	presence PresenceViewer
}

func NewPresenceHandler(presence PresenceViewer) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// Online handles GET /presence.
func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	locationID, ok := queryID(r, "location_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "location_id is required", nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	online, err := h.presence.OnlineInLocation(r.Context(), locationID, limit)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load presence", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"online": online,
		"count":  len(online),
	})
}
