package handler

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
)

type HealthHandler struct {
	db     *gorm.DB
	nodeID string
}

func NewHealthHandler(db *gorm.DB, nodeID string) *HealthHandler {
	return &HealthHandler{db: db, nodeID: nodeID}
}

// Healthz handles GET /healthz. Ready means the database answers.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "database unavailable", nil)
			return
		}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"node_id": h.nodeID,
	})
}
