package handler

import (
	"context"
	"net/http"

	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// LoadReporter snapshots this node's current load.
type LoadReporter interface {
	GatherStats(ctx context.Context) (service.LocalStats, error)
}

// RouteDecider maps local load onto a stay-or-redirect decision.
type RouteDecider interface {
	Decide(stats service.LocalStats) (service.RouteDecision, error)
}

type NodeHandler struct {
	reporter LoadReporter
	balancer RouteDecider
}

func NewNodeHandler(reporter LoadReporter, balancer RouteDecider) *NodeHandler {
	return &NodeHandler{reporter: reporter, balancer: balancer}
}

// Route handles GET /route. Clients call it before connecting; an overloaded
// node answers with a lighter peer to connect to instead.
func (h *NodeHandler) Route(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.GatherStats(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to gather node stats", nil)
		return
	}
	decision, err := h.balancer.Decide(stats)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to compute route", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"decision": decision,
		"stats":    stats,
	})
}
