package service

import (
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// LocalStats is the snapshot of this node the heartbeat gathers and the load
// balancer decides on.
type LocalStats struct {
	NodeID       string  `json:"node_id"`
	ActiveUsers  int     `json:"active_users"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	LoadAvg      float64 `json:"load_avg"`
}

// RouteDecision is either "stay" or a redirect to a lighter node.
type RouteDecision struct {
	Redirect bool   `json:"redirect"`
	NodeID   string `json:"node_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// LoadBalancer decides whether a client should be shed to another node. The
// decision itself is pure over the registry snapshot: under the threshold we
// always stay; over it we pick the lightest active candidate under the
// threshold, tie-broken by lowest node id; with no candidate we accept the
// overload rather than fail the request.
type LoadBalancer struct {
	nodes     repository.NodeRepository
	threshold int
}

func NewLoadBalancer(nodes repository.NodeRepository, threshold int) *LoadBalancer {
	return &LoadBalancer{nodes: nodes, threshold: threshold}
}

func (lb *LoadBalancer) Decide(stats LocalStats) (RouteDecision, error) {
	if stats.ActiveUsers <= lb.threshold {
		return RouteDecision{}, nil
	}
	candidates, err := lb.nodes.ListActive()
	if err != nil {
		return RouteDecision{}, err
	}
	// ListActive orders active_users asc, id asc; the first qualifying
	// candidate is the decision.
	for _, node := range candidates {
		if node.ID == stats.NodeID {
			continue
		}
		if node.ActiveUsers < lb.threshold {
			return RouteDecision{Redirect: true, NodeID: node.ID, URL: node.URL}, nil
		}
	}
	return RouteDecision{}, nil
}

func (lb *LoadBalancer) Threshold() int { return lb.threshold }
