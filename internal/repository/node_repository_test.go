package repository

import (
	"testing"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
)

func TestNodeRepositoryRegisterIsIdempotentUpsert(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewNodeRepository(db)

	node := &domain.ServerNode{ID: "node-a", URL: "http://a:8080", Capacity: 500}
	if err := repo.Register(node); err != nil {
		t.Fatalf("first register: %v", err)
	}

	again := &domain.ServerNode{ID: "node-a", URL: "http://a:9090", Capacity: 800}
	if err := repo.Register(again); err != nil {
		t.Fatalf("second register: %v", err)
	}

	var count int64
	if err := db.Model(&domain.ServerNode{}).Count(&count).Error; err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row after re-registration, got %d", count)
	}

	got, err := repo.FindByID("node-a")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.URL != "http://a:9090" || got.Capacity != 800 {
		t.Fatalf("expected refreshed row, got %+v", got)
	}
	if got.Status != domain.NodeStatusActive {
		t.Fatalf("expected active after register, got %q", got.Status)
	}
}

func TestNodeRepositoryRegisterReactivatesInactiveNode(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewNodeRepository(db)

	stale := &domain.ServerNode{
		ID:            "node-b",
		URL:           "http://b:8080",
		Status:        domain.NodeStatusInactive,
		LastHeartbeat: time.Now().UTC().Add(-time.Hour),
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("seed inactive node: %v", err)
	}

	if err := repo.Register(&domain.ServerNode{ID: "node-b", URL: "http://b:8080", Capacity: 300}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := repo.FindByID("node-b")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.NodeStatusActive {
		t.Fatalf("expected crash-recovered node to be active again, got %q", got.Status)
	}
	if time.Since(got.LastHeartbeat) > time.Minute {
		t.Fatalf("expected heartbeat refresh, got %v", got.LastHeartbeat)
	}
}

func TestNodeRepositoryUpdateLoad(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewNodeRepository(db)

	if err := repo.Register(&domain.ServerNode{ID: "node-c", URL: "http://c:8080", Capacity: 500}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := repo.UpdateLoad("node-c", 42); err != nil {
		t.Fatalf("update load: %v", err)
	}
	got, err := repo.FindByID("node-c")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ActiveUsers != 42 {
		t.Fatalf("expected active_users 42, got %d", got.ActiveUsers)
	}

	if err := repo.UpdateLoad("missing", 1); err != ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound for unknown node, got %v", err)
	}
}

func TestNodeRepositoryListActiveOrdersLightestFirst(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewNodeRepository(db)

	now := time.Now().UTC()
	seed := []domain.ServerNode{
		{ID: "node-1", URL: "http://1", ActiveUsers: 220, Status: domain.NodeStatusActive, LastHeartbeat: now},
		{ID: "node-2", URL: "http://2", ActiveUsers: 50, Status: domain.NodeStatusActive, LastHeartbeat: now},
		{ID: "node-3", URL: "http://3", ActiveUsers: 50, Status: domain.NodeStatusActive, LastHeartbeat: now},
		{ID: "node-4", URL: "http://4", ActiveUsers: 10, Status: domain.NodeStatusInactive, LastHeartbeat: now},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed node: %v", err)
		}
	}

	nodes, err := repo.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 active nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "node-2" || nodes[1].ID != "node-3" || nodes[2].ID != "node-1" {
		t.Fatalf("unexpected ordering: %s, %s, %s", nodes[0].ID, nodes[1].ID, nodes[2].ID)
	}
}

func TestNodeRepositorySweepStale(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewNodeRepository(db)

	now := time.Now().UTC()
	seed := []domain.ServerNode{
		{ID: "fresh", URL: "http://f", Status: domain.NodeStatusActive, LastHeartbeat: now.Add(-4 * time.Minute)},
		{ID: "stale", URL: "http://s", Status: domain.NodeStatusActive, LastHeartbeat: now.Add(-6 * time.Minute)},
		{ID: "gone", URL: "http://g", Status: domain.NodeStatusInactive, LastHeartbeat: now.Add(-time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed node: %v", err)
		}
	}

	transitions, err := repo.SweepStale(5 * time.Minute)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if transitions != 1 {
		t.Fatalf("expected exactly 1 transition, got %d", transitions)
	}

	fresh, _ := repo.FindByID("fresh")
	if fresh.Status != domain.NodeStatusActive {
		t.Fatalf("fresh node should stay active, got %q", fresh.Status)
	}
	stale, _ := repo.FindByID("stale")
	if stale.Status != domain.NodeStatusInactive {
		t.Fatalf("stale node should be inactive, got %q", stale.Status)
	}

	// A second sweep finds nothing left to flip.
	transitions, err = repo.SweepStale(5 * time.Minute)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if transitions != 0 {
		t.Fatalf("expected idempotent second sweep, got %d transitions", transitions)
	}
}
