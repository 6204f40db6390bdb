package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ibrahimvarli/noresrp-sub001/internal/app"
	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/handler"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// stack is one fully wired node against an in-memory database, served over
// the real router.
type stack struct {
	db       *gorm.DB
	router   http.Handler
	cfg      *config.Config
	sessions repository.SessionRepository
}

func newStack(t *testing.T) *stack {
	return newStackWith(t, nil)
}

func newStackWith(t *testing.T, tune func(*config.Config)) *stack {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:                   "test",
		HTTPPort:              "0",
		NodeURL:               "https://a.example.com",
		NodeCapacity:          500,
		LoadThreshold:         200,
		HeartbeatInterval:     5 * time.Minute,
		NodeStaleAfter:        5 * time.Minute,
		SessionTTL:            time.Hour,
		SessionKeep:           3,
		SessionIdleAfter:      15 * time.Minute,
		OnlineWindow:          15 * time.Minute,
		MessageRateLimit:      10,
		MessageRateWindow:     time.Minute,
		NotificationRetention: 24 * time.Hour,
		PerfLogRetention:      7 * 24 * time.Hour,
		EventReminderLead:     15 * time.Minute,
		APIRateLimitPerMin:    1000,
	}
	if tune != nil {
		tune(cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	nodes := repository.NewNodeRepository(db)
	sessions := repository.NewSessionRepository(db)
	messages := repository.NewMessageRepository(db)
	notifications := repository.NewNotificationRepository(db)
	characters := repository.NewCharacterRepository(db)
	relationships := repository.NewRelationshipRepository(db)
	events := repository.NewEventRepository(db)
	perf := repository.NewPerfLogRepository(db)

	sessionSvc := service.NewSessionService(sessions, nil, log, "node-a",
		cfg.SessionTTL, cfg.SessionKeep, cfg.SessionIdleAfter)
	messageSvc := service.NewMessageService(messages, characters, notifications, log,
		cfg.MessageRateLimit, cfg.MessageRateWindow)
	notificationSvc := service.NewNotificationService(notifications, relationships, events, characters,
		log, cfg.EventReminderLead, cfg.NotificationRetention)
	presenceSvc := service.NewPresenceService(sessions, characters, nil, log, cfg.OnlineWindow)
	heartbeatSvc := service.NewHeartbeatService(nodes, sessions, perf, log,
		"node-a", cfg.NodeURL, cfg.NodeCapacity,
		cfg.HeartbeatInterval, cfg.NodeStaleAfter, cfg.OnlineWindow)
	balancer := service.NewLoadBalancer(nodes, cfg.LoadThreshold)

	handlers := app.Handlers{
		Message:      handler.NewMessageHandler(messageSvc, characters),
		Notification: handler.NewNotificationHandler(notificationSvc, messageSvc, characters),
		Presence:     handler.NewPresenceHandler(presenceSvc),
		Node:         handler.NewNodeHandler(heartbeatSvc, balancer),
		Health:       handler.NewHealthHandler(db, "node-a"),
	}
	router := app.NewRouter(cfg, log, handlers, sessionSvc, heartbeatSvc, perf,
		middleware.NewLocalFixedWindowLimiter())

	return &stack{db: db, router: router, cfg: cfg, sessions: sessions}
}

func (s *stack) seedCharacter(t *testing.T, id, userID uint, name string, locationID uint) {
	t.Helper()
	char := domain.Character{ID: id, UserID: userID, Name: name, LocationID: locationID, IsActive: true}
	if err := s.db.Create(&char).Error; err != nil {
		t.Fatalf("seed character: %v", err)
	}
}

func (s *stack) seedSession(t *testing.T, userID uint, sessionID string) {
	t.Helper()
	if err := s.sessions.Touch(userID, sessionID, "node-a"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func (s *stack) seedNode(t *testing.T, id, url string, activeUsers int, lastHeartbeat time.Time) {
	t.Helper()
	node := domain.ServerNode{
		ID: id, URL: url, Capacity: 500, ActiveUsers: activeUsers,
		Status: domain.NodeStatusActive, LastHeartbeat: lastHeartbeat,
	}
	if err := s.db.Create(&node).Error; err != nil {
		t.Fatalf("seed node: %v", err)
	}
}

// envelope mirrors the wire format the handlers emit.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return env
}

func dataInto(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decode(t, rr)
	if !env.Success {
		t.Fatalf("expected success envelope, got %q", rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func (s *stack) do(t *testing.T, method, target, body string, userID uint, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "10.0.0.1:1234"
	if sessionID != "" {
		req.Header.Set("X-User-Id", fmt.Sprintf("%d", userID))
		req.Header.Set("X-Session-Id", sessionID)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}
