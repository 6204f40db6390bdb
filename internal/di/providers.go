package di

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/app"
	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/handler"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/nodeident"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var InfraSet = wire.NewSet(database.Open, provideRedisClient, provideNodeID)

var RepositorySet = wire.NewSet(
	repository.NewNodeRepository,
	repository.NewSessionRepository,
	repository.NewMessageRepository,
	repository.NewNotificationRepository,
	repository.NewCharacterRepository,
	repository.NewRelationshipRepository,
	repository.NewEventRepository,
	repository.NewPerfLogRepository,
)

var ServiceSet = wire.NewSet(
	providePresenceCache,
	provideSessionService,
	provideMessageService,
	provideNotificationService,
	providePresenceService,
	provideHeartbeatService,
	provideLoadBalancer,
)

var HTTPSet = wire.NewSet(
	provideMessageHandler,
	provideNotificationHandler,
	providePresenceHandler,
	provideNodeHandler,
	provideHealthHandler,
	provideHandlers,
	provideAPILimiter,
)

var AppSet = wire.NewSet(app.New)

// NodeID names this node's registry identity distinctly from plain strings
// in the wire graph.
type NodeID string

func provideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg.Env, cfg.LogLevel)
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func provideNodeID(cfg *config.Config) (NodeID, error) {
	id, err := nodeident.Load(cfg.NodeIDFile)
	return NodeID(id), err
}

func providePresenceCache(client redis.UniversalClient, cfg *config.Config) *service.PresenceCache {
	if client == nil {
		return nil
	}
	return service.NewPresenceCache(client, "presence", cfg.OnlineWindow)
}

func provideSessionService(
	sessions repository.SessionRepository,
	presence *service.PresenceCache,
	logger *slog.Logger,
	nodeID NodeID,
	cfg *config.Config,
) *service.SessionService {
	return service.NewSessionService(sessions, presence, logger, string(nodeID),
		cfg.SessionTTL, cfg.SessionKeep, cfg.SessionIdleAfter)
}

func provideMessageService(
	messages repository.MessageRepository,
	characters repository.CharacterRepository,
	notifications repository.NotificationRepository,
	logger *slog.Logger,
	cfg *config.Config,
) *service.MessageService {
	return service.NewMessageService(messages, characters, notifications, logger,
		cfg.MessageRateLimit, cfg.MessageRateWindow)
}

func provideNotificationService(
	notifications repository.NotificationRepository,
	relationships repository.RelationshipRepository,
	events repository.EventRepository,
	characters repository.CharacterRepository,
	logger *slog.Logger,
	cfg *config.Config,
) *service.NotificationService {
	return service.NewNotificationService(notifications, relationships, events, characters,
		logger, cfg.EventReminderLead, cfg.NotificationRetention)
}

func providePresenceService(
	sessions repository.SessionRepository,
	characters repository.CharacterRepository,
	cache *service.PresenceCache,
	logger *slog.Logger,
	cfg *config.Config,
) *service.PresenceService {
	return service.NewPresenceService(sessions, characters, cache, logger, cfg.OnlineWindow)
}

func provideHeartbeatService(
	nodes repository.NodeRepository,
	sessions repository.SessionRepository,
	perf repository.PerfLogRepository,
	logger *slog.Logger,
	nodeID NodeID,
	cfg *config.Config,
) *service.HeartbeatService {
	return service.NewHeartbeatService(nodes, sessions, perf, logger,
		string(nodeID), cfg.NodeURL, cfg.NodeCapacity,
		cfg.HeartbeatInterval, cfg.NodeStaleAfter, cfg.OnlineWindow)
}

func provideLoadBalancer(nodes repository.NodeRepository, cfg *config.Config) *service.LoadBalancer {
	return service.NewLoadBalancer(nodes, cfg.LoadThreshold)
}

func provideMessageHandler(messages *service.MessageService, characters repository.CharacterRepository) *handler.MessageHandler {
	return handler.NewMessageHandler(messages, characters)
}

func provideNotificationHandler(
	notifications *service.NotificationService,
	messages *service.MessageService,
	characters repository.CharacterRepository,
) *handler.NotificationHandler {
	return handler.NewNotificationHandler(notifications, messages, characters)
}

func providePresenceHandler(presence *service.PresenceService) *handler.PresenceHandler {
	return handler.NewPresenceHandler(presence)
}

func provideNodeHandler(heartbeat *service.HeartbeatService, balancer *service.LoadBalancer) *handler.NodeHandler {
	return handler.NewNodeHandler(heartbeat, balancer)
}

func provideHealthHandler(db *gorm.DB, nodeID NodeID) *handler.HealthHandler {
	return handler.NewHealthHandler(db, string(nodeID))
}

func provideHandlers(
	message *handler.MessageHandler,
	notification *handler.NotificationHandler,
	presence *handler.PresenceHandler,
	node *handler.NodeHandler,
	health *handler.HealthHandler,
) app.Handlers {
	return app.Handlers{
		Message:      message,
		Notification: notification,
		Presence:     presence,
		Node:         node,
		Health:       health,
	}
}

// provideAPILimiter shares the throttle window across nodes when Redis is
// configured and degrades to a per-node window when it is not.
func provideAPILimiter(client redis.UniversalClient) middleware.Limiter {
	if client == nil {
		return middleware.NewLocalFixedWindowLimiter()
	}
	return middleware.NewRedisFixedWindowLimiter(client, "rl")
}
