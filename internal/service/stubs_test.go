package service

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubNodeRepository struct {
	registerFn    func(node *domain.ServerNode) error
	updateLoadFn  func(nodeID string, activeUsers int) error
	listActiveFn  func() ([]domain.ServerNode, error)
	sweepStaleFn  func(staleAfter time.Duration) (int64, error)
	findByIDFn    func(nodeID string) (*domain.ServerNode, error)
}

func (s *stubNodeRepository) Register(node *domain.ServerNode) error {
	if s.registerFn == nil {
		return errors.New("not implemented")
	}
	return s.registerFn(node)
}

func (s *stubNodeRepository) UpdateLoad(nodeID string, activeUsers int) error {
	if s.updateLoadFn == nil {
		return errors.New("not implemented")
	}
	return s.updateLoadFn(nodeID, activeUsers)
}

func (s *stubNodeRepository) FindByID(nodeID string) (*domain.ServerNode, error) {
	if s.findByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findByIDFn(nodeID)
}

func (s *stubNodeRepository) ListActive() ([]domain.ServerNode, error) {
	if s.listActiveFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listActiveFn()
}

func (s *stubNodeRepository) SweepStale(staleAfter time.Duration) (int64, error) {
	if s.sweepStaleFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.sweepStaleFn(staleAfter)
}

type stubSessionRepository struct {
	touchFn         func(userID uint, sessionID, nodeID string) error
	findFn          func(userID uint, sessionID string) (*domain.UserSession, error)
	pruneExcessFn   func(userID uint, keep int) (int64, error)
	expireIdleFn    func(idleAfter time.Duration) (int64, error)
	countActiveFn   func(nodeID string, window time.Duration) (int64, error)
	recentByUsersFn func(userIDs []uint, since time.Time) (map[uint]time.Time, error)
}

func (s *stubSessionRepository) Touch(userID uint, sessionID, nodeID string) error {
	if s.touchFn == nil {
		return errors.New("not implemented")
	}
	return s.touchFn(userID, sessionID, nodeID)
}

func (s *stubSessionRepository) Find(userID uint, sessionID string) (*domain.UserSession, error) {
	if s.findFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findFn(userID, sessionID)
}

func (s *stubSessionRepository) PruneExcess(userID uint, keep int) (int64, error) {
	if s.pruneExcessFn == nil {
		return 0, nil
	}
	return s.pruneExcessFn(userID, keep)
}

func (s *stubSessionRepository) ExpireIdle(idleAfter time.Duration) (int64, error) {
	if s.expireIdleFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.expireIdleFn(idleAfter)
}

func (s *stubSessionRepository) CountActive(nodeID string, window time.Duration) (int64, error) {
	if s.countActiveFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.countActiveFn(nodeID, window)
}

func (s *stubSessionRepository) RecentByUsers(userIDs []uint, since time.Time) (map[uint]time.Time, error) {
	if s.recentByUsersFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.recentByUsersFn(userIDs, since)
}

type stubMessageRepository struct {
	createFn      func(msg *domain.CharacterMessage) error
	countRecentFn func(senderID uint, since time.Time) (int64, error)
	convoFn       func(a, b uint, limit int) ([]domain.CharacterMessage, error)
	markReadFn    func(readerID, senderID uint) (int64, error)
	unreadFn      func(characterID uint) (int64, error)
}

func (s *stubMessageRepository) Create(msg *domain.CharacterMessage) error {
	if s.createFn == nil {
		return errors.New("not implemented")
	}
	return s.createFn(msg)
}

func (s *stubMessageRepository) CountRecentBySender(senderID uint, since time.Time) (int64, error) {
	if s.countRecentFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.countRecentFn(senderID, since)
}

func (s *stubMessageRepository) Conversation(a, b uint, limit int) ([]domain.CharacterMessage, error) {
	if s.convoFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.convoFn(a, b, limit)
}

func (s *stubMessageRepository) MarkConversationRead(readerID, senderID uint) (int64, error) {
	if s.markReadFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.markReadFn(readerID, senderID)
}

func (s *stubMessageRepository) UnreadCount(characterID uint) (int64, error) {
	if s.unreadFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.unreadFn(characterID)
}

type stubNotificationRepository struct {
	createFn         func(n *domain.Notification) error
	createIfAbsentFn func(n *domain.Notification) (bool, error)
	drainFn          func(characterID uint) ([]domain.Notification, error)
	pruneFn          func(olderThan time.Duration) (int64, error)
}

func (s *stubNotificationRepository) Create(n *domain.Notification) error {
	if s.createFn == nil {
		return errors.New("not implemented")
	}
	return s.createFn(n)
}

func (s *stubNotificationRepository) CreateIfAbsent(n *domain.Notification) (bool, error) {
	if s.createIfAbsentFn == nil {
		return false, errors.New("not implemented")
	}
	return s.createIfAbsentFn(n)
}

func (s *stubNotificationRepository) Drain(characterID uint) ([]domain.Notification, error) {
	if s.drainFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.drainFn(characterID)
}

func (s *stubNotificationRepository) PruneDelivered(olderThan time.Duration) (int64, error) {
	if s.pruneFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.pruneFn(olderThan)
}

type stubCharacterRepository struct {
	findByIDFn       func(id uint) (*domain.Character, error)
	existsFn         func(id uint) (bool, error)
	listByLocationFn func(locationID uint, limit int) ([]domain.Character, error)
}

func (s *stubCharacterRepository) FindByID(id uint) (*domain.Character, error) {
	if s.findByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findByIDFn(id)
}

func (s *stubCharacterRepository) Exists(id uint) (bool, error) {
	if s.existsFn == nil {
		return false, errors.New("not implemented")
	}
	return s.existsFn(id)
}

func (s *stubCharacterRepository) ListByLocation(locationID uint, limit int) ([]domain.Character, error) {
	if s.listByLocationFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listByLocationFn(locationID, limit)
}

type stubRelationshipRepository struct {
	listPendingFn func() ([]domain.RelationshipRequest, error)
}

func (s *stubRelationshipRepository) ListPending() ([]domain.RelationshipRequest, error) {
	if s.listPendingFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listPendingFn()
}

type stubEventRepository struct {
	startingBetweenFn func(from, to time.Time) ([]domain.WorldEvent, error)
	attendeesFn       func(eventID uint) ([]uint, error)
}

func (s *stubEventRepository) StartingBetween(from, to time.Time) ([]domain.WorldEvent, error) {
	if s.startingBetweenFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.startingBetweenFn(from, to)
}

func (s *stubEventRepository) Attendees(eventID uint) ([]uint, error) {
	if s.attendeesFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.attendeesFn(eventID)
}

type stubPerfLogRepository struct {
	recordFn  func(entry *domain.PerformanceLog) error
	averageFn func(nodeID string, since time.Time) (float64, error)
	pruneFn   func(olderThan time.Duration) (int64, error)
}

func (s *stubPerfLogRepository) Record(entry *domain.PerformanceLog) error {
	if s.recordFn == nil {
		return errors.New("not implemented")
	}
	return s.recordFn(entry)
}

func (s *stubPerfLogRepository) AverageDurationMS(nodeID string, since time.Time) (float64, error) {
	if s.averageFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.averageFn(nodeID, since)
}

func (s *stubPerfLogRepository) Prune(olderThan time.Duration) (int64, error) {
	if s.pruneFn == nil {
		return 0, errors.New("not implemented")
	}
	return s.pruneFn(olderThan)
}
