package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// authedRequest carries the identity the session middleware would have set.
func authedRequest(method, target string, body io.Reader, userID uint) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithSession(req.Context(), userID, "sess-test"))
}

type stubCharacterResolver struct {
	chars map[uint]*domain.Character
}

func (s *stubCharacterResolver) FindByID(id uint) (*domain.Character, error) {
	if c, ok := s.chars[id]; ok {
		return c, nil
	}
	return nil, repository.ErrCharacterNotFound
}

type stubMessageSender struct {
	sendFn   func(senderID, receiverID uint, content, msgType string) (*domain.CharacterMessage, error)
	convoFn  func(viewerID, otherID uint, limit int) ([]domain.CharacterMessage, error)
	unreadFn func(characterID uint) (int64, error)
}

func (s *stubMessageSender) Send(_ context.Context, senderID, receiverID uint, content, msgType string) (*domain.CharacterMessage, error) {
	return s.sendFn(senderID, receiverID, content, msgType)
}

func (s *stubMessageSender) GetConversation(_ context.Context, viewerID, otherID uint, limit int) ([]domain.CharacterMessage, error) {
	return s.convoFn(viewerID, otherID, limit)
}

func (s *stubMessageSender) UnreadCount(_ context.Context, characterID uint) (int64, error) {
	if s.unreadFn == nil {
		return 0, nil
	}
	return s.unreadFn(characterID)
}

type stubNotificationDrainer struct {
	generatorsRan bool
	drainFn       func(characterID uint) ([]domain.Notification, error)
}

func (s *stubNotificationDrainer) RunGenerators(context.Context) { s.generatorsRan = true }

func (s *stubNotificationDrainer) Drain(_ context.Context, characterID uint) ([]domain.Notification, error) {
	return s.drainFn(characterID)
}

type stubLoadReporter struct {
	stats service.LocalStats
	err   error
}

func (s *stubLoadReporter) GatherStats(context.Context) (service.LocalStats, error) {
	return s.stats, s.err
}

type stubRouteDecider struct {
	decision service.RouteDecision
	err      error
}

func (s *stubRouteDecider) Decide(service.LocalStats) (service.RouteDecision, error) {
	return s.decision, s.err
}
