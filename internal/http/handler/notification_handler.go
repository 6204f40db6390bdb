package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
)

// NotificationDrainer runs the generators and hands pending notifications to
// the polling client.
type NotificationDrainer interface {
	RunGenerators(ctx context.Context)
	Drain(ctx context.Context, characterID uint) ([]domain.Notification, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, characterID uint) (int64, error)
}

type NotificationHandler struct {
	notifications NotificationDrainer
	messages      UnreadCounter
	characters    CharacterResolver
}

func NewNotificationHandler(notifications NotificationDrainer, messages UnreadCounter, characters CharacterResolver) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, messages: messages, characters: characters}
}

// Poll handles GET /notifications: generators first so freshly notifiable
// facts are included in the same drain, then the transactional hand-off.
func (h *NotificationHandler) Poll(w http.ResponseWriter, r *http.Request) {
	characterID, ok := queryID(r, "character_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "character_id is required", nil)
		return
	}
	if !ownsCharacter(w, r, h.characters, characterID) {
		return
	}

	h.notifications.RunGenerators(r.Context())

	drained, err := h.notifications.Drain(r.Context(), characterID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to drain notifications", nil)
		return
	}
	unread, err := h.messages.UnreadCount(r.Context(), characterID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to count unread messages", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"notifications":   drained,
		"unread_messages": unread,
		"timestamp":       time.Now().Unix(),
	})
}
