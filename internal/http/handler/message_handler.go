package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// MessageSender is the slice of the message service the handler consumes.
type MessageSender interface {
	Send(ctx context.Context, senderID, receiverID uint, content, msgType string) (*domain.CharacterMessage, error)
	GetConversation(ctx context.Context, viewerID, otherID uint, limit int) ([]domain.CharacterMessage, error)
	UnreadCount(ctx context.Context, characterID uint) (int64, error)
}

// CharacterResolver checks that the acting character belongs to the
// authenticated user.
type CharacterResolver interface {
	FindByID(id uint) (*domain.Character, error)
}

type MessageHandler struct {
	messages   MessageSender
	characters CharacterResolver
}

func NewMessageHandler(messages MessageSender, characters CharacterResolver) *MessageHandler {
	return &MessageHandler{messages: messages, characters: characters}
}

type sendMessageRequest struct {
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
	Type       string `json:"type"`
}

// Send handles POST /messages/send.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.SenderID == 0 || req.ReceiverID == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "sender_id and receiver_id are required", nil)
		return
	}
	if !ownsCharacter(w, r, h.characters, req.SenderID) {
		return
	}

	msg, err := h.messages.Send(r.Context(), req.SenderID, req.ReceiverID, req.Content, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "message rate limit exceeded", nil)
		case errors.Is(err, service.ErrEmptyMessage):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "message content is empty", nil)
		case errors.Is(err, service.ErrUnknownSender), errors.Is(err, service.ErrUnknownRecipient):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "character not found", nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to send message", nil)
		}
		return
	}
	response.JSON(w, r, http.StatusCreated, msg)
}

// Conversation handles GET /messages. Fetching marks the other side's
// messages to the viewer as read.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := queryID(r, "character_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "character_id is required", nil)
		return
	}
	otherID, ok := queryID(r, "with")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "with is required", nil)
		return
	}
	if !ownsCharacter(w, r, h.characters, viewerID) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.messages.GetConversation(r.Context(), viewerID, otherID, limit)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load conversation", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// ownsCharacter rejects the request unless the acting character belongs to
// the authenticated user. Shared by every handler that takes a character id.
func ownsCharacter(w http.ResponseWriter, r *http.Request, characters CharacterResolver, characterID uint) bool {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated user", nil)
		return false
	}
	char, err := characters.FindByID(characterID)
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "character not found", nil)
			return false
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "character lookup failed", nil)
		return false
	}
	if char.UserID != userID {
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "character does not belong to this user", nil)
		return false
	}
	return true
}

func queryID(r *http.Request, name string) (uint, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
