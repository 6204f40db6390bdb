package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// NotificationService owns the real-time notification queue: at-least-once
// generation with per-fact dedup, at-most-once hand-off to the client.
type NotificationService struct {
	notifications repository.NotificationRepository
	relationships repository.RelationshipRepository
	events        repository.EventRepository
	characters    repository.CharacterRepository
	logger        *slog.Logger

	reminderLead time.Duration
	retention    time.Duration
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	relationships repository.RelationshipRepository,
	events repository.EventRepository,
	characters repository.CharacterRepository,
	logger *slog.Logger,
	reminderLead time.Duration,
	retention time.Duration,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		relationships: relationships,
		events:        events,
		characters:    characters,
		logger:        logger,
		reminderLead:  reminderLead,
		retention:     retention,
	}
}

// Drain hands the recipient's pending notifications to the client, oldest
// first, marking them delivered in the same transaction.
func (s *NotificationService) Drain(ctx context.Context, characterID uint) ([]domain.Notification, error) {
	return s.notifications.Drain(characterID)
}

// RunGenerators evaluates every notifiable fact source. Generator errors are
// logged and do not abort the remaining generators; the next sweep retries.
func (s *NotificationService) RunGenerators(ctx context.Context) {
	if _, err := s.GenerateRelationshipRequests(ctx); err != nil {
		s.logger.ErrorContext(ctx, "relationship-request generator failed", "error", err)
	}
	if _, err := s.GenerateEventReminders(ctx); err != nil {
		s.logger.ErrorContext(ctx, "event-reminder generator failed", "error", err)
	}
}

// GenerateRelationshipRequests notifies the target of every pending request
// exactly once, keyed on the request id. Repeated or concurrent sweeps are
// absorbed by the transactional check-then-insert.
func (s *NotificationService) GenerateRelationshipRequests(ctx context.Context) (int, error) {
	pending, err := s.relationships.ListPending()
	if err != nil {
		return 0, err
	}
	created := 0
	for _, req := range pending {
		fromName := ""
		if from, err := s.characters.FindByID(req.FromCharacterID); err == nil {
			fromName = from.Name
		}
		notification, err := domain.NewNotification(
			req.ToCharacterID,
			domain.NotificationTypeRelationshipRequest,
			req.ID,
			domain.RelationshipRequestPayload{
				RequestID:       req.ID,
				FromCharacterID: req.FromCharacterID,
				FromName:        fromName,
			},
		)
		if err != nil {
			return created, err
		}
		inserted, err := s.notifications.CreateIfAbsent(notification)
		if err != nil {
			// Surfaced, not swallowed: the fact stays pending and the next
			// sweep retries it.
			observability.RecordNotificationEvent(ctx, domain.NotificationTypeRelationshipRequest, "error")
			return created, err
		}
		if inserted {
			created++
			observability.RecordNotificationEvent(ctx, domain.NotificationTypeRelationshipRequest, "created")
		} else {
			observability.RecordNotificationEvent(ctx, domain.NotificationTypeRelationshipRequest, "deduplicated")
		}
	}
	return created, nil
}

// GenerateEventReminders notifies attendees of events starting inside the
// lead window, once per (attendee, event).
func (s *NotificationService) GenerateEventReminders(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	upcoming, err := s.events.StartingBetween(now, now.Add(s.reminderLead))
	if err != nil {
		return 0, err
	}
	created := 0
	for _, event := range upcoming {
		attendees, err := s.events.Attendees(event.ID)
		if err != nil {
			return created, err
		}
		for _, characterID := range attendees {
			notification, err := domain.NewNotification(
				characterID,
				domain.NotificationTypeEventReminder,
				event.ID,
				domain.EventReminderPayload{
					EventID:  event.ID,
					Title:    event.Title,
					StartsAt: event.StartsAt,
				},
			)
			if err != nil {
				return created, err
			}
			inserted, err := s.notifications.CreateIfAbsent(notification)
			if err != nil {
				observability.RecordNotificationEvent(ctx, domain.NotificationTypeEventReminder, "error")
				return created, err
			}
			if inserted {
				created++
				observability.RecordNotificationEvent(ctx, domain.NotificationTypeEventReminder, "created")
			} else {
				observability.RecordNotificationEvent(ctx, domain.NotificationTypeEventReminder, "deduplicated")
			}
		}
	}
	return created, nil
}

// PruneDelivered removes delivered notifications past retention.
func (s *NotificationService) PruneDelivered(ctx context.Context) (int64, error) {
	return s.notifications.PruneDelivered(s.retention)
}
