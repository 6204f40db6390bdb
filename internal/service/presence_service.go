package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// PresenceService is the read-only "who is online where" view: characters in
// a location whose owning user has session activity inside the online window,
// newest activity first. The Redis last-seen cache answers for most users;
// the session table is the fallback for cache misses.
type PresenceService struct {
	sessions   repository.SessionRepository
	characters repository.CharacterRepository
	cache      *PresenceCache
	logger     *slog.Logger

	onlineWindow time.Duration
}

func NewPresenceService(
	sessions repository.SessionRepository,
	characters repository.CharacterRepository,
	cache *PresenceCache,
	logger *slog.Logger,
	onlineWindow time.Duration,
) *PresenceService {
	return &PresenceService{
		sessions:     sessions,
		characters:   characters,
		cache:        cache,
		logger:       logger,
		onlineWindow: onlineWindow,
	}
}

func (s *PresenceService) OnlineInLocation(ctx context.Context, locationID uint, limit int) ([]domain.CharacterSummary, error) {
	chars, err := s.characters.ListByLocation(locationID, repository.MaxPresenceLimit)
	if err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return []domain.CharacterSummary{}, nil
	}

	userIDs := make([]uint, 0, len(chars))
	seenUser := make(map[uint]struct{}, len(chars))
	for _, c := range chars {
		if _, ok := seenUser[c.UserID]; ok {
			continue
		}
		seenUser[c.UserID] = struct{}{}
		userIDs = append(userIDs, c.UserID)
	}

	since := time.Now().UTC().Add(-s.onlineWindow)
	lastSeen, err := s.cache.LastSeen(ctx, userIDs)
	if err != nil {
		s.logger.DebugContext(ctx, "presence cache lookup failed, using session table", "error", err)
		lastSeen = map[uint]time.Time{}
	}
	var misses []uint
	for _, id := range userIDs {
		if _, ok := lastSeen[id]; !ok {
			misses = append(misses, id)
		}
	}
	if len(misses) > 0 {
		fromDB, err := s.sessions.RecentByUsers(misses, since)
		if err != nil {
			return nil, err
		}
		for id, t := range fromDB {
			lastSeen[id] = t
		}
	}

	summaries := make([]domain.CharacterSummary, 0, len(chars))
	for _, c := range chars {
		seenAt, ok := lastSeen[c.UserID]
		if !ok || seenAt.Before(since) {
			continue
		}
		summaries = append(summaries, domain.CharacterSummary{
			CharacterID:  c.ID,
			Name:         c.Name,
			LocationID:   c.LocationID,
			LastActivity: seenAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LastActivity.Equal(summaries[j].LastActivity) {
			return summaries[i].CharacterID < summaries[j].CharacterID
		}
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})

	if limit < 1 || limit > repository.MaxPresenceLimit {
		limit = repository.DefaultPresenceLimit
	}
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
