// Package afk tracks members who have marked themselves away and produces
// the notices shown when an away member is mentioned.
package afk

import (
	"context"
	"fmt"
	"time"

	"github.com/nexora-community/nexora-bot/internal/store"
)

// DefaultReason is used when a member goes away without giving one.
const DefaultReason = "No reason provided"

// Notice describes one mentioned member who is currently away.
type Notice struct {
	UserID string
	Reason string
	Since  time.Time
}

// Registry wraps the store's AFK document with the mention/return rules.
type Registry struct {
	store store.Store
	now   func() time.Time
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s, now: time.Now}
}

// SetAway marks a member as away. An empty reason becomes DefaultReason;
// marking an already-away member overwrites their entry.
func (r *Registry) SetAway(ctx context.Context, userID, reason string) (store.AFKEntry, error) {
	if reason == "" {
		reason = DefaultReason
	}
	entry := store.AFKEntry{
		Reason: reason,
		Since:  r.now().UnixMilli(),
	}
	if err := r.store.SetAFK(ctx, userID, entry); err != nil {
		return store.AFKEntry{}, fmt.Errorf("failed to mark %s away: %w", userID, err)
	}
	return entry, nil
}

// HandleActivity processes one message from authorID mentioning mentionIDs.
// It returns a notice for every mentioned member who was away at the moment
// the message arrived, then clears the author's own away state. The author
// never gets a notice about themselves, and the snapshot is taken before
// the clear so an away author mentioning another away member still produces
// that member's notice.
func (r *Registry) HandleActivity(ctx context.Context, authorID string, mentionIDs []string) ([]Notice, bool, error) {
	entries, err := r.store.AFKEntries(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load afk registry: %w", err)
	}

	var notices []Notice
	seen := map[string]bool{}
	for _, id := range mentionIDs {
		if id == authorID || seen[id] {
			continue
		}
		seen[id] = true
		if entry, ok := entries[id]; ok {
			notices = append(notices, Notice{
				UserID: id,
				Reason: entry.Reason,
				Since:  time.UnixMilli(entry.Since),
			})
		}
	}

	_, wasAway := entries[authorID]
	if wasAway {
		if err := r.store.ClearAFK(ctx, authorID); err != nil {
			return notices, false, fmt.Errorf("failed to clear afk for %s: %w", authorID, err)
		}
	}
	return notices, wasAway, nil
}
