// Package store defines the persisted document shapes and the repository
// interface shared by the flat-file and Redis backends. Every mutation
// rewrites the full document; concurrent writers are last-write-wins.
package store

import "context"

// AccessList holds the two permission tiers. Field names match the
// human-editable JSON document on disk.
type AccessList struct {
	Semi []string `json:"semiWhitelist"`
	Full []string `json:"fullWhitelist"`
}

// AFKEntry is one row of the presence-absence registry, keyed by user ID.
type AFKEntry struct {
	Reason string `json:"reason"`
	Since  int64  `json:"timestamp"` // unix milliseconds
}

type TicketState string

const (
	TicketOpen   TicketState = "open"
	TicketClosed TicketState = "closed"
)

// TicketRecord is the owned ticket document: channel -> creator binding plus
// lifecycle state, so creator identity no longer has to be derived from the
// channel's permission overwrites.
type TicketRecord struct {
	ChannelID string      `json:"channel_id"`
	CreatorID string      `json:"creator_id"`
	State     TicketState `json:"state"`
}

// Store is the repository boundary for all persisted bot state. Backends
// serialize their own mutations; callers see plain load/get/mutate/persist.
type Store interface {
	AccessList(ctx context.Context) (AccessList, error)
	SaveAccessList(ctx context.Context, list AccessList) error

	AFKEntry(ctx context.Context, userID string) (AFKEntry, bool, error)
	AFKEntries(ctx context.Context) (map[string]AFKEntry, error)
	SetAFK(ctx context.Context, userID string, entry AFKEntry) error
	ClearAFK(ctx context.Context, userID string) error

	Ticket(ctx context.Context, channelID string) (TicketRecord, bool, error)
	SaveTicket(ctx context.Context, rec TicketRecord) error
	DeleteTicket(ctx context.Context, channelID string) error
}
