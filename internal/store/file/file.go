// Package file is the default store backend: three human-editable JSON
// documents, loaded once at startup and rewritten in full on every mutation.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nexora-community/nexora-bot/internal/store"
)

// Store keeps the in-memory copy of each document and flushes it back to
// disk synchronously after every mutation. A single mutex serializes all
// access; the observable result of concurrent mutations stays
// last-write-wins, matching the flat-file contract.
type Store struct {
	mu sync.Mutex

	accessPath  string
	afkPath     string
	ticketsPath string

	access  store.AccessList
	afk     map[string]store.AFKEntry
	tickets map[string]store.TicketRecord
}

// Open loads the three documents, creating any missing file with its empty
// default shape.
func Open(accessPath, afkPath, ticketsPath string) (*Store, error) {
	s := &Store{
		accessPath:  accessPath,
		afkPath:     afkPath,
		ticketsPath: ticketsPath,
		access:      store.AccessList{Semi: []string{}, Full: []string{}},
		afk:         map[string]store.AFKEntry{},
		tickets:     map[string]store.TicketRecord{},
	}

	if err := loadOrCreate(accessPath, &s.access); err != nil {
		return nil, fmt.Errorf("access list: %w", err)
	}
	if err := loadOrCreate(afkPath, &s.afk); err != nil {
		return nil, fmt.Errorf("afk registry: %w", err)
	}
	if err := loadOrCreate(ticketsPath, &s.tickets); err != nil {
		return nil, fmt.Errorf("ticket records: %w", err)
	}
	if s.access.Semi == nil {
		s.access.Semi = []string{}
	}
	if s.access.Full == nil {
		s.access.Full = []string{}
	}
	return s, nil
}

func loadOrCreate(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return writeDocument(path, v)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeDocument(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *Store) AccessList(ctx context.Context) (store.AccessList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := store.AccessList{
		Semi: append([]string(nil), s.access.Semi...),
		Full: append([]string(nil), s.access.Full...),
	}
	return out, nil
}

func (s *Store) SaveAccessList(ctx context.Context, list store.AccessList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = list
	return writeDocument(s.accessPath, &s.access)
}

func (s *Store) AFKEntry(ctx context.Context, userID string) (store.AFKEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.afk[userID]
	return entry, ok, nil
}

func (s *Store) AFKEntries(ctx context.Context) (map[string]store.AFKEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]store.AFKEntry, len(s.afk))
	for k, v := range s.afk {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SetAFK(ctx context.Context, userID string, entry store.AFKEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afk[userID] = entry
	return writeDocument(s.afkPath, &s.afk)
}

func (s *Store) ClearAFK(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.afk[userID]; !ok {
		return nil
	}
	delete(s.afk, userID)
	return writeDocument(s.afkPath, &s.afk)
}

func (s *Store) Ticket(ctx context.Context, channelID string) (store.TicketRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tickets[channelID]
	return rec, ok, nil
}

func (s *Store) SaveTicket(ctx context.Context, rec store.TicketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[rec.ChannelID] = rec
	return writeDocument(s.ticketsPath, &s.tickets)
}

func (s *Store) DeleteTicket(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[channelID]; !ok {
		return nil
	}
	delete(s.tickets, channelID)
	return writeDocument(s.ticketsPath, &s.tickets)
}
