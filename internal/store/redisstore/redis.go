// Package redisstore is the optional Redis-backed store, selected when a
// Redis address is configured. Each document is kept whole under a single
// key and rewritten in full on every mutation, so the persistence contract
// matches the flat-file backend exactly.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexora-community/nexora-bot/internal/store"
)

const (
	// KeyAccess is the key holding the whitelist document
	KeyAccess = "nexora:access"
	// KeyAFK is the key holding the AFK registry document
	KeyAFK = "nexora:afk"
	// KeyTickets is the key holding the ticket records document
	KeyTickets = "nexora:tickets"
)

// ConnectOptions holds the Redis connection parameters.
type ConnectOptions struct {
	Addr        string
	User        string
	Password    string
	RedisDB     int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	PingTimeout time.Duration
	PoolSize    int
}

// Connect creates a Redis client and verifies the connection with a single
// ping. The caller owns the returned client and must close it.
func Connect(opts ConnectOptions) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.User,
		Password:    opts.Password,
		DB:          opts.RedisDB,
		DialTimeout: opts.DialTimeout,
		ReadTimeout: opts.ReadTimeout,
		PoolSize:    opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Store persists the three documents as whole JSON values in Redis. The
// mutex serializes read-modify-write cycles on the map documents so
// concurrent mutations stay last-write-wins at document granularity.
type Store struct {
	mu     sync.Mutex
	client *redis.Client
}

// NewStore creates a Redis-backed store on an established client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) getDocument(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setDocument(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) AccessList(ctx context.Context) (store.AccessList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := store.AccessList{Semi: []string{}, Full: []string{}}
	if _, err := s.getDocument(ctx, KeyAccess, &list); err != nil {
		return store.AccessList{}, err
	}
	if list.Semi == nil {
		list.Semi = []string{}
	}
	if list.Full == nil {
		list.Full = []string{}
	}
	return list, nil
}

func (s *Store) SaveAccessList(ctx context.Context, list store.AccessList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDocument(ctx, KeyAccess, &list)
}

func (s *Store) afkEntries(ctx context.Context) (map[string]store.AFKEntry, error) {
	entries := map[string]store.AFKEntry{}
	if _, err := s.getDocument(ctx, KeyAFK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) AFKEntry(ctx context.Context, userID string) (store.AFKEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.afkEntries(ctx)
	if err != nil {
		return store.AFKEntry{}, false, err
	}
	entry, ok := entries[userID]
	return entry, ok, nil
}

func (s *Store) AFKEntries(ctx context.Context) (map[string]store.AFKEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.afkEntries(ctx)
}

func (s *Store) SetAFK(ctx context.Context, userID string, entry store.AFKEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.afkEntries(ctx)
	if err != nil {
		return err
	}
	entries[userID] = entry
	return s.setDocument(ctx, KeyAFK, entries)
}

func (s *Store) ClearAFK(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.afkEntries(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries[userID]; !ok {
		return nil
	}
	delete(entries, userID)
	return s.setDocument(ctx, KeyAFK, entries)
}

func (s *Store) ticketRecords(ctx context.Context) (map[string]store.TicketRecord, error) {
	records := map[string]store.TicketRecord{}
	if _, err := s.getDocument(ctx, KeyTickets, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) Ticket(ctx context.Context, channelID string) (store.TicketRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.ticketRecords(ctx)
	if err != nil {
		return store.TicketRecord{}, false, err
	}
	rec, ok := records[channelID]
	return rec, ok, nil
}

func (s *Store) SaveTicket(ctx context.Context, rec store.TicketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.ticketRecords(ctx)
	if err != nil {
		return err
	}
	records[rec.ChannelID] = rec
	return s.setDocument(ctx, KeyTickets, records)
}

func (s *Store) DeleteTicket(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.ticketRecords(ctx)
	if err != nil {
		return err
	}
	if _, ok := records[channelID]; !ok {
		return nil
	}
	delete(records, channelID)
	return s.setDocument(ctx, KeyTickets, records)
}
