package tickets

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/store"
)

// fakeAPI records gateway calls and serves canned channel/role data.
type fakeAPI struct {
	channels map[string]*discordgo.Channel
	roles    []*discordgo.Role

	permSets  []permSet
	deleted   []string
	deleteErr error
	messages  []*discordgo.MessageSend
}

type permSet struct {
	channelID, targetID string
	targetType          discordgo.PermissionOverwriteType
	allow, deny         int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{channels: map[string]*discordgo.Channel{}}
}

func (f *fakeAPI) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("channel not found")
	}
	return ch, nil
}

func (f *fakeAPI) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	var out []*discordgo.Channel
	for _, ch := range f.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (f *fakeAPI) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeAPI) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch := &discordgo.Channel{
		ID:                   "created-1",
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		GuildID:              guildID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeAPI) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error {
	f.permSets = append(f.permSets, permSet{channelID, targetID, targetType, allow, deny})
	return nil
}

func (f *fakeAPI) ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, channelID)
	delete(f.channels, channelID)
	return nil, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.messages = append(f.messages, data)
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

// memStore is an in-memory ticket store; the other documents are unused here.
type memStore struct {
	tickets map[string]store.TicketRecord
}

func newMemStore() *memStore {
	return &memStore{tickets: map[string]store.TicketRecord{}}
}

func (m *memStore) AccessList(ctx context.Context) (store.AccessList, error) {
	return store.AccessList{}, nil
}
func (m *memStore) SaveAccessList(ctx context.Context, list store.AccessList) error { return nil }
func (m *memStore) AFKEntry(ctx context.Context, userID string) (store.AFKEntry, bool, error) {
	return store.AFKEntry{}, false, nil
}
func (m *memStore) AFKEntries(ctx context.Context) (map[string]store.AFKEntry, error) {
	return nil, nil
}
func (m *memStore) SetAFK(ctx context.Context, userID string, entry store.AFKEntry) error { return nil }
func (m *memStore) ClearAFK(ctx context.Context, userID string) error                     { return nil }

func (m *memStore) Ticket(ctx context.Context, channelID string) (store.TicketRecord, bool, error) {
	rec, ok := m.tickets[channelID]
	return rec, ok, nil
}

func (m *memStore) SaveTicket(ctx context.Context, rec store.TicketRecord) error {
	m.tickets[rec.ChannelID] = rec
	return nil
}

func (m *memStore) DeleteTicket(ctx context.Context, channelID string) error {
	delete(m.tickets, channelID)
	return nil
}

func setup() (*Manager, *fakeAPI, *memStore) {
	api := newFakeAPI()
	ms := newMemStore()
	m := NewManager(api, ms)
	m.SetBotUser("bot-1")
	return m, api, ms
}

func TestChannelName(t *testing.T) {
	tests := []struct {
		name string
		user *discordgo.User
		want string
	}{
		{"legacy discriminator", &discordgo.User{Username: "Alice", Discriminator: "1234"}, "ticket-alice-1234"},
		{"pomelo handle", &discordgo.User{Username: "alice", Discriminator: "0"}, "ticket-alice"},
		{"no discriminator", &discordgo.User{Username: "Bob"}, "ticket-bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChannelName(tt.user); got != tt.want {
				t.Errorf("ChannelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("panel outside a category fails", func(t *testing.T) {
		m, api, _ := setup()
		api.channels["panel"] = &discordgo.Channel{ID: "panel", Name: "support"}
		_, err := m.Create(ctx, "guild-1", "panel", &discordgo.User{ID: "42", Username: "alice"})
		if !errors.Is(err, ErrNoCategory) {
			t.Errorf("error = %v, want ErrNoCategory", err)
		}
	})

	t.Run("creates channel with overwrites and record", func(t *testing.T) {
		m, api, ms := setup()
		api.channels["panel"] = &discordgo.Channel{ID: "panel", Name: "support", ParentID: "cat-1"}
		api.roles = []*discordgo.Role{
			{ID: "role-members", Name: "Members"},
			{ID: "role-mod", Name: "Moderator"},
		}

		ch, err := m.Create(ctx, "guild-1", "panel", &discordgo.User{ID: "42", Username: "alice", Discriminator: "0"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if ch.Name != "ticket-alice" {
			t.Errorf("name = %q", ch.Name)
		}
		if ch.ParentID != "cat-1" {
			t.Errorf("parent = %q, want cat-1", ch.ParentID)
		}

		byID := map[string]*discordgo.PermissionOverwrite{}
		for _, ow := range ch.PermissionOverwrites {
			byID[ow.ID] = ow
		}
		if ow := byID["guild-1"]; ow == nil || ow.Deny&discordgo.PermissionViewChannel == 0 {
			t.Error("default role should be denied view")
		}
		if ow := byID["role-members"]; ow == nil || ow.Deny&discordgo.PermissionViewChannel == 0 {
			t.Error("Members role should be denied view")
		}
		for _, id := range []string{"42", "bot-1", "role-mod"} {
			ow := byID[id]
			if ow == nil || ow.Allow&memberAllow != int64(memberAllow) {
				t.Errorf("%s should be granted view/send/history", id)
			}
		}

		rec, ok := ms.tickets[ch.ID]
		if !ok || rec.CreatorID != "42" || rec.State != store.TicketOpen {
			t.Errorf("record = %+v, %v", rec, ok)
		}
		if len(api.messages) != 1 {
			t.Fatalf("expected one welcome message, got %d", len(api.messages))
		}
		if len(api.messages[0].Components) != 1 {
			t.Error("welcome message should carry the control row")
		}
	})
}

func TestCreatorResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("record wins", func(t *testing.T) {
		m, _, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}
		got, err := m.Creator(ctx, ch)
		if err != nil || got != "42" {
			t.Errorf("Creator() = %q, %v", got, err)
		}
	})

	t.Run("overwrite scan skips the bot", func(t *testing.T) {
		m, _, _ := setup()
		ch := &discordgo.Channel{
			ID:   "ch-2",
			Name: "ticket-bob",
			PermissionOverwrites: []*discordgo.PermissionOverwrite{
				{ID: "bot-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAllow},
				{ID: "role-mod", Type: discordgo.PermissionOverwriteTypeRole, Allow: memberAllow},
				{ID: "77", Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAllow},
			},
		}
		got, err := m.Creator(ctx, ch)
		if err != nil || got != "77" {
			t.Errorf("Creator() = %q, %v", got, err)
		}
	})

	t.Run("unresolvable", func(t *testing.T) {
		m, _, _ := setup()
		ch := &discordgo.Channel{ID: "ch-3", Name: "ticket-ghost"}
		_, err := m.Creator(ctx, ch)
		if !errors.Is(err, ErrCreatorUnresolvable) {
			t.Errorf("error = %v, want ErrCreatorUnresolvable", err)
		}
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-ticket channel", func(t *testing.T) {
		m, _, _ := setup()
		_, err := m.Close(ctx, &discordgo.Channel{ID: "ch-1", Name: "general"}, "42", false)
		if !errors.Is(err, ErrNotTicketChannel) {
			t.Errorf("error = %v, want ErrNotTicketChannel", err)
		}
	})

	t.Run("creator may close", func(t *testing.T) {
		m, api, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}

		creatorID, err := m.Close(ctx, ch, "42", false)
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if creatorID != "42" {
			t.Errorf("creatorID = %q", creatorID)
		}
		if len(api.permSets) != 1 {
			t.Fatalf("expected one overwrite edit, got %d", len(api.permSets))
		}
		ps := api.permSets[0]
		if ps.deny&discordgo.PermissionSendMessages == 0 {
			t.Error("send should be denied")
		}
		if ps.allow&discordgo.PermissionViewChannel == 0 || ps.allow&discordgo.PermissionReadMessageHistory == 0 {
			t.Error("view and history should stay allowed")
		}
		if ms.tickets["ch-1"].State != store.TicketClosed {
			t.Error("record should be closed")
		}
	})

	t.Run("stranger is refused", func(t *testing.T) {
		m, api, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}

		_, err := m.Close(ctx, ch, "99", false)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
		if len(api.permSets) != 0 {
			t.Error("no overwrite edit should happen")
		}
	})

	t.Run("privileged actor may close", func(t *testing.T) {
		m, _, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}

		if _, err := m.Close(ctx, ch, "99", true); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestReopen(t *testing.T) {
	ctx := context.Background()

	t.Run("restores send", func(t *testing.T) {
		m, api, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketClosed}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}

		if _, err := m.Reopen(ctx, ch, true); err != nil {
			t.Fatalf("Reopen() error = %v", err)
		}
		ps := api.permSets[0]
		if ps.allow != int64(memberAllow) || ps.deny != 0 {
			t.Errorf("overwrite = allow %d deny %d", ps.allow, ps.deny)
		}
		if ms.tickets["ch-1"].State != store.TicketOpen {
			t.Error("record should be open")
		}
	})

	t.Run("already open is a no-op success", func(t *testing.T) {
		m, _, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}
		if _, err := m.Reopen(ctx, ch, true); err != nil {
			t.Errorf("Reopen() error = %v", err)
		}
	})

	t.Run("unprivileged is refused", func(t *testing.T) {
		m, _, _ := setup()
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}
		if _, err := m.Reopen(ctx, ch, false); !errors.Is(err, ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes channel and record", func(t *testing.T) {
		m, api, ms := setup()
		ms.tickets["ch-1"] = store.TicketRecord{ChannelID: "ch-1", CreatorID: "42", State: store.TicketOpen}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}

		if err := m.Delete(ctx, ch, true); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "ch-1" {
			t.Errorf("deleted = %v", api.deleted)
		}
		if _, ok := ms.tickets["ch-1"]; ok {
			t.Error("record should be gone")
		}
	})

	t.Run("already-gone channel is a silent success", func(t *testing.T) {
		m, api, _ := setup()
		api.deleteErr = &discordgo.RESTError{
			Response: &http.Response{StatusCode: http.StatusNotFound},
			Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
		}
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}
		if err := m.Delete(ctx, ch, true); err != nil {
			t.Errorf("Delete() error = %v, want nil", err)
		}
	})

	t.Run("other API failure surfaces", func(t *testing.T) {
		m, api, _ := setup()
		api.deleteErr = errors.New("boom")
		ch := &discordgo.Channel{ID: "ch-1", Name: "ticket-alice"}
		if err := m.Delete(ctx, ch, true); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCloseAll(t *testing.T) {
	ctx := context.Background()
	m, api, ms := setup()

	api.channels["t1"] = &discordgo.Channel{ID: "t1", Name: "ticket-alice", Type: discordgo.ChannelTypeGuildText}
	api.channels["t2"] = &discordgo.Channel{ID: "t2", Name: "ticket-ghost", Type: discordgo.ChannelTypeGuildText}
	api.channels["gen"] = &discordgo.Channel{ID: "gen", Name: "general", Type: discordgo.ChannelTypeGuildText}
	ms.tickets["t1"] = store.TicketRecord{ChannelID: "t1", CreatorID: "42", State: store.TicketOpen}

	result, err := m.CloseAll(ctx, "guild-1")
	if err != nil {
		t.Fatalf("CloseAll() error = %v", err)
	}
	if len(result.Closed) != 1 || result.Closed[0] != "t1" {
		t.Errorf("closed = %v", result.Closed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "t2" {
		t.Errorf("skipped = %v", result.Skipped)
	}
	if len(api.permSets) != 1 {
		t.Errorf("expected one overwrite edit, got %d", len(api.permSets))
	}
}
