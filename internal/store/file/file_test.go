package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nexora-community/nexora-bot/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(
		filepath.Join(dir, "whitelist.json"),
		filepath.Join(dir, "afk.json"),
		filepath.Join(dir, "tickets.json"),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s, dir
}

func TestOpenCreatesDefaultShapes(t *testing.T) {
	_, dir := openTestStore(t)

	data, err := os.ReadFile(filepath.Join(dir, "whitelist.json"))
	if err != nil {
		t.Fatalf("read whitelist: %v", err)
	}
	var list store.AccessList
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("parse whitelist: %v", err)
	}
	if list.Semi == nil || list.Full == nil {
		t.Errorf("expected empty arrays, got %+v", list)
	}

	for _, name := range []string{"afk.json", "tickets.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if len(m) != 0 {
			t.Errorf("%s: expected empty object, got %d entries", name, len(m))
		}
	}
}

func TestAccessListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, dir := openTestStore(t)

	want := store.AccessList{Semi: []string{"100"}, Full: []string{"200", "300"}}
	if err := s.SaveAccessList(ctx, want); err != nil {
		t.Fatalf("SaveAccessList() error = %v", err)
	}

	reopened, err := Open(
		filepath.Join(dir, "whitelist.json"),
		filepath.Join(dir, "afk.json"),
		filepath.Join(dir, "tickets.json"),
	)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.AccessList(ctx)
	if err != nil {
		t.Fatalf("AccessList() error = %v", err)
	}
	if len(got.Semi) != 1 || got.Semi[0] != "100" {
		t.Errorf("semi = %v, want [100]", got.Semi)
	}
	if len(got.Full) != 2 || got.Full[0] != "200" {
		t.Errorf("full = %v, want [200 300]", got.Full)
	}
}

func TestAFKSetAndClear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	entry := store.AFKEntry{Reason: "lunch", Since: 1700000000000}
	if err := s.SetAFK(ctx, "42", entry); err != nil {
		t.Fatalf("SetAFK() error = %v", err)
	}
	got, ok, err := s.AFKEntry(ctx, "42")
	if err != nil || !ok {
		t.Fatalf("AFKEntry() = %v, %v, %v", got, ok, err)
	}
	if got.Reason != "lunch" {
		t.Errorf("reason = %q, want lunch", got.Reason)
	}

	if err := s.ClearAFK(ctx, "42"); err != nil {
		t.Fatalf("ClearAFK() error = %v", err)
	}
	if _, ok, _ := s.AFKEntry(ctx, "42"); ok {
		t.Error("entry still present after clear")
	}
	// clearing an absent entry is a no-op
	if err := s.ClearAFK(ctx, "42"); err != nil {
		t.Errorf("ClearAFK() on absent entry error = %v", err)
	}
}

func TestTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	rec := store.TicketRecord{ChannelID: "900", CreatorID: "42", State: store.TicketOpen}
	if err := s.SaveTicket(ctx, rec); err != nil {
		t.Fatalf("SaveTicket() error = %v", err)
	}
	got, ok, err := s.Ticket(ctx, "900")
	if err != nil || !ok {
		t.Fatalf("Ticket() = %v, %v, %v", got, ok, err)
	}
	if got.CreatorID != "42" || got.State != store.TicketOpen {
		t.Errorf("record = %+v", got)
	}

	rec.State = store.TicketClosed
	if err := s.SaveTicket(ctx, rec); err != nil {
		t.Fatalf("SaveTicket() update error = %v", err)
	}
	got, _, _ = s.Ticket(ctx, "900")
	if got.State != store.TicketClosed {
		t.Errorf("state = %q, want closed", got.State)
	}

	if err := s.DeleteTicket(ctx, "900"); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}
	if _, ok, _ := s.Ticket(ctx, "900"); ok {
		t.Error("record still present after delete")
	}
}
