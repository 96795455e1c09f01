package access

import (
	"errors"
	"testing"

	"github.com/nexora-community/nexora-bot/internal/store"
)

func TestClassify(t *testing.T) {
	list := store.AccessList{
		Semi: []string{"100", "300"},
		Full: []string{"200", "300"},
	}

	tests := []struct {
		name    string
		userID  string
		ownerID string
		want    Tier
	}{
		{"unlisted user", "999", "1", TierNone},
		{"semi listed", "100", "1", TierSemi},
		{"full listed", "200", "1", TierFull},
		{"full wins over semi", "300", "1", TierFull},
		{"guild owner", "1", "1", TierOwner},
		{"owner beats listing", "200", "200", TierOwner},
		{"empty owner never matches", "", "", TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(list, tt.userID, tt.ownerID); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrant(t *testing.T) {
	t.Run("adds to semi", func(t *testing.T) {
		list, err := Grant(store.AccessList{}, KindSemi, "100")
		if err != nil {
			t.Fatalf("Grant() error = %v", err)
		}
		if len(list.Semi) != 1 || list.Semi[0] != "100" {
			t.Errorf("semi = %v", list.Semi)
		}
	})

	t.Run("adds to full", func(t *testing.T) {
		list, err := Grant(store.AccessList{}, KindFull, "100")
		if err != nil {
			t.Fatalf("Grant() error = %v", err)
		}
		if len(list.Full) != 1 || list.Full[0] != "100" {
			t.Errorf("full = %v", list.Full)
		}
	})

	t.Run("duplicate grant fails", func(t *testing.T) {
		list := store.AccessList{Semi: []string{"100"}}
		_, err := Grant(list, KindSemi, "100")
		if !errors.Is(err, ErrAlreadyListed) {
			t.Errorf("error = %v, want ErrAlreadyListed", err)
		}
	})

	t.Run("semi user can be promoted to full", func(t *testing.T) {
		list := store.AccessList{Semi: []string{"100"}}
		list, err := Grant(list, KindFull, "100")
		if err != nil {
			t.Fatalf("Grant() error = %v", err)
		}
		if Classify(list, "100", "1") != TierFull {
			t.Error("promoted user should classify as full")
		}
	})

	t.Run("unknown kind fails", func(t *testing.T) {
		_, err := Grant(store.AccessList{}, Kind("admin"), "100")
		if !errors.Is(err, ErrUnknownKind) {
			t.Errorf("error = %v, want ErrUnknownKind", err)
		}
	})
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		command string
		want    bool
	}{
		{"open command for unlisted", TierNone, "ping", true},
		{"semi command blocked for unlisted", TierNone, "kick", false},
		{"semi command allowed for semi", TierSemi, "kick", true},
		{"full command blocked for semi", TierSemi, "ban", false},
		{"full command allowed for full", TierFull, "ban", true},
		{"owner command blocked for full", TierFull, "whitelist", false},
		{"owner command allowed for owner", TierOwner, "whitelist", true},
		{"owner runs everything", TierOwner, "kick", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.tier, tt.command); got != tt.want {
				t.Errorf("Allowed(%v, %q) = %v, want %v", tt.tier, tt.command, got, tt.want)
			}
		})
	}
}
