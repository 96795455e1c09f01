// Package access implements the whitelist and the per-command permission
// tiers. Tiers are strictly ordered; a member's tier must be at least the
// command's required tier for the command to run.
package access

import (
	"errors"
	"fmt"

	"github.com/nexora-community/nexora-bot/internal/store"
)

// Tier is a member's access level.
type Tier int

const (
	// TierNone is any member not on the whitelist
	TierNone Tier = iota
	// TierSemi grants the lighter moderation commands
	TierSemi
	// TierFull grants all moderation and admin commands
	TierFull
	// TierOwner is reserved for the guild owner
	TierOwner
)

func (t Tier) String() string {
	switch t {
	case TierSemi:
		return "semi"
	case TierFull:
		return "full"
	case TierOwner:
		return "owner"
	default:
		return "none"
	}
}

// Kind names a whitelist bucket for grant operations.
type Kind string

const (
	KindSemi Kind = "semi"
	KindFull Kind = "full"
)

// ErrAlreadyListed is returned when granting a user already on the target list.
var ErrAlreadyListed = errors.New("user is already on that whitelist")

// ErrUnknownKind is returned when a grant names a bucket other than semi or full.
var ErrUnknownKind = errors.New("unknown whitelist kind")

// Classify returns the tier for a user. The guild owner is always TierOwner
// regardless of list membership; full listing wins over semi listing.
func Classify(list store.AccessList, userID, ownerID string) Tier {
	if userID == ownerID && ownerID != "" {
		return TierOwner
	}
	if contains(list.Full, userID) {
		return TierFull
	}
	if contains(list.Semi, userID) {
		return TierSemi
	}
	return TierNone
}

// Grant adds a user to the named bucket and returns the updated list.
// Granting full to a semi-listed user moves them up; the semi entry stays,
// classification already prefers the full bucket.
func Grant(list store.AccessList, kind Kind, userID string) (store.AccessList, error) {
	switch kind {
	case KindSemi:
		if contains(list.Semi, userID) {
			return list, fmt.Errorf("%w: %s (semi)", ErrAlreadyListed, userID)
		}
		list.Semi = append(list.Semi, userID)
	case KindFull:
		if contains(list.Full, userID) {
			return list, fmt.Errorf("%w: %s (full)", ErrAlreadyListed, userID)
		}
		list.Full = append(list.Full, userID)
	default:
		return list, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return list, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// commandTiers maps command names to the tier required to run them.
// Commands absent from the map are open to everyone.
var commandTiers = map[string]Tier{
	"kick":    TierSemi,
	"timeout": TierSemi,

	"cmd":         TierFull,
	"ban":         TierFull,
	"ticket":      TierFull,
	"ticketpanel": TierFull,
	"status":      TierFull,
	"downloads":   TierFull,
	"purge":       TierFull,
	"userinfo":    TierFull,
	"serverinfo":  TierFull,
	"lock":        TierFull,
	"unlock":      TierFull,
	"slowmode":    TierFull,
	"roleadd":     TierFull,
	"roleremove":  TierFull,
	"announce":    TierFull,
	"vpanel":      TierFull,

	"whitelist": TierOwner,
}

// Required returns the tier a command demands. Unknown commands require
// TierNone, meaning anyone may run them.
func Required(command string) Tier {
	return commandTiers[command]
}

// Allowed reports whether a member at the given tier may run the command.
func Allowed(tier Tier, command string) bool {
	return tier >= Required(command)
}
