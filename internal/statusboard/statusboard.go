// Package statusboard updates the per-platform status channels. Each
// platform maps to one channel whose name starts with a status glyph; a
// status change rewrites that glyph in place.
package statusboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/logger"
)

var (
	// ErrUnknownPlatform is returned for a platform key outside the glossary.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrUnknownStatus is returned for a status key outside the glossary.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrChannelNotConfigured is returned when no channel is mapped for a platform.
	ErrChannelNotConfigured = errors.New("no status channel configured for platform")
)

// platformNames maps platform keys to display names. scripthub has no status
// channel of its own but is a valid download target, so it lives here too.
var platformNames = map[string]string{
	"windows":   "Windows",
	"macos":     "macOS",
	"linux":     "Linux",
	"android":   "Android",
	"ios":       "iOS",
	"scripthub": "Multi-Platform",
}

type statusInfo struct {
	glyph       string
	description string
}

var statuses = map[string]statusInfo{
	"up":         {"🟢", "Up and working great"},
	"down":       {"🔴", "Down (patched because of an update)"},
	"api":        {"🔵", "API is under fixes and might be still working"},
	"big":        {"🟡", "Big update is coming and might be still working"},
	"longtime":   {"⚫", "Might be down for a while"},
	"comingsoon": {"🟠", "Coming soon!"},
}

var glyphs = []string{"🟢", "🔴", "🔵", "🟡", "⚫", "🟠"}

// PlatformName returns the display name for a platform key.
func PlatformName(key string) (string, bool) {
	name, ok := platformNames[strings.ToLower(key)]
	return name, ok
}

// StatusDescription returns the human description for a status key.
func StatusDescription(key string) (string, bool) {
	info, ok := statuses[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return info.description, true
}

// Rewrite replaces the first recognized status glyph in name with the glyph
// for the given status key. When the name carries no recognized glyph the
// name comes back unchanged with changed=false; callers still treat this as
// success.
func Rewrite(name, statusKey string) (string, bool, error) {
	info, ok := statuses[strings.ToLower(statusKey)]
	if !ok {
		return name, false, fmt.Errorf("%w: %q", ErrUnknownStatus, statusKey)
	}
	best := -1
	var found string
	for _, g := range glyphs {
		if idx := strings.Index(name, g); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = g
		}
	}
	if best < 0 {
		return name, false, nil
	}
	return name[:best] + info.glyph + name[best+len(found):], true, nil
}

// ChannelRenamer is the slice of the gateway session the board needs.
// *discordgo.Session satisfies it.
type ChannelRenamer interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Board applies status changes to the configured platform channels.
type Board struct {
	api      ChannelRenamer
	channels map[string]string
	log      logger.Logger
}

// NewBoard creates a board over a platform→channel map, typically loaded
// from the board config file.
func NewBoard(api ChannelRenamer, channels map[string]string, log logger.Logger) *Board {
	return &Board{api: api, channels: channels, log: log}
}

// SetStatus validates both keys, then rewrites the status glyph in the
// platform channel's name. A name with no recognized glyph is left alone
// and still reported as success.
func (b *Board) SetStatus(platformKey, statusKey string) error {
	platformKey = strings.ToLower(platformKey)
	if _, ok := platformNames[platformKey]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, platformKey)
	}
	if _, ok := statuses[strings.ToLower(statusKey)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, statusKey)
	}
	channelID, ok := b.channels[platformKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrChannelNotConfigured, platformKey)
	}

	channel, err := b.api.Channel(channelID)
	if err != nil {
		return fmt.Errorf("failed to fetch status channel: %w", err)
	}
	newName, changed, err := Rewrite(channel.Name, statusKey)
	if err != nil {
		return err
	}
	if !changed {
		b.log.Warn("status channel name has no status glyph, leaving unchanged",
			logger.String("platform", platformKey),
			logger.String("channel", channel.Name))
		return nil
	}
	if _, err := b.api.ChannelEditComplex(channelID, &discordgo.ChannelEdit{Name: newName}); err != nil {
		return fmt.Errorf("failed to rename status channel: %w", err)
	}
	return nil
}
