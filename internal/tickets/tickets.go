// Package tickets implements the support ticket lifecycle: private channel
// creation from a panel button, close/reopen via permission overwrites, and
// deletion. Each ticket has an owned record {channel, creator, state} in the
// store; the record is the primary source of creator identity, with a scan
// of the channel's member overwrites as fallback for channels created before
// records existed.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/store"
)

// Component identifiers carried by the panel and control buttons.
const (
	ButtonCreate = "create_ticket"
	ButtonClose  = "close_ticket"
	ButtonDelete = "delete_ticket"
)

// NamePrefix marks a channel as a ticket channel.
const NamePrefix = "ticket-"

var (
	// ErrNoCategory is returned when the panel channel has no parent category.
	ErrNoCategory = errors.New("ticket panel channel must be in a category")
	// ErrNotTicketChannel is returned when an operation targets a channel
	// whose name does not carry the ticket prefix.
	ErrNotTicketChannel = errors.New("not a ticket channel")
	// ErrCreatorUnresolvable is returned when neither the record nor the
	// overwrite scan identifies the ticket creator.
	ErrCreatorUnresolvable = errors.New("could not determine the ticket creator")
	// ErrForbidden is returned when the actor may not perform the operation.
	ErrForbidden = errors.New("not permitted to manage this ticket")
)

const memberAllow = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// ChannelAPI is the slice of the gateway session the manager needs.
// *discordgo.Session satisfies it.
type ChannelAPI interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Manager drives the ticket state machine.
type Manager struct {
	api       ChannelAPI
	store     store.Store
	botUserID string
}

// NewManager creates a manager. SetBotUser must be called once the gateway
// session is ready, before tickets are created or resolved.
func NewManager(api ChannelAPI, s store.Store) *Manager {
	return &Manager{api: api, store: s}
}

// SetBotUser records the bot's own user ID so the overwrite fallback scan
// can skip the bot's entry.
func (m *Manager) SetBotUser(id string) {
	m.botUserID = id
}

// ChannelName returns the deterministic channel name for a creator.
func ChannelName(user *discordgo.User) string {
	name := NamePrefix + user.Username
	if user.Discriminator != "" && user.Discriminator != "0" {
		name += "-" + user.Discriminator
	}
	return strings.ToLower(name)
}

// IsTicketChannel reports whether a channel name carries the ticket prefix.
func IsTicketChannel(name string) bool {
	return strings.HasPrefix(name, NamePrefix)
}

// Create opens a new ticket for creator from the panel in panelChannelID.
// The new channel inherits the panel's category, hides the channel from the
// default role and any "Members" role, and grants view/send/history to the
// creator, the bot, and the moderation role.
func (m *Manager) Create(ctx context.Context, guildID, panelChannelID string, creator *discordgo.User) (*discordgo.Channel, error) {
	panel, err := m.api.Channel(panelChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch panel channel: %w", err)
	}
	if panel.ParentID == "" {
		return nil, ErrNoCategory
	}

	roles, err := m.api.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild roles: %w", err)
	}

	// The @everyone role shares the guild's ID.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
	}
	if members := roleByName(roles, "Members"); members != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:   members.ID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		})
	}
	overwrites = append(overwrites,
		&discordgo.PermissionOverwrite{
			ID:    creator.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		},
		&discordgo.PermissionOverwrite{
			ID:    m.botUserID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		},
	)
	if mod := moderatorRole(roles); mod != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    mod.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAllow,
		})
	}

	channel, err := m.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 ChannelName(creator),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             panel.ParentID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	if err := m.store.SaveTicket(ctx, store.TicketRecord{
		ChannelID: channel.ID,
		CreatorID: creator.ID,
		State:     store.TicketOpen,
	}); err != nil {
		return nil, fmt.Errorf("failed to record ticket: %w", err)
	}

	if _, err := m.api.ChannelMessageSendComplex(channel.ID, welcomeMessage(creator)); err != nil {
		return nil, fmt.Errorf("failed to send ticket welcome: %w", err)
	}
	return channel, nil
}

func roleByName(roles []*discordgo.Role, name string) *discordgo.Role {
	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// moderatorRole prefers a role literally named "Moderator", falling back to
// the first role carrying channel management.
func moderatorRole(roles []*discordgo.Role) *discordgo.Role {
	if r := roleByName(roles, "Moderator"); r != nil {
		return r
	}
	for _, r := range roles {
		if r.Permissions&discordgo.PermissionManageChannels != 0 {
			return r
		}
	}
	return nil
}

func welcomeMessage(creator *discordgo.User) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: creator.Mention(),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Support Ticket",
				Description: fmt.Sprintf("Hello %s, welcome to your support ticket! Please describe your issue, and a moderator will assist you shortly.", creator.Mention()),
				Color:       0x00FF00,
			},
			{
				Title:       "Ticket Controls",
				Description: "Click the buttons below to manage your ticket.",
				Color:       0xFFA500,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: ButtonClose,
						Label:    "Close Ticket",
						Style:    discordgo.DangerButton,
					},
					discordgo.Button{
						CustomID: ButtonDelete,
						Label:    "Delete Ticket",
						Style:    discordgo.SecondaryButton,
					},
				},
			},
		},
	}
}

// Creator resolves the ticket creator for a channel. The owned record wins;
// channels without a record fall back to scanning member overwrites that
// grant view access, skipping the bot's own entry.
func (m *Manager) Creator(ctx context.Context, channel *discordgo.Channel) (string, error) {
	if rec, ok, err := m.store.Ticket(ctx, channel.ID); err != nil {
		return "", fmt.Errorf("failed to look up ticket record: %w", err)
	} else if ok {
		return rec.CreatorID, nil
	}
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type != discordgo.PermissionOverwriteTypeMember || ow.ID == m.botUserID {
			continue
		}
		if ow.Allow&discordgo.PermissionViewChannel != 0 {
			return ow.ID, nil
		}
	}
	return "", ErrCreatorUnresolvable
}

// Close revokes the creator's send permission, keeping view and history.
// Allowed for the creator themselves or a privileged actor.
func (m *Manager) Close(ctx context.Context, channel *discordgo.Channel, actorID string, privileged bool) (string, error) {
	if !IsTicketChannel(channel.Name) {
		return "", ErrNotTicketChannel
	}
	creatorID, err := m.Creator(ctx, channel)
	if err != nil {
		return "", err
	}
	if actorID != creatorID && !privileged {
		return creatorID, ErrForbidden
	}

	allow := int64(discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory)
	deny := int64(discordgo.PermissionSendMessages)
	if err := m.api.ChannelPermissionSet(channel.ID, creatorID, discordgo.PermissionOverwriteTypeMember, allow, deny); err != nil {
		return creatorID, fmt.Errorf("failed to close ticket: %w", err)
	}
	if err := m.store.SaveTicket(ctx, store.TicketRecord{
		ChannelID: channel.ID,
		CreatorID: creatorID,
		State:     store.TicketClosed,
	}); err != nil {
		return creatorID, fmt.Errorf("failed to record ticket close: %w", err)
	}
	return creatorID, nil
}

// Reopen restores the creator's send permission. Reopening an already-open
// ticket succeeds without any observable change.
func (m *Manager) Reopen(ctx context.Context, channel *discordgo.Channel, privileged bool) (string, error) {
	if !IsTicketChannel(channel.Name) {
		return "", ErrNotTicketChannel
	}
	if !privileged {
		return "", ErrForbidden
	}
	creatorID, err := m.Creator(ctx, channel)
	if err != nil {
		return "", err
	}
	if err := m.api.ChannelPermissionSet(channel.ID, creatorID, discordgo.PermissionOverwriteTypeMember, memberAllow, 0); err != nil {
		return creatorID, fmt.Errorf("failed to reopen ticket: %w", err)
	}
	if err := m.store.SaveTicket(ctx, store.TicketRecord{
		ChannelID: channel.ID,
		CreatorID: creatorID,
		State:     store.TicketOpen,
	}); err != nil {
		return creatorID, fmt.Errorf("failed to record ticket reopen: %w", err)
	}
	return creatorID, nil
}

// Delete removes the channel. A channel that is already gone, from a
// double-press of the delete button, counts as success.
func (m *Manager) Delete(ctx context.Context, channel *discordgo.Channel, privileged bool) error {
	if !IsTicketChannel(channel.Name) {
		return ErrNotTicketChannel
	}
	if !privileged {
		return ErrForbidden
	}
	if _, err := m.api.ChannelDelete(channel.ID); err != nil && !isUnknownChannel(err) {
		return fmt.Errorf("failed to delete ticket channel: %w", err)
	}
	if err := m.store.DeleteTicket(ctx, channel.ID); err != nil {
		return fmt.Errorf("failed to drop ticket record: %w", err)
	}
	return nil
}

func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}

// CloseAllResult reports the outcome of a bulk close.
type CloseAllResult struct {
	Closed  []string
	Skipped []string
}

// CloseAll closes every ticket channel in the guild. Channels whose creator
// cannot be resolved are skipped and the sweep continues.
func (m *Manager) CloseAll(ctx context.Context, guildID string) (CloseAllResult, error) {
	channels, err := m.api.GuildChannels(guildID)
	if err != nil {
		return CloseAllResult{}, fmt.Errorf("failed to list guild channels: %w", err)
	}

	var result CloseAllResult
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || !IsTicketChannel(ch.Name) {
			continue
		}
		if _, err := m.Close(ctx, ch, "", true); err != nil {
			if errors.Is(err, ErrCreatorUnresolvable) {
				result.Skipped = append(result.Skipped, ch.ID)
				continue
			}
			return result, fmt.Errorf("failed to close %s: %w", ch.Name, err)
		}
		result.Closed = append(result.Closed, ch.ID)
	}
	return result, nil
}
