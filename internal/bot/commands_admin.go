package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/access"
	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/sitepatch"
	"github.com/nexora-community/nexora-bot/internal/statusboard"
	"github.com/nexora-community/nexora-bot/internal/tickets"
)

func (b *Bot) cmdWhitelist(ctx context.Context, inv *invocation) error {
	m := inv.message
	if len(inv.args) < 2 {
		b.reply(m, "Usage: !whitelist <type> <user>\nExample: !whitelist semi @user")
		return nil
	}
	kind := access.Kind(strings.ToLower(inv.args[0]))
	if kind != access.KindSemi && kind != access.KindFull {
		b.reply(m, "Invalid type! Use \"semi\" or \"full\".\nExample: !whitelist semi @user")
		return nil
	}
	target := firstUserMention(m)
	if target == nil {
		b.reply(m, "Please mention a user to whitelist!")
		return nil
	}

	list, err := b.opts.Store.AccessList(ctx)
	if err != nil {
		return fmt.Errorf("load access list: %w", err)
	}
	list, err = access.Grant(list, kind, target.ID)
	if errors.Is(err, access.ErrAlreadyListed) {
		b.reply(m, fmt.Sprintf("%s is already in the %s whitelist!", userTag(target), kind))
		return nil
	}
	if err != nil {
		return err
	}
	if err := b.opts.Store.SaveAccessList(ctx, list); err != nil {
		return fmt.Errorf("save access list: %w", err)
	}

	if kind == access.KindSemi {
		b.reply(m, fmt.Sprintf("%s has been added to the semi whitelist (can use !kick and !timeout).", userTag(target)))
	} else {
		b.reply(m, fmt.Sprintf("%s has been added to the full whitelist (can control all bot commands).", userTag(target)))
	}
	title := "User Fully Whitelisted"
	if kind == access.KindSemi {
		title = "User Semi Whitelisted"
	}
	b.publish(audit.Event{
		Title:       title,
		Description: fmt.Sprintf("%s was added to the %s whitelist by %s.", userTag(target), kind, userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdTicket(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageChannels) {
		b.reply(m, "You do not have permission to manage tickets! (Requires Manage Channels permission)")
		return nil
	}
	if len(inv.args) < 1 {
		b.reply(m, "Usage: !ticket <closeall | close | open | delete> [channel]\nExample: !ticket close #ticket-channel")
		return nil
	}
	sub := strings.ToLower(inv.args[0])

	if sub == "closeall" {
		result, err := b.opts.Tickets.CloseAll(ctx, m.GuildID)
		if err != nil {
			return err
		}
		if len(result.Closed) == 0 && len(result.Skipped) == 0 {
			b.reply(m, "No ticket channels found to close.")
			return nil
		}
		b.reply(m, "All ticket channels have been closed.")
		b.publish(audit.Event{
			Title:       "All Tickets Closed",
			Description: fmt.Sprintf("%s closed all ticket channels.", userTag(m.Author)),
			Fields: []audit.Field{
				{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
				{Name: "Channels Affected", Value: strconv.Itoa(len(result.Closed))},
			},
			Color: audit.ColorBad,
		})
		return nil
	}

	if sub != "close" && sub != "open" && sub != "delete" {
		b.reply(m, "Invalid subcommand! Use: closeall, close, open, or delete.\nExample: !ticket close #ticket-channel")
		return nil
	}
	if len(inv.args) < 2 {
		b.reply(m, fmt.Sprintf("Usage: !ticket %s <channel>\nExample: !ticket %s #ticket-channel", sub, sub))
		return nil
	}
	channelID, ok := channelIDFromArg(inv.args[1])
	if !ok {
		b.reply(m, "Please mention a valid ticket channel! Ticket channels start with \"ticket-\".")
		return nil
	}
	channel, err := b.session.Channel(channelID)
	if err != nil {
		b.reply(m, "Please mention a valid ticket channel! Ticket channels start with \"ticket-\".")
		return nil
	}

	switch sub {
	case "close":
		creatorID, err := b.opts.Tickets.Close(ctx, channel, m.Author.ID, true)
		if err != nil {
			return b.replyTicketError(m, err)
		}
		b.reply(m, fmt.Sprintf("Ticket channel <#%s> has been closed.", channel.ID))
		if _, err := b.session.ChannelMessageSend(channel.ID, "This ticket has been closed by a moderator. You can no longer send messages here."); err != nil {
			b.opts.Log.Warn("failed to post close notice in ticket")
		}
		b.publishTicketEvent("Ticket Closed", channel, creatorID, m)
	case "open":
		creatorID, err := b.opts.Tickets.Reopen(ctx, channel, true)
		if err != nil {
			return b.replyTicketError(m, err)
		}
		b.reply(m, fmt.Sprintf("Ticket channel <#%s> has been reopened.", channel.ID))
		if _, err := b.session.ChannelMessageSend(channel.ID, "This ticket has been reopened by a moderator. You can now send messages again."); err != nil {
			b.opts.Log.Warn("failed to post reopen notice in ticket")
		}
		b.publishTicketEvent("Ticket Reopened", channel, creatorID, m)
	case "delete":
		creatorID, _ := b.opts.Tickets.Creator(ctx, channel)
		if err := b.opts.Tickets.Delete(ctx, channel, true); err != nil {
			return b.replyTicketError(m, err)
		}
		b.reply(m, fmt.Sprintf("Ticket channel %s has been deleted.", channel.Name))
		b.publishTicketEvent("Ticket Deleted", channel, creatorID, m)
	}
	return nil
}

// replyTicketError reports the expected ticket failures to the invoker and
// escalates everything else.
func (b *Bot) replyTicketError(m *discordgo.MessageCreate, err error) error {
	switch {
	case errors.Is(err, tickets.ErrNotTicketChannel):
		b.reply(m, "Please mention a valid ticket channel! Ticket channels start with \"ticket-\".")
	case errors.Is(err, tickets.ErrCreatorUnresolvable):
		b.reply(m, "Could not determine the ticket creator for this channel.")
	case errors.Is(err, tickets.ErrForbidden):
		b.reply(m, "Only the ticket creator or users with Manage Channels permission can manage this ticket!")
	default:
		return err
	}
	return nil
}

func (b *Bot) publishTicketEvent(title string, channel *discordgo.Channel, creatorID string, m *discordgo.MessageCreate) {
	fields := []audit.Field{
		{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		{Name: "Channel", Value: fmt.Sprintf("%s (%s)", channel.Name, channel.ID)},
	}
	if creatorID != "" {
		fields = append(fields, audit.Field{Name: "Ticket Creator", Value: fmt.Sprintf("<@%s> (%s)", creatorID, creatorID)})
	}
	color := audit.ColorBad
	if title == "Ticket Reopened" {
		color = audit.ColorGood
	}
	b.publish(audit.Event{
		Title:       title,
		Description: fmt.Sprintf("Ticket channel %s was changed.", channel.Name),
		Fields:      fields,
		Color:       color,
	})
}

func (b *Bot) cmdTicketPanel(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageChannels) {
		b.reply(m, "You do not have permission to create a ticket panel!")
		return nil
	}
	channelID := b.targetChannelID(inv)

	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Support Tickets",
				Description: "Click the button below to create a support ticket.",
				Color:       audit.ColorGood,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: tickets.ButtonCreate,
						Label:    "Create Ticket",
						Style:    discordgo.PrimaryButton,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send ticket panel: %w", err)
	}
	b.reply(m, fmt.Sprintf("Ticket panel created in <#%s>.", channelID))
	b.publish(audit.Event{
		Title:       "Ticket Panel Created",
		Description: fmt.Sprintf("A ticket panel was created in <#%s>.", channelID),
		Fields: []audit.Field{
			{Name: "Channel", Value: channelID},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdVerifyPanel(ctx context.Context, inv *invocation) error {
	m := inv.message
	channelID := b.targetChannelID(inv)

	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Verification Panel",
				Description: "Click the button below to verify and receive the Member role.",
				Color:       audit.ColorGood,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: VerifyButtonID,
						Label:    "Verify",
						Style:    discordgo.SuccessButton,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send verification panel: %w", err)
	}
	b.reply(m, fmt.Sprintf("Verification panel created in <#%s>.", channelID))
	b.publish(audit.Event{
		Title:       "Verification Panel Created",
		Description: fmt.Sprintf("A verification panel was created in <#%s>.", channelID),
		Fields: []audit.Field{
			{Name: "Channel", Value: channelID},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdStatus(ctx context.Context, inv *invocation) error {
	m := inv.message
	if len(inv.args) < 2 {
		b.reply(m, "Usage: !status <platform> <status>\nExample: !status windows up\nPlatforms: windows, macos, linux, android, ios, scripthub\nStatuses: up, down, api, big, longtime, comingsoon")
		return nil
	}
	platform := strings.ToLower(inv.args[0])
	status := strings.ToLower(inv.args[1])

	err := b.opts.Board.SetStatus(platform, status)
	switch {
	case errors.Is(err, statusboard.ErrUnknownPlatform):
		b.reply(m, "Invalid platform! Available platforms: windows, macos, linux, android, ios, scripthub")
		return nil
	case errors.Is(err, statusboard.ErrUnknownStatus):
		b.reply(m, "Invalid status! Available statuses: up, down, api, big, longtime, comingsoon")
		return nil
	case errors.Is(err, statusboard.ErrChannelNotConfigured):
		b.reply(m, fmt.Sprintf("Channel for %s not found!", platform))
		return nil
	case err != nil:
		return err
	}

	name, _ := statusboard.PlatformName(platform)
	desc, _ := statusboard.StatusDescription(status)
	b.reply(m, fmt.Sprintf("%s status updated to %s (%s).", name, status, desc))
	b.publish(audit.Event{
		Title:       "Status Updated",
		Description: fmt.Sprintf("%s status was updated.", name),
		Fields: []audit.Field{
			{Name: "Platform", Value: name},
			{Name: "Status", Value: fmt.Sprintf("%s (%s)", status, desc)},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdDownloads(ctx context.Context, inv *invocation) error {
	m := inv.message
	if b.opts.Patcher == nil {
		b.reply(m, "The downloads command is not configured on this bot.")
		return nil
	}
	if len(inv.args) < 2 {
		b.reply(m, "Usage: !downloads <target> update [link]\nExample: !downloads windows update https://newlink.com\nTargets: all, windows, macos, linux, android, ios, scripthub")
		return nil
	}
	target := strings.ToLower(inv.args[0])
	action := strings.ToLower(inv.args[1])
	if action != "update" {
		b.reply(m, "Invalid action! Available action: update")
		return nil
	}
	newLink := strings.Join(inv.args[2:], " ")
	normalized, changed := sitepatch.NormalizeLink(newLink)

	written, err := b.opts.Patcher.Patch(ctx, target, newLink)
	if errors.Is(err, sitepatch.ErrUnknownTarget) {
		b.reply(m, "Invalid platform! Available platforms: windows, macos, linux, android, ios, scripthub, or use \"all\"")
		return nil
	}
	if errors.Is(err, sitepatch.ErrNoURLBlock) || errors.Is(err, sitepatch.ErrTargetNotFound) {
		b.reply(m, "Could not find the download link for the specified platform(s)!")
		return nil
	}
	if err != nil {
		return err
	}

	scope := "all platforms"
	if target != "all" {
		name, _ := statusboard.PlatformName(target)
		scope = "Vortex " + name
	}
	reply := fmt.Sprintf("Download link for %s updated to %q.", scope, written)
	if changed {
		reply += fmt.Sprintf(" (Added https:// to make it an absolute URL: %s)", normalized)
	}
	b.reply(m, reply)
	b.publish(audit.Event{
		Title:       "Download Link Updated",
		Description: fmt.Sprintf("Download link for %s was updated.", scope),
		Fields: []audit.Field{
			{Name: "Target", Value: scope},
			{Name: "Link", Value: written},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}
