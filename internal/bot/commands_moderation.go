package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/audit"
)

func (b *Bot) cmdKick(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionKickMembers) {
		b.reply(m, "You do not have permission to kick members!")
		return nil
	}
	if len(inv.args) < 1 {
		b.reply(m, "Usage: !kick <user> [reason]\nExample: !kick @user Being disruptive")
		return nil
	}
	target := firstUserMention(m)
	if target == nil {
		b.reply(m, "Please mention a user to kick!")
		return nil
	}
	reason := reasonFrom(inv.args[1:])

	if err := b.session.GuildMemberDeleteWithReason(m.GuildID, target.ID, reason); err != nil {
		return fmt.Errorf("kick %s: %w", target.ID, err)
	}
	b.reply(m, fmt.Sprintf("%s has been kicked. Reason: %s", userTag(target), reason))
	b.publish(audit.Event{
		Title:       "Member Kicked",
		Description: fmt.Sprintf("%s was kicked from the server.", userTag(target)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Reason", Value: reason},
		},
		Color: audit.ColorBad,
	})
	return nil
}

func (b *Bot) cmdBan(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionBanMembers) {
		b.reply(m, "You do not have permission to ban members!")
		return nil
	}
	if len(inv.args) < 1 {
		b.reply(m, "Usage: !ban <user> [reason]\nExample: !ban @user Breaking rules")
		return nil
	}
	target := firstUserMention(m)
	if target == nil {
		b.reply(m, "Please mention a user to ban!")
		return nil
	}
	reason := reasonFrom(inv.args[1:])

	if err := b.session.GuildBanCreateWithReason(m.GuildID, target.ID, reason, 0); err != nil {
		return fmt.Errorf("ban %s: %w", target.ID, err)
	}
	b.reply(m, fmt.Sprintf("%s has been banned. Reason: %s", userTag(target), reason))
	b.publish(audit.Event{
		Title:       "Member Banned",
		Description: fmt.Sprintf("%s was banned from the server.", userTag(target)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Reason", Value: reason},
		},
		Color: audit.ColorBad,
	})
	return nil
}

func (b *Bot) cmdTimeout(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionModerateMembers) {
		b.reply(m, "You do not have permission to timeout members!")
		return nil
	}
	if len(inv.args) < 2 {
		b.reply(m, "Usage: !timeout <user> <duration> [reason]\nExample: !timeout @user 10 Being disruptive")
		return nil
	}
	target := firstUserMention(m)
	if target == nil {
		b.reply(m, "Please mention a user to timeout!")
		return nil
	}
	minutes, err := strconv.Atoi(inv.args[1])
	if err != nil || minutes <= 0 {
		b.reply(m, "Please provide a valid duration in minutes!")
		return nil
	}
	reason := reasonFrom(inv.args[2:])

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := b.session.GuildMemberTimeout(m.GuildID, target.ID, &until); err != nil {
		return fmt.Errorf("timeout %s: %w", target.ID, err)
	}
	b.reply(m, fmt.Sprintf("%s has been timed out for %d minutes. Reason: %s", userTag(target), minutes, reason))
	b.publish(audit.Event{
		Title:       "Member Timed Out",
		Description: fmt.Sprintf("%s was timed out.", userTag(target)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Duration", Value: fmt.Sprintf("%d minutes", minutes)},
			{Name: "Reason", Value: reason},
		},
		Color: audit.ColorWarning,
	})
	return nil
}

func (b *Bot) cmdPurge(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageMessages) {
		b.reply(m, "You do not have permission to manage messages!")
		return nil
	}
	amount := 0
	if len(inv.args) > 0 {
		amount, _ = strconv.Atoi(inv.args[0])
	}
	if amount < 1 || amount > 100 {
		b.reply(m, "Please provide a valid number between 1 and 100!")
		return nil
	}

	msgs, err := b.session.ChannelMessages(m.ChannelID, amount, m.ID, "", "")
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}
	if len(ids) > 0 {
		if err := b.session.ChannelMessagesBulkDelete(m.ChannelID, ids); err != nil {
			return fmt.Errorf("bulk delete: %w", err)
		}
	}
	b.reply(m, fmt.Sprintf("Successfully deleted %d messages.", len(ids)))
	b.publish(audit.Event{
		Title:       "Messages Purged",
		Description: fmt.Sprintf("%s purged %d messages.", userTag(m.Author), len(ids)),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: m.ChannelID},
			{Name: "Messages Deleted", Value: strconv.Itoa(len(ids))},
		},
		Color: audit.ColorBad,
	})
	return nil
}

// targetChannelID picks the first channel mention in the args, defaulting
// to the channel the command was sent in.
func (b *Bot) targetChannelID(inv *invocation) string {
	for _, arg := range inv.args {
		if id, ok := channelIDFromArg(arg); ok {
			return id
		}
	}
	return inv.message.ChannelID
}

// setEveryoneSendLock edits the @everyone overwrite on a channel, adding or
// removing the send-messages denial while preserving the other bits.
func (b *Bot) setEveryoneSendLock(channelID, guildID string, locked bool) error {
	channel, err := b.session.Channel(channelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	var allow, deny int64
	for _, ow := range channel.PermissionOverwrites {
		if ow.ID == guildID && ow.Type == discordgo.PermissionOverwriteTypeRole {
			allow, deny = ow.Allow, ow.Deny
			break
		}
	}
	if locked {
		deny |= discordgo.PermissionSendMessages
		allow &^= discordgo.PermissionSendMessages
	} else {
		deny &^= discordgo.PermissionSendMessages
	}
	return b.session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny)
}

func (b *Bot) cmdLock(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageChannels) {
		b.reply(m, "You do not have permission to manage channels!")
		return nil
	}
	channelID := b.targetChannelID(inv)
	if err := b.setEveryoneSendLock(channelID, m.GuildID, true); err != nil {
		return fmt.Errorf("lock %s: %w", channelID, err)
	}
	b.reply(m, fmt.Sprintf("Channel <#%s> has been locked.", channelID))
	b.publish(audit.Event{
		Title:       "Channel Locked",
		Description: fmt.Sprintf("%s locked <#%s>.", userTag(m.Author), channelID),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: channelID},
		},
		Color: audit.ColorBad,
	})
	return nil
}

func (b *Bot) cmdUnlock(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageChannels) {
		b.reply(m, "You do not have permission to manage channels!")
		return nil
	}
	channelID := b.targetChannelID(inv)
	if err := b.setEveryoneSendLock(channelID, m.GuildID, false); err != nil {
		return fmt.Errorf("unlock %s: %w", channelID, err)
	}
	b.reply(m, fmt.Sprintf("Channel <#%s> has been unlocked.", channelID))
	b.publish(audit.Event{
		Title:       "Channel Unlocked",
		Description: fmt.Sprintf("%s unlocked <#%s>.", userTag(m.Author), channelID),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: channelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdSlowmode(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageChannels) {
		b.reply(m, "You do not have permission to manage channels!")
		return nil
	}
	if len(inv.args) < 1 {
		b.reply(m, "Please provide a valid number of seconds (0-21600)!")
		return nil
	}
	seconds, err := strconv.Atoi(inv.args[0])
	if err != nil || seconds < 0 || seconds > 21600 {
		b.reply(m, "Please provide a valid number of seconds (0-21600)!")
		return nil
	}
	channelID := b.targetChannelID(inv)

	if _, err := b.session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		RateLimitPerUser: &seconds,
	}); err != nil {
		return fmt.Errorf("set slowmode on %s: %w", channelID, err)
	}
	if seconds == 0 {
		b.reply(m, fmt.Sprintf("Slowmode disabled in <#%s>.", channelID))
	} else {
		b.reply(m, fmt.Sprintf("Slowmode set to %d seconds in <#%s>.", seconds, channelID))
	}
	b.publish(audit.Event{
		Title:       "Slowmode Set",
		Description: fmt.Sprintf("%s set slowmode in <#%s>.", userTag(m.Author), channelID),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: channelID},
			{Name: "Slowmode", Value: fmt.Sprintf("%d seconds", seconds)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

// resolveRole finds a role from the first role mention in the args, falling
// back to a case-insensitive name match on the remaining words.
func (b *Bot) resolveRole(guildID string, args []string) (*discordgo.Role, error) {
	roles, err := b.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch roles: %w", err)
	}
	for _, arg := range args {
		if m := roleMentionPattern.FindStringSubmatch(arg); m != nil {
			for _, r := range roles {
				if r.ID == m[1] {
					return r, nil
				}
			}
		}
	}
	if len(args) < 2 {
		return nil, nil
	}
	name := strings.ToLower(strings.Join(args[1:], " "))
	for _, r := range roles {
		if strings.ToLower(r.Name) == name {
			return r, nil
		}
	}
	return nil, nil
}

func (b *Bot) cmdRoleAdd(ctx context.Context, inv *invocation) error {
	return b.editRole(inv, true)
}

func (b *Bot) cmdRoleRemove(ctx context.Context, inv *invocation) error {
	return b.editRole(inv, false)
}

func (b *Bot) editRole(inv *invocation, add bool) error {
	m := inv.message
	verb := "roleremove"
	if add {
		verb = "roleadd"
	}
	if !b.memberHasPermission(m, discordgo.PermissionManageRoles) {
		b.reply(m, "You do not have permission to manage roles!")
		return nil
	}
	target := firstUserMention(m)
	role, err := b.resolveRole(m.GuildID, inv.args)
	if err != nil {
		return err
	}
	if target == nil || role == nil {
		b.reply(m, fmt.Sprintf("Please mention a user and a role!\nExample: !%s @user @role", verb))
		return nil
	}

	if add {
		err = b.session.GuildMemberRoleAdd(m.GuildID, target.ID, role.ID)
	} else {
		err = b.session.GuildMemberRoleRemove(m.GuildID, target.ID, role.ID)
	}
	if err != nil {
		return fmt.Errorf("%s %s for %s: %w", verb, role.ID, target.ID, err)
	}

	if add {
		b.reply(m, fmt.Sprintf("Added %s to %s.", role.Name, userTag(target)))
	} else {
		b.reply(m, fmt.Sprintf("Removed %s from %s.", role.Name, userTag(target)))
	}
	title, color := "Role Removed", audit.ColorBad
	if add {
		title, color = "Role Added", audit.ColorGood
	}
	b.publish(audit.Event{
		Title:       title,
		Description: fmt.Sprintf("%s changed roles for %s.", userTag(m.Author), userTag(target)),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
			{Name: "Role", Value: fmt.Sprintf("%s (%s)", role.Name, role.ID)},
		},
		Color: color,
	})
	return nil
}

func (b *Bot) cmdAnnounce(ctx context.Context, inv *invocation) error {
	m := inv.message
	if !b.memberHasPermission(m, discordgo.PermissionManageMessages) {
		b.reply(m, "You do not have permission to manage messages!")
		return nil
	}
	if len(inv.args) < 2 {
		b.reply(m, "Please mention a channel and provide a message!\nExample: !announce #channel Hello everyone!")
		return nil
	}
	channelID, ok := channelIDFromArg(inv.args[0])
	if !ok {
		b.reply(m, "Please mention a channel and provide a message!\nExample: !announce #channel Hello everyone!")
		return nil
	}
	announcement := strings.Join(inv.args[1:], " ")

	embed := &discordgo.MessageEmbed{
		Title:       "Announcement",
		Description: announcement,
		Color:       audit.ColorNotice,
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("send announcement to %s: %w", channelID, err)
	}
	b.reply(m, fmt.Sprintf("Announcement sent to <#%s>.", channelID))
	b.publish(audit.Event{
		Title:       "Announcement Sent",
		Description: fmt.Sprintf("%s sent an announcement to <#%s>.", userTag(m.Author), channelID),
		Fields: []audit.Field{
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: channelID},
			{Name: "Message", Value: announcement},
		},
		Color: audit.ColorGood,
	})
	return nil
}
