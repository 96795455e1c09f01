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

// helpEntry is one row of the command list.
type helpEntry struct {
	name  string
	value string
}

var helpEntries = []helpEntry{
	{"!whitelist <semi|full> <user>", "Adds a user to the semi or full whitelist (server owner only)."},
	{"!cmd", "Shows this command list (full whitelist only)."},
	{"!kick <user> [reason]", "Kicks a user from the server (requires Kick Members permission; semi whitelist or higher)."},
	{"!ban <user> [reason]", "Bans a user from the server (requires Ban Members permission; full whitelist only)."},
	{"!timeout <user> <minutes> [reason]", "Times out a user (requires Moderate Members permission; semi whitelist or higher)."},
	{"!purge <1-100>", "Bulk-deletes recent messages in the channel (requires Manage Messages permission; full whitelist only)."},
	{"!userinfo [user]", "Shows information about a user (full whitelist only)."},
	{"!serverinfo", "Shows information about this server (full whitelist only)."},
	{"!lock [channel]", "Locks a channel so members cannot send messages (requires Manage Channels permission; full whitelist only)."},
	{"!unlock [channel]", "Unlocks a previously locked channel (requires Manage Channels permission; full whitelist only)."},
	{"!slowmode <seconds> [channel]", "Sets slowmode between 0 and 21600 seconds (requires Manage Channels permission; full whitelist only)."},
	{"!roleadd <user> <role>", "Adds a role to a user (requires Manage Roles permission; full whitelist only)."},
	{"!roleremove <user> <role>", "Removes a role from a user (requires Manage Roles permission; full whitelist only)."},
	{"!announce <channel> <message>", "Sends an announcement embed to a channel (requires Manage Messages permission; full whitelist only)."},
	{"!ticketpanel [channel]", "Creates a ticket panel in the specified channel, or the current one (requires Manage Channels permission; full whitelist only)."},
	{"Create Ticket Button", "On the ticket panel, opens a private support channel for the user."},
	{"Close Ticket Button", "Inside a ticket channel, the creator or users with Manage Channels permission can close the ticket (disables sending messages)."},
	{"Delete Ticket Button", "Inside a ticket channel, users with Manage Channels permission can delete the ticket channel."},
	{"!ticket closeall", "Closes all ticket channels in the server (requires Manage Channels permission; full whitelist only)."},
	{"!ticket close <channel>", "Closes a specific ticket (requires Manage Channels permission; full whitelist only)."},
	{"!ticket open <channel>", "Reopens a specific ticket (requires Manage Channels permission; full whitelist only)."},
	{"!ticket delete <channel>", "Deletes a specific ticket channel (requires Manage Channels permission; full whitelist only)."},
	{"!vpanel [channel]", "Creates a verification panel that grants the Member role (full whitelist only)."},
	{"!status <platform> <status>", "Updates a platform's status channel glyph. Statuses: up, down, api, big, longtime, comingsoon (full whitelist only)."},
	{"!downloads <target> update [link]", "Patches the website's download link for a platform, or all (full whitelist only)."},
	{"!afk [reason]", "Marks you as AFK; mentions of you get an automatic notice (accessible to all users)."},
	{"!ping", "Shows message and API latency (accessible to all users)."},
	{"!avatar [user]", "Shows a user's avatar (accessible to all users)."},
	{"!poll <question> | <option1> | <option2> [| ...]", "Creates a poll with up to 10 options (accessible to all users)."},
	{"!trivia", "Starts a trivia game with a random question (accessible to all users)."},
	{"!meme", "Fetches a random meme from the internet (accessible to all users)."},
	{"!coinflip", "Flips a virtual coin (accessible to all users)."},
	{"!roll [dice]", "Rolls dice, e.g. !roll 2d6 for two 6-sided dice (accessible to all users)."},
	{"!rps <rock|paper|scissors>", "Plays rock-paper-scissors against the bot (accessible to all users)."},
	{"!8ball <question>", "Asks the magic 8-ball (accessible to all users)."},
}

// embedFieldLimit is the platform cap on fields per embed.
const embedFieldLimit = 25

func (b *Bot) cmdHelp(ctx context.Context, inv *invocation) error {
	m := inv.message

	var embeds []*discordgo.MessageEmbed
	current := &discordgo.MessageEmbed{
		Title:       "Available Commands",
		Description: "Here is a list of all available commands (access depends on your whitelist status):",
		Color:       audit.ColorGood,
	}
	for _, e := range helpEntries {
		if len(current.Fields) >= embedFieldLimit {
			embeds = append(embeds, current)
			current = &discordgo.MessageEmbed{
				Title:       "Available Commands (Continued)",
				Description: "More commands...",
				Color:       audit.ColorGood,
			}
		}
		current.Fields = append(current.Fields, &discordgo.MessageEmbedField{
			Name:  e.name,
			Value: e.value,
		})
	}
	embeds = append(embeds, current)
	b.replyEmbed(m, embeds...)

	b.publish(audit.Event{
		Title:       "Command List Requested",
		Description: fmt.Sprintf("%s requested the command list.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Channel", Value: m.ChannelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdAFK(ctx context.Context, inv *invocation) error {
	m := inv.message
	entry, err := b.opts.AFK.SetAway(ctx, m.Author.ID, strings.Join(inv.args, " "))
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("You are now AFK: %s", entry.Reason))
	b.publish(audit.Event{
		Title:       "AFK Set",
		Description: fmt.Sprintf("%s set their AFK status.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Reason", Value: entry.Reason},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdPing(ctx context.Context, inv *invocation) error {
	m := inv.message
	latency := time.Since(m.Timestamp).Milliseconds()
	apiLatency := b.session.HeartbeatLatency().Milliseconds()

	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title: "Pong! 🏓",
		Color: audit.ColorGood,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Message Latency", Value: fmt.Sprintf("%dms", latency), Inline: true},
			{Name: "API Latency", Value: fmt.Sprintf("%dms", apiLatency), Inline: true},
		},
	})
	return nil
}

// resolveTargetUser picks the first user mention, falls back to a raw ID
// argument, and defaults to the author.
func (b *Bot) resolveTargetUser(inv *invocation) *discordgo.User {
	if u := firstUserMention(inv.message); u != nil {
		return u
	}
	if len(inv.args) > 0 && idPattern.MatchString(inv.args[0]) {
		if u, err := b.session.User(inv.args[0]); err == nil {
			return u
		}
		return nil
	}
	if len(inv.args) > 0 {
		return nil
	}
	return inv.message.Author
}

func (b *Bot) cmdAvatar(ctx context.Context, inv *invocation) error {
	m := inv.message
	target := b.resolveTargetUser(inv)
	if target == nil {
		b.reply(m, "Please mention a valid user or provide a user ID!")
		return nil
	}
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's Avatar", userTag(target)),
		Image: &discordgo.MessageEmbedImage{URL: target.AvatarURL("512")},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdUserInfo(ctx context.Context, inv *invocation) error {
	m := inv.message
	target := b.resolveTargetUser(inv)
	if target == nil {
		b.reply(m, "Please mention a valid user or provide a user ID!")
		return nil
	}

	created, err := discordgo.SnowflakeTimestamp(target.ID)
	if err != nil {
		return fmt.Errorf("parse snowflake %s: %w", target.ID, err)
	}

	embed := &discordgo.MessageEmbed{
		Title:     "User Information",
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")},
		Color:     audit.ColorGood,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Username", Value: userTag(target), Inline: true},
			{Name: "User ID", Value: target.ID, Inline: true},
			{Name: "Account Created", Value: created.Format("Mon Jan 02 2006"), Inline: true},
		},
	}

	if member, err := b.session.GuildMember(m.GuildID, target.ID); err == nil {
		if !member.JoinedAt.IsZero() {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Joined Server", Value: member.JoinedAt.Format("Mon Jan 02 2006"), Inline: true,
			})
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Roles", Value: b.roleNames(m.GuildID, member.Roles),
		})
	}

	b.replyEmbed(m, embed)
	b.publish(audit.Event{
		Title:       "User Info Requested",
		Description: fmt.Sprintf("%s requested info for %s.", userTag(m.Author), userTag(target)),
		Fields: []audit.Field{
			{Name: "Requested By", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
			{Name: "Target User", Value: fmt.Sprintf("%s (%s)", userTag(target), target.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) roleNames(guildID string, roleIDs []string) string {
	roles, err := b.session.GuildRoles(guildID)
	if err != nil {
		return "None"
	}
	byID := make(map[string]string, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Name
	}
	var names []string
	for _, id := range roleIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func (b *Bot) cmdServerInfo(ctx context.Context, inv *invocation) error {
	m := inv.message
	guild, err := b.session.GuildWithCounts(m.GuildID)
	if err != nil {
		guild, err = b.session.Guild(m.GuildID)
		if err != nil {
			return fmt.Errorf("fetch guild: %w", err)
		}
	}
	channels, err := b.session.GuildChannels(m.GuildID)
	if err != nil {
		return fmt.Errorf("fetch channels: %w", err)
	}
	created, err := discordgo.SnowflakeTimestamp(guild.ID)
	if err != nil {
		return fmt.Errorf("parse snowflake %s: %w", guild.ID, err)
	}

	memberCount := guild.MemberCount
	if memberCount == 0 {
		memberCount = guild.ApproximateMemberCount
	}

	embed := &discordgo.MessageEmbed{
		Title: "Server Information",
		Color: audit.ColorGood,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server Name", Value: guild.Name, Inline: true},
			{Name: "Server ID", Value: guild.ID, Inline: true},
			{Name: "Owner", Value: fmt.Sprintf("<@%s>", guild.OwnerID), Inline: true},
			{Name: "Created On", Value: created.Format("Mon Jan 02 2006"), Inline: true},
			{Name: "Member Count", Value: strconv.Itoa(memberCount), Inline: true},
			{Name: "Channel Count", Value: strconv.Itoa(len(channels)), Inline: true},
			{Name: "Role Count", Value: strconv.Itoa(len(guild.Roles)), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("")}
	}

	b.replyEmbed(m, embed)
	b.publish(audit.Event{
		Title:       "Server Info Requested",
		Description: fmt.Sprintf("%s requested server information.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Requested By", Value: fmt.Sprintf("%s (%s)", userTag(m.Author), m.Author.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}
