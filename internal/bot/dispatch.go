package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/access"
	"github.com/nexora-community/nexora-bot/internal/logger"
)

const genericFailure = "An error occurred while processing your command. Please try again later."

// invocation carries one parsed command message through its handler.
type invocation struct {
	message *discordgo.MessageCreate
	command string
	args    []string
	// raw is the remainder of the line after the command token, with
	// original spacing. The poll command splits it on pipes.
	raw string
}

type commandHandler func(ctx context.Context, inv *invocation) error

func (b *Bot) registerCommands() {
	b.commands = map[string]commandHandler{
		"whitelist": b.cmdWhitelist,
		"cmd":       b.cmdHelp,
		"afk":       b.cmdAFK,
		"ping":      b.cmdPing,
		"avatar":    b.cmdAvatar,

		"kick":    b.cmdKick,
		"ban":     b.cmdBan,
		"timeout": b.cmdTimeout,
		"purge":   b.cmdPurge,

		"userinfo":   b.cmdUserInfo,
		"serverinfo": b.cmdServerInfo,

		"lock":       b.cmdLock,
		"unlock":     b.cmdUnlock,
		"slowmode":   b.cmdSlowmode,
		"roleadd":    b.cmdRoleAdd,
		"roleremove": b.cmdRoleRemove,
		"announce":   b.cmdAnnounce,

		"ticket":      b.cmdTicket,
		"ticketpanel": b.cmdTicketPanel,
		"vpanel":      b.cmdVerifyPanel,
		"status":      b.cmdStatus,
		"downloads":   b.cmdDownloads,

		"poll":     b.cmdPoll,
		"trivia":   b.cmdTrivia,
		"meme":     b.cmdMeme,
		"coinflip": b.cmdCoinflip,
		"roll":     b.cmdRoll,
		"rps":      b.cmdRPS,
		"8ball":    b.cmdEightBall,
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.opts.Log.Error("message handler panicked",
				logger.String("content", m.Content))
			b.reply(m, genericFailure)
		}
	}()

	b.handleAFKActivity(ctx, m)

	if !strings.HasPrefix(m.Content, b.opts.Prefix) {
		return
	}
	fields := strings.Fields(m.Content[len(b.opts.Prefix):])
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])

	handler, ok := b.commands[command]
	if !ok {
		// unknown commands are silently ignored
		return
	}

	if !b.authorize(ctx, m, command) {
		return
	}

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(m.Content, b.opts.Prefix), fields[0]))
	inv := &invocation{message: m, command: command, args: fields[1:], raw: raw}
	if err := handler(ctx, inv); err != nil {
		b.opts.Log.Error("command failed",
			logger.String("command", command),
			logger.String("user", m.Author.ID),
			logger.Error(err))
		b.reply(m, genericFailure)
	}
}

// authorize enforces the whitelist tier gate, replying with the refusal
// reason itself.
func (b *Bot) authorize(ctx context.Context, m *discordgo.MessageCreate, command string) bool {
	required := access.Required(command)
	if required == access.TierNone {
		return true
	}
	list, err := b.opts.Store.AccessList(ctx)
	if err != nil {
		b.opts.Log.Error("failed to load access list", logger.Error(err))
		b.reply(m, genericFailure)
		return false
	}
	tier := access.Classify(list, m.Author.ID, b.ownerID(m.GuildID))
	if access.Allowed(tier, command) {
		return true
	}
	switch required {
	case access.TierOwner:
		b.reply(m, "Only the server owner can use this command!")
	case access.TierFull:
		b.reply(m, "You need to be in the full whitelist to use this command!")
	default:
		b.reply(m, "You need to be in the semi or full whitelist to use this command!")
	}
	return false
}

func (b *Bot) handleAFKActivity(ctx context.Context, m *discordgo.MessageCreate) {
	var mentionIDs []string
	for _, u := range m.Mentions {
		mentionIDs = append(mentionIDs, u.ID)
	}
	notices, cleared, err := b.opts.AFK.HandleActivity(ctx, m.Author.ID, mentionIDs)
	if err != nil {
		b.opts.Log.Error("afk activity handling failed", logger.Error(err))
		return
	}
	for _, n := range notices {
		name := n.UserID
		for _, u := range m.Mentions {
			if u.ID == n.UserID {
				name = u.Username
				break
			}
		}
		b.reply(m, fmt.Sprintf("%s is AFK: %s", name, n.Reason))
	}
	if cleared {
		b.reply(m, "Your AFK status has been removed!")
	}
}

func (b *Bot) reply(m *discordgo.MessageCreate, content string) {
	if _, err := b.session.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		b.opts.Log.Warn("failed to send reply", logger.Error(err))
	}
}

func (b *Bot) replyEmbed(m *discordgo.MessageCreate, embeds ...*discordgo.MessageEmbed) {
	_, err := b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    embeds,
		Reference: m.Reference(),
	})
	if err != nil {
		b.opts.Log.Warn("failed to send embed reply", logger.Error(err))
	}
}

// memberHasPermission checks the author's effective permissions in the
// message channel.
func (b *Bot) memberHasPermission(m *discordgo.MessageCreate, permission int64) bool {
	perms, err := b.session.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		b.opts.Log.Warn("failed to compute permissions", logger.Error(err))
		return false
	}
	return perms&permission != 0 || perms&discordgo.PermissionAdministrator != 0
}

var channelMentionPattern = regexp.MustCompile(`^<#(\d+)>$`)

// channelIDFromArg extracts a channel ID from a <#id> mention or a bare ID.
func channelIDFromArg(arg string) (string, bool) {
	if m := channelMentionPattern.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if idPattern.MatchString(arg) {
		return arg, true
	}
	return "", false
}

var idPattern = regexp.MustCompile(`^\d+$`)

var roleMentionPattern = regexp.MustCompile(`^<@&(\d+)>$`)

// userTag formats a user the way moderation logs reference them.
func userTag(u *discordgo.User) string {
	if u.Discriminator != "" && u.Discriminator != "0" {
		return u.Username + "#" + u.Discriminator
	}
	return u.Username
}

func firstUserMention(m *discordgo.MessageCreate) *discordgo.User {
	if len(m.Mentions) == 0 {
		return nil
	}
	return m.Mentions[0]
}

func reasonFrom(args []string) string {
	reason := strings.Join(args, " ")
	if reason == "" {
		return "No reason provided"
	}
	return reason
}
