// Package bot wires the gateway session to the command dispatcher, the
// interactive component router, and the guild event handlers.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/afk"
	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/logger"
	"github.com/nexora-community/nexora-bot/internal/meme"
	"github.com/nexora-community/nexora-bot/internal/sitepatch"
	"github.com/nexora-community/nexora-bot/internal/statusboard"
	"github.com/nexora-community/nexora-bot/internal/store"
	"github.com/nexora-community/nexora-bot/internal/tickets"
	"github.com/nexora-community/nexora-bot/internal/trivia"
)

// VerifyButtonID is the component identifier on the verification panel.
const VerifyButtonID = "verify_button"

// Options carries everything the bot needs beyond the session itself.
type Options struct {
	Prefix           string
	WelcomeChannelID string

	Store   store.Store
	AFK     *afk.Registry
	Tickets *tickets.Manager
	Board   *statusboard.Board
	Patcher *sitepatch.Patcher // nil disables the downloads command
	Trivia  *trivia.Client
	Memes   *meme.Client
	Bus     *audit.Bus
	Log     logger.Logger
}

// Bot is the long-lived gateway consumer.
type Bot struct {
	session *discordgo.Session
	opts    Options

	commands   map[string]commandHandler
	components map[string]componentHandler

	intn      func(n int) int
	ready     atomic.Bool
	botUserID string
}

// New builds the bot and its dispatch tables. Start must be called to open
// the gateway connection.
func New(session *discordgo.Session, opts Options) *Bot {
	b := &Bot{
		session: session,
		opts:    opts,
		intn:    rand.Intn,
	}
	b.registerCommands()
	b.registerComponents()
	return b
}

// Start declares the gateway intents, registers event handlers, and opens
// the connection.
func (b *Bot) Start(ctx context.Context) error {
	b.session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildModeration

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onMessageUpdate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}
	return nil
}

// Close shuts the gateway connection down.
func (b *Bot) Close() error {
	b.ready.Store(false)
	return b.session.Close()
}

// Ready reports whether the gateway session has completed its handshake.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.botUserID = r.User.ID
	b.opts.Tickets.SetBotUser(r.User.ID)
	b.ready.Store(true)
	b.opts.Log.Info("logged in",
		logger.String("user", r.User.Username),
		logger.Int("guilds", len(r.Guilds)))
}

func (b *Bot) publish(event audit.Event) {
	b.opts.Bus.Publish(event)
}

// ownerID resolves the guild owner, preferring the session state cache.
func (b *Bot) ownerID(guildID string) string {
	if g, err := b.session.State.Guild(guildID); err == nil && g.OwnerID != "" {
		return g.OwnerID
	}
	g, err := b.session.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.OwnerID
}
