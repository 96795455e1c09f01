// Package audit decouples moderation logging from command handling. Handlers
// publish events on a bus; subscribers deliver them independently, and a
// subscriber failure never reaches the publisher.
package audit

import (
	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/logger"
)

// Embed colors by event severity.
const (
	ColorGood    = 0x00FF00
	ColorBad     = 0xFF0000
	ColorWarning = 0xFFA500
	ColorNotice  = 0xFF4500
)

// Field is one inline key/value pair on an event.
type Field struct {
	Name  string
	Value string
}

// Event is one audit record raised by a handler.
type Event struct {
	Title       string
	Description string
	Fields      []Field
	Color       int
}

// Subscriber consumes events. Delivery is best-effort; errors and panics in
// a subscriber are contained by the bus.
type Subscriber interface {
	Notify(event Event)
}

// Bus fans events out to its subscribers.
type Bus struct {
	subscribers []Subscriber
	log         logger.Logger
}

// NewBus creates an empty bus.
func NewBus(log logger.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a subscriber. Not safe to call after Publish is in use.
func (b *Bus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// Publish delivers the event to every subscriber. A panicking subscriber is
// logged and skipped; the publisher never sees a failure.
func (b *Bus) Publish(event Event) {
	for _, s := range b.subscribers {
		b.deliver(s, event)
	}
}

func (b *Bus) deliver(s Subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("audit subscriber panicked",
				logger.String("event", event.Title))
		}
	}()
	s.Notify(event)
}

// MessageSender is the slice of the gateway session the channel logger
// needs. *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelLogger posts events as embeds into the moderation log channel.
// Send failures are logged server-side and swallowed.
type ChannelLogger struct {
	api       MessageSender
	channelID string
	log       logger.Logger
}

// NewChannelLogger creates a channel logger. An empty channelID disables it.
func NewChannelLogger(api MessageSender, channelID string, log logger.Logger) *ChannelLogger {
	return &ChannelLogger{api: api, channelID: channelID, log: log}
}

func (c *ChannelLogger) Notify(event Event) {
	if c.channelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       event.Title,
		Description: event.Description,
		Color:       event.Color,
	}
	for _, f := range event.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}
	if _, err := c.api.ChannelMessageSendEmbed(c.channelID, embed); err != nil {
		c.log.Warn("failed to deliver audit event",
			logger.String("event", event.Title),
			logger.Error(err))
	}
}
