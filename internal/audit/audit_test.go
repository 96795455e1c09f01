package audit

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/logger"
)

type recordingSubscriber struct {
	events []Event
}

func (r *recordingSubscriber) Notify(event Event) {
	r.events = append(r.events, event)
}

type panickingSubscriber struct{}

func (panickingSubscriber) Notify(Event) {
	panic("subscriber blew up")
}

func TestBusPublish(t *testing.T) {
	log := logger.New("error", false)

	t.Run("fans out to every subscriber", func(t *testing.T) {
		bus := NewBus(log)
		a := &recordingSubscriber{}
		b := &recordingSubscriber{}
		bus.Subscribe(a)
		bus.Subscribe(b)

		bus.Publish(Event{Title: "Member Kicked"})
		if len(a.events) != 1 || len(b.events) != 1 {
			t.Errorf("deliveries = %d, %d, want 1 each", len(a.events), len(b.events))
		}
	})

	t.Run("panicking subscriber does not block the rest", func(t *testing.T) {
		bus := NewBus(log)
		rec := &recordingSubscriber{}
		bus.Subscribe(panickingSubscriber{})
		bus.Subscribe(rec)

		bus.Publish(Event{Title: "Member Banned"})
		if len(rec.events) != 1 {
			t.Errorf("deliveries = %d, want 1", len(rec.events))
		}
	})

	t.Run("publish with no subscribers is fine", func(t *testing.T) {
		NewBus(log).Publish(Event{Title: "noop"})
	})
}

type fakeSender struct {
	embeds []*discordgo.MessageEmbed
	err    error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestChannelLogger(t *testing.T) {
	log := logger.New("error", false)

	t.Run("posts event as embed", func(t *testing.T) {
		api := &fakeSender{}
		cl := NewChannelLogger(api, "log-1", log)

		cl.Notify(Event{
			Title:       "Ticket Created",
			Description: "A new ticket was created.",
			Fields:      []Field{{Name: "User", Value: "alice (42)"}},
			Color:       ColorGood,
		})
		if len(api.embeds) != 1 {
			t.Fatalf("sent %d embeds, want 1", len(api.embeds))
		}
		e := api.embeds[0]
		if e.Title != "Ticket Created" || e.Color != ColorGood {
			t.Errorf("embed = %+v", e)
		}
		if len(e.Fields) != 1 || !e.Fields[0].Inline {
			t.Errorf("fields = %+v", e.Fields)
		}
	})

	t.Run("empty channel disables delivery", func(t *testing.T) {
		api := &fakeSender{}
		NewChannelLogger(api, "", log).Notify(Event{Title: "x"})
		if len(api.embeds) != 0 {
			t.Error("nothing should be sent")
		}
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		api := &fakeSender{err: errors.New("boom")}
		NewChannelLogger(api, "log-1", log).Notify(Event{Title: "x"})
	})
}
