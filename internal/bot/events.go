package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/logger"
)

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.User == nil {
		return
	}

	b.publish(audit.Event{
		Title:       "Member Joined",
		Description: fmt.Sprintf("%s joined the server.", userTag(e.User)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(e.User), e.User.ID)},
			{Name: "Joined At", Value: e.JoinedAt.UTC().Format("2006-01-02T15:04:05.000Z")},
		},
		Color: audit.ColorGood,
	})

	if b.opts.WelcomeChannelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "New Member Alert! 🎉",
		Description: fmt.Sprintf("%s\n\nHello <@%s>, we're so happy you're here!",
			b.pickWelcomeMessage(), e.User.ID),
		Color:     audit.ColorNotice,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: e.User.AvatarURL("512")},
	}
	_, err := s.ChannelMessageSendComplex(b.opts.WelcomeChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", e.User.ID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		b.opts.Log.Warn("failed to send welcome message", logger.Error(err))
	}
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
	if e.User == nil {
		return
	}

	roles := b.roleNames(e.GuildID, e.Roles)
	b.publish(audit.Event{
		Title:       "Member Left",
		Description: fmt.Sprintf("%s left the server.", userTag(e.User)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(e.User), e.User.ID)},
			{Name: "Roles", Value: roles},
		},
		Color: audit.ColorBad,
	})
}

func (b *Bot) onMessageDelete(s *discordgo.Session, e *discordgo.MessageDelete) {
	msg := e.BeforeDelete
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return
	}

	content := msg.Content
	if content == "" {
		content = "No content available"
	}
	b.publish(audit.Event{
		Title:       "Message Deleted",
		Description: fmt.Sprintf("A message by %s was deleted in <#%s>.", userTag(msg.Author), e.ChannelID),
		Fields: []audit.Field{
			{Name: "Author", Value: fmt.Sprintf("%s (%s)", userTag(msg.Author), msg.Author.ID)},
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", e.ChannelID, e.ChannelID)},
			{Name: "Content", Value: content},
		},
		Color: audit.ColorBad,
	})
}

func (b *Bot) onMessageUpdate(s *discordgo.Session, e *discordgo.MessageUpdate) {
	if e.Author == nil || e.Author.Bot || e.BeforeUpdate == nil {
		return
	}
	if e.BeforeUpdate.Content == e.Content {
		return
	}

	oldContent := e.BeforeUpdate.Content
	if oldContent == "" {
		oldContent = "No content available"
	}
	newContent := e.Content
	if newContent == "" {
		newContent = "No content available"
	}
	b.publish(audit.Event{
		Title:       "Message Edited",
		Description: fmt.Sprintf("A message by %s was edited in <#%s>.", userTag(e.Author), e.ChannelID),
		Fields: []audit.Field{
			{Name: "Author", Value: fmt.Sprintf("%s (%s)", userTag(e.Author), e.Author.ID)},
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", e.ChannelID, e.ChannelID)},
			{Name: "Old Content", Value: oldContent},
			{Name: "New Content", Value: newContent},
		},
		Color: audit.ColorWarning,
	})
}
