package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/logger"
	"github.com/nexora-community/nexora-bot/internal/tickets"
	"github.com/nexora-community/nexora-bot/internal/trivia"
)

type componentHandler func(ctx context.Context, i *discordgo.InteractionCreate) error

func (b *Bot) registerComponents() {
	b.components = map[string]componentHandler{
		tickets.ButtonCreate: b.componentCreateTicket,
		tickets.ButtonClose:  b.componentCloseTicket,
		tickets.ButtonDelete: b.componentDeleteTicket,
		VerifyButtonID:       b.componentVerify,
		trivia.SelectID:      b.componentTriviaAnswer,
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	handler, ok := b.components[customID]
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.opts.Log.Error("component handler panicked",
				logger.String("component", customID))
			b.respondEphemeral(i, "An error occurred while handling your interaction.")
		}
	}()

	if err := handler(ctx, i); err != nil {
		b.opts.Log.Error("component handler failed",
			logger.String("component", customID),
			logger.Error(err))
		b.respondEphemeral(i, "An error occurred while handling your interaction.")
	}
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.opts.Log.Warn("failed to respond to interaction", logger.Error(err))
	}
}

func (b *Bot) respondEphemeralEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.opts.Log.Warn("failed to respond to interaction", logger.Error(err))
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) componentCreateTicket(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)

	channel, err := b.opts.Tickets.Create(ctx, i.GuildID, i.ChannelID, user)
	if errors.Is(err, tickets.ErrNoCategory) {
		b.respondEphemeral(i, "The ticket panel channel must be in a category!")
		return nil
	}
	if err != nil {
		b.respondEphemeral(i, "There was an error creating your ticket. Please try again later.")
		return err
	}

	b.respondEphemeral(i, fmt.Sprintf("Your ticket has been created: <#%s>", channel.ID))
	b.publish(audit.Event{
		Title:       "Ticket Created",
		Description: fmt.Sprintf("A new ticket was created by %s.", userTag(user)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(user), user.ID)},
			{Name: "Ticket Channel", Value: fmt.Sprintf("%s (%s)", channel.Name, channel.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) componentCloseTicket(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	channel, err := b.session.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch ticket channel: %w", err)
	}

	privileged := i.Member != nil && i.Member.Permissions&discordgo.PermissionManageChannels != 0
	creatorID, err := b.opts.Tickets.Close(ctx, channel, user.ID, privileged)
	switch {
	case errors.Is(err, tickets.ErrNotTicketChannel):
		b.respondEphemeral(i, "This button can only be used in a ticket channel!")
		return nil
	case errors.Is(err, tickets.ErrCreatorUnresolvable):
		b.respondEphemeral(i, "Could not determine the ticket creator for this channel.")
		return nil
	case errors.Is(err, tickets.ErrForbidden):
		b.respondEphemeral(i, "Only the ticket creator or users with Manage Channels permission can close this ticket!")
		return nil
	case err != nil:
		return err
	}

	b.respondEphemeral(i, "This ticket has been closed. You can no longer send messages here.")
	if _, err := b.session.ChannelMessageSend(channel.ID, "This ticket has been closed."); err != nil {
		b.opts.Log.Warn("failed to post close notice in ticket")
	}
	b.publish(audit.Event{
		Title:       "Ticket Closed",
		Description: fmt.Sprintf("Ticket channel %s was closed.", channel.Name),
		Fields: []audit.Field{
			{Name: "Closed By", Value: fmt.Sprintf("%s (%s)", userTag(user), user.ID)},
			{Name: "Channel", Value: fmt.Sprintf("%s (%s)", channel.Name, channel.ID)},
			{Name: "Ticket Creator", Value: fmt.Sprintf("<@%s> (%s)", creatorID, creatorID)},
		},
		Color: audit.ColorBad,
	})
	return nil
}

func (b *Bot) componentDeleteTicket(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	channel, err := b.session.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch ticket channel: %w", err)
	}

	privileged := i.Member != nil && i.Member.Permissions&discordgo.PermissionManageChannels != 0
	creatorID, _ := b.opts.Tickets.Creator(ctx, channel)

	err = b.opts.Tickets.Delete(ctx, channel, privileged)
	switch {
	case errors.Is(err, tickets.ErrNotTicketChannel):
		b.respondEphemeral(i, "This button can only be used in a ticket channel!")
		return nil
	case errors.Is(err, tickets.ErrForbidden):
		b.respondEphemeral(i, "Only users with Manage Channels permission can delete this ticket!")
		return nil
	case err != nil:
		return err
	}

	b.respondEphemeral(i, "Ticket deleted.")
	b.publish(audit.Event{
		Title:       "Ticket Deleted",
		Description: fmt.Sprintf("Ticket channel %s was deleted.", channel.Name),
		Fields: []audit.Field{
			{Name: "Deleted By", Value: fmt.Sprintf("%s (%s)", userTag(user), user.ID)},
			{Name: "Ticket Creator", Value: fmt.Sprintf("<@%s> (%s)", creatorID, creatorID)},
		},
		Color: audit.ColorBad,
	})
	return nil
}

func (b *Bot) componentVerify(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)

	roles, err := b.session.GuildRoles(i.GuildID)
	if err != nil {
		return fmt.Errorf("fetch roles: %w", err)
	}
	var memberRole *discordgo.Role
	for _, r := range roles {
		if r.Name == "Member" {
			memberRole = r
			break
		}
	}
	if memberRole == nil {
		b.respondEphemeral(i, "The \"Member\" role does not exist in this server!")
		return nil
	}

	if i.Member != nil {
		for _, id := range i.Member.Roles {
			if id == memberRole.ID {
				b.respondEphemeral(i, "You already have the Member role!")
				return nil
			}
		}
	}

	if err := b.session.GuildMemberRoleAdd(i.GuildID, user.ID, memberRole.ID); err != nil {
		b.respondEphemeral(i, "There was an error assigning the Member role. Please contact a moderator.")
		return fmt.Errorf("assign member role: %w", err)
	}

	b.respondEphemeral(i, "You have been verified and received the Member role!")
	b.publish(audit.Event{
		Title:       "Member Role Assigned",
		Description: fmt.Sprintf("%s was assigned the Member role via verification panel.", userTag(user)),
		Fields: []audit.Field{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(user), user.ID)},
			{Name: "Role", Value: fmt.Sprintf("%s (%s)", memberRole.Name, memberRole.ID)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) componentTriviaAnswer(ctx context.Context, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}
	correctAnswer, correct, err := trivia.DecodeAnswer(values[0])
	if err != nil {
		return err
	}

	description := fmt.Sprintf("Incorrect. The correct answer was **%s**.", correctAnswer)
	color := audit.ColorBad
	if correct {
		description = fmt.Sprintf("Correct! The answer was **%s**! 🎉", correctAnswer)
		color = audit.ColorGood
	}
	b.respondEphemeralEmbed(i, &discordgo.MessageEmbed{
		Title:       "Trivia Result",
		Description: description,
		Color:       color,
	})

	// retire the menu so the round cannot be answered twice
	if i.Message != nil {
		edit := discordgo.NewMessageEdit(i.ChannelID, i.Message.ID)
		edit.Components = &[]discordgo.MessageComponent{}
		if _, err := b.session.ChannelMessageEditComplex(edit); err != nil {
			b.opts.Log.Warn("failed to retire trivia menu", logger.Error(err))
		}
	}
	return nil
}
