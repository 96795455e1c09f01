package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/games"
	"github.com/nexora-community/nexora-bot/internal/trivia"
)

// pollReaction returns the numbered reaction for option index i. Digits use
// the full keycap sequence (digit, U+FE0F, U+20E3); the bare digit+U+20E3
// form is rejected by the reaction endpoint as an unknown emoji.
func pollReaction(i int) string {
	if i == 9 {
		return "🔟"
	}
	return fmt.Sprintf("%d️⃣", i+1)
}

func (b *Bot) cmdPoll(ctx context.Context, inv *invocation) error {
	m := inv.message
	if inv.raw == "" {
		b.reply(m, "Usage: !poll <question> | <option1> | <option2> [| option3...]\nExample: !poll Favorite color? | Red | Blue | Green")
		return nil
	}
	poll, err := games.ParsePoll(inv.raw)
	if err != nil {
		b.reply(m, "You must provide a question and at least two options!\nExample: !poll Favorite color? | Red | Blue")
		return nil
	}

	var lines []string
	for i, opt := range poll.Options {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, opt))
	}
	sent, err := b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "📊 Poll: " + poll.Question,
				Description: strings.Join(lines, "\n"),
				Color:       audit.ColorGood,
				Footer:      &discordgo.MessageEmbedFooter{Text: "Poll by " + userTag(m.Author)},
			},
		},
		Reference: m.Reference(),
	})
	if err != nil {
		return fmt.Errorf("send poll: %w", err)
	}
	for i := range poll.Options {
		if err := b.session.MessageReactionAdd(m.ChannelID, sent.ID, pollReaction(i)); err != nil {
			b.opts.Log.Warn("failed to add poll reaction")
		}
	}

	b.publish(audit.Event{
		Title:       "Poll Created",
		Description: fmt.Sprintf("%s created a poll.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Question", Value: poll.Question},
			{Name: "Options", Value: fmt.Sprintf("%d", len(poll.Options))},
			{Name: "Channel", Value: m.ChannelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdTrivia(ctx context.Context, inv *invocation) error {
	m := inv.message
	question, err := b.opts.Trivia.Fetch(ctx)
	if err != nil {
		b.opts.Log.Error("trivia fetch failed")
		b.reply(m, "Could not fetch a trivia question. Please try again later.")
		return nil
	}
	round := trivia.BuildRound(question, b.intn)

	var lines []string
	options := make([]discordgo.SelectMenuOption, 0, len(round.Options))
	for i, opt := range round.Options {
		lines = append(lines, fmt.Sprintf("**%d.** %s", i+1, opt.Label))
		options = append(options, discordgo.SelectMenuOption{
			Label: opt.Label,
			Value: opt.Value,
		})
	}

	_, err = b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Trivia Time! 🧠",
				Description: fmt.Sprintf("**Category:** %s\n**Question:** %s\n\n%s", round.Category, round.Question, strings.Join(lines, "\n")),
				Color:       audit.ColorGood,
				Footer:      &discordgo.MessageEmbedFooter{Text: "Select an answer using the dropdown menu!"},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    trivia.SelectID,
						Placeholder: "Choose an answer...",
						Options:     options,
					},
				},
			},
		},
		Reference: m.Reference(),
	})
	if err != nil {
		return fmt.Errorf("send trivia round: %w", err)
	}

	b.publish(audit.Event{
		Title:       "Trivia Started",
		Description: fmt.Sprintf("%s started a trivia game.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Category", Value: round.Category},
			{Name: "Channel", Value: m.ChannelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdMeme(ctx context.Context, inv *invocation) error {
	m := inv.message
	post, err := b.opts.Memes.Fetch(ctx)
	if err != nil {
		b.opts.Log.Error("meme fetch failed")
		b.reply(m, "Could not fetch a meme. Please try again later.")
		return nil
	}

	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:  post.Title,
		Image:  &discordgo.MessageEmbedImage{URL: post.ImageURL},
		Color:  audit.ColorGood,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Source: r/memes | 👍 %d", post.Upvotes)},
	})
	b.publish(audit.Event{
		Title:       "Meme Fetched",
		Description: fmt.Sprintf("%s fetched a meme.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Title", Value: post.Title},
			{Name: "Channel", Value: m.ChannelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdCoinflip(ctx context.Context, inv *invocation) error {
	m := inv.message
	result := games.Coinflip(b.intn)
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:       "Coin Flip 🪙",
		Description: fmt.Sprintf("The coin landed on **%s**!", result),
		Color:       audit.ColorGood,
	})
	b.publish(audit.Event{
		Title:       "Coin Flip",
		Description: fmt.Sprintf("%s flipped a coin.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Result", Value: result},
			{Name: "Channel", Value: m.ChannelID},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdRoll(ctx context.Context, inv *invocation) error {
	m := inv.message
	expr := "1d6"
	if len(inv.args) > 0 {
		expr = inv.args[0]
	}
	roll, err := games.ParseRoll(expr)
	if err != nil {
		if errors.Is(err, games.ErrRollOutOfRange) {
			b.reply(m, "Please use 1-100 dice with 1-1000 sides!")
		} else {
			b.reply(m, "Invalid dice format! Use NdM (e.g., !roll 2d6 for two 6-sided dice).")
		}
		return nil
	}
	results, total := games.RollDice(roll, b.intn)

	var parts []string
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%d", r))
	}
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:       "Dice Roll 🎲",
		Description: fmt.Sprintf("Rolled **%s**:\nResults: %s\nTotal: **%d**", expr, strings.Join(parts, ", "), total),
		Color:       audit.ColorGood,
	})
	b.publish(audit.Event{
		Title:       "Dice Roll",
		Description: fmt.Sprintf("%s rolled dice.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Roll", Value: expr},
			{Name: "Total", Value: fmt.Sprintf("%d", total)},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdRPS(ctx context.Context, inv *invocation) error {
	m := inv.message
	choice := ""
	if len(inv.args) > 0 {
		choice = inv.args[0]
	}
	botChoice, outcome, err := games.PlayRPS(choice, b.intn)
	if err != nil {
		b.reply(m, "Please choose rock, paper, or scissors!\nExample: !rps rock")
		return nil
	}

	var result string
	switch outcome {
	case games.RPSWin:
		result = "You win! 🎉"
	case games.RPSLose:
		result = "I win! 😎"
	default:
		result = "It's a tie! 🤝"
	}
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:       "Rock Paper Scissors ✂️",
		Description: fmt.Sprintf("You chose **%s**, I chose **%s**.\n%s", strings.ToLower(choice), botChoice, result),
		Color:       audit.ColorGood,
	})
	b.publish(audit.Event{
		Title:       "RPS Game",
		Description: fmt.Sprintf("%s played rock-paper-scissors.", userTag(m.Author)),
		Fields: []audit.Field{
			{Name: "Player", Value: strings.ToLower(choice)},
			{Name: "Bot", Value: botChoice},
		},
		Color: audit.ColorGood,
	})
	return nil
}

func (b *Bot) cmdEightBall(ctx context.Context, inv *invocation) error {
	m := inv.message
	if len(inv.args) == 0 {
		b.reply(m, "Please ask a question!\nExample: !8ball Will it rain today?")
		return nil
	}
	question := strings.Join(inv.args, " ")
	answer := games.EightBall(b.intn)

	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:       "Magic 8-Ball 🎱",
		Description: fmt.Sprintf("**Question:** %s\n**Answer:** %s", question, answer),
		Color:       audit.ColorGood,
	})
	return nil
}
