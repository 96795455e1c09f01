// Package games holds the pure logic behind the fun commands: dice rolls,
// polls, rock-paper-scissors, coin flips, and the magic 8-ball. Randomness
// is injected so outcomes are testable.
package games

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrBadRollFormat is returned for input not matching NdM.
	ErrBadRollFormat = errors.New("invalid dice format, use NdM (e.g. 2d6)")
	// ErrRollOutOfRange is returned for counts or sides outside the table limits.
	ErrRollOutOfRange = errors.New("use 1-100 dice with 1-1000 sides")
	// ErrPollTooFewParts is returned when a poll lacks a question and two options.
	ErrPollTooFewParts = errors.New("a poll needs a question and at least two options")
	// ErrBadRPSChoice is returned for anything other than rock, paper or scissors.
	ErrBadRPSChoice = errors.New("choose rock, paper, or scissors")
)

const (
	maxDice    = 100
	maxSides   = 1000
	maxOptions = 10
)

var rollPattern = regexp.MustCompile(`^(\d+)d(\d+)$`)

// Roll describes a parsed dice expression.
type Roll struct {
	Count int
	Sides int
}

// ParseRoll parses an NdM dice expression and checks the table limits.
func ParseRoll(input string) (Roll, error) {
	m := rollPattern.FindStringSubmatch(input)
	if m == nil {
		return Roll{}, fmt.Errorf("%w: %q", ErrBadRollFormat, input)
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Roll{}, fmt.Errorf("%w: %q", ErrBadRollFormat, input)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Roll{}, fmt.Errorf("%w: %q", ErrBadRollFormat, input)
	}
	if count < 1 || count > maxDice || sides < 1 || sides > maxSides {
		return Roll{}, ErrRollOutOfRange
	}
	return Roll{Count: count, Sides: sides}, nil
}

// RollDice rolls the parsed dice. intn must behave like rand.Intn.
func RollDice(roll Roll, intn func(n int) int) (results []int, total int) {
	results = make([]int, roll.Count)
	for i := range results {
		results[i] = intn(roll.Sides) + 1
		total += results[i]
	}
	return results, total
}

// Poll is a parsed poll command line.
type Poll struct {
	Question string
	Options  []string
}

// ParsePoll splits the raw line after the command on pipes: the first part
// is the question, the rest are options. More than ten options are silently
// truncated to ten.
func ParsePoll(raw string) (Poll, error) {
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return Poll{}, ErrPollTooFewParts
	}
	options := parts[1:]
	if len(options) > maxOptions {
		options = options[:maxOptions]
	}
	return Poll{Question: parts[0], Options: options}, nil
}

// RPSOutcome is the result of a rock-paper-scissors round from the
// player's point of view.
type RPSOutcome int

const (
	RPSTie RPSOutcome = iota
	RPSWin
	RPSLose
)

var rpsChoices = []string{"rock", "paper", "scissors"}

// PlayRPS plays one round against the bot. intn must behave like rand.Intn.
func PlayRPS(choice string, intn func(n int) int) (botChoice string, outcome RPSOutcome, err error) {
	choice = strings.ToLower(choice)
	valid := false
	for _, c := range rpsChoices {
		if c == choice {
			valid = true
			break
		}
	}
	if !valid {
		return "", RPSTie, fmt.Errorf("%w: %q", ErrBadRPSChoice, choice)
	}

	botChoice = rpsChoices[intn(len(rpsChoices))]
	switch {
	case choice == botChoice:
		outcome = RPSTie
	case (choice == "rock" && botChoice == "scissors") ||
		(choice == "paper" && botChoice == "rock") ||
		(choice == "scissors" && botChoice == "paper"):
		outcome = RPSWin
	default:
		outcome = RPSLose
	}
	return botChoice, outcome, nil
}

// Coinflip returns Heads or Tails. intn must behave like rand.Intn.
func Coinflip(intn func(n int) int) string {
	if intn(2) == 0 {
		return "Heads"
	}
	return "Tails"
}

var eightBallResponses = []string{
	"It is certain.",
	"Without a doubt.",
	"Yes, definitely.",
	"You may rely on it.",
	"As I see it, yes.",
	"Most likely.",
	"Outlook good.",
	"Yes.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Better not tell you now.",
	"Cannot predict now.",
	"Concentrate and ask again.",
	"Don't count on it.",
	"My reply is no.",
	"My sources say no.",
	"Outlook not so good.",
	"Very doubtful.",
}

// EightBall picks one of the classic responses. intn must behave like rand.Intn.
func EightBall(intn func(n int) int) string {
	return eightBallResponses[intn(len(eightBallResponses))]
}
