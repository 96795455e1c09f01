// Package trivia fetches multiple-choice questions from the Open Trivia
// Database and builds the select-menu rounds played in chat. Each option's
// value carries three pipe-delimited fields encoding whether it is the
// correct answer; the answer handler decodes them without any server-side
// round state.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nexora-community/nexora-bot/internal/utils"
)

// SelectID is the component identifier carried by the answer menu.
const SelectID = "trivia_answer"

const apiURL = "https://opentdb.com/api.php?amount=1&type=multiple"

// ErrNoQuestion is returned when the provider responds without a question.
var ErrNoQuestion = errors.New("trivia provider returned no question")

// ErrBadAnswerValue is returned when an option value does not decode.
var ErrBadAnswerValue = errors.New("malformed trivia answer value")

// Question is one multiple-choice question as served by the provider.
type Question struct {
	Category         string
	Text             string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// Client fetches questions over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a trivia client with a sane request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// Fetch retrieves one question. HTML entities in the payload are unescaped.
func (c *Client) Fetch(ctx context.Context) (Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Question{}, fmt.Errorf("failed to build trivia request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Question{}, fmt.Errorf("failed to fetch trivia question: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Question{}, fmt.Errorf("trivia provider returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Question{}, fmt.Errorf("failed to decode trivia response: %w", err)
	}
	if len(payload.Results) == 0 {
		return Question{}, ErrNoQuestion
	}

	r := payload.Results[0]
	q := Question{
		Category:      html.UnescapeString(r.Category),
		Text:          html.UnescapeString(r.Question),
		CorrectAnswer: html.UnescapeString(r.CorrectAnswer),
	}
	for _, a := range r.IncorrectAnswers {
		q.IncorrectAnswers = append(q.IncorrectAnswers, html.UnescapeString(a))
	}
	return q, nil
}

// Option is one selectable answer. Value encodes the correctness rank and
// the correct answer text as "trivia|<rank>|<correct>"; rank 0 marks the
// correct option.
type Option struct {
	Label string
	Value string
}

// Round is a question ready to present, with options already shuffled.
type Round struct {
	Category string
	Question string
	Options  []Option
}

// BuildRound shuffles the answers once and assigns each option its rank
// relative to the shuffled order: the correct answer gets rank 0 wherever
// it landed, the incorrect ones get 1..n in shuffled order. The correct
// element is tracked by position through the shuffle, so an incorrect
// answer that happens to share its text stays incorrect. intn must behave
// like rand.Intn.
func BuildRound(q Question, intn func(n int) int) Round {
	answers := make([]string, 0, len(q.IncorrectAnswers)+1)
	answers = append(answers, q.IncorrectAnswers...)
	answers = append(answers, q.CorrectAnswer)
	correct := len(answers) - 1
	for i := len(answers) - 1; i > 0; i-- {
		j := intn(i + 1)
		answers[i], answers[j] = answers[j], answers[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	}

	round := Round{Category: q.Category, Question: q.Text}
	rank := 1
	for i, ans := range answers {
		r := 0
		if i != correct {
			r = rank
			rank++
		}
		round.Options = append(round.Options, Option{
			Label: ans,
			Value: fmt.Sprintf("trivia|%d|%s", r, q.CorrectAnswer),
		})
	}
	return round
}

// DecodeAnswer parses a selected option value and reports whether it was
// the correct one, returning the correct answer text either way.
func DecodeAnswer(value string) (correctAnswer string, correct bool, err error) {
	parts := strings.SplitN(value, "|", 3)
	if len(parts) != 3 || parts[0] != "trivia" {
		return "", false, fmt.Errorf("%w: %q", ErrBadAnswerValue, value)
	}
	rank, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", ErrBadAnswerValue, value)
	}
	return parts[2], rank == 0, nil
}
