package trivia

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildRound(t *testing.T) {
	q := Question{
		Category:         "Science",
		Text:             "What is H2O?",
		CorrectAnswer:    "Water",
		IncorrectAnswers: []string{"Fire", "Earth", "Air"},
	}

	t.Run("correct option gets rank zero wherever it lands", func(t *testing.T) {
		// identity shuffle: correct answer stays last
		round := BuildRound(q, func(n int) int { return n - 1 })
		if len(round.Options) != 4 {
			t.Fatalf("got %d options, want 4", len(round.Options))
		}

		var zeroRank []string
		for _, opt := range round.Options {
			correct, isCorrect, err := DecodeAnswer(opt.Value)
			if err != nil {
				t.Fatalf("DecodeAnswer(%q) error = %v", opt.Value, err)
			}
			if correct != "Water" {
				t.Errorf("correct text = %q, want Water", correct)
			}
			if isCorrect {
				zeroRank = append(zeroRank, opt.Label)
			}
		}
		if len(zeroRank) != 1 || zeroRank[0] != "Water" {
			t.Errorf("rank-0 options = %v, want exactly [Water]", zeroRank)
		}
	})

	t.Run("shuffle moves the correct answer but rank follows it", func(t *testing.T) {
		round := BuildRound(q, func(n int) int { return 0 })
		if round.Options[len(round.Options)-1].Label == "Water" {
			t.Fatal("shuffle should have moved the correct answer off the last slot")
		}
		for _, opt := range round.Options {
			_, isCorrect, err := DecodeAnswer(opt.Value)
			if err != nil {
				t.Fatalf("DecodeAnswer(%q) error = %v", opt.Value, err)
			}
			if isCorrect != (opt.Label == "Water") {
				t.Errorf("option %q decodes correct=%v", opt.Label, isCorrect)
			}
		}
	})

	t.Run("incorrect duplicate of the correct text stays incorrect", func(t *testing.T) {
		dup := Question{
			Category:         "Science",
			Text:             "What is H2O?",
			CorrectAnswer:    "Water",
			IncorrectAnswers: []string{"Water", "Fire", "Earth"},
		}
		// identity shuffle: correct answer stays last
		round := BuildRound(dup, func(n int) int { return n - 1 })

		var zeroRank int
		for i, opt := range round.Options {
			_, isCorrect, err := DecodeAnswer(opt.Value)
			if err != nil {
				t.Fatalf("DecodeAnswer(%q) error = %v", opt.Value, err)
			}
			if isCorrect {
				zeroRank++
				if i != len(round.Options)-1 {
					t.Errorf("rank 0 at position %d, want the correct element's slot %d", i, len(round.Options)-1)
				}
			}
		}
		if zeroRank != 1 {
			t.Errorf("%d options decode as correct, want exactly 1", zeroRank)
		}
	})

	t.Run("incorrect ranks are distinct and nonzero", func(t *testing.T) {
		round := BuildRound(q, func(n int) int { return n - 1 })
		seen := map[string]bool{}
		for _, opt := range round.Options {
			parts := strings.SplitN(opt.Value, "|", 3)
			if seen[parts[1]] {
				t.Errorf("duplicate rank %s", parts[1])
			}
			seen[parts[1]] = true
		}
	})
}

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		wantAnswer  string
		wantCorrect bool
		wantErr     error
	}{
		{"correct slot", "trivia|0|Water", "Water", true, nil},
		{"wrong slot", "trivia|2|Water", "Water", false, nil},
		{"answer containing pipes", "trivia|0|A|B", "A|B", true, nil},
		{"wrong tag", "ticket|0|Water", "", false, ErrBadAnswerValue},
		{"missing fields", "trivia|0", "", false, ErrBadAnswerValue},
		{"non-numeric rank", "trivia|x|Water", "", false, ErrBadAnswerValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, correct, err := DecodeAnswer(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if answer != tt.wantAnswer || correct != tt.wantCorrect {
				t.Errorf("DecodeAnswer(%q) = %q, %v", tt.value, answer, correct)
			}
		})
	}
}
