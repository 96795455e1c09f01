package games

import (
	"errors"
	"testing"
)

func TestParseRoll(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Roll
		wantErr error
	}{
		{"two d6", "2d6", Roll{Count: 2, Sides: 6}, nil},
		{"single d20", "1d20", Roll{Count: 1, Sides: 20}, nil},
		{"upper limits", "100d1000", Roll{Count: 100, Sides: 1000}, nil},
		{"zero dice", "0d6", Roll{}, ErrRollOutOfRange},
		{"too many dice", "101d6", Roll{}, ErrRollOutOfRange},
		{"too many sides", "1d1001", Roll{}, ErrRollOutOfRange},
		{"zero sides", "1d0", Roll{}, ErrRollOutOfRange},
		{"garbage", "abc", Roll{}, ErrBadRollFormat},
		{"missing count", "d6", Roll{}, ErrBadRollFormat},
		{"negative", "-1d6", Roll{}, ErrBadRollFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoll(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRoll(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRollDice(t *testing.T) {
	roll := Roll{Count: 2, Sides: 6}
	calls := 0
	intn := func(n int) int {
		if n != 6 {
			t.Errorf("intn called with %d, want 6", n)
		}
		calls++
		return calls - 1 // 0 then 1
	}

	results, total := RollDice(roll, intn)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0] != 1 || results[1] != 2 {
		t.Errorf("results = %v, want [1 2]", results)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	for _, r := range results {
		if r < 1 || r > 6 {
			t.Errorf("result %d out of range [1,6]", r)
		}
	}
}

func TestParsePoll(t *testing.T) {
	t.Run("question and three options", func(t *testing.T) {
		p, err := ParsePoll("Favorite color? | Red | Blue | Green")
		if err != nil {
			t.Fatalf("ParsePoll() error = %v", err)
		}
		if p.Question != "Favorite color?" {
			t.Errorf("question = %q", p.Question)
		}
		if len(p.Options) != 3 || p.Options[0] != "Red" || p.Options[2] != "Green" {
			t.Errorf("options = %v", p.Options)
		}
	})

	t.Run("too few parts", func(t *testing.T) {
		if _, err := ParsePoll("Question? | Only one"); !errors.Is(err, ErrPollTooFewParts) {
			t.Errorf("error = %v, want ErrPollTooFewParts", err)
		}
	})

	t.Run("truncates past ten options", func(t *testing.T) {
		raw := "Q? | 1 | 2 | 3 | 4 | 5 | 6 | 7 | 8 | 9 | 10 | 11 | 12"
		p, err := ParsePoll(raw)
		if err != nil {
			t.Fatalf("ParsePoll() error = %v", err)
		}
		if len(p.Options) != 10 {
			t.Errorf("got %d options, want 10", len(p.Options))
		}
		if p.Options[9] != "10" {
			t.Errorf("last option = %q, want 10", p.Options[9])
		}
	})
}

func TestPlayRPS(t *testing.T) {
	pick := func(i int) func(int) int {
		return func(n int) int { return i }
	}

	tests := []struct {
		name      string
		choice    string
		botIndex  int // 0 rock, 1 paper, 2 scissors
		wantBot   string
		wantOut   RPSOutcome
		wantError error
	}{
		{"rock beats scissors", "rock", 2, "scissors", RPSWin, nil},
		{"rock loses to paper", "rock", 1, "paper", RPSLose, nil},
		{"tie", "rock", 0, "rock", RPSTie, nil},
		{"paper beats rock", "paper", 0, "rock", RPSWin, nil},
		{"scissors beats paper", "SCISSORS", 1, "paper", RPSWin, nil},
		{"invalid choice", "gun", 0, "", RPSTie, ErrBadRPSChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, out, err := PlayRPS(tt.choice, pick(tt.botIndex))
			if !errors.Is(err, tt.wantError) {
				t.Fatalf("error = %v, want %v", err, tt.wantError)
			}
			if bot != tt.wantBot || out != tt.wantOut {
				t.Errorf("PlayRPS() = %q, %v", bot, out)
			}
		})
	}
}

func TestCoinflip(t *testing.T) {
	if got := Coinflip(func(n int) int { return 0 }); got != "Heads" {
		t.Errorf("got %q, want Heads", got)
	}
	if got := Coinflip(func(n int) int { return 1 }); got != "Tails" {
		t.Errorf("got %q, want Tails", got)
	}
}

func TestEightBall(t *testing.T) {
	got := EightBall(func(n int) int {
		if n != len(eightBallResponses) {
			t.Errorf("intn called with %d, want %d", n, len(eightBallResponses))
		}
		return 0
	})
	if got != "It is certain." {
		t.Errorf("got %q", got)
	}
}
