package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			got := requireEnv(tt.key)
			if !tt.wantPanic && got != tt.value {
				t.Errorf("requireEnv() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("TEST_GETENV", "set")
	if got := getenv("TEST_GETENV", "def"); got != "set" {
		t.Errorf("getenv() = %q, want %q", got, "set")
	}
	if got := getenv("TEST_GETENV_MISSING", "def"); got != "def" {
		t.Errorf("getenv() fallback = %q, want %q", got, "def")
	}
}

func TestMustDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "10s")
	if got := mustDuration("TEST_DUR", time.Second); got != 10*time.Second {
		t.Errorf("mustDuration() = %v, want 10s", got)
	}
	t.Setenv("TEST_DUR_BAD", "not-a-duration")
	if got := mustDuration("TEST_DUR_BAD", time.Second); got != time.Second {
		t.Errorf("mustDuration() bad value = %v, want fallback 1s", got)
	}
}

func TestMustBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !mustBool("TEST_BOOL", false) {
		t.Error("mustBool() = false, want true")
	}
	if mustBool("TEST_BOOL_MISSING", false) {
		t.Error("mustBool() fallback = true, want false")
	}
}

func TestLoadRejectsMultiCharPrefix(t *testing.T) {
	t.Setenv("NEXORA_DISCORD_TOKEN", "token")
	t.Setenv("NEXORA_PREFIX", "!!")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should have panicked on multi-character prefix")
		}
	}()
	_ = Load()
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEXORA_DISCORD_TOKEN", "token")
	os.Unsetenv("NEXORA_PREFIX")

	cfg := Load()
	if cfg.Prefix != "!" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "!")
	}
	if cfg.AccessFile != "whitelist.json" {
		t.Errorf("AccessFile = %q, want whitelist.json", cfg.AccessFile)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}
