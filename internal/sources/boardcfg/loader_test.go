package boardcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("parses channel map", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		content := `channels:
  windows: "111"
  macos: "222"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := NewLoader(path).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Channels["windows"] != "111" || cfg.Channels["macos"] != "222" {
			t.Errorf("channels = %v", cfg.Channels)
		}
	})

	t.Run("missing file yields empty config", func(t *testing.T) {
		cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(cfg.Channels) != 0 {
			t.Errorf("channels = %v, want empty", cfg.Channels)
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		if err := os.WriteFile(path, []byte("channels: [broken"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewLoader(path).Load(); err == nil {
			t.Error("expected a parse error")
		}
	})
}
