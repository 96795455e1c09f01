package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DiscordToken string // bot token for the gateway session
	GitHubToken  string // optional, empty disables the downloads command

	Prefix           string // command prefix, single character (default "!")
	LogChannelID     string // audit log channel, empty disables channel logging
	WelcomeChannelID string // welcome channel, empty disables join greetings

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	AccessFile  string // path to the whitelist JSON document
	AFKFile     string // path to the AFK registry JSON document
	TicketsFile string // path to the ticket records JSON document
	BoardFile   string // path to the status-board channel map (YAML)

	SiteRepoOwner string // downloads target repository owner
	SiteRepoName  string // downloads target repository name
	SiteFilePath  string // path of the JS file carrying downloadUrls
	SiteBranch    string // branch to commit to

	AdminAddr       string        // ops HTTP listen address, ex: ":8090"
	ShutdownTimeout time.Duration // ex: 5s

	// Redis (optional; empty addr selects the flat-file store backend)
	RedisAddr        string
	RedisUser        string
	RedisPassword    string
	RedisDB          int
	RedisDialTimeout time.Duration
	RedisReadTimeout time.Duration
	RedisPingTimeout time.Duration
	RedisPoolSize    int
}

func Load() *Config {
	cfg := &Config{
		DiscordToken: requireEnv("NEXORA_DISCORD_TOKEN"),
		GitHubToken:  getenv("NEXORA_GITHUB_TOKEN", ""),

		Prefix:           getenv("NEXORA_PREFIX", "!"),
		LogChannelID:     getenv("NEXORA_LOG_CHANNEL_ID", ""),
		WelcomeChannelID: getenv("NEXORA_WELCOME_CHANNEL_ID", ""),

		LogLevel:  getenv("NEXORA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NEXORA_PRETTY_LOG", false),

		AccessFile:  getenv("NEXORA_ACCESS_FILE", "whitelist.json"),
		AFKFile:     getenv("NEXORA_AFK_FILE", "afk.json"),
		TicketsFile: getenv("NEXORA_TICKETS_FILE", "tickets.json"),
		BoardFile:   getenv("NEXORA_BOARD_FILE", "board.yaml"),

		SiteRepoOwner: getenv("NEXORA_SITE_REPO_OWNER", ""),
		SiteRepoName:  getenv("NEXORA_SITE_REPO_NAME", ""),
		SiteFilePath:  getenv("NEXORA_SITE_FILE_PATH", "script.js"),
		SiteBranch:    getenv("NEXORA_SITE_BRANCH", "main"),

		AdminAddr:       getenv("NEXORA_ADMIN_ADDR", ":8090"),
		ShutdownTimeout: mustDuration("NEXORA_SHUTDOWN_TIMEOUT", 5*time.Second),

		RedisAddr:        getenv("NEXORA_REDIS_ADDR", ""),
		RedisUser:        getenv("NEXORA_REDIS_USERNAME", "default"),
		RedisPassword:    getenv("NEXORA_REDIS_PASSWORD", ""),
		RedisDB:          getenvInt("NEXORA_REDIS_DB", 0),
		RedisDialTimeout: mustDuration("NEXORA_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout: mustDuration("NEXORA_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisPingTimeout: mustDuration("NEXORA_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:    getenvInt("NEXORA_REDIS_POOL_SIZE", 10),
	}

	if len(cfg.Prefix) != 1 {
		panic(fmt.Sprintf("❌ FATAL: NEXORA_PREFIX must be a single character, got %q", cfg.Prefix))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.DiscordToken = "***REDACTED***"
		if cfg.GitHubToken != "" {
			cfgCopy.GitHubToken = "***REDACTED***"
		}
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
