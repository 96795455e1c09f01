// Package app is the composition root: it loads configuration, builds every
// component, and runs the gateway bot alongside the ops HTTP server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v66/github"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nexora-community/nexora-bot/internal/afk"
	"github.com/nexora-community/nexora-bot/internal/audit"
	"github.com/nexora-community/nexora-bot/internal/bot"
	"github.com/nexora-community/nexora-bot/internal/config"
	"github.com/nexora-community/nexora-bot/internal/httpserver"
	"github.com/nexora-community/nexora-bot/internal/logger"
	"github.com/nexora-community/nexora-bot/internal/meme"
	"github.com/nexora-community/nexora-bot/internal/sitepatch"
	"github.com/nexora-community/nexora-bot/internal/sources/boardcfg"
	"github.com/nexora-community/nexora-bot/internal/statusboard"
	"github.com/nexora-community/nexora-bot/internal/store"
	"github.com/nexora-community/nexora-bot/internal/store/file"
	"github.com/nexora-community/nexora-bot/internal/store/redisstore"
	"github.com/nexora-community/nexora-bot/internal/tickets"
	"github.com/nexora-community/nexora-bot/internal/trivia"
	"github.com/nexora-community/nexora-bot/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	session     *discordgo.Session
	bot         *bot.Bot
	server      *httpserver.Server
	redisClient *goredis.Client
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Select the store backend. Redis when configured, flat files otherwise.
	var (
		st          store.Store
		redisClient *goredis.Client
	)
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redisstore.Connect(redisstore.ConnectOptions{
			Addr:        cfg.RedisAddr,
			User:        cfg.RedisUser,
			Password:    cfg.RedisPassword,
			RedisDB:     cfg.RedisDB,
			DialTimeout: cfg.RedisDialTimeout,
			ReadTimeout: cfg.RedisReadTimeout,
			PingTimeout: cfg.RedisPingTimeout,
			PoolSize:    cfg.RedisPoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		st = redisstore.NewStore(client)
	} else {
		loggerClient.Info("no redis address configured, using flat-file store")
		fileStore, err := file.Open(cfg.AccessFile, cfg.AFKFile, cfg.TicketsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		st = fileStore
	}

	boardConfig, err := boardcfg.NewLoader(cfg.BoardFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load board config: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway session: %w", err)
	}

	// The downloads command needs a GitHub token; without one it stays off.
	var patcher *sitepatch.Patcher
	if cfg.GitHubToken != "" {
		gh := github.NewClient(nil).WithAuthToken(cfg.GitHubToken)
		patcher = sitepatch.NewPatcher(gh.Repositories,
			cfg.SiteRepoOwner, cfg.SiteRepoName, cfg.SiteFilePath, cfg.SiteBranch)
		loggerClient.Info("site patching enabled",
			logger.String("repo", cfg.SiteRepoOwner+"/"+cfg.SiteRepoName),
			logger.String("branch", cfg.SiteBranch))
	} else {
		loggerClient.Info("no github token configured, downloads command disabled")
	}

	bus := audit.NewBus(loggerClient)
	bus.Subscribe(audit.NewChannelLogger(session, cfg.LogChannelID, loggerClient))

	b := bot.New(session, bot.Options{
		Prefix:           cfg.Prefix,
		WelcomeChannelID: cfg.WelcomeChannelID,
		Store:            st,
		AFK:              afk.NewRegistry(st),
		Tickets:          tickets.NewManager(session, st),
		Board:            statusboard.NewBoard(session, boardConfig.Channels, loggerClient),
		Patcher:          patcher,
		Trivia:           trivia.NewClient(),
		Memes:            meme.NewClient(),
		Bus:              bus,
		Log:              loggerClient,
	})

	server := httpserver.New(cfg.AdminAddr, httpserver.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		Ready:     b.Ready,
	})

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		session:     session,
		bot:         b,
		server:      server,
		redisClient: redisClient,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Nexora %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.bot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if err := a.bot.Close(); err != nil {
		a.logger.Warnf("failed to close gateway session: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Nexora stopped cleanly")
	return nil
}
