package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/attendance/internal/adapters/handler/discord"
	"github.com/vncsmyrnk/attendance/internal/adapters/handler/http"
	"github.com/vncsmyrnk/attendance/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/attendance/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/attendance/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/attendance/internal/config"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
	"github.com/vncsmyrnk/attendance/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.ParseBot(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	meetingRepo, closeStore, err := openMeetingRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discord.Intents
	// Handlers must see events in gateway order; Router does its own fan-out.
	dg.SyncEvents = true

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to connect to discord: %w", err)
	}
	defer dg.Close()

	selfID, err := botUserID(dg)
	if err != nil {
		return err
	}

	messenger := discord.NewMessenger(dg, selfID).WithMemberCache(dg.State)
	meetings := services.NewMeetingService(meetingRepo, nil)
	feed := http.NewSummaryFeed(logger)

	polls := services.NewPollService(messenger, messenger, meetings, memory.NewResponseStore, services.PollServiceConfig{
		ChannelID:     cfg.ChannelID,
		ReasonTimeout: cfg.ReasonTimeout,
		Logger:        logger,
		Observers:     []ports.SummaryObserver{feed},
	})
	defer polls.Close()

	commands := discord.NewCommandHandler(dg, messenger, meetings, polls, discord.CommandConfig{
		Prefix:    cfg.CommandPrefix,
		AdminRole: cfg.AdminRole,
		Logger:    logger,
	})
	router := discord.NewRouter(ctx, polls, commands, selfID, logger)
	unregister := router.Register(dg)
	defer func() {
		unregister()
		router.Wait()
	}()

	var server *stdhttp.Server
	if cfg.HTTPAddr != "" {
		handler := http.NewHandler(
			http.NewMeetingHandler(meetings),
			http.NewPollHandler(polls, feed),
			http.RequireToken([]byte(cfg.JWTSecret)),
		)
		server = &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				logger.Error("admin api stopped", "error", err)
				stop()
			}
		}()
		logger.Info("admin api listening", "addr", cfg.HTTPAddr)
	}

	logger.Info("bot running", "user_id", selfID, "channel", cfg.ChannelID, "store", cfg.MeetingStore)

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down admin api: %w", err)
		}
	}
	return nil
}

func botUserID(dg *discordgo.Session) (string, error) {
	if dg.State != nil && dg.State.User != nil {
		return dg.State.User.ID, nil
	}
	user, err := dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to resolve bot user: %w", err)
	}
	return user.ID, nil
}

func openMeetingRepository(ctx context.Context, cfg config.Bot) (ports.MeetingRepository, func(), error) {
	switch cfg.MeetingStore {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
		}
		return postgres.NewMeetingRepository(db), func() { db.Close() }, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewMeetingRepository(db), func() { db.Close() }, nil
	default:
		return memory.NewMeetingRepository(), func() {}, nil
	}
}
