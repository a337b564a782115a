// Package config reads process configuration from flags with environment
// fallbacks. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

// RegisterPostgresFlags binds the db-* flags to p, defaulting to the
// POSTGRES_* variables.
func RegisterPostgresFlags(fs *flag.FlagSet, p *Postgres, getenv func(string) string) {
	fs.StringVar(&p.Host, "db-host", getenv("POSTGRES_HOST"), "Database host")
	fs.StringVar(&p.Port, "db-port", envOr(getenv, "POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&p.User, "db-user", getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&p.Password, "db-pass", getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&p.DB, "db-name", getenv("POSTGRES_DB"), "Database name")
}

type Bot struct {
	DiscordToken  string
	ChannelID     string
	AdminRole     string
	CommandPrefix string
	ReasonTimeout time.Duration
	HTTPAddr      string
	JWTSecret     string
	MeetingStore  string
	SQLitePath    string
	LogLevel      slog.Level
	Postgres      Postgres
}

func ParseBot(args []string, getenv func(string) string) (Bot, error) {
	var (
		cfg      Bot
		timeout  string
		logLevel string
	)

	fs := flag.NewFlagSet("bot", flag.ContinueOnError)

	fs.StringVar(&cfg.ChannelID, "channel", getenv("CHANNEL_ID"), "Channel that receives polls")
	fs.StringVar(&cfg.AdminRole, "admin-role", envOr(getenv, "ADMIN_ROLE_NAME", "Board"), "Role allowed to run commands")
	fs.StringVar(&cfg.CommandPrefix, "prefix", envOr(getenv, "COMMAND_PREFIX", "!"), "Command prefix")
	fs.StringVar(&timeout, "reason-timeout", envOr(getenv, "REASON_TIMEOUT", "120s"), "How long to wait for an absence reason")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", envOr(getenv, "HTTP_ADDR", "0.0.0.0:8080"), "Admin API address, empty to disable")
	fs.StringVar(&cfg.MeetingStore, "store", envOr(getenv, "MEETING_STORE", StoreMemory), "Meeting settings store (memory, postgres or sqlite)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", envOr(getenv, "SQLITE_PATH", "attendance.db"), "SQLite database file")
	fs.StringVar(&logLevel, "log-level", envOr(getenv, "LOG_LEVEL", "info"), "Log level")
	RegisterPostgresFlags(fs, &cfg.Postgres, getenv)

	if err := fs.Parse(args); err != nil {
		return Bot{}, err
	}

	// Secrets come from the environment only.
	cfg.DiscordToken = getenv("DISCORD_TOKEN")
	cfg.JWTSecret = getenv("JWT_SECRET")

	if cfg.DiscordToken == "" {
		return Bot{}, errors.New("DISCORD_TOKEN required")
	}
	if cfg.ChannelID == "" {
		return Bot{}, errors.New("channel required (use -channel or CHANNEL_ID env)")
	}

	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return Bot{}, fmt.Errorf("invalid reason timeout %q", timeout)
	}
	cfg.ReasonTimeout = d

	if cfg.HTTPAddr != "" && cfg.JWTSecret == "" {
		return Bot{}, errors.New("JWT_SECRET required when the admin API is enabled")
	}

	switch cfg.MeetingStore {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.Postgres.Host == "" || cfg.Postgres.DB == "" {
			return Bot{}, errors.New("POSTGRES_HOST and POSTGRES_DB required for the postgres store")
		}
	default:
		return Bot{}, fmt.Errorf("unknown meeting store %q", cfg.MeetingStore)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return Bot{}, fmt.Errorf("invalid log level %q", logLevel)
	}

	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
