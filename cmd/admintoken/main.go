package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/attendance/internal/adapters/handler/http"
)

// admintoken prints a bearer token for the admin API signed with JWT_SECRET.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	var (
		subject string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "admin", "Token subject")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET required")
		os.Exit(1)
	}

	token, err := http.IssueToken([]byte(secret), subject, ttl)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
