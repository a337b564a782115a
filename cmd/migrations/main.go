package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/attendance/internal/config"
)

const defaultDir = "internal/adapters/repository/postgres/migrations"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	var (
		pg  config.Postgres
		dir string
		all bool
	)
	fset := flag.NewFlagSet("migrations", flag.ExitOnError)
	config.RegisterPostgresFlags(fset, &pg, os.Getenv)
	fset.StringVar(&dir, "dir", defaultDir, "Migrations directory")
	fset.BoolVar(&all, "all", false, "Apply every up migration in order")
	fset.Parse(os.Args[1:])

	files, err := selectMigrations(dir, fset.Args(), all)
	if err != nil {
		slog.Error("no migration to apply", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", pg.DSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Error("failed to read migration", "file", name, "error", err)
			os.Exit(1)
		}
		if _, err := db.Exec(string(content)); err != nil {
			slog.Error("failed to execute migration", "file", name, "error", err)
			os.Exit(1)
		}
		slog.Info("migration applied", "file", name)
	}
}

// selectMigrations returns the file to run for a name such as
// "create_meeting_settings.up", or every *.up.sql file when all is set.
func selectMigrations(dir string, args []string, all bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if all {
		var ups []string
		for _, n := range names {
			if strings.HasSuffix(n, ".up.sql") {
				ups = append(ups, n)
			}
		}
		return ups, nil
	}

	if len(args) != 1 {
		return nil, errors.New("a migration name is required")
	}
	pattern := regexp.MustCompile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(args[0])))
	for _, n := range names {
		if pattern.MatchString(n) {
			return []string{n}, nil
		}
	}
	return nil, fmt.Errorf("migration file %q not found", args[0])
}
