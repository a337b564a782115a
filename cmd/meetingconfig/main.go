package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/attendance/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/attendance/internal/config"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
	"github.com/vncsmyrnk/attendance/internal/core/services"
)

// meetingconfig updates the stored meeting settings without the bot running.
// Flags left unset keep their stored values.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	var (
		pg                    config.Postgres
		meetingTime, building string
		room                  string
	)
	fset := flag.NewFlagSet("meetingconfig", flag.ExitOnError)
	config.RegisterPostgresFlags(fset, &pg, os.Getenv)
	fset.StringVar(&meetingTime, "time", "", "Meeting time, e.g. 19:00")
	fset.StringVar(&building, "building", "", "Meeting building")
	fset.StringVar(&room, "room", "", "Meeting room")
	fset.Parse(os.Args[1:])

	db, err := sql.Open("postgres", pg.DSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	meetings := services.NewMeetingService(postgres.NewMeetingRepository(db), clockwork.NewRealClock())

	input := updateInput(fset, meetingTime, building, room)
	if input == (ports.UpdateMeetingInput{}) {
		meeting, err := meetings.Get(ctx)
		if err != nil {
			slog.Error("failed to read meeting settings", "error", err)
			os.Exit(1)
		}
		fmt.Printf("time=%s building=%s room=%s\n", meeting.Time, meeting.Building, meeting.Room)
		return
	}

	meeting, err := meetings.Update(ctx, input)
	if err != nil {
		slog.Error("failed to update meeting settings", "error", err)
		os.Exit(1)
	}
	slog.Info("meeting settings saved", "time", meeting.Time, "building", meeting.Building, "room", meeting.Room)
}

// updateInput includes only the flags given on the command line, so an
// explicit empty value is still rejected by the service.
func updateInput(fset *flag.FlagSet, meetingTime, building, room string) ports.UpdateMeetingInput {
	var input ports.UpdateMeetingInput
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "time":
			input.Time = &meetingTime
		case "building":
			input.Building = &building
		case "room":
			input.Room = &room
		}
	})
	return input
}
