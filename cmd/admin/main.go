package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/codingconcepts/env"
	"github.com/golden-vcr/server-common/db"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/fitplate/dashboard/gen/queries"
)

type Config struct {
	DatabaseHost     string `env:"PGHOST" required:"true"`
	DatabasePort     int    `env:"PGPORT" required:"true"`
	DatabaseName     string `env:"PGDATABASE" required:"true"`
	DatabaseUser     string `env:"PGUSER" required:"true"`
	DatabasePassword string `env:"PGPASSWORD" required:"true"`
	DatabaseSslMode  string `env:"PGSSLMODE"`
}

func main() {
	// Initialize config from environment vars
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	// Construct a postgres connection string from our config
	connectionString := db.FormatConnectionString(
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseName,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseSslMode,
	)
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		log.Fatalf("error opening database: %v", err)
	}
	defer db.Close()

	// Verify that we can connect to the database
	if err := db.Ping(); err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	// Print a summary of stored sessions
	q := queries.New(db)
	ctx := context.Background()
	counts, err := q.CountSessions(ctx)
	if err != nil {
		log.Fatalf("error counting sessions: %v", err)
	}
	fmt.Printf("sessions: %d (%d logged in)\n", counts.Total, counts.Authenticated)

	// If called with 'purge-idle <hours>', delete sessions not touched in that long
	if len(os.Args) >= 3 && os.Args[1] == "purge-idle" {
		hours, err := strconv.Atoi(os.Args[2])
		if err != nil || hours <= 0 {
			log.Fatalf("usage: admin purge-idle <hours>")
		}
		res, err := q.PurgeIdleSessions(ctx, int32(hours))
		if err != nil {
			log.Fatalf("error purging idle sessions: %v", err)
		}
		purged, _ := res.RowsAffected()
		fmt.Printf("purged %d session(s) idle for more than %d hour(s)\n", purged, hours)
	} else if len(os.Args) >= 3 && os.Args[1] == "revoke" {
		// 'revoke <session-id>' logs a single browser session out
		sessionId, err := uuid.Parse(os.Args[2])
		if err != nil {
			log.Fatalf("invalid session ID: %v", err)
		}
		res, err := q.ClearSessionAccessToken(ctx, sessionId)
		if err != nil {
			log.Fatalf("error revoking session: %v", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			fmt.Printf("no such session: %s\n", sessionId)
		} else {
			fmt.Printf("revoked session %s\n", sessionId)
		}
	} else if len(os.Args) >= 3 && os.Args[1] == "delete" {
		sessionId, err := uuid.Parse(os.Args[2])
		if err != nil {
			log.Fatalf("invalid session ID: %v", err)
		}
		if _, err := q.DeleteSession(ctx, sessionId); err != nil {
			log.Fatalf("error deleting session: %v", err)
		}
		fmt.Printf("deleted session %s\n", sessionId)
	}
}
