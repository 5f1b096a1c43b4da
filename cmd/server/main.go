package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codingconcepts/env"
	"github.com/golden-vcr/server-common/db"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/browser"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/fitplate/dashboard"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/forbidden"
	"github.com/fitplate/dashboard/internal/payments"
	"github.com/fitplate/dashboard/internal/search"
	"github.com/fitplate/dashboard/internal/server"
	"github.com/fitplate/dashboard/internal/session"
	"github.com/fitplate/dashboard/internal/storage"
)

// ShutdownTimeout bounds how long in-flight requests get to finish once a signal is
// received
const ShutdownTimeout = 10 * time.Second

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5010"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`

	BackendUrl         string        `env:"BACKEND_URL" required:"true"`
	BackendTimeout     time.Duration `env:"BACKEND_TIMEOUT" default:"15s"`
	BackendLongTimeout time.Duration `env:"BACKEND_LONG_TIMEOUT" default:"90s"`

	SearchDebounce      time.Duration `env:"SEARCH_DEBOUNCE" default:"500ms"`
	PaymentPollInterval time.Duration `env:"PAYMENT_POLL_INTERVAL" default:"3s"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" default:"false"`
	CorsAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" delimiter:","`
	OpenBrowser         bool          `env:"OPEN_BROWSER" default:"false"`

	// Sessions are kept in postgres when PGHOST is set, and in memory otherwise
	DatabaseHost     string `env:"PGHOST"`
	DatabasePort     int    `env:"PGPORT" default:"5432"`
	DatabaseName     string `env:"PGDATABASE"`
	DatabaseUser     string `env:"PGUSER"`
	DatabasePassword string `env:"PGPASSWORD"`
	DatabaseSslMode  string `env:"PGSSLMODE"`

	// Body images are archived to an S3-compatible bucket when configured
	SpacesBucketName     string `env:"SPACES_BUCKET_NAME"`
	SpacesRegionName     string `env:"SPACES_REGION_NAME"`
	SpacesEndpointOrigin string `env:"SPACES_ENDPOINT_URL"`
	SpacesAccessKeyId    string `env:"SPACES_ACCESS_KEY_ID"`
	SpacesSecretKey      string `env:"SPACES_SECRET_KEY"`
}

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", config.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, close := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM)
	defer close()

	// Keep sessions in postgres if configured
	var store session.Store
	if config.DatabaseHost != "" {
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
		if err := db.Ping(); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		store = session.NewPostgresStore(db)
	} else {
		fmt.Printf("PGHOST is not set; sessions will be kept in memory.\n")
		store = session.NewMemoryStore()
	}

	client := backend.NewClient(
		config.BackendUrl,
		backend.WithTimeout(config.BackendTimeout),
		backend.WithLongTimeout(config.BackendLongTimeout),
		backend.WithLogger(logger),
	)

	// Archive uploaded body images if a bucket is configured
	var archive storage.ArchiveClient
	archiveConfig := storage.Config{
		AccessKeyId:    config.SpacesAccessKeyId,
		SecretKey:      config.SpacesSecretKey,
		EndpointOrigin: config.SpacesEndpointOrigin,
		RegionName:     config.SpacesRegionName,
		BucketName:     config.SpacesBucketName,
	}
	if archiveConfig.Enabled() {
		archive, err = storage.NewArchiveClient(archiveConfig)
		if err != nil {
			log.Fatalf("error initializing archive client: %v", err)
		}
	}

	opts := server.Options{
		CookieSecure:        config.SessionCookieSecure,
		SearchDebounce:      config.SearchDebounce,
		PaymentPollInterval: config.PaymentPollInterval,
		CountdownStart:      forbidden.CountdownStart,
		CountdownInterval:   forbidden.CountdownInterval,
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = search.DefaultWindow
	}
	if opts.PaymentPollInterval <= 0 {
		opts.PaymentPollInterval = payments.DefaultPollInterval
	}
	var handler http.Handler = server.New(ctx, store, client, archive, opts, logger)
	if len(config.CorsAllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   config.CorsAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	addr := fmt.Sprintf("%s:%d", config.BindAddr, config.ListenPort)
	server := &http.Server{Addr: addr, Handler: handler}

	fmt.Printf("Listening on %s...\n", addr)
	var wg errgroup.Group
	wg.Go(server.ListenAndServe)

	if config.OpenBrowser {
		host := config.BindAddr
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		loginUrl := fmt.Sprintf("http://%s:%d%s", host, config.ListenPort, dashboard.LoginPath)
		if err := browser.OpenURL(loginUrl); err != nil {
			fmt.Printf("Open %s in a browser to log in.\n", loginUrl)
		}
	}

	select {
	case <-ctx.Done():
		fmt.Printf("Received signal; closing server...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Server did not close cleanly: %v\n", err)
		}
	}

	err = wg.Wait()
	if err == http.ErrServerClosed {
		fmt.Printf("Server closed.\n")
	} else {
		log.Fatalf("error running server: %v", err)
	}
}
