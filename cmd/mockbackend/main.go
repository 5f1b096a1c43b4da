package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/codingconcepts/env"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/backend/backendtest"
)

type Config struct {
	BindAddr   string `env:"MOCK_BACKEND_BIND_ADDR"`
	ListenPort uint16 `env:"MOCK_BACKEND_PORT" default:"8080"`
	Password   string `env:"MOCK_BACKEND_PASSWORD" default:"password"`

	// Number of status checks a new payment answers PENDING before it's PAID
	PollsUntilPaid int `env:"MOCK_BACKEND_POLLS_UNTIL_PAID" default:"3"`
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

	ctx, close := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM)
	defer close()

	fake := backendtest.New().
		AddAccount("admin@fitplate.app", config.Password, jwt.MapClaims{"roles": []string{"ROLE_ADMIN"}}, backend.Identity{
			Id:       "u-1",
			FullName: "Ada Admin",
			Email:    "admin@fitplate.app",
		}).
		AddAccount("user@fitplate.app", config.Password, jwt.MapClaims{"authorities": []string{"ROLE_USER"}}, backend.Identity{
			Id:       "u-2",
			FullName: "Uma User",
			Email:    "user@fitplate.app",
		}).
		AddAccount("guest@fitplate.app", config.Password, jwt.MapClaims{"scope": "read"}, backend.Identity{
			Id:       "u-3",
			FullName: "Gus Guest",
			Email:    "guest@fitplate.app",
		})
	fake.SetPollsUntilPaid(config.PollsUntilPaid)

	addr := fmt.Sprintf("%s:%d", config.BindAddr, config.ListenPort)
	server := &http.Server{Addr: addr, Handler: fake}

	fmt.Printf("Mock backend listening on %s...\n", addr)
	fmt.Printf("Accounts (password %q): admin@fitplate.app, user@fitplate.app, guest@fitplate.app (no role)\n", config.Password)
	var wg errgroup.Group
	wg.Go(server.ListenAndServe)

	select {
	case <-ctx.Done():
		fmt.Printf("Received signal; closing server...\n")
		server.Shutdown(context.Background())
	}

	err = wg.Wait()
	if err == http.ErrServerClosed {
		fmt.Printf("Server closed.\n")
	} else {
		log.Fatalf("error running server: %v", err)
	}
}
