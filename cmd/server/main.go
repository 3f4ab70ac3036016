package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/drips-network/multiplayer/internal/adapters/auth/ethereum"
	"github.com/drips-network/multiplayer/internal/adapters/graphql"
	"github.com/drips-network/multiplayer/internal/adapters/handler/http"
	"github.com/drips-network/multiplayer/internal/adapters/receivers"
	"github.com/drips-network/multiplayer/internal/adapters/repository/postgres"
	"github.com/drips-network/multiplayer/internal/adapters/safe"
	"github.com/drips-network/multiplayer/internal/core/ports"
	"github.com/drips-network/multiplayer/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	clock := ports.SystemClock{}
	ownership := graphql.NewOwnershipClient(os.Getenv("DRIPS_GRAPHQL_URL"), os.Getenv("DRIPS_GRAPHQL_API_KEY"))
	auth := ethereum.NewVerifier(ownership.OwnerOf, clock)
	safeService := safe.NewClient()
	resolver := receivers.NewResolver()
	repo := postgres.NewVotingRoundRepository(db)

	roundService := services.NewVotingRoundService(repo, auth, safeService, resolver, clock)
	voteService := services.NewVoteService(repo, auth, resolver, clock)
	nominationService := services.NewNominationService(repo, auth, resolver, clock)

	handler := http.NewHandler(
		http.NewVotingRoundHandler(roundService),
		http.NewVoteHandler(voteService),
		http.NewNominationHandler(nominationService),
	)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	server := &stdhttp.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
