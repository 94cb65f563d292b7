package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/williambechard/cardmath-backend/internal/game"
	"github.com/williambechard/cardmath-backend/internal/history"
	"github.com/williambechard/cardmath-backend/internal/server"
)

func main() {
	var recorder game.RoundRecorder
	if dsn := os.Getenv("CARDMATH_DB_URL"); dsn != "" {
		store, err := history.NewStore(context.Background(), dsn)
		if err != nil {
			// The archive is optional; the game runs without it.
			log.Printf("[main] round history archive unavailable: %v", err)
		} else {
			defer store.Close()
			recorder = store
			log.Printf("[main] round history archive enabled")
		}
	}

	hub := game.NewHub(clockwork.NewRealClock(), recorder)
	srv := server.NewServer(hub)

	log.Printf("[main] listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[main] server error: %v", err)
	}
}
