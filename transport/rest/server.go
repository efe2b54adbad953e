package rest

import (
	"fmt"
	"net/http"
	"time"
)

// gameStats reports how many game sessions are currently live.
type gameStats interface {
	GameCount() int
}

func Start(port string, stats gameStats) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/games", gamesHandler(stats))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
