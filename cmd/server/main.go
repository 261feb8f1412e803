package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"battleship/internal/server"
	"battleship/internal/session"
	"battleship/internal/storage"
)

func main() {
	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	dbPath := "battleship.db"
	if p := os.Getenv("DB_PATH"); p != "" {
		dbPath = p
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	mgr := session.NewManager(store)
	if err := mgr.Restore(); err != nil {
		log.Printf("warning: restore games: %v", err)
	}

	// Reap abandoned waiting rooms and old finished games every minute
	go mgr.CleanupLoop(1*time.Minute, 1*time.Hour)

	srv := server.New(mgr)

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server: %v", err)
	}
}
