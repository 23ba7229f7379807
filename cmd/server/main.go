package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flatsql/flatsql"
	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 7543, "TCP port to listen on")
	dir := flag.String("dir", "", "Storage directory (memory if empty)")
	track := flag.Bool("track", false, "Record every change as a git commit")
	jwtSecret := flag.String("jwtSecret", "", "Require JWT authentication with this HS256 secret")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("FlatSQL Server v%s\n", Version)
		return
	}

	var store *ps.Store
	if *dir == "" {
		log.Println("Using in-memory store")
		store = ps.NewMemoryStore()
	} else {
		log.Printf("Using file store: %s", *dir)
		var err error
		store, err = ps.NewFileStore(*dir)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
	}

	if *track {
		identity := core.Identity{Name: "FlatSQL Server", Email: "server@flatsql.local"}
		if err := store.Track(identity); err != nil {
			log.Fatalf("Failed to enable tracking: %v", err)
		}
	}

	var auth *AuthConfig
	if *jwtSecret != "" {
		auth = &AuthConfig{JWTSecret: *jwtSecret}
	}

	server := NewServer(flatsql.Open(store), auth)
	if err := server.Start(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Printf("FlatSQL Server v%s listening on port %d\n", Version, *port)
	fmt.Println("Send SQL queries (one per line), 'quit' to disconnect")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
