package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/movie-etl/internal/omdb/omdbtest"
)

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-omdb.json", "path to mock data file")
		apiKey  = flag.String("apikey", "", "required api key (empty accepts any)")
		logReqs = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var entries []omdbtest.Entry
	if err := json.Unmarshal(file, &entries); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	provider := omdbtest.NewProvider(*apiKey, entries...)
	var mw []func(http.Handler) http.Handler
	if *logReqs {
		mw = append(mw, middleware.Logger)
	}

	addr := ":" + *port
	log.Printf("mock omdb listening on %s with %d entries", addr, len(entries))
	if err := http.ListenAndServe(addr, provider.Handler(mw...)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
