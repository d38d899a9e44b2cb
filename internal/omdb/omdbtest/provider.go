// Package omdbtest provides an in-process fake of the title-lookup provider.
package omdbtest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Entry is a provider record. Empty fields are omitted from responses.
type Entry struct {
	Title     string `json:"Title"`
	Year      string `json:"Year,omitempty"`
	Director  string `json:"Director,omitempty"`
	Plot      string `json:"Plot,omitempty"`
	BoxOffice string `json:"BoxOffice,omitempty"`
}

// Request records one lookup received by the provider.
type Request struct {
	Title string
	Year  string
}

type lookupResponse struct {
	Entry
	Response string `json:"Response"`
}

type errorResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Provider serves lookups from an in-memory set of entries.
type Provider struct {
	APIKey string

	mu       sync.Mutex
	entries  []Entry
	requests []Request
	status   int
}

// NewProvider returns a provider preloaded with entries.
func NewProvider(apiKey string, entries ...Entry) *Provider {
	return &Provider{APIKey: apiKey, entries: entries}
}

// FailWith makes every subsequent request return status. Zero restores normal service.
func (p *Provider) FailWith(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// Requests returns the lookups received so far, in order.
func (p *Provider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Request, len(p.requests))
	copy(out, p.requests)
	return out
}

// Handler exposes the provider as an HTTP handler rooted at "/".
func (p *Provider) Handler(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw...)
	r.Get("/", p.handleLookup)
	return r
}

func (p *Provider) handleLookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	title := query.Get("t")
	year := query.Get("y")

	p.mu.Lock()
	p.requests = append(p.requests, Request{Title: title, Year: year})
	status := p.status
	p.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if p.APIKey != "" && query.Get("apikey") != p.APIKey {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Response: "False", Error: "Invalid API key!"})
		return
	}
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusOK, errorResponse{Response: "False", Error: "Incorrect IMDb ID."})
		return
	}

	entry, ok := p.find(title, year)
	if !ok {
		writeJSON(w, http.StatusOK, errorResponse{Response: "False", Error: "Movie not found!"})
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Entry: entry, Response: "True"})
}

func (p *Provider) find(title, year string) (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if !strings.EqualFold(e.Title, title) {
			continue
		}
		if year != "" && !strings.HasPrefix(e.Year, year) {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
