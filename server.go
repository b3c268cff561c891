package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
)

// Server exposes one gallery session over HTTP.
type Server struct {
	gallery    *Gallery
	observer   *ViewportObserver
	prettyJson bool
	log        *log.Logger
}

func NewServer(gallery *Gallery, observer *ViewportObserver, prettyJson bool) *Server {
	return &Server{
		gallery:    gallery,
		observer:   observer,
		prettyJson: prettyJson,
		log:        log.New(os.Stderr, "(http) ", log.LstdFlags),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	})
	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		s.writeState(w, r)
	})
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		if err := s.gallery.Submit(); err != nil {
			s.log.Println("Submit failed:", err.Error())
		}
		s.writeState(w, r)
	})
	mux.HandleFunc("POST /scroll", s.handleScroll)
	return mux
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, hasQ := r.URL.Query()["q"]
	if !hasQ {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Query Search Parameter ?q= missing")
		return
	}
	s.gallery.SetQuery(q[0])
	s.writeState(w, r)
}

// handleScroll reports a new viewport position. ?end=1 jumps to the bottom
// of the current list.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	if s.observer == nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, "Scrolling is disabled")
		return
	}
	params := r.URL.Query()
	offset := 0
	switch {
	case params.Get("end") != "":
		offset = s.observer.Bottom(len(s.gallery.State().Results))
	case params.Has("offset"):
		n, err := strconv.Atoi(params.Get("offset"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Invalid offset %q", params.Get("offset"))
			return
		}
		offset = n
	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Scroll parameter ?offset= or ?end=1 missing")
		return
	}
	s.observer.Scroll(offset)
	s.writeState(w, r)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	enc := json.NewEncoder(body)
	indent := ""
	if s.prettyJson {
		indent = "  "
	}
	enc.SetIndent("", indent)
	if err := enc.Encode(s.gallery.State()); err != nil {
		s.log.Println("Failed to encode state:", err.Error())
	}
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		s.log.Println("Starting Server on", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
