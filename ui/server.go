// Package ui serves a completed analysis as JSON and HTML. It is a pure
// consumer of the structured results boundary; nothing here feeds back
// into the pipeline.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"cbctsurvey/domain/stats"
	"cbctsurvey/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"
)

// Server exposes one analysis report over HTTP.
type Server struct {
	router *chi.Mux
	report *stats.AnalysisReport
}

// NewServer creates a server for the given report.
func NewServer(r *stats.AnalysisReport) *Server {
	s := &Server{
		router: chi.NewRouter(),
		report: r,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleHTML)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/report/frequencies", s.handleFrequencies)
		r.Get("/report/associations", s.handleAssociations)
		r.Get("/report/odds-ratios", s.handleOddsRatios)
		r.Get("/report/warnings", s.handleWarnings)
	})
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[Server] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok", "run_id": s.report.RunID.String()})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report)
}

func (s *Server) handleFrequencies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report.Frequencies)
}

func (s *Server) handleAssociations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report.Associations)
}

func (s *Server) handleOddsRatios(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report.OddsRatios)
}

func (s *Server) handleWarnings(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report.Warnings)
}

// handleHTML renders the Markdown report as a standalone HTML page.
func (s *Server) handleHTML(w http.ResponseWriter, _ *http.Request) {
	md := report.Markdown(s.report)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML([]byte(md), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>CBCT Survey Analysis</title></head><body>%s</body></html>", body)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}
