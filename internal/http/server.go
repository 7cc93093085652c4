// Package http exposes the command handlers and render model over a JSON
// API. The server holds no application state of its own; every response
// body is the freshly reconciled render model.
package http

import (
	"net/http"
	"time"

	"budget/internal/clock"
	"budget/internal/commands"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

type Server struct {
	http.Server
	app   *commands.App
	clock clock.Clock
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, app *commands.App, c clock.Clock) *Server {
	s := &Server{
		app:   app,
		clock: c,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleClearExpenses)
	mux.HandleFunc("PUT /api/filter", s.handleChangeFilter)
	mux.HandleFunc("POST /api/warning/dismiss", s.handleDismissWarning)
	mux.HandleFunc("GET /api/clock", s.handleClock)

	traced := trace.NewMiddleware()
	headers := security.Headers(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:           addr,
		Handler:        traced.Middleware(headers(mux)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	return s
}
