package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/simonvc/simplebalance/internal/book"
)

type Server struct {
	book     *book.Book
	router   chi.Router
	addr     string
	log      *slog.Logger
	validate *validator.Validate
}

func New(b *book.Book, addr string, log *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	s := &Server{
		book:     b,
		router:   r,
		addr:     addr,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts/default", s.getDefaultAccount)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}", s.editAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)
		r.Get("/accounts/{id}/days", s.listDays)

		// Transactions
		r.Get("/accounts/{id}/transactions", s.listTransactions)
		r.Post("/accounts/{id}/transactions", s.createTransaction)
		r.Get("/accounts/{id}/transactions/{txnID}", s.getTransaction)
		r.Put("/accounts/{id}/transactions/{txnID}", s.editTransaction)
		r.Delete("/accounts/{id}/transactions/{txnID}", s.deleteTransaction)
		r.Post("/accounts/{id}/transactions/{txnID}/copy", s.copyTransaction)
	})

	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("simplebalance server listening", slog.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "accounts": len(s.book.Snapshot().Accounts)}
	if err := s.book.LastSaveError(); err != nil {
		status["status"] = "degraded"
		status["saveError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}
