// Package api serves the sales statistics HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"flowershop/internal/models"
	"flowershop/internal/report"
)

type statsStore interface {
	ListOrders(ctx context.Context, status string) ([]models.OrderInfo, error)
	PingContext(ctx context.Context) error
}

// Server exposes sales statistics over HTTP. Requests must carry the
// configured key in the X-API-Key header; an empty key disables auth.
type Server struct {
	store  statsStore
	logger *zerolog.Logger
	apiKey string
}

// NewServer creates a statistics server.
func NewServer(store statsStore, logger *zerolog.Logger, apiKey string) *Server {
	return &Server{store: store, logger: logger, apiKey: apiKey}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/statistics", s.withAuth(s.handleStatistics))
	mux.HandleFunc("/api/v1/statistics/export", s.withAuth(s.handleExport))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", port).Msg("statistics API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// orderStatus pulls the optional ?status= filter from the request.
// The bool is false when the value is not a declared order status.
func orderStatus(r *http.Request) (string, bool) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidOrderStatus(status) {
		return "", false
	}
	return status, true
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	status, ok := orderStatus(r)
	if !ok {
		http.Error(w, `{"error":"unknown status"}`, http.StatusBadRequest)
		return
	}

	orders, err := s.store.ListOrders(r.Context(), status)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing orders for statistics")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.OrderInfo{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"count":  len(orders),
		"orders": orders,
	}); err != nil {
		s.logger.Error().Err(err).Msg("encoding statistics response")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	status, ok := orderStatus(r)
	if !ok {
		http.Error(w, `{"error":"unknown status"}`, http.StatusBadRequest)
		return
	}

	orders, err := s.store.ListOrders(r.Context(), status)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing orders for export")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WriteSalesReport(w, orders); err != nil {
		s.logger.Error().Err(err).Msg("writing sales report")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ready")
}
