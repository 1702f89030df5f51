// Package api exposes the ledger over a small JSON HTTP API. Read routes are
// public; mutating routes and the location listing require the shared admin
// secret in the X-Admin-Secret header.
package api

import (
	"crypto/subtle"
	"io"
	"net/http"
	"time"

	"fjacquet/divledger/internal/ledger"
	"fjacquet/divledger/internal/logging"

	"github.com/gorilla/mux"
)

// AdminSecretHeader carries the shared admin secret.
const AdminSecretHeader = "X-Admin-Secret"

// Receipts stores uploaded receipt files.
type Receipts interface {
	Save(name string, r io.Reader) (string, error)
	Remove(path string) error
}

// Options tunes the server.
type Options struct {
	AdminSecret    string
	MaxUploadBytes int64
}

// Server represents the API server
type Server struct {
	ledger   *ledger.Ledger
	receipts Receipts
	opts     Options
	router   *mux.Router
	logger   logging.Logger
}

// NewServer creates a new API server. receipts may be nil, in which case
// expense submissions with a file are refused.
func NewServer(l *ledger.Ledger, receipts Receipts, opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	s := &Server{
		ledger:   l,
		receipts: receipts,
		opts:     opts,
		router:   mux.NewRouter(),
		logger:   logger.WithField("component", "api"),
	}
	if opts.AdminSecret == "" {
		s.logger.Warn("No admin secret configured, admin routes are disabled")
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.router.Use(s.logRequests)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "no such route")
	})

	api := s.router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", s.Health).Methods("GET")
	api.HandleFunc("/financials", s.GetFinancials).Methods("GET")
	api.HandleFunc("/divisions", s.GetDivisions).Methods("GET")
	api.HandleFunc("/divisions/summary", s.GetDivisionSummary).Methods("GET")
	api.HandleFunc("/divisions/{name}/balance", s.GetDivisionBalance).Methods("GET")
	api.HandleFunc("/divisions/{name}/stats", s.GetDivisionStats).Methods("GET")
	api.HandleFunc("/divisions/{name}/transactions", s.GetDivisionTransactions).Methods("GET")
	api.HandleFunc("/transactions", s.GetTransactions).Methods("GET")
	api.HandleFunc("/transactions/recent", s.GetRecentTransactions).Methods("GET")
	api.HandleFunc("/timeline", s.GetTimeline).Methods("GET")
	api.HandleFunc("/top-spenders", s.GetTopSpenders).Methods("GET")
	api.HandleFunc("/spending", s.GetSpendingByDivision).Methods("GET")
	api.HandleFunc("/expenses", s.SubmitExpense).Methods("POST")

	// Admin routes
	admin := api.PathPrefix("").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/transactions", s.AddTransaction).Methods("POST")
	admin.HandleFunc("/transactions/{id}", s.GetTransaction).Methods("GET")
	admin.HandleFunc("/transactions/{id}", s.UpdateTransaction).Methods("PUT")
	admin.HandleFunc("/transactions/{id}", s.DeleteTransaction).Methods("DELETE")
	admin.HandleFunc("/divisions", s.AddDivision).Methods("POST")
	admin.HandleFunc("/divisions/{name}", s.UpdateDivision).Methods("PUT")
	admin.HandleFunc("/divisions/{name}", s.DeleteDivision).Methods("DELETE")
	admin.HandleFunc("/locations", s.GetLocations).Methods("GET")
	admin.HandleFunc("/locations/clusters", s.GetLocationClusters).Methods("GET")
	admin.HandleFunc("/locations/divisions", s.GetLocatedDivisionCounts).Methods("GET")
	admin.HandleFunc("/locations/daily", s.GetLocatedDailyCounts).Methods("GET")
}

// Handler returns the HTTP handler for the API server
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string, readTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      readTimeout,
	}
}

// requireAdmin lets the request through only when X-Admin-Secret matches the
// configured secret. Admin status is never remembered between requests.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminSecret == "" {
			writeJSONError(w, http.StatusForbidden, "admin_disabled", "admin access is not configured")
			return
		}
		given := r.Header.Get(AdminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.opts.AdminSecret)) != 1 {
			s.logger.Warn("Admin request rejected",
				logging.F(logging.FieldMethod, r.Method),
				logging.F(logging.FieldPath, r.URL.Path),
				logging.F(logging.FieldRemoteAddr, r.RemoteAddr))
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request served",
			logging.F(logging.FieldMethod, r.Method),
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldStatus, rec.status),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	})
}
