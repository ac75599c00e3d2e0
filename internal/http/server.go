// Package http exposes the JSON API: auth, entry CRUD, dashboard
// aggregates, AI insights and chat, notifications, profile, and report
// downloads. Handlers stay thin and delegate to the domain packages.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetiq/internal/amqp"
	"budgetiq/internal/auth"
	"budgetiq/internal/cache"
	"budgetiq/internal/core"
	"budgetiq/internal/insight"
	"budgetiq/internal/log"
	"budgetiq/internal/mail"
	"budgetiq/internal/middleware/ratelimit"
	"budgetiq/internal/report"
	"budgetiq/internal/storage"
)

// Store is the persistence surface the handlers need. *storage.SQLiteRepository
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	MarkUserVerified(ctx context.Context, id int64) error
	UpdateUserProfile(ctx context.Context, id int64, name, email string) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUserAvatar(ctx context.Context, id int64, avatarPath string) error

	CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error)
	ListIncomes(ctx context.Context, userID int64) ([]core.IncomeEntry, error)
	ListIncomesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.IncomeEntry, error)
	DeleteIncome(ctx context.Context, userID, id int64) error
	TotalIncomeCents(ctx context.Context, userID int64) (int64, error)
	CountIncomes(ctx context.Context, userID int64) (int64, error)
	SumIncomeCents(ctx context.Context, userID int64, start, end time.Time) (int64, error)

	CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error)
	ListExpenses(ctx context.Context, userID int64, offset, limit int) ([]core.ExpenseEntry, error)
	ListExpensesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.ExpenseEntry, error)
	DeleteExpense(ctx context.Context, userID, id int64) error
	TotalExpenseCents(ctx context.Context, userID int64) (int64, error)
	CountExpenses(ctx context.Context, userID int64) (int64, error)
	SumExpenseCents(ctx context.Context, userID int64, start, end time.Time) (int64, error)

	ListNotifications(ctx context.Context, userID int64, limit int) ([]core.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
}

var _ Store = (*storage.SQLiteRepository)(nil)

// Options carries the request-independent configuration for NewServer.
type Options struct {
	Addr           string
	FrontendURL    string
	BackendURL     string
	UploadDir      string
	MaxAvatarBytes int64

	// Events is optional; entry mutations are published when set.
	Events *amqp.Client

	// Sheets is optional; /api/reports/sheets answers 503 when nil.
	Sheets *report.SheetsExporter

	RateLimitPerMinute int
}

type Server struct {
	http.Server

	store     Store
	tokens    *auth.TokenManager
	agg       *insight.Aggregator
	responder *insight.Responder
	mailer    *mail.Sender
	events    *amqp.Client
	sheets    *report.SheetsExporter
	limiter   *ratelimit.Limiter
	logger    *log.Logger

	frontendURL    string
	backendURL     string
	uploadDir      string
	maxAvatarBytes int64

	summaryCache *cache.TTLCache[summaryView]
	chartCache   *cache.TTLCache[[]chartPoint]

	cancelJanitor context.CancelFunc
	shutdownOnce  sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, store Store, tokens *auth.TokenManager, agg *insight.Aggregator, responder *insight.Responder, mailer *mail.Sender, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	janitorCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:          store,
		tokens:         tokens,
		agg:            agg,
		responder:      responder,
		mailer:         mailer,
		events:         opts.Events,
		sheets:         opts.Sheets,
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute}),
		logger:         logger.WithComponent(log.ComponentHTTP),
		frontendURL:    opts.FrontendURL,
		backendURL:     opts.BackendURL,
		uploadDir:      opts.UploadDir,
		maxAvatarBytes: opts.MaxAvatarBytes,
		summaryCache:   cache.New[summaryView](500, 2*time.Minute),
		chartCache:     cache.New[[]chartPoint](1000, 2*time.Minute),
		cancelJanitor:  cancel,
	}

	s.summaryCache.StartJanitor(janitorCtx, 10*time.Minute)
	s.chartCache.StartJanitor(janitorCtx, 10*time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /", s.handleRoot)

	// Avatars uploaded via the profile endpoints.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir)))
	mux.Handle("GET /uploads/", uploads)

	public := s.withRequest
	protected := func(h http.HandlerFunc) http.HandlerFunc { return s.withRequest(s.requireUser(h)) }

	mux.HandleFunc("POST /api/auth/signup", public(s.handleSignup))
	mux.HandleFunc("GET /api/auth/verify-email", public(s.handleVerifyEmail))
	mux.HandleFunc("POST /api/auth/login", public(s.handleLogin))
	mux.HandleFunc("POST /api/auth/forgot-password", public(s.handleForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", public(s.handleResetPassword))

	mux.HandleFunc("GET /api/income", protected(s.handleListIncomes))
	mux.HandleFunc("POST /api/income", protected(s.handleCreateIncome))
	mux.HandleFunc("DELETE /api/income/{id}", protected(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/expenses", protected(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", protected(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", protected(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/dashboard/summary", protected(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/chart-data", protected(s.handleChartData))

	mux.HandleFunc("GET /api/ai/insights", protected(s.handleInsights))
	mux.HandleFunc("POST /api/ai/chat", protected(s.handleChat))

	mux.HandleFunc("GET /api/notifications", protected(s.handleListNotifications))
	mux.HandleFunc("PUT /api/notifications/read-all", protected(s.handleMarkAllNotificationsRead))
	mux.HandleFunc("PUT /api/notifications/{id}/read", protected(s.handleMarkNotificationRead))

	mux.HandleFunc("GET /api/profile", protected(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", protected(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/profile/avatar", protected(s.handleUploadAvatar))

	mux.HandleFunc("GET /api/reports/pdf", protected(s.handleReportPDF))
	mux.HandleFunc("GET /api/reports/excel", protected(s.handleReportExcel))
	mux.HandleFunc("GET /api/reports/sheets", protected(s.handleReportSheets))

	return s
}

// Shutdown stops the background cleanup goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cancelJanitor()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     "BudgetIQ API",
		"version": "1.0.0",
	})
}

// invalidateDashboard drops every cached dashboard view for the user.
func (s *Server) invalidateDashboard(userID int64) {
	key := dashboardKey(userID)
	s.summaryCache.Invalidate(key)
	s.chartCache.InvalidatePrefix(key + ":")
}
