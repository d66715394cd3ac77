package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
	"github.com/clearbooks-io/clearbooks/internal/posting"
	"github.com/clearbooks-io/clearbooks/internal/reports"
	"github.com/clearbooks-io/clearbooks/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AccountsHandler  *accounts.Handler
	LedgerHandler    *ledger.Handler
	DocumentsHandler *documents.Handler
	PostingHandler   *posting.Handler
	ReportsHandler   *reports.Handler
	BankFeedHandler  *bankfeed.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
		r.Route("/documents", params.DocumentsHandler.MountRoutes)
		r.Route("/posting", params.PostingHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/bank-feed", params.BankFeedHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
