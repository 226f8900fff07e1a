package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/api/handlers"
	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/gcsuploader"
	"github.com/moneyapps/ledger/internal/importer"
	infraBQ "github.com/moneyapps/ledger/internal/infra/bigquery"
	"github.com/moneyapps/ledger/internal/infra/sqlite"
	"github.com/moneyapps/ledger/internal/jobs"
	"github.com/moneyapps/ledger/internal/jobs/inmemory"
	"github.com/moneyapps/ledger/internal/ledger"
	"github.com/moneyapps/ledger/internal/logger"
)

// stores bundles the persistence implementations behind the services, so the
// BigQuery and SQLite backends can be swapped with one flag.
type stores struct {
	accounts ledger.AccountStore
	txs      ledger.TransactionStore
	users    auth.UserStore
	runs     importer.RunStore
	close    func() error
}

func main() {
	// Parse command-line flags
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		bucket  = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name for statement uploads (or set GCS_BUCKET env)")
		project = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project for BigQuery storage (or set GCP_PROJECT env)")
		dataset = flag.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset name (or set BQ_DATASET env)")
		dbPath  = flag.String("db", os.Getenv("LEDGER_DB"), "SQLite database path; when set, SQLite is used instead of BigQuery")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - statement uploads will be disabled")
	}

	ctx := context.Background()

	st, err := openStores(ctx, *dbPath, *project, *dataset, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer st.close()

	// Core services
	converter := currency.NewConverter()
	ledgerSvc := ledger.NewService(st.accounts, st.txs, converter, log)
	authSvc := auth.NewService(st.users, log)

	storage := gcsuploader.NewGCSStorageService()
	imp := importer.New(ledgerSvc, st.runs, storage, converter, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Int64("account_id", importJob.AccountID).
			Str("gcs_uri", importJob.GCSURI).
			Msg("Processing import job")

		result, err := imp.ImportFromGCS(ctx, importJob.UserID, importJob.AccountID, importJob.GCSURI, importJob.StatementYear)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", importJob.JobID).
				Msg("Statement import failed")
			return err
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("document_id", result.DocumentID).
			Int("imported", result.Imported).
			Int("skipped", result.Skipped).
			Msg("Statement import completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, log)
	accountsHandler := handlers.NewAccountsHandler(ledgerSvc, log)
	transactionsHandler := handlers.NewTransactionsHandler(ledgerSvc, log)
	reportsHandler := handlers.NewReportsHandler(ledgerSvc, log)
	ratesHandler := handlers.NewRatesHandler(converter, log)
	importsHandler := handlers.NewImportsHandler(jobQueue, *bucket, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Auth endpoints
	mux.HandleFunc("/api/auth/register", post(authHandler.Register))
	mux.HandleFunc("/api/auth/login", post(authHandler.Login))
	mux.HandleFunc("/api/auth/password", post(authHandler.ChangePassword))

	// Account endpoints
	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			accountsHandler.Create(w, r)
		case http.MethodGet:
			accountsHandler.List(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
		idStr, tail, _ := strings.Cut(rest, "/")
		accountID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid account ID")
			return
		}
		switch tail {
		case "":
			accountsHandler.Get(w, r, accountID)
		case "transactions":
			accountsHandler.Transactions(w, r, accountID)
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	// Transaction endpoints
	mux.HandleFunc("/api/transactions", post(transactionsHandler.Create))

	// Report endpoints
	mux.HandleFunc("/api/reports/metrics", get(reportsHandler.Metrics))
	mux.HandleFunc("/api/reports/breakdown", get(reportsHandler.Breakdown))
	mux.HandleFunc("/api/reports/networth", get(reportsHandler.NetWorth))
	mux.HandleFunc("/api/reports/recommendation", get(reportsHandler.Recommendation))

	// Exchange-rate endpoints
	mux.HandleFunc("/api/rates", get(ratesHandler.List))
	mux.HandleFunc("/api/rates/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		code := strings.TrimPrefix(r.URL.Path, "/api/rates/")
		if code == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Currency code is required")
			return
		}
		ratesHandler.Update(w, r, code)
	})

	// Import endpoints
	mux.HandleFunc("/api/imports", post(importsHandler.EnqueueImport))
	mux.HandleFunc("/api/imports/upload-url", post(importsHandler.CreateUploadURL))
	mux.HandleFunc("/api/imports/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			importsHandler.UploadStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", get(jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

// openStores picks the storage backend: SQLite when a database path is
// given, BigQuery otherwise.
func openStores(ctx context.Context, dbPath, project, dataset string, log zerolog.Logger) (*stores, error) {
	if dbPath != "" {
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("db", dbPath).Msg("Using SQLite storage")
		return &stores{
			accounts: sqlite.NewAccountStore(db),
			txs:      sqlite.NewTransactionStore(db),
			users:    sqlite.NewUserStore(db),
			runs:     sqlite.NewRunStore(db, log),
			close:    db.Close,
		}, nil
	}

	if project == "" {
		return nil, fmt.Errorf("either -db or -project is required")
	}
	client, err := infraBQ.NewClient(ctx, project, dataset)
	if err != nil {
		return nil, err
	}
	log.Info().Str("project", project).Str("dataset", dataset).Msg("Using BigQuery storage")
	return &stores{
		accounts: infraBQ.NewAccountStore(client),
		txs:      infraBQ.NewTransactionStore(client),
		users:    infraBQ.NewUserStore(client),
		runs:     infraBQ.NewRunStore(client, log),
		close:    client.Close,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// get and post wrap a handler with a method check.
func get(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodGet, h)
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodPost, h)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
