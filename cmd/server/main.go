package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"faturas/internal/auth"
	"faturas/internal/config"
	"faturas/internal/filestore"
	"faturas/internal/handlers"
	"faturas/internal/jobs"
	"faturas/internal/logger"
	"faturas/internal/parser"
	"faturas/internal/store"
	"faturas/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("Faturas %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	// Initialize logger first
	logger.Init()
	log := logger.Default()

	// Optional config file; defaults apply when absent
	cfg := config.Default()
	if path := os.Getenv("FATURAS_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Error("config_load_failed", "path", path, "error", err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}

	dbPath := os.Getenv("FATURAS_DB_PATH")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	// Open database
	db, err := store.Open(dbPath)
	if err != nil {
		log.Error("database_open_failed", "path", dbPath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	// Initialize schema
	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	// Initialize auth
	a := auth.New(db.DB)

	// Clean expired sessions on startup
	a.CleanExpiredSessions()

	// Initialize filestore (in data/uploads directory alongside database)
	uploadsPath := filepath.Join(filepath.Dir(dbPath), "uploads")
	files, err := filestore.New(uploadsPath)
	if err != nil {
		log.Error("filestore_init_failed", "path", uploadsPath, "error", err.Error())
		os.Exit(1)
	}

	parserOpts := parser.Options{
		Rules:           cfg.Rules(),
		DefaultCategory: cfg.DefaultCategory,
	}

	// Initialize and start job worker
	worker := jobs.NewWorker(db, log)
	worker.Register("import_statement", jobs.ImportStatementHandler(files, parserOpts))
	worker.Start()
	defer worker.Stop()

	// Initialize handlers
	h := handlers.New(db, a, files, parserOpts)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes (no auth required)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)

	// Statement analysis
	mux.HandleFunc("POST /api/analyze", h.Analyze)
	mux.HandleFunc("POST /api/comparison", h.CompareUploads)
	mux.HandleFunc("GET /api/comparison", h.Comparison)

	// Transactions
	mux.HandleFunc("GET /api/transactions", h.TransactionsList)
	mux.HandleFunc("POST /api/transactions/{hash}/category", h.TransactionUpdateCategory)
	mux.HandleFunc("DELETE /api/transactions/{hash}", h.TransactionDelete)
	mux.HandleFunc("DELETE /api/transactions", h.TransactionsPurge)

	// Exports
	mux.HandleFunc("GET /api/export/comparison.xlsx", h.ExportComparisonXLSX)
	mux.HandleFunc("GET /api/export/transactions.csv", h.ExportTransactionsCSV)

	// Background imports
	mux.HandleFunc("POST /api/import", h.ImportEnqueue)
	mux.HandleFunc("GET /api/imports", h.ImportsList)
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)

	// Metadata
	mux.HandleFunc("GET /api/issuers", h.Issuers)
	mux.HandleFunc("GET /api/version", h.APIVersion)

	// Wrap with middleware: logging -> auth -> mux
	handler := logger.HTTPMiddleware(a.Middleware(mux))

	log.Info("server_starting", "port", port, "address", "http://localhost:"+port, "version", version.Version)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
