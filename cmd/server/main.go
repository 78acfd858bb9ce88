package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jasminevsadler/Ramp-Tracker/internal/api"
	dbstore "github.com/jasminevsadler/Ramp-Tracker/internal/db"
	"github.com/jasminevsadler/Ramp-Tracker/internal/middleware"
	"github.com/jasminevsadler/Ramp-Tracker/internal/utils"
)

func main() {
	addr := utils.SafeEnv("RAMP_ADDR", ":8080")
	snapshotPath := utils.SafeEnv("RAMP_DB_PATH", "data/ramp-it-up-tracker.json")
	sqlitePath := os.Getenv("RAMP_SQLITE_PATH")
	migrationsDir := os.Getenv("RAMP_MIGRATIONS_DIR")
	requireAuth := os.Getenv("RAMP_REQUIRE_AUTH") == "1"
	commit := os.Getenv("RAMP_COMMIT")
	buildTime := os.Getenv("RAMP_BUILD_TIME")

	store, err := openStore(snapshotPath, sqlitePath, migrationsDir)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store, requireAuth).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "RaMP it Up! Data Tracker API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Serve the PWA bundle when a static dir is configured (fullstack image).
	if staticDir := os.Getenv("RAMP_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.WithAuth(mux))

	log.Printf("tracker server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore picks the backing store. With RAMP_SQLITE_PATH set the server
// runs on SQLite, migrating a legacy JSON snapshot on first run; otherwise
// the JSON snapshot store is used directly.
func openStore(snapshotPath, sqlitePath, migrationsDir string) (api.Store, error) {
	if sqlitePath == "" {
		return api.NewSnapshotStore(snapshotPath), nil
	}

	if err := MigrateIfNeeded(snapshotPath, sqlitePath, migrationsDir); err != nil {
		return nil, fmt.Errorf("snapshot migration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	st, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	if err := st.SeedIfEmpty(); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return st, nil
}
