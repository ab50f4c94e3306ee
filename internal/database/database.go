package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in shred_events
const (
	ActionShred  = "SHRED"
	ActionDryRun = "DRY_RUN"
	ActionError  = "ERROR"
)

// ShredDB manages the SQLite database for shred history
type ShredDB struct {
	db *sql.DB
}

// ShredRecord represents a single shredded (or attempted) filesystem node
type ShredRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	ObjectType   string // file, directory or special
	Size         int64
	Iterations   uint
	FillType     string
	Passes       uint // Overwrite passes actually completed
	ErrorMessage string
	CreatedAt    time.Time
}

// NewShredDB opens (creating if needed) the history database and initializes schema
func NewShredDB(dbPath string) (*ShredDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exec instead of Ping so the file is created up front
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	sdb := &ShredDB{db: db}
	if err = sdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return sdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *ShredDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shred_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		fill_type TEXT NOT NULL,
		passes INTEGER NOT NULL,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON shred_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON shred_events(action);
	CREATE INDEX IF NOT EXISTS idx_path ON shred_events(path);
	CREATE INDEX IF NOT EXISTS idx_fill_type ON shred_events(fill_type);
	CREATE INDEX IF NOT EXISTS idx_size ON shred_events(size);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordEvent inserts a shred event. A zero Timestamp is stamped with time.Now().
func (d *ShredDB) RecordEvent(rec ShredRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.FileName == "" {
		rec.FileName = filepath.Base(rec.Path)
	}

	query := `
	INSERT INTO shred_events (
		timestamp, action, path, file_name, object_type, size,
		iterations, fill_type, passes, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errMsg *string
	if rec.ErrorMessage != "" {
		errMsg = &rec.ErrorMessage
	}

	_, err := d.db.Exec(
		query,
		rec.Timestamp,
		rec.Action,
		rec.Path,
		rec.FileName,
		rec.ObjectType,
		rec.Size,
		int64(rec.Iterations),
		rec.FillType,
		int64(rec.Passes),
		errMsg,
	)
	return err
}

// Close closes the database connection
func (d *ShredDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run after pruning)
func (d *ShredDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}

// DatabaseStats describes the history database itself
type DatabaseStats struct {
	TotalRecords int64
	SizeBytes    int64
}

// GetDatabaseStats returns record count and on-disk size
func (d *ShredDB) GetDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	if err := d.db.QueryRow("SELECT COUNT(*) FROM shred_events").Scan(&stats.TotalRecords); err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	if err := d.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	stats.SizeBytes = pageCount * pageSize

	return stats, nil
}
