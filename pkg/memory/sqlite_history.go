package memory

import (
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteHistory implements History backed by SQLite, for callers who want the
// exchange log to survive a restart. The orchestration core itself defaults to
// BoundedHistory; this variant is opt-in.
//
// AUTOINCREMENT keeps sequence numbers monotonic across eviction and Clear,
// matching the in-memory store's contract.
type SQLiteHistory struct {
	db       *sql.DB
	mu       sync.RWMutex
	capacity int

	initialized sync.Once
}

// NewSQLiteHistory opens (or creates) a history database at path. If path is
// ":memory:", the database lives in-memory. Non-positive capacities fall back
// to DefaultCapacity.
func NewSQLiteHistory(path string, capacity int) (*SQLiteHistory, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open history database"),
			errors.Fields{"path": path},
		)
	}

	h := &SQLiteHistory{
		db:       db,
		capacity: capacity,
	}
	if err := h.ensureInitialized(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SQLiteHistory) ensureInitialized() error {
	var initErr error
	h.initialized.Do(func() {
		query := `
        CREATE TABLE IF NOT EXISTS history (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            request TEXT NOT NULL,
            result TEXT NOT NULL,
            at DATETIME DEFAULT CURRENT_TIMESTAMP
        );
        `
		if _, err := h.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.Unknown, "failed to initialize history table")
		}
	})
	return initErr
}

func (h *SQLiteHistory) Append(req core.Request, res core.Result) (uint64, error) {
	if err := h.ensureInitialized(); err != nil {
		return 0, err
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to marshal request")
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to marshal result")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert, err := tx.Exec("INSERT INTO history (request, result) VALUES (?, ?)", string(reqJSON), string(resJSON))
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to append history entry")
	}
	seq, err := insert.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to read new sequence number")
	}

	// FIFO eviction beyond capacity
	_, err = tx.Exec(`
    DELETE FROM history WHERE seq NOT IN (
        SELECT seq FROM history ORDER BY seq DESC LIMIT ?
    )`, h.capacity)
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to evict old history entries")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to commit history append")
	}

	return uint64(seq), nil
}

func (h *SQLiteHistory) Recent(n int) ([]Entry, error) {
	if err := h.ensureInitialized(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Entry{}, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(`
    SELECT seq, request, result, at FROM (
        SELECT seq, request, result, at FROM history ORDER BY seq DESC LIMIT ?
    ) ORDER BY seq ASC`, n)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry            Entry
			reqJSON, resJSON string
		)
		if err := rows.Scan(&entry.Seq, &reqJSON, &resJSON, &entry.At); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan history row")
		}
		if err := json.Unmarshal([]byte(reqJSON), &entry.Request); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to unmarshal stored request")
		}
		if err := json.Unmarshal([]byte(resJSON), &entry.Result); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to unmarshal stored result")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "error iterating history rows")
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (h *SQLiteHistory) Len() (int, error) {
	if err := h.ensureInitialized(); err != nil {
		return 0, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	var count int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to count history entries")
	}
	return count, nil
}

func (h *SQLiteHistory) Clear() error {
	if err := h.ensureInitialized(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	// sqlite_sequence is left alone so AUTOINCREMENT keeps numbering forward
	if _, err := h.db.Exec("DELETE FROM history"); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to clear history")
	}
	return nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close history database")
	}
	return nil
}

var _ History = (*SQLiteHistory)(nil)
