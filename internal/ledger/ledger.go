// Package ledger keeps the project's queryable record of materialized
// shuffles in SQLite. The filesystem markers scanned by the shuffle
// registry stay authoritative for allocation; the ledger is the richer
// record (full index assignments, provenance) written at materialization
// time. Single-process use only.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS shuffles (
	train_pct    INTEGER NOT NULL,
	shuffle_idx  INTEGER NOT NULL,
	engine       TEXT NOT NULL,
	n_train      INTEGER NOT NULL,
	n_test       INTEGER NOT NULL,
	n_records    INTEGER NOT NULL,
	split_json   TEXT NOT NULL,
	run_id       TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	PRIMARY KEY (train_pct, shuffle_idx),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	operation    TEXT NOT NULL,
	details_json TEXT,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region ledger-struct

// Ledger manages shuffle metadata in SQLite.
type Ledger struct {
	db *sql.DB
}

// #endregion ledger-struct

// #region constructor

// Open opens (creating if necessary) the ledger database and runs
// migrations.
func Open(dbPath string) (*Ledger, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// #endregion constructor

// #region runs

// BeginRun records a dataset-creation invocation and returns its run id.
func (l *Ledger) BeginRun(operation string, details any) (string, error) {
	id := uuid.New().String()
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("marshal run details: %w", err)
	}
	_, err = l.db.Exec(
		`INSERT INTO runs (run_id, operation, details_json, created_at) VALUES (?, ?, ?, ?)`,
		id, operation, string(detailsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// #endregion runs

// #region record-shuffle

type splitJSON struct {
	Train []int `json:"train"`
	Test  []int `json:"test"`
}

// RecordShuffle persists one materialized shuffle. An existing
// (train_pct, shuffle_idx) row is only replaced when overwrite is set;
// otherwise the insert fails, keeping the frozen split immutable.
func (l *Ledger) RecordShuffle(rec ShuffleRecord, overwrite bool) error {
	assignment, err := json.Marshal(splitJSON{Train: rec.TrainIndices, Test: rec.TestIndices})
	if err != nil {
		return fmt.Errorf("marshal split: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	stmt := `INSERT INTO shuffles (train_pct, shuffle_idx, engine, n_train, n_test, n_records, split_json, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if overwrite {
		stmt += ` ON CONFLICT(train_pct, shuffle_idx) DO UPDATE SET
			engine = excluded.engine,
			n_train = excluded.n_train,
			n_test = excluded.n_test,
			n_records = excluded.n_records,
			split_json = excluded.split_json,
			run_id = excluded.run_id,
			created_at = excluded.created_at`
	}

	_, err = l.db.Exec(stmt,
		rec.TrainPct, rec.Index, rec.Engine,
		len(rec.TrainIndices), len(rec.TestIndices), rec.NumRecords,
		string(assignment), rec.RunID,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record shuffle %dshuffle%d: %w", rec.TrainPct, rec.Index, err)
	}
	return nil
}

// #endregion record-shuffle

// #region get-shuffle

// GetShuffle retrieves a materialized shuffle by its identity.
func (l *Ledger) GetShuffle(trainPct, index int) (ShuffleRecord, error) {
	row := l.db.QueryRow(
		`SELECT train_pct, shuffle_idx, engine, n_records, split_json, run_id, created_at
		 FROM shuffles WHERE train_pct = ? AND shuffle_idx = ?`,
		trainPct, index,
	)
	return scanShuffle(row)
}

// ListShuffles returns every materialized shuffle, ordered by fraction then
// index.
func (l *Ledger) ListShuffles() ([]ShuffleRecord, error) {
	rows, err := l.db.Query(
		`SELECT train_pct, shuffle_idx, engine, n_records, split_json, run_id, created_at
		 FROM shuffles ORDER BY train_pct, shuffle_idx`,
	)
	if err != nil {
		return nil, fmt.Errorf("list shuffles: %w", err)
	}
	defer rows.Close()

	var records []ShuffleRecord
	for rows.Next() {
		rec, err := scanShuffle(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShuffle(row scanner) (ShuffleRecord, error) {
	var rec ShuffleRecord
	var assignment string
	var createdStr string
	err := row.Scan(&rec.TrainPct, &rec.Index, &rec.Engine, &rec.NumRecords,
		&assignment, &rec.RunID, &createdStr)
	if err != nil {
		return ShuffleRecord{}, fmt.Errorf("scan shuffle: %w", err)
	}
	var split splitJSON
	if err := json.Unmarshal([]byte(assignment), &split); err != nil {
		return ShuffleRecord{}, fmt.Errorf("unmarshal split: %w", err)
	}
	rec.TrainIndices, rec.TestIndices = split.Train, split.Test
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-shuffle
