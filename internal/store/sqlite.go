package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/recon-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode so concurrent invoice runs can append without stepping on reads.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS results (
	id          TEXT PRIMARY KEY,
	source_file TEXT NOT NULL UNIQUE,
	invoice_id  TEXT NOT NULL,
	supplier    TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	record      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_results_action ON results(action);
CREATE INDEX IF NOT EXISTS idx_results_supplier ON results(supplier);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, record model.ReconRecord) (string, error) {
	id := uuid.New().String()

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id, source_file, invoice_id, supplier, action, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		record.SourceFile,
		record.InvoiceID,
		record.ProcessingResults.ExtractedData.Supplier,
		string(record.ProcessingResults.RecommendedAction),
		string(recordJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert result %s", record.SourceFile)
	}
	return id, nil
}

func (s *SQLiteStore) HasProcessed(ctx context.Context, sourceFile string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results WHERE source_file = ?`, sourceFile,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check processed %s", sourceFile)
	}
	return count > 0, nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*StoredRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, record, created_at FROM results WHERE id = ?`, id,
	)

	var sr StoredRecord
	var recordJSON string
	if err := row.Scan(&sr.ID, &recordJSON, &sr.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Errorf("sqlite: result %s not found", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get result %s", id)
	}
	if err := json.Unmarshal([]byte(recordJSON), &sr.Record); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal result %s", id)
	}
	return &sr, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter Filter) ([]StoredRecord, error) {
	query := `SELECT id, record, created_at FROM results WHERE 1=1`
	var args []any

	if filter.Action != "" {
		query += ` AND action = ?`
		args = append(args, string(filter.Action))
	}
	if filter.Supplier != "" {
		query += ` AND supplier = ?`
		args = append(args, filter.Supplier)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		var sr StoredRecord
		var recordJSON string
		if err := rows.Scan(&sr.ID, &recordJSON, &sr.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		if err := json.Unmarshal([]byte(recordJSON), &sr.Record); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal result %s", sr.ID)
		}
		records = append(records, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: rows iteration")
	}
	return records, nil
}

func (s *SQLiteStore) Summarize(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		ByAction:            make(map[string]int),
		DiscrepanciesByType: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT action, COUNT(1) FROM results GROUP BY action`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: summarize actions")
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan action count")
		}
		summary.ByAction[action] = count
		summary.TotalRuns += count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: rows iteration")
	}

	// Discrepancy types and average confidence live inside the record JSON.
	records, err := s.ListRecords(ctx, Filter{Limit: 10000})
	if err != nil {
		return nil, err
	}
	var confSum float64
	for _, sr := range records {
		confSum += sr.Record.ProcessingResults.ExtractionConfidence
		for _, d := range sr.Record.ProcessingResults.Discrepancies {
			summary.DiscrepanciesByType[string(d.Type)]++
		}
	}
	if len(records) > 0 {
		summary.AvgExtractionConfidence = confSum / float64(len(records))
	}

	return summary, nil
}
