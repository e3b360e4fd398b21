//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"volition/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGraphSpec(ctx context.Context, spec model.GraphSpec) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGraphSpec(spec)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO graph_specs (id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, spec.ID, spec.SchemaVersion, spec.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetGraphSpec(ctx context.Context, id string) (model.GraphSpec, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.GraphSpec{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM graph_specs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GraphSpec{}, false, nil
		}
		return model.GraphSpec{}, false, err
	}

	spec, err := DecodeGraphSpec(payload)
	if err != nil {
		return model.GraphSpec{}, false, fmt.Errorf("decode graph spec %s: %w", id, err)
	}
	return spec, true, nil
}

func (s *SQLiteStore) ListGraphSpecs(ctx context.Context) ([]model.GraphSpec, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM graph_specs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []model.GraphSpec
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		spec, err := DecodeGraphSpec(payload)
		if err != nil {
			return nil, fmt.Errorf("decode graph spec %s: %w", id, err)
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func (s *SQLiteStore) AppendDecisions(ctx context.Context, records []model.DecisionRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, record := range records {
		payload, err := EncodeDecisions([]model.DecisionRecord{record})
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO decisions (run_id, tick_id, seq, agent_id, payload)
			VALUES (?, ?, ?, ?, ?)
		`, record.RunID, record.TickID, record.Seq, record.AgentID, payload); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetDecisions(ctx context.Context, runID string) ([]model.DecisionRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM decisions WHERE run_id = ? ORDER BY seq, rowid
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var records []model.DecisionRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		decoded, err := DecodeDecisions(payload)
		if err != nil {
			return nil, false, fmt.Errorf("decode decisions %s: %w", runID, err)
		}
		records = append(records, decoded...)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return records, len(records) > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_specs (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS decisions (
			run_id TEXT NOT NULL,
			tick_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	`)
	return err
}
