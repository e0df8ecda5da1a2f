package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"marketScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS market_events (
    id               TEXT PRIMARY KEY,
    event_type       TEXT    NOT NULL,
    market_id        INTEGER,
    chain_id         INTEGER NOT NULL,
    contract         TEXT    NOT NULL,
    params           TEXT    NOT NULL,
    block_number     INTEGER NOT NULL,
    block_hash       TEXT    NOT NULL,
    block_timestamp  INTEGER NOT NULL,
    transaction_hash TEXT    NOT NULL,
    log_index        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_market_events_market
    ON market_events (event_type, market_id, block_number, log_index);

CREATE TABLE IF NOT EXISTS indexer_state (
    name       TEXT PRIMARY KEY,
    last_block INTEGER NOT NULL
);
`

// Store keeps event rows in a local SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer avoids SQLITE_BUSY on concurrent batches.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutEventBatch inserts event rows in one transaction, ignoring existing ids.
func (s *Store) PutEventBatch(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO market_events (
			id, event_type, market_id, chain_id, contract, params,
			block_number, block_hash, block_timestamp, transaction_hash, log_index
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		params, err := json.Marshal(r.Params)
		if err != nil {
			return fmt.Errorf("marshal params %s: %w", r.ID, err)
		}
		var marketID sql.NullInt64
		if r.MarketID != nil {
			marketID = sql.NullInt64{Int64: int64(*r.MarketID), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.EventType,
			marketID,
			int64(r.ChainID),
			r.Contract,
			string(params),
			int64(r.BlockNumber),
			r.BlockHash,
			int64(r.BlockTimestamp),
			r.TransactionHash,
			int64(r.LogIndex),
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// EventsByMarket returns the rows of one event type for one market in chain order.
func (s *Store) EventsByMarket(ctx context.Context, eventType string, marketID uint64) ([]model.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, market_id, chain_id, contract, params,
			block_number, block_hash, block_timestamp, transaction_hash, log_index
		FROM market_events
		WHERE event_type = ? AND market_id = ?
		ORDER BY block_number, log_index
	`, eventType, int64(marketID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventRecord
	for rows.Next() {
		var (
			r                            model.EventRecord
			market                       sql.NullInt64
			chainID, block, ts, logIndex int64
			params                       string
		)
		if err := rows.Scan(
			&r.ID, &r.EventType, &market, &chainID, &r.Contract, &params,
			&block, &r.BlockHash, &ts, &r.TransactionHash, &logIndex,
		); err != nil {
			return nil, err
		}
		if market.Valid {
			v := uint64(market.Int64)
			r.MarketID = &v
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("decode params %s: %w", r.ID, err)
		}
		r.ChainID = uint64(chainID)
		r.BlockNumber = uint64(block)
		r.BlockTimestamp = uint64(ts)
		r.LogIndex = uint64(logIndex)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadState returns last_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	err := s.db.QueryRowContext(ctx, `SELECT last_block FROM indexer_state WHERE name = ?`, name).Scan(&block)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer_state (name, last_block) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET last_block = excluded.last_block
	`, name, int64(block))
	return err
}
