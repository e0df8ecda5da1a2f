package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketScope/internal/model"
)

// Store provides Postgres persistence for event rows and indexer state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// PutEventBatch inserts event rows, ignoring ids that already exist.
func (s *Store) PutEventBatch(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		params, err := json.Marshal(r.Params)
		if err != nil {
			return fmt.Errorf("marshal params %s: %w", r.ID, err)
		}
		var marketID *int64
		if r.MarketID != nil {
			v := int64(*r.MarketID)
			marketID = &v
		}
		batch.Queue(`
			INSERT INTO market_events (
				id, event_type, market_id, chain_id, contract, params,
				block_number, block_hash, block_timestamp, transaction_hash, log_index, created_at
			) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, now())
			ON CONFLICT (id) DO NOTHING
		`,
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
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// EventsByMarket returns the rows of one event type for one market in chain order.
func (s *Store) EventsByMarket(ctx context.Context, eventType string, marketID uint64) ([]model.EventRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, market_id, chain_id, contract, params,
			block_number, block_hash, block_timestamp, transaction_hash, log_index
		FROM market_events
		WHERE event_type = $1 AND market_id = $2
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
			market                       *int64
			chainID, block, ts, logIndex int64
			params                       []byte
		)
		if err := rows.Scan(
			&r.ID, &r.EventType, &market, &chainID, &r.Contract, &params,
			&block, &r.BlockHash, &ts, &r.TransactionHash, &logIndex,
		); err != nil {
			return nil, err
		}
		if market != nil {
			v := uint64(*market)
			r.MarketID = &v
		}
		if err := json.Unmarshal(params, &r.Params); err != nil {
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
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return err
}
