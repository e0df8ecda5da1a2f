package events

import (
	"context"
	"fmt"

	"marketScope/internal/mapping"
	"marketScope/internal/model"
	"marketScope/internal/storage"
)

// Source returns the indexed trade and free-claim history of one market, oldest first.
type Source interface {
	Trades(ctx context.Context, marketID uint64) ([]model.Trade, error)
	FreeClaims(ctx context.Context, marketID uint64) ([]model.FreeClaim, error)
}

// StoreSource reads rows written by the indexer.
type StoreSource struct {
	reader storage.EventReader
}

func NewStoreSource(reader storage.EventReader) *StoreSource {
	return &StoreSource{reader: reader}
}

func (s *StoreSource) Trades(ctx context.Context, marketID uint64) ([]model.Trade, error) {
	records, err := s.reader.EventsByMarket(ctx, model.EventTradeExecuted, marketID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	return tradesFromRecords(records)
}

func (s *StoreSource) FreeClaims(ctx context.Context, marketID uint64) ([]model.FreeClaim, error) {
	records, err := s.reader.EventsByMarket(ctx, model.EventFreeTokensClaimed, marketID)
	if err != nil {
		return nil, fmt.Errorf("load free claims: %w", err)
	}
	return claimsFromRecords(records)
}

func tradesFromRecords(records []model.EventRecord) ([]model.Trade, error) {
	trades := make([]model.Trade, 0, len(records))
	for _, record := range records {
		trade, err := mapping.TradeFromRecord(record)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func claimsFromRecords(records []model.EventRecord) ([]model.FreeClaim, error) {
	claims := make([]model.FreeClaim, 0, len(records))
	for _, record := range records {
		claim, err := mapping.FreeClaimFromRecord(record)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, nil
}
