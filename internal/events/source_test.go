package events

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketScope/internal/contract"
	"marketScope/internal/mapping"
	"marketScope/internal/model"
)

var (
	sourceContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyer          = common.HexToAddress("0x2222222222222222222222222222222222222222")
	seller         = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

type fakeLogs struct {
	latest  uint64
	logs    []types.Log
	queries [][][]common.Hash
	ranges  [][2]uint64
}

func (f *fakeLogs) LatestBlockNumber(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeLogs) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return number * 10, nil
}

func (f *fakeLogs) FilterLogs(_ context.Context, from, to uint64, _ []common.Address, topics [][]common.Hash) ([]types.Log, error) {
	f.queries = append(f.queries, topics)
	f.ranges = append(f.ranges, [2]uint64{from, to})
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= from && log.BlockNumber <= to {
			out = append(out, log)
		}
	}
	return out, nil
}

func tradeLog(t *testing.T, block uint64, index uint, option int64) types.Log {
	t.Helper()
	parsed, err := contract.MarketABI()
	require.NoError(t, err)
	event := parsed.Events[model.EventTradeExecuted]
	data, err := event.Inputs.NonIndexed().Pack(seller, big.NewInt(5e17), big.NewInt(1e18), big.NewInt(int64(index)))
	require.NoError(t, err)
	return types.Log{
		Address: sourceContract,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(4)),
			common.BigToHash(big.NewInt(option)),
			common.BytesToHash(buyer.Bytes()),
		},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BytesToHash([]byte{byte(block)}),
		Index:       index,
	}
}

func TestChainSourceTrades(t *testing.T) {
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)

	logs := &fakeLogs{
		latest: 25,
		logs:   []types.Log{tradeLog(t, 22, 0, 1), tradeLog(t, 12, 3, 0)},
	}
	source := NewChainSource(logs, mapper, sourceContract, 10, 10)

	trades, err := source.Trades(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, uint64(12), trades[0].BlockNumber)
	assert.True(t, trades[0].IsOptionA())
	assert.False(t, trades[1].IsOptionA())
	assert.Equal(t, uint64(120), trades[0].Timestamp)
	assert.Equal(t, buyer, trades[0].Buyer)
	assert.Equal(t, seller, trades[0].Seller)

	assert.Equal(t, [][2]uint64{{10, 19}, {20, 25}}, logs.ranges)
	topic, _ := mapper.Topic(model.EventTradeExecuted)
	require.Len(t, logs.queries[0], 2)
	assert.Equal(t, topic, logs.queries[0][0][0])
	assert.Equal(t, common.BigToHash(big.NewInt(4)), logs.queries[0][1][0])
}

func TestChainSourceBeforeStartBlock(t *testing.T) {
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)

	logs := &fakeLogs{latest: 5}
	claims, err := NewChainSource(logs, mapper, sourceContract, 10, 0).FreeClaims(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.Empty(t, logs.queries)
}

type fakeReader struct {
	rows map[string][]model.EventRecord
}

func (f *fakeReader) EventsByMarket(_ context.Context, eventType string, _ uint64) ([]model.EventRecord, error) {
	return f.rows[eventType], nil
}

func TestStoreSourceFreeClaims(t *testing.T) {
	reader := &fakeReader{rows: map[string][]model.EventRecord{
		model.EventFreeTokensClaimed: {{
			EventType: model.EventFreeTokensClaimed,
			Params: map[string]interface{}{
				"marketId": "9",
				"user":     buyer.Hex(),
				"tokens":   "100",
			},
		}},
	}}

	claims, err := NewStoreSource(reader).FreeClaims(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, buyer, claims[0].User)

	trades, err := NewStoreSource(reader).Trades(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
