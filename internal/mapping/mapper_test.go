package mapping

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/contract"
	"marketScope/internal/model"
)

var (
	testContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testBuyer    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testSeller   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testTx       = common.HexToHash("0xabababababababababababababababababababababababababababababababab")
)

func tradeLog(t *testing.T) types.Log {
	t.Helper()
	parsed, err := contract.MarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events[model.EventTradeExecuted]
	data, err := event.Inputs.NonIndexed().Pack(
		testSeller,
		new(big.Int).Mul(big.NewInt(6), big.NewInt(1e17)),
		big.NewInt(5_000_000_000_000_000),
		big.NewInt(9),
	)
	if err != nil {
		t.Fatalf("pack trade: %v", err)
	}
	return types.Log{
		Address: testContract,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(7)),
			common.BigToHash(big.NewInt(1)),
			common.BytesToHash(testBuyer.Bytes()),
		},
		Data:        data,
		BlockNumber: 120,
		BlockHash:   common.HexToHash("0x01"),
		TxHash:      testTx,
		Index:       3,
	}
}

func TestMapTradeExecuted(t *testing.T) {
	mapper, err := NewMapper()
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}

	record, err := mapper.Map(tradeLog(t), 1_700_000_000)
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	if record.EventType != model.EventTradeExecuted {
		t.Fatalf("event type mismatch: %s", record.EventType)
	}
	if record.MarketID == nil || *record.MarketID != 7 {
		t.Fatalf("market id mismatch: %v", record.MarketID)
	}
	if record.ID != RecordID(testTx, 3) {
		t.Fatalf("id mismatch: %s", record.ID)
	}
	if record.BlockTimestamp != 1_700_000_000 || record.BlockNumber != 120 || record.LogIndex != 3 {
		t.Fatalf("envelope mismatch: %+v", record)
	}
	if record.Params["buyer"] != testBuyer.Hex() || record.Params["seller"] != testSeller.Hex() {
		t.Fatalf("address params mismatch: %+v", record.Params)
	}
	if record.Params["optionId"] != "1" || record.Params["price"] != "600000000000000000" {
		t.Fatalf("int params mismatch: %+v", record.Params)
	}
	if len(record.Params) != 7 {
		t.Fatalf("expected every declared param, got %d", len(record.Params))
	}

	trade, err := TradeFromRecord(record)
	if err != nil {
		t.Fatalf("trade: %v", err)
	}
	if trade.MarketID != 7 || trade.IsOptionA() || trade.Buyer != testBuyer || trade.TradeID.Int64() != 9 {
		t.Fatalf("trade mismatch: %+v", trade)
	}
}

func TestMapIsDeterministic(t *testing.T) {
	mapper, err := NewMapper()
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	log := tradeLog(t)

	first, err := mapper.Map(log, 10)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	second, err := mapper.Map(log, 10)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rows differ:\n%+v\n%+v", first, second)
	}
}

func TestRecordID(t *testing.T) {
	id := RecordID(common.HexToHash("0x01"), 258)
	want := "0x" + "0000000000000000000000000000000000000000000000000000000000000001" + "00000102"
	if id != want {
		t.Fatalf("id mismatch: %s", id)
	}
	if RecordID(testTx, 1) == RecordID(testTx, 2) {
		t.Fatalf("log index must change the id")
	}
}

func TestMapMarketCreatedArrays(t *testing.T) {
	parsed, err := contract.MarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events[model.EventMarketCreated]
	data, err := event.Inputs.NonIndexed().Pack(
		"Will it rain?",
		[]string{"Yes", "No"},
		big.NewInt(1_800_000_000),
		uint8(2),
		uint8(1),
	)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	mapper, err := NewMapper()
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	record, err := mapper.Map(types.Log{
		Address: testContract,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(4)),
			common.BytesToHash(testBuyer.Bytes()),
		},
		Data:   data,
		TxHash: testTx,
	}, 5)
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	options, ok := record.Params["options"].([]interface{})
	if !ok || len(options) != 2 || options[0] != "Yes" {
		t.Fatalf("options mismatch: %#v", record.Params["options"])
	}
	if record.Params["marketType"] != "1" || record.Params["creator"] != testBuyer.Hex() {
		t.Fatalf("params mismatch: %+v", record.Params)
	}
}

func TestMapSchemaMismatch(t *testing.T) {
	mapper, err := NewMapper()
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}

	log := tradeLog(t)
	log.Topics = log.Topics[:2]
	if _, err := mapper.Map(log, 1); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for missing topic, got %v", err)
	}

	log = tradeLog(t)
	log.Data = log.Data[:32]
	if _, err := mapper.Map(log, 1); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for short data, got %v", err)
	}
}

func TestMapUnknownEvent(t *testing.T) {
	mapper, err := NewMapper()
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	log := types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}}
	if mapper.CanMap(log) {
		t.Fatalf("unknown topic should not be mappable")
	}
	if _, err := mapper.Map(log, 1); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected unknown event, got %v", err)
	}
	if len(mapper.Topics()) != 12 {
		t.Fatalf("expected 12 topics, got %d", len(mapper.Topics()))
	}
}

func TestFreeClaimFromRecord(t *testing.T) {
	marketID := uint64(2)
	claim, err := FreeClaimFromRecord(model.EventRecord{
		EventType: model.EventFreeTokensClaimed,
		MarketID:  &marketID,
		Params: map[string]interface{}{
			"marketId": "2",
			"user":     testBuyer.Hex(),
			"tokens":   "1000",
		},
		BlockTimestamp: 99,
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.User != testBuyer || claim.Tokens.Int64() != 1000 || claim.Timestamp != 99 {
		t.Fatalf("claim mismatch: %+v", claim)
	}

	_, err = FreeClaimFromRecord(model.EventRecord{
		EventType: model.EventFreeTokensClaimed,
		Params:    map[string]interface{}{"marketId": "2"},
	})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
