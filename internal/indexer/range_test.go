package indexer

import (
	"reflect"
	"testing"
)

func TestSplitRangeBatches(t *testing.T) {
	got, err := SplitRange(1_000, 1_006, 3)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	want := []BlockRange{
		{From: 1_000, To: 1_002},
		{From: 1_003, To: 1_005},
		{From: 1_006, To: 1_006},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges = %+v, want %+v", got, want)
	}

	var blocks uint64
	for _, r := range got {
		blocks += r.Len()
	}
	if blocks != 7 {
		t.Fatalf("ranges cover %d blocks, want 7", blocks)
	}
}

func TestSplitRangeSingleBlock(t *testing.T) {
	got, err := SplitRange(42, 42, 500)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if want := []BlockRange{{From: 42, To: 42}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges = %+v, want %+v", got, want)
	}
}

func TestSplitRangeRejectsBadInput(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestScanRangesWholeHistoryWithoutChunk(t *testing.T) {
	got, err := ScanRanges(500, 12_345, 0)
	if err != nil {
		t.Fatalf("scan ranges: %v", err)
	}
	if want := []BlockRange{{From: 500, To: 12_345}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges = %+v, want %+v", got, want)
	}
}

func TestScanRangesChunked(t *testing.T) {
	got, err := ScanRanges(100, 250, 100)
	if err != nil {
		t.Fatalf("scan ranges: %v", err)
	}
	want := []BlockRange{{From: 100, To: 199}, {From: 200, To: 250}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges = %+v, want %+v", got, want)
	}
}

func TestScanRangesHeadBeforeDeployment(t *testing.T) {
	got, err := ScanRanges(1_000, 999, 0)
	if err != nil {
		t.Fatalf("scan ranges: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no ranges before deployment block, got %+v", got)
	}
}
