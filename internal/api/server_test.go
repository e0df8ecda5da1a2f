package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketScope/internal/analytics"
	"marketScope/internal/contract"
	"marketScope/internal/model"
)

type fakeScanner struct {
	user   common.Address
	report model.WithdrawalReport
}

func (f *fakeScanner) Scan(_ context.Context, user common.Address) (model.WithdrawalReport, error) {
	f.user = user
	return f.report, nil
}

type fakeAnalytics struct {
	marketID  uint64
	timeRange string
	cleared   int
}

func (f *fakeAnalytics) Get(_ context.Context, marketID uint64, timeRange string) (model.MarketAnalytics, error) {
	if timeRange == "bogus" {
		return model.MarketAnalytics{}, fmt.Errorf("%w: bogus", analytics.ErrInvalidTimeRange)
	}
	f.marketID, f.timeRange = marketID, timeRange
	return model.MarketAnalytics{MarketID: marketID, TimeRange: timeRange}, nil
}

func (f *fakeAnalytics) InvalidateMarket(_ context.Context, marketID uint64) (int, error) {
	f.marketID = marketID
	return f.cleared, nil
}

type fakePrices struct{}

func (fakePrices) Current(_ context.Context, marketID uint64) model.CurrentPrice {
	return model.CurrentPrice{CurrentPriceA: 0.4, CurrentPriceB: 0.6, TotalShares: "10"}
}

type fakePreviewer struct {
	err error
}

func (f *fakePreviewer) Preview(_ context.Context, marketID uint64) (model.DistributionPreview, error) {
	if f.err != nil {
		return model.DistributionPreview{}, f.err
	}
	return model.DistributionPreview{
		Recipients:        []string{"0xA"},
		Amounts:           []string{"1"},
		TotalParticipants: 2,
		EligibleCount:     1,
	}, nil
}

type sixDecimals struct{}

func (sixDecimals) TokenDecimals(context.Context) (uint8, error) { return 6, nil }

func newTestServer(deps Deps) *Server {
	if deps.Scanner == nil {
		deps.Scanner = &fakeScanner{report: model.NewWithdrawalReport()}
	}
	if deps.Analytics == nil {
		deps.Analytics = &fakeAnalytics{}
	}
	if deps.Prices == nil {
		deps.Prices = fakePrices{}
	}
	if deps.Previewer == nil {
		deps.Previewer = &fakePreviewer{}
	}
	return NewServer(deps, nil, 0)
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestHealthAndRequestID(t *testing.T) {
	rec, payload := do(t, newTestServer(Deps{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAutoDiscover(t *testing.T) {
	report := model.NewWithdrawalReport()
	report.Add(model.WithdrawalCandidate{MarketID: 2, Amount: big.NewInt(1_500_000), Type: model.WithdrawalAdminLiquidity})
	report.Add(model.WithdrawalCandidate{MarketID: 5, Amount: big.NewInt(300), Type: model.WithdrawalPrizePool})
	scanner := &fakeScanner{report: report}
	s := newTestServer(Deps{Scanner: scanner, Decimals: sixDecimals{}})

	user := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	rec, payload := do(t, s, http.MethodPost, "/api/admin-auto-discover", `{"userAddress":"`+user+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, common.HexToAddress(user), scanner.user)
	assert.Equal(t, float64(2), payload["totalCount"])

	totals := payload["totals"].(map[string]interface{})
	assert.Equal(t, "1500300", totals["total"])
	assert.Equal(t, "300", totals["prizePool"])

	withdrawals := payload["withdrawals"].(map[string]interface{})
	admin := withdrawals["adminLiquidity"].([]interface{})
	require.Len(t, admin, 1)
	assert.Equal(t, "1.5", admin[0].(map[string]interface{})["formatted"])
	assert.Empty(t, withdrawals["lpRewards"])
}

func TestAutoDiscoverRejectsBadInput(t *testing.T) {
	s := newTestServer(Deps{})
	for _, body := range []string{"", `{}`, `{"userAddress":"nope"}`, `not json`} {
		rec, payload := do(t, s, http.MethodPost, "/api/admin-auto-discover", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, payload["error"], body)
	}
}

func TestAnalyticsRoutes(t *testing.T) {
	svc := &fakeAnalytics{cleared: 3}
	s := newTestServer(Deps{Analytics: svc})

	rec, payload := do(t, s, http.MethodGet, "/api/market/analytics?marketId=7&timeRange=30d", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), svc.marketID)
	assert.Equal(t, "30d", payload["timeRange"])

	rec, _ = do(t, s, http.MethodGet, "/api/market/analytics?marketId=7&timeRange=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/market/analytics", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = do(t, s, http.MethodPost, "/api/market/analytics", `{"marketId":"12"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(12), svc.marketID)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(3), payload["cleared"])

	rec, _ = do(t, s, http.MethodPost, "/api/market/analytics", `{"marketId":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentPrice(t *testing.T) {
	rec, payload := do(t, newTestServer(Deps{}), http.MethodGet, "/api/market/current-price?marketId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.4, payload["currentPriceA"])
	assert.Nil(t, payload["lastTrade"])

	rec, _ = do(t, newTestServer(Deps{}), http.MethodGet, "/api/market/current-price?marketId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewDistribution(t *testing.T) {
	rec, payload := do(t, newTestServer(Deps{}), http.MethodPost, "/api/auto-preview-batch-distribution", `{"marketId":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["totalParticipants"])
	assert.Equal(t, []interface{}{"1"}, payload["amounts"])
	_, hasMessage := payload["message"]
	assert.False(t, hasMessage)

	notFound := newTestServer(Deps{Previewer: &fakePreviewer{err: fmt.Errorf("market info: %w", contract.ErrMarketNotFound)}})
	rec, _ = do(t, notFound, http.MethodPost, "/api/auto-preview-batch-distribution", `{"marketId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	broken := newTestServer(Deps{Previewer: &fakePreviewer{err: errors.New("dial tcp 10.0.0.5:8545: connection refused")}})
	rec, payload = do(t, broken, http.MethodPost, "/api/auto-preview-batch-distribution", `{"marketId":1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", payload["error"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestPreviewDistributionRequiresMarketID(t *testing.T) {
	previewer := &countingPreviewer{}
	server := newTestServer(Deps{Previewer: previewer})

	for name, body := range map[string]string{
		"empty body":   "",
		"empty object": `{}`,
		"null id":      `{"marketId":null}`,
		"negative id":  `{"marketId":-1}`,
		"malformed":    `{"marketId":`,
		"non-numeric":  `{"marketId":"abc"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, payload := do(t, server, http.MethodPost, "/api/auto-preview-batch-distribution", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, payload["error"])
		})
	}
	assert.Zero(t, previewer.calls)
}

type countingPreviewer struct {
	calls int
}

func (c *countingPreviewer) Preview(context.Context, uint64) (model.DistributionPreview, error) {
	c.calls++
	return model.DistributionPreview{}, nil
}

func TestMethodNotAllowed(t *testing.T) {
	rec, _ := do(t, newTestServer(Deps{}), http.MethodGet, "/api/auto-preview-batch-distribution", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
