package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/amount"
	"marketScope/internal/analytics"
	"marketScope/internal/contract"
	"marketScope/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type withdrawalItem struct {
	MarketID    uint64 `json:"marketId"`
	Amount      string `json:"amount"`
	Formatted   string `json:"formatted"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type withdrawalGroups struct {
	AdminLiquidity []withdrawalItem `json:"adminLiquidity"`
	PrizePool      []withdrawalItem `json:"prizePool"`
	LPRewards      []withdrawalItem `json:"lpRewards"`
}

type withdrawalTotals struct {
	AdminLiquidity string `json:"adminLiquidity"`
	PrizePool      string `json:"prizePool"`
	LPRewards      string `json:"lpRewards"`
	Total          string `json:"total"`
}

type withdrawalResponse struct {
	Withdrawals withdrawalGroups `json:"withdrawals"`
	Totals      withdrawalTotals `json:"totals"`
	TotalCount  int              `json:"totalCount"`
}

func (s *Server) handleAutoDiscover(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserAddress string `json:"userAddress"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	user := strings.TrimSpace(body.UserAddress)
	if user == "" {
		s.fail(w, r, badRequest("userAddress is required"))
		return
	}
	if !common.IsHexAddress(user) {
		s.fail(w, r, badRequest("invalid userAddress %q", user))
		return
	}

	report, err := s.deps.Scanner.Scan(r.Context(), common.HexToAddress(user))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	decimals := amount.DefaultDecimals
	if s.deps.Decimals != nil {
		if d, err := s.deps.Decimals.TokenDecimals(r.Context()); err == nil {
			decimals = d
		} else {
			s.logger.Warn("token decimals unavailable, assuming default", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, withdrawalResponse{
		Withdrawals: withdrawalGroups{
			AdminLiquidity: toItems(report.AdminLiquidity, decimals),
			PrizePool:      toItems(report.PrizePool, decimals),
			LPRewards:      toItems(report.LPRewards, decimals),
		},
		Totals: withdrawalTotals{
			AdminLiquidity: report.TotalAdminLiquidity.String(),
			PrizePool:      report.TotalPrizePool.String(),
			LPRewards:      report.TotalLPRewards.String(),
			Total:          report.Total.String(),
		},
		TotalCount: report.TotalCount,
	})
}

func toItems(candidates []model.WithdrawalCandidate, decimals uint8) []withdrawalItem {
	items := make([]withdrawalItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, withdrawalItem{
			MarketID:    c.MarketID,
			Amount:      c.Amount.String(),
			Formatted:   amount.Format(c.Amount, decimals),
			Type:        string(c.Type),
			Description: c.Description,
		})
	}
	return items
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.deps.Analytics.Get(r.Context(), marketID, r.URL.Query().Get("timeRange"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInvalidateAnalytics(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDFromBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cleared, err := s.deps.Analytics.InvalidateMarket(r.Context(), marketID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cleared": cleared})
}

func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Prices.Current(r.Context(), marketID))
}

func (s *Server) handlePreviewDistribution(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDFromBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	preview, err := s.deps.Previewer.Preview(r.Context(), marketID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// fail maps an error onto a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, analytics.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contract.ErrMarketNotFound):
		writeError(w, http.StatusNotFound, "market not found")
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
