package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketScope/internal/contract"
	"marketScope/internal/metrics"
	"marketScope/internal/model"
)

// DefaultBatchSize is the number of markets inspected concurrently.
const DefaultBatchSize = 10

// MarketReader is the subset of the contract reader the scanner needs.
type MarketReader interface {
	MarketCount(ctx context.Context) (uint64, error)
	MarketInfo(ctx context.Context, marketID uint64) (contract.MarketInfo, error)
	MarketFinancials(ctx context.Context, marketID uint64) (contract.MarketFinancials, error)
	FreeMarketInfo(ctx context.Context, marketID uint64) (contract.FreeMarketInfo, error)
	LPInfo(ctx context.Context, marketID uint64, provider common.Address) (contract.LPInfo, error)
}

// Scanner discovers amounts a user can still withdraw across every market.
type Scanner struct {
	reader    MarketReader
	batchSize int
	logger    *zap.Logger
}

func NewScanner(reader MarketReader, batchSize int, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Scanner{reader: reader, batchSize: batchSize, logger: logger}
}

// Scan inspects markets [0, marketCount) in batches. A market that fails to load
// contributes nothing; the scan itself fails only if marketCount cannot be read.
func (s *Scanner) Scan(ctx context.Context, user common.Address) (model.WithdrawalReport, error) {
	report := model.NewWithdrawalReport()

	count, err := s.reader.MarketCount(ctx)
	if err != nil {
		return report, fmt.Errorf("market count: %w", err)
	}
	if count == 0 {
		return report, nil
	}

	s.logger.Debug("scan withdrawals", zap.String("user", user.Hex()), zap.Uint64("markets", count))

	for start := uint64(0); start < count; start += uint64(s.batchSize) {
		end := start + uint64(s.batchSize)
		if end > count {
			end = count
		}

		found := make([][]model.WithdrawalCandidate, end-start)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchSize)
		for id := start; id < end; id++ {
			g.Go(func() error {
				candidates, err := s.scanMarket(gctx, id, user)
				switch {
				case err == nil:
					metrics.MarketsScannedTotal.WithLabelValues("ok").Inc()
					found[id-start] = candidates
				case errors.Is(err, contract.ErrMarketNotFound):
					metrics.MarketsScannedTotal.WithLabelValues("not_found").Inc()
					s.logger.Debug("market not found", zap.Uint64("market_id", id))
				case ctx.Err() != nil:
					return ctx.Err()
				default:
					metrics.MarketsScannedTotal.WithLabelValues("error").Inc()
					s.logger.Warn("skip market", zap.Uint64("market_id", id), zap.Error(err))
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}

		for _, candidates := range found {
			for _, c := range candidates {
				report.Add(c)
			}
		}
	}

	return report, nil
}

func (s *Scanner) scanMarket(ctx context.Context, marketID uint64, user common.Address) ([]model.WithdrawalCandidate, error) {
	info, err := s.reader.MarketInfo(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("market info: %w", err)
	}

	var out []model.WithdrawalCandidate
	if info.Creator == user {
		financials, err := s.reader.MarketFinancials(ctx, marketID)
		if err != nil {
			return nil, fmt.Errorf("market financials: %w", err)
		}
		if positive(financials.AdminInitialLiquidity) && !financials.AdminLiquidityClaimed {
			out = append(out, model.WithdrawalCandidate{
				MarketID:    marketID,
				Amount:      financials.AdminInitialLiquidity,
				Type:        model.WithdrawalAdminLiquidity,
				Description: fmt.Sprintf("Admin liquidity from market #%d: %s", marketID, info.Question),
			})
		}

		if info.Resolved && info.IsFree() {
			free, err := s.reader.FreeMarketInfo(ctx, marketID)
			if err != nil {
				return nil, fmt.Errorf("free market info: %w", err)
			}
			if unused := UnusedPrizePool(free); positive(unused) && !free.PrizePoolWithdrawn {
				out = append(out, model.WithdrawalCandidate{
					MarketID:    marketID,
					Amount:      unused,
					Type:        model.WithdrawalPrizePool,
					Description: fmt.Sprintf("Unused prize pool from market #%d: %s", marketID, info.Question),
				})
			}
		}
	}

	lp, err := s.reader.LPInfo(ctx, marketID, user)
	if err != nil {
		return nil, fmt.Errorf("lp info: %w", err)
	}
	if positive(lp.Contribution) && !lp.RewardsClaimed && positive(lp.EstimatedRewards) {
		out = append(out, model.WithdrawalCandidate{
			MarketID:    marketID,
			Amount:      lp.EstimatedRewards,
			Type:        model.WithdrawalLPRewards,
			Description: fmt.Sprintf("LP rewards from market #%d: %s", marketID, info.Question),
		})
	}
	return out, nil
}

// UnusedPrizePool is the part of a free market's prize pool no participant claimed.
func UnusedPrizePool(free contract.FreeMarketInfo) *big.Int {
	if free.MaxFreeParticipants == nil || free.TokensPerParticipant == nil || free.CurrentFreeParticipants == nil {
		return new(big.Int)
	}
	total := new(big.Int).Mul(free.MaxFreeParticipants, free.TokensPerParticipant)
	used := new(big.Int).Mul(free.CurrentFreeParticipants, free.TokensPerParticipant)
	return total.Sub(total, used)
}

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
