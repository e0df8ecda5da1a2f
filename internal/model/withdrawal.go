package model

import "math/big"

// WithdrawalType categorises an amount a user can still withdraw.
type WithdrawalType string

const (
	WithdrawalAdminLiquidity WithdrawalType = "adminLiquidity"
	WithdrawalPrizePool      WithdrawalType = "prizePool"
	WithdrawalLPRewards      WithdrawalType = "lpRewards"
)

// WithdrawalCandidate is an unclaimed amount on one market.
type WithdrawalCandidate struct {
	MarketID    uint64
	Amount      *big.Int
	Type        WithdrawalType
	Description string
}

// WithdrawalReport groups candidates by category with base-unit totals.
type WithdrawalReport struct {
	AdminLiquidity []WithdrawalCandidate
	PrizePool      []WithdrawalCandidate
	LPRewards      []WithdrawalCandidate

	TotalAdminLiquidity *big.Int
	TotalPrizePool      *big.Int
	TotalLPRewards      *big.Int
	Total               *big.Int
	TotalCount          int
}

// NewWithdrawalReport returns an empty report with zero totals.
func NewWithdrawalReport() WithdrawalReport {
	return WithdrawalReport{
		AdminLiquidity:      []WithdrawalCandidate{},
		PrizePool:           []WithdrawalCandidate{},
		LPRewards:           []WithdrawalCandidate{},
		TotalAdminLiquidity: big.NewInt(0),
		TotalPrizePool:      big.NewInt(0),
		TotalLPRewards:      big.NewInt(0),
		Total:               big.NewInt(0),
	}
}

// Add files a candidate under its category and updates the totals.
func (r *WithdrawalReport) Add(c WithdrawalCandidate) {
	switch c.Type {
	case WithdrawalAdminLiquidity:
		r.AdminLiquidity = append(r.AdminLiquidity, c)
		r.TotalAdminLiquidity.Add(r.TotalAdminLiquidity, c.Amount)
	case WithdrawalPrizePool:
		r.PrizePool = append(r.PrizePool, c)
		r.TotalPrizePool.Add(r.TotalPrizePool, c.Amount)
	case WithdrawalLPRewards:
		r.LPRewards = append(r.LPRewards, c)
		r.TotalLPRewards.Add(r.TotalLPRewards, c.Amount)
	default:
		return
	}
	r.Total.Add(r.Total, c.Amount)
	r.TotalCount++
}
