package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Market types as encoded by getMarketInfo.
const (
	MarketTypePaid uint8 = 0
	MarketTypeFree uint8 = 1
)

// MarketInfo is the decoded result of getMarketInfo.
type MarketInfo struct {
	MarketID        uint64
	Question        string
	Description     string
	EndTime         uint64
	Category        uint8
	OptionCount     uint64
	Resolved        bool
	Disputed        bool
	MarketType      uint8
	Invalidated     bool
	WinningOptionID uint64
	Creator         common.Address
}

// IsFree reports whether the market is funded from a fixed prize pool.
func (m MarketInfo) IsFree() bool {
	return m.MarketType == MarketTypeFree
}

// MarketOption is the decoded result of getMarketOption.
type MarketOption struct {
	Name         string
	Description  string
	TotalShares  *big.Int
	TotalVolume  *big.Int
	CurrentPrice *big.Int
	IsActive     bool
}

// MarketFinancials is the decoded result of getMarketFinancials.
type MarketFinancials struct {
	Creator               common.Address
	AdminInitialLiquidity *big.Int
	UserLiquidity         *big.Int
	TotalVolume           *big.Int
	PlatformFeesCollected *big.Int
	AdminLiquidityClaimed bool
	FeesUnlocked          bool
}

// FreeMarketInfo is the decoded result of getFreeMarketInfo.
type FreeMarketInfo struct {
	MaxFreeParticipants     *big.Int
	TokensPerParticipant    *big.Int
	CurrentFreeParticipants *big.Int
	TotalPrizePool          *big.Int
	RemainingPrizePool      *big.Int
	IsActive                bool
	PrizePoolWithdrawn      bool
}

// LPInfo is the decoded result of getLPInfo.
type LPInfo struct {
	Contribution     *big.Int
	RewardsClaimed   bool
	EstimatedRewards *big.Int
}

// EligibleWinners is the decoded result of getEligibleWinners.
type EligibleWinners struct {
	Recipients []common.Address
	Amounts    []*big.Int
}
