package distribution

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/amount"
	"marketScope/internal/contract"
	"marketScope/internal/events"
	"marketScope/internal/model"
)

// Messages returned with an empty preview.
const (
	MessageNotResolved    = "Market is not resolved yet"
	MessageDisputed       = "Market is disputed; distribution is paused until the dispute is settled"
	MessageInvalidated    = "Market was invalidated; participants are refunded instead of paid"
	MessageNoParticipants = "No participants found for this market"
	MessageNoWinners      = "No eligible winners found among participants"
)

// WinnerReader is the subset of the contract reader the previewer needs.
type WinnerReader interface {
	MarketInfo(ctx context.Context, marketID uint64) (contract.MarketInfo, error)
	EligibleWinners(ctx context.Context, marketID uint64, candidates []common.Address) (contract.EligibleWinners, error)
	TokenDecimals(ctx context.Context) (uint8, error)
}

// Previewer computes who a batch distribution would pay, without sending anything.
type Previewer struct {
	reader WinnerReader
	source events.Source
	logger *zap.Logger
}

func NewPreviewer(reader WinnerReader, source events.Source, logger *zap.Logger) *Previewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Previewer{reader: reader, source: source, logger: logger}
}

// Preview returns the eligible winners of a resolved market.
// Business-state rejections are returned as an empty preview with a message, not an error.
func (p *Previewer) Preview(ctx context.Context, marketID uint64) (model.DistributionPreview, error) {
	info, err := p.reader.MarketInfo(ctx, marketID)
	if err != nil {
		return model.DistributionPreview{}, fmt.Errorf("market info: %w", err)
	}
	switch {
	case !info.Resolved:
		return emptyPreview(MessageNotResolved), nil
	case info.Disputed:
		return emptyPreview(MessageDisputed), nil
	case info.Invalidated:
		return emptyPreview(MessageInvalidated), nil
	}

	participants, err := p.participants(ctx, marketID)
	if err != nil {
		return model.DistributionPreview{}, err
	}
	if len(participants) == 0 {
		return emptyPreview(MessageNoParticipants), nil
	}

	winners, err := p.reader.EligibleWinners(ctx, marketID, participants)
	if err != nil {
		return model.DistributionPreview{}, fmt.Errorf("eligible winners: %w", err)
	}

	decimals, err := p.reader.TokenDecimals(ctx)
	if err != nil {
		p.logger.Warn("token decimals unavailable, assuming default", zap.Error(err))
		decimals = amount.DefaultDecimals
	}

	preview := model.DistributionPreview{
		Recipients:        make([]string, 0, len(winners.Recipients)),
		Amounts:           make([]string, 0, len(winners.Amounts)),
		TotalParticipants: len(participants),
		EligibleCount:     len(winners.Recipients),
	}
	for i, recipient := range winners.Recipients {
		preview.Recipients = append(preview.Recipients, recipient.Hex())
		preview.Amounts = append(preview.Amounts, amount.Format(winners.Amounts[i], decimals))
	}
	if preview.EligibleCount == 0 {
		preview.Message = MessageNoWinners
	}

	p.logger.Debug("distribution preview",
		zap.Uint64("market_id", marketID),
		zap.Int("participants", preview.TotalParticipants),
		zap.Int("eligible", preview.EligibleCount),
	)
	return preview, nil
}

// participants returns distinct non-zero traders and free claimers in first-seen order.
func (p *Previewer) participants(ctx context.Context, marketID uint64) ([]common.Address, error) {
	trades, err := p.source.Trades(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	claims, err := p.source.FreeClaims(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load free claims: %w", err)
	}

	seen := make(map[common.Address]struct{})
	var out []common.Address
	add := func(addr common.Address) {
		if addr == (common.Address{}) {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	for _, trade := range trades {
		add(trade.Buyer)
		add(trade.Seller)
	}
	for _, claim := range claims {
		add(claim.User)
	}
	return out, nil
}

func emptyPreview(message string) model.DistributionPreview {
	return model.DistributionPreview{
		Recipients: []string{},
		Amounts:    []string{},
		Message:    message,
	}
}
