package service

import (
	"context"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// FeeBreakdown is the per-technician closure payout.
type FeeBreakdown struct {
	TicketFee          int64
	TransportFee       int64
	TotalPerTechnician int64
}

// BonusCalculator maps ticket type and SLA outcome to a fee breakdown.
type BonusCalculator struct {
	settings *SettingsService
}

// NewBonusCalculator constructs the calculator.
func NewBonusCalculator(settings *SettingsService) *BonusCalculator {
	return &BonusCalculator{settings: settings}
}

// Compute resolves the configured fees for the ticket type. Closing past the
// SLA deadline withholds everything; every assignee otherwise receives the
// full amount, never a split.
func (b *BonusCalculator) Compute(ctx context.Context, ticketType domain.TicketType, onTime bool) (FeeBreakdown, error) {
	if !onTime {
		return FeeBreakdown{}, nil
	}
	ticketFee, transportFee, err := b.settings.FeesFor(ctx, ticketType)
	if err != nil {
		return FeeBreakdown{}, err
	}
	return FeeBreakdown{
		TicketFee:          ticketFee,
		TransportFee:       transportFee,
		TotalPerTechnician: ticketFee + transportFee,
	}, nil
}
