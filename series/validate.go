package series

import "time"

// Validate checks that all series terms are within the creation-time
// bounds and returns the first error encountered, or nil if valid.
func (p Params) Validate() error {
	if p.Issuer.IsZero() {
		return ErrZeroIssuer
	}

	if p.ShareBPS < MinShareBPS || p.ShareBPS > MaxShareBPS {
		return ErrShareOutOfRange
	}

	d := p.Duration()
	if d < MinDurationDays*24*time.Hour || d > MaxDurationDays*24*time.Hour {
		return ErrDurationOutOfRange
	}

	if p.TotalUnits < MinTotalUnits {
		return ErrSupplyTooSmall
	}

	if p.MinDistribution == nil || p.MinDistribution.Cmp(MinDistributionFloor) < 0 {
		return ErrMinDistributionTooSmall
	}

	return nil
}

// Validate checks the escrow terms on top of the base series terms.
func (p EscrowParams) Validate() error {
	if err := p.Params.Validate(); err != nil {
		return err
	}

	if p.Principal == nil || p.Principal.Sign() <= 0 {
		return ErrZeroPrincipal
	}

	if p.MinPurchase == 0 {
		return ErrZeroMinPurchase
	}

	window := p.DepositDeadline.Sub(p.CreatedAt)
	if window < MinDepositDeadlineDays*24*time.Hour || window > MaxDepositDeadlineDays*24*time.Hour {
		return ErrDeadlineOutOfRange
	}

	return nil
}
