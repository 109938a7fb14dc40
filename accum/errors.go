package accum

import "errors"

var (
	// ErrNonPositiveAmount indicates a distribution or claim amount
	// that is zero or negative.
	ErrNonPositiveAmount = errors.New("accum: amount must be positive")

	// ErrNoUnits indicates the ledger has no units outstanding, so a
	// distribution has no recipients.
	ErrNoUnits = errors.New("accum: no units outstanding")

	// ErrDistributionTooSmall indicates the amount is too small to move
	// the per-unit rate; accepting it would silently lose the revenue
	// to rounding.
	ErrDistributionTooSmall = errors.New("accum: distribution too small to move the per-unit rate")

	// ErrRateOverflow indicates a single distribution would push the
	// per-unit rate past its sanity ceiling. The ceiling is generous:
	// it only trips on configurations that would corrupt the
	// fixed-point representation, never on ordinary distributions.
	ErrRateOverflow = errors.New("accum: per-unit rate delta exceeds sanity ceiling")

	// ErrInsufficientBalance indicates a debit larger than the
	// holder's unit balance.
	ErrInsufficientBalance = errors.New("accum: insufficient unit balance")

	// ErrInsufficientPending indicates a claim finalization larger
	// than the holder's settled pending reward.
	ErrInsufficientPending = errors.New("accum: insufficient pending reward")
)
