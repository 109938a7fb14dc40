package claimtoken

import "errors"

var (
	// ErrNilPayer indicates the token was constructed without a payout port.
	ErrNilPayer = errors.New("claimtoken: payer must not be nil")

	// ErrZeroAddress indicates a transfer party is the zero address.
	ErrZeroAddress = errors.New("claimtoken: zero address")

	// ErrNotAuthorized indicates the caller is neither the issuer nor
	// the series router.
	ErrNotAuthorized = errors.New("claimtoken: caller not authorized")

	// ErrSeriesMatured indicates a distribution into a matured series.
	ErrSeriesMatured = errors.New("claimtoken: series matured")

	// ErrBelowMinDistribution indicates a distribution below the
	// series' configured minimum.
	ErrBelowMinDistribution = errors.New("claimtoken: distribution below series minimum")

	// ErrInsufficientClaimable indicates the holder's settled reward is
	// below the claim dust floor.
	ErrInsufficientClaimable = errors.New("claimtoken: claimable below minimum")

	// ErrReentrantCall indicates a nested call into a locked operation.
	ErrReentrantCall = errors.New("claimtoken: reentrant call")

	// ErrAlreadyMinted indicates the fixed supply was already minted.
	ErrAlreadyMinted = errors.New("claimtoken: supply already minted")
)
