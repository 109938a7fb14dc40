package router

import "errors"

var (
	// ErrNilPayer indicates the router was constructed without a
	// payout port for issuer withdrawals.
	ErrNilPayer = errors.New("router: payer must not be nil")

	// ErrNilTarget indicates SetTarget was called with nil.
	ErrNilTarget = errors.New("router: target must not be nil")

	// ErrTargetAlreadySet indicates a second SetTarget call. The
	// target is settable exactly once; a wrong target is recovered by
	// withdrawing to the issuer, never by re-pointing.
	ErrTargetAlreadySet = errors.New("router: target already set")

	// ErrNoTarget indicates a route attempt before the target was set.
	ErrNoTarget = errors.New("router: no target set")

	// ErrNonPositiveAmount indicates a zero or negative value where a
	// positive one is required.
	ErrNonPositiveAmount = errors.New("router: amount must be positive")

	// ErrNotAuthorized indicates a withdrawal by anyone other than the
	// issuer or owner.
	ErrNotAuthorized = errors.New("router: caller not authorized")

	// ErrInsufficientFunds indicates a withdrawal larger than the held
	// balance.
	ErrInsufficientFunds = errors.New("router: insufficient held balance")

	// ErrReentrantCall indicates a nested call into a locked operation.
	ErrReentrantCall = errors.New("router: reentrant call")
)
