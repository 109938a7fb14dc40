package escrow

import "errors"

var (
	// ErrNilPayer indicates the escrow was constructed without a payout port.
	ErrNilPayer = errors.New("escrow: payer must not be nil")

	// ErrInvalidState indicates the operation is not allowed in the
	// series' current lifecycle state.
	ErrInvalidState = errors.New("escrow: operation not allowed in current state")

	// ErrNotIssuer indicates an issuer-only operation was called by
	// someone else.
	ErrNotIssuer = errors.New("escrow: caller is not the issuer")

	// ErrWrongPrincipal indicates a principal deposit that does not
	// match the agreed amount exactly.
	ErrWrongPrincipal = errors.New("escrow: deposit must equal principal exactly")

	// ErrDeadlinePassed indicates a principal deposit after the
	// deposit deadline.
	ErrDeadlinePassed = errors.New("escrow: deposit deadline passed")

	// ErrDeadlineNotPassed indicates a default declaration while the
	// deposit window is still open.
	ErrDeadlineNotPassed = errors.New("escrow: deposit deadline not passed")

	// ErrNotYetMatured indicates a maturation attempt before the
	// maturity instant.
	ErrNotYetMatured = errors.New("escrow: series not yet matured")

	// ErrSaleAlreadyActive indicates a second StartSale without an
	// intervening StopSale.
	ErrSaleAlreadyActive = errors.New("escrow: sale already active")

	// ErrSaleNotActive indicates a purchase or StopSale while no sale
	// is running.
	ErrSaleNotActive = errors.New("escrow: no active sale")

	// ErrZeroPrice indicates a sale price of zero.
	ErrZeroPrice = errors.New("escrow: price must be positive")

	// ErrZeroFeeReceiver indicates a sale with a zero fee receiver.
	ErrZeroFeeReceiver = errors.New("escrow: fee receiver must not be zero")

	// ErrBelowMinPurchase indicates a purchase below the series'
	// minimum unit count.
	ErrBelowMinPurchase = errors.New("escrow: purchase below minimum")

	// ErrInsufficientUnits indicates the issuer holds fewer unsold
	// units than the purchase asks for.
	ErrInsufficientUnits = errors.New("escrow: issuer holds insufficient units")

	// ErrWrongPayment indicates a purchase payment that does not match
	// units times price exactly.
	ErrWrongPayment = errors.New("escrow: payment must equal units times price")

	// ErrNoUnitsHeld indicates a principal claim by a holder with no
	// units left to redeem.
	ErrNoUnitsHeld = errors.New("escrow: holder has no units")

	// ErrPrincipalOutstanding indicates a dust rescue while a
	// non-negligible amount of principal is still unclaimed.
	ErrPrincipalOutstanding = errors.New("escrow: unclaimed principal above dust threshold")

	// ErrNothingToRescue indicates a dust rescue with no residual left.
	ErrNothingToRescue = errors.New("escrow: no principal residual")

	// ErrReentrantCall indicates a nested call into a locked operation.
	ErrReentrantCall = errors.New("escrow: reentrant call")
)
