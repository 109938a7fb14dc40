package series

import "errors"

var (
	// ErrInvalidPubKey indicates the public key is not a 65-byte
	// uncompressed key.
	ErrInvalidPubKey = errors.New("series: invalid public key")

	// ErrInvalidAddress indicates raw address bytes have the wrong length.
	ErrInvalidAddress = errors.New("series: invalid address")

	// ErrZeroIssuer indicates the issuer address is the zero address.
	ErrZeroIssuer = errors.New("series: issuer address must not be zero")

	// ErrShareOutOfRange indicates the holder share is outside 1-5000 BPS.
	ErrShareOutOfRange = errors.New("series: share out of range (must be 1-5000 BPS)")

	// ErrDurationOutOfRange indicates the series lifetime is outside 30-1825 days.
	ErrDurationOutOfRange = errors.New("series: duration out of range (must be 30-1825 days)")

	// ErrSupplyTooSmall indicates the unit supply is below the minimum.
	ErrSupplyTooSmall = errors.New("series: unit supply below minimum")

	// ErrMinDistributionTooSmall indicates the configured minimum
	// distribution is below the global floor.
	ErrMinDistributionTooSmall = errors.New("series: minimum distribution below floor")

	// ErrZeroPrincipal indicates the escrow principal is zero or negative.
	ErrZeroPrincipal = errors.New("series: principal must be positive")

	// ErrZeroMinPurchase indicates the escrow minimum purchase is zero.
	ErrZeroMinPurchase = errors.New("series: minimum purchase must be positive")

	// ErrDeadlineOutOfRange indicates the deposit deadline is outside 1-90 days.
	ErrDeadlineOutOfRange = errors.New("series: deposit deadline out of range (must be 1-90 days)")
)
