package series

import (
	"math/big"
	"time"
)

// Bounds enforced on creation-time parameters. A reimplementation of
// the deployment factory must apply the same limits; instances created
// outside these ranges are rejected by Validate.
const (
	// MinShareBPS is the smallest holder share a series may carry.
	MinShareBPS = 1

	// MaxShareBPS caps the holder share at 50%. The issuer always
	// retains at least half of routed revenue.
	MaxShareBPS = 5000

	// BPSDenominator is the basis-point denominator for all share math.
	BPSDenominator = 10000

	// MinDurationDays is the shortest series lifetime. Shorter series
	// mature before a meaningful revenue stream can accrue.
	MinDurationDays = 30

	// MaxDurationDays is the longest series lifetime (five years).
	MaxDurationDays = 1825

	// MinTotalUnits is the smallest unit supply. Tiny supplies make
	// per-unit accumulator deltas too coarse to distribute fairly.
	MinTotalUnits = 1000

	// SaleFeeBPS is the fixed platform fee taken from every escrow
	// sale, paid to the sale's fee receiver.
	SaleFeeBPS = 200

	// MinDepositDeadlineDays and MaxDepositDeadlineDays bound how long
	// an escrow series may sit waiting for its principal.
	MinDepositDeadlineDays = 1
	MaxDepositDeadlineDays = 90
)

// MinDistributionFloor is the smallest minimum-distribution value a
// series may configure (1 gwei). Distributions below a series' minimum
// are rejected before they can be lost to rounding.
var MinDistributionFloor = big.NewInt(1_000_000_000)

// MinClaim is the dust floor for revenue claims. Claims below it are
// rejected rather than paid, to avoid pushing negligible transfers at
// receivers. Pending rewards under the floor stay parked until the
// holder accrues past it.
var MinClaim = big.NewInt(1_000_000)

// Params holds the immutable terms of a revenue-share series. They are
// fixed by the deployment factory at creation and never mutated.
type Params struct {
	Issuer          Address
	Router          Address
	ShareBPS        uint32
	CreatedAt       time.Time
	Maturity        time.Time
	TotalUnits      uint64
	MinDistribution *big.Int
}

// EscrowParams extends Params with the principal-escrow terms of the
// guaranteed variant.
type EscrowParams struct {
	Params

	// Principal is the exact value the issuer must lock before any
	// units are minted.
	Principal *big.Int

	// MinPurchase is the smallest unit count a sale will accept.
	MinPurchase uint64

	// DepositDeadline is the instant after which a missing principal
	// deposit allows anyone to declare default.
	DepositDeadline time.Time
}

// Duration returns the series lifetime.
func (p Params) Duration() time.Duration {
	return p.Maturity.Sub(p.CreatedAt)
}
