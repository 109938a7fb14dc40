package escrow

// State is the lifecycle state of an escrow series. Matured and
// Defaulted are terminal but remain queryable for the life of the
// deployment.
type State uint8

const (
	// StatePendingPrincipal is the initial state: no units minted,
	// waiting for the issuer's principal deposit.
	StatePendingPrincipal State = iota

	// StateActive means the principal is locked, units are minted, and
	// sale and revenue distribution are enabled.
	StateActive

	// StateMatured means the series reached its maturity instant.
	// Distributions are rejected; principal redemption and revenue
	// claims are open.
	StateMatured

	// StateDefaulted means the deposit deadline passed without a
	// principal deposit. No revenue ever flows.
	StateDefaulted
)

func (s State) String() string {
	switch s {
	case StatePendingPrincipal:
		return "pending-principal"
	case StateActive:
		return "active"
	case StateMatured:
		return "matured"
	case StateDefaulted:
		return "defaulted"
	default:
		return "unknown"
	}
}
