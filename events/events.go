// Package events defines the observable event stream emitted by the
// core revenue-share components. Events are consumed by passive
// indexers and, for a subset, forwarded to the reputation registry;
// they are never part of core correctness.
package events

import (
	"math/big"
	"time"

	"github.com/revshareorg/librevshare-go/series"
)

// Event is implemented by every emitted event type.
type Event interface {
	// Kind returns the stable event name used by indexers.
	Kind() string
}

// Recorder receives events from the core components. Implementations
// must not fail: recording is observability, not accounting, and the
// components ignore anything a Recorder does.
type Recorder interface {
	Record(e Event)
}

// Notifier receives fire-and-forget reputation signals. Errors are
// swallowed by the caller; a broken registry never blocks core flow.
type Notifier interface {
	Notify(e Event) error
}

// DistributionRecorded is emitted when revenue enters a series ledger.
type DistributionRecorded struct {
	Series     series.ID
	Caller     series.Address
	Amount     *big.Int
	AccPerUnit *big.Int
}

// ClaimRecorded is emitted when a holder's pending revenue is paid out.
type ClaimRecorded struct {
	Series series.ID
	Holder series.Address
	PaidTo series.Address
	Amount *big.Int
}

// TokensTransferred is emitted on every unit movement, including mints
// (From is zero) and burns (To is zero).
type TokensTransferred struct {
	Series series.ID
	From   series.Address
	To     series.Address
	Units  uint64
}

// RouteSucceeded is emitted when the router forwards the holder share.
type RouteSucceeded struct {
	Series series.ID
	Amount *big.Int
}

// RouteFailed is emitted when a route attempt is absorbed: the target
// was inactive, reverted, or panicked. Funds are untouched.
type RouteFailed struct {
	Series series.ID
	Reason string
}

// ValueReceived is emitted when the router accepts inbound value.
type ValueReceived struct {
	Series series.ID
	From   series.Address
	Amount *big.Int
}

// IssuerWithdrawal is emitted when the issuer pulls its share from the
// router.
type IssuerWithdrawal struct {
	Series series.ID
	Amount *big.Int
}

// PrincipalDeposited is emitted when the escrow principal is locked
// and the unit supply is minted.
type PrincipalDeposited struct {
	Series series.ID
	Amount *big.Int
}

// PrincipalClaimed is emitted when a holder redeems their principal
// share after maturity.
type PrincipalClaimed struct {
	Series series.ID
	Holder series.Address
	Amount *big.Int
}

// MaturityReached is emitted once, when the series transitions to the
// matured state.
type MaturityReached struct {
	Series series.ID
	At     time.Time
}

// DefaultDeclared is emitted when a pending series misses its deposit
// deadline and is declared defaulted.
type DefaultDeclared struct {
	Series series.ID
	At     time.Time
}

// SaleStarted is emitted when the issuer opens a unit sale.
type SaleStarted struct {
	Series       series.ID
	PricePerUnit *big.Int
	FeeReceiver  series.Address
}

// SaleStopped is emitted when the issuer closes the sale.
type SaleStopped struct {
	Series series.ID
}

// TokensPurchased is emitted on every completed escrow sale.
type TokensPurchased struct {
	Series series.ID
	Buyer  series.Address
	Units  uint64
	Cost   *big.Int
	Fee    *big.Int
}

// DustRescued is emitted when the issuer sweeps residual principal.
type DustRescued struct {
	Series series.ID
	Amount *big.Int
}

func (DistributionRecorded) Kind() string { return "DistributionRecorded" }
func (ClaimRecorded) Kind() string        { return "ClaimRecorded" }
func (TokensTransferred) Kind() string    { return "TokensTransferred" }
func (RouteSucceeded) Kind() string       { return "RouteSucceeded" }
func (RouteFailed) Kind() string          { return "RouteFailed" }
func (ValueReceived) Kind() string        { return "ValueReceived" }
func (IssuerWithdrawal) Kind() string     { return "IssuerWithdrawal" }
func (PrincipalDeposited) Kind() string   { return "PrincipalDeposited" }
func (PrincipalClaimed) Kind() string     { return "PrincipalClaimed" }
func (MaturityReached) Kind() string      { return "MaturityReached" }
func (DefaultDeclared) Kind() string      { return "DefaultDeclared" }
func (SaleStarted) Kind() string          { return "SaleStarted" }
func (SaleStopped) Kind() string          { return "SaleStopped" }
func (TokensPurchased) Kind() string      { return "TokensPurchased" }
func (DustRescued) Kind() string          { return "DustRescued" }

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}

// NopNotifier discards all reputation signals.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) error { return nil }
