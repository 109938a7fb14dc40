// Package router implements the split-and-forward stage in front of a
// revenue-share series. It accepts inbound value from any sender,
// forwards the configured holder share to the series token, and keeps
// the issuer remainder withdrawable no matter what the downstream
// target does. A broken or malicious target can delay forwarding but
// can never strand held funds.
package router

import (
	"fmt"
	"math/big"

	"github.com/revshareorg/librevshare-go/events"
	"github.com/revshareorg/librevshare-go/series"
)

// Target is the downstream distribution entrypoint, normally a series
// claim token. Distribute is called with the router's address as the
// caller.
type Target interface {
	Active() bool
	Distribute(caller series.Address, amount *big.Int) error
}

// Payer moves native value out of the router, used for issuer
// withdrawals.
type Payer interface {
	Pay(to series.Address, amount *big.Int) error
}

// Outcome classifies the result of a route attempt. Only OutcomeRouted
// changes state; every other outcome leaves the held balance intact.
type Outcome uint8

const (
	OutcomeRouted Outcome = iota
	OutcomeNothingToRoute
	OutcomeTargetInactive
	OutcomeTargetFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRouted:
		return "routed"
	case OutcomeNothingToRoute:
		return "nothing to route"
	case OutcomeTargetInactive:
		return "target inactive"
	case OutcomeTargetFailed:
		return "target failed"
	default:
		return fmt.Sprintf("outcome(%d)", o)
	}
}

// RouteResult reports what a route attempt did. Routed is nil unless
// the outcome is OutcomeRouted.
type RouteResult struct {
	Outcome Outcome
	Routed  *big.Int
}

// Status is a snapshot of the router's counters.
type Status struct {
	Held                  *big.Int
	TotalReceived         *big.Int
	TotalRoutedToTarget   *big.Int
	TotalReturnedToIssuer *big.Int
	FailedRouteCount      uint64
	TargetSet             bool
}

// Router splits inbound value between a series token and the issuer.
// Not safe for concurrent use; the embedding application serializes
// access per instance.
type Router struct {
	id       series.ID
	self     series.Address
	issuer   series.Address
	owner    series.Address // optional admin; zero means issuer-only
	splitBPS uint32
	payer    Payer
	rec      events.Recorder

	target Target

	held                  *big.Int
	totalReceived         *big.Int
	totalRoutedToTarget   *big.Int
	totalReturnedToIssuer *big.Int
	failedRouteCount      uint64

	locked bool
}

// New creates a router for the series terms. owner may be the zero
// address, leaving withdrawals issuer-only. rec may be nil.
func New(id series.ID, p series.Params, owner series.Address, payer Payer, rec events.Recorder) (*Router, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, ErrNilPayer
	}
	if rec == nil {
		rec = events.NopRecorder{}
	}
	return &Router{
		id:                    id,
		self:                  p.Router,
		issuer:                p.Issuer,
		owner:                 owner,
		splitBPS:              p.ShareBPS,
		payer:                 payer,
		rec:                   rec,
		held:                  new(big.Int),
		totalReceived:         new(big.Int),
		totalRoutedToTarget:   new(big.Int),
		totalReturnedToIssuer: new(big.Int),
	}, nil
}

// SetTarget arms the router. The target is settable exactly once.
func (r *Router) SetTarget(t Target) error {
	if t == nil {
		return ErrNilTarget
	}
	if r.target != nil {
		return ErrTargetAlreadySet
	}
	r.target = t
	return nil
}

// Receive accepts inbound value from any sender. It never routes
// synchronously; routing is a separate, permissionless step.
func (r *Router) Receive(from series.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	r.held.Add(r.held, amount)
	r.totalReceived.Add(r.totalReceived, amount)
	r.rec.Record(events.ValueReceived{
		Series: r.id,
		From:   from,
		Amount: new(big.Int).Set(amount),
	})
	return nil
}

// ReceiveAndRoute accepts inbound value and immediately attempts to
// route it.
func (r *Router) ReceiveAndRoute(from series.Address, amount *big.Int) (RouteResult, error) {
	if err := r.Receive(from, amount); err != nil {
		return RouteResult{}, err
	}
	return r.AttemptRoute()
}

// AttemptRoute forwards the holder share of the held balance to the
// target. Anyone may call it, any number of times. A failing or
// inactive target is not an error: the attempt is counted and the
// entire balance is left untouched for manual recovery. The only
// possible outcomes are "routed" and "nothing changed".
func (r *Router) AttemptRoute() (RouteResult, error) {
	if r.target == nil {
		return RouteResult{}, ErrNoTarget
	}
	if r.locked {
		return RouteResult{}, ErrReentrantCall
	}
	r.locked = true
	defer func() { r.locked = false }()

	if r.held.Sign() == 0 {
		return RouteResult{Outcome: OutcomeNothingToRoute}, nil
	}

	if !r.target.Active() {
		// Expected steady state once the series matures.
		r.failedRouteCount++
		r.rec.Record(events.RouteFailed{Series: r.id, Reason: "target inactive"})
		return RouteResult{Outcome: OutcomeTargetInactive}, nil
	}

	share := new(big.Int).Mul(r.held, big.NewInt(int64(r.splitBPS)))
	share.Quo(share, big.NewInt(series.BPSDenominator))
	if share.Sign() == 0 {
		return RouteResult{Outcome: OutcomeNothingToRoute}, nil
	}

	if err := r.callTarget(share); err != nil {
		r.failedRouteCount++
		r.rec.Record(events.RouteFailed{Series: r.id, Reason: err.Error()})
		return RouteResult{Outcome: OutcomeTargetFailed}, nil
	}

	r.held.Sub(r.held, share)
	r.totalRoutedToTarget.Add(r.totalRoutedToTarget, share)
	r.rec.Record(events.RouteSucceeded{Series: r.id, Amount: new(big.Int).Set(share)})
	return RouteResult{Outcome: OutcomeRouted, Routed: share}, nil
}

// callTarget invokes the target behind a recover barrier so that a
// panicking target is absorbed like any other downstream failure.
func (r *Router) callTarget(amount *big.Int) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("router: target panicked: %v", p)
		}
	}()
	return r.target.Distribute(r.self, amount)
}

// WithdrawToIssuer pays part of the held balance to the issuer. It is
// available regardless of target health, so the issuer share can never
// be trapped by a broken downstream target.
func (r *Router) WithdrawToIssuer(caller series.Address, amount *big.Int) error {
	if caller != r.issuer && (r.owner.IsZero() || caller != r.owner) {
		return ErrNotAuthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	if r.locked {
		return ErrReentrantCall
	}
	r.locked = true
	defer func() { r.locked = false }()

	if r.held.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, r.held, amount)
	}
	if err := r.payer.Pay(r.issuer, amount); err != nil {
		return fmt.Errorf("router: withdraw: %w", err)
	}
	r.held.Sub(r.held, amount)
	r.totalReturnedToIssuer.Add(r.totalReturnedToIssuer, amount)
	r.rec.Record(events.IssuerWithdrawal{Series: r.id, Amount: new(big.Int).Set(amount)})
	return nil
}

// WithdrawAllToIssuer pays the entire held balance to the issuer. A
// zero balance is a no-op.
func (r *Router) WithdrawAllToIssuer(caller series.Address) (*big.Int, error) {
	if caller != r.issuer && (r.owner.IsZero() || caller != r.owner) {
		return nil, ErrNotAuthorized
	}
	amount := new(big.Int).Set(r.held)
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := r.WithdrawToIssuer(caller, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// Held returns a copy of the currently held balance.
func (r *Router) Held() *big.Int { return new(big.Int).Set(r.held) }

// Status returns a snapshot of the router's counters.
func (r *Router) Status() Status {
	return Status{
		Held:                  new(big.Int).Set(r.held),
		TotalReceived:         new(big.Int).Set(r.totalReceived),
		TotalRoutedToTarget:   new(big.Int).Set(r.totalRoutedToTarget),
		TotalReturnedToIssuer: new(big.Int).Set(r.totalReturnedToIssuer),
		FailedRouteCount:      r.failedRouteCount,
		TargetSet:             r.target != nil,
	}
}
