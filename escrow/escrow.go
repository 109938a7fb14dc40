// Package escrow implements the principal-bearing lifecycle around a
// revenue-share claim token. The issuer locks a fixed principal before
// any units exist; holders redeem their proportional principal share
// at maturity. A missed deposit deadline lets anyone declare default.
package escrow

import (
	"fmt"
	"math/big"
	"time"

	"github.com/revshareorg/librevshare-go/claimtoken"
	"github.com/revshareorg/librevshare-go/events"
	"github.com/revshareorg/librevshare-go/series"
)

type sale struct {
	active       bool
	pricePerUnit *big.Int
	feeReceiver  series.Address
}

// Escrow wraps a claim token with the principal state machine. It owns
// the token: all distribution and claim traffic for the series flows
// through this type. Not safe for concurrent use.
type Escrow struct {
	id     series.ID
	params series.EscrowParams
	token  *claimtoken.Token
	payer  claimtoken.Payer

	rec    events.Recorder
	notify events.Notifier
	now    func() time.Time

	state                 State
	principalDeposited    bool
	totalPrincipalClaimed *big.Int
	sale                  sale

	locked bool
}

// New creates an escrow series in the pending-principal state. The
// claim token is constructed internally and shares the escrow's payer,
// recorder, and clock. opts may be nil.
func New(id series.ID, p series.EscrowParams, payer claimtoken.Payer, opts *claimtoken.Options) (*Escrow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, ErrNilPayer
	}
	o := claimtoken.Options{}
	if opts != nil {
		o = *opts
	}
	if o.Recorder == nil {
		o.Recorder = events.NopRecorder{}
	}
	if o.Notifier == nil {
		o.Notifier = events.NopNotifier{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	tok, err := claimtoken.New(id, p.Params, payer, &o)
	if err != nil {
		return nil, err
	}
	return &Escrow{
		id:                    id,
		params:                p,
		token:                 tok,
		payer:                 payer,
		rec:                   o.Recorder,
		notify:                o.Notifier,
		now:                   o.Now,
		state:                 StatePendingPrincipal,
		totalPrincipalClaimed: new(big.Int),
	}, nil
}

// maybeMature performs the lazy maturity transition. The maturity
// instant itself belongs to the matured side.
func (e *Escrow) maybeMature() {
	if e.state == StateActive && !e.now().Before(e.params.Maturity) {
		e.state = StateMatured
		ev := events.MaturityReached{Series: e.id, At: e.now()}
		e.rec.Record(ev)
		_ = e.notify.Notify(ev)
	}
}

// DepositPrincipal locks the principal and activates the series. The
// deposit must match the principal exactly and arrive no later than
// the deposit deadline. On success the full unit supply is minted to
// the issuer.
func (e *Escrow) DepositPrincipal(caller series.Address, value *big.Int) error {
	if caller != e.params.Issuer {
		return ErrNotIssuer
	}
	if e.state != StatePendingPrincipal {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	if e.now().After(e.params.DepositDeadline) {
		return ErrDeadlinePassed
	}
	if value == nil || value.Cmp(e.params.Principal) != 0 {
		return ErrWrongPrincipal
	}
	if err := e.token.MintInitial(e.params.Issuer); err != nil {
		return err
	}
	e.principalDeposited = true
	e.state = StateActive
	e.rec.Record(events.PrincipalDeposited{Series: e.id, Amount: new(big.Int).Set(value)})
	return nil
}

// DeclareDefault marks a series that missed its deposit deadline as
// defaulted. Anyone may call it once the deadline is strictly past.
func (e *Escrow) DeclareDefault() error {
	if e.state != StatePendingPrincipal {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	if !e.now().After(e.params.DepositDeadline) {
		return ErrDeadlineNotPassed
	}
	e.state = StateDefaulted
	ev := events.DefaultDeclared{Series: e.id, At: e.now()}
	e.rec.Record(ev)
	_ = e.notify.Notify(ev)
	return nil
}

// MatureIfDue performs the maturity transition explicitly. It succeeds
// at exactly the maturity instant and any time after.
func (e *Escrow) MatureIfDue() error {
	if e.state != StateActive {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	if e.now().Before(e.params.Maturity) {
		return ErrNotYetMatured
	}
	e.maybeMature()
	return nil
}

// Distribute records inbound revenue for all holders. Rejected once
// the series is matured, even if nobody triggered the transition yet.
func (e *Escrow) Distribute(caller series.Address, amount *big.Int) error {
	e.maybeMature()
	if e.state != StateActive {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	return e.token.Distribute(caller, amount)
}

// StartSale opens a unit sale at the given price. Issuer only.
func (e *Escrow) StartSale(caller series.Address, pricePerUnit *big.Int, feeReceiver series.Address) error {
	if caller != e.params.Issuer {
		return ErrNotIssuer
	}
	e.maybeMature()
	if e.state != StateActive {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	if e.sale.active {
		return ErrSaleAlreadyActive
	}
	if pricePerUnit == nil || pricePerUnit.Sign() <= 0 {
		return ErrZeroPrice
	}
	if feeReceiver.IsZero() {
		return ErrZeroFeeReceiver
	}
	e.sale = sale{
		active:       true,
		pricePerUnit: new(big.Int).Set(pricePerUnit),
		feeReceiver:  feeReceiver,
	}
	e.rec.Record(events.SaleStarted{
		Series:       e.id,
		PricePerUnit: new(big.Int).Set(pricePerUnit),
		FeeReceiver:  feeReceiver,
	})
	return nil
}

// StopSale closes the running sale. Issuer only.
func (e *Escrow) StopSale(caller series.Address) error {
	if caller != e.params.Issuer {
		return ErrNotIssuer
	}
	if !e.sale.active {
		return ErrSaleNotActive
	}
	e.sale.active = false
	e.rec.Record(events.SaleStopped{Series: e.id})
	return nil
}

// Buy purchases units from the issuer's holding at the sale price.
// payment must equal units times price exactly; the fixed sale fee
// goes to the fee receiver and the remainder to the issuer. Payouts
// run before the units move, issuer first and fee last, so an aborted
// sale leaves the unit ledger unchanged and never leaves value with
// the fee receiver; the only payout that can dangle on an abort is
// the issuer's own proceeds.
func (e *Escrow) Buy(buyer series.Address, units uint64, payment *big.Int) error {
	if e.locked {
		return ErrReentrantCall
	}
	e.locked = true
	defer func() { e.locked = false }()

	e.maybeMature()
	if e.state != StateActive {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	if !e.sale.active {
		return ErrSaleNotActive
	}
	if buyer.IsZero() {
		return claimtoken.ErrZeroAddress
	}
	if units < e.params.MinPurchase {
		return fmt.Errorf("%w: %d units, minimum %d", ErrBelowMinPurchase, units, e.params.MinPurchase)
	}
	if e.token.BalanceOf(e.params.Issuer) < units {
		return ErrInsufficientUnits
	}

	cost := new(big.Int).Mul(e.sale.pricePerUnit, new(big.Int).SetUint64(units))
	if payment == nil || payment.Cmp(cost) != 0 {
		return fmt.Errorf("%w: want %s", ErrWrongPayment, cost)
	}

	fee := new(big.Int).Mul(cost, big.NewInt(series.SaleFeeBPS))
	fee.Quo(fee, big.NewInt(series.BPSDenominator))
	remainder := new(big.Int).Sub(cost, fee)

	if err := e.payer.Pay(e.params.Issuer, remainder); err != nil {
		return fmt.Errorf("escrow: proceeds payout: %w", err)
	}
	if fee.Sign() > 0 {
		if err := e.payer.Pay(e.sale.feeReceiver, fee); err != nil {
			return fmt.Errorf("escrow: fee payout: %w", err)
		}
	}
	if err := e.token.Transfer(e.params.Issuer, buyer, units); err != nil {
		return err
	}
	e.rec.Record(events.TokensPurchased{
		Series: e.id,
		Buyer:  buyer,
		Units:  units,
		Cost:   cost,
		Fee:    fee,
	})
	return nil
}

// ClaimPrincipal redeems the holder's proportional principal share
// after maturity, consuming their units. The payout is principal times
// the holder's balance over the fixed unit supply; because the units
// are burned on redemption, every unit redeems at most once no matter
// how it travels between holders, and total payouts can never exceed
// the locked principal.
func (e *Escrow) ClaimPrincipal(holder series.Address) (*big.Int, error) {
	if e.locked {
		return nil, ErrReentrantCall
	}
	e.locked = true
	defer func() { e.locked = false }()

	e.maybeMature()
	if e.state != StateMatured {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	balance := e.token.BalanceOf(holder)
	if balance == 0 {
		return nil, ErrNoUnitsHeld
	}

	payout := new(big.Int).Mul(e.params.Principal, new(big.Int).SetUint64(balance))
	payout.Quo(payout, new(big.Int).SetUint64(e.params.TotalUnits))

	if _, err := e.token.Redeem(holder, payout); err != nil {
		// Units and pending reward untouched; the holder can try again.
		return nil, fmt.Errorf("escrow: principal redemption: %w", err)
	}
	e.totalPrincipalClaimed.Add(e.totalPrincipalClaimed, payout)
	e.rec.Record(events.PrincipalClaimed{
		Series: e.id,
		Holder: holder,
		Amount: new(big.Int).Set(payout),
	})
	return payout, nil
}

// RescueDustPrincipal sweeps the principal-derived residual left by
// integer division once the unclaimed remainder is negligible. Issuer
// only. The residual is computed purely from the principal-side
// counters, so unclaimed revenue obligations can never be swept.
func (e *Escrow) RescueDustPrincipal(caller series.Address) (*big.Int, error) {
	if caller != e.params.Issuer {
		return nil, ErrNotIssuer
	}
	if e.locked {
		return nil, ErrReentrantCall
	}
	e.locked = true
	defer func() { e.locked = false }()

	e.maybeMature()
	if e.state != StateMatured {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}

	remaining := new(big.Int).Sub(e.params.Principal, e.totalPrincipalClaimed)
	if remaining.Sign() == 0 {
		return nil, ErrNothingToRescue
	}
	if remaining.Cmp(series.MinClaim) >= 0 {
		return nil, fmt.Errorf("%w: %s remaining", ErrPrincipalOutstanding, remaining)
	}

	if err := e.payer.Pay(e.params.Issuer, remaining); err != nil {
		return nil, fmt.Errorf("escrow: dust payout: %w", err)
	}
	e.totalPrincipalClaimed.Add(e.totalPrincipalClaimed, remaining)
	e.rec.Record(events.DustRescued{Series: e.id, Amount: new(big.Int).Set(remaining)})
	return remaining, nil
}

// ClaimRevenue settles and pays the holder's pending revenue to payTo.
// Revenue claims never expire; they remain available after maturity.
func (e *Escrow) ClaimRevenue(holder, payTo series.Address) (*big.Int, error) {
	e.maybeMature()
	return e.token.Claim(holder, payTo)
}

// ClaimRevenueFor is ClaimRevenue with the payout forced to the holder.
func (e *Escrow) ClaimRevenueFor(holder series.Address) (*big.Int, error) {
	e.maybeMature()
	return e.token.ClaimFor(holder)
}

// Claimable returns the holder's current revenue entitlement.
func (e *Escrow) Claimable(holder series.Address) *big.Int {
	return e.token.Claimable(holder)
}

// Token returns the underlying claim token for reads and transfers.
func (e *Escrow) Token() *claimtoken.Token { return e.token }

// ID returns the series identifier.
func (e *Escrow) ID() series.ID { return e.id }

// Params returns the immutable escrow terms.
func (e *Escrow) Params() series.EscrowParams { return e.params }

// State returns the current lifecycle state without side effects.
func (e *Escrow) State() State { return e.state }

// Status is a snapshot of the escrow's lifecycle for indexers.
type Status struct {
	State                 State
	PrincipalDeposited    bool
	TotalPrincipalClaimed *big.Int
	SaleActive            bool
	PricePerUnit          *big.Int
	FeeReceiver           series.Address
}

// Status returns a snapshot of the lifecycle state.
func (e *Escrow) Status() Status {
	st := Status{
		State:                 e.state,
		PrincipalDeposited:    e.principalDeposited,
		TotalPrincipalClaimed: new(big.Int).Set(e.totalPrincipalClaimed),
		SaleActive:            e.sale.active,
		FeeReceiver:           e.sale.feeReceiver,
	}
	if e.sale.pricePerUnit != nil {
		st.PricePerUnit = new(big.Int).Set(e.sale.pricePerUnit)
	}
	return st
}
