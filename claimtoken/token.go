// Package claimtoken implements the fungible claim-token ledger of a
// revenue-share series. It wraps the reward-per-unit accumulator and
// intercepts every balance mutation so that moving units never moves
// already-accrued entitlement between holders.
package claimtoken

import (
	"fmt"
	"math/big"
	"time"

	"github.com/revshareorg/librevshare-go/accum"
	"github.com/revshareorg/librevshare-go/events"
	"github.com/revshareorg/librevshare-go/series"
)

// Payer moves native value out of the series to a recipient. A Pay
// error means the recipient rejected the value; the caller must leave
// the underlying entitlement intact.
type Payer interface {
	Pay(to series.Address, amount *big.Int) error
}

// Options carries the optional collaborators of a Token. The zero
// value (or nil) selects a no-op recorder and notifier and the wall
// clock.
type Options struct {
	Recorder events.Recorder
	Notifier events.Notifier
	Now      func() time.Time
}

func (o *Options) fill() {
	if o.Recorder == nil {
		o.Recorder = events.NopRecorder{}
	}
	if o.Notifier == nil {
		o.Notifier = events.NopNotifier{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Token is a transferable fixed-supply claim on a series' revenue
// stream. All operations run in the caller's goroutine; the embedding
// application serializes access per series instance.
type Token struct {
	id     series.ID
	params series.Params
	ledger *accum.Ledger
	payer  Payer

	rec    events.Recorder
	notify events.Notifier
	now    func() time.Time

	minted bool
	locked bool // reentry lock for value-sending operations
}

// New creates the token for a validated series. opts may be nil.
func New(id series.ID, p series.Params, payer Payer, opts *Options) (*Token, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, ErrNilPayer
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	o.fill()
	return &Token{
		id:     id,
		params: p,
		ledger: accum.NewLedger(),
		payer:  payer,
		rec:    o.Recorder,
		notify: o.Notifier,
		now:    o.Now,
	}, nil
}

// ID returns the series identifier.
func (t *Token) ID() series.ID { return t.id }

// Params returns the immutable series terms.
func (t *Token) Params() series.Params { return t.params }

// Active reports whether the series still accepts distributions. The
// maturity instant itself is on the matured side.
func (t *Token) Active() bool {
	return t.now().Before(t.params.Maturity)
}

// MintInitial mints the full fixed unit supply to the given holder.
// It can succeed at most once over the life of the series.
func (t *Token) MintInitial(to series.Address) error {
	if t.minted {
		return ErrAlreadyMinted
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	t.ledger.Credit(to, t.params.TotalUnits)
	t.minted = true
	t.rec.Record(events.TokensTransferred{
		Series: t.id,
		To:     to,
		Units:  t.params.TotalUnits,
	})
	return nil
}

// Transfer moves units between holders. Both parties settle at their
// pre-transfer balances before either balance changes; this holds even
// for zero-amount and self transfers, so a transfer can never create
// or destroy claimable value.
func (t *Token) Transfer(from, to series.Address, units uint64) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	t.ledger.Settle(from)
	t.ledger.Settle(to)
	if err := t.ledger.Debit(from, units); err != nil {
		return fmt.Errorf("claimtoken: transfer: %w", err)
	}
	t.ledger.Credit(to, units)
	t.rec.Record(events.TokensTransferred{
		Series: t.id,
		From:   from,
		To:     to,
		Units:  units,
	})
	return nil
}

// Burn destroys units from the holder's balance, shrinking the
// outstanding supply. The holder settles first, so entitlement accrued
// on the burned units survives as pending reward.
func (t *Token) Burn(holder series.Address, units uint64) error {
	if holder.IsZero() {
		return ErrZeroAddress
	}
	t.ledger.Settle(holder)
	if err := t.ledger.Debit(holder, units); err != nil {
		return fmt.Errorf("claimtoken: burn: %w", err)
	}
	t.rec.Record(events.TokensTransferred{
		Series: t.id,
		From:   holder,
		Units:  units,
	})
	return nil
}

// Redeem burns the holder's entire balance and pays amount to the
// holder, under the claim lock. The units are debited before the
// payout, so they cannot move while the payout call runs; a rejected
// payout restores them. Revenue entitlement accrued on the redeemed
// units survives as pending reward either way.
func (t *Token) Redeem(holder series.Address, amount *big.Int) (uint64, error) {
	if holder.IsZero() {
		return 0, ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return 0, accum.ErrNonPositiveAmount
	}
	if t.locked {
		return 0, ErrReentrantCall
	}
	t.locked = true
	defer func() { t.locked = false }()

	t.ledger.Settle(holder)
	units := t.ledger.Balance(holder)
	if err := t.ledger.Debit(holder, units); err != nil {
		return 0, fmt.Errorf("claimtoken: redeem: %w", err)
	}
	if amount.Sign() > 0 {
		if err := t.payer.Pay(holder, amount); err != nil {
			t.ledger.Credit(holder, units)
			return 0, fmt.Errorf("claimtoken: redemption payout: %w", err)
		}
	}
	t.rec.Record(events.TokensTransferred{
		Series: t.id,
		From:   holder,
		Units:  units,
	})
	return units, nil
}

// Distribute records inbound revenue for all current holders. Only the
// issuer or the series router may call it, only while the series is
// active, and only with at least the series' minimum distribution.
func (t *Token) Distribute(caller series.Address, amount *big.Int) error {
	if caller != t.params.Issuer && caller != t.params.Router {
		return ErrNotAuthorized
	}
	if !t.Active() {
		return ErrSeriesMatured
	}
	if amount == nil || amount.Sign() <= 0 {
		return accum.ErrNonPositiveAmount
	}
	if amount.Cmp(t.params.MinDistribution) < 0 {
		return ErrBelowMinDistribution
	}
	if err := t.ledger.Distribute(amount); err != nil {
		return err
	}

	e := events.DistributionRecorded{
		Series:     t.id,
		Caller:     caller,
		Amount:     new(big.Int).Set(amount),
		AccPerUnit: t.ledger.AccPerUnit(),
	}
	t.rec.Record(e)
	_ = t.notify.Notify(e) // reputation signal, fire and forget
	return nil
}

// Claim settles the holder and pays their pending reward to payTo.
// The stored reward is only zeroed after the payout succeeds: a
// recipient that rejects value never loses the entitlement.
func (t *Token) Claim(holder, payTo series.Address) (*big.Int, error) {
	return t.claim(holder, payTo)
}

// ClaimFor is Claim with the payout forced to the holder, which makes
// gas-sponsored relaying safe: a relayer can trigger the claim but can
// never redirect the funds.
func (t *Token) ClaimFor(holder series.Address) (*big.Int, error) {
	return t.claim(holder, holder)
}

func (t *Token) claim(holder, payTo series.Address) (*big.Int, error) {
	if holder.IsZero() || payTo.IsZero() {
		return nil, ErrZeroAddress
	}
	if t.locked {
		return nil, ErrReentrantCall
	}
	t.locked = true
	defer func() { t.locked = false }()

	t.ledger.Settle(holder)
	amount := t.ledger.Pending(holder)
	if amount.Cmp(series.MinClaim) < 0 {
		return nil, ErrInsufficientClaimable
	}
	if err := t.payer.Pay(payTo, amount); err != nil {
		// Pending reward untouched; the holder can claim again later.
		return nil, fmt.Errorf("claimtoken: payout: %w", err)
	}
	if err := t.ledger.FinalizeClaim(holder, amount); err != nil {
		return nil, err
	}
	t.rec.Record(events.ClaimRecorded{
		Series: t.id,
		Holder: holder,
		PaidTo: payTo,
		Amount: new(big.Int).Set(amount),
	})
	return amount, nil
}

// Claimable returns the holder's full current entitlement.
func (t *Token) Claimable(holder series.Address) *big.Int {
	return t.ledger.Claimable(holder)
}

// BalanceOf returns the holder's unit balance.
func (t *Token) BalanceOf(holder series.Address) uint64 {
	return t.ledger.Balance(holder)
}

// TotalUnits returns the outstanding unit supply.
func (t *Token) TotalUnits() uint64 { return t.ledger.TotalUnits() }

// TotalReceived returns cumulative distributed revenue.
func (t *Token) TotalReceived() *big.Int { return t.ledger.TotalReceived() }

// TotalClaimed returns cumulative claimed revenue.
func (t *Token) TotalClaimed() *big.Int { return t.ledger.TotalClaimed() }

// Snapshot exposes the underlying ledger state for persistence.
func (t *Token) Snapshot() *accum.Snapshot { return t.ledger.Snapshot() }

// Restore rebuilds a token around a stored ledger snapshot. minted
// records whether the fixed supply was ever issued, which a snapshot
// alone cannot distinguish from a fully burned supply.
func Restore(id series.ID, p series.Params, payer Payer, opts *Options, snap *accum.Snapshot, minted bool) (*Token, error) {
	t, err := New(id, p, payer, opts)
	if err != nil {
		return nil, err
	}
	t.ledger = accum.FromSnapshot(snap)
	t.minted = minted
	return t, nil
}

// Minted reports whether the fixed supply was issued.
func (t *Token) Minted() bool { return t.minted }
