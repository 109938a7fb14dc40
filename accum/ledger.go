// Package accum implements the streaming reward-per-unit ledger that
// underlies a revenue-share series. A single monotonic per-unit rate
// plus one checkpoint per holder is enough to pay any holder their
// exact proportional cut of all revenue distributed while they held
// units, with no per-distribution bookkeeping.
package accum

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/revshareorg/librevshare-go/series"
)

// Scale is the fixed-point factor applied to the per-unit rate.
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// maxPerUnitDelta caps the rate movement of a single distribution at
// 1e18 value-units per unit (Scale squared after scaling). Ordinary
// distributions sit many orders of magnitude below it; only a
// pathological amount/supply combination can reach it.
var maxPerUnitDelta = new(big.Int).Mul(Scale, Scale)

type position struct {
	balance    uint64
	checkpoint *big.Int // accPerUnit last observed
	pending    *big.Int // settled but unclaimed
}

// Ledger tracks unit balances and accrued revenue for one series.
// It is not safe for concurrent use; the owning contract serializes
// all access.
type Ledger struct {
	totalUnits    uint64
	accPerUnit    *big.Int
	totalReceived *big.Int
	totalClaimed  *big.Int
	positions     map[series.Address]*position
}

// NewLedger returns an empty ledger. Units enter it through Credit.
func NewLedger() *Ledger {
	return &Ledger{
		accPerUnit:    new(big.Int),
		totalReceived: new(big.Int),
		totalClaimed:  new(big.Int),
		positions:     make(map[series.Address]*position),
	}
}

func (l *Ledger) pos(h series.Address) *position {
	p, ok := l.positions[h]
	if !ok {
		// A fresh holder checkpoints at the current rate so no past
		// revenue is attributed to them.
		p = &position{
			checkpoint: new(big.Int).Set(l.accPerUnit),
			pending:    new(big.Int),
		}
		l.positions[h] = p
	}
	return p
}

// Settle folds the revenue accrued since the holder's checkpoint into
// their pending reward and advances the checkpoint. Idempotent: with
// no intervening rate or balance change the second call is a no-op.
func (l *Ledger) Settle(h series.Address) {
	p := l.pos(h)
	if p.checkpoint.Cmp(l.accPerUnit) == 0 {
		return
	}
	if p.balance > 0 {
		owed := new(big.Int).Sub(l.accPerUnit, p.checkpoint)
		owed.Mul(owed, new(big.Int).SetUint64(p.balance))
		owed.Quo(owed, Scale)
		p.pending.Add(p.pending, owed)
	}
	p.checkpoint.Set(l.accPerUnit)
}

// Distribute spreads amount across all outstanding units by advancing
// the per-unit rate. Amounts whose rate delta truncates to zero are
// rejected outright so no revenue is silently lost to rounding.
func (l *Ledger) Distribute(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	if l.totalUnits == 0 {
		return ErrNoUnits
	}

	delta := new(big.Int).Mul(amount, Scale)
	delta.Quo(delta, new(big.Int).SetUint64(l.totalUnits))
	if delta.Sign() == 0 {
		return ErrDistributionTooSmall
	}
	if delta.Cmp(maxPerUnitDelta) > 0 {
		return fmt.Errorf("%w: delta %s", ErrRateOverflow, delta)
	}

	l.accPerUnit.Add(l.accPerUnit, delta)
	l.totalReceived.Add(l.totalReceived, amount)
	return nil
}

// Claimable returns the holder's full entitlement: settled pending
// reward plus revenue accrued since their checkpoint. Pure read.
func (l *Ledger) Claimable(h series.Address) *big.Int {
	p, ok := l.positions[h]
	if !ok {
		return new(big.Int)
	}
	out := new(big.Int).Sub(l.accPerUnit, p.checkpoint)
	out.Mul(out, new(big.Int).SetUint64(p.balance))
	out.Quo(out, Scale)
	return out.Add(out, p.pending)
}

// Pending returns the settled-but-unclaimed reward only.
func (l *Ledger) Pending(h series.Address) *big.Int {
	p, ok := l.positions[h]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(p.pending)
}

// Credit settles the holder and then adds units to their balance,
// growing the outstanding supply.
func (l *Ledger) Credit(h series.Address, units uint64) {
	l.Settle(h)
	p := l.pos(h)
	p.balance += units
	l.totalUnits += units
}

// Debit settles the holder and then removes units from their balance,
// shrinking the outstanding supply.
func (l *Ledger) Debit(h series.Address, units uint64) error {
	l.Settle(h)
	p := l.pos(h)
	if p.balance < units {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, p.balance, units)
	}
	p.balance -= units
	l.totalUnits -= units
	return nil
}

// FinalizeClaim deducts a paid-out amount from the holder's pending
// reward. Callers invoke it only after the value transfer succeeded;
// a failed payout leaves the pending reward intact for a later claim.
func (l *Ledger) FinalizeClaim(h series.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	p := l.pos(h)
	if p.pending.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientPending, p.pending, amount)
	}
	p.pending.Sub(p.pending, amount)
	l.totalClaimed.Add(l.totalClaimed, amount)
	return nil
}

// Balance returns the holder's unit balance.
func (l *Ledger) Balance(h series.Address) uint64 {
	p, ok := l.positions[h]
	if !ok {
		return 0
	}
	return p.balance
}

// TotalUnits returns the outstanding unit supply.
func (l *Ledger) TotalUnits() uint64 { return l.totalUnits }

// AccPerUnit returns a copy of the current per-unit rate.
func (l *Ledger) AccPerUnit() *big.Int { return new(big.Int).Set(l.accPerUnit) }

// TotalReceived returns a copy of the cumulative distributed revenue.
func (l *Ledger) TotalReceived() *big.Int { return new(big.Int).Set(l.totalReceived) }

// TotalClaimed returns a copy of the cumulative claimed revenue.
func (l *Ledger) TotalClaimed() *big.Int { return new(big.Int).Set(l.totalClaimed) }

// HolderState is one holder's row in a ledger snapshot.
type HolderState struct {
	Address    series.Address
	Balance    uint64
	Checkpoint *big.Int
	Pending    *big.Int
}

// Snapshot is a point-in-time copy of the ledger, used by the storage
// layer. Holders are sorted by address for a deterministic encoding.
type Snapshot struct {
	TotalUnits    uint64
	AccPerUnit    *big.Int
	TotalReceived *big.Int
	TotalClaimed  *big.Int
	Holders       []HolderState
}

// Snapshot copies the ledger state.
func (l *Ledger) Snapshot() *Snapshot {
	snap := &Snapshot{
		TotalUnits:    l.totalUnits,
		AccPerUnit:    new(big.Int).Set(l.accPerUnit),
		TotalReceived: new(big.Int).Set(l.totalReceived),
		TotalClaimed:  new(big.Int).Set(l.totalClaimed),
		Holders:       make([]HolderState, 0, len(l.positions)),
	}
	for addr, p := range l.positions {
		snap.Holders = append(snap.Holders, HolderState{
			Address:    addr,
			Balance:    p.balance,
			Checkpoint: new(big.Int).Set(p.checkpoint),
			Pending:    new(big.Int).Set(p.pending),
		})
	}
	sort.Slice(snap.Holders, func(i, j int) bool {
		return string(snap.Holders[i].Address[:]) < string(snap.Holders[j].Address[:])
	})
	return snap
}

// FromSnapshot rebuilds a ledger from a stored snapshot.
func FromSnapshot(snap *Snapshot) *Ledger {
	l := &Ledger{
		totalUnits:    snap.TotalUnits,
		accPerUnit:    new(big.Int).Set(snap.AccPerUnit),
		totalReceived: new(big.Int).Set(snap.TotalReceived),
		totalClaimed:  new(big.Int).Set(snap.TotalClaimed),
		positions:     make(map[series.Address]*position, len(snap.Holders)),
	}
	for _, h := range snap.Holders {
		l.positions[h.Address] = &position{
			balance:    h.Balance,
			checkpoint: new(big.Int).Set(h.Checkpoint),
			pending:    new(big.Int).Set(h.Pending),
		}
	}
	return l
}
