package claimtoken

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revshareorg/librevshare-go/accum"
	"github.com/revshareorg/librevshare-go/events"
	"github.com/revshareorg/librevshare-go/series"
)

func makeAddr(seed byte) series.Address {
	var addr series.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), accum.Scale)
}

var (
	issuer  = makeAddr(0x11)
	routerA = makeAddr(0x22)
	alice   = makeAddr(0xAA)
	bob     = makeAddr(0xBB)
	relayer = makeAddr(0xCC)
)

func testParams() series.Params {
	now := time.Now()
	return series.Params{
		Issuer:          issuer,
		Router:          routerA,
		ShareBPS:        2000,
		CreatedAt:       now,
		Maturity:        now.Add(365 * 24 * time.Hour),
		TotalUnits:      1_000_000,
		MinDistribution: new(big.Int).Set(series.MinDistributionFloor),
	}
}

type payment struct {
	to     series.Address
	amount *big.Int
}

// mockPayer is a test double for Payer. If PayFn is set it decides the
// outcome; otherwise every payment succeeds and is recorded.
type mockPayer struct {
	PayFn    func(to series.Address, amount *big.Int) error
	payments []payment
}

func (m *mockPayer) Pay(to series.Address, amount *big.Int) error {
	if m.PayFn != nil {
		if err := m.PayFn(to, amount); err != nil {
			return err
		}
	}
	m.payments = append(m.payments, payment{to: to, amount: new(big.Int).Set(amount)})
	return nil
}

func (m *mockPayer) totalPaidTo(to series.Address) *big.Int {
	total := new(big.Int)
	for _, p := range m.payments {
		if p.to == to {
			total.Add(total, p.amount)
		}
	}
	return total
}

func newTestToken(t *testing.T) (*Token, *mockPayer) {
	t.Helper()
	payer := &mockPayer{}
	tok, err := New(series.NewID(issuer, time.Now().Unix(), 1_000_000), testParams(), payer, nil)
	require.NoError(t, err)
	require.NoError(t, tok.MintInitial(issuer))
	return tok, payer
}

func TestNew_Validation(t *testing.T) {
	p := testParams()

	_, err := New(series.ID{}, p, nil, nil)
	require.ErrorIs(t, err, ErrNilPayer)

	bad := p
	bad.ShareBPS = 5001
	_, err = New(series.ID{}, bad, &mockPayer{}, nil)
	require.ErrorIs(t, err, series.ErrShareOutOfRange)
}

func TestMintInitial_Once(t *testing.T) {
	payer := &mockPayer{}
	tok, err := New(series.ID{}, testParams(), payer, nil)
	require.NoError(t, err)

	require.ErrorIs(t, tok.MintInitial(series.ZeroAddress), ErrZeroAddress)
	require.NoError(t, tok.MintInitial(issuer))
	assert.Equal(t, uint64(1_000_000), tok.BalanceOf(issuer))
	assert.Equal(t, uint64(1_000_000), tok.TotalUnits())

	require.ErrorIs(t, tok.MintInitial(issuer), ErrAlreadyMinted)
}

func TestDistribute_Authorization(t *testing.T) {
	tok, _ := newTestToken(t)

	require.ErrorIs(t, tok.Distribute(alice, eth(1)), ErrNotAuthorized)
	require.NoError(t, tok.Distribute(issuer, eth(1)))
	require.NoError(t, tok.Distribute(routerA, eth(1)))
	assert.Equal(t, eth(2), tok.TotalReceived())
}

func TestDistribute_BelowMinimum(t *testing.T) {
	tok, _ := newTestToken(t)
	below := new(big.Int).Sub(series.MinDistributionFloor, big.NewInt(1))
	require.ErrorIs(t, tok.Distribute(issuer, below), ErrBelowMinDistribution)
}

func TestDistribute_MaturityBoundary(t *testing.T) {
	created := time.Unix(1_700_000_000, 0)
	maturity := created.Add(180 * 24 * time.Hour)
	p := testParams()
	p.CreatedAt = created
	p.Maturity = maturity

	now := created
	tok, err := New(series.ID{}, p, &mockPayer{}, &Options{Now: func() time.Time { return now }})
	require.NoError(t, err)
	require.NoError(t, tok.MintInitial(issuer))

	// One second before maturity: still active.
	now = maturity.Add(-time.Second)
	require.NoError(t, tok.Distribute(issuer, eth(1)))

	// At exactly maturity: the instant belongs to the matured side.
	now = maturity
	require.ErrorIs(t, tok.Distribute(issuer, eth(1)), ErrSeriesMatured)
	assert.False(t, tok.Active())
}

// Transferring units must never move already-accrued entitlement: the
// sum of both parties' claimables is identical before and after.
func TestTransfer_Neutrality(t *testing.T) {
	tok, _ := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 300_000))
	require.NoError(t, tok.Distribute(issuer, eth(10)))

	beforeA := tok.Claimable(alice)
	beforeI := tok.Claimable(issuer)
	sumBefore := new(big.Int).Add(beforeA, beforeI)

	require.NoError(t, tok.Transfer(alice, issuer, 250_000))

	sumAfter := new(big.Int).Add(tok.Claimable(alice), tok.Claimable(issuer))
	assert.Equal(t, sumBefore, sumAfter)
	// And the individual entitlements themselves are unchanged.
	assert.Equal(t, beforeA, tok.Claimable(alice))
	assert.Equal(t, beforeI, tok.Claimable(issuer))
}

func TestTransfer_EdgeCases(t *testing.T) {
	tok, _ := newTestToken(t)
	require.NoError(t, tok.Distribute(issuer, eth(5)))

	before := tok.Claimable(issuer)

	// Zero-amount and self transfers are legal and settle both sides.
	require.NoError(t, tok.Transfer(issuer, alice, 0))
	require.NoError(t, tok.Transfer(issuer, issuer, 1000))
	assert.Equal(t, before, tok.Claimable(issuer))

	require.ErrorIs(t, tok.Transfer(series.ZeroAddress, alice, 1), ErrZeroAddress)
	require.ErrorIs(t, tok.Transfer(alice, series.ZeroAddress, 1), ErrZeroAddress)

	err := tok.Transfer(alice, bob, 1)
	require.ErrorIs(t, err, accum.ErrInsufficientBalance)
}

func TestBurn_SettlesFirst(t *testing.T) {
	tok, _ := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 100_000))
	require.NoError(t, tok.Distribute(issuer, eth(10)))

	accrued := tok.Claimable(alice)
	require.NoError(t, tok.Burn(alice, 100_000))

	assert.Zero(t, tok.BalanceOf(alice))
	assert.Equal(t, accrued, tok.Claimable(alice), "burn must not destroy accrued entitlement")
	assert.Equal(t, uint64(900_000), tok.TotalUnits())
}

func TestRedeem(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 400_000))
	require.NoError(t, tok.Distribute(issuer, eth(10)))

	units, err := tok.Redeem(alice, eth(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), units)
	assert.Zero(t, tok.BalanceOf(alice))
	assert.Equal(t, uint64(600_000), tok.TotalUnits())
	assert.Equal(t, eth(3), payer.totalPaidTo(alice))
	assert.Equal(t, eth(4), tok.Claimable(alice), "redeem must not destroy accrued entitlement")
}

func TestRedeem_RejectedPayoutRestoresUnits(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 400_000))

	payer.PayFn = func(series.Address, *big.Int) error { return errors.New("rejected") }
	_, err := tok.Redeem(alice, eth(1))
	require.Error(t, err)
	assert.Equal(t, uint64(400_000), tok.BalanceOf(alice), "units restored on rejection")
	assert.Equal(t, uint64(1_000_000), tok.TotalUnits())

	payer.PayFn = nil
	units, err := tok.Redeem(alice, eth(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), units)
}

func TestRedeem_Validation(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 400_000))

	_, err := tok.Redeem(series.ZeroAddress, eth(1))
	require.ErrorIs(t, err, ErrZeroAddress)
	_, err = tok.Redeem(alice, nil)
	require.ErrorIs(t, err, accum.ErrNonPositiveAmount)
	_, err = tok.Redeem(alice, big.NewInt(-1))
	require.ErrorIs(t, err, accum.ErrNonPositiveAmount)

	// A zero payout still consumes the units, without an external call.
	units, err := tok.Redeem(alice, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), units)
	assert.Empty(t, payer.payments)
}

func TestClaim_PaysAndZeroes(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 500_000))
	require.NoError(t, tok.Distribute(issuer, eth(4)))

	paid, err := tok.Claim(alice, alice)
	require.NoError(t, err)
	assert.Equal(t, eth(2), paid)
	assert.Equal(t, eth(2), payer.totalPaidTo(alice))
	assert.Zero(t, tok.Claimable(alice).Sign())
	assert.Equal(t, eth(2), tok.TotalClaimed())

	// Nothing left: a second claim deterministically rejects and never
	// pays twice for the same settled amount.
	_, err = tok.Claim(alice, alice)
	require.ErrorIs(t, err, ErrInsufficientClaimable)
	assert.Equal(t, eth(2), payer.totalPaidTo(alice))
}

func TestClaim_DustFloor(t *testing.T) {
	tok, _ := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 1))
	// 1 unit of 1e6: alice accrues 1e9 / 1e6 * ... = 1e3 wei, far
	// below the claim floor.
	require.NoError(t, tok.Distribute(issuer, series.MinDistributionFloor))

	_, err := tok.Claim(alice, alice)
	require.ErrorIs(t, err, ErrInsufficientClaimable)
	// The sub-floor pending stays parked, not destroyed.
	assert.Positive(t, tok.Claimable(alice).Sign())
}

// A recipient that rejects value must never lose the entitlement.
func TestClaim_NoLossOnRejection(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 500_000))
	require.NoError(t, tok.Distribute(issuer, eth(4)))

	before := tok.Claimable(alice)
	payer.PayFn = func(series.Address, *big.Int) error {
		return errors.New("receiver reverted")
	}

	_, err := tok.Claim(alice, alice)
	require.Error(t, err)
	assert.Equal(t, before, tok.Claimable(alice))
	assert.Zero(t, tok.TotalClaimed().Sign())

	// Once the receiver behaves, the claim goes through in full.
	payer.PayFn = nil
	paid, err := tok.Claim(alice, alice)
	require.NoError(t, err)
	assert.Equal(t, before, paid)
}

// claimFor pays the holder, never the relayer that triggered it.
func TestClaimFor_RelaySafety(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 500_000))
	require.NoError(t, tok.Distribute(issuer, eth(4)))

	paid, err := tok.ClaimFor(alice)
	require.NoError(t, err)
	assert.Equal(t, eth(2), paid)
	assert.Equal(t, eth(2), payer.totalPaidTo(alice))
	assert.Zero(t, payer.totalPaidTo(relayer).Sign())
}

func TestClaim_ReentrancyRejected(t *testing.T) {
	tok, payer := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 500_000))
	require.NoError(t, tok.Distribute(issuer, eth(4)))

	var nested error
	payer.PayFn = func(series.Address, *big.Int) error {
		_, nested = tok.Claim(alice, alice)
		return nested
	}

	_, err := tok.Claim(alice, alice)
	require.Error(t, err)
	require.ErrorIs(t, nested, ErrReentrantCall)
	// The outer claim failed with the payout, so nothing was lost.
	assert.Equal(t, eth(2), tok.Claimable(alice))
}

func TestEventsEmitted(t *testing.T) {
	rec := &events.MemoryRecorder{}
	payer := &mockPayer{}
	tok, err := New(series.ID{}, testParams(), payer, &Options{Recorder: rec})
	require.NoError(t, err)
	require.NoError(t, tok.MintInitial(issuer))
	require.NoError(t, tok.Transfer(issuer, alice, 500_000))
	require.NoError(t, tok.Distribute(issuer, eth(2)))
	_, err = tok.Claim(alice, alice)
	require.NoError(t, err)

	assert.Len(t, rec.OfKind("TokensTransferred"), 2)
	assert.Len(t, rec.OfKind("DistributionRecorded"), 1)
	assert.Len(t, rec.OfKind("ClaimRecorded"), 1)
}

func TestRestore_PreservesState(t *testing.T) {
	tok, _ := newTestToken(t)
	require.NoError(t, tok.Transfer(issuer, alice, 250_000))
	require.NoError(t, tok.Distribute(issuer, eth(8)))

	snap := tok.Snapshot()
	restored, err := Restore(tok.ID(), tok.Params(), &mockPayer{}, nil, snap, tok.Minted())
	require.NoError(t, err)

	assert.Equal(t, tok.Claimable(alice), restored.Claimable(alice))
	assert.Equal(t, tok.BalanceOf(issuer), restored.BalanceOf(issuer))
	assert.Equal(t, tok.TotalReceived(), restored.TotalReceived())
	require.ErrorIs(t, restored.MintInitial(issuer), ErrAlreadyMinted)
}
