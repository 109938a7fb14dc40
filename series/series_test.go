package series

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAddr(seed byte) Address {
	var addr Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

func validParams() Params {
	created := time.Unix(1_700_000_000, 0)
	return Params{
		Issuer:          makeAddr(0x11),
		Router:          makeAddr(0x22),
		ShareBPS:        2000,
		CreatedAt:       created,
		Maturity:        created.Add(365 * 24 * time.Hour),
		TotalUnits:      1_000_000,
		MinDistribution: new(big.Int).Set(MinDistributionFloor),
	}
}

func validEscrowParams() EscrowParams {
	p := validParams()
	return EscrowParams{
		Params:          p,
		Principal:       big.NewInt(1_000_000),
		MinPurchase:     1000,
		DepositDeadline: p.CreatedAt.Add(30 * 24 * time.Hour),
	}
}

func TestAddressFromPubKey(t *testing.T) {
	pub := make([]byte, 65)
	pub[0] = 0x04
	for i := 1; i < len(pub); i++ {
		pub[i] = byte(i)
	}

	addr, err := AddressFromPubKey(pub)
	require.NoError(t, err)
	assert.False(t, addr.IsZero())
	assert.Len(t, addr.String(), 2*AddressLen)

	// Deterministic for the same key, different for a different key.
	again, err := AddressFromPubKey(pub)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	pub2 := append([]byte{}, pub...)
	pub2[64] ^= 0x01
	other, err := AddressFromPubKey(pub2)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestAddressFromPubKey_Invalid(t *testing.T) {
	_, err := AddressFromPubKey(make([]byte, 33))
	require.ErrorIs(t, err, ErrInvalidPubKey)

	pub := make([]byte, 65)
	pub[0] = 0x02 // compressed prefix
	_, err = AddressFromPubKey(pub)
	require.ErrorIs(t, err, ErrInvalidPubKey)
}

func TestAddressFromBytes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, AddressLen)
	addr, err := AddressFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, makeAddr(0xAB), addr)
	assert.Equal(t, "abababababababababababababababababababab", addr.String())

	_, err = AddressFromBytes(raw[:19])
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestNewID(t *testing.T) {
	issuer := makeAddr(0x11)
	id := NewID(issuer, 1_700_000_000, 1_000_000)

	assert.Equal(t, id, NewID(issuer, 1_700_000_000, 1_000_000))
	assert.NotEqual(t, id, NewID(issuer, 1_700_000_001, 1_000_000))
	assert.NotEqual(t, id, NewID(issuer, 1_700_000_000, 1_000_001))
	assert.NotEqual(t, id, NewID(makeAddr(0x12), 1_700_000_000, 1_000_000))
	assert.Len(t, id.String(), 64)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"valid", func(*Params) {}, nil},
		{"zero issuer", func(p *Params) { p.Issuer = ZeroAddress }, ErrZeroIssuer},
		{"share below minimum", func(p *Params) { p.ShareBPS = 0 }, ErrShareOutOfRange},
		{"share above cap", func(p *Params) { p.ShareBPS = 5001 }, ErrShareOutOfRange},
		{"share at cap", func(p *Params) { p.ShareBPS = 5000 }, nil},
		{"duration too short", func(p *Params) {
			p.Maturity = p.CreatedAt.Add(29 * 24 * time.Hour)
		}, ErrDurationOutOfRange},
		{"duration at minimum", func(p *Params) {
			p.Maturity = p.CreatedAt.Add(30 * 24 * time.Hour)
		}, nil},
		{"duration too long", func(p *Params) {
			p.Maturity = p.CreatedAt.Add(1826 * 24 * time.Hour)
		}, ErrDurationOutOfRange},
		{"duration at maximum", func(p *Params) {
			p.Maturity = p.CreatedAt.Add(1825 * 24 * time.Hour)
		}, nil},
		{"supply too small", func(p *Params) { p.TotalUnits = 999 }, ErrSupplyTooSmall},
		{"supply at minimum", func(p *Params) { p.TotalUnits = 1000 }, nil},
		{"nil min distribution", func(p *Params) { p.MinDistribution = nil }, ErrMinDistributionTooSmall},
		{"min distribution below floor", func(p *Params) {
			p.MinDistribution = new(big.Int).Sub(MinDistributionFloor, big.NewInt(1))
		}, ErrMinDistributionTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestEscrowParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EscrowParams)
		err    error
	}{
		{"valid", func(*EscrowParams) {}, nil},
		{"base params checked first", func(p *EscrowParams) { p.Issuer = ZeroAddress }, ErrZeroIssuer},
		{"nil principal", func(p *EscrowParams) { p.Principal = nil }, ErrZeroPrincipal},
		{"zero principal", func(p *EscrowParams) { p.Principal = big.NewInt(0) }, ErrZeroPrincipal},
		{"zero min purchase", func(p *EscrowParams) { p.MinPurchase = 0 }, ErrZeroMinPurchase},
		{"deadline too early", func(p *EscrowParams) {
			p.DepositDeadline = p.CreatedAt.Add(23 * time.Hour)
		}, ErrDeadlineOutOfRange},
		{"deadline at minimum", func(p *EscrowParams) {
			p.DepositDeadline = p.CreatedAt.Add(24 * time.Hour)
		}, nil},
		{"deadline too late", func(p *EscrowParams) {
			p.DepositDeadline = p.CreatedAt.Add(91 * 24 * time.Hour)
		}, ErrDeadlineOutOfRange},
		{"deadline at maximum", func(p *EscrowParams) {
			p.DepositDeadline = p.CreatedAt.Add(90 * 24 * time.Hour)
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validEscrowParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
