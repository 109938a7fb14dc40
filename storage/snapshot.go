package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/revshareorg/librevshare-go/accum"
	"github.com/revshareorg/librevshare-go/series"
)

// Ledger snapshots use a fixed big-endian layout:
//
//	total_units(8) | acc_per_unit(bigint) | total_received(bigint) |
//	total_claimed(bigint) | num_holders(4) |
//	num_holders * ( address(20) | balance(8) | checkpoint(bigint) | pending(bigint) )
//
// where bigint is a 2-byte length prefix followed by the magnitude
// bytes. All stored quantities are non-negative.

// EncodeLedgerSnapshot serializes a ledger snapshot to binary format.
func EncodeLedgerSnapshot(snap *accum.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if len(snap.Holders) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d holders", ErrInvalidSnapshotData, len(snap.Holders))
	}

	buf := make([]byte, 0, 64+48*len(snap.Holders))
	buf = binary.BigEndian.AppendUint64(buf, snap.TotalUnits)

	var err error
	if buf, err = appendBigInt(buf, snap.AccPerUnit); err != nil {
		return nil, err
	}
	if buf, err = appendBigInt(buf, snap.TotalReceived); err != nil {
		return nil, err
	}
	if buf, err = appendBigInt(buf, snap.TotalClaimed); err != nil {
		return nil, err
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(snap.Holders)))
	for _, h := range snap.Holders {
		buf = append(buf, h.Address[:]...)
		buf = binary.BigEndian.AppendUint64(buf, h.Balance)
		if buf, err = appendBigInt(buf, h.Checkpoint); err != nil {
			return nil, err
		}
		if buf, err = appendBigInt(buf, h.Pending); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeLedgerSnapshot deserializes binary data into a ledger snapshot.
func DecodeLedgerSnapshot(data []byte) (*accum.Snapshot, error) {
	r := reader{data: data}

	snap := &accum.Snapshot{}
	snap.TotalUnits = r.uint64()
	snap.AccPerUnit = r.bigInt()
	snap.TotalReceived = r.bigInt()
	snap.TotalClaimed = r.bigInt()

	numHolders := int(r.uint32())
	if r.err == nil && numHolders > 0 {
		// An encoded holder is at least 32 bytes, so the count field
		// cannot demand more capacity than the buffer could hold.
		capHint := numHolders
		if max := len(data) / 32; capHint > max {
			capHint = max
		}
		snap.Holders = make([]accum.HolderState, 0, capHint)
		for i := 0; i < numHolders; i++ {
			var h accum.HolderState
			copy(h.Address[:], r.bytes(series.AddressLen))
			h.Balance = r.uint64()
			h.Checkpoint = r.bigInt()
			h.Pending = r.bigInt()
			if r.err != nil {
				break
			}
			snap.Holders = append(snap.Holders, h)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSnapshotData, len(data)-r.off)
	}
	return snap, nil
}

func appendBigInt(buf []byte, v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: nil or negative big int", ErrInvalidSnapshotData)
	}
	b := v.Bytes()
	if len(b) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: big int too large", ErrInvalidSnapshotData)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(b)))
	return append(buf, b...), nil
}

// reader walks the fixed layout, latching the first error.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrInvalidSnapshotData, r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) uint64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) uint32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) bigInt() *big.Int {
	lb := r.bytes(2)
	if lb == nil {
		return nil
	}
	n := int(binary.BigEndian.Uint16(lb))
	b := r.bytes(n)
	if r.err != nil {
		return nil
	}
	return new(big.Int).SetBytes(b)
}
