// Package storage persists revenue-share series state in bbolt: a
// binary ledger snapshot per series, the router and escrow status
// records, and an append-only event journal for the indexing layer.
package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/revshareorg/librevshare-go/accum"
	"github.com/revshareorg/librevshare-go/escrow"
	"github.com/revshareorg/librevshare-go/events"
	"github.com/revshareorg/librevshare-go/router"
	"github.com/revshareorg/librevshare-go/series"
)

var (
	bucketLedgers = []byte("ledgers")
	bucketRouters = []byte("routers")
	bucketEscrows = []byte("escrows")
	bucketJournal = []byte("journal")
)

func init() {
	gob.Register(events.DistributionRecorded{})
	gob.Register(events.ClaimRecorded{})
	gob.Register(events.TokensTransferred{})
	gob.Register(events.RouteSucceeded{})
	gob.Register(events.RouteFailed{})
	gob.Register(events.ValueReceived{})
	gob.Register(events.IssuerWithdrawal{})
	gob.Register(events.PrincipalDeposited{})
	gob.Register(events.PrincipalClaimed{})
	gob.Register(events.MaturityReached{})
	gob.Register(events.DefaultDeclared{})
	gob.Register(events.SaleStarted{})
	gob.Register(events.SaleStopped{})
	gob.Register(events.TokensPurchased{})
	gob.Register(events.DustRescued{})
}

// Store wraps a bbolt database holding series state and the event
// journal.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLedgers, bucketRouters, bucketEscrows, bucketJournal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// PutLedgerSnapshot stores the ledger snapshot for a series,
// replacing any previous one.
func (s *Store) PutLedgerSnapshot(id series.ID, snap *accum.Snapshot) error {
	data, err := EncodeLedgerSnapshot(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketLedgers).Put(id[:], data); err != nil {
			return fmt.Errorf("storage: put ledger snapshot: %w", err)
		}
		return nil
	})
}

// GetLedgerSnapshot retrieves the ledger snapshot for a series.
func (s *Store) GetLedgerSnapshot(id series.ID) (*accum.Snapshot, error) {
	var snap *accum.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLedgers).Get(id[:])
		if data == nil {
			return ErrNotFound
		}
		var err error
		snap, err = DecodeLedgerSnapshot(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// PutRouterStatus stores the router counters for a series.
func (s *Store) PutRouterStatus(id series.ID, st router.Status) error {
	data, err := encodeGob(&st)
	if err != nil {
		return fmt.Errorf("storage: encode router status: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRouters).Put(id[:], data); err != nil {
			return fmt.Errorf("storage: put router status: %w", err)
		}
		return nil
	})
}

// GetRouterStatus retrieves the router counters for a series.
func (s *Store) GetRouterStatus(id series.ID) (router.Status, error) {
	var st router.Status
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRouters).Get(id[:])
		if data == nil {
			return ErrNotFound
		}
		if err := decodeGob(data, &st); err != nil {
			return fmt.Errorf("storage: decode router status: %w", err)
		}
		return nil
	})
	if err != nil {
		return router.Status{}, err
	}
	return st, nil
}

// PutEscrowStatus stores the escrow lifecycle record for a series.
func (s *Store) PutEscrowStatus(id series.ID, st escrow.Status) error {
	data, err := encodeGob(&st)
	if err != nil {
		return fmt.Errorf("storage: encode escrow status: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEscrows).Put(id[:], data); err != nil {
			return fmt.Errorf("storage: put escrow status: %w", err)
		}
		return nil
	})
}

// GetEscrowStatus retrieves the escrow lifecycle record for a series.
func (s *Store) GetEscrowStatus(id series.ID) (escrow.Status, error) {
	var st escrow.Status
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEscrows).Get(id[:])
		if data == nil {
			return ErrNotFound
		}
		if err := decodeGob(data, &st); err != nil {
			return fmt.Errorf("storage: decode escrow status: %w", err)
		}
		return nil
	})
	if err != nil {
		return escrow.Status{}, err
	}
	return st, nil
}

// StoredEvent is one journal entry with its assigned sequence number.
// Sequence numbers start at 1 and are contiguous per series.
type StoredEvent struct {
	Seq   uint64
	Event events.Event
}

type journalEntry struct {
	Event events.Event
}

// AppendEvent appends an event to the series journal and returns its
// sequence number.
func (s *Store) AppendEvent(id series.ID, e events.Event) (uint64, error) {
	data, err := encodeGob(&journalEntry{Event: e})
	if err != nil {
		return 0, fmt.Errorf("storage: encode event: %w", err)
	}
	var seq uint64
	err = s.db.Update(func(tx *bbolt.Tx) error {
		jb, err := tx.Bucket(bucketJournal).CreateBucketIfNotExists(id[:])
		if err != nil {
			return fmt.Errorf("create journal bucket: %w", err)
		}
		seq, err = jb.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		return jb.Put(seqKey(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("storage: append event: %w", err)
	}
	return seq, nil
}

// EventsSince returns all journal entries for the series with a
// sequence number greater than after, in order.
func (s *Store) EventsSince(id series.ID, after uint64) ([]StoredEvent, error) {
	var out []StoredEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		jb := tx.Bucket(bucketJournal).Bucket(id[:])
		if jb == nil {
			return nil // no events yet
		}
		c := jb.Cursor()
		for k, v := c.Seek(seqKey(after + 1)); k != nil; k, v = c.Next() {
			var entry journalEntry
			if err := decodeGob(v, &entry); err != nil {
				return fmt.Errorf("storage: decode event: %w", err)
			}
			out = append(out, StoredEvent{
				Seq:   binary.BigEndian.Uint64(k),
				Event: entry.Event,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// JournalRecorder adapts a Store into an events.Recorder that appends
// every event to one series' journal. Append failures are dropped:
// recording is observability, not accounting.
type JournalRecorder struct {
	Store *Store
	ID    series.ID
}

func (j *JournalRecorder) Record(e events.Event) {
	_, _ = j.Store.AppendEvent(j.ID, e)
}

// seqKey encodes a sequence number as an 8-byte big-endian key for
// sorted iteration.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
