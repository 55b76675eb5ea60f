// Package badgerstore is the production Store backend (spec.md §4.4),
// backed by BadgerDB. Keys are namespaced by direction and big-endian
// sequence number so that FetchRange is a cheap prefix-bounded iterator
// scan, the same key-namespace-by-prefix design the teacher's
// pkg/metadata/store/badger/encoding.go uses for its own append-heavy
// collections.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/pkg/metrics"
)

func unixNanoToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// Key namespace:
//
//	Data Type        Prefix   Key Format                 Value
//	Outbound record  "o:"     o:<seq:u64 BE>             record (JSON)
//	Inbound record   "i:"     i:<seq:u64 BE>              record (JSON)
//	Epoch            "e:"     e:epoch                     string
const (
	prefixOut   = 'o'
	prefixIn    = 'i'
	epochKeyStr = "e:epoch"
)

type Store struct {
	db      *badger.DB
	metrics *metrics.StoreMetrics
}

// Open opens (creating if necessary) a BadgerDB database at path as the
// durable backing store for one FIX session.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", path, err)
	}
	return &Store{db: db, metrics: metrics.NewStoreMetrics()}, nil
}

func recordKey(direction store.Direction, seq uint64) []byte {
	prefix := byte(prefixIn)
	if direction == store.Out {
		prefix = prefixOut
	}
	key := make([]byte, 1+1+8)
	key[0] = prefix
	key[1] = ':'
	binary.BigEndian.PutUint64(key[2:], seq)
	return key
}

func rangeBounds(direction store.Direction, from, to uint64) ([]byte, []byte) {
	return recordKey(direction, from), recordKey(direction, to)
}

type wireRecord struct {
	MsgType   string `json:"msg_type"`
	RawBytes  []byte `json:"raw_bytes"`
	Timestamp int64  `json:"timestamp_unix_nano"`
}

func (s *Store) Append(ctx context.Context, rec store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := recordKey(rec.Direction, rec.SeqNum)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return nil // idempotent: already durable
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		val, err := json.Marshal(wireRecord{
			MsgType:   rec.MsgType,
			RawBytes:  rec.RawBytes,
			Timestamp: rec.Timestamp.UnixNano(),
		})
		if err != nil {
			return err
		}
		return txn.Set(key, val)
	})
	if err != nil {
		return fmt.Errorf("badgerstore: append %s %d: %w", rec.Direction, rec.SeqNum, err)
	}
	if s.metrics != nil {
		s.metrics.RecordAppend(rec.Direction.String())
	}
	return nil
}

func (s *Store) FetchRange(ctx context.Context, direction store.Direction, from, to uint64) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lo, hi := rangeBounds(direction, from, to)
	var out []store.Record

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(lo); it.Valid(); it.Next() {
			item := it.Item()
			if compareKeys(item.KeyCopy(nil), hi) > 0 {
				break
			}
			seq := binary.BigEndian.Uint64(item.Key()[2:])
			var rec wireRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, store.Record{
				Direction: direction,
				SeqNum:    seq,
				MsgType:   rec.MsgType,
				RawBytes:  rec.RawBytes,
				Timestamp: unixNanoToTime(rec.Timestamp),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: fetch range %s [%d,%d]: %w", direction, from, to, err)
	}
	return out, nil
}

func (s *Store) HighestSeq(ctx context.Context, direction store.Direction) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte{byte(prefixOut), ':'}
	if direction == store.In {
		prefix = []byte{byte(prefixIn), ':'}
	}

	var max uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		it.Seek(seekKey)
		if it.ValidForPrefix(prefix) {
			max = binary.BigEndian.Uint64(it.Item().Key()[2:])
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badgerstore: highest seq %s: %w", direction, err)
	}
	return max, nil
}

func (s *Store) Reset(ctx context.Context, epoch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var current string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(epochKeyStr))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			current = string(val)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("badgerstore: read epoch: %w", err)
	}

	if current == epoch {
		return nil
	}

	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("badgerstore: reset drop: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(epochKeyStr), []byte(epoch))
	}); err != nil {
		return fmt.Errorf("badgerstore: reset write epoch: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func compareKeys(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
