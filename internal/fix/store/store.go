// Package store defines the durable message store contract (spec.md §4.4).
// The pure in-memory implementation lives in the memstore subpackage and
// the production implementations in the badgerstore and sqlstore
// subpackages; the
// engine depends only on the Store interface (spec.md §9 "trait-shaped
// boundary").
package store

import (
	"context"
	"time"
)

// Direction distinguishes sent from received messages.
type Direction int

const (
	Out Direction = iota
	In
)

func (d Direction) String() string {
	if d == Out {
		return "Out"
	}
	return "In"
}

// Record is one durably-stored message.
type Record struct {
	Direction Direction
	SeqNum    uint64
	MsgType   string
	RawBytes  []byte
	Timestamp time.Time
}

// Store is the durable, append-only, sequence-indexed contract the
// session engine requires (spec.md §4.4). Implementations MUST make
// Append durable and idempotent, and MUST make an outbound Append
// happens-before the corresponding socket write (the durability
// guarantee in §4.4 and the ordering guarantee in §5).
type Store interface {
	// Append durably records one message. If a record with the same
	// (direction, seq_num) already exists, Append succeeds without
	// change (idempotent).
	Append(ctx context.Context, rec Record) error

	// FetchRange returns stored records for direction with seq_num in
	// [fromInclusive, toInclusive], in ascending seq_num order.
	FetchRange(ctx context.Context, direction Direction, fromInclusive, toInclusive uint64) ([]Record, error)

	// HighestSeq returns the highest seq_num stored for direction, or 0
	// if none.
	HighestSeq(ctx context.Context, direction Direction) (uint64, error)

	// Reset discards all state and records epoch if the stored epoch
	// differs from epoch; otherwise it is a no-op.
	Reset(ctx context.Context, epoch string) error

	// Close releases any resources held by the store.
	Close() error
}
