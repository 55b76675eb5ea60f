// Package memstore is a pure in-memory Store, used by tests and by
// callers that don't need crash durability (spec.md §4.4 is a contract;
// this is the simplest implementation of it, the in-memory counterpart to
// the teacher's pkg/store/metadata/memory backend).
package memstore

import (
	"context"
	"sync"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
)

type direction = store.Direction

type Store struct {
	mu    sync.Mutex
	epoch string
	out   map[uint64]store.Record
	in    map[uint64]store.Record
}

func New() *Store {
	return &Store{
		out: make(map[uint64]store.Record),
		in:  make(map[uint64]store.Record),
	}
}

func (s *Store) bucket(d direction) map[uint64]store.Record {
	if d == store.Out {
		return s.out
	}
	return s.in
}

func (s *Store) Append(_ context.Context, rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(rec.Direction)
	if _, exists := b[rec.SeqNum]; exists {
		return nil // idempotent
	}
	b[rec.SeqNum] = rec
	return nil
}

func (s *Store) FetchRange(_ context.Context, d direction, from, to uint64) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(d)
	out := make([]store.Record, 0, to-from+1)
	for seq := from; seq <= to; seq++ {
		if rec, ok := b[seq]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) HighestSeq(_ context.Context, d direction) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(d)
	var max uint64
	for seq := range b {
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (s *Store) Reset(_ context.Context, epoch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch == epoch {
		return nil
	}
	s.epoch = epoch
	s.out = make(map[uint64]store.Record)
	s.in = make(map[uint64]store.Record)
	return nil
}

func (s *Store) Close() error {
	return nil
}
