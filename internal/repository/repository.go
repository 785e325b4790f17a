// Package repository provides typed access to the program's account store.
// The ledger has no query language beyond ownership scanning, so every
// repository offers exactly three operations: fetch-all, fetch-by-address,
// and fetch-all with a client-side post-decode filter.
package repository

import (
	"context"
	"errors"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/ledger"
)

// AccountSource is the slice of the ledger client the repositories need.
type AccountSource interface {
	// ProgramAccounts scans program-owned accounts matching a discriminator.
	ProgramAccounts(ctx context.Context, disc ledger.Discriminator) ([]ledger.AccountEntry, error)

	// AccountData fetches one account's raw bytes.
	AccountData(ctx context.Context, addr domain.Address) ([]byte, error)
}

// DecodeFunc parses one account's raw bytes into a typed record.
type DecodeFunc[T any] func(addr domain.Address, data []byte) (T, error)

// Repository fetches and decodes accounts of a single entity kind.
type Repository[T any] struct {
	kind   domain.EntityKind
	disc   ledger.Discriminator
	source AccountSource
	decode DecodeFunc[T]
}

// New builds a repository for one entity kind.
func New[T any](kind domain.EntityKind, disc ledger.Discriminator, source AccountSource, decode DecodeFunc[T]) *Repository[T] {
	return &Repository[T]{kind: kind, disc: disc, source: source, decode: decode}
}

// Kind returns the entity kind this repository serves.
func (r *Repository[T]) Kind() domain.EntityKind {
	return r.kind
}

// FetchAll retrieves every program account matching this entity's
// discriminator and decodes each. One undecodable account fails the whole
// batch: a layout mismatch is version skew, not per-record noise, and a
// best-effort parse would silently drop records.
func (r *Repository[T]) FetchAll(ctx context.Context) ([]T, error) {
	entries, err := r.source.ProgramAccounts(ctx, r.disc)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(entries))
	for _, entry := range entries {
		record, err := r.decode(entry.Address, entry.Data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// FetchOne retrieves and decodes the account at addr. Absence is a
// NotFoundError carrying this repository's entity kind.
func (r *Repository[T]) FetchOne(ctx context.Context, addr domain.Address) (T, error) {
	var zero T
	data, err := r.source.AccountData(ctx, addr)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return zero, &domain.NotFoundError{Kind: r.kind, Address: addr}
		}
		return zero, err
	}
	return r.decode(addr, data)
}

// FetchFiltered is FetchAll with a post-decode predicate. Filtering is
// client-side over the decoded set.
func (r *Repository[T]) FetchFiltered(ctx context.Context, keep func(T) bool) ([]T, error) {
	all, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]T, 0, len(all))
	for _, record := range all {
		if keep(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}
