// Package resolver joins records across repositories using their embedded
// public-key fields. The ledger enforces no foreign keys, so relations are
// resolved here: direct sets first (owned entities of each kind), then their
// derived addresses become lookup sets for membership scans over dependent
// collections. Resolution runs after all contributing fetches complete and
// never double-counts a record matched by more than one path.
package resolver

import (
	"github.com/veritrace/supplyview/internal/domain"
)

// Owned returns the records whose owner field equals the target identity
// (the direct join pattern).
func Owned[T any](records []T, owner domain.Address, ownerOf func(T) domain.Address) []T {
	matched := make([]T, 0, len(records))
	for _, r := range records {
		if ownerOf(r) == owner {
			matched = append(matched, r)
		}
	}
	return matched
}

// Addresses builds the derived-address lookup set for a resolved record set.
// Dependent collections are scanned against this set instead of re-scanning
// the owned records per relation check.
func Addresses[T any](records []T, addressOf func(T) domain.Address) domain.AddressSet {
	set := make(domain.AddressSet, len(records))
	for _, r := range records {
		set.Add(addressOf(r))
	}
	return set
}

// Related returns the records whose relation field is a member of the
// address set (the indirect join pattern), deduplicated by record address.
func Related[T any](records []T, set domain.AddressSet, relationOf, addressOf func(T) domain.Address) []T {
	matched := make([]T, 0, len(records))
	seen := make(domain.AddressSet, len(records))
	for _, r := range records {
		if !set.Contains(relationOf(r)) {
			continue
		}
		addr := addressOf(r)
		if seen.Contains(addr) {
			continue
		}
		seen.Add(addr)
		matched = append(matched, r)
	}
	return matched
}

// SplitTransactions partitions ledger payments into received and sent
// relative to the owned-address set. A transaction whose counterparties both
// fall inside the set appears in each list once; no record is ever
// duplicated within a list even when matched via multiple owned addresses.
func SplitTransactions(txs []*domain.Transaction, owned domain.AddressSet) (received, sent []*domain.Transaction) {
	seenReceived := make(domain.AddressSet, len(txs))
	seenSent := make(domain.AddressSet, len(txs))
	for _, tx := range txs {
		if owned.Contains(tx.To) && !seenReceived.Contains(tx.Address) {
			seenReceived.Add(tx.Address)
			received = append(received, tx)
		}
		if owned.Contains(tx.From) && !seenSent.Contains(tx.Address) {
			seenSent.Add(tx.Address)
			sent = append(sent, tx)
		}
	}
	return received, sent
}
