// Package transdict provides the outer dictionary-like façade over the
// mvcc transactional engine: a single-shot, auto-committing
// key/value container (TransactionDict) and a stateful, at-most-one-
// open-transaction façade (Session). Both are deliberately thin — the
// isolation-aware read-view assembly and conflict detection live in
// package mvcc.
package transdict

import "github.com/mukeshjc/transdict/mvcc"

// TransactionDict behaves like an associative container: every
// single-shot operation opens a fresh read-committed transaction,
// performs the operation, and (for writes) commits before returning.
// Grounded on the original entrypoints/locallib/transaction_dict.py.
type TransactionDict struct {
	factory  *mvcc.TransactionFactory
	strategy mvcc.Strategy
}

// New wraps an existing factory, using strategy for every transaction it
// opens.
func New(factory *mvcc.TransactionFactory, strategy mvcc.Strategy) *TransactionDict {
	return &TransactionDict{factory: factory, strategy: strategy}
}

// NewInMemory builds a fresh in-memory journal repository and factory
// for strategy, ready to use.
func NewInMemory(strategy mvcc.Strategy) *TransactionDict {
	repo := mvcc.NewJournalRepository()
	return New(mvcc.NewTransactionFactory(repo), strategy)
}

func (d *TransactionDict) open() (mvcc.Transaction, error) {
	tx, err := d.factory.New(d.strategy, mvcc.ReadCommittedIsolation)
	if err != nil {
		return nil, err
	}
	if err := tx.Start(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Get returns the value stored under key, or a NotFoundError if absent
// or tombstoned.
func (d *TransactionDict) Get(key any) (any, error) {
	tx, err := d.open()
	if err != nil {
		return nil, err
	}
	defer tx.End()
	return tx.Get(key)
}

// Set stores value under key and commits immediately.
func (d *TransactionDict) Set(key, value any) error {
	tx, err := d.open()
	if err != nil {
		return err
	}
	defer tx.End()
	if err := tx.Set(key, value); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes key and commits immediately; it fails with
// NotFoundError if key isn't currently present.
func (d *TransactionDict) Delete(key any) error {
	tx, err := d.open()
	if err != nil {
		return err
	}
	defer tx.End()
	if err := tx.Delete(key); err != nil {
		return err
	}
	return tx.Commit()
}

// Contains reports whether key currently has a present (non-tombstoned)
// value.
func (d *TransactionDict) Contains(key any) (bool, error) {
	tx, err := d.open()
	if err != nil {
		return false, err
	}
	defer tx.End()
	return tx.Contains(key)
}

// Len returns the number of present keys.
func (d *TransactionDict) Len() (int, error) {
	tx, err := d.open()
	if err != nil {
		return 0, err
	}
	defer tx.End()
	return tx.Len()
}

// ForEach returns every present key, read-committed as of the call.
func (d *TransactionDict) ForEach() ([]any, error) {
	tx, err := d.open()
	if err != nil {
		return nil, err
	}
	defer tx.End()
	return tx.Iter()
}
