package mvcc

import (
	"fmt"
	"reflect"
)

// MVTransaction implements the optimistic, multi-version strategy (C7)
// for read-committed, repeatable-read, and serializable (read-uncommitted
// has no meaning under MV — see TransactionFactory). Conflicts are
// detected at commit time rather than at acquisition time: Commit
// snapshots the "ahead journal" (everything committed after this
// transaction's target_offset watermark) and runs checkIntegrity against
// it before appending.
type MVTransaction struct {
	txBase
	repo         *JournalRepository
	targetOffset uint64

	// fullBlock/lenBlock are only ever set by the serializable variant's
	// Iter/Len; they stay false (inert) for read-committed and
	// repeatable-read, which makes checkIntegrity's base predicate the
	// only thing that ever fires for those two levels.
	fullBlock bool
	lenBlock  bool
}

// newMVTransaction is the shared constructor for all three MV variants.
func newMVTransaction(id TxID, level IsolationLevel, repo *JournalRepository) *MVTransaction {
	return &MVTransaction{
		txBase: txBase{id: id, level: level, state: StateNew},
		repo:   repo,
	}
}

func (t *MVTransaction) Start() error {
	if err := t.repo.CreateUncommitted(t.id); err != nil {
		return err
	}
	t.targetOffset = t.repo.LastOffset()
	t.state = StateActive
	return nil
}

// view composes the read view for this transaction's isolation level
// (spec.md §4.7): read-committed always sees the newest committed state;
// repeatable-read and serializable are frozen at target_offset.
func (t *MVTransaction) view() Journal {
	uncommitted, _ := t.repo.UncommittedByTx(t.id)
	if t.level == ReadCommittedIsolation {
		return NewCompositeJournal(uncommitted, t.repo.Committed(0, 0))
	}
	if t.targetOffset == 0 {
		// Nothing was committed when the snapshot was taken; hi == 0 would
		// mean "through the end", so the view carries no committed part.
		return NewCompositeJournal(uncommitted)
	}
	return NewCompositeJournal(uncommitted, t.repo.Committed(0, t.targetOffset))
}

// observe records cell (or a tombstone, if the key wasn't found at all)
// into this transaction's own write journal, so it participates in
// check_integrity at commit time. Only the serializable level calls it.
func (t *MVTransaction) observe(key any, cell Cell, found bool) {
	if !found {
		cell = TombstoneCell()
	}
	_ = t.repo.PutUncommitted(t.id, key, cell)
}

func (t *MVTransaction) Get(key any) (any, error) {
	cell, ok := t.view().Get(key)
	if t.level == SerializableIsolation {
		t.observe(key, cell, ok)
	}
	if !ok || !cell.IsPresent() {
		return nil, NewNotFoundError(key)
	}
	v, _ := cell.Value()
	return v, nil
}

func (t *MVTransaction) Contains(key any) (bool, error) {
	cell, ok := t.view().Get(key)
	if t.level == SerializableIsolation {
		// A single observation is recorded here and reused for the
		// boolean result, rather than looking the key up twice (spec.md
		// §9's Open Question on the original's double-lookup).
		t.observe(key, cell, ok)
	}
	return ok && cell.IsPresent(), nil
}

func (t *MVTransaction) Set(key any, value any) error {
	return setInView(t.repo, t.id, key, value)
}

func (t *MVTransaction) Delete(key any) error {
	return deleteInView(t.repo, t.id, t.view(), key)
}

func (t *MVTransaction) Iter() ([]any, error) {
	view := t.view()
	keys := presentKeysInView(view)
	if t.level == SerializableIsolation {
		for _, k := range keys {
			cell, ok := view.Get(k)
			t.observe(k, cell, ok)
		}
		t.fullBlock = true
	}
	return keys, nil
}

func (t *MVTransaction) Len() (int, error) {
	if t.level == SerializableIsolation {
		t.lenBlock = true
	}
	return len(presentKeysInView(t.view())), nil
}

// checkIntegrity is the conflict predicate spec.md §4.7 describes: the
// serializable additions (full_block / len_block) are checked first,
// then the base predicate every level shares — any key this transaction
// wrote or observed that the ahead journal also touched, with a
// different resulting cell, is a conflict.
func (t *MVTransaction) checkIntegrity(txJournal, ahead Journal) error {
	if t.fullBlock && ahead.Len() > 0 {
		return NewSerializationError("a full scan observed no concurrent commits, but one landed before commit")
	}
	if t.lenBlock {
		counter := 0
		for _, k := range ahead.Keys() {
			if c, _ := ahead.Get(k); c.IsPresent() {
				counter++
			} else {
				counter--
			}
		}
		if counter != 0 {
			return NewSerializationError("a length observation is contradicted by net-length-changing concurrent commits")
		}
	}
	for _, k := range txJournal.Keys() {
		aheadCell, ok := ahead.Get(k)
		if !ok {
			continue
		}
		txCell, _ := txJournal.Get(k)
		if !cellsEqual(aheadCell, txCell) {
			return NewSerializationError(fmt.Sprintf("key %v was committed concurrently with a different value", k))
		}
	}
	return nil
}

func (t *MVTransaction) Commit() error {
	txJournal, err := t.repo.UncommittedByTx(t.id)
	if err != nil {
		return err
	}
	ahead := t.repo.CommittedSince(t.targetOffset)
	if err := t.checkIntegrity(txJournal, ahead); err != nil {
		return err
	}
	if _, err := t.repo.Commit(t.id); err != nil {
		return err
	}
	t.state = StateCommitted
	t.targetOffset = t.repo.LastOffset()
	t.fullBlock = false
	t.lenBlock = false
	return nil
}

func (t *MVTransaction) Rollback() error {
	if err := t.repo.Rollback(t.id); err != nil {
		return err
	}
	t.state = StateRolledBack
	t.targetOffset = t.repo.LastOffset()
	t.fullBlock = false
	t.lenBlock = false
	return nil
}

func (t *MVTransaction) End() {
	_ = t.Rollback()
	_ = t.repo.DeleteUncommitted(t.id)
	t.state = StateEnded
}

// cellsEqual compares two cells for the conflict predicate: two
// tombstones are always equal; two present cells are equal iff their
// values compare equal. spec.md's domain only requires keys to be
// hashable — values carry no such constraint, so a stored value's
// dynamic type (slice, map, func, or a struct/array embedding one) may
// not support Go's native `==` at all. reflect.DeepEqual handles every
// dynamic type without panicking, unlike `==` on an `any` holding a
// non-comparable value.
func cellsEqual(a, b Cell) bool {
	if a.present != b.present {
		return false
	}
	if !a.present {
		return true
	}
	return reflect.DeepEqual(a.value, b.value)
}
