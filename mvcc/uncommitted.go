package mvcc

// TxID is the opaque integer handle a transaction is identified by,
// replacing object-identity equality (spec.md §9's re-architected
// pattern). Allocated by TransactionFactory, monotonically increasing,
// starting at 1 so the zero value can mean "no transaction".
type TxID uint64

// UncommittedStore holds one writable journal per currently active
// transaction (C2). All mutation of it is expected to funnel through
// JournalRepository (C4).
type UncommittedStore struct {
	journals map[TxID]*MutableJournal
}

// NewUncommittedStore returns an empty store.
func NewUncommittedStore() *UncommittedStore {
	return &UncommittedStore{journals: make(map[TxID]*MutableJournal)}
}

// Create installs an empty mutable journal for tx. It fails with a
// RepositoryError if tx already has one (spec.md §4.2, I1).
func (s *UncommittedStore) Create(tx TxID) error {
	if _, exists := s.journals[tx]; exists {
		return NewRepositoryError("uncommitted journal already exists for transaction")
	}
	s.journals[tx] = NewMutableJournal()
	return nil
}

// View returns a read-only leaf view of tx's own journal.
func (s *UncommittedStore) View(tx TxID) (Journal, error) {
	j, ok := s.journals[tx]
	if !ok {
		return nil, NewRepositoryError("no uncommitted journal for transaction")
	}
	return NewLeafJournal(j), nil
}

// ViewAll returns a composite over every currently active transaction's
// journal (used by the read-uncommitted read view). Order across
// transactions is unspecified and follows Go map iteration, so it may
// differ from one call to the next; isolation semantics never depend on which concurrent writer's
// value shadows another's, since well-behaved readers only care about
// their own pending writes plus the committed log.
func (s *UncommittedStore) ViewAll() Journal {
	journals := make([]Journal, 0, len(s.journals))
	for _, j := range s.journals {
		journals = append(journals, j)
	}
	return NewCompositeJournal(journals...)
}

// Put appends key/cell to tx's journal, last-write-wins within the
// transaction.
func (s *UncommittedStore) Put(tx TxID, key any, cell Cell) error {
	j, ok := s.journals[tx]
	if !ok {
		return NewRepositoryError("no uncommitted journal for transaction")
	}
	j.Put(key, cell)
	return nil
}

// Delete removes tx's entry from the store entirely (not a tombstone
// write; see Recreate, used after commit/rollback).
func (s *UncommittedStore) Delete(tx TxID) error {
	if _, ok := s.journals[tx]; !ok {
		return NewRepositoryError("no uncommitted journal for transaction")
	}
	delete(s.journals, tx)
	return nil
}

// Recreate deletes then recreates tx's journal, used after commit and
// rollback so a transaction can be reused by re-entering scope.
func (s *UncommittedStore) Recreate(tx TxID) error {
	if err := s.Delete(tx); err != nil {
		return err
	}
	return s.Create(tx)
}
