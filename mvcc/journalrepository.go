package mvcc

// JournalRepository is a thin aggregation of the UncommittedStore (C2)
// and CommittedLog (C3). Every façade mutates the uncommitted store only
// through this repository (spec.md §4.4).
type JournalRepository struct {
	uncommitted *UncommittedStore
	committed   *CommittedLog
}

// NewJournalRepository wires a fresh, empty uncommitted store and
// committed log together.
func NewJournalRepository() *JournalRepository {
	return &JournalRepository{
		uncommitted: NewUncommittedStore(),
		committed:   NewCommittedLog(),
	}
}

// CreateUncommitted installs an empty write journal for tx.
func (r *JournalRepository) CreateUncommitted(tx TxID) error {
	return r.uncommitted.Create(tx)
}

// DeleteUncommitted removes tx's write journal entirely.
func (r *JournalRepository) DeleteUncommitted(tx TxID) error {
	return r.uncommitted.Delete(tx)
}

// PutUncommitted records key/cell into tx's write journal.
func (r *JournalRepository) PutUncommitted(tx TxID, key any, cell Cell) error {
	return r.uncommitted.Put(tx, key, cell)
}

// UncommittedByTx returns a read-only view of tx's own write journal.
func (r *JournalRepository) UncommittedByTx(tx TxID) (Journal, error) {
	return r.uncommitted.View(tx)
}

// AggregatedUncommitted returns a composite over every active
// transaction's write journal (used by read-uncommitted).
func (r *JournalRepository) AggregatedUncommitted() Journal {
	return r.uncommitted.ViewAll()
}

// Committed returns a ranged view of the committed log, lo==0 meaning
// "from the start" and hi==0 meaning "through the end".
func (r *JournalRepository) Committed(lo, hi uint64) Journal {
	return r.committed.View(lo, hi)
}

// CommittedSince returns everything committed strictly after offset —
// the "ahead journal" for multi-version conflict checks.
func (r *JournalRepository) CommittedSince(offset uint64) Journal {
	return r.committed.ViewSince(offset)
}

// LastOffset is the committed log's current offset counter.
func (r *JournalRepository) LastOffset() uint64 {
	return r.committed.LastOffset()
}

// Commit takes tx's current write journal, appends it to the committed
// log, then recycles tx's uncommitted journal so the transaction can
// keep writing (or be reused after a fresh Start).
func (r *JournalRepository) Commit(tx TxID) (uint64, error) {
	journal, err := r.uncommitted.View(tx)
	if err != nil {
		return 0, err
	}
	offset := r.committed.Append(journal)
	if err := r.uncommitted.Recreate(tx); err != nil {
		return 0, err
	}
	return offset, nil
}

// Rollback discards tx's pending writes by recreating its uncommitted
// journal; nothing is appended to the committed log.
func (r *JournalRepository) Rollback(tx TxID) error {
	return r.uncommitted.Recreate(tx)
}
