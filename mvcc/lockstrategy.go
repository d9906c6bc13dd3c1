package mvcc

// LockTransaction implements the pessimistic, lock-based strategy (C6)
// for all four isolation levels. Every write acquires the appropriate
// key-lock before delegating to the base write path; repeatable-read and
// serializable additionally take read-locks (key-locks for
// get/contains, and for serializable a full-range lock for iterate/len).
// Commit, rollback, and End all release every lock this transaction
// holds.
type LockTransaction struct {
	txBase
	repo      *JournalRepository
	protector *AccessProtector
}

// newLockTransaction is the shared constructor for all four lock-strategy
// variants; level determines read-view composition and locking below.
func newLockTransaction(id TxID, level IsolationLevel, repo *JournalRepository, protector *AccessProtector) *LockTransaction {
	return &LockTransaction{
		txBase:    txBase{id: id, level: level, state: StateNew},
		repo:      repo,
		protector: protector,
	}
}

func (t *LockTransaction) Start() error {
	if err := t.repo.CreateUncommitted(t.id); err != nil {
		return err
	}
	t.state = StateActive
	return nil
}

// view composes the read view for this transaction's isolation level
// (spec.md §4.6): read-uncommitted sees every active transaction's
// pending writes aggregated together; every other level sees only its
// own pending writes, layered over the full committed log.
func (t *LockTransaction) view() Journal {
	var uncommitted Journal
	if t.level == ReadUncommittedIsolation {
		uncommitted = t.repo.AggregatedUncommitted()
	} else {
		uncommitted, _ = t.repo.UncommittedByTx(t.id)
	}
	return NewCompositeJournal(uncommitted, t.repo.Committed(0, 0))
}

func (t *LockTransaction) Get(key any) (any, error) {
	if t.level == RepeatableReadIsolation || t.level == SerializableIsolation {
		if err := t.protector.AcquireKey(t.id, key); err != nil {
			return nil, err
		}
	}
	return getFromView(t.view(), key)
}

func (t *LockTransaction) Contains(key any) (bool, error) {
	if t.level == RepeatableReadIsolation || t.level == SerializableIsolation {
		// The lock is acquired for the calling transaction, not for the
		// queried key — the original RR __contains__ passed the key as
		// the transaction argument, which spec.md §9 flags as a bug.
		if err := t.protector.AcquireKey(t.id, key); err != nil {
			return false, err
		}
	}
	return containsInView(t.view(), key), nil
}

func (t *LockTransaction) Set(key any, value any) error {
	if err := t.protector.AcquireKey(t.id, key); err != nil {
		return err
	}
	return setInView(t.repo, t.id, key, value)
}

func (t *LockTransaction) Delete(key any) error {
	if err := t.protector.AcquireKey(t.id, key); err != nil {
		return err
	}
	return deleteInView(t.repo, t.id, t.view(), key)
}

func (t *LockTransaction) Iter() ([]any, error) {
	switch t.level {
	case SerializableIsolation:
		if err := t.protector.AcquireFull(t.id); err != nil {
			return nil, err
		}
		return presentKeysInView(t.view()), nil
	case RepeatableReadIsolation:
		keys := presentKeysInView(t.view())
		for _, k := range keys {
			if err := t.protector.AcquireKey(t.id, k); err != nil {
				return nil, err
			}
		}
		return keys, nil
	default:
		return presentKeysInView(t.view()), nil
	}
}

func (t *LockTransaction) Len() (int, error) {
	if t.level == SerializableIsolation {
		if err := t.protector.AcquireFull(t.id); err != nil {
			return 0, err
		}
	}
	return len(presentKeysInView(t.view())), nil
}

func (t *LockTransaction) Commit() error {
	if _, err := t.repo.Commit(t.id); err != nil {
		return err
	}
	t.state = StateCommitted
	t.protector.ReleaseByTx(t.id)
	return nil
}

func (t *LockTransaction) Rollback() error {
	if err := t.repo.Rollback(t.id); err != nil {
		return err
	}
	t.state = StateRolledBack
	t.protector.ReleaseByTx(t.id)
	return nil
}

// End always rolls back (never commits) and releases the uncommitted
// journal, matching spec.md §4.6's scope-exit contract.
func (t *LockTransaction) End() {
	_ = t.Rollback()
	_ = t.repo.DeleteUncommitted(t.id)
	t.state = StateEnded
}
