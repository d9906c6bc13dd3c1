package mvcc

import "github.com/tidwall/btree"

// Strategy selects between the pessimistic lock-based and optimistic
// multi-version concurrency-control families (spec.md §6).
type Strategy uint8

const (
	StrategyLock Strategy = iota
	StrategyMultiVersion
)

func (s Strategy) String() string {
	switch s {
	case StrategyLock:
		return "lock"
	case StrategyMultiVersion:
		return "multi-version"
	default:
		return "unknown"
	}
}

// TransactionFactory selects and constructs the correct transaction
// variant from (strategy, isolation level) (C8). A single factory owns
// one JournalRepository and one AccessProtector, shared across every
// transaction it constructs — spec.md §5's "shared-resource policy".
type TransactionFactory struct {
	repo      *JournalRepository
	protector *AccessProtector
	nextID    TxID
	// live tracks every transaction this factory has ever constructed,
	// ordered by id. It generalizes the teacher's
	// btree.Map[uint64, Transaction] handle registry; unlike the
	// teacher, it feeds no conflict-detection decision here (spec.md's
	// detectors are journal-based, not visibility-based) and exists only
	// for diagnostics (ActiveTransactionIDs).
	live btree.Map[TxID, Transaction]
}

// NewTransactionFactory wires a fresh factory around repo, with its own
// AccessProtector for lock-strategy transactions.
func NewTransactionFactory(repo *JournalRepository) *TransactionFactory {
	return &TransactionFactory{
		repo:      repo,
		protector: NewAccessProtector(),
		nextID:    1,
	}
}

// New constructs a not-yet-started transaction for the given strategy
// and isolation level. Multi-version does not implement
// ReadUncommittedIsolation; attempting to construct it fails with
// RepositoryError, per spec.md §6.
func (f *TransactionFactory) New(strategy Strategy, level IsolationLevel) (Transaction, error) {
	id := f.nextID
	f.nextID++

	var tx Transaction
	switch strategy {
	case StrategyLock:
		tx = newLockTransaction(id, level, f.repo, f.protector)
	case StrategyMultiVersion:
		if level == ReadUncommittedIsolation {
			return nil, NewRepositoryError("multi-version strategy does not implement read-uncommitted isolation")
		}
		tx = newMVTransaction(id, level, f.repo)
	default:
		return nil, NewRepositoryError("unknown strategy")
	}

	f.live.Set(id, tx)
	Debug("created transaction", id, "strategy", strategy, "level", level)
	return tx, nil
}

// ActiveTransactionIDs lists the ids of every transaction this factory
// has constructed that is currently in StateActive. Diagnostic only.
func (f *TransactionFactory) ActiveTransactionIDs() []TxID {
	var ids []TxID
	iter := f.live.Iter()
	for ok := iter.First(); ok; ok = iter.Next() {
		if iter.Value().State() == StateActive {
			ids = append(ids, iter.Key())
		}
	}
	return ids
}
