package mvcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMVTx(t *testing.T, f *TransactionFactory, level IsolationLevel) Transaction {
	t.Helper()
	tx, err := f.New(StrategyMultiVersion, level)
	require.NoError(t, err)
	require.NoError(t, tx.Start())
	t.Cleanup(tx.End)
	return tx
}

func seedMVCommitted(t *testing.T, f *TransactionFactory, key, value any) {
	t.Helper()
	seed := newMVTx(t, f, ReadCommittedIsolation)
	require.NoError(t, seed.Set(key, value))
	require.NoError(t, seed.Commit())
}

// S5: MV write-write conflict.
func TestS5MVWriteWriteConflict(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")

	t1 := newMVTx(t, f, ReadCommittedIsolation)
	t2 := newMVTx(t, f, ReadCommittedIsolation)

	require.NoError(t, t1.Set("k1", "v2"))
	require.NoError(t, t2.Set("k1", "v3"))

	require.NoError(t, t2.Commit())

	err := t1.Commit()
	require.Error(t, err)
	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

// S6: MV repeatable-read snapshot isolation.
func TestS6MVRepeatableReadSnapshot(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")

	t1 := newMVTx(t, f, RepeatableReadIsolation)
	t2 := newMVTx(t, f, RepeatableReadIsolation)

	require.NoError(t, t2.Set("k1", "v2"))
	require.NoError(t, t2.Commit())

	v, err := t1.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "t1's snapshot predates t2's commit")
}

// S7: MV serializable phantom detected via a length observation.
func TestS7MVSerializableLenPhantom(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")
	seedMVCommitted(t, f, "k2", "v2")

	t1 := newMVTx(t, f, SerializableIsolation)
	t2 := newMVTx(t, f, SerializableIsolation)

	n, err := t1.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, t2.Set("k3", "v3"))
	require.NoError(t, t2.Commit())

	err = t1.Commit()
	require.Error(t, err)
	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

// S8: a length-stable concurrent insert+delete does not conflict.
func TestS8MVSerializableLengthStableEditIsNotAConflict(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")
	seedMVCommitted(t, f, "k2", "v2")

	t1 := newMVTx(t, f, SerializableIsolation)
	t2 := newMVTx(t, f, SerializableIsolation)

	n, err := t1.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, t2.Set("k3", "v3"))
	require.NoError(t, t2.Delete("k2"))
	require.NoError(t, t2.Commit())

	require.NoError(t, t1.Commit())
}

func TestMVTransactionGetMissingKeyIsNotFound(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	tx := newMVTx(t, f, ReadCommittedIsolation)

	_, err := tx.Get("missing")
	require.Error(t, err)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMVTransactionRollbackDiscardsWrites(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)

	tx := newMVTx(t, f, ReadCommittedIsolation)
	require.NoError(t, tx.Set("k1", "v1"))
	require.NoError(t, tx.Rollback())

	reader := newMVTx(t, f, ReadCommittedIsolation)
	_, err := reader.Get("k1")
	require.Error(t, err)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMVSerializableGetObservationConflictsWithConcurrentWrite(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")

	t1 := newMVTx(t, f, SerializableIsolation)
	t2 := newMVTx(t, f, SerializableIsolation)

	_, err := t1.Get("k1")
	require.NoError(t, err)

	require.NoError(t, t2.Set("k1", "v2"))
	require.NoError(t, t2.Commit())

	err = t1.Commit()
	require.Error(t, err)
	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestMVSerializableContainsRecordsSingleObservation(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")

	t1 := newMVTx(t, f, SerializableIsolation)
	found, err := t1.Contains("k1")
	require.NoError(t, err)
	assert.True(t, found)

	t2 := newMVTx(t, f, SerializableIsolation)
	require.NoError(t, t2.Delete("k1"))
	require.NoError(t, t2.Commit())

	err = t1.Commit()
	require.Error(t, err, "the recorded Contains observation conflicts with the concurrent delete")
	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestMVTransactionRefreshesTargetOffsetAfterCommit(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", "v1")

	t1 := newMVTx(t, f, RepeatableReadIsolation)
	t2 := newMVTx(t, f, RepeatableReadIsolation)

	require.NoError(t, t2.Set("k2", "v2"))
	require.NoError(t, t2.Commit())

	require.NoError(t, t1.Set("k3", "v3"))
	require.NoError(t, t1.Commit())

	// after commit, t1's snapshot has advanced, so a fresh read sees k2.
	v, err := t1.Get("k2")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

// A stored value's dynamic type need not be comparable (spec.md only
// requires keys to be hashable); checkIntegrity must not panic when
// comparing cells holding slice values with Go's native `==`.
func TestMVSerializableCommitDoesNotPanicOnUncomparableValue(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", []int{1, 2, 3})

	t1 := newMVTx(t, f, SerializableIsolation)
	t2 := newMVTx(t, f, SerializableIsolation)

	_, err := t1.Get("k1")
	require.NoError(t, err)

	require.NoError(t, t2.Set("k1", []int{4, 5, 6}))
	require.NoError(t, t2.Commit())

	assert.NotPanics(t, func() {
		err = t1.Commit()
	})
	require.Error(t, err, "differing slice values committed concurrently still conflict")
	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestMVSerializableCommitAcceptsEqualUncomparableValue(t *testing.T) {
	repo := NewJournalRepository()
	f := NewTransactionFactory(repo)
	seedMVCommitted(t, f, "k1", []int{1, 2, 3})

	t1 := newMVTx(t, f, SerializableIsolation)
	t2 := newMVTx(t, f, SerializableIsolation)

	_, err := t1.Get("k1")
	require.NoError(t, err)

	require.NoError(t, t2.Set("k1", []int{1, 2, 3}))
	require.NoError(t, t2.Commit())

	require.NoError(t, t1.Commit(), "an equal (DeepEqual) slice value is not a conflict")
}
