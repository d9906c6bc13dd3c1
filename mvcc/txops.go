package mvcc

// txBase holds the state every transaction variant shares: its opaque
// handle, isolation level, and lifecycle state. Concrete variants embed
// it and implement their own Start/Commit/Rollback/Get/Set/Delete/
// Contains/Iter/Len — Go has no virtual dispatch, so the read-view
// composition and lock/observation hooks each level needs live directly
// on the concrete type rather than being overridden from a shared base,
// mirroring spec.md §9's redesign note about replacing the original's
// class hierarchy with explicit, no-magic state.
type txBase struct {
	id    TxID
	level IsolationLevel
	state TransactionState
}

func (b *txBase) ID() TxID                       { return b.id }
func (b *txBase) IsolationLevel() IsolationLevel { return b.level }
func (b *txBase) State() TransactionState        { return b.state }

// getFromView implements the outer-facing Get contract shared by every
// variant: Present(v) becomes v, Tombstone or absence becomes
// NotFoundError (spec.md §4.1).
func getFromView(view Journal, key any) (any, error) {
	cell, ok := view.Get(key)
	if !ok || !cell.IsPresent() {
		return nil, NewNotFoundError(key)
	}
	v, _ := cell.Value()
	return v, nil
}

// containsInView implements the shared Contains contract.
func containsInView(view Journal, key any) bool {
	cell, ok := view.Get(key)
	return ok && cell.IsPresent()
}

// presentKeysInView lists keys whose effective cell is Present, in the
// view's natural order; this is where tombstones get filtered out of the
// outer transaction's iteration/length (spec.md §8, the composite
// journal's own Len/Keys do not filter them).
func presentKeysInView(view Journal) []any {
	var out []any
	for _, k := range view.Keys() {
		if c, ok := view.Get(k); ok && c.IsPresent() {
			out = append(out, k)
		}
	}
	return out
}

// deleteInView implements the shared Delete contract: NotFoundError if
// the key isn't currently visible, otherwise a tombstone write.
func deleteInView(repo *JournalRepository, tx TxID, view Journal, key any) error {
	cell, ok := view.Get(key)
	if !ok || !cell.IsPresent() {
		return NewNotFoundError(key)
	}
	return repo.PutUncommitted(tx, key, TombstoneCell())
}

// setInView implements the shared Set contract: an unconditional append
// to tx's write journal, last-write-wins within the transaction.
func setInView(repo *JournalRepository, tx TxID, key any, value any) error {
	return repo.PutUncommitted(tx, key, PresentCell(value))
}
