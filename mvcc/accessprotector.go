package mvcc

// lockKey identifies either a regular key-lock or the AnyKey sentinel
// full-range lock in one comparable map key.
type lockKey struct {
	full bool
	key  any
}

// AccessProtector is the shared registry of key-locks and full-locks
// owned by transactions (C5). It is no-wait two-phase locking with a
// range-intent lock: conflicting attempts fail immediately with
// AccessError, pushing retry/deadlock-avoidance policy to the caller.
type AccessProtector struct {
	owners map[lockKey]TxID
}

// NewAccessProtector returns an empty lock registry, shared across every
// lock-strategy transaction constructed from the same factory.
func NewAccessProtector() *AccessProtector {
	return &AccessProtector{owners: make(map[lockKey]TxID)}
}

// AcquireKey succeeds if key is unlocked or already owned by tx, and the
// full-range lock is unlocked or owned by tx; otherwise it fails with
// AccessError. Idempotent on success.
func (p *AccessProtector) AcquireKey(tx TxID, key any) error {
	full := lockKey{full: true}
	if owner, ok := p.owners[full]; ok && owner != tx {
		return NewAccessError(key)
	}
	k := lockKey{key: key}
	if owner, ok := p.owners[k]; ok && owner != tx {
		return NewAccessError(key)
	}
	p.owners[k] = tx
	return nil
}

// AcquireFull succeeds iff every current lock owner is tx itself;
// otherwise it fails with AccessError. On success it records tx as the
// owner of the full-range (intent-to-scan) lock.
func (p *AccessProtector) AcquireFull(tx TxID) error {
	for _, owner := range p.owners {
		if owner != tx {
			return NewFullAccessError()
		}
	}
	p.owners[lockKey{full: true}] = tx
	return nil
}

// ReleaseByTx removes every lock entry owned by tx. Called on commit,
// rollback, and transaction end.
func (p *AccessProtector) ReleaseByTx(tx TxID) {
	for k, owner := range p.owners {
		if owner == tx {
			delete(p.owners, k)
		}
	}
}

// ReleaseKey drops a single key-lock regardless of owner. Exposed for
// tooling/tests, mirroring the original's del_key_lock.
func (p *AccessProtector) ReleaseKey(key any) {
	delete(p.owners, lockKey{key: key})
}

// ReleaseFull drops the full-range lock regardless of owner.
func (p *AccessProtector) ReleaseFull() {
	delete(p.owners, lockKey{full: true})
}
