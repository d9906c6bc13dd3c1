package transdict

import "github.com/mukeshjc/transdict/mvcc"

// Session is a stateful façade holding at most one open transaction.
// Callers may either drive an explicit Open/Commit/Rollback/Close cycle
// at whichever isolation level they choose, or use the single-shot
// Get/Set/Delete/Contains/Len/ForEach methods, which fall back to an
// ephemeral read-committed transaction when none is open. Grounded on
// the original entrypoints/server/session.py.
type Session struct {
	factory  *mvcc.TransactionFactory
	strategy mvcc.Strategy
	tx       mvcc.Transaction
}

// NewSession builds a session around factory, using strategy for every
// transaction it opens (explicit or ephemeral).
func NewSession(factory *mvcc.TransactionFactory, strategy mvcc.Strategy) *Session {
	return &Session{factory: factory, strategy: strategy}
}

// IsOpen reports whether an explicit transaction is currently open.
func (s *Session) IsOpen() bool {
	return s.tx != nil
}

// Open starts a new transaction at level and holds it open. Fails with
// SessionError if one is already open.
func (s *Session) Open(level mvcc.IsolationLevel) error {
	if s.IsOpen() {
		return mvcc.NewSessionError("a transaction is already open on this session")
	}
	tx, err := s.factory.New(s.strategy, level)
	if err != nil {
		return err
	}
	if err := tx.Start(); err != nil {
		return err
	}
	s.tx = tx
	return nil
}

// Close rolls back and releases the open transaction. Fails with
// SessionError if none is open.
func (s *Session) Close() error {
	if !s.IsOpen() {
		return mvcc.NewSessionError("no transaction is open on this session")
	}
	s.tx.End()
	s.tx = nil
	return nil
}

// Commit commits the open transaction and closes it. Fails with
// SessionError if none is open.
func (s *Session) Commit() error {
	if !s.IsOpen() {
		return mvcc.NewSessionError("no transaction is open on this session")
	}
	err := s.tx.Commit()
	s.tx.End()
	s.tx = nil
	return err
}

// Rollback rolls back the open transaction and closes it. Fails with
// SessionError if none is open.
func (s *Session) Rollback() error {
	if !s.IsOpen() {
		return mvcc.NewSessionError("no transaction is open on this session")
	}
	err := s.tx.Rollback()
	s.tx.End()
	s.tx = nil
	return err
}

// withEphemeral runs fn against the open transaction if one exists, or
// against a fresh read-committed one that is cleaned up afterward.
func (s *Session) withEphemeral(fn func(mvcc.Transaction) error) error {
	if s.IsOpen() {
		return fn(s.tx)
	}
	tx, err := s.factory.New(s.strategy, mvcc.ReadCommittedIsolation)
	if err != nil {
		return err
	}
	if err := tx.Start(); err != nil {
		return err
	}
	defer tx.End()
	return fn(tx)
}

// Get returns the value stored under key via the open transaction, or an
// ephemeral read-committed one if none is open.
func (s *Session) Get(key any) (any, error) {
	var result any
	err := s.withEphemeral(func(tx mvcc.Transaction) error {
		v, err := tx.Get(key)
		result = v
		return err
	})
	return result, err
}

// Set stores value under key via the open transaction (not committed
// until the caller calls Commit) or, if none is open, via an ephemeral
// transaction that commits immediately.
func (s *Session) Set(key, value any) error {
	return s.withEphemeral(func(tx mvcc.Transaction) error {
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if tx != s.tx {
			return tx.Commit()
		}
		return nil
	})
}

// Delete removes key via the open transaction, or an ephemeral one that
// commits immediately.
func (s *Session) Delete(key any) error {
	return s.withEphemeral(func(tx mvcc.Transaction) error {
		if err := tx.Delete(key); err != nil {
			return err
		}
		if tx != s.tx {
			return tx.Commit()
		}
		return nil
	})
}

// Contains reports whether key is present, via the open transaction or
// an ephemeral one.
func (s *Session) Contains(key any) (bool, error) {
	var result bool
	err := s.withEphemeral(func(tx mvcc.Transaction) error {
		found, err := tx.Contains(key)
		result = found
		return err
	})
	return result, err
}

// Len returns the number of present keys, via the open transaction or
// an ephemeral one.
func (s *Session) Len() (int, error) {
	var result int
	err := s.withEphemeral(func(tx mvcc.Transaction) error {
		n, err := tx.Len()
		result = n
		return err
	})
	return result, err
}

// ForEach returns every present key, via the open transaction or an
// ephemeral one.
func (s *Session) ForEach() ([]any, error) {
	var result []any
	err := s.withEphemeral(func(tx mvcc.Transaction) error {
		keys, err := tx.Iter()
		result = keys
		return err
	})
	return result, err
}
