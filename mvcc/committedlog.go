package mvcc

import "github.com/tidwall/btree"

// CommittedItem pairs an immutable payload journal with the offset it
// was committed at.
type CommittedItem struct {
	Offset  uint64
	Payload Journal
}

// CommittedLog is the totally ordered sequence of committed journals
// (C3). Offsets are dense, strictly increasing, and never rewritten
// (I2); the first committed offset is 1. Backed by tidwall/btree.Map —
// the teacher's own ordered-collection dependency — so ranged views are
// O(log n + k) instead of the teacher's plain-slice linear scan.
type CommittedLog struct {
	items  btree.Map[uint64, CommittedItem]
	offset uint64
}

// NewCommittedLog returns an empty log (LastOffset() == 0).
func NewCommittedLog() *CommittedLog {
	return &CommittedLog{}
}

// Append records journal as the next committed item and returns its
// assigned offset.
func (l *CommittedLog) Append(journal Journal) uint64 {
	l.offset++
	l.items.Set(l.offset, CommittedItem{Offset: l.offset, Payload: journal})
	return l.offset
}

// LastOffset is the current value of the offset counter, 0 before any
// commit.
func (l *CommittedLog) LastOffset() uint64 {
	return l.offset
}

// View returns a composite journal over every committed item with
// lo <= offset <= hi, ordered newest-first so later commits correctly
// shadow earlier ones. lo == 0 means "from the beginning"; hi == 0 means
// "through the end" (spec.md represents hi = ∞ this way since offsets
// are strictly positive).
func (l *CommittedLog) View(lo, hi uint64) Journal {
	var payloads []Journal
	iter := l.items.Iter()
	// tidwall/btree.Map iterates in ascending key order; walk the whole
	// qualifying range ascending, then reverse so the composite gets
	// newest-first ordering (spec.md §3).
	ok := iter.First()
	if lo > 0 {
		ok = iter.Seek(lo)
	}
	for ; ok; ok = iter.Next() {
		offset := iter.Key()
		if offset < lo {
			continue
		}
		if hi > 0 && offset > hi {
			break
		}
		payloads = append(payloads, iter.Value().Payload)
	}
	for i, j := 0, len(payloads)-1; i < j; i, j = i+1, j-1 {
		payloads[i], payloads[j] = payloads[j], payloads[i]
	}
	return NewCompositeJournal(payloads...)
}

// ViewAll is shorthand for View(0, 0): everything committed so far.
func (l *CommittedLog) ViewAll() Journal {
	return l.View(0, 0)
}

// ViewSince returns a composite of items committed strictly after
// offset — the "ahead journal" multi-version transactions check against
// at commit time (spec.md §4.7).
func (l *CommittedLog) ViewSince(offset uint64) Journal {
	return l.View(offset+1, 0)
}
