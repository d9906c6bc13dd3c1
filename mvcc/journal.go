package mvcc

// Journal is a finite mapping from key to Cell. It has three observable
// shapes: Mutable (owns its storage, used as a transaction's write
// buffer), Leaf (a read-only wrapper freezing a reference to another
// journal), and Composite (an ordered chain of inner journals where
// lookup returns the first inner journal's cell for a key and iteration
// yields each key once, in first-appearance order).
type Journal interface {
	// Get returns the cell stored for k and whether it was found at all
	// (as opposed to NotFound because the composed view carries no cell
	// for k anywhere).
	Get(k any) (Cell, bool)

	// Keys returns every distinct key the journal carries, in
	// first-appearance order for composites. It includes keys whose
	// cell is a tombstone — callers that care about "present" keys must
	// filter; see presentKeysInView in txops.go, which Transaction.Iter/Len
	// use, for where that filtering happens.
	Keys() []any

	// Len is the count of distinct keys, tombstones included (see
	// SPEC_FULL.md's Open Question resolution).
	Len() int
}

// MutableJournal owns its own storage. It supports insert/delete/clear
// and is used as a transaction's write buffer.
type MutableJournal struct {
	cells map[any]Cell
	order []any // preserves first-insertion order for deterministic iteration
}

// NewMutableJournal returns an empty, ready-to-use MutableJournal.
func NewMutableJournal() *MutableJournal {
	return &MutableJournal{cells: make(map[any]Cell)}
}

func (j *MutableJournal) Get(k any) (Cell, bool) {
	c, ok := j.cells[k]
	return c, ok
}

func (j *MutableJournal) Keys() []any {
	out := make([]any, len(j.order))
	copy(out, j.order)
	return out
}

func (j *MutableJournal) Len() int {
	return len(j.cells)
}

// Put records cell under key, last-write-wins within this journal.
func (j *MutableJournal) Put(key any, cell Cell) {
	if _, exists := j.cells[key]; !exists {
		j.order = append(j.order, key)
	}
	j.cells[key] = cell
}

// Delete removes key from this journal entirely (not a tombstone write —
// this is a local write-buffer primitive, not the transactional delete
// operation, which records a tombstone instead).
func (j *MutableJournal) Delete(key any) error {
	if _, ok := j.cells[key]; !ok {
		return NewNotFoundError(key)
	}
	delete(j.cells, key)
	for i, k := range j.order {
		if k == key {
			j.order = append(j.order[:i], j.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the journal in place.
func (j *MutableJournal) Clear() {
	j.cells = make(map[any]Cell)
	j.order = nil
}

// LeafJournal is a read-only wrapper around another journal, used to
// freeze a reference so callers can't mutate through it.
type LeafJournal struct {
	inner Journal
}

// NewLeafJournal wraps inner as a read-only view.
func NewLeafJournal(inner Journal) *LeafJournal {
	return &LeafJournal{inner: inner}
}

func (j *LeafJournal) Get(k any) (Cell, bool) { return j.inner.Get(k) }
func (j *LeafJournal) Keys() []any            { return j.inner.Keys() }
func (j *LeafJournal) Len() int               { return j.inner.Len() }

// CompositeJournal is an ordered chain of inner journals. Lookup returns
// the cell from the first inner journal containing the key; iteration
// yields each key once, in order of first appearance across the chain
// (front to back); Len counts distinct keys across the whole chain.
type CompositeJournal struct {
	journals []Journal
}

// NewCompositeJournal composes journals front-to-back: the first journal
// in the slice shadows the rest.
func NewCompositeJournal(journals ...Journal) *CompositeJournal {
	return &CompositeJournal{journals: journals}
}

func (j *CompositeJournal) Get(k any) (Cell, bool) {
	for _, inner := range j.journals {
		if c, ok := inner.Get(k); ok {
			return c, true
		}
	}
	return Cell{}, false
}

func (j *CompositeJournal) Keys() []any {
	seen := make(map[any]struct{})
	var out []any
	for _, inner := range j.journals {
		for _, k := range inner.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func (j *CompositeJournal) Len() int {
	return len(j.Keys())
}
