package entable

// Filter is a cursor over every live row of one column, exposing both the
// component value and the owning entity. It is the building block for systems
// that need the handle during iteration (for deferred destruction, lookups
// into other registries, and so on); when only component values are needed,
// Each is the cheaper surface.
//
// The fast path advances an index inside the current chunk view and reloads
// chunk metadata only at boundaries. A Filter observes the registry at Reset
// time: after any structural mutation, call Reset before iterating again.
//
// Example:
//
//	f := entable.NewFilter[Position](reg)
//	for f.Next() {
//		f.Get().X += 1
//	}
type Filter[T any] struct {
	storage *componentStorage[T]
	chunk   []T
	owners  []Entity
	ci      int
	idx     int
}

// NewFilter creates a filter over column T, positioned before the first row.
func NewFilter[T any](r *Registry) *Filter[T] {
	f := &Filter[T]{storage: storageOf[T](r)}
	f.Reset()
	return f
}

// Reset rewinds the filter to the first row and re-reads the column's chunk
// layout.
func (f *Filter[T]) Reset() {
	f.ci = 0
	f.idx = -1
	f.chunk = f.storage.data.Chunk(0)
	f.owners = f.storage.owners.Chunk(0)
}

// Next advances to the next row. It must return true before Get or Entity may
// be called.
func (f *Filter[T]) Next() bool {
	f.idx++
	if f.idx < len(f.chunk) {
		return true
	}
	f.ci++
	f.chunk = f.storage.data.Chunk(f.ci)
	if len(f.chunk) == 0 {
		return false
	}
	f.owners = f.storage.owners.Chunk(f.ci)
	f.idx = 0
	return true
}

// Get returns a pointer to the current row's component value.
func (f *Filter[T]) Get() *T {
	return &f.chunk[f.idx]
}

// Entity returns the handle owning the current row.
func (f *Filter[T]) Entity() Entity {
	return f.owners[f.idx]
}

// Filter2 is Filter over two columns at once: the same dense slot in both,
// which names the same entity because the registry mutates all columns in
// lockstep.
type Filter2[A, B any] struct {
	sa     *componentStorage[A]
	sb     *componentStorage[B]
	chunkA []A
	chunkB []B
	owners []Entity
	ci     int
	idx    int
}

// NewFilter2 creates a filter over columns A and B, positioned before the
// first row.
func NewFilter2[A, B any](r *Registry) *Filter2[A, B] {
	f := &Filter2[A, B]{sa: storageOf[A](r), sb: storageOf[B](r)}
	f.Reset()
	return f
}

// Reset rewinds the filter to the first row.
func (f *Filter2[A, B]) Reset() {
	f.ci = 0
	f.idx = -1
	f.chunkA = f.sa.data.Chunk(0)
	f.chunkB = f.sb.data.Chunk(0)
	f.owners = f.sa.owners.Chunk(0)
}

// Next advances to the next row.
func (f *Filter2[A, B]) Next() bool {
	f.idx++
	if f.idx < len(f.chunkA) {
		return true
	}
	f.ci++
	f.chunkA = f.sa.data.Chunk(f.ci)
	if len(f.chunkA) == 0 {
		return false
	}
	f.chunkB = f.sb.data.Chunk(f.ci)
	f.owners = f.sa.owners.Chunk(f.ci)
	f.idx = 0
	return true
}

// Get returns pointers to the current row's values in both columns.
func (f *Filter2[A, B]) Get() (*A, *B) {
	return &f.chunkA[f.idx], &f.chunkB[f.idx]
}

// Entity returns the handle owning the current row.
func (f *Filter2[A, B]) Entity() Entity {
	return f.owners[f.idx]
}
