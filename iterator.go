package entable

// Iterator is a random-access cursor over a ChunkedArray. The sequential hot
// path (Next/Prev) bumps an intra-chunk offset and only touches chunk
// metadata when crossing a boundary; random jumps (Advance, AtOffset) relocate
// through the same shift/mask decomposition as indexed access, independent of
// chunk count.
//
// Iterators are plain values; copying one yields an independent cursor at the
// same position. A zero-valued Iterator belongs to no array and must not be
// dereferenced or combined with a live one. Dereferencing the end position,
// stepping Prev from the begin position, or mixing iterators from different
// arrays are contract violations, not checked conditions. Any structural
// mutation of the array invalidates outstanding iterators.
type Iterator[T any] struct {
	arr   *ChunkedArray[T]
	chunk []T // live view of the current chunk; nil means past-the-end
	ci    int
	off   int
}

// Begin returns an iterator at index 0 (equal to End for an empty array).
func (a *ChunkedArray[T]) Begin() Iterator[T] {
	return a.IterAt(0)
}

// End returns the past-the-end iterator.
func (a *ChunkedArray[T]) End() Iterator[T] {
	return a.IterAt(a.length)
}

// IterAt returns an iterator positioned at index i; any i >= Len() yields the
// end position.
func (a *ChunkedArray[T]) IterAt(i int) Iterator[T] {
	it := Iterator[T]{arr: a}
	it.seek(i)
	return it
}

// Index returns the absolute position, Len() for the end iterator.
func (it *Iterator[T]) Index() int {
	if it.chunk == nil {
		return it.arr.Len()
	}
	return it.ci<<it.arr.shift + it.off
}

// Value returns a pointer to the current element. Calling it on the end
// position is a contract violation.
func (it *Iterator[T]) Value() *T {
	return &it.chunk[it.off]
}

// Next advances one position. Crossing into the next chunk reloads that
// chunk's view; stepping past the last element lands on the end position.
func (it *Iterator[T]) Next() {
	it.off++
	if it.off == len(it.chunk) {
		it.ci++
		it.reload()
	}
}

// Prev steps back one position. Stepping back from the end position lands on
// the last element; stepping back from index 0 is a contract violation.
func (it *Iterator[T]) Prev() {
	if it.chunk == nil {
		if it.arr.Len() == 0 {
			return
		}
		it.seek(it.arr.Len() - 1)
		return
	}
	if it.off == 0 {
		it.ci--
		it.chunk = it.arr.Chunk(it.ci)
		it.off = len(it.chunk) - 1
		return
	}
	it.off--
}

// Advance moves the cursor by n positions (n may be negative). O(1): the new
// position is recomputed from the absolute index.
func (it *Iterator[T]) Advance(n int) {
	if n == 0 {
		return
	}
	it.seek(it.Index() + n)
}

// AtOffset returns a pointer to the element n positions away without moving
// the cursor.
func (it *Iterator[T]) AtOffset(n int) *T {
	return it.arr.Get(it.Index() + n)
}

// Distance returns it - other in elements. Both iterators must belong to the
// same array.
func (it *Iterator[T]) Distance(other Iterator[T]) int {
	return it.Index() - other.Index()
}

// Equal reports whether both iterators sit on the same position of the same
// array.
func (it *Iterator[T]) Equal(other Iterator[T]) bool {
	return it.arr == other.arr && it.Index() == other.Index()
}

// Less orders iterators into the same array by position.
func (it *Iterator[T]) Less(other Iterator[T]) bool {
	return it.Index() < other.Index()
}

// seek repositions the cursor at absolute index idx, or at the end position
// when idx >= Len().
func (it *Iterator[T]) seek(idx int) {
	if idx < 0 || idx >= it.arr.Len() {
		it.chunk = nil
		it.ci = it.arr.ChunkCount()
		it.off = 0
		return
	}
	it.ci = idx >> it.arr.shift
	it.chunk = it.arr.Chunk(it.ci)
	it.off = idx & it.arr.mask
}

// reload refreshes the chunk view after ci changed on the sequential path.
// An empty view means the cursor ran off the live range.
func (it *Iterator[T]) reload() {
	view := it.arr.Chunk(it.ci)
	if len(view) == 0 {
		it.chunk = nil
		it.off = 0
		return
	}
	it.chunk = view
	it.off = 0
}
