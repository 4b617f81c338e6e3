package entable

import (
	"iter"
	"math/bits"

	"github.com/rotisserie/eris"
)

// DefaultChunkSize is the chunk capacity used when none is configured. It is
// also the view granularity contiguous storage presents through Chunk, so
// chunk-parallel iteration behaves identically for both storage variants.
const DefaultChunkSize = 1024

// ChunkedArray is a dynamic array backed by independently allocated chunks of
// a fixed power-of-two capacity. Growing never moves elements that are already
// stored: a chunk's address is stable for its lifetime, which keeps pointers
// into the array valid across appends (though not across removal or resize).
//
// Indexing decomposes into chunk = i >> log2(chunkSize), offset = i & mask, so
// random access stays O(1) at the cost of one extra indirection compared to a
// plain slice.
//
// Appends go through a cached write cursor (the active chunk plus an offset)
// so the hot path is a bounds compare and a store. Every structural mutation
// that is not an append recomputes the cursor through one idempotent helper;
// a stale cursor after a pop that crosses a chunk boundary is exactly the bug
// class this guards against.
//
// A ChunkedArray must not be copied after first use. Transfer ownership with
// Take.
type ChunkedArray[T any] struct {
	chunks    [][]T
	cur       []T // active write chunk, nil when the next Push must map one in
	curOff    int
	length    int
	chunkSize int
	shift     uint
	mask      int
}

// NewChunkedArray returns an empty array with the given chunk capacity.
// chunkSize must be a power of two; it panics otherwise, since a broken
// shift/mask decomposition would corrupt every access after construction.
func NewChunkedArray[T any](chunkSize int) *ChunkedArray[T] {
	if !isPowerOfTwo(chunkSize) {
		panic("entable: chunk size must be a power of two")
	}
	return &ChunkedArray[T]{
		chunkSize: chunkSize,
		shift:     uint(bits.TrailingZeros(uint(chunkSize))),
		mask:      chunkSize - 1,
	}
}

// Len returns the number of live elements.
func (a *ChunkedArray[T]) Len() int {
	return a.length
}

// Empty reports whether the array holds no elements.
func (a *ChunkedArray[T]) Empty() bool {
	return a.length == 0
}

// ChunkSize returns the configured chunk capacity.
func (a *ChunkedArray[T]) ChunkSize() int {
	return a.chunkSize
}

// ChunkCount returns the number of allocated chunks, including chunks that
// only back reserved capacity.
func (a *ChunkedArray[T]) ChunkCount() int {
	return len(a.chunks)
}

// Push appends v and returns a pointer to the stored element. O(1) amortized;
// a new chunk is allocated only when the cursor sits on a chunk boundary with
// no chunk mapped behind it.
func (a *ChunkedArray[T]) Push(v T) *T {
	if a.curOff == len(a.cur) {
		a.mapWriteChunk()
	}
	slot := &a.cur[a.curOff]
	*slot = v
	a.curOff++
	a.length++
	return slot
}

// Pop removes the last element. Panics if the array is empty.
func (a *ChunkedArray[T]) Pop() {
	if a.length == 0 {
		panic("entable: Pop on empty ChunkedArray")
	}
	a.length--
	var zero T
	a.chunks[a.length>>a.shift][a.length&a.mask] = zero
	a.updateCursor()
}

// Get returns a pointer to the element at index i without bounds checking
// beyond what the underlying slices enforce. The caller guarantees
// i < Len(); an index into reserved-but-unused capacity reads a zero value.
func (a *ChunkedArray[T]) Get(i int) *T {
	return &a.chunks[i>>a.shift][i&a.mask]
}

// At returns a pointer to the element at index i, or ErrIndexOutOfRange if
// i >= Len().
func (a *ChunkedArray[T]) At(i int) (*T, error) {
	if i < 0 || i >= a.length {
		return nil, eris.Wrapf(ErrIndexOutOfRange, "index %d, len %d", i, a.length)
	}
	return a.Get(i), nil
}

// Set overwrites the element at index i. Unchecked, like Get.
func (a *ChunkedArray[T]) Set(i int, v T) {
	a.chunks[i>>a.shift][i&a.mask] = v
}

// Back returns a pointer to the last element. Calling it on an empty array is
// a contract violation.
func (a *ChunkedArray[T]) Back() *T {
	return a.Get(a.length - 1)
}

// EnsureSize grows the array to at least n elements, zero-filling the new
// tail. It never shrinks; n <= Len() is a no-op.
func (a *ChunkedArray[T]) EnsureSize(n int) {
	if n <= a.length {
		return
	}
	a.allocateChunksFor(n)
	a.length = n
	a.updateCursor()
}

// Resize grows (zero-filling) or shrinks (releasing element references) the
// array to exactly n elements.
func (a *ChunkedArray[T]) Resize(n int) {
	switch {
	case n > a.length:
		a.EnsureSize(n)
	case n < a.length:
		a.zeroRange(n, a.length)
		a.length = n
		a.updateCursor()
	}
}

// ResizeFill is Resize with an explicit fill value for the grown tail. When
// shrinking, the value is ignored.
func (a *ChunkedArray[T]) ResizeFill(n int, v T) {
	if n <= a.length {
		a.Resize(n)
		return
	}
	old := a.length
	a.allocateChunksFor(n)
	a.length = n
	for i := old; i < n; i++ {
		a.chunks[i>>a.shift][i&a.mask] = v
	}
	a.updateCursor()
}

// Reserve allocates enough chunks to hold n elements without changing Len().
func (a *ChunkedArray[T]) Reserve(n int) {
	a.allocateChunksFor(n)
	a.updateCursor()
}

// ReserveIndex grows only the chunk directory's capacity for n elements,
// without allocating chunk memory. Useful when the final element count is
// known but chunks should stay lazily allocated.
func (a *ChunkedArray[T]) ReserveIndex(n int) {
	need := (n + a.chunkSize - 1) >> a.shift
	if cap(a.chunks) < need {
		grown := make([][]T, len(a.chunks), need)
		copy(grown, a.chunks)
		a.chunks = grown
	}
}

// ShrinkToFit drops chunks beyond those needed for the current length.
func (a *ChunkedArray[T]) ShrinkToFit() {
	if a.length == 0 {
		a.Clear()
		return
	}
	need := (a.length-1)>>a.shift + 1
	if need < len(a.chunks) {
		a.chunks = a.chunks[:need:need]
	}
	a.updateCursor()
}

// Clear removes all elements and releases every chunk.
func (a *ChunkedArray[T]) Clear() {
	a.chunks = nil
	a.cur = nil
	a.curOff = 0
	a.length = 0
}

// Take moves other's contents into a, leaving other empty. Existing contents
// of a are dropped. O(1): only chunk ownership and cursor state transfer.
func (a *ChunkedArray[T]) Take(other *ChunkedArray[T]) {
	a.chunks = other.chunks
	a.cur = other.cur
	a.curOff = other.curOff
	a.length = other.length
	a.chunkSize = other.chunkSize
	a.shift = other.shift
	a.mask = other.mask
	other.chunks = nil
	other.cur = nil
	other.curOff = 0
	other.length = 0
}

// Chunk returns a view of chunk i's live elements: the full chunk for
// interior chunks, the remainder for the chunk holding the current end, and
// an empty slice for chunks past the end (reserved capacity included).
func (a *ChunkedArray[T]) Chunk(i int) []T {
	if i < 0 || i >= len(a.chunks) {
		return nil
	}
	start := i << a.shift
	if start >= a.length {
		return a.chunks[i][:0]
	}
	n := min(a.chunkSize, a.length-start)
	return a.chunks[i][:n]
}

// All iterates the array chunk by chunk, yielding each index with a pointer
// to its element. The array must not be structurally mutated during
// iteration.
func (a *ChunkedArray[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		idx := 0
		for ci := range a.chunks {
			chunk := a.Chunk(ci)
			for j := range chunk {
				if !yield(idx, &chunk[j]) {
					return
				}
				idx++
			}
		}
	}
}

// mapWriteChunk points the cursor at the chunk holding index length,
// allocating it if the directory ends there. Only called when the cursor sits
// on a chunk boundary (curOff == len(cur)), so the offset restarts at zero.
func (a *ChunkedArray[T]) mapWriteChunk() {
	ci := a.length >> a.shift
	if ci == len(a.chunks) {
		a.chunks = append(a.chunks, make([]T, a.chunkSize))
	}
	a.cur = a.chunks[ci]
	a.curOff = 0
}

// updateCursor recomputes the write cursor from the current length. It is
// idempotent and must be invoked by every structural mutator that is not a
// plain append. When length sits on a chunk boundary with no chunk allocated
// behind it, the cursor goes nil so the next Push maps a chunk in.
func (a *ChunkedArray[T]) updateCursor() {
	ci := a.length >> a.shift
	if ci >= len(a.chunks) {
		a.cur = nil
		a.curOff = 0
		return
	}
	a.cur = a.chunks[ci]
	a.curOff = a.length & a.mask
}

// allocateChunksFor makes sure chunks exist for indices [0, n).
func (a *ChunkedArray[T]) allocateChunksFor(n int) {
	if n == 0 {
		return
	}
	need := (n-1)>>a.shift + 1
	for len(a.chunks) < need {
		a.chunks = append(a.chunks, make([]T, a.chunkSize))
	}
}

// zeroRange releases element references in [first, last) so the GC can
// reclaim what they point to.
func (a *ChunkedArray[T]) zeroRange(first, last int) {
	var zero T
	for i := first; i < last; i++ {
		a.chunks[i>>a.shift][i&a.mask] = zero
	}
}
