package entable

// denseStore abstracts the backing array of a dense column so a registry can
// run either on ChunkedArray chunks or on plain contiguous slices. Both
// variants present the same chunk-view surface, so batch iteration code never
// branches on the storage kind.
type denseStore[T any] interface {
	Len() int
	Get(i int) *T
	Push(v T) *T
	Pop()
	EnsureSize(n int)
	Clear()
	ShrinkToFit()
	ChunkCount() int
	Chunk(i int) []T
}

// newDenseStore selects the backing variant: chunkSize 0 is the contiguous
// sentinel, anything else must be a power of two.
func newDenseStore[T any](chunkSize int) denseStore[T] {
	if chunkSize == ContiguousStorage {
		return &sliceStore[T]{viewSize: DefaultChunkSize}
	}
	return NewChunkedArray[T](chunkSize)
}

// sliceStore is the contiguous denseStore variant: one growable slice,
// presented through DefaultChunkSize-wide views so chunk-parallel iteration
// matches the segmented variant window for window.
type sliceStore[T any] struct {
	items    []T
	viewSize int
}

func (s *sliceStore[T]) Len() int {
	return len(s.items)
}

func (s *sliceStore[T]) Get(i int) *T {
	return &s.items[i]
}

func (s *sliceStore[T]) Push(v T) *T {
	s.items = extendSlice(s.items, 1)
	slot := &s.items[len(s.items)-1]
	*slot = v
	return slot
}

func (s *sliceStore[T]) Pop() {
	last := len(s.items) - 1
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
}

func (s *sliceStore[T]) EnsureSize(n int) {
	if n <= len(s.items) {
		return
	}
	s.items = extendSlice(s.items, n-len(s.items))
}

func (s *sliceStore[T]) Clear() {
	s.items = nil
}

func (s *sliceStore[T]) ShrinkToFit() {
	if cap(s.items) > len(s.items) {
		exact := make([]T, len(s.items))
		copy(exact, s.items)
		s.items = exact
	}
}

func (s *sliceStore[T]) ChunkCount() int {
	return (len(s.items) + s.viewSize - 1) / s.viewSize
}

func (s *sliceStore[T]) Chunk(i int) []T {
	start := i * s.viewSize
	if i < 0 || start >= len(s.items) {
		return nil
	}
	end := min(start+s.viewSize, len(s.items))
	return s.items[start:end]
}

// column is the type-erased face a componentStorage shows the Registry for
// lockstep fan-out. Every entity creation calls init on every column and
// every destruction calls kill on every column, in registration order; that
// lockstep is what keeps dense slot s meaning the same entity across columns.
type column interface {
	init(index uint32, e Entity)
	kill(index uint32)
	clear()
	shrinkToFit()
	denseSize() int
}

// componentStorage is one dense column: component values packed with no gaps,
// a parallel dense-to-entity array naming each row's owner, and a sparse
// slot-index to dense-slot table. All three share a backing variant.
//
// Operations taking a slot index are unchecked; the Registry validates
// handles before handing indices down.
type componentStorage[T any] struct {
	data   denseStore[T]
	owners denseStore[Entity]
	sparse denseStore[uint32]
}

func newComponentStorage[T any](chunkSize int) *componentStorage[T] {
	return &componentStorage[T]{
		data:   newDenseStore[T](chunkSize),
		owners: newDenseStore[Entity](chunkSize),
		sparse: newDenseStore[uint32](chunkSize),
	}
}

// init appends a zero-valued dense row for the slot index and records the
// owning entity. O(1) amortized.
func (s *componentStorage[T]) init(index uint32, e Entity) {
	var zero T
	slot := uint32(s.data.Len())
	s.data.Push(zero)
	s.owners.Push(e)
	s.sparse.EnsureSize(int(index) + 1)
	*s.sparse.Get(int(index)) = slot
}

// kill swap-removes the dense row for the slot index: the last row moves into
// the vacated slot and the moved row's sparse mapping is fixed up. Row order
// is not preserved; that is the price of O(1) removal.
func (s *componentStorage[T]) kill(index uint32) {
	slot := int(*s.sparse.Get(int(index)))
	last := s.data.Len() - 1
	if slot != last {
		*s.data.Get(slot) = *s.data.Get(last)
		moved := *s.owners.Get(last)
		*s.owners.Get(slot) = moved
		*s.sparse.Get(int(moved.Index())) = uint32(slot)
	}
	s.data.Pop()
	s.owners.Pop()
}

// set overwrites the dense value for a live slot index. Unchecked.
func (s *componentStorage[T]) set(index uint32, v T) {
	*s.data.Get(int(*s.sparse.Get(int(index)))) = v
}

// get returns a pointer to the dense value for a live slot index. Unchecked.
func (s *componentStorage[T]) get(index uint32) *T {
	return s.data.Get(int(*s.sparse.Get(int(index))))
}

// owner returns the entity occupying dense slot i.
func (s *componentStorage[T]) owner(i int) Entity {
	return *s.owners.Get(i)
}

func (s *componentStorage[T]) denseSize() int {
	return s.data.Len()
}

func (s *componentStorage[T]) clear() {
	s.data.Clear()
	s.owners.Clear()
	s.sparse.Clear()
}

func (s *componentStorage[T]) shrinkToFit() {
	s.data.ShrinkToFit()
	s.owners.ShrinkToFit()
}
