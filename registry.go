package entable

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ContiguousStorage selects plain slice-backed dense storage instead of
// chunked storage when passed to WithChunkSize.
const ContiguousStorage = 0

// Registry owns the slot table, the free list and one dense column per
// registered component type, and keeps all of them consistent: columns are
// populated and depopulated in lockstep by CreateEntity/DestroyEntity, never
// individually.
//
// The slot table is the single source of truth for liveness. A live slot
// stores the handle occupying it (a fixed point: slot i decodes to index i);
// a free slot reuses the handle's index bits to store the next free slot,
// forming an intrusive singly-linked free list, while the version bits keep
// the version the slot will be reissued with.
//
// A Registry has exactly one logical owner; it performs no internal locking.
type Registry struct {
	slots     denseStore[Entity]
	columns   []column
	byType    map[reflect.Type]int
	fNext     uint32
	fSize     uint32
	chunkSize int
	logger    zerolog.Logger
	bus       *EventBus
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithChunkSize sets the dense-storage chunk capacity for every column and
// the slot table. It must be a power of two, or ContiguousStorage to select
// plain slice storage. Panics on any other value: storage layout is a
// construction-time decision and cannot degrade gracefully.
func WithChunkSize(n int) Option {
	return func(r *Registry) {
		if n != ContiguousStorage && !isPowerOfTwo(n) {
			panic("entable: chunk size must be a power of two or ContiguousStorage")
		}
		r.chunkSize = n
	}
}

// WithLogger attaches a structured logger. Only structural operations log
// (component registration, Clear, ShrinkToFit, rejected handles); unchecked
// hot paths never do.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithEventBus makes the registry publish EntityCreated and EntityDestroyed
// events on the given bus.
func WithEventBus(bus *EventBus) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}

// NewRegistry creates an empty registry. Register the full component set with
// RegisterComponent before creating the first entity; the column set is fixed
// from then on.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byType:    make(map[reflect.Type]int, 16),
		fNext:     InvalidIndex,
		chunkSize: DefaultChunkSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.slots = newDenseStore[Entity](r.chunkSize)
	return r
}

// RegisterComponent adds a dense column for component type C. Registering the
// same type twice is a no-op. Returns ErrRegistrySealed once the registry has
// issued an entity: the column set is part of the registry's construction.
func RegisterComponent[C any](r *Registry) error {
	t := reflect.TypeFor[C]()
	if _, ok := r.byType[t]; ok {
		return nil
	}
	if r.slots.Len() > 0 {
		return eris.Wrapf(ErrRegistrySealed, "component %s", t)
	}
	r.byType[t] = len(r.columns)
	r.columns = append(r.columns, newComponentStorage[C](r.chunkSize))
	r.logger.Debug().Str("component", t.String()).Int("columns", len(r.columns)).
		Msg("component registered")
	return nil
}

// CreateEntity allocates a handle, recycling the free-list head when one is
// available (with the slot's bumped version), otherwise appending a fresh
// slot at version 0. Every column gains a zero-valued dense row for the new
// entity. Returns ErrEntityLimit when the index space is exhausted.
func (r *Registry) CreateEntity() (Entity, error) {
	var e Entity
	if r.fSize > 0 {
		i := r.fNext
		slot := r.slots.Get(int(i))
		r.fNext = slot.Index() // next free slot threaded through the index bits
		r.fSize--
		e = ComposeEntity(i, slot.Version())
		*slot = e
		for _, c := range r.columns {
			c.init(i, e)
		}
	} else {
		i := uint32(r.slots.Len())
		if i >= InvalidIndex {
			return NullEntity, eris.Wrapf(ErrEntityLimit, "%d slots allocated", i)
		}
		e = ComposeEntity(i, 0)
		r.slots.Push(e)
		for _, c := range r.columns {
			c.init(i, e)
		}
	}
	if r.bus != nil {
		Publish(r.bus, EntityCreated{Entity: e})
	}
	return e, nil
}

// CreateEntities creates n entities and returns their handles.
func (r *Registry) CreateEntities(n int) ([]Entity, error) {
	if n <= 0 {
		return nil, nil
	}
	ents := make([]Entity, 0, n)
	for range n {
		e, err := r.CreateEntity()
		if err != nil {
			return ents, err
		}
		ents = append(ents, e)
	}
	return ents, nil
}

// DestroyEntity removes the entity from every column (swap-remove per column)
// and threads its slot onto the free list with the next version. The handle
// is validated before any column is touched, so a rejected destroy leaves the
// registry unchanged.
func (r *Registry) DestroyEntity(e Entity) error {
	if err := r.checkEntity(e); err != nil {
		return err
	}
	i := e.Index()
	for _, c := range r.columns {
		c.kill(i)
	}
	slot := r.slots.Get(int(i))
	*slot = ComposeEntity(r.fNext, slot.NextVersion())
	r.fNext = i
	r.fSize++
	if r.bus != nil {
		Publish(r.bus, EntityDestroyed{Entity: e})
	}
	return nil
}

// DestroyEntities destroys the given entities, stopping at the first invalid
// handle.
func (r *Registry) DestroyEntities(ents []Entity) error {
	for _, e := range ents {
		if err := r.DestroyEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether e is live in this registry: the slot at its index
// must store exactly e, index and version both. Pure predicate, never errors.
func (r *Registry) IsValid(e Entity) bool {
	if e.IsNull() {
		return false
	}
	i := e.Index()
	if int(i) >= r.slots.Len() {
		return false
	}
	return *r.slots.Get(int(i)) == e
}

// Size returns the number of live entities.
func (r *Registry) Size() int {
	return r.slots.Len() - int(r.fSize)
}

// SlotCount returns the slot-table length, live and free slots included.
func (r *Registry) SlotCount() int {
	return r.slots.Len()
}

// SlotAt returns the raw slot-table value at index i. For a live slot that is
// the occupying handle; for a free slot the index bits hold the next
// free-list link instead. Callers iterating slots directly must check the
// fixed-point property (SlotAt(i).Index() == i) to tell the two apart.
func (r *Registry) SlotAt(i uint32) Entity {
	return *r.slots.Get(int(i))
}

// All iterates the handles of every live entity in slot order.
func (r *Registry) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := range r.slots.Len() {
			e := *r.slots.Get(i)
			if e.Index() != uint32(i) {
				continue // free slot, index bits hold the free-list link
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Clear destroys every entity, empties every column and resets the free
// list. Issued handles all become invalid; versions restart at 0.
func (r *Registry) Clear() {
	for _, c := range r.columns {
		c.clear()
	}
	r.slots.Clear()
	r.fNext = InvalidIndex
	r.fSize = 0
	r.logger.Debug().Msg("registry cleared")
}

// ShrinkToFit releases dense-storage capacity left behind by destroyed
// entities. Live rows and their values are untouched.
func (r *Registry) ShrinkToFit() {
	for _, c := range r.columns {
		c.shrinkToFit()
	}
	r.slots.ShrinkToFit()
	r.logger.Debug().Int("size", r.Size()).Msg("registry shrunk")
}

// checkEntity is the one validation helper behind every checked operation.
// All three rejection causes surface as ErrInvalidEntity, with the cause in
// the wrapped detail.
func (r *Registry) checkEntity(e Entity) error {
	if e.IsNull() {
		r.logger.Warn().Msg("rejected null entity")
		return eris.Wrap(ErrInvalidEntity, "null entity")
	}
	i := e.Index()
	if int(i) >= r.slots.Len() {
		r.logger.Warn().Uint32("index", i).Msg("rejected out-of-range entity")
		return eris.Wrapf(ErrInvalidEntity, "index %d out of range (%d slots)", i, r.slots.Len())
	}
	if *r.slots.Get(int(i)) != e {
		r.logger.Warn().Uint32("index", i).Uint32("version", e.Version()).
			Msg("rejected stale entity")
		return eris.Wrapf(ErrInvalidEntity, "stale handle for slot %d (version %d)", i, e.Version())
	}
	return nil
}

// storageOf resolves the column for component type C. Panics for an
// unregistered type: asking for a column outside the fixed set is a
// programming error, not a runtime condition.
func storageOf[C any](r *Registry) *componentStorage[C] {
	t := reflect.TypeFor[C]()
	idx, ok := r.byType[t]
	if !ok {
		panic("entable: component type " + t.String() + " not registered")
	}
	return r.columns[idx].(*componentStorage[C])
}
