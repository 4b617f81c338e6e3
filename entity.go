package entable

// Entity is a packed 32-bit entity handle: the low IndexBits identify a slot
// in the registry's slot table, the remaining high bits carry a generation
// version that is bumped every time the slot is recycled. A handle is only
// meaningful relative to the Registry that issued it.
type Entity uint32

const (
	// IndexBits is the number of low bits used for the slot index.
	IndexBits = 20
	// VersionBits is the number of high bits used for the generation version.
	VersionBits = 32 - IndexBits

	indexMask   = uint32(1)<<IndexBits - 1
	versionMask = uint32(1)<<VersionBits - 1

	// InvalidIndex is the reserved slot index sentinel. It terminates the
	// intrusive free list and bounds the number of addressable entities.
	InvalidIndex = indexMask
)

// NullEntity is the reserved null handle: maximum index and maximum version.
// It is never issued by a registry and is invalid everywhere.
const NullEntity = Entity(1<<32 - 1)

// ComposeEntity packs a slot index and a version into a handle. The version
// is masked to VersionBits.
func ComposeEntity(index, version uint32) Entity {
	return Entity((version&versionMask)<<IndexBits | index&indexMask)
}

// Index returns the slot index encoded in the handle.
func (e Entity) Index() uint32 {
	return uint32(e) & indexMask
}

// Version returns the generation version encoded in the handle.
func (e Entity) Version() uint32 {
	return uint32(e) >> IndexBits & versionMask
}

// IsNull reports whether e is the null handle.
func (e Entity) IsNull() bool {
	return e == NullEntity
}

// NextVersion returns the version a recycled slot gets on its next reuse:
// the current version plus one, modulo 2^VersionBits. The null handle's
// version maps to itself so the sentinel can never be produced by recycling.
// Version wraparound after 2^VersionBits reuse cycles of one slot is an
// accepted limitation of the 32-bit handle layout, not detected or guarded.
func (e Entity) NextVersion() uint32 {
	if e.IsNull() {
		return e.Version()
	}
	return (e.Version() + 1) & versionMask
}
