package entable

import "github.com/rotisserie/eris"

// Error kinds reported by checked operations. Match with errors.Is; the
// wrapped message carries the rejection detail (null handle, out-of-range
// index, stale version).
var (
	// ErrInvalidEntity is returned by checked registry operations handed a
	// handle that is null, out of range, or stale.
	ErrInvalidEntity = eris.New("entable: invalid entity")

	// ErrEntityLimit is returned by CreateEntity when the slot index space
	// is exhausted (the table would reach InvalidIndex).
	ErrEntityLimit = eris.New("entable: entity index space exhausted")

	// ErrIndexOutOfRange is returned by bounds-checked element access.
	ErrIndexOutOfRange = eris.New("entable: index out of range")

	// ErrRegistrySealed is returned when registering a component type after
	// the registry has already issued entities. The column set is fixed for
	// the registry's lifetime once the first entity exists.
	ErrRegistrySealed = eris.New("entable: component registration after first entity")
)
