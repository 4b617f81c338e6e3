package entable

import "iter"

// The typed accessors come in two flavors, mirroring the two halves of the
// error model: the plain functions are unchecked and assume the caller
// already knows the handle is live (fresh from CreateEntity or an iteration);
// the *Safe variants validate the handle first and return ErrInvalidEntity
// for null, out-of-range or stale handles. Passing a dead handle to an
// unchecked accessor is a contract violation.

// Set overwrites entity e's value in column C. Unchecked.
func Set[C any](r *Registry, e Entity, v C) {
	storageOf[C](r).set(e.Index(), v)
}

// SetSafe validates e, then overwrites its value in column C.
func SetSafe[C any](r *Registry, e Entity, v C) error {
	if err := r.checkEntity(e); err != nil {
		return err
	}
	storageOf[C](r).set(e.Index(), v)
	return nil
}

// Get returns a pointer to entity e's value in column C. Unchecked; the
// pointer stays valid until the next structural mutation of the registry.
func Get[C any](r *Registry, e Entity) *C {
	return storageOf[C](r).get(e.Index())
}

// GetSafe validates e, then returns a pointer to its value in column C.
func GetSafe[C any](r *Registry, e Entity) (*C, error) {
	if err := r.checkEntity(e); err != nil {
		return nil, err
	}
	return storageOf[C](r).get(e.Index()), nil
}

// TryGet returns a pointer to entity e's value in column C, or nil when the
// handle is not live. The nil return replaces an error for callers probing
// handles of unknown state.
func TryGet[C any](r *Registry, e Entity) *C {
	if !r.IsValid(e) {
		return nil
	}
	return storageOf[C](r).get(e.Index())
}

// Get2 returns entity e's values in columns A and B. Unchecked. The two
// component types must be distinct registered types.
func Get2[A, B any](r *Registry, e Entity) (*A, *B) {
	i := e.Index()
	return storageOf[A](r).get(i), storageOf[B](r).get(i)
}

// Get3 returns entity e's values in columns A, B and C. Unchecked.
func Get3[A, B, C any](r *Registry, e Entity) (*A, *B, *C) {
	i := e.Index()
	return storageOf[A](r).get(i), storageOf[B](r).get(i), storageOf[C](r).get(i)
}

// Components iterates column C's dense values chunk by chunk, yielding one
// contiguous view per chunk. Row order is the column's internal dense order,
// not creation order. The views are invalidated by any structural mutation.
func Components[C any](r *Registry) iter.Seq[[]C] {
	s := storageOf[C](r)
	return func(yield func([]C) bool) {
		for ci := range s.data.ChunkCount() {
			chunk := s.data.Chunk(ci)
			if len(chunk) == 0 {
				return
			}
			if !yield(chunk) {
				return
			}
		}
	}
}

// Each invokes fn once per live row of column A, passing a pointer into the
// dense array. Iteration runs chunk by chunk; fn must not create or destroy
// entities while it runs.
func Each[A any](r *Registry, fn func(*A)) {
	s := storageOf[A](r)
	for ci := range s.data.ChunkCount() {
		chunk := s.data.Chunk(ci)
		for j := range chunk {
			fn(&chunk[j])
		}
	}
}

// Each2 invokes fn once per live row, pairing columns A and B at the same
// dense slot. The pairing is correct because every column is populated and
// depopulated in lockstep by the Registry: dense slot s holds the same entity
// in every column. Manipulating one column outside the Registry's paired
// operations would silently break this correspondence.
func Each2[A, B any](r *Registry, fn func(*A, *B)) {
	sa := storageOf[A](r)
	sb := storageOf[B](r)
	for ci := range sa.data.ChunkCount() {
		ca := sa.data.Chunk(ci)
		cb := sb.data.Chunk(ci)
		for j := range ca {
			fn(&ca[j], &cb[j])
		}
	}
}

// Each3 is Each2 over three columns.
func Each3[A, B, C any](r *Registry, fn func(*A, *B, *C)) {
	sa := storageOf[A](r)
	sb := storageOf[B](r)
	sc := storageOf[C](r)
	for ci := range sa.data.ChunkCount() {
		ca := sa.data.Chunk(ci)
		cb := sb.data.Chunk(ci)
		cc := sc.data.Chunk(ci)
		for j := range ca {
			fn(&ca[j], &cb[j], &cc[j])
		}
	}
}
