package entable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/entable"
)

type position struct {
	X, Y float64
}

type velocity struct {
	DX, DY float64
}

type health struct {
	HP int
}

func newTestRegistry(t *testing.T, opts ...entable.Option) *entable.Registry {
	t.Helper()
	r := entable.NewRegistry(opts...)
	require.NoError(t, entable.RegisterComponent[position](r))
	require.NoError(t, entable.RegisterComponent[velocity](r))
	require.NoError(t, entable.RegisterComponent[health](r))
	return r
}

func TestRegistryFirstEntity(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, uint32(0), e.Index())
	require.Equal(t, uint32(0), e.Version())
	require.True(t, r.IsValid(e))
	require.Equal(t, 1, r.Size())
}

func TestRegistryRecycle(t *testing.T) {
	r := newTestRegistry(t)

	e0, err := r.CreateEntity()
	require.NoError(t, err)
	e1, err := r.CreateEntity()
	require.NoError(t, err)
	e2, err := r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, 3, r.Size())

	require.NoError(t, r.DestroyEntity(e1))
	require.Equal(t, 2, r.Size())
	require.False(t, r.IsValid(e1))
	require.True(t, r.IsValid(e0))
	require.True(t, r.IsValid(e2))

	// The freed slot is reused with a bumped version.
	e3, err := r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, uint32(1), e3.Index())
	require.Equal(t, uint32(1), e3.Version())
	require.True(t, r.IsValid(e3))
	require.False(t, r.IsValid(e1), "old handle must stay dead after slot reuse")
	require.Equal(t, 3, r.Size())
	require.Equal(t, 3, r.SlotCount(), "recycling must not grow the slot table")
}

func TestRegistryRejectsStaleHandle(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, r.DestroyEntity(e))

	sizeBefore := r.Size()
	err = r.DestroyEntity(e)
	require.ErrorIs(t, err, entable.ErrInvalidEntity)
	require.Equal(t, sizeBefore, r.Size(), "rejected destroy must leave state unchanged")

	// Recreate into the same slot; the stale handle must still be rejected.
	e2, err := r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, e.Index(), e2.Index())
	require.ErrorIs(t, r.DestroyEntity(e), entable.ErrInvalidEntity)
	require.True(t, r.IsValid(e2))
}

func TestRegistryRejectsNullAndOutOfRange(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.CreateEntity()
	require.NoError(t, err)

	require.ErrorIs(t, r.DestroyEntity(entable.NullEntity), entable.ErrInvalidEntity)
	require.False(t, r.IsValid(entable.NullEntity))

	outOfRange := entable.ComposeEntity(500, 0)
	require.ErrorIs(t, r.DestroyEntity(outOfRange), entable.ErrInvalidEntity)
	require.False(t, r.IsValid(outOfRange))
}

func TestRegistryVersionMonotonicity(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)
	idx := e.Index()

	for k := uint32(1); k <= 10; k++ {
		require.NoError(t, r.DestroyEntity(e))
		e, err = r.CreateEntity()
		require.NoError(t, err)
		require.Equal(t, idx, e.Index())
		require.Equal(t, k, e.Version())
	}
}

func TestRegistryVersionWrap(t *testing.T) {
	r := entable.NewRegistry()
	e, err := r.CreateEntity()
	require.NoError(t, err)

	versions := uint32(1) << entable.VersionBits
	for range versions {
		require.NoError(t, r.DestroyEntity(e))
		e, err = r.CreateEntity()
		require.NoError(t, err)
	}
	require.Equal(t, uint32(0), e.Version(), "version must wrap modulo 2^VersionBits")
	require.True(t, r.IsValid(e))
}

func TestRegistrySwapRemovePreservesOthers(t *testing.T) {
	r := newTestRegistry(t)

	ents, err := r.CreateEntities(100)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, position{X: float64(i), Y: float64(-i)})
		entable.Set(r, e, health{HP: i * 10})
	}

	// Remove from the middle and the front; survivors keep their values.
	require.NoError(t, r.DestroyEntity(ents[50]))
	require.NoError(t, r.DestroyEntity(ents[0]))

	for i, e := range ents {
		if i == 0 || i == 50 {
			require.False(t, r.IsValid(e))
			continue
		}
		require.True(t, r.IsValid(e))
		p := entable.Get[position](r, e)
		require.Equal(t, float64(i), p.X)
		h := entable.Get[health](r, e)
		require.Equal(t, i*10, h.HP)
	}
}

func TestRegistryCrossColumnConsistency(t *testing.T) {
	r := newTestRegistry(t)

	ents, err := r.CreateEntities(500)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, position{X: float64(i)})
		entable.Set(r, e, velocity{DX: float64(2 * i)})
	}
	for i := 0; i < len(ents); i += 3 {
		require.NoError(t, r.DestroyEntity(ents[i]))
	}

	// Each2 pairs rows by dense slot; the pairing must hold after churn and
	// visit exactly the live rows.
	rows := 0
	entable.Each2(r, func(p *position, v *velocity) {
		require.Equal(t, 2*p.X, v.DX)
		rows++
	})
	require.Equal(t, r.Size(), rows)
}

func TestRegistryAll(t *testing.T) {
	r := newTestRegistry(t)
	ents, err := r.CreateEntities(20)
	require.NoError(t, err)
	require.NoError(t, r.DestroyEntity(ents[3]))
	require.NoError(t, r.DestroyEntity(ents[17]))

	seen := make(map[entable.Entity]bool)
	for e := range r.All() {
		require.True(t, r.IsValid(e))
		require.False(t, seen[e], "duplicate handle from All")
		seen[e] = true
	}
	require.Len(t, seen, r.Size())
	require.False(t, seen[ents[3]])
	require.False(t, seen[ents[17]])
}

func TestRegistryFreeListEncoding(t *testing.T) {
	r := newTestRegistry(t)
	ents, err := r.CreateEntities(4)
	require.NoError(t, err)

	require.NoError(t, r.DestroyEntity(ents[1]))
	require.NoError(t, r.DestroyEntity(ents[2]))

	// Slot 2 is the free-list head and links to slot 1, which terminates the
	// list. A free slot's index bits are its link, so the fixed-point check
	// distinguishes it from a live slot.
	s2 := r.SlotAt(2)
	require.NotEqual(t, uint32(2), s2.Index())
	require.Equal(t, uint32(1), s2.Index())
	require.Equal(t, uint32(1), s2.Version(), "free slot keeps its next version")
	s1 := r.SlotAt(1)
	require.Equal(t, entable.InvalidIndex, s1.Index())

	// Live slots are fixed points.
	require.Equal(t, uint32(0), r.SlotAt(0).Index())
	require.Equal(t, uint32(3), r.SlotAt(3).Index())
}

func TestRegistryClear(t *testing.T) {
	r := newTestRegistry(t)
	ents, err := r.CreateEntities(10)
	require.NoError(t, err)
	require.NoError(t, r.DestroyEntity(ents[4]))

	r.Clear()
	require.Equal(t, 0, r.Size())
	require.Equal(t, 0, r.SlotCount())
	for _, e := range ents {
		require.False(t, r.IsValid(e))
	}

	// Versions restart from zero.
	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, uint32(0), e.Index())
	require.Equal(t, uint32(0), e.Version())
}

func TestRegistrySealedAfterFirstEntity(t *testing.T) {
	r := entable.NewRegistry()
	require.NoError(t, entable.RegisterComponent[position](r))
	_, err := r.CreateEntity()
	require.NoError(t, err)

	require.ErrorIs(t, entable.RegisterComponent[velocity](r), entable.ErrRegistrySealed)
	// Re-registering an existing column stays a no-op even when sealed.
	require.NoError(t, entable.RegisterComponent[position](r))
}

func TestRegistrySafeAccessors(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, entable.SetSafe(r, e, position{X: 1}))
	p, err := entable.GetSafe[position](r, e)
	require.NoError(t, err)
	require.Equal(t, 1.0, p.X)

	require.NoError(t, r.DestroyEntity(e))
	require.ErrorIs(t, entable.SetSafe(r, e, position{}), entable.ErrInvalidEntity)
	_, err = entable.GetSafe[position](r, e)
	require.ErrorIs(t, err, entable.ErrInvalidEntity)
	require.Nil(t, entable.TryGet[position](r, e))
}

func TestRegistryTryGet(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)
	entable.Set(r, e, health{HP: 77})

	h := entable.TryGet[health](r, e)
	require.NotNil(t, h)
	require.Equal(t, 77, h.HP)
	require.Nil(t, entable.TryGet[health](r, entable.NullEntity))
}

func TestRegistryGet2Get3(t *testing.T) {
	r := newTestRegistry(t)
	e, err := r.CreateEntity()
	require.NoError(t, err)
	entable.Set(r, e, position{X: 1})
	entable.Set(r, e, velocity{DX: 2})
	entable.Set(r, e, health{HP: 3})

	p, v := entable.Get2[position, velocity](r, e)
	require.Equal(t, 1.0, p.X)
	require.Equal(t, 2.0, v.DX)

	p, v, h := entable.Get3[position, velocity, health](r, e)
	require.Equal(t, 1.0, p.X)
	require.Equal(t, 2.0, v.DX)
	require.Equal(t, 3, h.HP)
}

func TestRegistryComponents(t *testing.T) {
	r := newTestRegistry(t, entable.WithChunkSize(64))
	ents, err := r.CreateEntities(200)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, health{HP: i})
	}

	total := 0
	sum := 0
	for chunk := range entable.Components[health](r) {
		require.NotEmpty(t, chunk)
		require.LessOrEqual(t, len(chunk), 64)
		total += len(chunk)
		for _, h := range chunk {
			sum += h.HP
		}
	}
	require.Equal(t, 200, total)
	require.Equal(t, 199*200/2, sum)
}

func TestRegistryShrinkToFit(t *testing.T) {
	r := newTestRegistry(t)
	ents, err := r.CreateEntities(2000)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, position{X: float64(i)})
	}
	require.NoError(t, r.DestroyEntities(ents[500:]))
	require.Equal(t, 500, r.Size())

	r.ShrinkToFit()

	require.Equal(t, 500, r.Size())
	for i, e := range ents[:500] {
		require.True(t, r.IsValid(e))
		require.Equal(t, float64(i), entable.Get[position](r, e).X)
	}

	// The registry keeps working after the release.
	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.True(t, r.IsValid(e))
}

func TestRegistryStorageVariantsAgree(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []entable.Option
	}{
		{"chunked", []entable.Option{entable.WithChunkSize(128)}},
		{"contiguous", []entable.Option{entable.WithChunkSize(entable.ContiguousStorage)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRegistry(t, tc.opts...)
			ents, err := r.CreateEntities(300)
			require.NoError(t, err)
			for i, e := range ents {
				entable.Set(r, e, position{X: float64(i)})
				entable.Set(r, e, velocity{DX: float64(i) * 3})
			}
			for i := 0; i < len(ents); i += 7 {
				require.NoError(t, r.DestroyEntity(ents[i]))
			}

			rows := 0
			entable.Each2(r, func(p *position, v *velocity) {
				require.Equal(t, p.X*3, v.DX)
				rows++
			})
			require.Equal(t, r.Size(), rows)

			for i, e := range ents {
				if i%7 == 0 {
					require.False(t, r.IsValid(e))
					continue
				}
				require.Equal(t, float64(i), entable.Get[position](r, e).X)
			}
		})
	}
}

func TestRegistryBadChunkSizePanics(t *testing.T) {
	require.Panics(t, func() {
		entable.NewRegistry(entable.WithChunkSize(100))
	})
}

func TestRegistryUnregisteredComponentPanics(t *testing.T) {
	r := entable.NewRegistry()
	require.NoError(t, entable.RegisterComponent[position](r))
	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.Panics(t, func() {
		entable.Get[velocity](r, e)
	})
}

func TestRegistryEntityLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates the full index space")
	}
	r := entable.NewRegistry()
	for range int(entable.InvalidIndex) {
		_, err := r.CreateEntity()
		require.NoError(t, err)
	}
	e, err := r.CreateEntity()
	require.ErrorIs(t, err, entable.ErrEntityLimit)
	require.True(t, e.IsNull())
	require.Equal(t, int(entable.InvalidIndex), r.Size())

	// Destroy and recreate still works at the boundary.
	victim := entable.ComposeEntity(12345, 0)
	require.NoError(t, r.DestroyEntity(victim))
	e, err = r.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, uint32(12345), e.Index())
	require.Equal(t, uint32(1), e.Version())
}
