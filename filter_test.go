package entable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/entable"
)

func TestFilterVisitsAllRows(t *testing.T) {
	r := newTestRegistry(t, entable.WithChunkSize(64))
	ents, err := r.CreateEntities(200)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, health{HP: i})
	}
	require.NoError(t, r.DestroyEntity(ents[10]))
	require.NoError(t, r.DestroyEntity(ents[150]))

	f := entable.NewFilter[health](r)
	rows := 0
	for f.Next() {
		e := f.Entity()
		require.True(t, r.IsValid(e))
		require.Equal(t, entable.Get[health](r, e).HP, f.Get().HP,
			"filter row must match per-entity lookup")
		rows++
	}
	require.Equal(t, r.Size(), rows)
}

func TestFilterMutation(t *testing.T) {
	r := newTestRegistry(t)
	ents, err := r.CreateEntities(50)
	require.NoError(t, err)

	f := entable.NewFilter[health](r)
	for f.Next() {
		f.Get().HP = 100
	}
	for _, e := range ents {
		require.Equal(t, 100, entable.Get[health](r, e).HP)
	}
}

func TestFilterReset(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.CreateEntities(10)
	require.NoError(t, err)

	f := entable.NewFilter[health](r)
	first := 0
	for f.Next() {
		first++
	}
	f.Reset()
	second := 0
	for f.Next() {
		second++
	}
	require.Equal(t, first, second)
	require.Equal(t, 10, second)
}

func TestFilterEmptyRegistry(t *testing.T) {
	r := newTestRegistry(t)
	f := entable.NewFilter[health](r)
	require.False(t, f.Next())
}

func TestFilter2Pairing(t *testing.T) {
	r := newTestRegistry(t, entable.WithChunkSize(64))
	ents, err := r.CreateEntities(300)
	require.NoError(t, err)
	for i, e := range ents {
		entable.Set(r, e, position{X: float64(i)})
		entable.Set(r, e, velocity{DX: float64(i) * 5})
	}
	for i := 0; i < len(ents); i += 4 {
		require.NoError(t, r.DestroyEntity(ents[i]))
	}

	f := entable.NewFilter2[position, velocity](r)
	rows := 0
	for f.Next() {
		p, v := f.Get()
		require.Equal(t, p.X*5, v.DX)
		gp, gv := entable.Get2[position, velocity](r, f.Entity())
		require.Same(t, gp, p)
		require.Same(t, gv, v)
		rows++
	}
	require.Equal(t, r.Size(), rows)
}
