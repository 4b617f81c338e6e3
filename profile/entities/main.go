// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/edwinsyarief/entable"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		r := entable.NewRegistry()
		_ = entable.RegisterComponent[comp1](r)
		_ = entable.RegisterComponent[comp2](r)
		query := entable.NewFilter2[comp1, comp2](r)

		for range iters {
			ents, _ := r.CreateEntities(numEntities)
			query.Reset()
			for query.Next() {
				c1, c2 := query.Get()
				c1.V += c2.V
				c1.W += c2.W
			}
			for _, e := range ents {
				_ = r.DestroyEntity(e)
			}
		}
	}
}
