// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query mem.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/edwinsyarief/entable"
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
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	rounds := 50
	iters := 10000
	entities := 100000
	run(rounds, iters, entities)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC() // Trigger garbage collection
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		r := entable.NewRegistry()
		_ = entable.RegisterComponent[comp1](r)
		_ = entable.RegisterComponent[comp2](r)
		_, _ = r.CreateEntities(numEntities)

		for range iters {
			entable.Each2(r, func(c1 *comp1, c2 *comp2) {
				c1.V += c2.V
				c1.W += c2.W
			})
		}
	}
}
