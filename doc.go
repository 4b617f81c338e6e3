// Package entable implements a columnar entity/component store backed by
// chunked segmented arrays.
//
// Features:
// - Versioned 32-bit entity handles (20 index bits + 12 version bits) with
//   stale-handle detection and an intrusive free list inside the slot table.
// - One dense column per registered component type, kept in lockstep by the
//   Registry: O(1) amortized create, O(1) swap-remove destroy.
// - ChunkedArray: a segmented dynamic array of power-of-two chunks with a
//   cached write cursor, stable chunk addresses across growth, and a
//   random-access Iterator.
// - Batched iteration (Each/Filter) over per-chunk spans for cache-friendly
//   inner loops; contiguous slice storage selectable per registry.
//
// The store is single-owner: no operation is safe for concurrent use, and any
// structural mutation (create, destroy, clear, resize) invalidates pointers,
// chunk views and iterators obtained earlier.
package entable
