package engine

import (
	"fmt"
	"sort"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// cornerFrontier is the ordered, deduplicated set of candidate corners.
// Insertion order is the tie-break order for every corner heuristic.
type cornerFrontier struct {
	corners []geometry.Vector
	index   map[geometry.Vector]bool
}

func newCornerFrontier() *cornerFrontier {
	return &cornerFrontier{index: make(map[geometry.Vector]bool)}
}

func (cf *cornerFrontier) Len() int {
	return len(cf.corners)
}

// Add appends the corner, ignoring duplicates.
func (cf *cornerFrontier) Add(corner geometry.Vector) {
	if cf.index[corner] {
		return
	}
	cf.index[corner] = true
	cf.corners = append(cf.corners, corner)
}

// Remove deletes a corner that must be present. A missing corner means the
// placement bookkeeping broke, so it panics.
func (cf *cornerFrontier) Remove(corner geometry.Vector) {
	if !cf.index[corner] {
		panic(fmt.Sprintf("engine: removing corner %s not in the frontier", corner))
	}
	delete(cf.index, corner)
	for i := range cf.corners {
		if cf.corners[i] == corner {
			cf.corners = append(cf.corners[:i], cf.corners[i+1:]...)
			return
		}
	}
}

// Snapshot copies the frontier in insertion order.
func (cf *cornerFrontier) Snapshot() []geometry.Vector {
	out := make([]geometry.Vector, len(cf.corners))
	copy(out, cf.corners)
	return out
}

// Sorted returns the corners ordered by the key, insertion order breaking
// ties. A nil key returns insertion order.
func (cf *cornerFrontier) Sorted(key CornerKey) []geometry.Vector {
	out := cf.Snapshot()
	if key == nil {
		return out
	}
	keys := make([][]float64, len(out))
	for i, corner := range out {
		keys[i] = key(corner)
	}
	indices := make([]int, len(out))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool { return lessKeys(keys[indices[i]], keys[indices[j]]) })

	sorted := make([]geometry.Vector, len(out))
	for i, idx := range indices {
		sorted[i] = out[idx]
	}
	return sorted
}

// Filter keeps only the corners satisfying keep, preserving order, and
// returns how many were dropped.
func (cf *cornerFrontier) Filter(keep func(geometry.Vector) bool) int {
	kept := cf.corners[:0]
	removed := 0
	for _, corner := range cf.corners {
		if keep(corner) {
			kept = append(kept, corner)
		} else {
			delete(cf.index, corner)
			removed++
		}
	}
	cf.corners = kept
	return removed
}
