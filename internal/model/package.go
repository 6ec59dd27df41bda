// Package model defines the domain types of the container loading engine:
// packages and package lists, placed packages, containers and run statistics.
package model

import (
	"fmt"
	"sort"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// StackingTolerance is the vertical slack, in container units, allowed
// between a resting vertex and the top face supporting it. Two packages can
// stack even with up to this much empty space between them.
const StackingTolerance = 0.1

// TypeNone marks a package that carries no type label.
const TypeNone = -1

// Package is a rectangular item waiting to be loaded. The order of its
// dimensions does not matter; rotations are chosen at placement time.
type Package struct {
	ID     int             `json:"id"`
	Dims   geometry.Vector `json:"dims"`
	Volume float64         `json:"volume"`
	Type   int             `json:"type"`
}

// NewPackage creates a package with the given catalog-scoped ID.
func NewPackage(id int, dims geometry.Vector, pkgType int) *Package {
	return &Package{
		ID:     id,
		Dims:   dims,
		Volume: dims.Volume(),
		Type:   pkgType,
	}
}

// LargerThan reports whether this package is at least as large as the given
// dimensions on every axis, comparing sorted dimension triples so the test is
// rotation-independent. A package with identical sorted dims qualifies.
// Any placement admitting this package therefore admits the other shape too.
func (p *Package) LargerThan(dims geometry.Vector) bool {
	mine := p.Dims.Sorted()
	other := dims.Sorted()
	for i := range mine {
		if mine[i] < other[i] {
			return false
		}
	}
	return true
}

func (p *Package) String() string {
	return fmt.Sprintf("package %d (dims %s, type %d)", p.ID, p.Dims, p.Type)
}

// PackageList is a set of packages keyed by ID.
type PackageList struct {
	packages map[int]*Package
}

// NewPackageList creates an empty package list.
func NewPackageList() *PackageList {
	return &PackageList{packages: make(map[int]*Package)}
}

// Add inserts a package. Adding an ID twice is an accounting bug in the
// caller, so it panics rather than silently overwriting.
func (l *PackageList) Add(p *Package) {
	if _, exists := l.packages[p.ID]; exists {
		panic(fmt.Sprintf("model: duplicate package id %d", p.ID))
	}
	l.packages[p.ID] = p
}

// Remove deletes the package with the given ID. Removing an absent ID is an
// accounting bug and panics.
func (l *PackageList) Remove(id int) {
	if _, exists := l.packages[id]; !exists {
		panic(fmt.Sprintf("model: removing unknown package id %d", id))
	}
	delete(l.packages, id)
}

// Contains reports whether the list holds the given ID.
func (l *PackageList) Contains(id int) bool {
	_, ok := l.packages[id]
	return ok
}

// Get returns the package with the given ID, or nil.
func (l *PackageList) Get(id int) *Package {
	return l.packages[id]
}

// Len returns the number of packages in the list.
func (l *PackageList) Len() int {
	return len(l.packages)
}

// IDs returns the package IDs in ascending order.
func (l *PackageList) IDs() []int {
	ids := make([]int, 0, len(l.packages))
	for id := range l.packages {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Packages returns the packages ordered by ascending ID.
func (l *PackageList) Packages() []*Package {
	pkgs := make([]*Package, 0, len(l.packages))
	for _, id := range l.IDs() {
		pkgs = append(pkgs, l.packages[id])
	}
	return pkgs
}

// TotalVolume returns the summed volume of all packages, accumulated in ID
// order so the result does not depend on map iteration.
func (l *PackageList) TotalVolume() float64 {
	total := 0.0
	for _, p := range l.Packages() {
		total += p.Volume
	}
	return total
}

// Clone returns a list with a fresh index sharing the package values.
// Packages are immutable after construction, so sharing is safe within a
// single trial.
func (l *PackageList) Clone() *PackageList {
	c := &PackageList{packages: make(map[int]*Package, len(l.packages))}
	for id, p := range l.packages {
		c.packages[id] = p
	}
	return c
}

// DeepClone returns a list with copied package values. Concurrent trials must
// each work on a deep clone so they share no state at all.
func (l *PackageList) DeepClone() *PackageList {
	c := &PackageList{packages: make(map[int]*Package, len(l.packages))}
	for id, p := range l.packages {
		cp := *p
		c.packages[id] = &cp
	}
	return c
}

// FindSmallest returns the packages that bound what can still fit anywhere:
// for each axis a package with the minimal extent on that axis, plus a
// package with the minimal volume, deduplicated by ID. Ties resolve to the
// lowest ID so the result is deterministic. An empty list yields an empty map.
func (l *PackageList) FindSmallest() map[int]*Package {
	smallest := make(map[int]*Package)
	if len(l.packages) == 0 {
		return smallest
	}

	ordered := l.Packages()
	for axis := 0; axis < geometry.Axes; axis++ {
		best := ordered[0]
		for _, p := range ordered[1:] {
			if p.Dims[axis] < best.Dims[axis] {
				best = p
			}
		}
		smallest[best.ID] = best
	}

	best := ordered[0]
	for _, p := range ordered[1:] {
		if p.Volume < best.Volume {
			best = p
		}
	}
	smallest[best.ID] = best

	return smallest
}
