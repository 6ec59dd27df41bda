package model

import (
	"fmt"
	"math"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// PlacedPackage is a package at a concrete position and rotation inside a
// container. It is also used for trial placements that may never be
// committed.
type PlacedPackage struct {
	Package  *Package          `json:"package"`
	Rotation geometry.Rotation `json:"rotation"`
	Dims     geometry.Vector   `json:"dims"`
	Min      geometry.Vector   `json:"min"`
	Max      geometry.Vector   `json:"max"`
}

// NewPlacedPackage anchors the package's minimal corner at the given
// coordinates with the given rotation applied to its dimensions.
func NewPlacedPackage(p *Package, anchor geometry.Vector, rotation geometry.Rotation) PlacedPackage {
	dims := rotation.Apply(p.Dims)
	return PlacedPackage{
		Package:  p,
		Rotation: rotation,
		Dims:     dims,
		Min:      anchor,
		Max:      anchor.Add(dims),
	}
}

// Volume returns the volume of the underlying package.
func (pp PlacedPackage) Volume() float64 {
	return pp.Package.Volume
}

// Intersects reports whether the box (min, max) strictly overlaps this
// placement.
func (pp PlacedPackage) Intersects(min, max geometry.Vector) bool {
	return geometry.Intersects(pp.Min, pp.Max, min, max)
}

// CanStackOnTopFace reports whether a package anchored at the given vertex
// would rest on this placement: the vertex must sit within StackingTolerance
// of the top face and strictly inside its horizontal footprint. A vertex
// flush with a footprint edge is not supported. Ground-level vertices are
// always supported.
func (pp PlacedPackage) CanStackOnTopFace(vertex geometry.Vector) bool {
	if vertex[geometry.AxisZ] == 0 {
		return true
	}
	if math.Abs(vertex[geometry.AxisZ]-pp.Max[geometry.AxisZ]) >= StackingTolerance {
		return false
	}
	return pp.Min[geometry.AxisX] < vertex[geometry.AxisX] && vertex[geometry.AxisX] < pp.Max[geometry.AxisX] &&
		pp.Min[geometry.AxisY] < vertex[geometry.AxisY] && vertex[geometry.AxisY] < pp.Max[geometry.AxisY]
}

func (pp PlacedPackage) String() string {
	return fmt.Sprintf("xyz %s dims %s (rotation %s)", pp.Min, pp.Dims, pp.Rotation)
}

// PlacedPackageList tracks the packages committed to a container, keyed by
// package ID but preserving placement order for reporting and export.
type PlacedPackageList struct {
	ContainerDims geometry.Vector
	packages      map[int]PlacedPackage
	order         []int

	// CornerHistory holds a snapshot of the corner frontier after every
	// placement when history tracking is enabled, for step-by-step replay.
	CornerHistory [][]geometry.Vector
}

// NewPlacedPackageList creates an empty list bound to a container's
// dimensions.
func NewPlacedPackageList(containerDims geometry.Vector) *PlacedPackageList {
	return &PlacedPackageList{
		ContainerDims: containerDims,
		packages:      make(map[int]PlacedPackage),
	}
}

// Add appends a placement. Placing the same package ID twice is an
// accounting bug and panics.
func (l *PlacedPackageList) Add(pp PlacedPackage) {
	id := pp.Package.ID
	if _, exists := l.packages[id]; exists {
		panic(fmt.Sprintf("model: package %d placed twice", id))
	}
	l.packages[id] = pp
	l.order = append(l.order, id)
}

// Len returns the number of placed packages.
func (l *PlacedPackageList) Len() int {
	return len(l.order)
}

// Get returns the placement for a package ID.
func (l *PlacedPackageList) Get(id int) (PlacedPackage, bool) {
	pp, ok := l.packages[id]
	return pp, ok
}

// Placed returns the placements in placement order.
func (l *PlacedPackageList) Placed() []PlacedPackage {
	out := make([]PlacedPackage, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.packages[id])
	}
	return out
}

// TotalVolume returns the summed volume of all placements.
func (l *PlacedPackageList) TotalVolume() float64 {
	total := 0.0
	for _, id := range l.order {
		total += l.packages[id].Volume()
	}
	return total
}

// IntersectsAny reports whether the box (min, max) strictly overlaps any
// placement.
func (l *PlacedPackageList) IntersectsAny(min, max geometry.Vector) bool {
	for _, id := range l.order {
		if l.packages[id].Intersects(min, max) {
			return true
		}
	}
	return false
}

// StacksOnAnyPackage reports whether a package anchored at the given vertex
// would be supported: either by the container floor or by the top face of
// some placement.
func (l *PlacedPackageList) StacksOnAnyPackage(vertex geometry.Vector) bool {
	if vertex[geometry.AxisZ] == 0 {
		return true
	}
	for _, id := range l.order {
		if l.packages[id].CanStackOnTopFace(vertex) {
			return true
		}
	}
	return false
}
