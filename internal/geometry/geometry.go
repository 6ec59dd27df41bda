// Package geometry provides the axis-aligned primitives the loading engine
// is built on: 3-component vectors indexed by axis, boxes, and the six
// axis-permutation rotations of a rectangular package.
package geometry

import (
	"fmt"
	"sort"
)

// Axes is the number of spatial dimensions.
const Axes = 3

// Axis indices into Vector. Z is the vertical axis.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// Vector is a point or extent in container space, indexable by axis so that
// rotations and per-axis sweeps can treat all dimensions uniformly.
type Vector [Axes]float64

// Add returns the component-wise sum of v and o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v[AxisX] + o[AxisX], v[AxisY] + o[AxisY], v[AxisZ] + o[AxisZ]}
}

// Volume returns the product of the components. For a dimension triple this
// is the volume of the box it describes.
func (v Vector) Volume() float64 {
	return v[AxisX] * v[AxisY] * v[AxisZ]
}

// Sorted returns a copy of v with its components in ascending order.
func (v Vector) Sorted() Vector {
	sort.Float64s(v[:])
	return v
}

// Positive reports whether every component is strictly greater than zero.
func (v Vector) Positive() bool {
	for i := range v {
		if v[i] <= 0 {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[AxisX], v[AxisY], v[AxisZ])
}
