package model

import (
	"fmt"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// Container is the rectangular volume being loaded. Its coordinate origin is
// the minimal corner; packages live inside [0, Dims] on every axis. Forbidden
// zones are axis-aligned regions no package may overlap (door clearances,
// refrigeration units, structural posts).
type Container struct {
	Dims           geometry.Vector
	Volume         float64
	ForbiddenZones []geometry.Box
	Placed         *PlacedPackageList
}

// NewContainer validates the dimensions and zones and returns an empty
// container.
func NewContainer(dims geometry.Vector, zones []geometry.Box) (*Container, error) {
	if !dims.Positive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidContainer, dims)
	}
	bounds := geometry.Box{Max: dims}
	for i, z := range zones {
		if !z.Valid() {
			return nil, fmt.Errorf("%w: zone %d min %s exceeds max %s", ErrInvalidForbiddenZone, i, z.Min, z.Max)
		}
		if !bounds.ContainsPoint(z.Min) || !bounds.ContainsPoint(z.Max) {
			return nil, fmt.Errorf("%w: zone %d %s-%s lies outside the container %s", ErrInvalidForbiddenZone, i, z.Min, z.Max, dims)
		}
	}
	c := &Container{
		Dims:           dims,
		Volume:         dims.Volume(),
		ForbiddenZones: zones,
	}
	c.Reset()
	return c, nil
}

// Reset discards all placements. Dimensions and forbidden zones stay.
func (c *Container) Reset() {
	c.Placed = NewPlacedPackageList(c.Dims)
}

// FitsInside reports whether the box (min, max) lies within the container
// bounds. Contact with the walls is allowed.
func (c *Container) FitsInside(min, max geometry.Vector) bool {
	for i := range min {
		if min[i] < 0 || max[i] > c.Dims[i] {
			return false
		}
	}
	return true
}

// CanBePlaced reports whether the placement is admissible: it must not
// overlap a forbidden zone, must not overlap any placed package, and must lie
// within the container bounds, checked in that order.
func (c *Container) CanBePlaced(pp PlacedPackage) bool {
	for _, zone := range c.ForbiddenZones {
		if geometry.Intersects(pp.Min, pp.Max, zone.Min, zone.Max) {
			return false
		}
	}
	if c.Placed.IntersectsAny(pp.Min, pp.Max) {
		return false
	}
	return c.FitsInside(pp.Min, pp.Max)
}

// PlacePackage commits the placement when admissible and reports whether it
// did. A rejected placement leaves the container untouched.
func (c *Container) PlacePackage(pp PlacedPackage) bool {
	if !c.CanBePlaced(pp) {
		return false
	}
	c.Placed.Add(pp)
	return true
}
