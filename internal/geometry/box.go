package geometry

// Box is a closed axis-aligned box between two corners.
type Box struct {
	Min Vector `json:"min" yaml:"min"`
	Max Vector `json:"max" yaml:"max"`
}

// Valid reports whether Min does not exceed Max on any axis.
func (b Box) Valid() bool {
	for i := range b.Min {
		if b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Volume returns the volume enclosed by the box.
func (b Box) Volume() float64 {
	return Vector{
		b.Max[AxisX] - b.Min[AxisX],
		b.Max[AxisY] - b.Min[AxisY],
		b.Max[AxisZ] - b.Min[AxisZ],
	}.Volume()
}

// ContainsPoint reports whether p lies inside the box, boundary included.
func (b Box) ContainsPoint(p Vector) bool {
	for i := range p {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes share interior volume.
func (b Box) Intersects(o Box) bool {
	return Intersects(b.Min, b.Max, o.Min, o.Max)
}

// Intersects reports whether the boxes (minA, maxA) and (minB, maxB) overlap.
// The test is strict: boxes that merely touch on a face, edge or corner do
// not intersect, and zero-extent boxes intersect nothing.
func Intersects(minA, maxA, minB, maxB Vector) bool {
	for i := 0; i < Axes; i++ {
		if min(maxA[i], maxB[i]) <= max(minA[i], minB[i]) {
			return false
		}
	}
	return true
}
