package geometry

// Rotation is a permutation of axis indices. Applying it to a dimension
// triple yields the extents of the same package after an axis-aligned
// rotation: the extent along axis i becomes dims[rotation[i]].
type Rotation [Axes]int

// Rotations is the table of all six axis permutations, in lexicographic
// order. Index 0 is the identity rotation.
var Rotations = [6]Rotation{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

// Apply returns dims permuted by the rotation.
func (r Rotation) Apply(dims Vector) Vector {
	return Vector{dims[r[AxisX]], dims[r[AxisY]], dims[r[AxisZ]]}
}

var axisLetters = [Axes]byte{'x', 'y', 'z'}

// String renders the rotation as the source axis letters in destination
// order, e.g. the identity is "xyz" and {2, 1, 0} is "zyx".
func (r Rotation) String() string {
	b := make([]byte, Axes)
	for i, axis := range r {
		b[i] = axisLetters[axis]
	}
	return string(b)
}
