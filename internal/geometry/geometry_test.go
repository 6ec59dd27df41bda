package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_Volume(t *testing.T) {
	assert.Equal(t, 6.0, Vector{1, 2, 3}.Volume())
	assert.Equal(t, 0.0, Vector{0, 2, 3}.Volume())
	assert.Equal(t, 1000.0, Vector{10, 10, 10}.Volume())
}

func TestVector_Sorted(t *testing.T) {
	v := Vector{3, 1, 2}
	assert.Equal(t, Vector{1, 2, 3}, v.Sorted())
	// Sorting returns a copy and leaves the original untouched.
	assert.Equal(t, Vector{3, 1, 2}, v)
}

func TestVector_Positive(t *testing.T) {
	assert.True(t, Vector{1, 0.5, 3}.Positive())
	assert.False(t, Vector{1, 0, 3}.Positive())
	assert.False(t, Vector{-1, 2, 3}.Positive())
}

func TestRotations_AllDistinctPermutations(t *testing.T) {
	seen := make(map[Rotation]bool)
	for _, r := range Rotations {
		// Each rotation must be a permutation of {0, 1, 2}.
		axes := make(map[int]bool)
		for _, a := range r {
			require.GreaterOrEqual(t, a, 0)
			require.Less(t, a, Axes)
			axes[a] = true
		}
		require.Len(t, axes, Axes, "rotation %v is not a permutation", r)
		seen[r] = true
	}
	assert.Len(t, seen, 6, "the six rotations must be distinct")
}

func TestRotation_Apply(t *testing.T) {
	dims := Vector{10, 20, 30}

	assert.Equal(t, dims, Rotations[0].Apply(dims), "index 0 is the identity")
	assert.Equal(t, Vector{30, 20, 10}, Rotation{2, 1, 0}.Apply(dims))
	assert.Equal(t, Vector{20, 30, 10}, Rotation{1, 2, 0}.Apply(dims))
}

func TestRotation_ApplyPreservesVolume(t *testing.T) {
	dims := Vector{4, 5, 6}
	for _, r := range Rotations {
		assert.Equal(t, dims.Volume(), r.Apply(dims).Volume(), "rotation %s", r)
	}
}

func TestRotation_String(t *testing.T) {
	assert.Equal(t, "xyz", Rotations[0].String())
	assert.Equal(t, "zyx", Rotation{2, 1, 0}.String())
}

func TestIntersects_Overlapping(t *testing.T) {
	assert.True(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{5, 5, 5}, Vector{15, 15, 15},
	))
	// Full containment counts as overlap.
	assert.True(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{2, 2, 2}, Vector{4, 4, 4},
	))
}

func TestIntersects_TouchingFacesDoNotIntersect(t *testing.T) {
	// Face contact on the X axis.
	assert.False(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{10, 0, 0}, Vector{20, 10, 10},
	))
	// Edge contact.
	assert.False(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{10, 10, 0}, Vector{20, 20, 10},
	))
	// Corner contact.
	assert.False(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{10, 10, 10}, Vector{20, 20, 20},
	))
}

func TestIntersects_SeparatedOnOneAxisOnly(t *testing.T) {
	// Overlap on X and Y but separation on Z means no intersection.
	assert.False(t, Intersects(
		Vector{0, 0, 0}, Vector{10, 10, 10},
		Vector{5, 5, 20}, Vector{15, 15, 30},
	))
}

func TestIntersects_ZeroExtentBoxes(t *testing.T) {
	// A degenerate box has no interior and intersects nothing, not even an
	// identical degenerate box.
	assert.False(t, Intersects(
		Vector{5, 5, 5}, Vector{5, 10, 10},
		Vector{0, 0, 0}, Vector{10, 10, 10},
	))
	assert.False(t, Intersects(
		Vector{5, 5, 5}, Vector{5, 5, 5},
		Vector{5, 5, 5}, Vector{5, 5, 5},
	))
}

func TestIntersects_Symmetric(t *testing.T) {
	a := Box{Min: Vector{0, 0, 0}, Max: Vector{6, 6, 6}}
	b := Box{Min: Vector{3, 3, 3}, Max: Vector{9, 9, 9}}
	assert.Equal(t, a.Intersects(b), b.Intersects(a))
}

func TestBox_Valid(t *testing.T) {
	assert.True(t, Box{Min: Vector{0, 0, 0}, Max: Vector{1, 1, 1}}.Valid())
	assert.True(t, Box{Min: Vector{1, 1, 1}, Max: Vector{1, 1, 1}}.Valid())
	assert.False(t, Box{Min: Vector{2, 0, 0}, Max: Vector{1, 1, 1}}.Valid())
}

func TestBox_Volume(t *testing.T) {
	b := Box{Min: Vector{1, 1, 1}, Max: Vector{3, 4, 5}}
	assert.Equal(t, 24.0, b.Volume())
}

func TestBox_ContainsPoint(t *testing.T) {
	b := Box{Min: Vector{0, 0, 0}, Max: Vector{10, 10, 10}}
	assert.True(t, b.ContainsPoint(Vector{5, 5, 5}))
	assert.True(t, b.ContainsPoint(Vector{0, 10, 5}), "boundary is included")
	assert.False(t, b.ContainsPoint(Vector{5, 5, 11}))
}
