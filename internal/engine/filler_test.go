package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

func testContainer(t *testing.T, dims geometry.Vector, zones ...geometry.Box) *model.Container {
	t.Helper()
	container, err := model.NewContainer(dims, zones)
	require.NoError(t, err)
	return container
}

func catalogOf(dims ...geometry.Vector) *model.PackageList {
	catalog := model.NewPackageList()
	for i, d := range dims {
		catalog.Add(model.NewPackage(i, d, model.TypeNone))
	}
	return catalog
}

func TestFill_SinglePackageAtOrigin(t *testing.T) {
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(geometry.Vector{5, 4, 3}))

	result, err := filler.Fill(Heuristics{})

	require.NoError(t, err)
	require.Equal(t, 1, result.Placed.Len())
	assert.Equal(t, 0, result.NotPlaced.Len())
	assert.Equal(t, geometry.Vector{0, 0, 0}, result.Placed.Placed()[0].Min)
	assert.Equal(t, geometry.Rotations[0], result.Placed.Placed()[0].Rotation)
}

func TestFill_TwoCubesFillQuarterOfContainer(t *testing.T) {
	// Two 50-cubes in a 100-cube: everything places, a quarter of the
	// container volume is used.
	container := testContainer(t, geometry.Vector{100, 100, 100})
	filler := NewFiller(container, catalogOf(
		geometry.Vector{50, 50, 50},
		geometry.Vector{50, 50, 50},
	))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	require.Equal(t, 2, result.Placed.Len())
	assert.Equal(t, geometry.Vector{0, 0, 0}, result.Placed.Placed()[0].Min)
	assert.Equal(t, geometry.Vector{50, 0, 0}, result.Placed.Placed()[1].Min)

	stats := result.Stats("")
	assert.Equal(t, 1.0, stats.PlacedRatio)
	assert.Equal(t, 0.25, stats.FillingRatio)
	assert.True(t, strings.HasPrefix(stats.Run, "RUN_"))
}

func TestFill_OversizedPackageNeverPlaces(t *testing.T) {
	// A 20x5x5 package cannot enter a 10-cube in any rotation.
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(geometry.Vector{20, 5, 5}))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Placed.Len())
	require.Equal(t, 1, result.NotPlaced.Len())

	stats := result.Stats("")
	assert.Equal(t, 0.0, stats.PlacedRatio)
	assert.Equal(t, 0.0, stats.FillingRatio)
}

func TestFill_StacksToFullHeight(t *testing.T) {
	// Two 10-cubes in a 10x10x20 container: the only valid corner after the
	// first placement is on top of it, and the stack fills the container.
	container := testContainer(t, geometry.Vector{10, 10, 20})
	filler := NewFiller(container, catalogOf(
		geometry.Vector{10, 10, 10},
		geometry.Vector{10, 10, 10},
	))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	require.Equal(t, 2, result.Placed.Len())
	assert.Equal(t, geometry.Vector{0, 0, 10}, result.Placed.Placed()[1].Min)

	stats := result.Stats("")
	assert.Equal(t, 1.0, stats.PlacedRatio)
	assert.Equal(t, 1.0, stats.FillingRatio)
}

func TestFill_ForbiddenZoneBlocksOrigin(t *testing.T) {
	// The frontier seeds at the origin; a zone covering it rejects every
	// placement attempt.
	zone := geometry.Box{Min: geometry.Vector{0, 0, 0}, Max: geometry.Vector{5, 5, 5}}
	container := testContainer(t, geometry.Vector{10, 10, 10}, zone)
	filler := NewFiller(container, catalogOf(geometry.Vector{5, 5, 5}))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Placed.Len())
	assert.Equal(t, 1, result.NotPlaced.Len())
}

func TestFill_ForbiddenZoneExcludesCorners(t *testing.T) {
	// A zone over the far half of the container: the first cube places
	// against it, and no corner inside the zone ever enters the frontier.
	zone := geometry.Box{Min: geometry.Vector{10, 0, 0}, Max: geometry.Vector{20, 10, 10}}
	container := testContainer(t, geometry.Vector{20, 10, 10}, zone)
	filler := NewFiller(container, catalogOf(
		geometry.Vector{10, 10, 10},
		geometry.Vector{10, 10, 10},
	))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	require.Equal(t, 1, result.Placed.Len())
	assert.Equal(t, geometry.Vector{0, 0, 0}, result.Placed.Placed()[0].Min)
	assert.Equal(t, 1, result.NotPlaced.Len())
}

func TestFill_PrunesPackagesDominatingAFailedOne(t *testing.T) {
	// Once the 20-cube fails, every remaining package at least as large on
	// every sorted axis is set aside without touching the container.
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(
		geometry.Vector{20, 20, 20},
		geometry.Vector{25, 20, 20},
		geometry.Vector{20, 20, 20},
		geometry.Vector{5, 5, 5},
	))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	require.Equal(t, 1, result.Placed.Len())
	assert.Equal(t, 3, result.Placed.Placed()[0].Package.ID)
	assert.Equal(t, 3, result.NotPlaced.Len())
	assert.True(t, result.NotPlaced.Contains(0))
	assert.True(t, result.NotPlaced.Contains(1))
	assert.True(t, result.NotPlaced.Contains(2))
}

func TestFill_RevalidatesCornersWhenSmallestChanges(t *testing.T) {
	// After the only small package is placed, every corner too tight for the
	// big one is dropped, leaving it nowhere to go.
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(
		geometry.Vector{2, 2, 2},
		geometry.Vector{9, 9, 9},
	))

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	require.Equal(t, 1, result.Placed.Len())
	assert.Equal(t, 0, result.Placed.Placed()[0].Package.ID)
	require.Equal(t, 1, result.NotPlaced.Len())
	assert.True(t, result.NotPlaced.Contains(1))
}

func TestFill_CornerHeuristicPicksTheCorner(t *testing.T) {
	// After the first cube the frontier is (5,0,0), (0,5,0), (0,0,5) in
	// insertion order; sorting by x sends the second cube to (0,5,0).
	container := testContainer(t, geometry.Vector{10, 10, 10})
	catalog := catalogOf(geometry.Vector{5, 5, 5}, geometry.Vector{5, 5, 5})

	filler := NewFiller(container, catalog)
	result, err := filler.Fill(Heuristics{CornerSort: CornerHeuristics["axis_x"]})
	require.NoError(t, err)

	require.Equal(t, 2, result.Placed.Len())
	assert.Equal(t, geometry.Vector{0, 5, 0}, result.Placed.Placed()[1].Min)
}

func TestFill_InitHeuristicPicksTheOrder(t *testing.T) {
	// volume_desc tries the big package first even though the small one comes
	// first in the catalog.
	container := testContainer(t, geometry.Vector{10, 10, 10})
	catalog := catalogOf(geometry.Vector{1, 1, 1}, geometry.Vector{2, 2, 2})

	filler := NewFiller(container, catalog)
	result, err := filler.Fill(Heuristics{InitSort: InitHeuristics["volume_desc"]})
	require.NoError(t, err)

	require.Equal(t, 2, result.Placed.Len())
	assert.Equal(t, 1, result.Placed.Placed()[0].Package.ID)
	assert.Equal(t, geometry.Vector{0, 0, 0}, result.Placed.Placed()[0].Min)
}

func TestFill_TypePermutationOrdersByTypeThenVolume(t *testing.T) {
	catalog := model.NewPackageList()
	catalog.Add(model.NewPackage(0, geometry.Vector{3, 3, 3}, 0))
	catalog.Add(model.NewPackage(1, geometry.Vector{4, 4, 4}, 0))
	catalog.Add(model.NewPackage(2, geometry.Vector{2, 2, 2}, 1))
	container := testContainer(t, geometry.Vector{100, 100, 100})

	filler := NewFiller(container, catalog)
	result, err := filler.Fill(Heuristics{TypePermutation: []int{1, 0}})
	require.NoError(t, err)

	// Type 1 first, then type 0 largest volume first.
	require.Equal(t, 3, result.Placed.Len())
	assert.Equal(t, 2, result.Placed.Placed()[0].Package.ID)
	assert.Equal(t, 1, result.Placed.Placed()[1].Package.ID)
	assert.Equal(t, 0, result.Placed.Placed()[2].Package.ID)
}

func TestFill_InvalidTypePermutationLeavesContainerUntouched(t *testing.T) {
	catalog := model.NewPackageList()
	catalog.Add(model.NewPackage(0, geometry.Vector{2, 2, 2}, 0))
	catalog.Add(model.NewPackage(1, geometry.Vector{2, 2, 2}, 1))
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalog)

	first, err := filler.Fill(Heuristics{})
	require.NoError(t, err)
	require.Equal(t, 2, first.Placed.Len())

	for _, perm := range [][]int{
		{0, 1, 2},
		{0, 0},
		{0, 2},
		{},
	} {
		_, err := filler.Fill(Heuristics{TypePermutation: perm})
		require.ErrorIs(t, err, ErrInvalidTypePermutation, "perm %v", perm)
	}
	assert.Equal(t, 2, container.Placed.Len(), "failed runs must not reset the container")
}

func TestFill_NaNSortKeyIsAConfigError(t *testing.T) {
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(geometry.Vector{2, 2, 2}))

	_, err := filler.Fill(Heuristics{
		InitSort: func(*model.Package) []float64 { return []float64{math.NaN()} },
	})

	require.ErrorIs(t, err, ErrInvalidSortKey)
	assert.Equal(t, 0, container.Placed.Len())
}

func TestFill_EmptyCatalog(t *testing.T) {
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, model.NewPackageList())

	result, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Placed.Len())
	assert.Equal(t, 0, result.NotPlaced.Len())
	assert.Equal(t, 0.0, result.Stats("").PlacedRatio)
}

func TestFill_RunIDsIncrease(t *testing.T) {
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(geometry.Vector{2, 2, 2}))

	first, err := filler.Fill(Heuristics{})
	require.NoError(t, err)
	second, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	assert.Equal(t, first.RunID+1, second.RunID)
	assert.True(t, strings.HasPrefix(second.Stats("baseline").Run, "RUN_"))
	assert.True(t, strings.HasSuffix(second.Stats("baseline").Run, "_baseline"))
}

func TestFill_EarlierResultsSurviveRefills(t *testing.T) {
	container := testContainer(t, geometry.Vector{10, 10, 10})
	filler := NewFiller(container, catalogOf(geometry.Vector{2, 2, 2}, geometry.Vector{3, 3, 3}))

	first, err := filler.Fill(Heuristics{})
	require.NoError(t, err)
	require.Equal(t, 2, first.Placed.Len())

	second, err := filler.Fill(Heuristics{})
	require.NoError(t, err)

	assert.Equal(t, 2, first.Placed.Len(), "first result must keep its placements")
	assert.NotSame(t, first.Placed, second.Placed)
}

func TestFill_CornerHistory(t *testing.T) {
	container := testContainer(t, geometry.Vector{100, 100, 100})
	catalog := catalogOf(geometry.Vector{10, 10, 10}, geometry.Vector{10, 10, 10})

	plain, err := NewFiller(testContainer(t, geometry.Vector{100, 100, 100}), catalog.DeepClone()).Fill(Heuristics{})
	require.NoError(t, err)
	assert.Empty(t, plain.Placed.CornerHistory)

	tracked, err := NewFiller(container, catalog, WithCornerHistory()).Fill(Heuristics{})
	require.NoError(t, err)
	require.Len(t, tracked.Placed.CornerHistory, 2)
	// First snapshot: origin consumed, three fresh corners.
	assert.Len(t, tracked.Placed.CornerHistory[0], 3)
}
