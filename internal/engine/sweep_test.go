package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

func sweepSpec(containerDims geometry.Vector, catalog *model.PackageList) TrialSpec {
	return TrialSpec{
		Container: model.ContainerSpec{Dims: containerDims},
		Catalog:   catalog,
	}
}

func TestBuildHeuristicScenarios_CoversTheCrossProduct(t *testing.T) {
	scenarios := BuildHeuristicScenarios()

	require.Len(t, scenarios, len(InitHeuristics)*len(CornerHeuristics))

	names := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		names[s.Name] = true
	}
	assert.True(t, names["init=none corner=none"])
	assert.True(t, names["init=volume_desc corner=axis_zxy"])
}

func TestBuildPermutationScenarios(t *testing.T) {
	catalog := model.NewPackageList()
	catalog.Add(model.NewPackage(0, geometry.Vector{1, 1, 1}, 0))
	catalog.Add(model.NewPackage(1, geometry.Vector{2, 2, 2}, 1))
	catalog.Add(model.NewPackage(2, geometry.Vector{3, 3, 3}, 2))

	scenarios, err := BuildPermutationScenarios(catalog, "axis_z")
	require.NoError(t, err)

	require.Len(t, scenarios, 6)
	assert.Equal(t, []int{0, 1, 2}, scenarios[0].Heuristics.TypePermutation)
	assert.Equal(t, []int{2, 1, 0}, scenarios[5].Heuristics.TypePermutation)
	assert.Equal(t, "perm=[0 1 2] corner=axis_z", scenarios[0].Name)
	for _, s := range scenarios {
		assert.NotNil(t, s.Heuristics.CornerSort)
	}
}

func TestBuildPermutationScenarios_UnknownCorner(t *testing.T) {
	catalog := model.NewPackageList()
	catalog.Add(model.NewPackage(0, geometry.Vector{1, 1, 1}, 0))

	_, err := BuildPermutationScenarios(catalog, "axis_w")
	assert.ErrorIs(t, err, ErrUnknownCornerHeuristic)
}

func TestBuildPermutationScenarios_TooManyTypes(t *testing.T) {
	catalog := model.NewPackageList()
	for i := 0; i <= model.DefaultTypeLimit; i++ {
		catalog.Add(model.NewPackage(i, geometry.Vector{1, 1, 1}, i))
	}

	_, err := BuildPermutationScenarios(catalog, "none")
	assert.ErrorIs(t, err, ErrTooManyTypes)
}

func TestPermutations(t *testing.T) {
	perms := permutations([]int{1, 2, 3})

	require.Len(t, perms, 6)
	assert.Equal(t, []int{1, 2, 3}, perms[0])
	assert.Equal(t, []int{3, 2, 1}, perms[5])

	assert.Equal(t, [][]int{{7}}, permutations([]int{7}))
	assert.Len(t, permutations(nil), 1)
}

func TestSweep_RunsEveryScenarioInOrder(t *testing.T) {
	catalog := catalogOf(
		geometry.Vector{5, 5, 5},
		geometry.Vector{5, 5, 5},
		geometry.Vector{4, 4, 4},
	)
	scenarios := []Scenario{
		{Name: "baseline", Heuristics: Heuristics{}},
		{Name: "big first", Heuristics: Heuristics{InitSort: InitHeuristics["volume_desc"]}},
		{Name: "low corners", Heuristics: Heuristics{CornerSort: CornerHeuristics["axis_z"]}},
	}

	results, err := Sweep(sweepSpec(geometry.Vector{20, 20, 20}, catalog), scenarios, 2, nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, scenarios[i].Name, result.Scenario.Name)
		require.NoError(t, result.Err)
		assert.Equal(t, 3, result.Stats.PlacedN, "scenario %q", result.Scenario.Name)
		assert.Contains(t, result.Stats.Run, result.Scenario.Name)
	}
}

func TestSweep_TrialsDoNotShareState(t *testing.T) {
	catalog := catalogOf(geometry.Vector{5, 5, 5}, geometry.Vector{5, 5, 5})
	scenarios := BuildHeuristicScenarios()[:8]

	results, err := Sweep(sweepSpec(geometry.Vector{10, 10, 10}, catalog), scenarios, 4, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.Len(), "the base catalog must stay intact")
	for _, result := range results {
		require.NoError(t, result.Err)
		assert.Equal(t, 2, result.Stats.PlacedN)
	}
}

func TestSweep_InvalidContainerFailsFast(t *testing.T) {
	catalog := catalogOf(geometry.Vector{1, 1, 1})
	spec := TrialSpec{
		Container: model.ContainerSpec{Dims: geometry.Vector{0, 10, 10}},
		Catalog:   catalog,
	}

	_, err := Sweep(spec, BuildHeuristicScenarios()[:2], 1, nil)
	assert.ErrorIs(t, err, model.ErrInvalidContainer)
}

func TestSweep_ScenarioErrorsAreCaptured(t *testing.T) {
	catalog := catalogOf(geometry.Vector{1, 1, 1})
	scenarios := []Scenario{
		{Name: "good", Heuristics: Heuristics{}},
		{Name: "bad", Heuristics: Heuristics{TypePermutation: []int{3}}},
	}

	results, err := Sweep(sweepSpec(geometry.Vector{10, 10, 10}, catalog), scenarios, 1, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrInvalidTypePermutation)
}

func TestBestByPlacedRatio(t *testing.T) {
	results := []TrialResult{
		{Stats: model.Statistics{PlacedRatio: 0.5}},
		{Stats: model.Statistics{PlacedRatio: 0.9}},
		{Stats: model.Statistics{PlacedRatio: 0.9}},
		{Err: assert.AnError, Stats: model.Statistics{PlacedRatio: 1.0}},
	}

	assert.Equal(t, 1, BestByPlacedRatio(results), "ties go to the earlier scenario")
	assert.Equal(t, -1, BestByPlacedRatio([]TrialResult{{Err: assert.AnError}}))
	assert.Equal(t, -1, BestByPlacedRatio(nil))
}
