package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

func searchConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 4,
		Generations:    2,
		MutationRate:   0.3,
		TournamentSize: 2,
		EliteCount:     1,
		Parallelism:    2,
		Seed:           1,
	}
}

func TestSearchOrder_FillsEasyCatalog(t *testing.T) {
	cube := geometry.Vector{50, 50, 50}
	catalog := catalogOf(cube, cube, cube, cube, cube, cube, cube, cube)
	spec := sweepSpec(geometry.Vector{100, 100, 100}, catalog)

	result, err := SearchOrder(spec, "axis_z", searchConfig(), nil)
	require.NoError(t, err)

	// Eight half-size cubes fill the container exactly, whatever the order.
	assert.Equal(t, 8, result.Placed.Len())
	assert.Equal(t, 0, result.NotPlaced.Len())
	stats := result.Stats("search")
	assert.InDelta(t, 1.0, stats.FillingRatio, 1e-9)
	assert.Equal(t, 8, catalog.Len(), "the base catalog must stay intact")
}

func TestSearchOrder_UnknownCorner(t *testing.T) {
	spec := sweepSpec(geometry.Vector{10, 10, 10}, catalogOf(geometry.Vector{1, 1, 1}))

	_, err := SearchOrder(spec, "axis_w", searchConfig(), nil)
	assert.ErrorIs(t, err, ErrUnknownCornerHeuristic)
}

func TestSearchOrder_InvalidContainer(t *testing.T) {
	spec := sweepSpec(geometry.Vector{0, 10, 10}, catalogOf(geometry.Vector{1, 1, 1}))

	_, err := SearchOrder(spec, "none", searchConfig(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidContainer)
}

func TestSearchOrder_InvalidConfig(t *testing.T) {
	spec := sweepSpec(geometry.Vector{10, 10, 10}, catalogOf(geometry.Vector{1, 1, 1}))

	config := searchConfig()
	config.PopulationSize = 0
	_, err := SearchOrder(spec, "none", config, nil)
	assert.ErrorIs(t, err, ErrInvalidSearchConfig)

	config = searchConfig()
	config.Generations = 0
	_, err = SearchOrder(spec, "none", config, nil)
	assert.ErrorIs(t, err, ErrInvalidSearchConfig)
}

func TestOrderedKey_ReproducesExactOrder(t *testing.T) {
	filler := NewFiller(testContainer(t, geometry.Vector{10, 10, 10}), catalogOf(
		geometry.Vector{1, 1, 1},
		geometry.Vector{2, 2, 2},
		geometry.Vector{3, 3, 3},
	))

	ordered, err := filler.buildOrder(Heuristics{InitSort: orderedKey([]int{2, 0, 1})})
	require.NoError(t, err)

	ids := make([]int, len(ordered))
	for i, pkg := range ordered {
		ids[i] = pkg.ID
	}
	assert.Equal(t, []int{2, 0, 1}, ids)
}

func TestGreedyChromosome_OrdersByVolumeDescending(t *testing.T) {
	catalog := catalogOf(
		geometry.Vector{1, 1, 1},
		geometry.Vector{3, 3, 3},
		geometry.Vector{2, 2, 2},
	)
	g := &geneticSearcher{
		spec: TrialSpec{Catalog: catalog},
		ids:  catalog.IDs(),
	}

	assert.Equal(t, []int{1, 2, 0}, g.greedyChromosome().order)
}

func TestOrderCrossover_ProducesPermutation(t *testing.T) {
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	parent1 := chromosome{order: []int{3, 1, 4, 0, 9, 5, 8, 2, 6, 7}}
	parent2 := chromosome{order: []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}}
	g := &geneticSearcher{
		config: searchConfig(),
		rng:    rand.New(rand.NewSource(7)),
	}

	for i := 0; i < 50; i++ {
		child := g.orderCrossover(parent1, parent2)
		assert.ElementsMatch(t, ids, child.order)
	}
}

func TestMutate_KeepsPermutation(t *testing.T) {
	config := searchConfig()
	config.MutationRate = 1.0
	g := &geneticSearcher{
		config: config,
		rng:    rand.New(rand.NewSource(11)),
	}

	c := chromosome{order: []int{0, 1, 2, 3, 4, 5}}
	for i := 0; i < 100; i++ {
		g.mutate(&c)
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, c.order)
	}
}
