package engine

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// GeneticConfig holds the parameters of the genetic order search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	// Parallelism caps concurrent fitness runs; zero or negative means one
	// per CPU.
	Parallelism int
	// Seed feeds the search's own randomness. Zero seeds from the clock.
	Seed int64
}

// DefaultGeneticConfig returns sensible default parameters. The seed is fixed
// so repeated searches on the same catalog stay comparable.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// chromosome is a candidate solution: the order the catalog's packages are
// tried in, identified by package ID.
type chromosome struct {
	order   []int
	fitness float64
}

// geneticSearcher evolves package orderings for one container and catalog.
type geneticSearcher struct {
	spec   TrialSpec
	corner CornerKey
	config GeneticConfig
	ids    []int
	rng    *rand.Rand
	logger *zap.Logger
}

// SearchOrder evolves package orderings with tournament selection, order
// crossover and swap and inversion mutations, looking for one that beats the
// fixed heuristics. Every candidate ordering is scored by actually running
// it, so the search costs population times generations full runs. The best
// ordering's run is returned.
func SearchOrder(spec TrialSpec, cornerName string, config GeneticConfig, logger *zap.Logger) (*Result, error) {
	cornerSort, err := ResolveCornerHeuristic(cornerName)
	if err != nil {
		return nil, err
	}
	if _, err := spec.Container.Build(); err != nil {
		return nil, err
	}
	if config.PopulationSize < 1 || config.Generations < 1 {
		return nil, fmt.Errorf("%w: population %d, generations %d",
			ErrInvalidSearchConfig, config.PopulationSize, config.Generations)
	}
	if config.TournamentSize < 1 {
		config.TournamentSize = 1
	}
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.NumCPU()
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &geneticSearcher{
		spec:   spec,
		corner: cornerSort,
		config: config,
		ids:    spec.Catalog.IDs(),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
	return g.search()
}

func (g *geneticSearcher) search() (*Result, error) {
	g.logger.Info("starting order search",
		zap.Int("packages", len(g.ids)),
		zap.Int("population", g.config.PopulationSize),
		zap.Int("generations", g.config.Generations),
		zap.Int("parallelism", g.config.Parallelism))

	population := g.initPopulation()
	g.evaluateAll(population)

	for gen := 0; gen < g.config.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		// Elites carry over unchanged and keep their fitness.
		elite := g.config.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		survivors := make([]chromosome, 0, g.config.PopulationSize)
		for i := 0; i < elite; i++ {
			survivors = append(survivors, g.copyChromosome(population[i]))
		}

		offspring := make([]chromosome, 0, g.config.PopulationSize-len(survivors))
		for len(survivors)+len(offspring) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			offspring = append(offspring, child)
		}
		g.evaluateAll(offspring)

		population = append(survivors, offspring...)
		g.logger.Debug("generation complete",
			zap.Int("generation", gen+1),
			zap.Float64("best_fitness", bestFitness(population)))
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return g.run(population[0].order)
}

// initPopulation creates random orderings, seeding one chromosome with the
// volume descending order so the search starts no worse than the strongest
// fixed heuristic.
func (g *geneticSearcher) initPopulation() []chromosome {
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		order := make([]int, len(g.ids))
		for j, idx := range g.rng.Perm(len(g.ids)) {
			order[j] = g.ids[idx]
		}
		population[i] = chromosome{order: order}
	}
	population[0] = g.greedyChromosome()
	return population
}

// greedyChromosome orders the catalog by volume descending, ties keeping ID
// order.
func (g *geneticSearcher) greedyChromosome() chromosome {
	order := append([]int(nil), g.ids...)
	sort.SliceStable(order, func(i, j int) bool {
		return g.spec.Catalog.Get(order[i]).Volume > g.spec.Catalog.Get(order[j]).Volume
	})
	return chromosome{order: order}
}

// evaluateAll scores chromosomes concurrently. Every run builds its own
// container and deep clones the catalog, so runs share no state.
func (g *geneticSearcher) evaluateAll(population []chromosome) {
	sem := make(chan struct{}, g.config.Parallelism)
	var wg sync.WaitGroup
	for i := range population {
		wg.Add(1)
		go func(c *chromosome) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			c.fitness = g.evaluate(c.order)
		}(&population[i])
	}
	wg.Wait()
}

// evaluate scores an ordering by the filling ratio of its run, discounted by
// the fraction of packages left behind, so loading more volume and leaving
// fewer packages on the quay both count.
func (g *geneticSearcher) evaluate(order []int) float64 {
	result, err := g.run(order)
	if err != nil {
		return 0
	}
	stats := result.Stats("")
	fitness := stats.FillingRatio - 0.1*(1-stats.PlacedRatio)
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// run fills a fresh container with the exact ordering.
func (g *geneticSearcher) run(order []int) (*Result, error) {
	container, err := g.spec.Container.Build()
	if err != nil {
		return nil, err
	}
	filler := NewFiller(container, g.spec.Catalog.DeepClone())
	return filler.Fill(Heuristics{InitSort: orderedKey(order), CornerSort: g.corner})
}

// orderedKey pins the exact order packages are tried in.
func orderedKey(order []int) PackageKey {
	position := make(map[int]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	return func(p *model.Package) []float64 {
		return []float64{float64(position[p.ID])}
	}
}

// tournamentSelect picks the best of a random tournament.
func (g *geneticSearcher) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements order crossover (OX1): the child takes a random
// segment from the first parent and fills the remaining positions with the
// second parent's packages in their relative order, so the child is again a
// permutation of the catalog.
func (g *geneticSearcher) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make(map[int]bool, point2-point1+1)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, id := range parent2.order {
		if !inSegment[id] {
			child.order[childIdx] = id
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies a swap mutation and, less often, reverses a segment.
func (g *geneticSearcher) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.order[i], c.order[j] = c.order[j], c.order[i]
			i++
			j--
		}
	}
}

func (g *geneticSearcher) copyChromosome(c chromosome) chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, fitness: c.fitness}
}

func bestFitness(population []chromosome) float64 {
	best := population[0].fitness
	for _, c := range population[1:] {
		if c.fitness > best {
			best = c.fitness
		}
	}
	return best
}
