package engine

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// Scenario defines a named heuristic combination to try.
type Scenario struct {
	Name       string
	Names      model.HeuristicNames
	Heuristics Heuristics
}

// TrialSpec declares the inputs every trial of a sweep starts from. Trials
// never share state: each builds its own container from the spec and deep
// clones the catalog.
type TrialSpec struct {
	Container model.ContainerSpec
	Catalog   *model.PackageList
}

// TrialResult pairs a scenario with the statistics of its run.
type TrialResult struct {
	Scenario Scenario
	Stats    model.Statistics
	Err      error
}

// BuildHeuristicScenarios crosses every registered init heuristic with every
// registered corner heuristic.
func BuildHeuristicScenarios() []Scenario {
	inits := InitHeuristicNames()
	corners := CornerHeuristicNames()
	scenarios := make([]Scenario, 0, len(inits)*len(corners))
	for _, init := range inits {
		for _, corner := range corners {
			scenarios = append(scenarios, Scenario{
				Name:  fmt.Sprintf("init=%s corner=%s", init, corner),
				Names: model.HeuristicNames{InitSort: init, CornerSort: corner},
				Heuristics: Heuristics{
					InitSort:   InitHeuristics[init],
					CornerSort: CornerHeuristics[corner],
				},
			})
		}
	}
	return scenarios
}

// BuildPermutationScenarios enumerates every permutation of the catalog's
// package types, each using the given corner heuristic. The catalog must not
// have more types than model.DefaultTypeLimit: the sweep grows factorially.
func BuildPermutationScenarios(catalog *model.PackageList, cornerName string) ([]Scenario, error) {
	cornerSort, err := ResolveCornerHeuristic(cornerName)
	if err != nil {
		return nil, err
	}
	types := catalog.Types()
	if len(types) > model.DefaultTypeLimit {
		return nil, fmt.Errorf("%w: %d types", ErrTooManyTypes, len(types))
	}

	perms := permutations(types)
	scenarios := make([]Scenario, 0, len(perms))
	for _, perm := range perms {
		scenarios = append(scenarios, Scenario{
			Name:  fmt.Sprintf("perm=%v corner=%s", perm, cornerName),
			Names: model.HeuristicNames{CornerSort: cornerName, TypePermutation: perm},
			Heuristics: Heuristics{
				CornerSort:      cornerSort,
				TypePermutation: perm,
			},
		})
	}
	return scenarios, nil
}

// permutations returns every ordering of items; for sorted input the result
// is in lexicographic order.
func permutations(items []int) [][]int {
	if len(items) <= 1 {
		return [][]int{append([]int(nil), items...)}
	}
	var out [][]int
	for i := range items {
		rest := make([]int, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, tail := range permutations(rest) {
			perm := make([]int, 0, len(items))
			perm = append(perm, items[i])
			perm = append(perm, tail...)
			out = append(out, perm)
		}
	}
	return out
}

// Sweep runs every scenario as an independent trial and returns the results
// in scenario order. Up to parallelism trials run at once; zero or negative
// means one per CPU. The container spec is validated once up front, so a bad
// spec fails the sweep instead of every trial.
func Sweep(spec TrialSpec, scenarios []Scenario, parallelism int, logger *zap.Logger) ([]TrialResult, error) {
	if _, err := spec.Container.Build(); err != nil {
		return nil, err
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting sweep",
		zap.Int("scenarios", len(scenarios)),
		zap.Int("parallelism", parallelism))

	results := make([]TrialResult, len(scenarios))
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	for i, scenario := range scenarios {
		wg.Add(1)
		go func(i int, scenario Scenario) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = runTrial(spec, scenario, logger)
		}(i, scenario)
	}
	wg.Wait()
	return results, nil
}

// runTrial executes one scenario in isolation.
func runTrial(spec TrialSpec, scenario Scenario, logger *zap.Logger) TrialResult {
	container, err := spec.Container.Build()
	if err != nil {
		return TrialResult{Scenario: scenario, Err: err}
	}
	filler := NewFiller(container, spec.Catalog.DeepClone(), WithLogger(logger))
	result, err := filler.Fill(scenario.Heuristics)
	if err != nil {
		logger.Error("trial failed", zap.String("scenario", scenario.Name), zap.Error(err))
		return TrialResult{Scenario: scenario, Err: err}
	}
	return TrialResult{Scenario: scenario, Stats: result.Stats(scenario.Name)}
}

// BestByPlacedRatio returns the index of the trial with the highest placed
// ratio, earlier scenarios winning ties. Failed trials are skipped; -1 means
// no trial succeeded.
func BestByPlacedRatio(results []TrialResult) int {
	best := -1
	for i, result := range results {
		if result.Err != nil {
			continue
		}
		if best < 0 || result.Stats.PlacedRatio > results[best].Stats.PlacedRatio {
			best = i
		}
	}
	return best
}
