package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// PackageKey produces the sort key deciding when a package is tried. Keys are
// compared lexicographically, smaller first; a nil PackageKey keeps catalog
// order. Keys must be total: a NaN component is a configuration error.
type PackageKey func(*model.Package) []float64

// CornerKey produces the sort key deciding which corner a package tries
// first. A nil CornerKey keeps frontier insertion order.
type CornerKey func(geometry.Vector) []float64

// Heuristics bundles the injection points of a single run. A non-nil
// TypePermutation overrides InitSort: packages are then ordered by their
// type's position in the permutation, largest volume first within a type.
type Heuristics struct {
	InitSort        PackageKey
	CornerSort      CornerKey
	TypePermutation []int
}

// InitHeuristics is the registry of package ordering heuristics.
var InitHeuristics = map[string]PackageKey{
	"none":        nil,
	"random":      func(*model.Package) []float64 { return []float64{rand.Float64()} },
	"volume_desc": func(p *model.Package) []float64 { return []float64{-p.Volume} },
	"volume_asc":  func(p *model.Package) []float64 { return []float64{p.Volume} },
	"max_dims":    func(p *model.Package) []float64 { return []float64{maxComponent(p.Dims)} },
	"min_dims":    func(p *model.Package) []float64 { return []float64{minComponent(p.Dims)} },
}

// CornerHeuristics is the registry of corner ordering heuristics. The axis_*
// entries sort by the named coordinates in order, so axis_zxy tries low
// corners before high ones and sweeps along x within a layer.
var CornerHeuristics = map[string]CornerKey{
	"none":     nil,
	"random":   func(geometry.Vector) []float64 { return []float64{rand.Float64()} },
	"axis_x":   axisKey(geometry.AxisX),
	"axis_y":   axisKey(geometry.AxisY),
	"axis_z":   axisKey(geometry.AxisZ),
	"axis_xy":  axisKey(geometry.AxisX, geometry.AxisY),
	"axis_xz":  axisKey(geometry.AxisX, geometry.AxisZ),
	"axis_yx":  axisKey(geometry.AxisY, geometry.AxisX),
	"axis_yz":  axisKey(geometry.AxisY, geometry.AxisZ),
	"axis_zx":  axisKey(geometry.AxisZ, geometry.AxisX),
	"axis_zy":  axisKey(geometry.AxisZ, geometry.AxisY),
	"axis_xyz": axisKey(geometry.AxisX, geometry.AxisY, geometry.AxisZ),
	"axis_xzy": axisKey(geometry.AxisX, geometry.AxisZ, geometry.AxisY),
	"axis_yxz": axisKey(geometry.AxisY, geometry.AxisX, geometry.AxisZ),
	"axis_yzx": axisKey(geometry.AxisY, geometry.AxisZ, geometry.AxisX),
	"axis_zxy": axisKey(geometry.AxisZ, geometry.AxisX, geometry.AxisY),
	"axis_zyx": axisKey(geometry.AxisZ, geometry.AxisY, geometry.AxisX),
	"min_axis": func(pos geometry.Vector) []float64 { return []float64{minComponent(pos)} },
	"max_axis": func(pos geometry.Vector) []float64 { return []float64{maxComponent(pos)} },
}

func axisKey(axes ...int) CornerKey {
	return func(pos geometry.Vector) []float64 {
		key := make([]float64, len(axes))
		for i, axis := range axes {
			key[i] = pos[axis]
		}
		return key
	}
}

func minComponent(v geometry.Vector) float64 {
	min := v[0]
	for _, c := range v[1:] {
		if c < min {
			min = c
		}
	}
	return min
}

func maxComponent(v geometry.Vector) float64 {
	max := v[0]
	for _, c := range v[1:] {
		if c > max {
			max = c
		}
	}
	return max
}

// ResolveInitHeuristic looks up a package ordering heuristic by name. The
// empty name means "none".
func ResolveInitHeuristic(name string) (PackageKey, error) {
	if name == "" {
		name = "none"
	}
	key, ok := InitHeuristics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInitHeuristic, name)
	}
	return key, nil
}

// ResolveCornerHeuristic looks up a corner ordering heuristic by name. The
// empty name means "none".
func ResolveCornerHeuristic(name string) (CornerKey, error) {
	if name == "" {
		name = "none"
	}
	key, ok := CornerHeuristics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCornerHeuristic, name)
	}
	return key, nil
}

// HeuristicsFromNames resolves a named heuristic combination against the
// registries.
func HeuristicsFromNames(names model.HeuristicNames) (Heuristics, error) {
	initSort, err := ResolveInitHeuristic(names.InitSort)
	if err != nil {
		return Heuristics{}, err
	}
	cornerSort, err := ResolveCornerHeuristic(names.CornerSort)
	if err != nil {
		return Heuristics{}, err
	}
	return Heuristics{
		InitSort:        initSort,
		CornerSort:      cornerSort,
		TypePermutation: names.TypePermutation,
	}, nil
}

// InitHeuristicNames returns the registered package ordering names, sorted.
func InitHeuristicNames() []string {
	return sortedKeys(InitHeuristics)
}

// CornerHeuristicNames returns the registered corner ordering names, sorted.
func CornerHeuristicNames() []string {
	return sortedKeys(CornerHeuristics)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lessKeys compares two sort keys lexicographically.
func lessKeys(a, b []float64) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// typePermutationKey orders packages by their type's position in the
// permutation, largest volume first within a type.
func typePermutationKey(perm []int) PackageKey {
	position := make(map[int]int, len(perm))
	for i, t := range perm {
		position[t] = i
	}
	return func(p *model.Package) []float64 {
		return []float64{float64(position[p.Type]), -p.Volume}
	}
}

// validatePermutation checks that perm rearranges exactly the given types.
func validatePermutation(perm, types []int) error {
	if len(perm) != len(types) {
		return fmt.Errorf("%w: got %d entries for %d types", ErrInvalidTypePermutation, len(perm), len(types))
	}
	seen := make(map[int]bool, len(perm))
	for _, t := range perm {
		if seen[t] {
			return fmt.Errorf("%w: duplicate type %d", ErrInvalidTypePermutation, t)
		}
		seen[t] = true
	}
	for _, t := range types {
		if !seen[t] {
			return fmt.Errorf("%w: missing type %d", ErrInvalidTypePermutation, t)
		}
	}
	return nil
}
