package model

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// DefaultTypeLimit caps the number of distinct package types a catalog may
// carry. Type-permutation sweeps grow factorially with the type count, so
// catalogs with more groups than this get their types clustered down.
const DefaultTypeLimit = 10

// TypeStrategy selects how package types are assigned when groups do not
// declare one.
type TypeStrategy string

const (
	// TypeByGroup labels each group with its index. When the number of
	// groups exceeds the type limit it falls back to TypeKMeans.
	TypeByGroup TypeStrategy = "group"
	// TypeRandom labels every package with a random type below the limit.
	TypeRandom TypeStrategy = "random"
	// TypeKMeans clusters package dimensions into at most the type limit
	// clusters and labels each package with its cluster.
	TypeKMeans TypeStrategy = "kmeans"
)

// PackageGroup declares Count identical packages of the given dimensions.
// Type is optional; TypeNone defers to the catalog's type strategy.
type PackageGroup struct {
	Count int             `json:"count" yaml:"count"`
	Dims  geometry.Vector `json:"dims" yaml:"dims"`
	Type  int             `json:"type" yaml:"type"`
}

// NewPackageGroup declares count packages of the given dimensions with no
// explicit type.
func NewPackageGroup(count int, dims geometry.Vector) PackageGroup {
	return PackageGroup{Count: count, Dims: dims, Type: TypeNone}
}

// CatalogOptions configures catalog construction.
type CatalogOptions struct {
	TypeStrategy TypeStrategy
	TypeLimit    int   // 0 means DefaultTypeLimit
	Seed         int64 // randomness for TypeRandom; 0 seeds from the clock
}

// BuildCatalog expands package groups into a catalog, assigning sequential
// IDs starting at zero. IDs are scoped to the catalog, so concurrent trials
// building their own catalogs can never collide.
func BuildCatalog(groups []PackageGroup, opts CatalogOptions) (*PackageList, error) {
	limit := opts.TypeLimit
	if limit == 0 {
		limit = DefaultTypeLimit
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: type limit %d", ErrInvalidTypeLimit, limit)
	}
	for i, g := range groups {
		if g.Count <= 0 || !g.Dims.Positive() {
			return nil, fmt.Errorf("%w: group %d (count %d, dims %s)", ErrInvalidPackageGroup, i, g.Count, g.Dims)
		}
	}

	strategy := opts.TypeStrategy
	if strategy == "" {
		strategy = TypeByGroup
	}
	if strategy == TypeByGroup && len(groups) > limit {
		strategy = TypeKMeans
	}

	switch strategy {
	case TypeByGroup:
		return buildByGroup(groups), nil
	case TypeRandom:
		return buildRandom(groups, limit, opts.Seed), nil
	case TypeKMeans:
		return buildKMeans(groups, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeStrategy, strategy)
	}
}

func buildByGroup(groups []PackageGroup) *PackageList {
	list := NewPackageList()
	id := 0
	for i, g := range groups {
		pkgType := g.Type
		if pkgType == TypeNone {
			pkgType = i
		}
		for n := 0; n < g.Count; n++ {
			list.Add(NewPackage(id, g.Dims, pkgType))
			id++
		}
	}
	return list
}

func buildRandom(groups []PackageGroup, limit int, seed int64) *PackageList {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	list := NewPackageList()
	id := 0
	for _, g := range groups {
		for n := 0; n < g.Count; n++ {
			list.Add(NewPackage(id, g.Dims, rng.Intn(limit)))
			id++
		}
	}
	return list
}

// buildKMeans clusters every package's dimension triple, so group sizes
// weight the centroids the same way repeated rows would.
func buildKMeans(groups []PackageGroup, limit int) (*PackageList, error) {
	var obs clusters.Observations
	for _, g := range groups {
		for n := 0; n < g.Count; n++ {
			obs = append(obs, clusters.Coordinates{
				g.Dims[geometry.AxisX],
				g.Dims[geometry.AxisY],
				g.Dims[geometry.AxisZ],
			})
		}
	}

	km := kmeans.New()
	cc, err := km.Partition(obs, limit)
	if err != nil {
		return nil, fmt.Errorf("clustering package types: %w", err)
	}

	list := NewPackageList()
	id := 0
	i := 0
	for _, g := range groups {
		for n := 0; n < g.Count; n++ {
			list.Add(NewPackage(id, g.Dims, cc.Nearest(obs[i])))
			id++
			i++
		}
	}
	return list, nil
}

// Types returns the distinct package types in ascending order.
func (l *PackageList) Types() []int {
	seen := make(map[int]bool)
	var types []int
	for _, p := range l.packages {
		if !seen[p.Type] {
			seen[p.Type] = true
			types = append(types, p.Type)
		}
	}
	sort.Ints(types)
	return types
}
