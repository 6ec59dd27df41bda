package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// ContainerSpec describes a container declaratively, for plans and
// configuration files.
type ContainerSpec struct {
	Dims           geometry.Vector `json:"dims" yaml:"dims"`
	ForbiddenZones []geometry.Box  `json:"forbidden_zones,omitempty" yaml:"forbidden_zones,omitempty"`
}

// Build constructs an empty container from the spec.
func (cs ContainerSpec) Build() (*Container, error) {
	return NewContainer(cs.Dims, cs.ForbiddenZones)
}

// HeuristicNames identifies a heuristic combination by registry name, the
// form used in plans, configuration files and run labels.
type HeuristicNames struct {
	InitSort        string `json:"init_sort,omitempty" yaml:"init_sort,omitempty"`
	CornerSort      string `json:"corner_sort,omitempty" yaml:"corner_sort,omitempty"`
	TypePermutation []int  `json:"type_permutation,omitempty" yaml:"type_permutation,omitempty,flow"`
}

// LoadPlan is a saved loading job: a container, the package groups to load,
// the heuristic combination to use, and the statistics of the last run.
type LoadPlan struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	Container  ContainerSpec  `json:"container"`
	Groups     []PackageGroup `json:"groups"`
	Heuristics HeuristicNames `json:"heuristics"`
	LastStats  *Statistics    `json:"last_stats,omitempty"`
}

// NewLoadPlan creates a plan with a generated ID and fresh timestamps.
func NewLoadPlan(name string, container ContainerSpec, groups []PackageGroup) LoadPlan {
	now := time.Now().UTC().Format(time.RFC3339)
	return LoadPlan{
		ID:        uuid.New().String()[:8],
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Container: container,
		Groups:    copyGroups(groups),
	}
}

// Touch updates the modification timestamp.
func (p *LoadPlan) Touch() {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// BuildCatalog expands the plan's groups into a catalog.
func (p *LoadPlan) BuildCatalog(opts CatalogOptions) (*PackageList, error) {
	return BuildCatalog(p.Groups, opts)
}

func copyGroups(groups []PackageGroup) []PackageGroup {
	out := make([]PackageGroup, len(groups))
	copy(out, groups)
	return out
}
