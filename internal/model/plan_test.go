package model

import (
	"errors"
	"testing"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

func TestNewLoadPlan(t *testing.T) {
	spec := ContainerSpec{Dims: geometry.Vector{100, 100, 100}}
	groups := []PackageGroup{NewPackageGroup(2, geometry.Vector{50, 50, 50})}

	plan := NewLoadPlan("test", spec, groups)

	if plan.ID == "" || len(plan.ID) != 8 {
		t.Errorf("expected an 8-character id, got %q", plan.ID)
	}
	if plan.CreatedAt == "" || plan.CreatedAt != plan.UpdatedAt {
		t.Error("fresh plans should have matching timestamps")
	}

	// The plan owns a copy of the groups.
	groups[0].Count = 99
	if plan.Groups[0].Count != 2 {
		t.Error("mutating the caller's slice must not affect the plan")
	}
}

func TestLoadPlanBuildCatalog(t *testing.T) {
	plan := NewLoadPlan("test",
		ContainerSpec{Dims: geometry.Vector{100, 100, 100}},
		[]PackageGroup{NewPackageGroup(3, geometry.Vector{10, 10, 10})},
	)

	catalog, err := plan.BuildCatalog(CatalogOptions{})
	if err != nil {
		t.Fatalf("BuildCatalog: %v", err)
	}
	if catalog.Len() != 3 {
		t.Errorf("expected 3 packages, got %d", catalog.Len())
	}
}

func TestContainerSpecBuild(t *testing.T) {
	spec := ContainerSpec{
		Dims:           geometry.Vector{100, 100, 100},
		ForbiddenZones: []geometry.Box{{Min: geometry.Vector{0, 0, 0}, Max: geometry.Vector{10, 10, 10}}},
	}
	c, err := spec.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(c.ForbiddenZones) != 1 {
		t.Errorf("expected 1 forbidden zone, got %d", len(c.ForbiddenZones))
	}

	bad := ContainerSpec{Dims: geometry.Vector{0, 1, 1}}
	if _, err := bad.Build(); !errors.Is(err, ErrInvalidContainer) {
		t.Errorf("expected ErrInvalidContainer, got %v", err)
	}
}

func TestExamplePlans(t *testing.T) {
	examples := ExamplePlans()
	if len(examples) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(examples))
	}
	if len(examples[0].Groups) != 8 {
		t.Errorf("example-1 should have 8 groups, got %d", len(examples[0].Groups))
	}
	if len(examples[1].Groups) != 16 {
		t.Errorf("example-2 should have 16 groups, got %d", len(examples[1].Groups))
	}
	for _, ex := range examples {
		if _, err := ex.Container.Build(); err != nil {
			t.Errorf("%s: container should build: %v", ex.Name, err)
		}
		for i, g := range ex.Groups {
			if g.Count <= 0 || !g.Dims.Positive() {
				t.Errorf("%s group %d invalid: %+v", ex.Name, i, g)
			}
		}
	}
}

func TestFindExamplePlan(t *testing.T) {
	if FindExamplePlan("example-2") == nil {
		t.Error("expected to find example-2")
	}
	if FindExamplePlan("example-3") != nil {
		t.Error("unknown example should return nil")
	}
}
