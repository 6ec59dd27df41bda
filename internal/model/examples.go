package model

import "github.com/iv-stpn/container-loading-problem/internal/geometry"

// ExamplePlan bundles a demo container with the package groups to load into
// it, for trying the engine without preparing input files.
type ExamplePlan struct {
	Name      string
	Container ContainerSpec
	Groups    []PackageGroup
}

// ExamplePlans returns the two built-in demo loading jobs. Both target a
// 40ft high-cube container; the first catalog has 8 package shapes, the
// second 16.
func ExamplePlans() []ExamplePlan {
	container := ContainerSpec{Dims: geometry.Vector{1203.0, 233.5, 268.5}}
	return []ExamplePlan{
		{
			Name:      "example-1",
			Container: container,
			Groups: []PackageGroup{
				NewPackageGroup(53, geometry.Vector{24.5, 29.5, 53.5}),
				NewPackageGroup(22, geometry.Vector{24.5, 30.5, 53.5}),
				NewPackageGroup(10, geometry.Vector{32.5, 38.5, 35.5}),
				NewPackageGroup(15, geometry.Vector{39.5, 39.5, 53.5}),
				NewPackageGroup(132, geometry.Vector{35.5, 41.5, 59.5}),
				NewPackageGroup(12, geometry.Vector{33.5, 53.5, 58.5}),
				NewPackageGroup(20, geometry.Vector{41.5, 50.5, 60.5}),
				NewPackageGroup(375, geometry.Vector{43.5, 43.5, 72.5}),
			},
		},
		{
			Name:      "example-2",
			Container: container,
			Groups: []PackageGroup{
				NewPackageGroup(4, geometry.Vector{21, 21, 33}),
				NewPackageGroup(21, geometry.Vector{23, 40, 47}),
				NewPackageGroup(58, geometry.Vector{34, 50, 51}),
				NewPackageGroup(8, geometry.Vector{32, 48, 58}),
				NewPackageGroup(97, geometry.Vector{38, 43, 56}),
				NewPackageGroup(21, geometry.Vector{34, 50, 56}),
				NewPackageGroup(67, geometry.Vector{44, 46, 47}),
				NewPackageGroup(159, geometry.Vector{36, 46, 58}),
				NewPackageGroup(55, geometry.Vector{35, 52, 56}),
				NewPackageGroup(34, geometry.Vector{42, 49, 50}),
				NewPackageGroup(17, geometry.Vector{45, 47, 55}),
				NewPackageGroup(29, geometry.Vector{36, 55, 60}),
				NewPackageGroup(77, geometry.Vector{43, 52, 60}),
				NewPackageGroup(60, geometry.Vector{40, 58, 59}),
				NewPackageGroup(7, geometry.Vector{43, 57, 57}),
				NewPackageGroup(2, geometry.Vector{50, 57, 57}),
			},
		},
	}
}

// FindExamplePlan returns the example with the given name, or nil.
func FindExamplePlan(name string) *ExamplePlan {
	examples := ExamplePlans()
	for i := range examples {
		if examples[i].Name == name {
			return &examples[i]
		}
	}
	return nil
}
