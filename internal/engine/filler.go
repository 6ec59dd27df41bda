// Package engine implements the Three Corners Heuristic: packages are tried
// in a configurable order against a frontier of candidate corners, each
// placement consumes its corner and spawns up to three new ones, and packages
// rejected by every corner and rotation are set aside together with every
// remaining package at least as large.
package engine

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// runCounter numbers completed runs process-wide. It only feeds report
// labels, so sharing it across concurrent fillers is fine.
var runCounter atomic.Int64

// Filler drives the Three Corners Heuristic for one container and catalog.
// A Filler can run any number of times; every Fill starts from a fresh trial
// state and earlier results keep their placement lists.
type Filler struct {
	container *model.Container
	base      *model.PackageList

	toPlace   *model.PackageList
	notPlaced *model.PackageList
	smallest  map[int]*model.Package
	corners   *cornerFrontier

	trackHistory bool
	logger       *zap.Logger
}

// Option configures a Filler.
type Option func(*Filler)

// WithLogger attaches a logger to the filler. The default discards all logs.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) { f.logger = logger }
}

// WithCornerHistory records a snapshot of the corner frontier after every
// placement, for step-by-step inspection of a run.
func WithCornerHistory() Option {
	return func(f *Filler) { f.trackHistory = true }
}

// NewFiller creates a filler that places catalog packages into container.
func NewFiller(container *model.Container, catalog *model.PackageList, opts ...Option) *Filler {
	f := &Filler{
		container: container,
		base:      catalog,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.reset()
	return f
}

// reset rebuilds the trial state: all packages to place, nothing set aside,
// and a frontier holding only the origin.
func (f *Filler) reset() {
	f.toPlace = f.base.Clone()
	f.notPlaced = model.NewPackageList()
	f.smallest = f.toPlace.FindSmallest()
	f.corners = newCornerFrontier()
	f.corners.Add(geometry.Vector{})
	f.container.Reset()
}

// Result holds the outcome of one run.
type Result struct {
	Placed    *model.PlacedPackageList
	NotPlaced *model.PackageList
	Elapsed   time.Duration
	RunID     int64

	containerVolume float64
}

// Stats summarizes the result under a RUN_<id> label, suffixed with the run
// name when one is given.
func (r *Result) Stats(runName string) model.Statistics {
	label := fmt.Sprintf("RUN_%d", r.RunID)
	if runName != "" {
		label += "_" + runName
	}
	return model.NewStatistics(label, r.Elapsed.Seconds(), r.Placed, r.NotPlaced, r.containerVolume)
}

// Fill runs the Three Corners Heuristic once. Configuration errors are
// reported before the trial state is touched, so a failed call leaves the
// container exactly as the previous run left it.
func (f *Filler) Fill(h Heuristics) (*Result, error) {
	start := time.Now()

	order, err := f.buildOrder(h)
	if err != nil {
		return nil, err
	}
	f.reset()

	for _, pkg := range order {
		if !f.toPlace.Contains(pkg.ID) {
			// Already pruned after an earlier failure.
			continue
		}
		f.logger.Debug("trying package",
			zap.Int("package", pkg.ID),
			zap.Int("corners", f.corners.Len()))

		placed, ok := f.tryPlace(pkg, h.CornerSort)
		f.toPlace.Remove(pkg.ID)

		// Placing or discarding a smallest package changes which corners are
		// still worth keeping.
		if _, wasSmallest := f.smallest[pkg.ID]; wasSmallest {
			f.smallest = f.toPlace.FindSmallest()
			f.revalidateCorners()
		}

		if ok {
			f.logger.Debug("placed package",
				zap.Int("package", pkg.ID),
				zap.Stringer("corner", placed.Min),
				zap.Stringer("rotation", placed.Rotation))
		} else {
			f.notPlaced.Add(pkg)
			f.logger.Warn("package does not fit on any corner", zap.Int("package", pkg.ID))
			f.pruneDominatedBy(pkg)
		}
	}

	if f.container.Placed.Len()+f.notPlaced.Len() != f.base.Len() {
		panic(fmt.Sprintf("engine: placement accounting broke: %d placed + %d not placed, want %d",
			f.container.Placed.Len(), f.notPlaced.Len(), f.base.Len()))
	}

	result := &Result{
		Placed:          f.container.Placed,
		NotPlaced:       f.notPlaced,
		Elapsed:         time.Since(start),
		RunID:           runCounter.Add(1),
		containerVolume: f.container.Volume,
	}
	f.logger.Info("run complete",
		zap.Int64("run", result.RunID),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("placed", result.Placed.Len()),
		zap.Int("notPlaced", result.NotPlaced.Len()))
	return result, nil
}

// buildOrder resolves the package ordering for a run. It validates the whole
// configuration up front: an invalid type permutation or a NaN sort key is
// reported here, before any placement happens.
func (f *Filler) buildOrder(h Heuristics) ([]*model.Package, error) {
	packages := f.base.Packages()

	key := h.InitSort
	if h.TypePermutation != nil {
		if err := validatePermutation(h.TypePermutation, f.base.Types()); err != nil {
			return nil, err
		}
		key = typePermutationKey(h.TypePermutation)
	}
	if key == nil {
		return packages, nil
	}

	type decorated struct {
		pkg *model.Package
		key []float64
	}
	decor := make([]decorated, len(packages))
	for i, pkg := range packages {
		k := key(pkg)
		for _, v := range k {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%w: package %d", ErrInvalidSortKey, pkg.ID)
			}
		}
		decor[i] = decorated{pkg: pkg, key: k}
	}
	sort.SliceStable(decor, func(i, j int) bool { return lessKeys(decor[i].key, decor[j].key) })

	ordered := make([]*model.Package, len(decor))
	for i := range decor {
		ordered[i] = decor[i].pkg
	}
	return ordered, nil
}

// tryPlace tries the package on every corner, in heuristic order, with every
// rotation, and commits the first fit.
func (f *Filler) tryPlace(pkg *model.Package, cornerSort CornerKey) (model.PlacedPackage, bool) {
	for _, corner := range f.corners.Sorted(cornerSort) {
		for _, rotation := range geometry.Rotations {
			placing := model.NewPlacedPackage(pkg, corner, rotation)
			if f.placePackage(placing) {
				return placing, true
			}
		}
	}
	return model.PlacedPackage{}, false
}

// placePackage commits a placement if it is admissible: the consumed corner
// leaves the frontier and the three corners the package spawns join it.
func (f *Filler) placePackage(placing model.PlacedPackage) bool {
	if !f.container.PlacePackage(placing) {
		return false
	}
	f.corners.Remove(placing.Min)
	f.addCorners(placing)
	if f.trackHistory {
		f.container.Placed.CornerHistory = append(f.container.Placed.CornerHistory, f.corners.Snapshot())
	}
	return true
}

// addCorners generates the up to three corners a placed package offers, one
// per axis, and keeps the valid ones. The corner on top of the package is
// exempt from the support check: it rests on the package itself.
func (f *Filler) addCorners(placed model.PlacedPackage) {
	for axis := 0; axis < geometry.Axes; axis++ {
		corner := placed.Min
		corner[axis] += placed.Dims[axis]
		if f.isValidCorner(corner, axis == geometry.AxisZ) {
			f.corners.Add(corner)
		}
	}
}

// isValidCorner accepts corners that rest on the ground or on a placed
// package, and that can still receive at least one of the smallest remaining
// packages.
func (f *Filler) isValidCorner(corner geometry.Vector, onTop bool) bool {
	if corner[geometry.AxisZ] > model.StackingTolerance && !onTop {
		if !f.container.Placed.StacksOnAnyPackage(corner) {
			return false
		}
	}
	return f.anySmallestFits(corner)
}

// anySmallestFits reports whether any of the smallest remaining packages can
// be placed on the corner with some rotation.
func (f *Filler) anySmallestFits(corner geometry.Vector) bool {
	for _, pkg := range f.smallest {
		if f.canPackageFit(pkg, corner) {
			return true
		}
	}
	return false
}

func (f *Filler) canPackageFit(pkg *model.Package, corner geometry.Vector) bool {
	for _, rotation := range geometry.Rotations {
		if f.container.CanBePlaced(model.NewPlacedPackage(pkg, corner, rotation)) {
			return true
		}
	}
	return false
}

// revalidateCorners drops every corner none of the smallest remaining
// packages fits on.
func (f *Filler) revalidateCorners() {
	removed := f.corners.Filter(f.anySmallestFits)
	if removed > 0 {
		f.logger.Debug("dropped corners too tight for the smallest remaining packages",
			zap.Int("count", removed))
	}
}

// pruneDominatedBy moves every remaining package whose sorted dimensions are
// all at least the failed package's straight to the not-placed set: any
// position admitting such a package would have admitted the failed one.
func (f *Filler) pruneDominatedBy(failed *model.Package) {
	removed := 0
	for _, id := range f.toPlace.IDs() {
		remaining := f.toPlace.Get(id)
		if remaining.LargerThan(failed.Dims) {
			f.toPlace.Remove(id)
			f.notPlaced.Add(remaining)
			removed++
		}
	}
	if removed > 0 {
		f.logger.Warn("pruned packages at least as large as the failed one",
			zap.Int("failed", failed.ID),
			zap.Int("count", removed))
	}
}
