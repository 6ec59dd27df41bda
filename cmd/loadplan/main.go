// Command loadplan plans container loading jobs: it fills a container with
// rectangular packages using the Three Corners Heuristic, sweeps heuristic
// combinations in parallel, and exports the result as 3MF models, DXF
// wireframes, PDF reports, QR label sheets and result tables.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/iv-stpn/container-loading-problem/internal/config"
	"github.com/iv-stpn/container-loading-problem/internal/engine"
	"github.com/iv-stpn/container-loading-problem/internal/export"
	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/importer"
	"github.com/iv-stpn/container-loading-problem/internal/logging"
	"github.com/iv-stpn/container-loading-problem/internal/model"
	"github.com/iv-stpn/container-loading-problem/internal/project"
)

const version = "1.0.0"

// inputFlags are the job selection flags shared by run and sweep.
type inputFlags struct {
	container *string
	preset    *string
	forbidden *[]string
	packages  *string
	plan      *string
	example   *string
}

func addInputFlags(cmd *kingpin.CmdClause) *inputFlags {
	return &inputFlags{
		container: cmd.Flag("container", "Container dimensions as LxWxH in cm").String(),
		preset:    cmd.Flag("preset", "Container preset name from the inventory").String(),
		forbidden: cmd.Flag("forbidden", "Forbidden zone as minx,miny,minz:maxx,maxy,maxz (repeatable)").Strings(),
		packages:  cmd.Flag("packages", "Package catalog file, .csv or .xlsx").String(),
		plan:      cmd.Flag("plan", "Saved plan file to load the job from").String(),
		example:   cmd.Flag("example", "Built-in example job, example-1 or example-2").String(),
	}
}

// outputFlags are the export destination flags shared by run and search.
type outputFlags struct {
	model3MF *string
	dxf      *string
	pdf      *string
	labels   *string
	plan     *string
}

func addOutputFlags(cmd *kingpin.CmdClause) *outputFlags {
	return &outputFlags{
		model3MF: cmd.Flag("out-3mf", "Write the loaded container as a 3MF model").String(),
		dxf:      cmd.Flag("out-dxf", "Write the loaded container as a DXF wireframe").String(),
		pdf:      cmd.Flag("out-pdf", "Write a tier-by-tier PDF report").String(),
		labels:   cmd.Flag("out-labels", "Write a QR label sheet for the loading crew").String(),
		plan:     cmd.Flag("save-plan", "Save the job and its statistics as a plan file").String(),
	}
}

// runOutputs collects the export destinations of a run. Empty paths are
// skipped.
type runOutputs struct {
	model3MF string
	dxf      string
	pdf      string
	labels   string
	plan     string
}

func (f *outputFlags) values() runOutputs {
	return runOutputs{
		model3MF: *f.model3MF,
		dxf:      *f.dxf,
		pdf:      *f.pdf,
		labels:   *f.labels,
		plan:     *f.plan,
	}
}

func main() {
	kingpinApp := kingpin.New("loadplan", "3D container loading planner - fills containers with rectangular packages using the Three Corners Heuristic")
	kingpinApp.Version(version)

	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn or error").String()
	logFile := kingpinApp.Flag("log-file", "Also write logs to this file").String()
	quiet := kingpinApp.Flag("quiet", "Only log warnings and errors").Bool()

	runCmd := kingpinApp.Command("run", "Fill a container once and export the load plan")
	runInput := addInputFlags(runCmd)
	initSort := runCmd.Flag("init-sort", "Package ordering heuristic").String()
	cornerSort := runCmd.Flag("corner-sort", "Corner ordering heuristic").String()
	typePermutation := runCmd.Flag("type-permutation", "Package type order as comma-separated type IDs").String()
	runOutput := addOutputFlags(runCmd)

	sweepCmd := kingpinApp.Command("sweep", "Run every heuristic combination and report the best")
	sweepInput := addInputFlags(sweepCmd)
	permutations := sweepCmd.Flag("permutations", "Sweep package type permutations instead of heuristic pairs").Bool()
	sweepCorner := sweepCmd.Flag("corner-sort", "Corner ordering heuristic for a permutation sweep").String()
	parallelism := sweepCmd.Flag("parallelism", "Trials to run at once, 0 means one per CPU").Default("-1").Int()
	outCSV := sweepCmd.Flag("out-csv", "Write the result table as CSV").String()
	outXLSX := sweepCmd.Flag("out-xlsx", "Write the result table as an Excel workbook").String()

	searchCmd := kingpinApp.Command("search", "Evolve a package ordering with a genetic algorithm and export its best run")
	searchInput := addInputFlags(searchCmd)
	searchCorner := searchCmd.Flag("corner-sort", "Corner ordering heuristic the search runs with").String()
	population := searchCmd.Flag("population", "Orderings per generation").Default("30").Int()
	generations := searchCmd.Flag("generations", "Generations to evolve").Default("40").Int()
	mutationRate := searchCmd.Flag("mutation-rate", "Chance of mutating an offspring").Default("0.15").Float64()
	searchSeed := searchCmd.Flag("seed", "Search randomness seed, 0 seeds from the clock").Default("42").Int64()
	searchParallelism := searchCmd.Flag("parallelism", "Fitness runs at once, 0 means one per CPU").Default("-1").Int()
	searchOutput := addOutputFlags(searchCmd)

	presetsCmd := kingpinApp.Command("presets", "List the container presets in the inventory")

	importCmd := kingpinApp.Command("import", "Parse a package catalog file and show what it contains")
	importFile := importCmd.Arg("file", "Catalog file, .csv or .xlsx").Required().String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if *logFile != "" {
		overrides.LogFile = logFile
	}

	var input *inputFlags
	switch command {
	case runCmd.FullCommand():
		input = runInput
	case sweepCmd.FullCommand():
		input = sweepInput
	case searchCmd.FullCommand():
		input = searchInput
	}
	if input != nil {
		if *input.container != "" {
			overrides.Container = input.container
		}
		if *input.preset != "" {
			overrides.Preset = input.preset
		}
		if len(*input.forbidden) > 0 {
			overrides.ForbiddenZones = input.forbidden
		}
	}
	switch command {
	case runCmd.FullCommand():
		if *initSort != "" {
			overrides.InitSort = initSort
		}
		if *cornerSort != "" {
			overrides.CornerSort = cornerSort
		}
		if *typePermutation != "" {
			overrides.TypePermutation = typePermutation
		}
	case sweepCmd.FullCommand():
		if *sweepCorner != "" {
			overrides.CornerSort = sweepCorner
		}
		if *parallelism >= 0 {
			overrides.Parallelism = parallelism
		}
	case searchCmd.FullCommand():
		if *searchCorner != "" {
			overrides.CornerSort = searchCorner
		}
		if *searchParallelism >= 0 {
			overrides.Parallelism = searchParallelism
		}
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	level := cfg.Log.Level
	if *quiet {
		level = "warn"
	}
	logger, err := logging.New(logging.Options{Level: level, File: cfg.Log.File})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case runCmd.FullCommand():
		err = runFill(cfg, runInput, runOutput.values(), logger)
	case sweepCmd.FullCommand():
		err = runSweep(cfg, sweepInput, *permutations, *outCSV, *outXLSX, logger)
	case searchCmd.FullCommand():
		geneticCfg := engine.DefaultGeneticConfig()
		geneticCfg.PopulationSize = *population
		geneticCfg.Generations = *generations
		geneticCfg.MutationRate = *mutationRate
		geneticCfg.Seed = *searchSeed
		geneticCfg.Parallelism = cfg.Parallelism
		err = runSearch(cfg, searchInput, geneticCfg, searchOutput.values(), logger)
	case presetsCmd.FullCommand():
		err = listPresets()
	case importCmd.FullCommand():
		err = inspectCatalog(*importFile, logger)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

// loadJob is a resolved filling job: the container, the packages to load
// into it, and the heuristics to load them with.
type loadJob struct {
	name      string
	container model.ContainerSpec
	groups    []model.PackageGroup
	names     model.HeuristicNames
	plan      *model.LoadPlan
}

// resolveJob turns flags and configuration into a concrete job. A saved plan
// or an example supplies container and groups; explicit container flags beat
// the container either one carries, and a catalog file beats the groups of
// every other source.
func resolveJob(cfg config.Config, in *inputFlags, logger *zap.Logger) (loadJob, error) {
	job := loadJob{name: "cli", names: cfg.HeuristicNames()}

	switch {
	case *in.plan != "":
		plan, err := project.LoadPlan(*in.plan)
		if err != nil {
			return loadJob{}, err
		}
		logger.Info("loaded plan", zap.String("name", plan.Name), zap.String("id", plan.ID))
		job.name = plan.Name
		job.container = plan.Container
		job.groups = plan.Groups
		job.names = mergeNames(plan.Heuristics, cfg.HeuristicNames())
		job.plan = &plan
	case *in.example != "":
		example := model.FindExamplePlan(*in.example)
		if example == nil {
			return loadJob{}, fmt.Errorf("unknown example %q: want %s", *in.example, strings.Join(exampleNames(), " or "))
		}
		job.name = example.Name
		job.container = example.Container
		job.groups = example.Groups
	default:
		spec, err := containerFromConfig(cfg, logger)
		if err != nil {
			return loadJob{}, err
		}
		job.container = spec
		job.groups = cfg.Groups()
	}

	if (*in.container != "" || *in.preset != "") && (*in.plan != "" || *in.example != "") {
		spec, err := containerFromConfig(cfg, logger)
		if err != nil {
			return loadJob{}, err
		}
		job.container = spec
	}

	if *in.packages != "" {
		imported, err := importCatalog(*in.packages)
		if err != nil {
			return loadJob{}, err
		}
		for _, warning := range imported.Warnings {
			logger.Warn(warning)
		}
		if job.name == "cli" {
			job.name = strings.TrimSuffix(filepath.Base(*in.packages), filepath.Ext(*in.packages))
		}
		job.groups = imported.Groups
	}

	if len(job.groups) == 0 {
		return loadJob{}, fmt.Errorf("%w: no packages to load, give --packages, --plan, --example or a config file", config.ErrInvalidConfig)
	}
	return job, nil
}

// containerFromConfig resolves the configured container against the preset
// inventory, creating the inventory on first use.
func containerFromConfig(cfg config.Config, logger *zap.Logger) (model.ContainerSpec, error) {
	inventory, path, err := project.LoadOrCreateInventory()
	if err != nil {
		return model.ContainerSpec{}, err
	}
	logger.Debug("loaded inventory", zap.String("path", path), zap.Int("presets", len(inventory.Presets)))
	return cfg.ContainerSpec(&inventory)
}

// mergeNames lets configuration and flags override a saved plan's heuristics
// field by field.
func mergeNames(base, override model.HeuristicNames) model.HeuristicNames {
	if override.InitSort != "" {
		base.InitSort = override.InitSort
	}
	if override.CornerSort != "" {
		base.CornerSort = override.CornerSort
	}
	if len(override.TypePermutation) > 0 {
		base.TypePermutation = override.TypePermutation
	}
	return base
}

func exampleNames() []string {
	examples := model.ExamplePlans()
	names := make([]string, len(examples))
	for i, example := range examples {
		names[i] = example.Name
	}
	return names
}

// importCatalog reads a package catalog, dispatching on the file extension.
func importCatalog(path string) (*importer.ImportResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return importer.ImportCSV(path)
	case ".xlsx":
		return importer.ImportXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q: want .csv or .xlsx", filepath.Ext(path))
	}
}

func runFill(cfg config.Config, in *inputFlags, out runOutputs, logger *zap.Logger) error {
	job, err := resolveJob(cfg, in, logger)
	if err != nil {
		return err
	}

	container, err := job.container.Build()
	if err != nil {
		return err
	}
	catalog, err := model.BuildCatalog(job.groups, cfg.CatalogOptions())
	if err != nil {
		return err
	}
	heuristics, err := engine.HeuristicsFromNames(job.names)
	if err != nil {
		return err
	}

	logger.Info("filling container",
		zap.String("job", job.name),
		zap.Stringer("dims", job.container.Dims),
		zap.Int("packages", catalog.Len()),
		zap.String("init_sort", job.names.InitSort),
		zap.String("corner_sort", job.names.CornerSort))

	filler := engine.NewFiller(container, catalog, engine.WithLogger(logger))
	result, err := filler.Fill(heuristics)
	if err != nil {
		return err
	}

	stats := result.Stats(job.name)
	logger.Info("run complete",
		zap.String("run", stats.Run),
		zap.Float64("seconds", stats.Time),
		zap.Int("placed", stats.PlacedN),
		zap.Int("remaining", stats.RemainingN),
		zap.Float64("placed_ratio", stats.PlacedRatio),
		zap.Float64("filling_ratio", stats.FillingRatio))
	if stats.RemainingN > 0 {
		// Packages that do not fit are an outcome, not an error.
		logger.Warn("not every package fits",
			zap.Int("remaining", stats.RemainingN),
			zap.Float64("remaining_volume", stats.RemainingVol))
	}

	return exportRun(result, stats, job, out, logger)
}

func exportRun(result *engine.Result, stats model.Statistics, job loadJob, out runOutputs, logger *zap.Logger) error {
	if out.model3MF != "" {
		if err := export.Save3MF(out.model3MF, result.Placed); err != nil {
			return err
		}
		logger.Info("wrote 3MF model", zap.String("path", out.model3MF))
	}
	if out.dxf != "" {
		if err := export.SaveDXF(out.dxf, result.Placed); err != nil {
			return err
		}
		logger.Info("wrote DXF wireframe", zap.String("path", out.dxf))
	}
	if out.pdf != "" {
		if err := export.SavePDF(out.pdf, result.Placed, stats); err != nil {
			return err
		}
		logger.Info("wrote PDF report", zap.String("path", out.pdf))
	}
	if out.labels != "" {
		if err := export.GenerateLabelsPDF(out.labels, result.Placed); err != nil {
			return err
		}
		logger.Info("wrote label sheet", zap.String("path", out.labels))
	}
	if out.plan != "" {
		plan := job.plan
		if plan == nil {
			created := model.NewLoadPlan(job.name, job.container, job.groups)
			plan = &created
		}
		plan.Heuristics = job.names
		plan.LastStats = &stats
		plan.Touch()
		if err := project.SavePlan(out.plan, *plan); err != nil {
			return err
		}
		logger.Info("saved plan", zap.String("path", out.plan), zap.String("id", plan.ID))
	}
	return nil
}

func runSweep(cfg config.Config, in *inputFlags, permutations bool, outCSV, outXLSX string, logger *zap.Logger) error {
	job, err := resolveJob(cfg, in, logger)
	if err != nil {
		return err
	}
	catalog, err := model.BuildCatalog(job.groups, cfg.CatalogOptions())
	if err != nil {
		return err
	}

	var scenarios []engine.Scenario
	if permutations {
		scenarios, err = engine.BuildPermutationScenarios(catalog, cfg.Heuristics.CornerSort)
		if err != nil {
			return err
		}
	} else {
		scenarios = engine.BuildHeuristicScenarios()
	}

	spec := engine.TrialSpec{Container: job.container, Catalog: catalog}
	results, err := engine.Sweep(spec, scenarios, cfg.Parallelism, logger)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("trials failed", zap.Int("failed", failed), zap.Int("total", len(results)))
	}

	best := engine.BestByPlacedRatio(results)
	if best < 0 {
		return fmt.Errorf("every trial failed")
	}
	logger.Info("best scenario",
		zap.String("scenario", results[best].Scenario.Name),
		zap.Float64("placed_ratio", results[best].Stats.PlacedRatio),
		zap.Float64("filling_ratio", results[best].Stats.FillingRatio))

	if outCSV != "" {
		if err := export.SaveResultsCSV(outCSV, results); err != nil {
			return err
		}
		logger.Info("wrote result table", zap.String("path", outCSV))
	}
	if outXLSX != "" {
		if err := export.SaveResultsXLSX(outXLSX, results); err != nil {
			return err
		}
		logger.Info("wrote result workbook", zap.String("path", outXLSX))
	}
	if outCSV == "" && outXLSX == "" {
		// No table destination given: print the table instead.
		return export.WriteResultsCSV(os.Stdout, results)
	}
	return nil
}

func runSearch(cfg config.Config, in *inputFlags, geneticCfg engine.GeneticConfig, out runOutputs, logger *zap.Logger) error {
	job, err := resolveJob(cfg, in, logger)
	if err != nil {
		return err
	}
	catalog, err := model.BuildCatalog(job.groups, cfg.CatalogOptions())
	if err != nil {
		return err
	}

	spec := engine.TrialSpec{Container: job.container, Catalog: catalog}
	result, err := engine.SearchOrder(spec, cfg.Heuristics.CornerSort, geneticCfg, logger)
	if err != nil {
		return err
	}

	stats := result.Stats(job.name)
	logger.Info("search complete",
		zap.String("run", stats.Run),
		zap.Int("placed", stats.PlacedN),
		zap.Int("remaining", stats.RemainingN),
		zap.Float64("placed_ratio", stats.PlacedRatio),
		zap.Float64("filling_ratio", stats.FillingRatio))
	if stats.RemainingN > 0 {
		logger.Warn("not every package fits",
			zap.Int("remaining", stats.RemainingN),
			zap.Float64("remaining_volume", stats.RemainingVol))
	}

	// The evolved ordering has no registry name; a saved plan keeps only the
	// corner heuristic.
	job.names = model.HeuristicNames{CornerSort: cfg.Heuristics.CornerSort}
	return exportRun(result, stats, job, out, logger)
}

func listPresets() error {
	inventory, path, err := project.LoadOrCreateInventory()
	if err != nil {
		return err
	}
	fmt.Printf("Container presets in %s:\n\n", path)
	for _, preset := range inventory.Presets {
		fmt.Printf("  %-10s %7.1f x %5.1f x %5.1f cm   %s\n",
			preset.Name,
			preset.Dims[geometry.AxisX],
			preset.Dims[geometry.AxisY],
			preset.Dims[geometry.AxisZ],
			preset.Description)
	}
	return nil
}

func inspectCatalog(path string, logger *zap.Logger) error {
	imported, err := importCatalog(path)
	if err != nil {
		return err
	}
	for _, warning := range imported.Warnings {
		logger.Warn(warning)
	}

	total := 0
	volume := 0.0
	for _, group := range imported.Groups {
		total += group.Count
		volume += float64(group.Count) * group.Dims.Volume()
	}
	fmt.Printf("%s: %d groups, %d packages, %.0f cm3 total\n\n", filepath.Base(path), len(imported.Groups), total, volume)
	for i, group := range imported.Groups {
		label := "untyped"
		if group.Type != model.TypeNone {
			label = fmt.Sprintf("type %d", group.Type)
		}
		fmt.Printf("  group %-3d %4d x %s  %s\n", i, group.Count, group.Dims, label)
	}
	return nil
}
