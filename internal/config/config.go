// Package config resolves the run configuration from YAML files, environment
// variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iv-stpn/container-loading-problem/internal/engine"
	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

const (
	defaultOutputDir = "out"
	defaultLogLevel  = "info"
)

// ErrInvalidConfig reports a configuration that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Container   ContainerConfig `yaml:"container"`
	Packages    []GroupConfig   `yaml:"packages"`
	Heuristics  HeuristicConfig `yaml:"heuristics"`
	Typing      TypingConfig    `yaml:"typing"`
	Output      OutputConfig    `yaml:"output"`
	Log         LogConfig       `yaml:"log"`
	Parallelism int             `yaml:"parallelism"`
}

// ContainerConfig selects the container either by preset name or by explicit
// dimensions, plus any forbidden zones.
type ContainerConfig struct {
	Preset         string          `yaml:"preset"`
	Dims           geometry.Vector `yaml:"dims"`
	ForbiddenZones []geometry.Box  `yaml:"forbidden_zones"`
}

// GroupConfig declares one group of identical packages. Type is optional:
// nil defers to the typing strategy.
type GroupConfig struct {
	Count int             `yaml:"count"`
	Dims  geometry.Vector `yaml:"dims"`
	Type  *int            `yaml:"type"`
}

// HeuristicConfig names the heuristics of a run.
type HeuristicConfig struct {
	InitSort        string `yaml:"init_sort"`
	CornerSort      string `yaml:"corner_sort"`
	TypePermutation []int  `yaml:"type_permutation,flow"`
}

// TypingConfig controls how package types are assigned.
type TypingConfig struct {
	Strategy string `yaml:"strategy"`
	Limit    int    `yaml:"limit"`
	Seed     int64  `yaml:"seed"`
}

// OutputConfig points at the directory exports land in.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// CLIOverrides holds command-line flag overrides. Nil pointers mean the flag
// was not given.
type CLIOverrides struct {
	ConfigFile      string
	Container       *string
	Preset          *string
	ForbiddenZones  *[]string
	InitSort        *string
	CornerSort      *string
	TypePermutation *string
	OutputDir       *string
	LogLevel        *string
	LogFile         *string
	Parallelism     *int
}

// Load resolves the configuration with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		if err := applyFileConfig(&cfg, overrides.ConfigFile); err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Output: OutputConfig{Dir: defaultOutputDir},
		Log:    LogConfig{Level: defaultLogLevel},
	}
}

func applyFileConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func applyEnvConfig(cfg *Config) {
	if level := strings.TrimSpace(os.Getenv("LOADPLAN_LOG_LEVEL")); level != "" {
		cfg.Log.Level = level
	}
	if dir := strings.TrimSpace(os.Getenv("LOADPLAN_OUTPUT_DIR")); dir != "" {
		cfg.Output.Dir = dir
	}
	if raw := strings.TrimSpace(os.Getenv("LOADPLAN_PARALLELISM")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.Parallelism = value
		}
	}
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Container != nil && *overrides.Container != "" && overrides.Preset != nil && *overrides.Preset != "" {
		return fmt.Errorf("%w: choose one of --container and --preset", ErrInvalidConfig)
	}

	if overrides.Container != nil && *overrides.Container != "" {
		dims, err := ParseDims(*overrides.Container)
		if err != nil {
			return err
		}
		cfg.Container.Dims = dims
		cfg.Container.Preset = ""
	}
	if overrides.Preset != nil && *overrides.Preset != "" {
		cfg.Container.Preset = *overrides.Preset
		cfg.Container.Dims = geometry.Vector{}
	}
	if overrides.ForbiddenZones != nil && len(*overrides.ForbiddenZones) > 0 {
		zones := make([]geometry.Box, 0, len(*overrides.ForbiddenZones))
		for _, raw := range *overrides.ForbiddenZones {
			zone, err := ParseZone(raw)
			if err != nil {
				return err
			}
			zones = append(zones, zone)
		}
		cfg.Container.ForbiddenZones = zones
	}

	if overrides.InitSort != nil && *overrides.InitSort != "" {
		cfg.Heuristics.InitSort = *overrides.InitSort
	}
	if overrides.CornerSort != nil && *overrides.CornerSort != "" {
		cfg.Heuristics.CornerSort = *overrides.CornerSort
	}
	if overrides.TypePermutation != nil && *overrides.TypePermutation != "" {
		perm, err := ParsePermutation(*overrides.TypePermutation)
		if err != nil {
			return err
		}
		cfg.Heuristics.TypePermutation = perm
	}

	if overrides.OutputDir != nil && *overrides.OutputDir != "" {
		cfg.Output.Dir = *overrides.OutputDir
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.Log.Level = *overrides.LogLevel
	}
	if overrides.LogFile != nil && *overrides.LogFile != "" {
		cfg.Log.File = *overrides.LogFile
	}
	if overrides.Parallelism != nil && *overrides.Parallelism >= 0 {
		cfg.Parallelism = *overrides.Parallelism
	}
	return nil
}

func (c Config) validate() error {
	for i, group := range c.Packages {
		if group.Count <= 0 {
			return fmt.Errorf("%w: package group %d has count %d", ErrInvalidConfig, i, group.Count)
		}
		if !group.Dims.Positive() {
			return fmt.Errorf("%w: package group %d has dims %s", ErrInvalidConfig, i, group.Dims)
		}
		if group.Type != nil && *group.Type < 0 {
			return fmt.Errorf("%w: package group %d has negative type %d", ErrInvalidConfig, i, *group.Type)
		}
	}

	if _, err := engine.ResolveInitHeuristic(c.Heuristics.InitSort); err != nil {
		return err
	}
	if _, err := engine.ResolveCornerHeuristic(c.Heuristics.CornerSort); err != nil {
		return err
	}

	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// HeuristicNames exposes the configured heuristic combination.
func (c Config) HeuristicNames() model.HeuristicNames {
	return model.HeuristicNames{
		InitSort:        c.Heuristics.InitSort,
		CornerSort:      c.Heuristics.CornerSort,
		TypePermutation: c.Heuristics.TypePermutation,
	}
}

// Groups converts the configured package groups to model groups. A group
// without an explicit type defers to the typing strategy.
func (c Config) Groups() []model.PackageGroup {
	groups := make([]model.PackageGroup, 0, len(c.Packages))
	for _, g := range c.Packages {
		group := model.NewPackageGroup(g.Count, g.Dims)
		if g.Type != nil {
			group.Type = *g.Type
		}
		groups = append(groups, group)
	}
	return groups
}

// CatalogOptions maps the typing section to catalog build options.
func (c Config) CatalogOptions() model.CatalogOptions {
	return model.CatalogOptions{
		TypeStrategy: model.TypeStrategy(c.Typing.Strategy),
		TypeLimit:    c.Typing.Limit,
		Seed:         c.Typing.Seed,
	}
}

// ContainerSpec resolves the container section against the preset inventory.
func (c Config) ContainerSpec(inventory *model.Inventory) (model.ContainerSpec, error) {
	dims := c.Container.Dims
	if c.Container.Preset != "" {
		preset := inventory.FindPresetByName(c.Container.Preset)
		if preset == nil {
			return model.ContainerSpec{}, fmt.Errorf("%w: unknown container preset %q", ErrInvalidConfig, c.Container.Preset)
		}
		dims = preset.Dims
	}
	if !dims.Positive() {
		return model.ContainerSpec{}, fmt.Errorf("%w: no container configured", ErrInvalidConfig)
	}
	return model.ContainerSpec{Dims: dims, ForbiddenZones: c.Container.ForbiddenZones}, nil
}

// BuildCatalog builds the package catalog from the configured groups.
func (c Config) BuildCatalog() (*model.PackageList, error) {
	return model.BuildCatalog(c.Groups(), c.CatalogOptions())
}

// ParseDims parses container dimensions given as "LxWxH".
func ParseDims(raw string) (geometry.Vector, error) {
	parts := strings.Split(raw, "x")
	if len(parts) != geometry.Axes {
		return geometry.Vector{}, fmt.Errorf("%w: dims %q, want LxWxH", ErrInvalidConfig, raw)
	}
	var dims geometry.Vector
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Vector{}, fmt.Errorf("%w: dims %q: %v", ErrInvalidConfig, raw, err)
		}
		dims[i] = value
	}
	return dims, nil
}

// ParseZone parses a forbidden zone given as "minx,miny,minz:maxx,maxy,maxz".
func ParseZone(raw string) (geometry.Box, error) {
	halves := strings.Split(raw, ":")
	if len(halves) != 2 {
		return geometry.Box{}, fmt.Errorf("%w: zone %q, want min:max", ErrInvalidConfig, raw)
	}
	min, err := parseTriple(halves[0])
	if err != nil {
		return geometry.Box{}, fmt.Errorf("%w: zone %q: %v", ErrInvalidConfig, raw, err)
	}
	max, err := parseTriple(halves[1])
	if err != nil {
		return geometry.Box{}, fmt.Errorf("%w: zone %q: %v", ErrInvalidConfig, raw, err)
	}
	return geometry.Box{Min: min, Max: max}, nil
}

// ParsePermutation parses a type permutation given as "1,0,2".
func ParsePermutation(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	perm := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: permutation entry %q", ErrInvalidConfig, part)
		}
		perm = append(perm, value)
	}
	if len(perm) == 0 {
		return nil, fmt.Errorf("%w: empty type permutation", ErrInvalidConfig)
	}
	return perm, nil
}

func parseTriple(raw string) (geometry.Vector, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != geometry.Axes {
		return geometry.Vector{}, fmt.Errorf("want %d coordinates, got %d", geometry.Axes, len(parts))
	}
	var v geometry.Vector
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Vector{}, err
		}
		v[i] = value
	}
	return v, nil
}
