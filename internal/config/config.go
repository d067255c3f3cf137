package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"der-reliability/internal/data"
	"der-reliability/internal/engine"
	"der-reliability/internal/logger"
	"der-reliability/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Configuration string           `yaml:"configuration" default:"pv_bess_grid_connected" validate:"required"`
	Simulation    SimulationConfig `yaml:"simulation"`
	LoadPoint     LoadPointConfig  `yaml:"load_point"`
	PV            PVConfig         `yaml:"pv"`
	// Optional: load battery parameters from a separate YAML.
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string         `yaml:"battery_file"`
	Battery     BatteryConfig  `yaml:"battery"`
	Profiles    ProfilesConfig `yaml:"profiles"`
	Log         logger.Config  `yaml:"log"`

	// dir resolves relative profile paths.
	dir string
}

type SimulationConfig struct {
	ConvergenceThreshold float64 `yaml:"convergence_threshold" default:"0.05" validate:"gt=0"`
	YearsPerBatch        int     `yaml:"years_per_batch" default:"100" validate:"gte=1"`
	Workers              int     `yaml:"workers" validate:"gte=0"` // 0 = one per CPU
	MaxRounds            int     `yaml:"max_rounds" default:"500" validate:"gte=1"`
	MinYearsZeroMean     int     `yaml:"min_years_zero_mean" default:"1000" validate:"gte=0"`
	Seed                 int64   `yaml:"seed" default:"1"`
}

type LoadPointConfig struct {
	FailureRatePerYear float64 `yaml:"failure_rate_per_year" validate:"gt=0"`
	RepairTimeHours    float64 `yaml:"repair_time_hours" validate:"gt=0"`
}

type PVConfig struct {
	CapacityKW     float64 `yaml:"capacity_kw" validate:"gte=0"`
	ModuleRatingKW float64 `yaml:"module_rating_kw" default:"0.3" validate:"gt=0"`
	DeratingFactor float64 `yaml:"derating_factor" default:"0.8" validate:"gt=0,lte=1"`
	FailureRate    float64 `yaml:"failure_rate" default:"4.35133e-05" validate:"gt=0"`
	RepairRate     float64 `yaml:"repair_rate" default:"0.0964337280" validate:"gt=0"`
}

type BatteryConfig struct {
	Name         string  `yaml:"name"`
	CapacityKWh  float64 `yaml:"capacity_kwh" validate:"gte=0"`
	PowerLimitKW float64 `yaml:"power_limit_kw" validate:"gte=0"`
	MinSOC       float64 `yaml:"soc_min" validate:"gte=0,lt=1"`
	InitialSOC   float64 `yaml:"initial_soc" default:"1" validate:"gte=0,lte=1"`
	FailureRate  float64 `yaml:"failure_rate" default:"1.14155e-05" validate:"gt=0"`
	RepairRate   float64 `yaml:"repair_rate" default:"0.1" validate:"gt=0"`
}

type ProfilesConfig struct {
	Load       string `yaml:"load" validate:"required"`
	Irradiance string `yaml:"irradiance"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads, merges and applies defaults, but does not validate.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		loaded, err := LoadBatteryFile(c.resolve(c.BatteryFile))
		if err != nil {
			return nil, err
		}
		// c.Battery already carries defaults; only explicit values override.
		var explicit batteryFileWrapper
		if err := yaml.Unmarshal(raw, &explicit); err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, explicit.Battery)
		if err := defaults.Set(&c.Battery); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Parse decodes YAML and fills defaults. Relative paths resolve against the
// working directory.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// resolve prefers paths relative to the config file directory, but falls
// back to the provided path (relative to cwd) if that doesn't exist.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	cand := filepath.Join(c.dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fieldError(err)
	}
	cfg, err := c.ParsedConfiguration()
	if err != nil {
		return err
	}
	if cfg.HasPV() {
		if c.Profiles.Irradiance == "" {
			return &model.ConfigError{Field: "profiles.irradiance", Reason: "required with PV"}
		}
		if err := c.PV.ToModelParams().Validate(); err != nil {
			return err
		}
	}
	if cfg.HasBattery() {
		if _, err := model.NewBattery(c.Battery.ToModelParams()); err != nil {
			return fmt.Errorf("battery config invalid: %w", err)
		}
	}
	return nil
}

func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		return &model.ConfigError{Field: field, Reason: "failed " + reason}
	}
	return err
}

func (c *Config) ParsedConfiguration() (model.Configuration, error) {
	return model.ParseConfiguration(c.Configuration)
}

func (l LoadPointConfig) ToModelParams() model.LoadPointParams {
	return model.LoadPointParams{
		FailureRatePerYear: l.FailureRatePerYear,
		RepairTimeHours:    l.RepairTimeHours,
	}
}

func (p PVConfig) ToModelParams() model.PVParams {
	return model.PVParams{
		CapacityKW:     p.CapacityKW,
		ModuleRatingKW: p.ModuleRatingKW,
		DeratingFactor: p.DeratingFactor,
		FailureRate:    p.FailureRate,
		RepairRate:     p.RepairRate,
	}
}

func (b BatteryConfig) ToModelParams() model.BatteryParams {
	return model.BatteryParams{
		CapacityKWh:  b.CapacityKWh,
		PowerLimitKW: b.PowerLimitKW,
		MinSOC:       b.MinSOC,
		InitialSOC:   b.InitialSOC,
		FailureRate:  b.FailureRate,
		RepairRate:   b.RepairRate,
	}
}

// ToInputs builds the evaluation inputs from already loaded profiles.
func (c *Config) ToInputs(load, irradiance []float64) (*model.Inputs, error) {
	cfg, err := c.ParsedConfiguration()
	if err != nil {
		return nil, err
	}
	in := &model.Inputs{
		Configuration: cfg,
		LoadKW:        load,
		Irradiance:    irradiance,
		LoadPoint:     c.LoadPoint.ToModelParams(),
		PV:            c.PV.ToModelParams(),
		Battery:       c.Battery.ToModelParams(),
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// LoadInputs reads the profiles named in the config and builds the inputs.
// The irradiance profile is only read when the configuration has PV.
func (c *Config) LoadInputs() (*model.Inputs, error) {
	cfg, err := c.ParsedConfiguration()
	if err != nil {
		return nil, err
	}
	load, err := data.LoadProfileCSV(c.resolve(c.Profiles.Load))
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var irr []float64
	if cfg.HasPV() || c.Profiles.Irradiance != "" {
		irr, err = data.LoadProfileCSV(c.resolve(c.Profiles.Irradiance))
		if err != nil {
			return nil, fmt.Errorf("irradiance profile: %w", err)
		}
	}
	return c.ToInputs(load, irr)
}

func (s SimulationConfig) ToOptions(log *zerolog.Logger) engine.Options {
	return engine.Options{
		ConvergenceThreshold: s.ConvergenceThreshold,
		YearsPerBatch:        s.YearsPerBatch,
		Workers:              s.Workers,
		MaxRounds:            s.MaxRounds,
		MinYearsZeroMean:     s.MinYearsZeroMean,
		Seed:                 s.Seed,
		Logger:               log,
	}
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset: a YAML file with a top-level
// "battery" section.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, err
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.PowerLimitKW != 0 {
		out.PowerLimitKW = override.PowerLimitKW
	}
	if override.MinSOC != 0 {
		out.MinSOC = override.MinSOC
	}
	if override.InitialSOC != 0 {
		out.InitialSOC = override.InitialSOC
	}
	if override.FailureRate != 0 {
		out.FailureRate = override.FailureRate
	}
	if override.RepairRate != 0 {
		out.RepairRate = override.RepairRate
	}
	return out
}
