package config

import (
	"flag"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"lavaflow/internal/session"
	"lavaflow/internal/terrain"
)

// Terrain selects the synthetic height field a session starts on.
type Terrain struct {
	Kind       string
	Resolution int
	Relief     float64
	Seed       int64
}

// Config is the full process configuration shared by the viewer, the
// server and the sweep tool.
type Config struct {
	Session session.Config
	Terrain Terrain

	TPS      int
	Scale    int
	HUDWidth int
	Palette  string

	Addr string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: session.DefaultConfig(),
		Terrain: Terrain{
			Kind:       "hills",
			Resolution: 256,
			Relief:     120,
			Seed:       42,
		},
		TPS:      30,
		Scale:    4,
		HUDWidth: 280,
		Palette:  "inferno",
		Addr:     ":8080",
	}
}

// Load reads an INI file (or raw INI bytes) over the defaults. Missing
// keys keep their default values.
func Load(source any) (*Config, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c := Default()
	c.apply(file)
	return c, nil
}

func (c *Config) apply(file *ini.File) {
	s := file.Section("session")
	c.Session.Engine = s.Key("engine").MustString(c.Session.Engine)
	c.Session.Size = s.Key("size").MustInt(c.Session.Size)
	c.TPS = s.Key("tps").MustInt(c.TPS)
	c.Scale = s.Key("scale").MustInt(c.Scale)
	c.HUDWidth = s.Key("hud_width").MustInt(c.HUDWidth)
	c.Palette = s.Key("palette").MustString(c.Palette)

	flow := file.Section("flow")
	t := &c.Session.Tick
	t.Mobility = flow.Key("mobility").MustFloat64(t.Mobility)
	t.Viscosity = flow.Key("viscosity").MustFloat64(t.Viscosity)
	t.CoolingRate = flow.Key("cooling").MustFloat64(t.CoolingRate)
	t.InjectionAmount = flow.Key("injection_amount").MustFloat64(t.InjectionAmount)
	t.InjectionRadius = flow.Key("injection_radius").MustFloat64(t.InjectionRadius)

	v := file.Section("vents")
	c.Session.VentAmount = v.Key("amount").MustFloat64(c.Session.VentAmount)
	c.Session.VentRadius = v.Key("radius").MustFloat64(c.Session.VentRadius)

	tr := file.Section("terrain")
	c.Terrain.Kind = tr.Key("kind").MustString(c.Terrain.Kind)
	c.Terrain.Resolution = tr.Key("resolution").MustInt(c.Terrain.Resolution)
	c.Terrain.Relief = tr.Key("relief").MustFloat64(c.Terrain.Relief)
	c.Terrain.Seed = tr.Key("seed").MustInt64(c.Terrain.Seed)

	th := file.Section("thermal")
	p := &c.Session.Thermal
	p.CellSize = th.Key("cell_size").MustFloat64(p.CellSize)
	p.Density = th.Key("density").MustFloat64(p.Density)
	p.ConductiveCoeff = th.Key("conductive_coeff").MustFloat64(p.ConductiveCoeff)
	p.ConvectiveCoeff = th.Key("convective_coeff").MustFloat64(p.ConvectiveCoeff)
	p.YieldStrength = th.Key("yield_strength").MustFloat64(p.YieldStrength)
	p.VelocityScale = th.Key("velocity_scale").MustFloat64(p.VelocityScale)
	p.MaxFluxFraction = th.Key("max_flux_fraction").MustFloat64(p.MaxFluxFraction)
	p.MinFlowThickness = th.Key("min_flow_thickness").MustFloat64(p.MinFlowThickness)
	p.MinFlowVelocity = th.Key("min_flow_velocity").MustFloat64(p.MinFlowVelocity)
	p.EruptionTemp = th.Key("eruption_temp").MustFloat64(p.EruptionTemp)
	p.CrustGrowthRate = th.Key("crust_growth_rate").MustFloat64(p.CrustGrowthRate)
	p.ErosionRate = th.Key("erosion_rate").MustFloat64(p.ErosionRate)
	p.ThicknessPerUnit = th.Key("thickness_per_unit").MustFloat64(p.ThicknessPerUnit)
	p.TerrainFeedback = th.Key("terrain_feedback").MustBool(p.TerrainFeedback)

	c.Addr = file.Section("server").Key("addr").MustString(c.Addr)
}

// Bind attaches the configuration to the provided FlagSet. Flags override
// whatever the INI file set.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Session.Engine, "engine", c.Session.Engine, "simulation engine (transport or thermal)")
	fs.IntVar(&c.Session.Size, "size", c.Session.Size, "simulation grid side")
	fs.IntVar(&c.TPS, "tps", c.TPS, "physics ticks per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.HUDWidth, "hud-width", c.HUDWidth, "HUD panel width in pixels")
	fs.StringVar(&c.Palette, "palette", c.Palette, "colour palette (inferno or viridis)")
	fs.StringVar(&c.Terrain.Kind, "terrain", c.Terrain.Kind, "terrain kind: "+strings.Join(terrain.Kinds, ", "))
	fs.IntVar(&c.Terrain.Resolution, "terrain-res", c.Terrain.Resolution, "terrain resolution")
	fs.Float64Var(&c.Terrain.Relief, "relief", c.Terrain.Relief, "terrain relief in metres")
	fs.Int64Var(&c.Terrain.Seed, "seed", c.Terrain.Seed, "terrain seed")
	fs.Float64Var(&c.Session.Tick.Mobility, "mobility", c.Session.Tick.Mobility, "transport mobility")
	fs.Float64Var(&c.Session.Tick.Viscosity, "viscosity", c.Session.Tick.Viscosity, "diffusion strength")
	fs.Float64Var(&c.Session.Tick.CoolingRate, "cooling", c.Session.Tick.CoolingRate, "cooling rate")
	fs.StringVar(&c.Addr, "addr", c.Addr, "server listen address")
}

// Parse builds a Config from defaults, an optional -config INI file found in
// args, and finally the flags themselves.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Default()
	if path := configPath(args); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}
	var ignored string
	fs.StringVar(&ignored, "config", "", "path to an INI configuration file")
	c.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func configPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if len(name) == len(a) {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// HeightField generates the configured terrain.
func (c *Config) HeightField() (*terrain.HeightField, error) {
	return terrain.Generate(c.Terrain.Kind, c.Terrain.Resolution, c.Terrain.Relief, c.Terrain.Seed)
}
