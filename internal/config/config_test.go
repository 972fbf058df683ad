package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"lavaflow/internal/core"
)

const sample = `
[session]
engine = thermal
size = 64

[flow]
mobility = 1.25
cooling = 0

[vents]
amount = 90

[terrain]
kind = cone
seed = 7

[thermal]
yield_strength = 800
terrain_feedback = false

[server]
addr = 127.0.0.1:9000
`

func TestLoadOverridesDefaults(t *testing.T) {
	c, err := Load([]byte(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Session.Engine != "thermal" || c.Session.Size != 64 {
		t.Fatalf("session section not applied: %+v", c.Session)
	}
	if c.Session.Tick.Mobility != 1.25 || c.Session.Tick.CoolingRate != 0 {
		t.Fatalf("flow section not applied: %+v", c.Session.Tick)
	}
	if c.Session.Tick.Viscosity != core.DefaultTickConfig().Viscosity {
		t.Fatal("missing keys should keep defaults")
	}
	if c.Session.VentAmount != 90 {
		t.Fatalf("vent amount = %f", c.Session.VentAmount)
	}
	if c.Terrain.Kind != "cone" || c.Terrain.Seed != 7 || c.Terrain.Resolution != 256 {
		t.Fatalf("terrain section not applied: %+v", c.Terrain)
	}
	if c.Session.Thermal.YieldStrength != 800 || c.Session.Thermal.TerrainFeedback {
		t.Fatalf("thermal section not applied: %+v", c.Session.Thermal)
	}
	if c.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", c.Addr)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load([]byte("[unterminated")); err == nil {
		t.Fatal("malformed INI should fail")
	}
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lava.ini")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c, err := Parse(fs, []string{"-config", path, "-size", "32", "-terrain=flat"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Session.Size != 32 || c.Terrain.Kind != "flat" {
		t.Fatalf("flags should win: size=%d kind=%s", c.Session.Size, c.Terrain.Kind)
	}
	if c.Session.Engine != "thermal" {
		t.Fatal("file values should survive where no flag is given")
	}
	hf, err := c.HeightField()
	if err != nil {
		t.Fatal(err)
	}
	if hf.R != 256 {
		t.Fatalf("terrain resolution = %d", hf.R)
	}
}

func TestParseWithoutFile(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c, err := Parse(fs, []string{"--engine=thermal"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Session.Engine != "thermal" || c.TPS != Default().TPS {
		t.Fatalf("unexpected config %+v", c)
	}
	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := Parse(fs, []string{"-config", filepath.Join(t.TempDir(), "missing.ini")}); err == nil {
		t.Fatal("missing config file should fail")
	}
}
