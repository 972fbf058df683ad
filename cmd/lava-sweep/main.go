package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"lavaflow/internal/config"
	"lavaflow/internal/field"
	"lavaflow/internal/session"
	"lavaflow/internal/sweep"
	"lavaflow/internal/terrain"
	"lavaflow/pkg/logger"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	logger.Init()
	log := logger.Component("lava-sweep")

	fs := flag.NewFlagSet("lava-sweep", flag.ExitOnError)
	steps := fs.Int("steps", 400, "ticks to simulate per candidate")
	eruption := fs.Int("eruption", 120, "ticks the vent stays open (0 keeps it open)")
	passes := fs.Int("passes", 3, "coordinate-descent passes to execute")
	workers := fs.Int("workers", runtime.NumCPU(), "parallel candidate evaluations")
	ventU := fs.Float64("vent-u", 0.5, "vent position, normalized u")
	ventV := fs.Float64("vent-v", 0.5, "vent position, normalized v")
	manualOnly := fs.Bool("manual", false, "skip sweeping and only evaluate provided overrides")
	pngPath := fs.String("png", "", "write a preview of the best run to this PNG file")
	var overrides kvList
	fs.Var(&overrides, "set", "parameter override in key=value form (repeatable)")

	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	hf, err := cfg.HeightField()
	if err != nil {
		log.WithError(err).Fatal("terrain generation failed")
	}
	if err := applyOverrides(&cfg.Session, hf.Clone(), overrides); err != nil {
		log.WithError(err).Fatal("invalid override")
	}

	sc := sweep.Scenario{
		Session:       cfg.Session,
		Terrain:       hf,
		VentU:         *ventU,
		VentV:         *ventV,
		Steps:         *steps,
		EruptionSteps: *eruption,
		DT:            1 / float64(max(cfg.TPS, 1)),
		Seed:          cfg.Terrain.Seed,
	}

	start := time.Now()
	baseline, err := sweep.Run(sc)
	if err != nil {
		log.WithError(err).Fatal("baseline run failed")
	}
	fmt.Printf("Baseline (%s on %s terrain, %d steps): %s\n", cfg.Session.Engine, cfg.Terrain.Kind, *steps, describe(baseline))

	best := sc
	if !*manualOnly {
		fmt.Printf("Sweeping flow parameters (%d passes, %d workers)\n", *passes, *workers)
		tick, result, trace, err := sweep.ParameterSweep(sc, *passes, *workers)
		if err != nil {
			log.WithError(err).Fatal("sweep failed")
		}
		best.Session.Tick = tick
		fmt.Printf("\nBest found: %s\n", describe(result))
		if len(trace) > 1 {
			fmt.Println("\nImprovements:")
			for _, rec := range trace[1:] {
				fmt.Printf("  pass %d: %s=%s -> %s\n", rec.Pass, rec.Parameter, rec.Value, describe(rec.Result))
			}
		}
	}

	t := best.Session.Tick
	fmt.Println("\nParameters:")
	fmt.Printf("  %s=%.3f\n", session.KeyMobility, t.Mobility)
	fmt.Printf("  %s=%.3f\n", session.KeyViscosity, t.Viscosity)
	fmt.Printf("  %s=%.4f\n", session.KeyCooling, t.CoolingRate)
	fmt.Printf("\nElapsed %s\n", time.Since(start).Round(time.Millisecond))

	if *pngPath != "" {
		if err := writePreview(*pngPath, best, cfg.Palette); err != nil {
			log.WithError(err).Fatal("preview failed")
		}
		log.WithField("path", *pngPath).Info("preview written")
	}
}

func describe(r sweep.FlowResult) string {
	return fmt.Sprintf("max distance %.2f at step %d, last active step %d/%d, peak cells %d, final mass %.0f",
		r.MaxDistance, r.MaxDistanceStep, r.LastActiveStep, r.StepsSimulated, r.PeakActiveCells, r.FinalMass)
}

// applyOverrides routes key=value pairs through a throwaway session so flow
// and engine keys share the interactive clamping rules.
func applyOverrides(cfg *session.Config, hf *terrain.HeightField, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	s, err := session.New(*cfg, hf)
	if err != nil {
		return err
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("override %q: want key=value", kv)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("override %q: %w", kv, err)
		}
		if key == session.KeySize {
			ok = s.SetIntParameter(key, int(v))
		} else {
			ok = s.SetFloatParameter(key, v)
		}
		if !ok {
			return fmt.Errorf("override %q: unknown parameter", kv)
		}
	}
	*cfg = s.Config()
	return nil
}

func writePreview(path string, sc sweep.Scenario, palette string) error {
	snap, _, err := sweep.Final(sc)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	img := field.Preview(snap, field.ChannelThickness, 0, 255, field.NewPalette(palette))
	if err := field.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
