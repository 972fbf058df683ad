//go:build ebiten

package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"lavaflow/internal/app"
	"lavaflow/internal/config"
	"lavaflow/internal/session"
	"lavaflow/pkg/logger"
)

func main() {
	logger.Init()
	log := logger.Component("lava")

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	hf, err := cfg.HeightField()
	if err != nil {
		log.WithError(err).Fatal("terrain generation failed")
	}
	sess, err := session.New(cfg.Session, hf)
	if err != nil {
		log.WithError(err).Fatal("session failed")
	}

	game := app.New(sess, cfg)
	w, h := game.WindowSize()

	ebiten.SetWindowTitle("lava — " + sess.Engine().Name())
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.WithError(err).Fatal("viewer stopped")
	}
}
