package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"lavaflow/internal/config"
	"lavaflow/internal/server"
	"lavaflow/internal/session"
	"lavaflow/pkg/logger"
)

func main() {
	logger.Init()
	log := logger.Component("lava-server")

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
	log.WithFields(logrus.Fields{
		"engine":  cfg.Session.Engine,
		"size":    cfg.Session.Size,
		"terrain": cfg.Terrain.Kind,
		"tps":     cfg.TPS,
	}).Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.NewHub(sess, cfg.TPS))
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
