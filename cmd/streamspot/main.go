package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"streamspot/config"
	"streamspot/driver"
	"streamspot/hashfamily"
	"streamspot/logging"
	"streamspot/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamspot: config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)

	fam, err := hashfamily.New(cfg.Stream.L, cfg.Stream.C, cfg.Stream.Seed)
	if err != nil {
		log.Error("failed to build hash family", "error", err)
		os.Exit(1)
	}

	bootstrapFile, err := os.Open(cfg.Input.BootstrapPath)
	if err != nil {
		log.Error("failed to open bootstrap file", "path", cfg.Input.BootstrapPath, "error", err)
		os.Exit(1)
	}
	bootstrap, err := driver.ParseBootstrap(bootstrapFile, cfg.Stream.C)
	bootstrapFile.Close()
	if err != nil {
		log.Error("failed to parse bootstrap file", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.App.Name, "driver")
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	d, err := driver.New(cfg, fam, bootstrap, log, m)
	if err != nil {
		log.Error("failed to build driver", "error", err)
		os.Exit(1)
	}

	var in *os.File
	if cfg.Input.EdgesPath == "" || cfg.Input.EdgesPath == "-" {
		in = os.Stdin
	} else {
		in, err = os.Open(cfg.Input.EdgesPath)
		if err != nil {
			log.Error("failed to open edges file", "path", cfg.Input.EdgesPath, "error", err)
			os.Exit(1)
		}
		defer in.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("streamspot starting",
		"l", cfg.Stream.L, "b", cfg.Stream.B, "r", cfg.Stream.R, "c", cfg.Stream.C,
		"cache_capacity", cfg.Cache.Capacity,
	)

	out := os.Stdout
	err = d.Run(ctx, in, func(rec driver.Record) error {
		_, err := fmt.Fprintf(out, "%s\t%s\t%d\t%f\t%d\n", rec.Origin, rec.GraphID, rec.TimestampMs, rec.Score, rec.ClusterID)
		return err
	})
	if err != nil {
		log.Error("driver run failed", "error", err)
		os.Exit(1)
	}

	log.Info("streamspot finished")
}
