package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/internal/storage"
	"github.com/OCharnyshevich/worldgen/internal/worldgen"
)

func main() {
	cfg := config.Default()

	var (
		configPath = flag.String("config", "", "path to a YAML or JSON world config")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		segments   int
	)
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.IntVar(&segments, "segments", cfg.Terrain.WidthSegments, "terrain grid segments per side")
	flag.IntVar(&cfg.Forest.Count, "trees", cfg.Forest.Count, "number of trees")
	flag.StringVar(&cfg.Forest.Generator, "generator", cfg.Forest.Generator, "tree generator: colonization or lsystem")
	flag.IntVar(&cfg.Grass.Count, "grass", cfg.Grass.Count, "number of grass blades")
	flag.StringVar(&cfg.Output.Dir, "out", cfg.Output.Dir, "output directory")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["segments"] {
		cfg.Terrain.WidthSegments = segments
		cfg.Terrain.HeightSegments = segments
	}

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
		log.Info("loaded config from file", "path", *configPath)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.New(cfg.Output.Dir, log)
	if err != nil {
		log.Error("open output", "error", err)
		os.Exit(1)
	}
	if prev, err := store.LoadManifest(); err == nil && prev != nil {
		log.Warn("overwriting previous world", "dir", cfg.Output.Dir, "seed", prev.Seed, "trees", len(prev.Trees))
	}

	w, err := worldgen.New(cfg, log).Build(ctx)
	if err != nil {
		log.Error("generate world", "error", err)
		os.Exit(1)
	}
	if _, err := store.SaveWorld(w); err != nil {
		log.Error("save world", "error", err)
		os.Exit(1)
	}
	if err := store.SaveConfig(cfg); err != nil {
		log.Error("save config", "error", err)
		os.Exit(1)
	}
}
