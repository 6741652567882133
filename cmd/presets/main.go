package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/worldgen/internal/config"
)

func main() {
	var (
		src  = flag.String("src", "", "go-getter source of a preset directory, e.g. git::https://host/repo.git//presets")
		name = flag.String("name", "default", "preset name")
		out  = flag.String("o", "./presets", "output dir path")
	)
	flag.Parse()

	if *src == "" {
		panic("preset source required")
	}

	if *out == "" {
		panic("output dir path required")
	}

	path := filepath.Join(*out, *name)

	if err := os.RemoveAll(path); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading preset %s", path)

	if err := get.Get(path, *src); err != nil {
		panic(err)
	}

	// Every *.yaml in the preset must load as a world config.
	files, err := filepath.Glob(filepath.Join(path, "*.yaml"))
	if err != nil {
		panic(err)
	}
	for _, f := range files {
		if _, err := config.Load(f); err != nil {
			panic(fmt.Errorf("preset %s: %w", f, err))
		}
	}

	log.Default().Printf("done downloading preset %s (%d configs)", path, len(files))
}
