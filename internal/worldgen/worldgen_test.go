package worldgen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/OCharnyshevich/worldgen/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Terrain.Width = 32
	cfg.Terrain.Height = 32
	cfg.Terrain.WidthSegments = 8
	cfg.Terrain.HeightSegments = 6
	cfg.Forest.Count = 4
	cfg.Forest.Attraction.Count = 150
	cfg.Forest.MaxSteps = 60
	cfg.Grass.Count = 20
	return cfg
}

func TestBuildColonizationWorld(t *testing.T) {
	cfg := smallConfig()
	w, err := New(cfg, testLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, want := w.Terrain.VertexCount(), 9*7; got != want {
		t.Fatalf("terrain vertices = %d, want %d", got, want)
	}
	if err := w.Terrain.Validate(); err != nil {
		t.Fatalf("terrain Validate: %v", err)
	}
	if len(w.Trees) != cfg.Forest.Count {
		t.Fatalf("trees = %d, want %d", len(w.Trees), cfg.Forest.Count)
	}
	for i, tree := range w.Trees {
		if err := tree.Skeleton.Validate(); err != nil {
			t.Fatalf("tree %d: %v", i, err)
		}
		if tree.Skeleton.Len() < 2 || tree.Steps == 0 {
			t.Fatalf("tree %d did not grow: %d nodes, %d steps", i, tree.Skeleton.Len(), tree.Steps)
		}
		if root := tree.Skeleton.Position(0); root != tree.Placement.Position {
			t.Fatalf("tree %d root %v, want placement %v", i, root, tree.Placement.Position)
		}
		if r := tree.Skeleton.Node(0).Radius; r < cfg.Forest.LeafRadius*0.8 {
			t.Fatalf("tree %d trunk radius %f below leaf radius", i, r)
		}
	}
	if len(w.Grass) != cfg.Grass.Count || w.GrassBlade == nil {
		t.Fatalf("grass = %d blades (mesh %v), want %d", len(w.Grass), w.GrassBlade != nil, cfg.Grass.Count)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cfg := smallConfig()
	a, err := New(cfg, testLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := New(cfg, testLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := range a.Terrain.Positions {
		if a.Terrain.Positions[i] != b.Terrain.Positions[i] {
			t.Fatalf("terrain vertex %d differs", i)
		}
	}
	for i := range a.Trees {
		if a.Trees[i].ID != b.Trees[i].ID {
			t.Fatalf("tree %d id differs", i)
		}
		na, nb := a.Trees[i].Skeleton.Nodes(), b.Trees[i].Skeleton.Nodes()
		if len(na) != len(nb) {
			t.Fatalf("tree %d node count %d vs %d", i, len(na), len(nb))
		}
		for j := range na {
			if na[j].Position != nb[j].Position || na[j].Radius != nb[j].Radius {
				t.Fatalf("tree %d node %d differs", i, j)
			}
		}
	}
}

func TestBuildLSystemForest(t *testing.T) {
	cfg := smallConfig()
	cfg.Forest.Generator = config.GeneratorLSystem
	cfg.Forest.LSystem.Iterations = 3
	cfg.Grass.Count = 0

	w, err := New(cfg, testLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, tree := range w.Trees {
		if tree.Generator != config.GeneratorLSystem || tree.Steps != 3 {
			t.Fatalf("tree %d = %s/%d steps, want lsystem/3", i, tree.Generator, tree.Steps)
		}
		if err := tree.Skeleton.Validate(); err != nil {
			t.Fatalf("tree %d: %v", i, err)
		}
	}
	if w.Grass != nil || w.GrassBlade != nil {
		t.Fatal("grass generated with grass.count 0")
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(smallConfig(), testLogger()).Build(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Build error = %v, want context.Canceled", err)
	}
}

func TestBuildRejectsBadOctave(t *testing.T) {
	cfg := smallConfig()
	cfg.Terrain.Octaves = append(cfg.Octaves(), cfg.Octaves()[0])
	cfg.Terrain.Octaves[0].Kind = "worley"
	if _, err := New(cfg, testLogger()).Build(context.Background()); err == nil {
		t.Fatal("expected unknown noise kind error")
	}
}
