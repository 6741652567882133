package worldgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/pkg/colonization"
	"github.com/OCharnyshevich/worldgen/pkg/heightmap"
	"github.com/OCharnyshevich/worldgen/pkg/lsystem"
	"github.com/OCharnyshevich/worldgen/pkg/mesh"
	"github.com/OCharnyshevich/worldgen/pkg/noise"
	"github.com/OCharnyshevich/worldgen/pkg/sampling"
	"github.com/OCharnyshevich/worldgen/pkg/skeleton"
	"github.com/OCharnyshevich/worldgen/pkg/vegetation"
)

// Seed offsets keep the terrain, placement and tree streams apart.
const (
	treePlacementSeed  = 1
	grassPlacementSeed = 2
	treeCloudSeed      = 1000
)

// Tree is one grown, simplified and radius-annotated tree.
type Tree struct {
	ID        uuid.UUID
	Placement vegetation.Placement
	Generator string
	// Steps is the number of growth rounds (colonization) or rewrite
	// iterations (lsystem).
	Steps    int
	Skeleton *skeleton.Skeleton
}

// World is the output of one Build.
type World struct {
	Seed       int64
	Terrain    *mesh.Mesh
	Trees      []Tree
	Grass      []vegetation.Placement
	GrassBlade *mesh.Mesh
}

// Builder generates worlds from a validated config.
type Builder struct {
	cfg *config.Config
	log *slog.Logger
}

// New creates a Builder.
func New(cfg *config.Config, log *slog.Logger) *Builder {
	return &Builder{cfg: cfg, log: log}
}

// Build generates the terrain, the forest on top of it and the grass
// placements. Trees are grown in parallel; cancellation is checked before
// each tree and reported as ctx.Err().
func (b *Builder) Build(ctx context.Context) (*World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	cfg := b.cfg

	field, err := noise.NewMixed(cfg.Octaves())
	if err != nil {
		return nil, fmt.Errorf("terrain noise: %w", err)
	}
	params := heightmap.Params{
		Width:          cfg.Terrain.Width,
		Height:         cfg.Terrain.Height,
		WidthSegments:  cfg.Terrain.WidthSegments,
		HeightSegments: cfg.Terrain.HeightSegments,
		UVScale:        cfg.Terrain.UVScale,
	}
	terrain, err := heightmap.Build(cfg.Terrain.Name, params, field)
	if err != nil {
		return nil, fmt.Errorf("build terrain: %w", err)
	}
	grid, err := heightmap.FromMesh(params, terrain)
	if err != nil {
		return nil, fmt.Errorf("terrain grid: %w", err)
	}
	b.log.Info("terrain built",
		"vertices", terrain.VertexCount(),
		"triangles", terrain.TriangleCount(),
		"layers", field.Len(),
	)

	minX, minZ, maxX, maxZ := grid.Bounds()
	area := vegetation.Area{MinX: minX, MinZ: minZ, MaxX: maxX, MaxZ: maxZ}

	placements := vegetation.Scatter("tree", cfg.Seed+treePlacementSeed, cfg.Forest.Count, area, grid.HeightAt)
	trees, err := b.growForest(ctx, placements)
	if err != nil {
		return nil, err
	}

	w := &World{Seed: cfg.Seed, Terrain: terrain, Trees: trees}
	if cfg.Grass.Count > 0 {
		w.Grass = vegetation.Scatter("grass", cfg.Seed+grassPlacementSeed, cfg.Grass.Count, area, grid.HeightAt)
		w.GrassBlade, err = vegetation.GrassBlade(cfg.Grass.Points, cfg.Grass.Bottom, cfg.Grass.Top, cfg.Grass.Height)
		if err != nil {
			return nil, fmt.Errorf("grass blade: %w", err)
		}
	}

	b.log.Info("world built",
		"trees", len(w.Trees),
		"grass", len(w.Grass),
		"elapsed", time.Since(start),
	)
	return w, nil
}

func (b *Builder) growForest(ctx context.Context, placements []vegetation.Placement) ([]Tree, error) {
	trees := make([]Tree, len(placements))
	errs := make([]error, len(placements))

	parallel.For(len(placements), func(i, _ int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		trees[i], errs[i] = b.growTree(i, placements[i])
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return trees, nil
}

func (b *Builder) growTree(i int, p vegetation.Placement) (Tree, error) {
	f := b.cfg.Forest
	t := Tree{ID: p.ID, Placement: p, Generator: f.Generator}

	switch f.Generator {
	case config.GeneratorLSystem:
		sys := lsystem.System{Axiom: f.LSystem.Axiom, Rules: f.LSystem.RuneRules()}
		program, err := sys.Expand(f.LSystem.Iterations)
		if err != nil {
			return Tree{}, err
		}
		turtle := lsystem.Turtle{
			Origin:      p.Position,
			Step:        f.LSystem.Step * p.Scale,
			Angle:       f.LSystem.Angle,
			LengthScale: f.LSystem.LengthScale,
		}
		t.Skeleton = turtle.Interpret(program)
		t.Skeleton.Simplify(f.SimplifyAngle)
		t.Skeleton.ComputeRadii(f.LeafRadius * p.Scale)
		t.Steps = f.LSystem.Iterations

	default:
		offset := mgl64.Vec3(f.Attraction.Offset).Mul(p.Scale)
		sampler := sampling.New(b.cfg.Seed + treeCloudSeed + int64(i))
		points, err := sampler.Sample(f.Attraction.Shape, f.Attraction.Count, f.Attraction.Size*p.Scale, p.Position.Add(offset))
		if err != nil {
			return Tree{}, err
		}
		start := p.Position
		tree, err := colonization.New(colonization.Config{
			KillDistance:     f.KillDistance,
			InfluenceRadius:  f.InfluenceRadius,
			StepLength:       f.StepLength,
			StartPoint:       &start,
			AttractionPoints: points,
		})
		if err != nil {
			return Tree{}, err
		}
		steps, err := tree.GrowUntil(f.MaxSteps)
		if err != nil {
			return Tree{}, err
		}
		tree.Simplify(f.SimplifyAngle)
		tree.ComputeTrunkRadii(f.LeafRadius * p.Scale)
		t.Skeleton = tree.Skeleton()
		t.Steps = steps
	}

	b.log.Debug("tree grown",
		"index", i,
		"generator", t.Generator,
		"nodes", t.Skeleton.Len(),
		"steps", t.Steps,
	)
	return t, nil
}
