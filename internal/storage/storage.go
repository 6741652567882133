package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/internal/worldgen"
	"github.com/OCharnyshevich/worldgen/pkg/mesh"
)

// Storage handles file-based output for generated worlds.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "terrain"),
		filepath.Join(dir, "trees"),
		filepath.Join(dir, "vegetation"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// SaveConfig writes the effective cfg to config.yaml atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return s.atomicWrite(filepath.Join(s.dir, "config.yaml"), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// SaveWorld writes the terrain and grass meshes as OBJ, every tree as JSON
// and a manifest.json indexing them. Tree files from a previous save are
// removed first.
func (s *Storage) SaveWorld(w *worldgen.World) (*Manifest, error) {
	m := &Manifest{Seed: w.Seed}

	if err := s.clearTrees(); err != nil {
		return nil, err
	}

	terrain, err := s.saveMesh(filepath.Join("terrain", w.Terrain.Name+".obj"), w.Terrain)
	if err != nil {
		return nil, err
	}
	m.Terrain = *terrain

	for _, t := range w.Trees {
		td := TreeDataFromTree(t)
		rel := filepath.Join("trees", td.ID+".json")
		if err := s.atomicWriteJSON(filepath.Join(s.dir, rel), td); err != nil {
			return nil, fmt.Errorf("save tree %s: %w", td.ID, err)
		}
		m.Trees = append(m.Trees, TreeEntry{ID: td.ID, Path: rel, Nodes: len(td.Nodes)})
	}

	if w.GrassBlade != nil {
		m.Grass = filepath.Join("vegetation", "grass.json")
		if err := s.atomicWriteJSON(filepath.Join(s.dir, m.Grass), w.Grass); err != nil {
			return nil, fmt.Errorf("save grass: %w", err)
		}
		m.GrassBlade, err = s.saveMesh(filepath.Join("vegetation", "grass_blade.obj"), w.GrassBlade)
		if err != nil {
			return nil, err
		}
	}

	if err := s.atomicWriteJSON(filepath.Join(s.dir, "manifest.json"), m); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	s.log.Info("saved world", "dir", s.dir, "trees", len(m.Trees))
	return m, nil
}

// LoadManifest reads manifest.json, or returns nil if no world was saved.
func (s *Storage) LoadManifest() (*Manifest, error) {
	path := filepath.Join(s.dir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// LoadTree reads trees/<id>.json, or returns nil if not found.
func (s *Storage) LoadTree(id string) (*TreeData, error) {
	path := filepath.Join(s.dir, "trees", id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tree %s: %w", id, err)
	}

	var td TreeData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", id, err)
	}
	return &td, nil
}

func (s *Storage) clearTrees() error {
	stale, err := filepath.Glob(filepath.Join(s.dir, "trees", "*.json"))
	if err != nil {
		return fmt.Errorf("list trees: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale tree %s: %w", path, err)
		}
	}
	if len(stale) > 0 {
		s.log.Debug("removed stale trees", "count", len(stale))
	}
	return nil
}

func (s *Storage) saveMesh(rel string, m *mesh.Mesh) (*MeshEntry, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	if err := s.atomicWrite(filepath.Join(s.dir, rel), m.WriteOBJ); err != nil {
		return nil, fmt.Errorf("save mesh %s: %w", m.Name, err)
	}
	return &MeshEntry{Path: rel, Vertices: m.VertexCount(), Triangles: m.TriangleCount()}, nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	return s.atomicWrite(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// atomicWrite streams encode into a temp file and renames it over path.
func (s *Storage) atomicWrite(path string, encode func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
