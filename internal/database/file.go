package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"
)

// Gateway loads the store at startup and saves full snapshots after every commit.
type Gateway interface {
	Load() (models.Snapshot, error)
	Save(models.Snapshot) error
}

// FileGateway keeps the whole store in one JSON file, rewritten through a temp file and an
// atomic rename.
type FileGateway struct {
	Path string
}

func NewFileGateway(path string) *FileGateway {
	return &FileGateway{Path: path}
}

// Load never fails: a missing or unreadable file falls back to the seed dataset.
func (g *FileGateway) Load() (models.Snapshot, error) {
	data, err := os.ReadFile(g.Path)
	if errors.Is(err, fs.ErrNotExist) {
		applog.Info(nil, "database.seed", map[string]any{"path": g.Path, "reason": "no file"})
		return Seed(), nil
	}
	if err != nil {
		applog.Error(nil, "database.load", err, map[string]any{"path": g.Path})
		return Seed(), nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		applog.Error(nil, "database.load", err, map[string]any{"path": g.Path, "fallback": "seed"})
		return Seed(), nil
	}
	snap = normalize(snap)
	applog.Info(nil, "database.load", map[string]any{"path": g.Path, "products": len(snap.Products)})
	return snap, nil
}

func (g *FileGateway) Save(snap models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", models.ErrPersistence, err)
	}

	dir := filepath.Dir(g.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(g.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	// Once the rename succeeds there is nothing left to remove.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", models.ErrPersistence, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", models.ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	if err := os.Rename(tmpName, g.Path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", models.ErrPersistence, g.Path, err)
	}
	return nil
}
