// Package snapshotrepo stores ledger snapshots in a YAML file, Postgres or SQLite.
package snapshotrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// RepoFile keeps the latest snapshot in a single YAML file.
type RepoFile struct {
	path string
}

// NewRepoFile returns a RepoFile writing to path.
func NewRepoFile(path string) *RepoFile {
	return &RepoFile{path: path}
}

// Save writes the snapshot to a temporary file and renames it over the previous one,
// so a crash mid-write never leaves a truncated snapshot behind.
func (r *RepoFile) Save(ctx context.Context, snap domain.Snapshot) error {
	l := zerolog.Ctx(ctx)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := r.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)

	if err := enc.Encode(snap); err != nil {
		f.Close()
		l.Error().Err(err).Str("path", tmp).Msg("cannot encode snapshot")

		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	return os.Rename(tmp, r.path)
}

// Load reads the snapshot back.
func (r *RepoFile) Load(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, domain.ErrSnapshotNotFound
		}

		return snap, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&snap); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", r.path).Msg("cannot decode snapshot")
		return domain.Snapshot{}, domain.ErrCorruptSnapshot
	}

	if snap.Version != domain.SnapshotVersion {
		return domain.Snapshot{}, domain.ErrUnsupportedSnapshot
	}

	return snap, nil
}

// Close is a no-op kept for parity with the database stores.
func (r *RepoFile) Close() error {
	return nil
}
