package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

// FileStore keeps one JSON file per snapshot key under a data directory.
// Writes go through a temp file plus rename so a crashed save never leaves
// a half-written snapshot behind.
type FileStore struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex // serializes full-overwrite saves
}

// NewFileStore creates a FileStore rooted at dir on the given filesystem.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

// LoadFeatures returns the last-saved feature snapshot for a project.
// A missing snapshot is not an error.
func (s *FileStore) LoadFeatures(ctx context.Context, projectID string) ([]domain.Feature, error) {
	var out []domain.Feature
	if err := s.load(featuresKey(projectID), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Feature{}
	}
	return out, nil
}

// SaveFeatures overwrites the feature snapshot for a project.
func (s *FileStore) SaveFeatures(ctx context.Context, projectID string, features []domain.Feature) error {
	return s.save(featuresKey(projectID), features)
}

// LoadProjects returns the last-saved project snapshot for an owner.
func (s *FileStore) LoadProjects(ctx context.Context, owner string) ([]domain.Project, error) {
	var out []domain.Project
	if err := s.load(projectsKey(owner), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Project{}
	}
	return out, nil
}

// SaveProjects overwrites the project snapshot for an owner.
func (s *FileStore) SaveProjects(ctx context.Context, owner string, projects []domain.Project) error {
	return s.save(projectsKey(owner), projects)
}

// Ping reports whether the data directory is still reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := s.fs.Stat(s.dir); err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) load(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}

	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", key, err)
	}
	return nil
}
