package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/repository"
)

// RemoteDirectory is the slice of the remote store the directory needs.
type RemoteDirectory interface {
	ListProjects(ctx context.Context, owner string) ([]domain.Project, error)
	CreateProject(ctx context.Context, owner string, p domain.Project) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
}

// Directory handles the project catalog: listing, creating and deleting
// projects for an owner. The remote store is authoritative; every
// successful read or write is mirrored to the fallback snapshot under
// projects_<owner>, and reads fall back to that snapshot when the remote
// is unreachable.
type Directory struct {
	store  repository.SnapshotStore
	remote RemoteDirectory
	now    func() time.Time
}

// NewDirectory creates a new project directory service.
func NewDirectory(store repository.SnapshotStore, remote RemoteDirectory) *Directory {
	return &Directory{
		store:  store,
		remote: remote,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for creation timestamps.
func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

// List returns the owner's projects from the remote store, refreshing the
// fallback mirror on success. When the remote is unreachable the fallback
// snapshot is served instead; a missing snapshot means an empty catalog.
func (d *Directory) List(ctx context.Context, owner string) ([]domain.Project, error) {
	logger := NewLogger(ctx)

	items, err := d.remote.ListProjects(ctx, owner)
	if err != nil {
		logger.LogWarnf("directory.list", "remote unreachable, serving fallback: %v", err)
		cached, loadErr := d.store.LoadProjects(ctx, owner)
		if loadErr != nil {
			logger.LogError("directory.list", loadErr)
			return []domain.Project{}, nil
		}
		return cached, nil
	}

	if saveErr := d.store.SaveProjects(ctx, owner, items); saveErr != nil {
		logger.LogError("directory.list", saveErr)
	}
	return items, nil
}

// Create registers a new project for the owner. The project is created on
// the remote store when possible; when the remote is unreachable a
// local-only project is minted so the owner can keep working, and it is
// recorded in the fallback mirror either way.
func (d *Directory) Create(ctx context.Context, owner, name string) (*domain.Project, error) {
	logger := NewLogger(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(owner) == "" {
		return nil, domain.NewValidationError("owner", "must not be empty")
	}

	project := domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		CreatedAt: d.now().UTC(),
	}

	created, err := d.remote.CreateProject(ctx, owner, project)
	if err != nil {
		logger.LogWarnf("directory.create", "remote unreachable, keeping local project %s: %v", project.ID, err)
	} else if created != nil {
		project = *created
	}

	d.mirrorAppend(ctx, owner, project)
	return &project, nil
}

// Delete removes a project from the remote store and prunes it from the
// fallback mirror. The remote call is best-effort: an unreachable remote
// does not keep the project pinned in the catalog.
func (d *Directory) Delete(ctx context.Context, owner, projectID string) error {
	logger := NewLogger(ctx)

	if err := d.remote.DeleteProject(ctx, projectID); err != nil {
		logger.LogWarnf("directory.delete", "remote delete of %s failed: %v", projectID, err)
	}

	cached, err := d.store.LoadProjects(ctx, owner)
	if err != nil {
		logger.LogError("directory.delete", err)
		return nil
	}

	kept := cached[:0]
	for _, p := range cached {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	if saveErr := d.store.SaveProjects(ctx, owner, kept); saveErr != nil {
		logger.LogError("directory.delete", saveErr)
	}
	return nil
}

func (d *Directory) mirrorAppend(ctx context.Context, owner string, project domain.Project) {
	logger := NewLogger(ctx)

	cached, err := d.store.LoadProjects(ctx, owner)
	if err != nil {
		logger.LogError("directory.mirror", err)
		cached = nil
	}
	if saveErr := d.store.SaveProjects(ctx, owner, append(cached, project)); saveErr != nil {
		logger.LogError("directory.mirror", saveErr)
	}
}
