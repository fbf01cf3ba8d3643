// Package repository provides the durable fallback mirror for feature and
// project snapshots. The mirror is best-effort: the in-memory registry
// stays authoritative for a live session, and the remote store for
// everything else. Keys follow the layout the original shell used in
// browser-local storage: features_<projectId> and projects_<owner>.
package repository

import (
	"context"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

// SnapshotStore is a key-scoped durable map from entity collection and
// scope id to an ordered entity list. Save overwrites the whole snapshot;
// Load returns an empty slice when nothing was ever saved.
type SnapshotStore interface {
	LoadFeatures(ctx context.Context, projectID string) ([]domain.Feature, error)
	SaveFeatures(ctx context.Context, projectID string, features []domain.Feature) error

	LoadProjects(ctx context.Context, owner string) ([]domain.Project, error)
	SaveProjects(ctx context.Context, owner string, projects []domain.Project) error
}

func featuresKey(projectID string) string { return "features_" + projectID }
func projectsKey(owner string) string     { return "projects_" + owner }
