package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/repository"
	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

// ScratchDir is the fixed working directory identifier sent with every
// execute request. The remote side destroys and recreates it each run, so
// there is nothing to namespace per feature.
const ScratchDir = "tmp"

// SubmissionState is the workflow state of a project's submission slot.
type SubmissionState string

const (
	StateIdle            SubmissionState = "idle"
	StateBuildingRequest SubmissionState = "building_request"
	StateAwaitingRemote  SubmissionState = "awaiting_remote"
)

// Executor performs the long-running remote execute call.
type Executor interface {
	Execute(ctx context.Context, req remote.ExecuteRequest) (*remote.ExecuteResponse, error)
}

// FeatureLister lists a project's features from the remote store.
type FeatureLister interface {
	ListFeatures(ctx context.Context, projectID string) ([]domain.Feature, error)
}

// Status is the submission slot state reported to the shell. Click is
// where the current (or, once idle again, most recent) submission was
// requested on the preview.
type Status struct {
	State       SubmissionState      `json:"state"`
	Processing  bool                 `json:"processing"`
	ReloadToken uint64               `json:"reloadToken"`
	Click       domain.ClickPosition `json:"click"`
}

// session is the per-open-project workflow state: the registry, the single
// mutable submission slot and the preview reload token.
type session struct {
	mu          sync.Mutex
	project     domain.Project
	registry    *Registry
	state       SubmissionState
	click       domain.ClickPosition // where the in-flight submission was requested
	reloadToken uint64
	closed      bool
}

// Coordinator drives the feature-execution workflow: it owns one session
// per open project, derives branch names, dispatches execute calls and
// reconciles results into the registry and the fallback store.
type Coordinator struct {
	store    repository.SnapshotStore
	executor Executor
	lister   FeatureLister
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewCoordinator creates a coordinator. The remote client usually serves
// as both executor and lister.
func NewCoordinator(store repository.SnapshotStore, executor Executor, lister FeatureLister) *Coordinator {
	return &Coordinator{
		store:    store,
		executor: executor,
		lister:   lister,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// WithClock overrides the coordinator's clock. Branch names and feature
// ids derive from it.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// LoadFeatures returns a project's feature history: the remote store when
// reachable, otherwise the last fallback snapshot. The two sources are
// never merged.
func (c *Coordinator) LoadFeatures(ctx context.Context, projectID string) ([]domain.Feature, error) {
	logger := NewLogger(ctx)

	features, err := c.lister.ListFeatures(ctx, projectID)
	if err == nil {
		return features, nil
	}
	logger.LogWarnf("load_features", "remote list failed, using fallback snapshot: %v", err)

	snapshot, err := c.store.LoadFeatures(ctx, projectID)
	if err != nil {
		logger.LogError("load_features", err)
		return []domain.Feature{}, nil
	}
	return snapshot, nil
}

// OpenProject starts (or restarts) a session for the project and returns
// its feature history. A previous session for the same project is closed;
// any still-running resolution for it will be discarded.
func (c *Coordinator) OpenProject(ctx context.Context, project domain.Project) ([]domain.Feature, error) {
	features, err := c.LoadFeatures(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	sess := &session{
		project:  project,
		registry: NewRegistry(features),
		state:    StateIdle,
	}

	c.mu.Lock()
	if prev, ok := c.sessions[project.ID]; ok {
		prev.mu.Lock()
		prev.closed = true
		prev.mu.Unlock()
	}
	c.sessions[project.ID] = sess
	c.mu.Unlock()

	return features, nil
}

// CloseProject ends the session for a project. In-flight executions keep
// running remotely; their resolutions become no-ops.
func (c *Coordinator) CloseProject(projectID string) {
	c.mu.Lock()
	sess, ok := c.sessions[projectID]
	if ok {
		delete(c.sessions, projectID)
	}
	c.mu.Unlock()

	if ok {
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
	}
}

// OpenProjects returns the projects with a live session, for background
// mirror maintenance.
func (c *Coordinator) OpenProjects() []domain.Project {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Project, 0, len(c.sessions))
	for _, sess := range c.sessions {
		out = append(out, sess.project)
	}
	return out
}

// RefreshSession re-reads an idle session's feature history from the
// remote store, reseeding the registry and the fallback mirror. Sessions
// with an in-flight submission are left alone so the optimistic entry is
// not clobbered.
func (c *Coordinator) RefreshSession(ctx context.Context, projectID string) error {
	sess, ok := c.session(projectID)
	if !ok {
		return domain.ErrSessionClosed
	}

	sess.mu.Lock()
	if sess.state != StateIdle {
		sess.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	sess.mu.Unlock()

	features, err := c.lister.ListFeatures(ctx, projectID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if sess.state != StateIdle {
		sess.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	sess.registry.Reset(features)
	sess.mu.Unlock()

	c.mirror(ctx, sess)
	return nil
}

func (c *Coordinator) session(projectID string) (*session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[projectID]
	return sess, ok
}

// Features returns the registry snapshot for an open project.
func (c *Coordinator) Features(projectID string) ([]domain.Feature, error) {
	sess, ok := c.session(projectID)
	if !ok {
		return nil, domain.ErrSessionClosed
	}
	return sess.registry.Snapshot(), nil
}

// Status reports the submission slot state for an open project.
func (c *Coordinator) Status(projectID string) (*Status, error) {
	sess, ok := c.session(projectID)
	if !ok {
		return nil, domain.ErrSessionClosed
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &Status{
		State:       sess.state,
		Processing:  sess.state != StateIdle,
		ReloadToken: sess.reloadToken,
		Click:       sess.click,
	}, nil
}

// Submit runs the optimistic half of the workflow synchronously: validate,
// derive the branch, append the feature as processing and mirror it. The
// remote execute call resolves asynchronously and always terminates the
// feature in completed or failed, never an error.
func (c *Coordinator) Submit(ctx context.Context, projectID, title, prompt string, click domain.ClickPosition) (*domain.Feature, error) {
	logger := NewLogger(ctx)

	title = strings.TrimSpace(title)
	prompt = strings.TrimSpace(prompt)
	if title == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if prompt == "" {
		return nil, domain.NewValidationError("prompt", "must not be empty")
	}

	sess, ok := c.session(projectID)
	if !ok {
		return nil, domain.ErrSessionClosed
	}

	sess.mu.Lock()
	if sess.state != StateIdle {
		sess.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	}
	sess.state = StateBuildingRequest
	sess.click = click
	sess.mu.Unlock()

	// The snapshot taken before the optimistic append decides both the
	// branch policy and the wire-level first flag.
	first := sess.registry.Len() == 0
	now := c.now()

	feature := domain.Feature{
		ID:         domain.NewFeatureID(now),
		ProjectID:  projectID,
		Title:      title,
		Prompt:     prompt,
		BranchName: domain.BranchName(sess.project.Name, title, first, now),
		Status:     domain.StatusProcessing,
		CreatedAt:  now,
	}

	sess.registry.Append(feature)
	c.mirror(ctx, sess)

	req := remote.ExecuteRequest{
		URL:         sess.project.RemoteURL(),
		ProjectName: sess.project.Name,
		BranchName:  feature.BranchName,
		DirPath:     ScratchDir,
		Prompt:      prompt,
		First:       first,
	}

	sess.mu.Lock()
	sess.state = StateAwaitingRemote
	sess.mu.Unlock()

	logger.LogInfof("submit_feature", "dispatching execute project=%s feature=%s branch=%s first=%t click=(%.0f,%.0f)",
		projectID, feature.ID, feature.BranchName, first, click.X, click.Y)

	go c.resolve(sess, req, feature)

	return &feature, nil
}

// resolve awaits the execute outcome and reconciles it. It runs detached
// from the submitting request: the execute client's own timeout bounds it.
func (c *Coordinator) resolve(sess *session, req remote.ExecuteRequest, feature domain.Feature) {
	ctx := context.Background()
	logger := NewLogger(ctx)

	resp, err := c.executor.Execute(ctx, req)
	success := err == nil && resp.Success

	if success {
		feature.Status = domain.StatusCompleted
	} else {
		feature.Status = domain.StatusFailed
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		logger.LogWarnf("resolve_feature", "session closed, discarding resolution feature=%s", feature.ID)
		return
	}

	// The slot reopens only after the registry and mirror hold the
	// terminal status: a caller that observes idle must never find the
	// feature still processing.
	if !sess.registry.Replace(feature) {
		logger.LogWarnf("resolve_feature", "feature %s vanished from registry", feature.ID)
	}
	c.mirror(ctx, sess)

	if success {
		sess.reloadToken++
	}
	sess.state = StateIdle
	sess.mu.Unlock()

	if err != nil {
		logger.LogErrorf("resolve_feature", "execute failed feature=%s: %v", feature.ID, err)
	} else {
		logger.LogInfof("resolve_feature", "execute resolved feature=%s success=%t", feature.ID, success)
	}
}

// mirror writes the registry snapshot through to the fallback store. A
// failed mirror only degrades durability, so it is logged and swallowed.
func (c *Coordinator) mirror(ctx context.Context, sess *session) {
	if err := c.store.SaveFeatures(ctx, sess.project.ID, sess.registry.Snapshot()); err != nil {
		NewLogger(ctx).LogWarnf("mirror_features", "fallback save failed project=%s: %v", sess.project.ID, err)
	}
}
