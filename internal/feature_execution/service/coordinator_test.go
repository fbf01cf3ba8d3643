package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/repository"
	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []remote.ExecuteRequest
	resp  *remote.ExecuteResponse
	err   error
	gate  chan struct{} // when set, Execute blocks until the gate closes
}

func (f *fakeExecutor) Execute(ctx context.Context, req remote.ExecuteRequest) (*remote.ExecuteResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeExecutor) requests() []remote.ExecuteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.ExecuteRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeLister struct {
	features []domain.Feature
	err      error
}

func (f *fakeLister) ListFeatures(ctx context.Context, projectID string) ([]domain.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.features, nil
}

func testProject() domain.Project {
	return domain.Project{
		ID:        "p1",
		Name:      "demo-app",
		Owner:     "shnkreddy98",
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestCoordinator(t *testing.T, executor *fakeExecutor, lister *fakeLister) (*Coordinator, repository.SnapshotStore) {
	t.Helper()

	store, err := repository.NewFileStore(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCoordinator(store, executor, lister).WithClock(func() time.Time { return fixed })
	return c, store
}

func awaitIdle(t *testing.T, c *Coordinator, projectID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, err := c.Status(projectID)
		return err == nil && st.State == StateIdle
	}, 2*time.Second, 5*time.Millisecond, "submission never resolved")
}

func TestSubmitFirstFeatureUsesProjectBranch(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	feature, err := c.Submit(context.Background(), "p1", "Add header", "Add a header with logo", domain.ClickPosition{X: 10, Y: 20})
	require.NoError(t, err)

	// Scenario A: zero existing features → project-name branch, first=true.
	assert.Equal(t, "demo-app", feature.BranchName)
	assert.Equal(t, domain.StatusProcessing, feature.Status)

	awaitIdle(t, c, "p1")

	reqs := executor.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "git@github.com:shnkreddy98/demo-app.git", reqs[0].URL)
	assert.Equal(t, "demo-app", reqs[0].ProjectName)
	assert.Equal(t, "demo-app", reqs[0].BranchName)
	assert.Equal(t, ScratchDir, reqs[0].DirPath)
	assert.True(t, reqs[0].First)
}

func TestSubmitLaterFeatureUsesTitleBranch(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}}
	existing := []domain.Feature{{ID: "f0", ProjectID: "p1", Title: "Add header", Status: domain.StatusCompleted}}
	c, _ := newTestCoordinator(t, executor, &fakeLister{features: existing})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	feature, err := c.Submit(context.Background(), "p1", "Add footer", "Add a footer", domain.ClickPosition{})
	require.NoError(t, err)

	// Scenario B: one existing feature → title branch with timestamp suffix.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("add_footer_%d", fixed.UnixMilli()), feature.BranchName)

	awaitIdle(t, c, "p1")

	reqs := executor.requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].First)
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}}
	c, store := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	cases := []struct{ title, prompt string }{
		{"", "a prompt"},
		{"   ", "a prompt"},
		{"a title", ""},
		{"a title", "\t\n "},
	}
	for _, tc := range cases {
		_, err := c.Submit(context.Background(), "p1", tc.title, tc.prompt, domain.ClickPosition{})
		require.Error(t, err, "title=%q prompt=%q", tc.title, tc.prompt)
		assert.True(t, domain.IsValidation(err))
	}

	// Rejected before any state mutation: nothing appended, nothing mirrored,
	// nothing executed.
	features, err := c.Features("p1")
	require.NoError(t, err)
	assert.Empty(t, features)

	snapshot, err := store.LoadFeatures(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.Empty(t, executor.requests())
}

func TestSubmitSuccessCompletesAndBumpsReloadToken(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true, PreviewURL: "http://localhost:3000"}}
	c, store := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	feature, err := c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err)

	awaitIdle(t, c, "p1")

	// Scenario D: success → completed, reload token bumped exactly once.
	features, err := c.Features("p1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, domain.StatusCompleted, features[0].Status)
	assert.Equal(t, feature.ID, features[0].ID)

	st, err := c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.ReloadToken)
	assert.False(t, st.Processing)

	// Mirror holds the resolved list.
	snapshot, err := store.LoadFeatures(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.StatusCompleted, snapshot[0].Status)
}

func TestSubmitRemoteFailureMarksFailed(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: false, Message: "agent error"}}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err)

	awaitIdle(t, c, "p1")

	// Scenario C: success=false → failed, reload token untouched.
	features, err := c.Features("p1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, domain.StatusFailed, features[0].Status)

	st, err := c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st.ReloadToken)
}

func TestSubmitTransportErrorMarksFailedNotThrown(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("connection reset")}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err, "execute errors never surface from Submit")

	awaitIdle(t, c, "p1")

	features, err := c.Features("p1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, domain.StatusFailed, features[0].Status)
}

func TestSubmitGateOneInFlightPerProject(t *testing.T) {
	gate := make(chan struct{})
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}, gate: gate}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err)

	// Second submission while the first awaits the remote is refused.
	_, err = c.Submit(context.Background(), "p1", "Add footer", "Add a footer", domain.ClickPosition{})
	require.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	close(gate)
	awaitIdle(t, c, "p1")

	// After resolution the gate reopens.
	_, err = c.Submit(context.Background(), "p1", "Add footer", "Add a footer", domain.ClickPosition{})
	require.NoError(t, err)
	awaitIdle(t, c, "p1")

	features, err := c.Features("p1")
	require.NoError(t, err)
	assert.Len(t, features, 2)
}

func TestSlotReopensOnlyAfterFeatureResolved(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}}
	c, store := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	// The very first observation of an idle slot must already see the
	// terminal status, in the registry and in the mirror. Repeated to
	// catch a resolution that signals idle before reconciling.
	for i := 0; i < 200; i++ {
		_, err := c.Submit(context.Background(), "p1", fmt.Sprintf("feature %d", i), "a prompt", domain.ClickPosition{})
		require.NoError(t, err)

		for {
			st, err := c.Status("p1")
			require.NoError(t, err)
			if st.State == StateIdle {
				break
			}
		}

		features, err := c.Features("p1")
		require.NoError(t, err)
		require.Len(t, features, i+1)
		for _, f := range features {
			require.True(t, domain.IsTerminal(f.Status),
				"feature %s still %s after the slot reopened", f.ID, f.Status)
		}

		snapshot, err := store.LoadFeatures(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, snapshot, i+1)
		for _, f := range snapshot {
			require.True(t, domain.IsTerminal(f.Status),
				"mirrored feature %s still %s after the slot reopened", f.ID, f.Status)
		}
	}
}

func TestStatusReportsSubmissionClick(t *testing.T) {
	gate := make(chan struct{})
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}, gate: gate}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	st, err := c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClickPosition{}, st.Click, "no submission yet")

	click := domain.ClickPosition{X: 120, Y: 48}
	_, err = c.Submit(context.Background(), "p1", "Add header", "Add a header", click)
	require.NoError(t, err)

	st, err = c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, click, st.Click, "in-flight submission carries its click")

	close(gate)
	awaitIdle(t, c, "p1")

	st, err = c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, click, st.Click, "last click survives resolution")
}

func TestRegistryGrowsByExactlyOnePerSubmit(t *testing.T) {
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	for i, title := range []string{"one", "two", "three"} {
		_, err := c.Submit(context.Background(), "p1", title, "prompt "+title, domain.ClickPosition{})
		require.NoError(t, err)
		awaitIdle(t, c, "p1")

		features, err := c.Features("p1")
		require.NoError(t, err)
		require.Len(t, features, i+1)
		for _, f := range features {
			assert.True(t, domain.IsTerminal(f.Status), "no feature left processing after resolution")
		}
	}
}

func TestLoadFeaturesPrefersRemote(t *testing.T) {
	remoteList := []domain.Feature{{ID: "f-remote", ProjectID: "p1", Status: domain.StatusCompleted}}
	c, store := newTestCoordinator(t, &fakeExecutor{}, &fakeLister{features: remoteList})

	// A divergent fallback snapshot must be ignored, never merged.
	stale := []domain.Feature{{ID: "f-stale", ProjectID: "p1", Status: domain.StatusFailed}}
	require.NoError(t, store.SaveFeatures(context.Background(), "p1", stale))

	features, err := c.LoadFeatures(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "f-remote", features[0].ID)
}

func TestLoadFeaturesFallsBackWhenRemoteFails(t *testing.T) {
	c, store := newTestCoordinator(t, &fakeExecutor{}, &fakeLister{err: errors.New("remote down")})

	// Scenario E, empty case: nothing ever saved → empty list, no error.
	features, err := c.LoadFeatures(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, features)

	saved := []domain.Feature{{ID: "f1", ProjectID: "p1", Status: domain.StatusCompleted}}
	require.NoError(t, store.SaveFeatures(context.Background(), "p1", saved))

	features, err = c.LoadFeatures(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "f1", features[0].ID)
}

func TestResolutionDiscardedAfterClose(t *testing.T) {
	gate := make(chan struct{})
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}, gate: gate}
	c, store := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)

	feature, err := c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err)

	// Navigate away while the execute call is outstanding.
	c.CloseProject("p1")
	close(gate)

	// The resolution must not resurrect the mirror with a completed status.
	require.Never(t, func() bool {
		snapshot, err := store.LoadFeatures(context.Background(), "p1")
		if err != nil {
			return false
		}
		for _, f := range snapshot {
			if f.ID == feature.ID && f.Status == domain.StatusCompleted {
				return true
			}
		}
		return false
	}, 300*time.Millisecond, 20*time.Millisecond)

	_, err = c.Status("p1")
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestReopenSupersedesOldSession(t *testing.T) {
	gate := make(chan struct{})
	executor := &fakeExecutor{resp: &remote.ExecuteResponse{Success: true}, gate: gate}
	c, _ := newTestCoordinator(t, executor, &fakeLister{})

	_, err := c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), "p1", "Add header", "Add a header", domain.ClickPosition{})
	require.NoError(t, err)

	// Reopening replaces the session; the old resolution is stale.
	_, err = c.OpenProject(context.Background(), testProject())
	require.NoError(t, err)
	close(gate)

	st, err := c.Status("p1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, st.State)

	// The new session never sees the stale feature complete.
	time.Sleep(50 * time.Millisecond)
	features, err := c.Features("p1")
	require.NoError(t, err)
	assert.Empty(t, features)
}
