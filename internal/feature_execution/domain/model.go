package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Project is a unit of work bound to one remote repository and one live
// preview address. Projects are created by the dashboard; the workflow
// only ever reads the active one.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"` // GitHub username
	PreviewURL string    `json:"previewUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DefaultPreviewURL is where a freshly generated app serves itself.
const DefaultPreviewURL = "http://localhost:3000"

// Preview returns the project's preview address, falling back to the
// default local server when none was recorded.
func (p Project) Preview() string {
	if p.PreviewURL == "" {
		return DefaultPreviewURL
	}
	return p.PreviewURL
}

// RepoPath returns the <owner>/<name> repository path.
func (p Project) RepoPath() string {
	return p.Owner + "/" + p.Name
}

// RemoteURL returns the SSH-style remote address of the project's repository.
func (p Project) RemoteURL() string {
	return fmt.Sprintf("git@github.com:%s.git", p.RepoPath())
}

// Feature is one requested change to a project, tracked through a
// processing lifecycle.
type Feature struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Title      string    `json:"title"`
	Prompt     string    `json:"prompt"`
	BranchName string    `json:"branchName"`
	Status     string    `json:"status"` // pending, processing, completed, failed
	CreatedAt  time.Time `json:"createdAt"`
}

// Feature status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// IsTerminal reports whether a status can no longer change.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// NewFeatureID returns a ULID for a new feature. ULIDs encode their
// creation time in the leading bits, so ids minted in one session stay
// monotonically distinguishable.
func NewFeatureID(at time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// ClickPosition is where on the rendered preview the user clicked when
// requesting a feature. Captured for the submission record only; the
// remote side does not consume it.
type ClickPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
