package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

const (
	// DefaultTimeout is the timeout for CRUD calls against the remote store.
	DefaultTimeout = 15 * time.Second

	// ExecuteTimeout bounds the execute call. The remote side performs
	// repository operations plus an agent run, so this is minutes, not
	// seconds (the original shell allowed ten).
	ExecuteTimeout = 10 * time.Minute
)

// Client is a thin typed surface over the remote store and execute service.
// It carries no retry logic; callers decide how to recover.
type Client struct {
	baseURL       string
	defaultClient *http.Client
	executeClient *http.Client // execute needs a far longer timeout than CRUD
}

// NewClient creates a client with the standard timeouts.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeouts(baseURL, DefaultTimeout, ExecuteTimeout)
}

// NewClientWithTimeouts creates a client with explicit CRUD and execute timeouts.
func NewClientWithTimeouts(baseURL string, crud, execute time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		defaultClient: &http.Client{Timeout: crud},
		executeClient: &http.Client{Timeout: execute},
	}
}

// ListProjects fetches all projects belonging to an owner.
func (c *Client) ListProjects(ctx context.Context, owner string) ([]domain.Project, error) {
	reqURL := c.baseURL + "/projects?" + url.Values{"owner": {owner}}.Encode()

	var out []domain.Project
	if err := c.doJSON(ctx, "list_projects", http.MethodGet, reqURL, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject creates a project record remotely.
func (c *Client) CreateProject(ctx context.Context, owner string, p domain.Project) (*domain.Project, error) {
	body := struct {
		Owner string `json:"owner"`
		domain.Project
	}{Owner: owner, Project: p}

	var out domain.Project
	if err := c.doJSON(ctx, "create_project", http.MethodPost, c.baseURL+"/projects", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project by id.
func (c *Client) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	var out domain.Project
	if err := c.doJSON(ctx, "get_project", http.MethodGet, c.baseURL+"/projects/"+projectID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project record remotely.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, "delete_project", http.MethodDelete, c.baseURL+"/projects/"+projectID, nil, nil)
}

// ListFeatures fetches the ordered feature list for a project.
func (c *Client) ListFeatures(ctx context.Context, projectID string) ([]domain.Feature, error) {
	reqURL := c.baseURL + "/features?" + url.Values{"projectId": {projectID}}.Encode()

	var out []domain.Feature
	if err := c.doJSON(ctx, "list_features", http.MethodGet, reqURL, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFeature creates a feature record remotely. Bookkeeping only; it
// does not trigger execution.
func (c *Client) CreateFeature(ctx context.Context, f domain.Feature) (*domain.Feature, error) {
	var out domain.Feature
	if err := c.doJSON(ctx, "create_feature", http.MethodPost, c.baseURL+"/features", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Execute performs the feature's work remotely and reports the outcome.
// Failures come back as KindExecutionTimeout or KindExecutionError; the
// workflow layer maps both onto a failed feature, never a crash.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResponse, error) {
	const op = "execute"
	start := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, newError(KindExecutionError, op, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, newError(KindExecutionError, op, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.executeClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		recordExecuteCall(duration, err)
		if isTimeout(err) {
			return nil, newError(KindExecutionTimeout, op, err)
		}
		return nil, newError(KindExecutionError, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordExecuteCall(duration, err)
		return nil, newError(KindExecutionError, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("execute returned status %d: %s", resp.StatusCode, string(body))
		recordExecuteCall(duration, err)
		return nil, newError(KindExecutionError, op, err)
	}

	var out ExecuteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		recordExecuteCall(duration, err)
		return nil, newError(KindExecutionError, op, fmt.Errorf("unmarshal response: %w", err))
	}

	recordExecuteCall(duration, nil)
	return &out, nil
}

// doJSON performs a CRUD request and decodes the JSON response into out
// (out may be nil for calls without a useful body).
func (c *Client) doJSON(ctx context.Context, op, method, reqURL string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return newError(KindRejected, op, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return newError(KindRejected, op, fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.defaultClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		recordCRUDCall(duration, err)
		return newError(KindUnavailable, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("remote returned status %d: %s", resp.StatusCode, string(raw))
		recordCRUDCall(duration, err)
		return newError(KindRejected, op, err)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			recordCRUDCall(duration, err)
			return newError(KindRejected, op, fmt.Errorf("decode response: %w", err))
		}
	}

	recordCRUDCall(duration, nil)
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
