package remote

// ExecuteRequest is the wire contract of the remote execute service. The
// remote side clones the repository, runs the agent against the prompt and
// deploys the result, so this is the one long call in the system.
type ExecuteRequest struct {
	URL         string `json:"url"`         // canonical remote address, e.g. "git@github.com:owner/repo.git"
	ProjectName string `json:"projectName"` // namespacing key on the remote side, independent of the repo path
	BranchName  string `json:"branchName"`
	DirPath     string `json:"dirPath"` // fixed scratch identifier, recreated remotely each run
	Prompt      string `json:"prompt"`
	First       bool   `json:"first"` // true iff no prior feature exists for the project
}

// ExecuteResponse reports the outcome of an execute call.
type ExecuteResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}
