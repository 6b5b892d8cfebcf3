package models

// StartRunRequest is the payload for POST /api/v1/runs.
type StartRunRequest struct {
	// TargetIDs selects specific schools. Empty means every school in the
	// store with a known athletic-site URL.
	TargetIDs []int64 `json:"target_ids,omitempty"`

	// Limit caps the number of targets processed in this run.
	Limit int `json:"limit,omitempty" binding:"omitempty,min=1,max=500"`
}

// StartRunResponse acknowledges a triggered run.
type StartRunResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Total  int    `json:"total_targets"`
}

// RunListResponse is the payload for GET /api/v1/runs.
type RunListResponse struct {
	Runs []RunSummary `json:"runs"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	BrowserActive bool   `json:"browser_active"`
	Version       string `json:"version"`
}

// APIError wraps an ErrorDetail for error responses.
type APIError struct {
	Error *ErrorDetail `json:"error"`
}
