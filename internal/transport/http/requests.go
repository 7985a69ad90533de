package httptransport

// ExecuteRequest is the body of an invocation call.
type ExecuteRequest struct {
	Parameters map[string]any `json:"parameters"`
}
