package httptransport

// ExecuteResponse is the normalized invocation result returned to callers.
// Any upstream HTTP status is a normal, successful response at this layer.
type ExecuteResponse struct {
	StatusCode   int                 `json:"status_code"`
	Success      bool                `json:"success"`
	ReasonPhrase string              `json:"reason_phrase"`
	Headers      map[string][]string `json:"headers"`
	Body         string              `json:"body"`
	Truncated    bool                `json:"truncated,omitempty"`
}

// APISummary describes a registration without exposing its auth configuration.
type APISummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	BaseURL    string   `json:"base_url"`
	Operations []string `json:"operations"`
}
