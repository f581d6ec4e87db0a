package dto

// AnalyzeRequest carries the report draft's current details so the merged
// narrative can be returned once analysis completes.
type AnalyzeRequest struct {
	Details string `json:"details"`
}

// EnrichmentStatusResponse exposes the workflow state to the client.
type EnrichmentStatusResponse struct {
	State      string `json:"state"`
	HasImage   bool   `json:"has_image"`
	Details    string `json:"details,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	Completed  bool   `json:"completed"`
	Generation uint64 `json:"generation"`
}
