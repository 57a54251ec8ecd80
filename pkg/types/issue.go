package types

// Issue is a flattened projection of an upstream Jira issue. Nested upstream
// objects (status, priority, assignee, ...) are reduced to display strings at
// mapping time; a missing parent object yields an empty field, never a fault.
type Issue struct {
	ID          string `json:"id,omitempty"`
	Key         string `json:"key,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	IssueType   string `json:"issue_type,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Reporter    string `json:"reporter,omitempty"`
	ProjectKey  string `json:"project_key,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Created     string `json:"created,omitempty"`
	Updated     string `json:"updated,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
}
