package types

// Project is a read-only projection of an upstream Jira project. Fields
// absent from the upstream payload are left as empty strings.
type Project struct {
	ID           string `json:"id,omitempty"`
	Key          string `json:"key,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"url,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	LeadName     string `json:"lead_name,omitempty"`
}

// ServerInfo describes the upstream Jira server.
type ServerInfo struct {
	BaseURL     string `json:"baseUrl,omitempty"`
	Version     string `json:"version,omitempty"`
	ServerTitle string `json:"serverTitle,omitempty"`
}
