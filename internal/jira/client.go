package jira

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/pkg/types"
)

const defaultPageSize = 50

// searchPageSize caps ad-hoc JQL searches.
const searchPageSize = 100

// Client wraps Jira API client functionality. It is bound to a
// service-account credential at construction; individual calls may act on
// behalf of an end user by supplying a caller credential.
type Client struct {
	admin   *jira.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a new Jira gateway client using the given service account.
func NewClient(baseURL string, service types.Credential, logger *zap.Logger) (*Client, error) {
	admin, err := newScopedClient(baseURL, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		admin:   admin,
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

func newScopedClient(baseURL string, cred types.Credential) (*jira.Client, error) {
	tp := jira.BasicAuthTransport{
		Username: cred.Identifier,
		Password: cred.Secret,
	}

	return jira.NewClient(tp.Client(), baseURL)
}

// jiraClient returns the client a call should go through: a per-credential
// client when the caller supplied one, the service-account client otherwise.
func (c *Client) jiraClient(cred *types.Credential) (*jira.Client, error) {
	if cred == nil {
		return c.admin, nil
	}
	return newScopedClient(c.baseURL, *cred)
}

// ListProjects retrieves all projects visible to the credential. Any upstream
// failure collapses to an empty list.
func (c *Client) ListProjects(cred *types.Credential) []types.Project {
	cl, err := c.jiraClient(cred)
	if err != nil {
		c.logger.Error("failed to build scoped jira client", zap.Error(err))
		return []types.Project{}
	}

	list, resp, err := cl.Project.GetList()
	if err != nil {
		c.logger.Error("failed to list projects",
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return []types.Project{}
	}

	projects := make([]types.Project, 0, len(*list))
	for _, p := range *list {
		projects = append(projects, types.Project{
			ID:           p.ID,
			Key:          p.Key,
			Name:         p.Name,
			URL:          p.Self,
			AvatarURL:    p.AvatarUrls.Four8X48,
			CategoryName: p.ProjectCategory.Name,
		})
	}

	return projects
}

// SearchProjects filters the project list by a case-insensitive term matched
// against key, name, and description. An empty term returns everything.
func (c *Client) SearchProjects(term string, cred *types.Credential) []types.Project {
	projects := c.ListProjects(cred)

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return projects
	}

	filtered := make([]types.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Key), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			filtered = append(filtered, p)
		}
	}

	return filtered
}

// GetProject retrieves a single project by key or ID.
func (c *Client) GetProject(key string, cred *types.Credential) (*types.Project, error) {
	cl, err := c.jiraClient(cred)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", key, ErrUpstream)
	}

	p, resp, err := cl.Project.Get(key)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, fmt.Errorf("project %s: %w", key, ErrNotFound)
		}
		c.logger.Error("failed to get project",
			zap.String("project", key),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("project %s: %w", key, ErrUpstream)
	}

	project := mapProject(p)
	return &project, nil
}

// ListIssues retrieves a page of issues. Negative paging parameters clamp to
// their defaults.
func (c *Client) ListIssues(startAt, maxResults int) []types.Issue {
	if startAt < 0 {
		startAt = 0
	}
	if maxResults <= 0 {
		maxResults = defaultPageSize
	}

	return c.search("", &jira.SearchOptions{StartAt: startAt, MaxResults: maxResults})
}

// SearchIssues runs a JQL query. The query string is URL-encoded before it is
// appended to the request.
func (c *Client) SearchIssues(jql string) []types.Issue {
	return c.search(jql, &jira.SearchOptions{MaxResults: searchPageSize})
}

// IssuesByProject retrieves the issues of a single project, newest first.
func (c *Client) IssuesByProject(projectKey string) []types.Issue {
	return c.SearchIssues(fmt.Sprintf("project = %s ORDER BY created DESC", projectKey))
}

// IssuesByAssignee retrieves the issues assigned to a user.
func (c *Client) IssuesByAssignee(assignee string) []types.Issue {
	return c.SearchIssues(fmt.Sprintf("assignee = %s ORDER BY updated DESC", assignee))
}

// IssuesByStatus retrieves the issues in a given status.
func (c *Client) IssuesByStatus(status string) []types.Issue {
	return c.SearchIssues(fmt.Sprintf("status = %q ORDER BY updated DESC", status))
}

// SearchIssuesByText runs a free-text search. An empty term falls back to the
// default issue listing.
func (c *Client) SearchIssuesByText(term string) []types.Issue {
	if strings.TrimSpace(term) == "" {
		return c.ListIssues(0, defaultPageSize)
	}
	return c.SearchIssues(fmt.Sprintf("text ~ %q ORDER BY updated DESC", term))
}

func (c *Client) search(jql string, opts *jira.SearchOptions) []types.Issue {
	issues, resp, err := c.admin.Issue.Search(jql, opts)
	if err != nil {
		c.logger.Error("failed to search issues",
			zap.String("jql", jql),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return []types.Issue{}
	}

	out := make([]types.Issue, 0, len(issues))
	for i := range issues {
		out = append(out, mapIssue(&issues[i]))
	}

	return out
}

// GetIssue retrieves a single issue by key.
func (c *Client) GetIssue(key string) (*types.Issue, error) {
	issue, resp, err := c.admin.Issue.Get(key, nil)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, fmt.Errorf("issue %s: %w", key, ErrNotFound)
		}
		c.logger.Error("failed to get issue",
			zap.String("issue", key),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("issue %s: %w", key, ErrUpstream)
	}

	mapped := mapIssue(issue)
	return &mapped, nil
}

// UserByName looks up an upstream account by username using the
// service-account credential.
func (c *Client) UserByName(name string) (*types.JiraUser, error) {
	endpoint := fmt.Sprintf("rest/api/2/user?username=%s", url.QueryEscape(name))
	req, err := c.admin.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", name, ErrUpstream)
	}

	user := new(jira.User)
	resp, err := c.admin.Do(req, user)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, fmt.Errorf("user %s: %w", name, ErrNotFound)
		}
		c.logger.Error("failed to look up user",
			zap.String("username", name),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("user %s: %w", name, ErrUpstream)
	}

	return mapUser(user), nil
}

// UserByEmail searches upstream accounts by email and returns the first match.
func (c *Client) UserByEmail(email string) (*types.JiraUser, error) {
	endpoint := fmt.Sprintf("rest/api/2/user/search?query=%s", url.QueryEscape(email))
	req, err := c.admin.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("user search %s: %w", email, ErrUpstream)
	}

	var users []jira.User
	resp, err := c.admin.Do(req, &users)
	if err != nil {
		c.logger.Error("failed to search users",
			zap.String("query", email),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("user search %s: %w", email, ErrUpstream)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("user search %s: %w", email, ErrNotFound)
	}

	return mapUser(&users[0]), nil
}

// TestConnection probes the upstream server with the service-account
// credential.
func (c *Client) TestConnection() bool {
	if _, resp, err := c.admin.User.GetSelf(); err != nil {
		c.logger.Warn("jira connectivity check failed",
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return false
	}
	return true
}

// ServerInfo retrieves upstream server metadata.
func (c *Client) ServerInfo() (*types.ServerInfo, error) {
	req, err := c.admin.NewRequest("GET", "rest/api/2/serverInfo", nil)
	if err != nil {
		return nil, fmt.Errorf("server info: %w", ErrUpstream)
	}

	info := new(types.ServerInfo)
	resp, err := c.admin.Do(req, info)
	if err != nil {
		c.logger.Error("failed to get server info",
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("server info: %w", ErrUpstream)
	}

	return info, nil
}

// mapProject flattens a Jira project into our Project record. Optional nested
// objects reduce to empty strings when missing.
func mapProject(p *jira.Project) types.Project {
	project := types.Project{
		ID:           p.ID,
		Key:          p.Key,
		Name:         p.Name,
		Description:  p.Description,
		URL:          p.Self,
		AvatarURL:    p.AvatarUrls.Four8X48,
		CategoryName: p.ProjectCategory.Name,
	}

	if p.Lead.DisplayName != "" {
		project.LeadName = p.Lead.DisplayName
	} else {
		project.LeadName = p.Lead.Name
	}

	return project
}

// mapIssue flattens a Jira issue into our Issue record.
func mapIssue(issue *jira.Issue) types.Issue {
	out := types.Issue{
		ID:  issue.ID,
		Key: issue.Key,
	}

	f := issue.Fields
	if f == nil {
		return out
	}

	out.Summary = f.Summary
	out.Description = f.Description
	out.IssueType = f.Type.Name
	out.ProjectKey = f.Project.Key
	out.ProjectName = f.Project.Name

	if f.Status != nil {
		out.Status = f.Status.Name
	}
	if f.Priority != nil {
		out.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		out.Assignee = f.Assignee.DisplayName
	}
	if f.Reporter != nil {
		out.Reporter = f.Reporter.DisplayName
	}
	if f.Resolution != nil {
		out.Resolution = f.Resolution.Name
	}

	if created := time.Time(f.Created); !created.IsZero() {
		out.Created = created.Format(time.RFC3339)
	}
	if updated := time.Time(f.Updated); !updated.IsZero() {
		out.Updated = updated.Format(time.RFC3339)
	}

	return out
}

func mapUser(u *jira.User) *types.JiraUser {
	return &types.JiraUser{
		Name:         u.Name,
		Key:          u.Key,
		EmailAddress: u.EmailAddress,
		DisplayName:  u.DisplayName,
		Active:       u.Active,
	}
}

func statusCode(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
