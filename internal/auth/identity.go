package auth

// Identity is the capability shared by the two authentication sources: the
// name a session token is issued for.
type Identity interface {
	SubjectName() string
}

// JiraIdentity is an identity resolved from the upstream Jira directory.
type JiraIdentity struct {
	Username    string
	DisplayName string
	Email       string
	Active      bool
}

// SubjectName prefers the display name and falls back to the account name.
func (i JiraIdentity) SubjectName() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Username
}

// LocalIdentity is an identity backed by a row in the local user store.
type LocalIdentity struct {
	ID       string
	Email    string
	Username string
}

// SubjectName returns the registered username.
func (i LocalIdentity) SubjectName() string {
	return i.Username
}
