package types

// Credential is a transient identifier/secret pair used for a single
// authentication attempt. The secret is never persisted.
type Credential struct {
	Identifier string
	Secret     string
}
