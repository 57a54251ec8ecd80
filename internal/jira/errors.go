package jira

import "errors"

var (
	// ErrNotFound indicates the requested upstream resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUpstream indicates the upstream call failed for any reason other
	// than a missing resource. Callers get no further detail.
	ErrUpstream = errors.New("jira upstream error")
)
