package jira

import (
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/pkg/types"
)

// Validator confirms an identifier/secret pair against the upstream server.
type Validator struct {
	baseURL string
	logger  *zap.Logger
}

// NewValidator creates a credential validator for the given Jira base URL.
func NewValidator(baseURL string, logger *zap.Logger) *Validator {
	return &Validator{
		baseURL: baseURL,
		logger:  logger,
	}
}

// Validate performs a single /myself probe with the supplied credentials and
// reports whether the upstream accepted them. Every failure, including
// transport faults and timeouts, collapses to false. No retry.
func (v *Validator) Validate(identifier, secret string) bool {
	cl, err := newScopedClient(v.baseURL, types.Credential{
		Identifier: identifier,
		Secret:     secret,
	})
	if err != nil {
		v.logger.Error("failed to build scoped jira client", zap.Error(err))
		return false
	}

	if _, resp, err := cl.User.GetSelf(); err != nil {
		v.logger.Warn("credential validation failed",
			zap.String("identifier", identifier),
			zap.Int("status", statusCode(resp)),
			zap.Error(err),
		)
		return false
	}

	v.logger.Info("credential validation succeeded", zap.String("identifier", identifier))
	return true
}
