package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/pkg/types"
)

var (
	// ErrInvalidCredentials is returned for every authentication failure.
	// It never distinguishes a missing user from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken rejects signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// CredentialValidator confirms an identifier/secret pair upstream.
type CredentialValidator interface {
	Validate(identifier, secret string) bool
}

// UserDirectory resolves upstream Jira accounts.
type UserDirectory interface {
	UserByName(name string) (*types.JiraUser, error)
	UserByEmail(email string) (*types.JiraUser, error)
}

// Orchestrator drives the two authentication paths: Jira-delegated and
// local-store. The paths are independent; neither falls back to the other.
type Orchestrator struct {
	validator CredentialValidator
	directory UserDirectory
	users     store.LocalUserRepository
	tokens    *TokenService
	logger    *zap.Logger
}

// NewOrchestrator creates a session orchestrator.
func NewOrchestrator(
	validator CredentialValidator,
	directory UserDirectory,
	users store.LocalUserRepository,
	tokens *TokenService,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		validator: validator,
		directory: directory,
		users:     users,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginJira authenticates against the upstream Jira server and mints a
// session token for the resolved identity.
func (o *Orchestrator) LoginJira(ctx context.Context, identifier, secret string) (string, error) {
	if !o.validator.Validate(identifier, secret) {
		return "", ErrInvalidCredentials
	}

	identity, err := o.resolveJiraIdentity(identifier)
	if err != nil {
		o.logger.Warn("validated user could not be resolved",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return "", ErrInvalidCredentials
	}
	if !identity.Active {
		o.logger.Warn("login rejected for inactive account", zap.String("identifier", identifier))
		return "", ErrInvalidCredentials
	}

	token, err := o.tokens.Issue(identity.SubjectName())
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (o *Orchestrator) resolveJiraIdentity(identifier string) (JiraIdentity, error) {
	user, err := o.directory.UserByName(identifier)
	if err != nil {
		user, err = o.directory.UserByEmail(identifier)
	}
	if err != nil {
		return JiraIdentity{}, err
	}

	return JiraIdentity{
		Username:    user.Name,
		DisplayName: user.DisplayName,
		Email:       user.EmailAddress,
		Active:      user.Active,
	}, nil
}

// LoginLocal authenticates against the local user store and mints a session
// token for the stored username.
func (o *Orchestrator) LoginLocal(ctx context.Context, email, password string) (string, error) {
	user, err := o.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			o.logger.Error("local user lookup failed", zap.Error(err))
		}
		return "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	identity := LocalIdentity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}

	token, err := o.tokens.Issue(identity.SubjectName())
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

// Signup registers a new local user with a hashed password.
func (o *Orchestrator) Signup(ctx context.Context, email, username, password string) (*types.LocalUser, error) {
	exists, err := o.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := o.users.Create(ctx, &types.LocalUser{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	o.logger.Info("user registered", zap.String("username", username))
	return user, nil
}
