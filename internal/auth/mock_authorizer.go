package auth

import (
	"context"
	"errors"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only.
	LocalDevAPIKey = "sk_local_shadowcal_dev_key"
)

// MockAuthorizer provides a simple authorizer for local development. It only
// recognizes the hardcoded LocalDevAPIKey and resolves it to an admin actor.
type MockAuthorizer struct{}

// NewMockAuthorizer creates a new MockAuthorizer for local development.
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

// Authorize validates the hardcoded API key.
func (m *MockAuthorizer) Authorize(_ context.Context, apiKey, _, _ string) (*ActorInfo, error) {
	if apiKey != LocalDevAPIKey {
		return nil, errors.New("invalid API key for local development")
	}

	return &ActorInfo{
		ActorID:     "shadowcal-dev",
		KeyType:     "admin",
		KeyName:     "Local Development Key",
		Permissions: []string{"*"},
	}, nil
}
