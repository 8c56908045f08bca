package auth

import (
	"context"
)

// ActorInfo contains information about an authenticated actor.
type ActorInfo struct {
	ActorID     string   `json:"actor_id"`
	KeyType     string   `json:"key_type"` // 'standard', 'admin'
	KeyName     string   `json:"key_name"`
	Permissions []string `json:"permissions"`
}

// Authorizer validates API keys and checks permissions in one call.
type Authorizer interface {
	// Authorize validates the API key and checks whether the actor can
	// perform the operation on the resource. Returns ActorInfo if
	// authorized, an error otherwise.
	Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error)
}

// CanAccessUser reports whether the actor may operate on the given user's
// calendar: either it is that user, or it holds an admin key.
func CanAccessUser(actor *ActorInfo, userID string) bool {
	if actor == nil {
		return false
	}
	if actor.KeyType == "admin" {
		return true
	}
	return actor.ActorID == userID
}
