package actor

import (
	"context"

	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
)

// Actor is the caller identity a search runs on behalf of.
type Actor struct {
	id          string
	email       string
	credentials []authorization.Credential
}

// New creates an authenticated actor. The global-registered credential is implied.
func New(id, email string, credentials []authorization.Credential) Actor {
	creds := make([]authorization.Credential, 0, len(credentials)+1)
	creds = append(creds, authorization.Credential{Type: authorization.CredentialGlobalRegistered})
	creds = append(creds, credentials...)
	return Actor{id: id, email: email, credentials: creds}
}

// Anonymous returns the actor used when no identity was presented.
func Anonymous() Actor {
	return Actor{
		credentials: []authorization.Credential{
			{Type: authorization.CredentialGlobalAnonymous},
		},
	}
}

// ID returns the user identifier, empty for anonymous callers.
func (a Actor) ID() string { return a.id }

// Email returns the caller email, empty for anonymous callers.
func (a Actor) Email() string { return a.email }

// Credentials returns the credentials held by the actor.
func (a Actor) Credentials() []authorization.Credential { return a.credentials }

// IsAuthenticated reports whether the caller presented an identity with an email.
func (a Actor) IsAuthenticated() bool { return a.email != "" }

// HasCredential reports whether the actor holds a credential of type t for resourceID.
func (a Actor) HasCredential(t authorization.CredentialType, resourceID string) bool {
	for _, c := range a.credentials {
		if c.Type == t && c.ResourceID == resourceID {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// ContextWithActor stores the actor in the context.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext extracts the actor from the context.
// Returns Anonymous() if none was stored.
func FromContext(ctx context.Context) Actor {
	if a, ok := ctx.Value(ctxKey{}).(Actor); ok {
		return a
	}
	return Anonymous()
}
