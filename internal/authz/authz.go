// Package authz evaluates entity authorization policies against caller credentials.
package authz

import (
	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
)

// Authorizer decides whether an actor may exercise a privilege on a policy.
type Authorizer struct {
	// adminBypass lets global admins read everything.
	adminBypass bool
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithAdminBypass grants every privilege to holders of the global-admin credential.
func WithAdminBypass() Option {
	return func(a *Authorizer) { a.adminBypass = true }
}

// New creates an Authorizer.
func New(opts ...Option) *Authorizer {
	a := &Authorizer{}
	for _, o := range opts {
		o(a)
	}
	return a
}

// IsAccessGranted reports whether any credential of the actor matches a rule
// of the policy granting privilege. It has no side effects.
func (a *Authorizer) IsAccessGranted(who actor.Actor, policy authorization.Policy, privilege authorization.Privilege) bool {
	creds := who.Credentials()
	if a.adminBypass {
		for _, c := range creds {
			if c.Type == authorization.CredentialGlobalAdmin {
				return true
			}
		}
	}
	for _, rule := range policy.Rules {
		for _, c := range creds {
			if rule.Grants(c, privilege) {
				return true
			}
		}
	}
	return false
}
