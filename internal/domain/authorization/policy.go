// Package authorization holds the credential and policy value types that
// entities carry and that the access evaluator consumes.
package authorization

// Privilege is an action a credential may grant on a resource.
type Privilege string

// Privileges checked by the search pipeline.
const (
	PrivilegeRead   Privilege = "read"
	PrivilegeUpdate Privilege = "update"
)

// CredentialType names a kind of credential held by an actor.
type CredentialType string

// Credential types the platform issues.
const (
	CredentialGlobalAnonymous  CredentialType = "global-anonymous"
	CredentialGlobalRegistered CredentialType = "global-registered"
	CredentialGlobalAdmin      CredentialType = "global-admin"
	CredentialSpaceMember      CredentialType = "space-member"
	CredentialSpaceAdmin       CredentialType = "space-admin"
	CredentialSpaceLead        CredentialType = "space-lead"
)

// Credential is held by an actor, optionally scoped to one resource.
type Credential struct {
	Type       CredentialType `json:"type"`
	ResourceID string         `json:"resourceID,omitempty"`
}

// Rule grants privileges to holders of a matching credential.
// An empty ResourceID matches the credential regardless of its resource.
type Rule struct {
	CredentialType CredentialType `json:"type"`
	ResourceID     string         `json:"resourceID,omitempty"`
	Privileges     []Privilege    `json:"privileges"`
}

// Grants reports whether the rule hands out privilege to holders of c.
func (r Rule) Grants(c Credential, privilege Privilege) bool {
	if r.CredentialType != c.Type {
		return false
	}
	if r.ResourceID != "" && r.ResourceID != c.ResourceID {
		return false
	}
	for _, p := range r.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// Policy is the authorization scope attached to one entity.
type Policy struct {
	ID    string `json:"id,omitempty"`
	Rules []Rule `json:"rules"`
}
