package result

// Type is the kind of entity a search hit refers to.
type Type string

// Result types, one per indexed collection.
const (
	TypeSpace        Type = "space"
	TypeSubspace     Type = "subspace"
	TypeUser         Type = "user"
	TypeOrganization Type = "organization"
	TypePost         Type = "post"
	TypeWhiteboard   Type = "whiteboard"
	TypeMemo         Type = "memo"
	TypeCallout      Type = "callout"
)

// Types returns every result type.
func Types() []Type {
	return []Type{
		TypeSpace, TypeSubspace, TypeUser, TypeOrganization,
		TypePost, TypeWhiteboard, TypeMemo, TypeCallout,
	}
}

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	for _, v := range Types() {
		if v == t {
			return true
		}
	}
	return false
}
