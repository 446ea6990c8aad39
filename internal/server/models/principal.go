// Package models defines the server-side data model: the request principal
// and the persisted post, user and session records.
package models

// PrincipalKind tells how a principal was established.
type PrincipalKind int

const (
	// KindAnonymous is the zero value: no credential resolved.
	KindAnonymous PrincipalKind = iota
	// KindSession principals come from a server-side session.
	KindSession
	// KindToken principals come from a verified signed token.
	KindToken
)

func (k PrincipalKind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindToken:
		return "token"
	default:
		return "anonymous"
	}
}

// Principal is the verified identity behind a request. It is passed by value
// and never mutated after construction.
type Principal struct {
	ID       string
	Username string
	Kind     PrincipalKind
}

// Anonymous returns the principal of a request that carried no usable credential.
func Anonymous() Principal {
	return Principal{}
}

// IsAuthenticated reports whether a credential was resolved.
func (p Principal) IsAuthenticated() bool {
	return p.Kind != KindAnonymous
}
