package common

const (
	// AuthCookieName is the cookie carrying the signed bearer token.
	AuthCookieName = "authToken"

	// SessionCookieName is the default cookie carrying the opaque session id.
	SessionCookieName = "connect.sid"

	// AuthorizationHeaderName and BearerScheme describe the header form of the token.
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "bearer"
)
