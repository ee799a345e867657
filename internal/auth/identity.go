package auth

// Identity is the authenticated caller derived from a verified token.
type Identity struct {
	Username string
	IsAdmin  bool
}

// IdentityFromClaims builds the caller identity from verified claims.
func IdentityFromClaims(claims Claims) Identity {
	return Identity{Username: claims.Username, IsAdmin: claims.IsAdmin}
}

// CanModify reports whether id may mutate a resource recorded as owned by
// owner. Admins always may; everyone else only when they are the owner.
// An empty username or owner denies.
func CanModify(id Identity, owner string) bool {
	if id.Username == "" {
		return false
	}
	if id.IsAdmin {
		return true
	}
	return owner != "" && id.Username == owner
}
