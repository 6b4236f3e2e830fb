package domain

import "strings"

// User is the presence projection of an account: a cached, non-authoritative
// copy of the persisted user record. It exists only as long as at least one
// live Connection references it and is never created on its own.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// Merge applies the fields of an incoming account record onto the cached
// projection while preserving the identity. Empty incoming fields leave the
// cached value untouched.
func (u *User) Merge(in User) {
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.DisplayName != "" {
		u.DisplayName = in.DisplayName
	}
}

// NormalizeID canonicalizes an identifier before any map lookup or
// comparison, so sloppy callers cannot cause false negatives.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
