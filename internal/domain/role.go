package domain

import "strings"

// Role is a player's canonical lane position. The API stores "bottom";
// "adc" is a display alias only and must never be persisted.
type Role string

const (
	RoleTop     Role = "top"
	RoleJungle  Role = "jungle"
	RoleMid     Role = "mid"
	RoleBottom  Role = "bottom"
	RoleSupport Role = "support"
)

const aliasADC = "adc"

// ParseRole canonicalizes a raw role string. The "adc" UI alias maps to
// bottom; anything else is lower-cased and kept as-is so that unknown
// upstream values survive normalization unchanged.
func ParseRole(raw string) Role {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == aliasADC {
		return RoleBottom
	}
	return Role(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleTop, RoleJungle, RoleMid, RoleBottom, RoleSupport:
		return true
	}
	return false
}

// Alias returns the UI-facing spelling of the role.
func (r Role) Alias() string {
	if r == RoleBottom {
		return aliasADC
	}
	return string(r)
}

func (r Role) String() string {
	return string(r)
}
