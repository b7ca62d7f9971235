// Package roles defines the role claims a session can carry and the
// application's authorization policy over them.
package roles

// RoleType is a role name as issued by the identity gateway.
type RoleType string

const (
	RoleTrainer RoleType = "Trainer" // Coaches selling service packages
	RoleUser    RoleType = "User"    // Regular client
	RoleAdmin   RoleType = "Admin"   // Sentinel administrative role, satisfies every permission check
)

// Recognized is the set of roles allowed to sign in to the application.
var Recognized = []RoleType{RoleTrainer, RoleUser}

// Set is a list of role names carried by a session.
type Set []RoleType

// FromStrings converts raw role claims into a Set.
func FromStrings(names []string) Set {
	if names == nil {
		return nil
	}
	set := make(Set, 0, len(names))
	for _, n := range names {
		set = append(set, RoleType(n))
	}
	return set
}

// Strings returns the role names.
func (s Set) Strings() []string {
	names := make([]string, 0, len(s))
	for _, r := range s {
		names = append(names, string(r))
	}
	return names
}

// Contains reports whether role is in the set.
func (s Set) Contains(role RoleType) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the set holds the sentinel administrative role.
func (s Set) IsAdmin() bool {
	return s.Contains(RoleAdmin)
}

// IsRecognized reports whether the set intersects the recognized roles.
// A set disjoint from Recognized must not be retained by a session.
func (s Set) IsRecognized() bool {
	for _, r := range Recognized {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// Permits reports whether the set grants role. The administrative role
// grants everything.
func (s Set) Permits(role RoleType) bool {
	if s.IsAdmin() {
		return true
	}
	return s.Contains(role)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	c := make(Set, len(s))
	copy(c, s)
	return c
}
