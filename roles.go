package auth

// IsValidSystemRole checks the role against the predefined system roles
func IsValidSystemRole(r SystemRole) bool {
	switch r {
	case SystemRoleUser, SystemRoleReviewer, SystemRoleAdmin:
		return true
	default:
		return false
	}
}

// IsValidMemberRole checks the role against the predefined club roles
func IsValidMemberRole(r MemberRole) bool {
	switch r {
	case MemberRoleOwner, MemberRoleManager, MemberRoleCoach, MemberRolePlayer:
		return true
	default:
		return false
	}
}

// IsValidAccountStatus checks the status against the account lifecycle states
func IsValidAccountStatus(s AccountStatus) bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusBanned, StatusDeactivated, StatusSoftDeleted:
		return true
	default:
		return false
	}
}

// AllSystemRoles returns the predefined system roles
func AllSystemRoles() []SystemRole {
	return []SystemRole{SystemRoleUser, SystemRoleReviewer, SystemRoleAdmin}
}

// AllMemberRoles returns the predefined club roles
func AllMemberRoles() []MemberRole {
	return []MemberRole{MemberRoleOwner, MemberRoleManager, MemberRoleCoach, MemberRolePlayer}
}

// ParseSystemRole safely parses a string into a SystemRole
func ParseSystemRole(s string) (SystemRole, bool) {
	role := SystemRole(s)
	return role, IsValidSystemRole(role)
}

// ParseMemberRole safely parses a string into a MemberRole
func ParseMemberRole(s string) (MemberRole, bool) {
	role := MemberRole(s)
	return role, IsValidMemberRole(role)
}

// loginEligibleStatuses are the account states allowed to authenticate.
// Banned, deactivated and soft deleted users cannot log in.
var loginEligibleStatuses = []AccountStatus{StatusActive, StatusPendingVerification}

// CanAuthenticate reports whether an account in the given status may log in.
func CanAuthenticate(s AccountStatus) bool {
	for _, eligible := range loginEligibleStatuses {
		if s == eligible {
			return true
		}
	}
	return false
}
