package auth

// RouteRequirements declares what a route demands along the two independent
// role axes. An empty set on an axis imposes no constraint on that axis.
type RouteRequirements struct {
	// Public bypasses authorization entirely; no claims are required.
	Public bool
	// SystemRoles the caller's system role must be among, when non-empty.
	SystemRoles []SystemRole
	// MemberRoles the caller's membership role must be among, when non-empty.
	MemberRoles []MemberRole
}

// PublicRoute marks a route as requiring no authorization.
func PublicRoute() RouteRequirements {
	return RouteRequirements{Public: true}
}

// RequireSystemRoles declares the allowed system roles for a route.
func RequireSystemRoles(roles ...SystemRole) RouteRequirements {
	return RouteRequirements{SystemRoles: roles}
}

// RequireMemberRoles declares the allowed membership roles for a route.
func RequireMemberRoles(roles ...MemberRole) RouteRequirements {
	return RouteRequirements{MemberRoles: roles}
}

// And merges two requirement sets; Public wins only if both are public.
func (r RouteRequirements) And(other RouteRequirements) RouteRequirements {
	return RouteRequirements{
		Public:      r.Public && other.Public,
		SystemRoles: append(append([]SystemRole{}, r.SystemRoles...), other.SystemRoles...),
		MemberRoles: append(append([]MemberRole{}, r.MemberRoles...), other.MemberRoles...),
	}
}

// roleAllowed is the pure per-axis check: an empty declared set passes
// vacuously, otherwise the caller's role must be a member of the set.
func roleAllowed(declared []string, callerRole string) bool {
	if len(declared) == 0 {
		return true
	}
	for _, role := range declared {
		if callerRole == role {
			return true
		}
	}
	return false
}

// Authorize evaluates a caller's claims against a route's declared
// requirements. Public routes pass unconditionally. On protected routes
// missing claims are Forbidden (authentication already ran upstream); each
// role axis is checked independently and both must pass.
func Authorize(claims *AccessClaims, req RouteRequirements) error {
	if req.Public {
		return nil
	}

	if claims == nil {
		return ErrForbidden
	}

	if !roleAllowed(req.SystemRoles, claims.SystemRole()) {
		return ErrForbidden
	}

	if !roleAllowed(req.MemberRoles, claims.MemberRole()) {
		return ErrForbidden
	}

	return nil
}
