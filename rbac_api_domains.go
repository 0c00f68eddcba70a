package permit

// Domain-scoped RBAC API for multi-tenant models whose grouping policy
// carries a domain field (g = _, _, _) and whose policy rows lead with
// subject and domain (p = sub, dom, obj, act).

// GetUsersForRoleInDomain returns the users that have the role inside the
// domain.
func (e *Engine) GetUsersForRoleInDomain(name, domain string) ([]string, error) {
	return e.GetUsersForRole(name, domain)
}

// GetRolesForUserInDomain returns the roles the user has inside the domain.
func (e *Engine) GetRolesForUserInDomain(name, domain string) ([]string, error) {
	return e.GetRolesForUser(name, domain)
}

// GetPermissionsForUserInDomain returns the direct permissions of the user
// or role inside the domain.
func (e *Engine) GetPermissionsForUserInDomain(user, domain string) ([][]string, error) {
	return e.GetFilteredPolicy(0, user, domain)
}

// AddRoleForUserInDomain assigns a role to a user inside the domain.
func (e *Engine) AddRoleForUserInDomain(user, role, domain string) (bool, error) {
	return e.AddGroupingPolicy(user, role, domain)
}

// DeleteRoleForUserInDomain removes one role assignment inside the domain.
func (e *Engine) DeleteRoleForUserInDomain(user, role, domain string) (bool, error) {
	return e.RemoveGroupingPolicy(user, role, domain)
}

// DeleteRolesForUserInDomain removes every role assignment of the user
// inside the domain.
func (e *Engine) DeleteRolesForUserInDomain(user, domain string) (bool, error) {
	return e.RemoveFilteredGroupingPolicy(0, user, "", domain)
}
