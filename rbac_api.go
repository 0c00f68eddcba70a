package permit

// RBAC convenience API layered on the grouping policy and the role graph.
// Role queries resolve the full transitive closure, so an inherited role
// counts the same as a directly assigned one.

// GetRolesForUser returns every role the user has, directly or through
// inheritance, optionally scoped to a domain.
func (e *Engine) GetRolesForUser(name string, domain ...string) ([]string, error) {
	rg, err := e.roleGraph()
	if err != nil {
		return nil, err
	}
	return rg.GetRoles(name, domain...)
}

// GetUsersForRole returns every user and role that has the given role,
// directly or through inheritance.
func (e *Engine) GetUsersForRole(name string, domain ...string) ([]string, error) {
	rg, err := e.roleGraph()
	if err != nil {
		return nil, err
	}
	return rg.GetUsers(name, domain...)
}

// HasRoleForUser reports whether the user has the role, directly or through
// inheritance.
func (e *Engine) HasRoleForUser(name, role string, domain ...string) (bool, error) {
	roles, err := e.GetRolesForUser(name, domain...)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

// AddRoleForUser assigns a role to a user. It reports false when the
// assignment already exists.
func (e *Engine) AddRoleForUser(user, role string, domain ...string) (bool, error) {
	return e.AddGroupingPolicy(append([]string{user, role}, domain...)...)
}

// AddRolesForUser assigns several roles to a user; each assignment is
// independent, mirroring AddPolicies semantics.
func (e *Engine) AddRolesForUser(user string, roles []string, domain ...string) (bool, error) {
	rules := make([][]string, 0, len(roles))
	for _, role := range roles {
		rules = append(rules, append([]string{user, role}, domain...))
	}
	return e.AddGroupingPolicies(rules)
}

// DeleteRoleForUser removes one role assignment.
func (e *Engine) DeleteRoleForUser(user, role string, domain ...string) (bool, error) {
	return e.RemoveGroupingPolicy(append([]string{user, role}, domain...)...)
}

// DeleteRolesForUser removes every role assignment of the user, optionally
// scoped to a domain.
func (e *Engine) DeleteRolesForUser(user string, domain ...string) (bool, error) {
	if len(domain) == 0 {
		return e.RemoveFilteredGroupingPolicy(0, user)
	}
	return e.RemoveFilteredGroupingPolicy(0, user, "", domain[0])
}

// DeleteUser removes the user's role assignments and direct permissions.
func (e *Engine) DeleteUser(user string) (bool, error) {
	groupingRemoved, err := e.RemoveFilteredGroupingPolicy(0, user)
	if err != nil {
		return false, err
	}
	policyRemoved, err := e.RemoveFilteredPolicy(0, user)
	if err != nil {
		return groupingRemoved, err
	}
	return groupingRemoved || policyRemoved, nil
}

// DeleteRole removes the role from every assignment and deletes its direct
// permissions.
func (e *Engine) DeleteRole(role string) (bool, error) {
	groupingRemoved, err := e.RemoveFilteredGroupingPolicy(1, role)
	if err != nil {
		return false, err
	}
	policyRemoved, err := e.RemoveFilteredPolicy(0, role)
	if err != nil {
		return groupingRemoved, err
	}
	return groupingRemoved || policyRemoved, nil
}

// DeletePermission removes the permission from every subject holding it.
func (e *Engine) DeletePermission(permission ...string) (bool, error) {
	return e.RemoveFilteredPolicy(1, permission...)
}

// AddPermissionForUser grants a permission to a user or role.
func (e *Engine) AddPermissionForUser(user string, permission ...string) (bool, error) {
	return e.AddPolicy(append([]string{user}, permission...)...)
}

// DeletePermissionForUser revokes one permission from a user or role.
func (e *Engine) DeletePermissionForUser(user string, permission ...string) (bool, error) {
	return e.RemovePolicy(append([]string{user}, permission...)...)
}

// DeletePermissionsForUser revokes every direct permission of a user or role.
func (e *Engine) DeletePermissionsForUser(user string) (bool, error) {
	return e.RemoveFilteredPolicy(0, user)
}

// GetPermissionsForUser returns the user's direct permissions.
func (e *Engine) GetPermissionsForUser(user string, domain ...string) ([][]string, error) {
	return e.GetFilteredPolicy(0, append([]string{user}, domain...)...)
}

// HasPermissionForUser reports whether the user holds the permission
// directly.
func (e *Engine) HasPermissionForUser(user string, permission ...string) (bool, error) {
	return e.HasPolicy(append([]string{user}, permission...)...)
}

// GetImplicitRolesForUser returns the transitive-closure roles of the user.
// The role graph already resolves inheritance, so this matches
// GetRolesForUser; it exists to keep the conventional API surface.
func (e *Engine) GetImplicitRolesForUser(name string, domain ...string) ([]string, error) {
	return e.GetRolesForUser(name, domain...)
}

// GetImplicitPermissionsForUser returns the user's direct permissions plus
// those of every role the user transitively has.
func (e *Engine) GetImplicitPermissionsForUser(user string, domain ...string) ([][]string, error) {
	perms, err := e.GetPermissionsForUser(user, domain...)
	if err != nil {
		return nil, err
	}
	roles, err := e.GetRolesForUser(user, domain...)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(perms))
	out = append(out, perms...)
	for _, role := range roles {
		rp, err := e.GetPermissionsForUser(role, domain...)
		if err != nil {
			return nil, err
		}
		out = append(out, rp...)
	}
	return out, nil
}

// GetImplicitUsersForPermission returns the users (not roles) that hold the
// permission directly or through a role. Candidates are the subjects seen in
// policy and grouping rows minus the names used as roles.
func (e *Engine) GetImplicitUsersForPermission(permission ...string) ([]string, error) {
	e.mu.RLock()
	policySubjects, err := e.model.GetValuesForFieldInPolicy("p", "p", 0)
	if err != nil {
		e.mu.RUnlock()
		return nil, err
	}
	groupingSubjects, err := e.model.GetValuesForFieldInPolicyAllTypes("g", 0)
	if err != nil {
		e.mu.RUnlock()
		return nil, err
	}
	roleNames, err := e.model.GetValuesForFieldInPolicyAllTypes("g", 1)
	if err != nil {
		e.mu.RUnlock()
		return nil, err
	}
	e.mu.RUnlock()

	isRole := make(map[string]struct{}, len(roleNames))
	for _, r := range roleNames {
		isRole[r] = struct{}{}
	}
	seen := make(map[string]struct{})
	var users []string
	for _, subject := range append(policySubjects, groupingSubjects...) {
		if _, ok := isRole[subject]; ok {
			continue
		}
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		rvals := make([]any, 0, len(permission)+1)
		rvals = append(rvals, subject)
		for _, p := range permission {
			rvals = append(rvals, p)
		}
		allowed, err := e.Enforce(rvals...)
		if err != nil {
			return nil, err
		}
		if allowed {
			users = append(users, subject)
		}
	}
	return users, nil
}

func (e *Engine) roleGraph() (*RoleGraph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.RoleGraphFor("g")
}
