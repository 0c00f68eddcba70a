package permit

// Management API: typed access to policy and grouping-policy rows. The
// "named" variants address models with multiple policy types ("p2", "g2");
// the plain forms default to "p" and "g".

// GetAllSubjects returns the distinct subjects in the default policy.
func (e *Engine) GetAllSubjects() ([]string, error) {
	return e.GetAllNamedSubjects("p")
}

// GetAllNamedSubjects returns the distinct subjects in the named policy.
func (e *Engine) GetAllNamedSubjects(ptype string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetValuesForFieldInPolicy("p", ptype, 0)
}

// GetAllObjects returns the distinct objects in the default policy.
func (e *Engine) GetAllObjects() ([]string, error) {
	return e.GetAllNamedObjects("p")
}

// GetAllNamedObjects returns the distinct objects in the named policy.
func (e *Engine) GetAllNamedObjects(ptype string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetValuesForFieldInPolicy("p", ptype, 1)
}

// GetAllActions returns the distinct actions in the default policy.
func (e *Engine) GetAllActions() ([]string, error) {
	return e.GetAllNamedActions("p")
}

// GetAllNamedActions returns the distinct actions in the named policy.
func (e *Engine) GetAllNamedActions(ptype string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetValuesForFieldInPolicy("p", ptype, 2)
}

// GetAllRoles returns the distinct roles in the default grouping policy.
func (e *Engine) GetAllRoles() ([]string, error) {
	return e.GetAllNamedRoles("g")
}

// GetAllNamedRoles returns the distinct roles in the named grouping policy.
func (e *Engine) GetAllNamedRoles(ptype string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetValuesForFieldInPolicy("g", ptype, 1)
}

// GetPolicy returns all rules of the default policy.
func (e *Engine) GetPolicy() ([][]string, error) {
	return e.GetNamedPolicy("p")
}

// GetNamedPolicy returns all rules of the named policy.
func (e *Engine) GetNamedPolicy(ptype string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetPolicyRows("p", ptype)
}

// GetFilteredPolicy returns the default policy rules matching the filter;
// empty field values are wildcards.
func (e *Engine) GetFilteredPolicy(fieldIndex int, fieldValues ...string) ([][]string, error) {
	return e.GetFilteredNamedPolicy("p", fieldIndex, fieldValues...)
}

// GetFilteredNamedPolicy returns the named policy rules matching the filter.
func (e *Engine) GetFilteredNamedPolicy(ptype string, fieldIndex int, fieldValues ...string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetFilteredPolicyRows("p", ptype, fieldIndex, fieldValues...)
}

// GetGroupingPolicy returns all rules of the default grouping policy.
func (e *Engine) GetGroupingPolicy() ([][]string, error) {
	return e.GetNamedGroupingPolicy("g")
}

// GetNamedGroupingPolicy returns all rules of the named grouping policy.
func (e *Engine) GetNamedGroupingPolicy(ptype string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetPolicyRows("g", ptype)
}

// GetFilteredGroupingPolicy returns the default grouping rules matching the
// filter.
func (e *Engine) GetFilteredGroupingPolicy(fieldIndex int, fieldValues ...string) ([][]string, error) {
	return e.GetFilteredNamedGroupingPolicy("g", fieldIndex, fieldValues...)
}

// GetFilteredNamedGroupingPolicy returns the named grouping rules matching
// the filter.
func (e *Engine) GetFilteredNamedGroupingPolicy(ptype string, fieldIndex int, fieldValues ...string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.GetFilteredPolicyRows("g", ptype, fieldIndex, fieldValues...)
}

// HasPolicy reports whether the default policy contains the rule.
func (e *Engine) HasPolicy(params ...string) (bool, error) {
	return e.HasNamedPolicy("p", params...)
}

// HasNamedPolicy reports whether the named policy contains the rule.
func (e *Engine) HasNamedPolicy(ptype string, params ...string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.HasPolicyRow("p", ptype, params)
}

// AddPolicy adds a rule to the default policy. It reports false when the
// rule already exists.
func (e *Engine) AddPolicy(params ...string) (bool, error) {
	return e.AddNamedPolicy("p", params...)
}

// AddNamedPolicy adds a rule to the named policy.
func (e *Engine) AddNamedPolicy(ptype string, params ...string) (bool, error) {
	return e.addPolicyInternal("p", ptype, params)
}

// AddPolicies adds rules to the default policy. Each rule is inserted
// independently; it reports true only when every rule was new, but novel
// rules persist even when a duplicate elsewhere makes the result false.
func (e *Engine) AddPolicies(rules [][]string) (bool, error) {
	return e.AddNamedPolicies("p", rules)
}

// AddNamedPolicies adds rules to the named policy with AddPolicies semantics.
func (e *Engine) AddNamedPolicies(ptype string, rules [][]string) (bool, error) {
	return e.addPoliciesInternal("p", ptype, rules)
}

// RemovePolicy removes a rule from the default policy.
func (e *Engine) RemovePolicy(params ...string) (bool, error) {
	return e.RemoveNamedPolicy("p", params...)
}

// RemoveNamedPolicy removes a rule from the named policy.
func (e *Engine) RemoveNamedPolicy(ptype string, params ...string) (bool, error) {
	return e.removePolicyInternal("p", ptype, params)
}

// RemovePolicies removes rules from the default policy, each independently.
func (e *Engine) RemovePolicies(rules [][]string) (bool, error) {
	return e.RemoveNamedPolicies("p", rules)
}

// RemoveNamedPolicies removes rules from the named policy.
func (e *Engine) RemoveNamedPolicies(ptype string, rules [][]string) (bool, error) {
	return e.removePoliciesInternal("p", ptype, rules)
}

// RemoveFilteredPolicy removes every default-policy rule matching the filter.
func (e *Engine) RemoveFilteredPolicy(fieldIndex int, fieldValues ...string) (bool, error) {
	return e.RemoveFilteredNamedPolicy("p", fieldIndex, fieldValues...)
}

// RemoveFilteredNamedPolicy removes every named-policy rule matching the
// filter.
func (e *Engine) RemoveFilteredNamedPolicy(ptype string, fieldIndex int, fieldValues ...string) (bool, error) {
	return e.removeFilteredPolicyInternal("p", ptype, fieldIndex, fieldValues...)
}

// HasGroupingPolicy reports whether the default grouping policy contains the
// rule.
func (e *Engine) HasGroupingPolicy(params ...string) (bool, error) {
	return e.HasNamedGroupingPolicy("g", params...)
}

// HasNamedGroupingPolicy reports whether the named grouping policy contains
// the rule.
func (e *Engine) HasNamedGroupingPolicy(ptype string, params ...string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.HasPolicyRow("g", ptype, params)
}

// AddGroupingPolicy adds a role inheritance rule to the default grouping
// policy.
func (e *Engine) AddGroupingPolicy(params ...string) (bool, error) {
	return e.AddNamedGroupingPolicy("g", params...)
}

// AddNamedGroupingPolicy adds a role inheritance rule to the named grouping
// policy.
func (e *Engine) AddNamedGroupingPolicy(ptype string, params ...string) (bool, error) {
	return e.addPolicyInternal("g", ptype, params)
}

// AddGroupingPolicies adds role inheritance rules with AddPolicies semantics.
func (e *Engine) AddGroupingPolicies(rules [][]string) (bool, error) {
	return e.AddNamedGroupingPolicies("g", rules)
}

// AddNamedGroupingPolicies adds role inheritance rules to the named grouping
// policy.
func (e *Engine) AddNamedGroupingPolicies(ptype string, rules [][]string) (bool, error) {
	return e.addPoliciesInternal("g", ptype, rules)
}

// RemoveGroupingPolicy removes a role inheritance rule from the default
// grouping policy.
func (e *Engine) RemoveGroupingPolicy(params ...string) (bool, error) {
	return e.RemoveNamedGroupingPolicy("g", params...)
}

// RemoveNamedGroupingPolicy removes a role inheritance rule from the named
// grouping policy.
func (e *Engine) RemoveNamedGroupingPolicy(ptype string, params ...string) (bool, error) {
	return e.removePolicyInternal("g", ptype, params)
}

// RemoveGroupingPolicies removes role inheritance rules, each independently.
func (e *Engine) RemoveGroupingPolicies(rules [][]string) (bool, error) {
	return e.RemoveNamedGroupingPolicies("g", rules)
}

// RemoveNamedGroupingPolicies removes role inheritance rules from the named
// grouping policy.
func (e *Engine) RemoveNamedGroupingPolicies(ptype string, rules [][]string) (bool, error) {
	return e.removePoliciesInternal("g", ptype, rules)
}

// RemoveFilteredGroupingPolicy removes every default grouping rule matching
// the filter.
func (e *Engine) RemoveFilteredGroupingPolicy(fieldIndex int, fieldValues ...string) (bool, error) {
	return e.RemoveFilteredNamedGroupingPolicy("g", fieldIndex, fieldValues...)
}

// RemoveFilteredNamedGroupingPolicy removes every named grouping rule
// matching the filter.
func (e *Engine) RemoveFilteredNamedGroupingPolicy(ptype string, fieldIndex int, fieldValues ...string) (bool, error) {
	return e.removeFilteredPolicyInternal("g", ptype, fieldIndex, fieldValues...)
}
