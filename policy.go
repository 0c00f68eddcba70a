package permit

import "sort"

// Policy row storage and retrieval. Rows within one (section, type) form a
// set under structural equality but keep insertion order for iteration.

// PolicyOp selects the direction of an incremental policy change.
type PolicyOp int

const (
	PolicyAdd PolicyOp = iota
	PolicyRemove
)

// AddPolicyRow appends a rule to (sec, ptype). It reports false without
// mutating anything when the rule is already present or its arity does not
// match the assertion's token count.
func (m Model) AddPolicyRow(sec, ptype string, rule []string) (bool, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return false, err
	}
	if len(ast.Tokens) > 0 && len(rule) != len(ast.Tokens) {
		return false, configError("rule arity %d does not match %q definition arity %d", len(rule), ptype, len(ast.Tokens))
	}
	if ast.hasRule(rule) {
		return false, nil
	}
	ast.appendRule(rule)
	return true, nil
}

// AddPolicyRows inserts each rule independently, skipping duplicates. It
// reports true only when every rule was newly inserted; a duplicate anywhere
// makes the overall result false even though the novel rules are still
// persisted. Callers who need all-or-nothing must check HasPolicyRow first.
func (m Model) AddPolicyRows(sec, ptype string, rules [][]string) (bool, error) {
	allNew := true
	for _, rule := range rules {
		added, err := m.AddPolicyRow(sec, ptype, rule)
		if err != nil {
			return false, err
		}
		if !added {
			allNew = false
		}
	}
	return allNew, nil
}

// addedPolicyRows is AddPolicyRows variant reporting which rules were new,
// for incremental role-link maintenance and adapter write-through.
func (m Model) addedPolicyRows(sec, ptype string, rules [][]string) (bool, [][]string, error) {
	inserted := make([][]string, 0, len(rules))
	for _, rule := range rules {
		added, err := m.AddPolicyRow(sec, ptype, rule)
		if err != nil {
			return false, inserted, err
		}
		if added {
			inserted = append(inserted, rule)
		}
	}
	return len(inserted) == len(rules), inserted, nil
}

// HasPolicyRow reports whether the exact rule is present.
func (m Model) HasPolicyRow(sec, ptype string, rule []string) (bool, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return false, err
	}
	return ast.hasRule(rule), nil
}

// RemovePolicyRow removes the exact rule and reports whether anything changed.
func (m Model) RemovePolicyRow(sec, ptype string, rule []string) (bool, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return false, err
	}
	if !ast.hasRule(rule) {
		return false, nil
	}
	key := ruleKey(rule)
	for i, r := range ast.Policy {
		if ruleKey(r) == key {
			ast.Policy = append(ast.Policy[:i], ast.Policy[i+1:]...)
			break
		}
	}
	delete(ast.ruleIndex, key)
	return true, nil
}

// RemovePolicyRows removes each rule independently and reports true only when
// every rule was present and removed, mirroring AddPolicyRows.
func (m Model) RemovePolicyRows(sec, ptype string, rules [][]string) (bool, error) {
	allRemoved := true
	for _, rule := range rules {
		removed, err := m.RemovePolicyRow(sec, ptype, rule)
		if err != nil {
			return false, err
		}
		if !removed {
			allRemoved = false
		}
	}
	return allRemoved, nil
}

// matchesFilter reports whether a rule matches fieldValues aligned at
// fieldIndex; empty strings are wildcards. Rules too short for the filter
// window are excluded from consideration.
func matchesFilter(rule []string, fieldIndex int, fieldValues []string) bool {
	if fieldIndex+len(fieldValues) > len(rule) {
		return false
	}
	for i, v := range fieldValues {
		if v != "" && rule[fieldIndex+i] != v {
			return false
		}
	}
	return true
}

// RemoveFilteredPolicyRows removes every rule matching the filter and returns
// the removed rules in their stored order.
func (m Model) RemoveFilteredPolicyRows(sec, ptype string, fieldIndex int, fieldValues ...string) (bool, [][]string, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return false, nil, err
	}
	if len(fieldValues) == 0 {
		return false, nil, configError("remove filtered policy needs at least one field value")
	}
	kept := ast.Policy[:0]
	var removed [][]string
	for _, rule := range ast.Policy {
		if matchesFilter(rule, fieldIndex, fieldValues) {
			removed = append(removed, rule)
		} else {
			kept = append(kept, rule)
		}
	}
	ast.Policy = kept
	if len(removed) == 0 {
		return false, nil, nil
	}
	ast.reindex()
	return true, removed, nil
}

// GetPolicyRows returns the rules of (sec, ptype) in insertion order.
func (m Model) GetPolicyRows(sec, ptype string) ([][]string, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return nil, err
	}
	return ast.Policy, nil
}

// GetFilteredPolicyRows returns the rules matching the filter, preserving
// stored order.
func (m Model) GetFilteredPolicyRows(sec, ptype string, fieldIndex int, fieldValues ...string) ([][]string, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return nil, err
	}
	res := make([][]string, 0)
	for _, rule := range ast.Policy {
		if matchesFilter(rule, fieldIndex, fieldValues) {
			res = append(res, rule)
		}
	}
	return res, nil
}

// GetValuesForFieldInPolicy returns the distinct values of one field across
// the rules of (sec, ptype), in first-seen order. Rules shorter than the
// field index are skipped.
func (m Model) GetValuesForFieldInPolicy(sec, ptype string, fieldIndex int) ([]string, error) {
	ast, err := m.assertion(sec, ptype)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, rule := range ast.Policy {
		if fieldIndex >= len(rule) {
			continue
		}
		v := rule[fieldIndex]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// GetValuesForFieldInPolicyAllTypes is GetValuesForFieldInPolicy across every
// policy type of the section.
func (m Model) GetValuesForFieldInPolicyAllTypes(sec string, fieldIndex int) ([]string, error) {
	amap, ok := m[sec]
	if !ok {
		return nil, configError("missing section %q in model", sec)
	}
	ptypes := make([]string, 0, len(amap))
	for ptype := range amap {
		ptypes = append(ptypes, ptype)
	}
	sort.Strings(ptypes)
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, ptype := range ptypes {
		ast := amap[ptype]
		for _, rule := range ast.Policy {
			if fieldIndex >= len(rule) {
				continue
			}
			v := rule[fieldIndex]
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values, nil
}
