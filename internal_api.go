package permit

// Internal mutation paths. Every public add/remove funnels through here so
// the post-commit hooks (the onMutation callback, role-link maintenance,
// adapter write-through, watcher notification) fire consistently: each one
// only after the in-memory mutation succeeded. The onMutation callback fires
// whenever any row changed, including partially applied batches.

func (e *Engine) addPolicyInternal(sec, ptype string, rule []string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	added, err := e.model.AddPolicyRow(sec, ptype, rule)
	if err != nil || !added {
		return false, err
	}
	e.mutated()
	if sec == "g" && e.autoBuildRoleLinks {
		if err := e.model.BuildIncrementalRoleLinks(PolicyAdd, ptype, [][]string{rule}); err != nil {
			return true, err
		}
	}
	if e.autoSave && e.adapter != nil {
		if err := e.adapter.AddPolicy(sec, ptype, rule); err != nil {
			return true, err
		}
	}
	e.notifyWatcher()
	e.logger.Debug("policy added", "sec", sec, "ptype", ptype)
	return true, nil
}

// addPoliciesInternal inserts each rule independently: duplicates are skipped
// and make the overall result false, while the novel rules stay inserted.
func (e *Engine) addPoliciesInternal(sec, ptype string, rules [][]string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	allNew, inserted, err := e.model.addedPolicyRows(sec, ptype, rules)
	if len(inserted) > 0 {
		e.mutated()
	}
	if err != nil {
		return false, err
	}
	if len(inserted) == 0 {
		return false, nil
	}
	if sec == "g" && e.autoBuildRoleLinks {
		if err := e.model.BuildIncrementalRoleLinks(PolicyAdd, ptype, inserted); err != nil {
			return allNew, err
		}
	}
	if e.autoSave && e.adapter != nil {
		ba, ok := e.adapter.(BatchAdapter)
		if !ok {
			return allNew, ErrUnsupportedOperation
		}
		if err := ba.AddPolicies(sec, ptype, inserted); err != nil {
			return allNew, err
		}
	}
	e.notifyWatcher()
	e.logger.Debug("policies added", "sec", sec, "ptype", ptype, "count", len(inserted))
	return allNew, nil
}

func (e *Engine) removePolicyInternal(sec, ptype string, rule []string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.model.RemovePolicyRow(sec, ptype, rule)
	if err != nil || !removed {
		return false, err
	}
	e.mutated()
	if sec == "g" && e.autoBuildRoleLinks {
		if err := e.model.BuildIncrementalRoleLinks(PolicyRemove, ptype, [][]string{rule}); err != nil {
			return true, err
		}
	}
	if e.autoSave && e.adapter != nil {
		if err := e.adapter.RemovePolicy(sec, ptype, rule); err != nil {
			return true, err
		}
	}
	e.notifyWatcher()
	e.logger.Debug("policy removed", "sec", sec, "ptype", ptype)
	return true, nil
}

func (e *Engine) removePoliciesInternal(sec, ptype string, rules [][]string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	allRemoved := true
	removed := make([][]string, 0, len(rules))
	for _, rule := range rules {
		ok, err := e.model.RemovePolicyRow(sec, ptype, rule)
		if err != nil {
			if len(removed) > 0 {
				e.mutated()
			}
			return false, err
		}
		if ok {
			removed = append(removed, rule)
		} else {
			allRemoved = false
		}
	}
	if len(removed) == 0 {
		return false, nil
	}
	e.mutated()
	if sec == "g" && e.autoBuildRoleLinks {
		if err := e.model.BuildIncrementalRoleLinks(PolicyRemove, ptype, removed); err != nil {
			return allRemoved, err
		}
	}
	if e.autoSave && e.adapter != nil {
		ba, ok := e.adapter.(BatchAdapter)
		if !ok {
			return allRemoved, ErrUnsupportedOperation
		}
		if err := ba.RemovePolicies(sec, ptype, removed); err != nil {
			return allRemoved, err
		}
	}
	e.notifyWatcher()
	e.logger.Debug("policies removed", "sec", sec, "ptype", ptype, "count", len(removed))
	return allRemoved, nil
}

func (e *Engine) removeFilteredPolicyInternal(sec, ptype string, fieldIndex int, fieldValues ...string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	affected, removed, err := e.model.RemoveFilteredPolicyRows(sec, ptype, fieldIndex, fieldValues...)
	if err != nil || !affected {
		return false, err
	}
	e.mutated()
	if sec == "g" && e.autoBuildRoleLinks {
		if err := e.model.BuildIncrementalRoleLinks(PolicyRemove, ptype, removed); err != nil {
			return true, err
		}
	}
	if e.autoSave && e.adapter != nil {
		if err := e.adapter.RemoveFilteredPolicy(sec, ptype, fieldIndex, fieldValues...); err != nil {
			return true, err
		}
	}
	e.notifyWatcher()
	e.logger.Debug("filtered policies removed", "sec", sec, "ptype", ptype, "count", len(removed))
	return true, nil
}
