package permit

import (
	"sort"
	"sync"
)

// MatchFunc decides whether a concrete name satisfies a stored pattern.
// utils.KeyMatch and utils.KeyMatch2 have this shape.
type MatchFunc func(name, pattern string) bool

// RoleGraph is a per-domain directed graph of "subject has role" edges with
// transitive-closure queries. The graph itself only ever does exact-string
// reachability; pattern semantics come from an optional matcher supplied by
// the caller and are applied when resolving query names to nodes, which keeps
// traversal O(edges).
type RoleGraph struct {
	mu            sync.RWMutex
	domains       map[string]*roleDomain
	matcher       MatchFunc
	domainMatcher MatchFunc
}

type roleDomain struct {
	nodes map[string]*roleNode
}

type roleNode struct {
	name     string
	parents  map[string]*roleNode // roles this node has
	children map[string]*roleNode // nodes that have this role
}

// NewRoleGraph returns an empty role graph.
func NewRoleGraph() *RoleGraph {
	return &RoleGraph{domains: make(map[string]*roleDomain)}
}

// SetMatcher installs a pattern matcher for node names. Stored names act as
// patterns against query names, e.g. an edge "u1 -> /admin/*" then satisfies
// HasLink("u1", "/admin/ops") under utils.KeyMatch.
func (rg *RoleGraph) SetMatcher(fn MatchFunc) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.matcher = fn
}

// SetDomainMatcher installs a pattern matcher for domain names, so an edge in
// domain "*" can cover every queried domain.
func (rg *RoleGraph) SetDomainMatcher(fn MatchFunc) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.domainMatcher = fn
}

// Clear resets the graph to its initial empty state.
func (rg *RoleGraph) Clear() {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.domains = make(map[string]*roleDomain)
}

func oneDomain(domain []string) (string, error) {
	switch len(domain) {
	case 0:
		return "", nil
	case 1:
		return domain[0], nil
	default:
		return "", configError("role link accepts at most one domain, got %d", len(domain))
	}
}

func (rg *RoleGraph) domainFor(name string, create bool) *roleDomain {
	d, ok := rg.domains[name]
	if !ok && create {
		d = &roleDomain{nodes: make(map[string]*roleNode)}
		rg.domains[name] = d
	}
	return d
}

func (d *roleDomain) node(name string, create bool) *roleNode {
	n, ok := d.nodes[name]
	if !ok && create {
		n = &roleNode{
			name:     name,
			parents:  make(map[string]*roleNode),
			children: make(map[string]*roleNode),
		}
		d.nodes[name] = n
	}
	return n
}

// AddLink records that user has role inside the optional domain. Adding an
// existing edge is a no-op; the boolean reports whether the graph changed.
func (rg *RoleGraph) AddLink(user, role string, domain ...string) (bool, error) {
	dom, err := oneDomain(domain)
	if err != nil {
		return false, err
	}
	rg.mu.Lock()
	defer rg.mu.Unlock()
	d := rg.domainFor(dom, true)
	u := d.node(user, true)
	r := d.node(role, true)
	if _, ok := u.parents[role]; ok {
		return false, nil
	}
	u.parents[role] = r
	r.children[user] = u
	return true, nil
}

// DeleteLink removes the edge; deleting a missing edge is a no-op and the
// boolean reports whether the graph changed.
func (rg *RoleGraph) DeleteLink(user, role string, domain ...string) (bool, error) {
	dom, err := oneDomain(domain)
	if err != nil {
		return false, err
	}
	rg.mu.Lock()
	defer rg.mu.Unlock()
	d := rg.domainFor(dom, false)
	if d == nil {
		return false, nil
	}
	u := d.node(user, false)
	if u == nil {
		return false, nil
	}
	if _, ok := u.parents[role]; !ok {
		return false, nil
	}
	delete(u.parents, role)
	if r := d.node(role, false); r != nil {
		delete(r.children, user)
	}
	return true, nil
}

// matchedDomains resolves the queried domains to stored ones, honoring the
// domain matcher. An empty query means every stored domain.
func (rg *RoleGraph) matchedDomains(domains []string) []*roleDomain {
	if len(domains) == 0 {
		out := make([]*roleDomain, 0, len(rg.domains))
		for _, d := range rg.domains {
			out = append(out, d)
		}
		return out
	}
	var out []*roleDomain
	for _, q := range domains {
		for name, d := range rg.domains {
			if name == q || (rg.domainMatcher != nil && rg.domainMatcher(q, name)) {
				out = append(out, d)
			}
		}
	}
	return out
}

// startNodes resolves a query name to stored nodes: the exact node plus, when
// a matcher is installed, every node whose stored name is a pattern covering
// the query name.
func (rg *RoleGraph) startNodes(d *roleDomain, name string) []*roleNode {
	var out []*roleNode
	if n, ok := d.nodes[name]; ok {
		out = append(out, n)
	}
	if rg.matcher == nil {
		return out
	}
	for stored, n := range d.nodes {
		if stored == name {
			continue
		}
		if rg.matcher(name, stored) {
			out = append(out, n)
		}
	}
	return out
}

// nameMatches reports whether a stored node name satisfies the query name.
func (rg *RoleGraph) nameMatches(query, stored string) bool {
	if query == stored {
		return true
	}
	return rg.matcher != nil && rg.matcher(query, stored)
}

// HasLink reports whether role is reachable from user via zero or more
// edges, scoped to the given domains. The traversal carries a visited set, so
// cyclic grouping policies terminate instead of hanging the engine.
func (rg *RoleGraph) HasLink(user, role string, domains ...string) (bool, error) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	if user == role || (rg.matcher != nil && rg.matcher(user, role)) {
		return true, nil
	}
	for _, d := range rg.matchedDomains(domains) {
		visited := make(map[*roleNode]struct{})
		queue := rg.startNodes(d, user)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			for _, parent := range n.parents {
				if rg.nameMatches(role, parent.name) {
					return true, nil
				}
				queue = append(queue, parent)
			}
		}
	}
	return false, nil
}

// GetRoles returns the full transitive closure of roles user has in the given
// domains, deduplicated and sorted for deterministic output. The user itself
// is not included.
func (rg *RoleGraph) GetRoles(user string, domains ...string) ([]string, error) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.closure(user, domains, func(n *roleNode) map[string]*roleNode { return n.parents }), nil
}

// GetUsers returns every user and role that transitively has the given role
// in the given domains: the inverse closure.
func (rg *RoleGraph) GetUsers(role string, domains ...string) ([]string, error) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.closure(role, domains, func(n *roleNode) map[string]*roleNode { return n.children }), nil
}

func (rg *RoleGraph) closure(name string, domains []string, next func(*roleNode) map[string]*roleNode) []string {
	found := make(map[string]struct{})
	for _, d := range rg.matchedDomains(domains) {
		visited := make(map[*roleNode]struct{})
		queue := rg.startNodes(d, name)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			for _, adj := range next(n) {
				if adj.name != name {
					found[adj.name] = struct{}{}
				}
				queue = append(queue, adj)
			}
		}
	}
	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rebuild clears the graph and re-inserts one edge per grouping-policy rule,
// O(rows). Rules are [user, role] or [user, role, domain].
func (rg *RoleGraph) Rebuild(rules [][]string) error {
	rg.Clear()
	return rg.IncrementalUpdate(PolicyAdd, rules)
}

// IncrementalUpdate applies only the given grouping-policy delta, O(delta).
func (rg *RoleGraph) IncrementalUpdate(op PolicyOp, rules [][]string) error {
	for _, rule := range rules {
		if len(rule) < 2 {
			return configError("grouping policy rule needs at least 2 fields, got %d", len(rule))
		}
		var err error
		switch op {
		case PolicyAdd:
			_, err = rg.AddLink(rule[0], rule[1], rule[2:]...)
		case PolicyRemove:
			_, err = rg.DeleteLink(rule[0], rule[1], rule[2:]...)
		default:
			err = configError("unknown policy op %d", op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
