package permit

import (
	"strings"

	"github.com/oarkflow/permit/utils"
)

// Assertion is one named section of the access-control model: a request or
// policy definition with its token list, an effect or matcher expression, or
// a role definition with its attached role graph.
type Assertion struct {
	Key    string   // section key, e.g. "r", "p", "g", "g2"
	Value  string   // raw definition string as written in the model
	Tokens []string // field names: qualified for "r"/"p" (e.g. "r_sub"), raw for "g"
	Policy [][]string
	RG     *RoleGraph // set for role definitions once links are built

	ruleIndex map[string]struct{}
}

const policyKeySep = "\x00"

func ruleKey(rule []string) string {
	return strings.Join(rule, policyKeySep)
}

func (a *Assertion) hasRule(rule []string) bool {
	_, ok := a.ruleIndex[ruleKey(rule)]
	return ok
}

func (a *Assertion) appendRule(rule []string) {
	a.Policy = append(a.Policy, rule)
	a.ruleIndex[ruleKey(rule)] = struct{}{}
}

func (a *Assertion) reindex() {
	a.ruleIndex = make(map[string]struct{}, len(a.Policy))
	for _, rule := range a.Policy {
		a.ruleIndex[ruleKey(rule)] = struct{}{}
	}
}

// AssertionMap groups assertions of one section by policy type.
type AssertionMap map[string]*Assertion

// Model is the loaded authorization model: section name ("r", "p", "g", "e",
// "m") to its assertions. Policy rows are owned by the "p" and "g" assertions.
type Model map[string]AssertionMap

// NewModel returns an empty model.
func NewModel() Model {
	return make(Model)
}

// AddDef adds a definition to the model, e.g. AddDef("r", "r", "sub, obj, act").
// Request and policy definitions get their token lists qualified with the
// section key; role definitions keep the raw token list so rule arity is
// checked before a grouping row is stored; effect and matcher definitions
// keep the raw expression.
func (m Model) AddDef(sec, key, value string) bool {
	value = utils.RemoveComments(value)
	if value == "" {
		return false
	}
	ast := &Assertion{
		Key:       key,
		Value:     value,
		ruleIndex: make(map[string]struct{}),
	}
	switch sec {
	case "r", "p":
		ast.Tokens = utils.SplitTokens(value)
		for i, tok := range ast.Tokens {
			ast.Tokens[i] = key + "_" + tok
		}
	case "g":
		ast.Tokens = utils.SplitTokens(value)
	}
	if _, ok := m[sec]; !ok {
		m[sec] = make(AssertionMap)
	}
	m[sec][key] = ast
	return true
}

// assertion resolves (section, ptype). A missing section or type is a model
// configuration problem, never a lookup miss.
func (m Model) assertion(sec, ptype string) (*Assertion, error) {
	amap, ok := m[sec]
	if !ok {
		return nil, configError("missing section %q in model", sec)
	}
	ast, ok := amap[ptype]
	if !ok {
		return nil, configError("missing policy type %q in section %q", ptype, sec)
	}
	return ast, nil
}

// HasSection reports whether the model defines the given section.
func (m Model) HasSection(sec string) bool {
	_, ok := m[sec]
	return ok
}

// Validate checks that the model carries every section the enforcement
// pipeline needs before the first Enforce call.
func (m Model) Validate() error {
	for _, sec := range []string{"r", "p", "e", "m"} {
		if _, err := m.assertion(sec, sec); err != nil {
			return err
		}
	}
	return nil
}

// ClearPolicy removes all policy rows from every "p" and "g" assertion,
// leaving the definitions themselves intact.
func (m Model) ClearPolicy() {
	for _, sec := range []string{"p", "g"} {
		for _, ast := range m[sec] {
			ast.Policy = nil
			ast.ruleIndex = make(map[string]struct{})
		}
	}
}

// BuildRoleLinks rebuilds the role graph of every role definition from its
// current grouping-policy rows.
func (m Model) BuildRoleLinks() error {
	for _, ast := range m["g"] {
		if ast.RG == nil {
			ast.RG = NewRoleGraph()
		}
		if err := ast.RG.Rebuild(ast.Policy); err != nil {
			return err
		}
	}
	return nil
}

// BuildIncrementalRoleLinks applies only the given grouping-policy delta to
// the role graph of ptype instead of rebuilding it from scratch.
func (m Model) BuildIncrementalRoleLinks(op PolicyOp, ptype string, rules [][]string) error {
	ast, err := m.assertion("g", ptype)
	if err != nil {
		return err
	}
	if ast.RG == nil {
		ast.RG = NewRoleGraph()
	}
	return ast.RG.IncrementalUpdate(op, rules)
}

// RoleGraphFor returns the role graph attached to the given role definition.
func (m Model) RoleGraphFor(ptype string) (*RoleGraph, error) {
	ast, err := m.assertion("g", ptype)
	if err != nil {
		return nil, err
	}
	if ast.RG == nil {
		ast.RG = NewRoleGraph()
	}
	return ast.RG, nil
}
