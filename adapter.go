package permit

import "strings"

// Adapter is the persistence collaborator: it loads policy rows into a model
// and mirrors single-rule mutations when auto-save is enabled. Engine logic
// never depends on where or how an adapter stores rows.
type Adapter interface {
	LoadPolicy(m Model) error
	SavePolicy(m Model) error
	AddPolicy(sec, ptype string, rule []string) error
	RemovePolicy(sec, ptype string, rule []string) error
	RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error
}

// BatchAdapter additionally mirrors batch mutations. An adapter may reject
// them with ErrUnsupportedOperation; the engine propagates that to the caller
// rather than falling back row-by-row, so a partial batch is never ambiguous.
type BatchAdapter interface {
	Adapter
	AddPolicies(sec, ptype string, rules [][]string) error
	RemovePolicies(sec, ptype string, rules [][]string) error
}

// Watcher is the replication collaborator. The engine calls Update after a
// policy mutation commits; the watcher's delivery guarantees are its own
// concern. The callback fires when another engine instance reports a change,
// typically wired to LoadPolicy.
type Watcher interface {
	SetUpdateCallback(fn func(rev string)) error
	Update() error
	Close() error
}

// LoadPolicyLine parses one serialized policy line, e.g.
// "p, alice, data1, read", into the model. Blank lines and '#' comments are
// ignored. Shared by adapters so they all agree on the wire shape.
func LoadPolicyLine(line string, m Model) error {
	parts := strings.Split(line, "#")
	line = strings.TrimSpace(parts[0])
	if line == "" {
		return nil
	}
	tokens := strings.Split(line, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if len(tokens) < 2 {
		return configError("invalid policy line %q", line)
	}
	key := tokens[0]
	sec := key[:1]
	_, err := m.AddPolicyRow(sec, key, tokens[1:])
	return err
}

// PolicyLine renders a rule back into the serialized form LoadPolicyLine
// accepts.
func PolicyLine(ptype string, rule []string) string {
	return ptype + ", " + strings.Join(rule, ", ")
}
