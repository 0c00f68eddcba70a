package permit

import (
	"testing"

	"github.com/oarkflow/permit/utils"
)

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(rbacModel())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.AddPolicy("alice", "data1", "read")
	e.AddPolicy("bob", "data2", "write")
	e.AddPolicy("admin", "data2", "write")
	e.AddGroupingPolicy("alice", "admin")
	return e
}

func TestAddGroupingPolicyArityRejected(t *testing.T) {
	e, err := NewEngine(rbacModel())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	// a rule narrower than the role definition is rejected before any state changes
	added, err := e.AddGroupingPolicy("alice")
	if err == nil {
		t.Fatalf("expected arity error")
	}
	if added {
		t.Fatalf("short rule must not report added")
	}
	rules, err := e.GetGroupingPolicy()
	if err != nil {
		t.Fatalf("get grouping policy: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("short rule must not persist, got %v", rules)
	}

	if _, err := e.AddGroupingPolicy("alice", "admin"); err != nil {
		t.Fatalf("add grouping policy: %v", err)
	}
	has, err := e.HasGroupingPolicy("alice", "admin")
	if err != nil {
		t.Fatalf("has grouping policy: %v", err)
	}
	if !has {
		t.Fatalf("expected well-formed rule to persist")
	}
}

func TestGetAllSubjectsObjectsActions(t *testing.T) {
	e := seededEngine(t)

	subjects, err := e.GetAllSubjects()
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if !utils.ArrayEquals(subjects, []string{"alice", "bob", "admin"}) {
		t.Fatalf("subjects = %v", subjects)
	}

	objects, _ := e.GetAllObjects()
	if !utils.ArrayEquals(objects, []string{"data1", "data2"}) {
		t.Fatalf("objects = %v", objects)
	}

	actions, _ := e.GetAllActions()
	if !utils.ArrayEquals(actions, []string{"read", "write"}) {
		t.Fatalf("actions = %v", actions)
	}

	roles, _ := e.GetAllRoles()
	if !utils.ArrayEquals(roles, []string{"admin"}) {
		t.Fatalf("roles = %v", roles)
	}
}

func TestGetFilteredPolicy(t *testing.T) {
	e := seededEngine(t)

	rows, err := e.GetFilteredPolicy(1, "data2")
	if err != nil {
		t.Fatalf("filtered: %v", err)
	}
	want := [][]string{{"bob", "data2", "write"}, {"admin", "data2", "write"}}
	if !utils.Array2DEquals(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}

	// empty field values are wildcards
	rows, _ = e.GetFilteredPolicy(0, "", "data1")
	if !utils.Array2DEquals(rows, [][]string{{"alice", "data1", "read"}}) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestHasPolicy(t *testing.T) {
	e := seededEngine(t)

	has, err := e.HasPolicy("alice", "data1", "read")
	if err != nil {
		t.Fatalf("has policy: %v", err)
	}
	if !has {
		t.Fatalf("expected policy present")
	}
	has, _ = e.HasPolicy("alice", "data1", "write")
	if has {
		t.Fatalf("unexpected policy")
	}
	has, _ = e.HasGroupingPolicy("alice", "admin")
	if !has {
		t.Fatalf("expected grouping policy present")
	}
}

func TestRemoveFilteredPolicy(t *testing.T) {
	e := seededEngine(t)

	affected, err := e.RemoveFilteredPolicy(1, "data2")
	if err != nil {
		t.Fatalf("remove filtered: %v", err)
	}
	if !affected {
		t.Fatalf("expected rows removed")
	}
	rows, _ := e.GetPolicy()
	if !utils.Array2DEquals(rows, [][]string{{"alice", "data1", "read"}}) {
		t.Fatalf("rows = %v", rows)
	}
	mustEnforce(t, e, false, "bob", "data2", "write")
}

func TestNamedPolicyTypes(t *testing.T) {
	m := NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("p", "p2", "sub, obj, act")
	m.AddDef("e", "e", EffectAllowOverride)
	m.AddDef("m", "m", "r.sub == p.sub && r.obj == p.obj && r.act == p.act")

	e, err := NewEngine(m)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.AddNamedPolicy("p2", "alice", "data1", "read"); err != nil {
		t.Fatalf("add named: %v", err)
	}

	rows, err := e.GetNamedPolicy("p2")
	if err != nil {
		t.Fatalf("get named: %v", err)
	}
	if !utils.Array2DEquals(rows, [][]string{{"alice", "data1", "read"}}) {
		t.Fatalf("rows = %v", rows)
	}
	// the default policy stays empty
	rows, _ = e.GetPolicy()
	if len(rows) != 0 {
		t.Fatalf("default policy must be empty, got %v", rows)
	}

	if _, err := e.AddNamedPolicy("p9", "x", "y", "z"); err == nil {
		t.Fatalf("unknown policy type must error")
	}
}

func TestRemoveGroupingPolicyRebuildsLinks(t *testing.T) {
	e := seededEngine(t)

	mustEnforce(t, e, true, "alice", "data2", "write")
	removed, err := e.RemoveGroupingPolicy("alice", "admin")
	if err != nil || !removed {
		t.Fatalf("remove grouping: removed=%v err=%v", removed, err)
	}
	mustEnforce(t, e, false, "alice", "data2", "write")
}

func TestAddPoliciesBatch(t *testing.T) {
	e := seededEngine(t)

	allNew, err := e.AddPolicies([][]string{
		{"alice", "data1", "read"}, // duplicate
		{"carol", "data3", "read"},
	})
	if err != nil {
		t.Fatalf("add policies: %v", err)
	}
	if allNew {
		t.Fatalf("batch with duplicate must report false")
	}
	mustEnforce(t, e, true, "carol", "data3", "read")

	allRemoved, err := e.RemovePolicies([][]string{
		{"carol", "data3", "read"},
		{"nobody", "data9", "read"},
	})
	if err != nil {
		t.Fatalf("remove policies: %v", err)
	}
	if allRemoved {
		t.Fatalf("batch with missing rule must report false")
	}
	mustEnforce(t, e, false, "carol", "data3", "read")
}
