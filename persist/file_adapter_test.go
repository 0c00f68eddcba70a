package persist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/permit"
	"github.com/oarkflow/permit/utils"
)

func rbacModel() permit.Model {
	m := permit.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", permit.EffectAllowOverride)
	m.AddDef("m", "m", "g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act")
	return m
}

func TestFileAdapterLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	content := strings.Join([]string{
		"p, alice, data1, read",
		"p, admin, data2, write",
		"",
		"# a comment line",
		"g, alice, admin",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	m := rbacModel()
	a := NewFileAdapter(path)
	if err := a.LoadPolicy(m); err != nil {
		t.Fatalf("load policy: %v", err)
	}

	rows, err := m.GetPolicyRows("p", "p")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	want := [][]string{{"alice", "data1", "read"}, {"admin", "data2", "write"}}
	if !utils.Array2DEquals(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	grows, _ := m.GetPolicyRows("g", "g")
	if !utils.Array2DEquals(grows, [][]string{{"alice", "admin"}}) {
		t.Fatalf("grouping rows = %v", grows)
	}
}

func TestFileAdapterSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")

	m := rbacModel()
	m.AddPolicyRow("p", "p", []string{"alice", "data1", "read"})
	m.AddPolicyRow("g", "g", []string{"alice", "admin"})

	a := NewFileAdapter(path)
	if err := a.SavePolicy(m); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	reloaded := rbacModel()
	if err := a.LoadPolicy(reloaded); err != nil {
		t.Fatalf("reload policy: %v", err)
	}
	rows, _ := reloaded.GetPolicyRows("p", "p")
	if !utils.Array2DEquals(rows, [][]string{{"alice", "data1", "read"}}) {
		t.Fatalf("rows = %v", rows)
	}
	grows, _ := reloaded.GetPolicyRows("g", "g")
	if !utils.Array2DEquals(grows, [][]string{{"alice", "admin"}}) {
		t.Fatalf("grouping rows = %v", grows)
	}
}

func TestFileAdapterRejectsMutations(t *testing.T) {
	a := NewFileAdapter("unused")
	if err := a.AddPolicy("p", "p", []string{"x", "y", "z"}); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("add: got %v", err)
	}
	if err := a.RemovePolicy("p", "p", []string{"x", "y", "z"}); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("remove: got %v", err)
	}
	if err := a.RemoveFilteredPolicy("p", "p", 0, "x"); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("remove filtered: got %v", err)
	}
}

func TestBatchFileAdapterRejectsBatches(t *testing.T) {
	a := NewBatchFileAdapter("unused")
	rules := [][]string{{"x", "y", "z"}}
	if err := a.AddPolicies("p", "p", rules); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("add batch: got %v", err)
	}
	if err := a.RemovePolicies("p", "p", rules); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("remove batch: got %v", err)
	}

	// batch rejection surfaces through the engine instead of a partial write
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	e, err := permit.NewEngine(rbacModel(), permit.WithAdapter(NewBatchFileAdapter(path)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.AddPolicies([][]string{{"alice", "data1", "read"}}); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("engine batch add: got %v", err)
	}
}

func TestStringAdapter(t *testing.T) {
	a := NewStringAdapter("p, alice, data1, read\ng, alice, admin")
	m := rbacModel()
	if err := a.LoadPolicy(m); err != nil {
		t.Fatalf("load policy: %v", err)
	}
	rows, _ := m.GetPolicyRows("p", "p")
	if !utils.Array2DEquals(rows, [][]string{{"alice", "data1", "read"}}) {
		t.Fatalf("rows = %v", rows)
	}
	if err := a.SavePolicy(m); !errors.Is(err, permit.ErrUnsupportedOperation) {
		t.Fatalf("save: got %v", err)
	}
}
