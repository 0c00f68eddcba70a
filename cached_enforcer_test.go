package permit

import "testing"

func TestCachedEngineEnforce(t *testing.T) {
	e, err := NewCachedEngine(basicModel())
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()
	e.AddPolicy("alice", "data1", "read")

	got, err := e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("expected allow")
	}
	e.WaitCache()

	// the cached decision agrees with the live one
	got, err = e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("expected cached allow")
	}
}

func TestCachedEngineInvalidateOnMutation(t *testing.T) {
	e, err := NewCachedEngine(basicModel())
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()

	got, err := e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if got {
		t.Fatalf("expected deny before the grant")
	}
	e.WaitCache()

	if _, err := e.AddPolicy("alice", "data1", "read"); err != nil {
		t.Fatalf("add policy: %v", err)
	}

	got, err = e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("mutation must invalidate the cached deny")
	}

	if _, err := e.RemovePolicy("alice", "data1", "read"); err != nil {
		t.Fatalf("remove policy: %v", err)
	}
	got, _ = e.Enforce("alice", "data1", "read")
	if got {
		t.Fatalf("revocation must invalidate the cached allow")
	}
}

func TestCachedEngineInvalidateOnFilteredRemove(t *testing.T) {
	e, err := NewCachedEngine(basicModel())
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()
	e.AddPolicy("alice", "data1", "read")

	got, err := e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("expected allow before removal")
	}
	e.WaitCache()

	removed, err := e.RemoveFilteredPolicy(0, "alice")
	if err != nil {
		t.Fatalf("remove filtered policy: %v", err)
	}
	if !removed {
		t.Fatalf("expected removal")
	}

	got, err = e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if got {
		t.Fatalf("filtered removal must invalidate the cached allow")
	}
}

func TestCachedEngineInvalidateOnRoleMutation(t *testing.T) {
	e, err := NewCachedEngine(rbacModel())
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()
	e.AddPolicy("admin", "data1", "write")

	got, err := e.Enforce("alice", "data1", "write")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if got {
		t.Fatalf("expected deny before the role grant")
	}
	e.WaitCache()

	if _, err := e.AddRoleForUser("alice", "admin"); err != nil {
		t.Fatalf("add role: %v", err)
	}
	got, err = e.Enforce("alice", "data1", "write")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("role grant must invalidate the cached deny")
	}
	e.WaitCache()

	if _, err := e.DeleteRoleForUser("alice", "admin"); err != nil {
		t.Fatalf("delete role: %v", err)
	}
	got, err = e.Enforce("alice", "data1", "write")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if got {
		t.Fatalf("role revocation must invalidate the cached allow")
	}
}

func TestCachedEngineNonStringRequest(t *testing.T) {
	m := NewModel()
	m.AddDef("r", "r", "sub, age")
	m.AddDef("p", "p", "sub")
	m.AddDef("e", "e", EffectAllowOverride)
	m.AddDef("m", "m", "r.age > 18")

	e, err := NewCachedEngine(m)
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()

	// non-string request values bypass the cache but still evaluate
	got, err := e.Enforce("alice", 25.0)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !got {
		t.Fatalf("expected allow for age 25")
	}
	got, err = e.Enforce("bob", 15.0)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if got {
		t.Fatalf("expected deny for age 15")
	}
}

func TestCachedEngineInvalidateCache(t *testing.T) {
	e, err := NewCachedEngine(basicModel())
	if err != nil {
		t.Fatalf("new cached engine: %v", err)
	}
	defer e.Close()
	e.AddPolicy("alice", "data1", "read")

	if _, err := e.Enforce("alice", "data1", "read"); err != nil {
		t.Fatalf("enforce: %v", err)
	}
	e.WaitCache()
	e.InvalidateCache()

	got, err := e.Enforce("alice", "data1", "read")
	if err != nil {
		t.Fatalf("enforce after invalidate: %v", err)
	}
	if !got {
		t.Fatalf("expected allow")
	}
}
