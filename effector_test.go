package permit

import "testing"

func TestAllowOverrideStream(t *testing.T) {
	eft := NewDefaultEffector()

	s, err := eft.NewStream(EffectAllowOverride)
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	if s.Push(false, EffectAllow) {
		t.Fatalf("unmatched row must not finish the stream")
	}
	if !s.Push(true, EffectAllow) {
		t.Fatalf("matched allow must short-circuit")
	}
	if !s.Decision() {
		t.Fatalf("expected allow")
	}

	// exhaustion without any matched row denies
	s, _ = eft.NewStream(EffectAllowOverride)
	s.Push(false, EffectAllow)
	s.Push(false, EffectAllow)
	if s.Decision() {
		t.Fatalf("expected deny on exhaustion")
	}
}

func TestDenyOverrideStream(t *testing.T) {
	eft := NewDefaultEffector()

	s, _ := eft.NewStream(EffectDenyOverride)
	s.Push(true, EffectAllow)
	if !s.Push(true, EffectDeny) {
		t.Fatalf("matched deny must short-circuit")
	}
	if s.Decision() {
		t.Fatalf("deny must override the earlier allow")
	}

	s, _ = eft.NewStream(EffectDenyOverride)
	s.Push(true, EffectAllow)
	if !s.Decision() {
		t.Fatalf("matched allow without deny must allow")
	}

	// no matched row at all still denies
	s, _ = eft.NewStream(EffectDenyOverride)
	s.Push(false, EffectDeny)
	if s.Decision() {
		t.Fatalf("expected deny with no matched rows")
	}
}

func TestAllowAndDenyStream(t *testing.T) {
	eft := NewDefaultEffector()

	s, _ := eft.NewStream(EffectAllowAndDeny)
	s.Push(true, EffectAllow)
	if !s.Decision() {
		t.Fatalf("allow without deny must allow")
	}

	s, _ = eft.NewStream(EffectAllowAndDeny)
	s.Push(true, EffectAllow)
	s.Push(true, EffectDeny)
	if s.Decision() {
		t.Fatalf("deny must win")
	}
}

func TestPriorityStream(t *testing.T) {
	eft := NewDefaultEffector()

	s, _ := eft.NewStream(EffectPriority)
	if !s.Push(true, EffectDeny) {
		t.Fatalf("first matched row must finish a priority stream")
	}
	if s.Decision() {
		t.Fatalf("first match was deny")
	}

	s, _ = eft.NewStream(EffectPriority)
	s.Push(false, EffectDeny)
	s.Push(true, EffectAllow)
	if !s.Decision() {
		t.Fatalf("first matched row was allow")
	}
}

func TestUnsupportedEffectExpression(t *testing.T) {
	eft := NewDefaultEffector()
	if _, err := eft.NewStream("max(p.priority)"); err == nil {
		t.Fatalf("expected error for unsupported effect expression")
	}
}
