package symbols

import "testing"

func TestDefineAndResolve(t *testing.T) {
	s := NewScope[int]()
	s.Define("a", 1)
	v, ok := s.Resolve("a")
	if !ok || v != 1 {
		t.Fatalf("Resolve(a) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := s.Resolve("b"); ok {
		t.Fatal("Resolve(b) should fail: never defined")
	}
}

func TestChildResolvesThroughParent(t *testing.T) {
	outer := NewScope[int]()
	outer.Define("a", 1)
	inner := outer.NewChild()
	v, ok := inner.Resolve("a")
	if !ok || v != 1 {
		t.Fatalf("inner.Resolve(a) = (%d, %v), want (1, true)", v, ok)
	}
}

func TestChildShadowsParent(t *testing.T) {
	outer := NewScope[int]()
	outer.Define("a", 1)
	inner := outer.NewChild()
	inner.Define("a", 2)

	if v, _ := inner.Resolve("a"); v != 2 {
		t.Errorf("inner.Resolve(a) = %d, want 2 (shadowed)", v)
	}
	if v, _ := outer.Resolve("a"); v != 1 {
		t.Errorf("outer.Resolve(a) = %d, want 1 (untouched by child shadowing)", v)
	}
}

func TestRebindWalksUpToTheDefiningScope(t *testing.T) {
	outer := NewScope[int]()
	outer.Define("a", 1)
	inner := outer.NewChild()

	if ok := inner.Rebind("a", 99); !ok {
		t.Fatal("Rebind(a) should find 'a' in the parent scope")
	}
	if v, _ := outer.Resolve("a"); v != 99 {
		t.Errorf("outer.Resolve(a) after Rebind = %d, want 99", v)
	}
}

func TestRebindUnboundNameFails(t *testing.T) {
	s := NewScope[int]()
	if ok := s.Rebind("never_defined", 1); ok {
		t.Fatal("Rebind should fail for a name that was never Defined anywhere in the chain")
	}
}

func TestDefinedHereIgnoresParent(t *testing.T) {
	outer := NewScope[int]()
	outer.Define("a", 1)
	inner := outer.NewChild()

	if inner.DefinedHere("a") {
		t.Error("DefinedHere(a) should be false: 'a' is only in the parent")
	}
	if !outer.DefinedHere("a") {
		t.Error("DefinedHere(a) should be true in the scope that defines it")
	}
}
