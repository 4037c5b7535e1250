package object

import "testing"

func TestEnvironment_DefineShadowsEnclosing(t *testing.T) {
	root := NewEnvironment()
	root.Define("x", NewValue(int64(1)))

	child := root.Push()
	child.Define("x", NewValue(int64(2)))

	v, err := child.Get("x")
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}
	if v.(*MValue).Value.(int64) != 2 {
		t.Errorf("expected the child's shadowed binding, got %v", v.(*MValue).Value)
	}

	v, err = root.Get("x")
	if err != nil || v.(*MValue).Value.(int64) != 1 {
		t.Errorf("expected the root binding to be unaffected, got %v, %v", v, err)
	}
}

func TestEnvironment_GetWalksEnclosingChain(t *testing.T) {
	root := NewEnvironment()
	root.Define("x", NewValue(int64(42)))
	child := root.Push()

	v, err := child.Get("x")
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}
	if v.(*MValue).Value.(int64) != 42 {
		t.Errorf("expected 42, got %v", v.(*MValue).Value)
	}
}

func TestEnvironment_GetUnboundFails(t *testing.T) {
	env := NewEnvironment()
	if _, err := env.Get("missing"); err == nil {
		t.Fatal("expected ErrUnboundName for a missing variable")
	} else if _, ok := err.(*ErrUnboundName); !ok {
		t.Errorf("expected *ErrUnboundName, got %T", err)
	}
}

func TestEnvironment_SetRebindsNearestDefiningFrame(t *testing.T) {
	root := NewEnvironment()
	root.Define("x", NewValue(int64(1)))
	child := root.Push()

	if err := child.Set("x", NewValue(int64(99))); err != nil {
		t.Fatalf("Set() returned unexpected error: %v", err)
	}

	v, _ := root.Get("x")
	if v.(*MValue).Value.(int64) != 99 {
		t.Errorf("expected Set() to rebind the root frame's 'x', got %v", v.(*MValue).Value)
	}
}

func TestEnvironment_SetUnboundFails(t *testing.T) {
	env := NewEnvironment()
	if err := env.Set("missing", NewValue(int64(1))); err == nil {
		t.Fatal("expected ErrUnboundName when setting an undeclared variable")
	}
}

func TestEnvironment_DefineNilBecomesNull(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", nil)
	v, _ := env.Get("x")
	if !IsNull(v) {
		t.Errorf("expected Define(key, nil) to bind null, got %v", v)
	}
}
