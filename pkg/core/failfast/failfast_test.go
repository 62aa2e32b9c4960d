package failfast

import (
	"errors"
	"testing"
)

func TestErr_NilDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Err(nil) panicked: %v", r)
		}
	}()
	Err(nil)
}

func TestErr_PanicsOnError(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Err() should panic on non-nil error")
		}
	}()
	Err(errors.New("boom"))
}

func TestIf_PanicsWhenFalse(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("If(false) should panic")
		}
	}()
	If(false, "invariant %s violated", "test")
}

func TestNotNil_TypedNilPointer(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NotNil() should panic on typed nil pointer")
		}
	}()
	var p *int
	NotNil(p, "p")
}

func TestNotNil_NilFunc(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NotNil() should panic on nil func")
		}
	}()
	var fn func()
	NotNil(fn, "fn")
}

func TestNotNil_ValidValue(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("NotNil() panicked on valid value: %v", r)
		}
	}()
	v := 42
	NotNil(&v, "v")
}
