package jdi

import (
	"testing"

	"github.com/adamchandra/ensime/internal/debug"
)

func TestFakeSetBreakpointRequiresLoadedClass(t *testing.T) {
	f := NewFake(nil)
	locs, err := f.SetBreakpoint("Foo", 10)
	if err != nil {
		t.Fatalf("SetBreakpoint() error = %v", err)
	}
	if len(locs) != 0 {
		t.Fatalf("SetBreakpoint() with no loaded classes returned %d locations, want 0", len(locs))
	}

	f.classes = append(f.classes, debug.Class{Name: "Foo", SourceBasename: "Foo.scala"})
	locs, err = f.SetBreakpoint("Foo", 10)
	if err != nil {
		t.Fatalf("SetBreakpoint() error = %v", err)
	}
	if len(locs) != 1 || locs[0].Line != 10 {
		t.Fatalf("SetBreakpoint() = %+v, want one location at line 10", locs)
	}
}

func TestFakeReadValueRoundTrip(t *testing.T) {
	f := NewFake(nil)
	key := locationKeyFor(debug.ObjectReference{ObjectID: 1})
	f.SeedValue(key, debug.Value{Kind: debug.ValueString, Str: "pinned"})

	v, err := f.ReadValue(debug.ObjectReference{ObjectID: 1})
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if v.Str != "pinned" {
		t.Errorf("ReadValue() = %+v, want Str=pinned", v)
	}
}

func TestFakeStartEmitsVMStart(t *testing.T) {
	f := NewFake(nil)
	if err := f.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	ev := <-f.Events()
	if ev.Kind != debug.EventVMStart {
		t.Errorf("first event kind = %v, want EventVMStart", ev.Kind)
	}
}
