package debug

import (
	"fmt"
	"testing"
	"time"
)

// fakeVM is a minimal in-package TargetVM stub (the debug/jdi fake cannot be
// imported here without a cycle, since it depends on this package).
type fakeVM struct {
	classes   []Class
	events    chan VMEvent
	values    map[string]Value
	toStrings map[string]string
}

func newFakeVM(classes []Class) *fakeVM {
	return &fakeVM{classes: classes, events: make(chan VMEvent, 16), values: map[string]Value{}, toStrings: map[string]string{}}
}

func (f *fakeVM) Start([]string) error      { f.events <- VMEvent{Kind: EventVMStart}; return nil }
func (f *fakeVM) Attach(string, int) error  { return f.Start(nil) }
func (f *fakeVM) Dispose() error            { return nil }
func (f *fakeVM) Resume() error             { return nil }
func (f *fakeVM) Threads() ([]Thread, error) {
	return []Thread{{ID: 1, Name: "main"}}, nil
}
func (f *fakeVM) AllClasses() ([]Class, error) { return f.classes, nil }

func (f *fakeVM) SetBreakpoint(className string, line int) ([]Location, error) {
	for _, c := range f.classes {
		if c.Name == className {
			return []Location{{ClassName: c.Name, SourceName: c.SourceBasename, SourcePath: c.SourceBasename, Line: line}}, nil
		}
	}
	return nil, nil
}
func (f *fakeVM) ClearBreakpoints([]Location) error { return nil }
func (f *fakeVM) ClearAllBreakpoints() error        { return nil }
func (f *fakeVM) NewStepRequest(threadID int64, stride StepStride, depth StepDepth) error {
	f.events <- VMEvent{Kind: EventStep, ThreadID: threadID, ThreadName: "main", HasLoc: true, Location: Location{SourcePath: "Foo.scala", Line: 10}}
	return nil
}
func (f *fakeVM) ReadValue(loc ValueLocation) (Value, error) {
	return f.values[locKey(loc)], nil
}
func (f *fakeVM) SetValue(slot StackSlot, text string) error {
	f.values[locKey(slot)] = Value{Kind: ValueString, Str: text}
	return nil
}
func (f *fakeVM) InvokeToString(threadID int64, loc ValueLocation) (string, error) {
	return f.toStrings[locKey(loc)], nil
}
func (f *fakeVM) Backtrace(threadID int64, fromIndex, count int) ([]Frame, error) {
	return []Frame{{Index: fromIndex, ThisObjectID: 17}}, nil
}
func (f *fakeVM) Events() <-chan VMEvent { return f.events }

func locKey(loc ValueLocation) string {
	switch l := loc.(type) {
	case StackSlot:
		return fmt.Sprintf("slot:%d:%d:%d", l.ThreadID, l.FrameIndex, l.Offset)
	case ObjectField:
		return fmt.Sprintf("field:%d:%s", l.ObjectID, l.Field)
	case ObjectReference:
		return fmt.Sprintf("objref:%d", l.ObjectID)
	case ArrayElement:
		return fmt.Sprintf("elem:%d:%d", l.ObjectID, l.Index)
	default:
		return "other"
	}
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("controller never reached state %v, still %v", want, c.State())
}

func TestPendingBreakpointPromotion(t *testing.T) {
	vm := newFakeVM(nil)
	c := New(vm)
	if err := c.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForState(t, c, Running)

	installed, pending, err := c.SetBreakpoint("Foo.scala", 42)
	if err != nil {
		t.Fatalf("SetBreakpoint() error = %v", err)
	}
	if installed || !pending {
		t.Fatalf("SetBreakpoint() with no loaded class = (installed=%v, pending=%v), want (false, true)", installed, pending)
	}

	vm.classes = append(vm.classes, Class{Name: "Foo", SourceBasename: "Foo.scala"})
	vm.events <- VMEvent{Kind: EventClassPrepare, Class: Class{Name: "Foo", SourceBasename: "Foo.scala"}}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		_, active := c.active[locationKey{"Foo.scala", "Foo.scala", 42}]
		c.mu.Unlock()
		if active {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("pending breakpoint was never promoted to active after ClassPrepareEvent")
}

func TestValueSummary(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Value{Kind: ValueNull}, "null"},
		{Value{Kind: ValueBool, Bool: true}, "true"},
		{Value{Kind: ValueNumber, Number: "42"}, "42"},
		{Value{Kind: ValueChar, Char: 'x'}, "'x'"},
		{Value{Kind: ValueString, Str: "hi"}, `"hi"`},
		{Value{Kind: ValueArray, Elements: []Value{
			{Kind: ValueNumber, Number: "1"},
			{Kind: ValueNumber, Number: "2"},
			{Kind: ValueNumber, Number: "3"},
			{Kind: ValueNumber, Number: "4"},
		}}, "Array[1, 2, 3]"},
		{Value{Kind: ValueObject, TypeName: "com.example.Foo"}, "Instance of Foo"},
		{Value{Kind: ValueObject, TypeName: "scala.runtime.IntRef", Elements: []Value{{Kind: ValueNumber, Number: "7"}}}, "7"},
	}
	for _, c := range cases {
		if got := ValueSummary(c.v); got != c.want {
			t.Errorf("ValueSummary(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSetValueTrimsQuotesAndNeverAborts(t *testing.T) {
	vm := newFakeVM(nil)
	c := New(vm)

	ok, err := c.SetValue(StackSlot{ThreadID: 1, FrameIndex: 0, Offset: 0}, `"hello"`)
	if err != nil || !ok {
		t.Fatalf("SetValue() = (%v, %v), want (true, nil)", ok, err)
	}
	got, _ := c.DebugValue(StackSlot{ThreadID: 1, FrameIndex: 0, Offset: 0})
	if got.Str != "hello" {
		t.Errorf("stored value = %q, want hello (quotes trimmed)", got.Str)
	}
}

func TestDebugValuePinningRoundTrip(t *testing.T) {
	vm := newFakeVM(nil)
	c := New(vm)

	root := StackSlot{ThreadID: 1, FrameIndex: 0, Offset: 0}
	vm.values[locKey(root)] = Value{Kind: ValueObject, TypeName: "com.example.Foo"}

	v, err := c.DebugValue(root)
	if err != nil {
		t.Fatalf("DebugValue(root) error = %v", err)
	}
	if v.ObjectID == 0 {
		t.Fatalf("DebugValue(root).ObjectID = 0, want a freshly pinned id")
	}
	id := v.ObjectID

	field := ObjectField{ObjectID: id, Field: "bar"}
	vm.values[locKey(field)] = Value{Kind: ValueNumber, Number: "42"}
	fv, err := c.DebugValue(field)
	if err != nil {
		t.Fatalf("DebugValue(field) error = %v", err)
	}
	if fv.Number != "42" {
		t.Errorf("DebugValue(field).Number = %q, want 42", fv.Number)
	}

	ref := ObjectReference{ObjectID: id}
	vm.values[locKey(ref)] = Value{Kind: ValueObject, TypeName: "com.example.Foo"}
	if _, err := c.DebugValue(ref); err != nil {
		t.Fatalf("DebugValue(ref) error = %v", err)
	}

	if _, err := c.DebugValue(ObjectField{ObjectID: id + 999, Field: "bar"}); err == nil {
		t.Fatal("DebugValue() with an unpinned object id = nil error, want error")
	}
}

func TestBacktraceDefaultsAbsentFields(t *testing.T) {
	vm := newFakeVM(nil)
	c := New(vm)
	frames, err := c.Backtrace(1, 0, -1)
	if err != nil {
		t.Fatalf("Backtrace() error = %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("Backtrace() returned %d frames, want 1", len(frames))
	}
	f := frames[0]
	if f.MethodName != "Method" || f.ClassName != "Class" {
		t.Errorf("Backtrace() defaults = %+v, want MethodName=Method ClassName=Class", f)
	}
	if f.ThisObjectID != 17 {
		t.Errorf("ThisObjectID = %d, want 17 (not defaulted, since it was set)", f.ThisObjectID)
	}
}
