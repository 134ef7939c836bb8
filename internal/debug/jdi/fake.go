// Package jdi provides an in-process, simulated target VM so the debug
// controller can be exercised in tests without a real JVM and without a
// dependency on any actual Java Debug Interface binding.
package jdi

import (
	"fmt"
	"sync"

	"github.com/adamchandra/ensime/internal/debug"
)

// Fake is a minimal, fully in-memory debug.TargetVM. Tests preload its
// classes and drive its event stream directly via Emit.
type Fake struct {
	mu sync.Mutex

	classes []debug.Class
	values  map[string]debug.Value // key: see locationKeyFor ("slot:t:f:o", "field:id:name", "obj:id", "elem:id:idx")

	events  chan debug.VMEvent
	started bool
}

// NewFake creates an unstarted fake target VM preloaded with classes.
func NewFake(classes []debug.Class) *Fake {
	return &Fake{
		classes: classes,
		values:  make(map[string]debug.Value),
		events:  make(chan debug.VMEvent, 64),
	}
}

// SeedValue preregisters the value ReadValue will return for loc's key.
func (f *Fake) SeedValue(key string, v debug.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = v
}

// Emit posts ev onto the fake's event stream, as the real VM pump would.
func (f *Fake) Emit(ev debug.VMEvent) {
	f.events <- ev
}

func (f *Fake) Start(commandLine []string) error {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	f.Emit(debug.VMEvent{Kind: debug.EventVMStart})
	return nil
}

func (f *Fake) Attach(host string, port int) error {
	return f.Start(nil)
}

func (f *Fake) Dispose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		f.started = false
		close(f.events)
	}
	return nil
}

func (f *Fake) Resume() error { return nil }

func (f *Fake) Threads() ([]debug.Thread, error) {
	return []debug.Thread{{ID: 1, Name: "main"}}, nil
}

func (f *Fake) AllClasses() ([]debug.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]debug.Class, len(f.classes))
	copy(out, f.classes)
	return out, nil
}

// SetBreakpoint resolves a location for className:line only when className
// is one of the fake's preloaded classes; otherwise it returns no
// locations, letting the controller record it pending.
func (f *Fake) SetBreakpoint(className string, line int) ([]debug.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.classes {
		if c.Name == className {
			return []debug.Location{{
				ClassName:  c.Name,
				SourceName: c.SourceBasename,
				SourcePath: c.SourceBasename,
				Line:       line,
			}}, nil
		}
	}
	return nil, nil
}

func (f *Fake) ClearBreakpoints(locs []debug.Location) error { return nil }
func (f *Fake) ClearAllBreakpoints() error                   { return nil }

func (f *Fake) NewStepRequest(threadID int64, stride debug.StepStride, depth debug.StepDepth) error {
	f.Emit(debug.VMEvent{Kind: debug.EventStep, ThreadID: threadID, ThreadName: "main", HasLoc: true})
	return nil
}

func (f *Fake) ReadValue(loc debug.ValueLocation) (debug.Value, error) {
	key := locationKeyFor(loc)
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return debug.Value{}, fmt.Errorf("jdi: no seeded value for %s", key)
	}
	return v, nil
}

func (f *Fake) SetValue(slot debug.StackSlot, text string) error {
	key := locationKeyFor(slot)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = debug.Value{Kind: debug.ValueString, Str: text}
	return nil
}

func (f *Fake) InvokeToString(threadID int64, loc debug.ValueLocation) (string, error) {
	v, err := f.ReadValue(loc)
	if err != nil {
		return "", err
	}
	return debug.ValueSummary(v), nil
}

func (f *Fake) Backtrace(threadID int64, fromIndex, count int) ([]debug.Frame, error) {
	frame := debug.Frame{Index: fromIndex, ClassName: "Main", MethodName: "run", ThisObjectID: -1}
	return []debug.Frame{frame}, nil
}

func (f *Fake) Events() <-chan debug.VMEvent { return f.events }

func locationKeyFor(loc debug.ValueLocation) string {
	switch l := loc.(type) {
	case debug.StackSlot:
		return fmt.Sprintf("slot:%d:%d:%d", l.ThreadID, l.FrameIndex, l.Offset)
	case debug.ObjectField:
		return fmt.Sprintf("field:%d:%s", l.ObjectID, l.Field)
	case debug.ObjectReference:
		return fmt.Sprintf("obj:%d", l.ObjectID)
	case debug.ArrayElement:
		return fmt.Sprintf("elem:%d:%d", l.ObjectID, l.Index)
	default:
		return "unknown"
	}
}
