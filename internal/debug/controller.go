package debug

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// referenceCellPattern matches standard runtime reference-cell boxed types
// (e.g. scala.runtime.IntRef, scala.runtime.ObjectRef) whose value-summary
// rendering dereferences through an "elem" field instead of printing
// "Instance of ...".
var referenceCellPattern = regexp.MustCompile(`(?i)(^|\.)[A-Za-z]+Ref$`)

// Controller is the debug controller actor: a single actor owning at most
// one TargetVM, exposed through methods that
// the owning goroutine calls sequentially (its mailbox is the caller's own
// call sequence — there is no internal dispatch loop to duplicate here,
// since nothing else reaches into the controller's state).
type Controller struct {
	vm    TargetVM
	state State

	mu sync.Mutex // guards everything below; vm events and RPC calls both reach it

	sourceMap map[string]map[string]bool // basename -> set<class fq name>
	active    map[locationKey]Location
	pending   map[string][]pendingBreakpoint // basename -> requested lines

	pins    map[int64]Value
	nextPin int64

	subscribers []func(ControllerEvent)

	// onBreakpointResolved, if set, is called whenever SetBreakpoint installs
	// a location — including the promotion of a previously pending
	// breakpoint once its class loads (see onClassPrepare) — so a caller can
	// mirror the active/pending distinction into persistent storage.
	onBreakpointResolved func(basename string, line int)
}

type pendingBreakpoint struct {
	line int
}

// New creates a controller around vm, not yet connected.
func New(vm TargetVM) *Controller {
	return &Controller{
		vm:        vm,
		state:     Disconnected,
		sourceMap: make(map[string]map[string]bool),
		active:    make(map[locationKey]Location),
		pending:   make(map[string][]pendingBreakpoint),
		pins:      make(map[int64]Value),
		nextPin:   1,
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches commandLine as the target VM and begins pumping its
// events.
func (c *Controller) Start(commandLine []string) error {
	c.mu.Lock()
	c.state = Connecting
	c.mu.Unlock()

	if err := c.vm.Start(commandLine); err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return fmt.Errorf("debug: start: %w", err)
	}
	go c.pumpEvents()
	return nil
}

// Attach connects to an already-running target VM at host:port.
func (c *Controller) Attach(host string, port int) error {
	c.mu.Lock()
	c.state = Connecting
	c.mu.Unlock()

	if err := c.vm.Attach(host, port); err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return fmt.Errorf("debug: attach: %w", err)
	}
	go c.pumpEvents()
	return nil
}

// pumpEvents never touches the controller's maps directly from the pump
// thread's own goroutine stack — every mutation goes through the same
// mutex RPC handlers use.
func (c *Controller) pumpEvents() {
	for ev := range c.vm.Events() {
		c.handleEvent(ev)
	}
}

func (c *Controller) handleEvent(ev VMEvent) {
	switch ev.Kind {
	case EventVMStart:
		c.onVMStart()
	case EventVMDeath, EventVMDisconnect:
		c.onVMDisconnect()
	case EventBreakpoint:
		c.emitDebugBreak(ev)
	case EventStep:
		c.emitDebugStep(ev)
	case EventException:
		c.onException(ev)
	case EventThreadStart, EventThreadDeath:
		// pass-through; no controller state to update
	case EventClassPrepare:
		c.onClassPrepare(ev)
	default:
		log.Printf("debug: unrecognized VM event kind %d", ev.Kind)
	}
}

func (c *Controller) onVMStart() {
	classes, err := c.vm.AllClasses()
	if err != nil {
		log.Printf("debug: VMStart allClasses: %v", err)
		return
	}
	c.mu.Lock()
	c.state = Running
	c.sourceMap = make(map[string]map[string]bool)
	for _, cl := range classes {
		c.indexClassLocked(cl)
	}
	c.mu.Unlock()
	c.publish(ControllerEvent{Kind: DebugVMStart})
}

func (c *Controller) indexClassLocked(cl Class) {
	if cl.SourceBasename == "" {
		return
	}
	set, ok := c.sourceMap[cl.SourceBasename]
	if !ok {
		set = make(map[string]bool)
		c.sourceMap[cl.SourceBasename] = set
	}
	set[cl.Name] = true
}

func (c *Controller) onVMDisconnect() {
	if err := c.vm.Dispose(); err != nil {
		log.Printf("debug: dispose on disconnect: %v", err)
	}
	c.mu.Lock()
	c.state = Disconnected
	for key, loc := range c.active {
		c.pending[loc.SourceName] = append(c.pending[loc.SourceName], pendingBreakpoint{line: loc.Line})
		delete(c.active, key)
	}
	c.pins = make(map[int64]Value)
	c.mu.Unlock()
	c.publish(ControllerEvent{Kind: DebugVMDisconnect})
}

func (c *Controller) onClassPrepare(ev VMEvent) {
	c.mu.Lock()
	c.indexClassLocked(ev.Class)
	basename := ev.Class.SourceBasename
	lines := c.pending[basename]
	delete(c.pending, basename)
	c.mu.Unlock()

	for _, pb := range lines {
		if _, _, err := c.SetBreakpoint(basename, pb.line); err != nil {
			log.Printf("debug: retry pending breakpoint %s:%d: %v", basename, pb.line, err)
		}
	}
}

// SetBreakpoint resolves a source breakpoint against loaded classes and
// installs it, or records it pending if no matching class has loaded yet.
// It returns (installed, pending, err): installed is true when at least one
// location was resolved and a request installed; otherwise the breakpoint
// is recorded pending for basename and the RPC still reports success.
func (c *Controller) SetBreakpoint(basename string, line int) (installed bool, nowPending bool, err error) {
	c.mu.Lock()
	classes := make([]string, 0, len(c.sourceMap[basename]))
	for name := range c.sourceMap[basename] {
		classes = append(classes, name)
	}
	c.mu.Unlock()

	seen := make(map[locationKey]Location)
	for _, className := range classes {
		locs, err := c.vm.SetBreakpoint(className, line)
		if err != nil {
			return false, false, fmt.Errorf("debug: resolve %s:%d: %w", className, line, err)
		}
		for _, l := range locs {
			seen[l.key()] = l
		}
	}

	if len(seen) == 0 {
		c.mu.Lock()
		c.pending[basename] = append(c.pending[basename], pendingBreakpoint{line: line})
		c.mu.Unlock()
		return false, true, nil
	}

	c.mu.Lock()
	for key, loc := range seen {
		c.active[key] = loc
	}
	fn := c.onBreakpointResolved
	c.mu.Unlock()
	if fn != nil {
		fn(basename, line)
	}
	return true, false, nil
}

// ClearBreakpoint removes every active location at basename:line, and drops
// any matching pending entry too (the last-arrived RPC in mailbox order
// always wins; see DESIGN.md's Open Question decision).
func (c *Controller) ClearBreakpoint(basename string, line int) error {
	c.mu.Lock()
	var toClear []Location
	for key, loc := range c.active {
		if loc.SourceName == basename && loc.Line == line {
			toClear = append(toClear, loc)
			delete(c.active, key)
		}
	}
	filtered := c.pending[basename][:0]
	for _, pb := range c.pending[basename] {
		if pb.line != line {
			filtered = append(filtered, pb)
		}
	}
	c.pending[basename] = filtered
	c.mu.Unlock()

	if len(toClear) == 0 {
		return nil
	}
	return c.vm.ClearBreakpoints(toClear)
}

// ClearAllBreakpoints empties both the active and pending sets.
func (c *Controller) ClearAllBreakpoints() error {
	c.mu.Lock()
	c.active = make(map[locationKey]Location)
	c.pending = make(map[string][]pendingBreakpoint)
	c.mu.Unlock()
	return c.vm.ClearAllBreakpoints()
}

// Step installs a new step request for threadID at the given depth
// (implicit deletion of any prior request is the TargetVM contract),
// enables it, and resumes.
func (c *Controller) Step(threadID int64, depth StepDepth) error {
	return c.vm.NewStepRequest(threadID, StepLine, depth)
}

// Continue resumes the target VM after it suspended at a breakpoint,
// step, or exception.
func (c *Controller) Continue() error {
	return c.vm.Resume()
}

func (c *Controller) emitDebugBreak(ev VMEvent) {
	if !ev.HasLoc {
		log.Printf("debug: breakpoint event for thread %d did not resolve a location", ev.ThreadID)
		return
	}
	// Translation point: callers observe this via Events below.
	c.publish(ControllerEvent{Kind: DebugBreak, ThreadID: ev.ThreadID, ThreadName: ev.ThreadName, Position: SourcePosition{File: ev.Location.SourcePath, Line: ev.Location.Line}})
}

func (c *Controller) emitDebugStep(ev VMEvent) {
	if !ev.HasLoc {
		log.Printf("debug: step event for thread %d did not resolve a location", ev.ThreadID)
		return
	}
	c.publish(ControllerEvent{Kind: DebugStep, ThreadID: ev.ThreadID, ThreadName: ev.ThreadName, Position: SourcePosition{File: ev.Location.SourcePath, Line: ev.Location.Line}})
}

func (c *Controller) onException(ev VMEvent) {
	pinID := c.pin(Value{Kind: ValueObject, ObjectID: ev.ExceptionObjectID, TypeName: ""})
	evt := ControllerEvent{Kind: DebugException, ThreadID: ev.ThreadID, ThreadName: ev.ThreadName, ExceptionObjectID: pinID}
	if ev.HasLoc {
		evt.HasCatchLocation = true
		evt.Position = SourcePosition{File: ev.Location.SourcePath, Line: ev.Location.Line}
	}
	c.publish(evt)
}

// ControllerEventKind discriminates the events this controller publishes
// to the rest of the fabric.
type ControllerEventKind int

const (
	DebugVMStart ControllerEventKind = iota
	DebugVMDisconnect
	DebugBreak
	DebugStep
	DebugException
)

// ControllerEvent is a translated, client-facing debug event.
type ControllerEvent struct {
	Kind              ControllerEventKind
	ThreadID          int64
	ThreadName        string
	Position          SourcePosition
	ExceptionObjectID int64
	HasCatchLocation  bool
}

func (c *Controller) publish(evt ControllerEvent) {
	c.mu.Lock()
	subs := c.subscribers
	c.mu.Unlock()
	for _, fn := range subs {
		fn(evt)
	}
}

// Subscribe registers fn to receive every ControllerEvent this controller
// publishes (the project router uses this to forward events onto the
// client socket as AsyncEvent frames).
func (c *Controller) Subscribe(fn func(ControllerEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// OnBreakpointResolved registers fn to be called with (basename, line)
// whenever SetBreakpoint installs a location, including later promotions of
// a pending breakpoint triggered by onClassPrepare.
func (c *Controller) OnBreakpointResolved(fn func(basename string, line int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onBreakpointResolved = fn
}

// pin assigns v a fresh id and stores it in the pinning table; an object id
// already carried by v is replaced, never reused. Primitives are never pinned.
func (c *Controller) pin(v Value) int64 {
	if v.Kind != ValueObject && v.Kind != ValueArray {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextPin
	c.nextPin++
	v.ObjectID = id
	c.pins[id] = v
	return id
}

// DebugValue resolves loc to a Value, validating any object id it names
// against the pinning table first, then pinning any object or array it
// reads (including one reached through a field/array lookup) before
// returning it.
func (c *Controller) DebugValue(loc ValueLocation) (Value, error) {
	if err := c.checkPinned(loc); err != nil {
		return Value{}, err
	}
	v, err := c.vm.ReadValue(loc)
	if err != nil {
		return Value{}, fmt.Errorf("debug: read value: %w", err)
	}
	if v.Kind == ValueObject || v.Kind == ValueArray {
		v.ObjectID = c.pin(v)
	}
	return v, nil
}

// checkPinned rejects a ValueLocation naming an object id this controller
// never handed out via pin(). StackSlot locations name no object id and
// always pass.
func (c *Controller) checkPinned(loc ValueLocation) error {
	var id int64
	switch l := loc.(type) {
	case ObjectReference:
		id = l.ObjectID
	case ObjectField:
		id = l.ObjectID
	case ArrayElement:
		id = l.ObjectID
	default:
		return nil
	}
	c.mu.Lock()
	_, ok := c.pins[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("debug: object id %d is not pinned", id)
	}
	return nil
}

// ValueSummary renders v as a short, unambiguous display string.
func ValueSummary(v Value) string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueNumber:
		return v.Number
	case ValueChar:
		return "'" + string(v.Char) + "'"
	case ValueString:
		return `"` + v.Str + `"`
	case ValueArray:
		n := len(v.Elements)
		shown := n
		if shown > 3 {
			shown = 3
		}
		parts := make([]string, shown)
		for i := 0; i < shown; i++ {
			parts[i] = ValueSummary(v.Elements[i])
		}
		return "Array[" + strings.Join(parts, ", ") + "]"
	case ValueObject:
		if referenceCellPattern.MatchString(v.TypeName) && len(v.Elements) == 1 {
			return ValueSummary(v.Elements[0])
		}
		return "Instance of " + lastSegment(v.TypeName)
	default:
		return ""
	}
}

func lastSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// ToStringValue renders loc for display: arrays, strings, primitives, and
// null are rendered directly; any other object invokes the target's
// toString() on threadID.
func (c *Controller) ToStringValue(threadID int64, loc ValueLocation) (string, error) {
	v, err := c.DebugValue(loc)
	if err != nil {
		return "", err
	}
	switch v.Kind {
	case ValueArray:
		return fmt.Sprintf("<array of %d element(s)>", len(v.Elements)), nil
	case ValueString:
		return v.Str, nil
	case ValueObject:
		return c.vm.InvokeToString(threadID, loc)
	default:
		return ValueSummary(v), nil
	}
}

// SetValue mutates a stack slot: text has its surrounding double quotes
// trimmed if both are present, and the TargetVM converts what remains to
// the slot's type. Only stack-slot locations are mutable; failures never
// abort, they simply report false.
func (c *Controller) SetValue(slot StackSlot, text string) (bool, error) {
	text = mutationText(text)
	if err := c.vm.SetValue(slot, text); err != nil {
		log.Printf("debug: set value %+v: %v", slot, err)
		return false, nil
	}
	return true, nil
}

func mutationText(text string) string {
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return text[1 : len(text)-1]
	}
	return text
}

// parseNumeric parses text as a decimal number. It is unexported, so only
// code inside this package can call it.
func parseNumeric(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

// Backtrace returns frames [fromIndex, fromIndex+count), or to the end when
// count == -1. Missing per-field information defaults to sensible
// fallbacks.
func (c *Controller) Backtrace(threadID int64, fromIndex, count int) ([]Frame, error) {
	frames, err := c.vm.Backtrace(threadID, fromIndex, count)
	if err != nil {
		return nil, fmt.Errorf("debug: backtrace: %w", err)
	}
	for i := range frames {
		if frames[i].MethodName == "" {
			frames[i].MethodName = "Method"
		}
		if frames[i].ClassName == "" {
			frames[i].ClassName = "Class"
		}
		if frames[i].Locals == nil {
			frames[i].Locals = []Local{}
		}
		if frames[i].ThisObjectID == 0 {
			frames[i].ThisObjectID = -1
		}
	}
	return frames, nil
}
