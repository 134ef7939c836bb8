package protocol

import (
	"fmt"

	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/wire"
)

// ValueLocationFromWire parses one of (:stack-slot t f o), (:object-field id
// field), (:object-ref id), (:array-element id idx) into a debug.ValueLocation.
func ValueLocationFromWire(v interface{}) (debug.ValueLocation, error) {
	l, ok := v.(wire.List)
	if !ok || len(l) == 0 {
		return nil, fmt.Errorf("protocol: malformed value location %v", v)
	}
	kw, ok := l.Keyword(0)
	if !ok {
		return nil, fmt.Errorf("protocol: malformed value location %v", v)
	}
	switch kw {
	case "stack-slot":
		threadID, _ := l.Int(1)
		frameIndex, _ := l.Int(2)
		offset, _ := l.Int(3)
		return debug.StackSlot{ThreadID: threadID, FrameIndex: int(frameIndex), Offset: int(offset)}, nil
	case "object-field":
		objectID, _ := l.Int(1)
		field, _ := l.Str(2)
		return debug.ObjectField{ObjectID: objectID, Field: field}, nil
	case "object-ref":
		objectID, _ := l.Int(1)
		return debug.ObjectReference{ObjectID: objectID}, nil
	case "array-element":
		objectID, _ := l.Int(1)
		index, _ := l.Int(2)
		return debug.ArrayElement{ObjectID: objectID, Index: int(index)}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown value location tag %q", kw)
	}
}

// SetBreakpointResultToWire converts the (installed, pending) result of
// Controller.SetBreakpoint to its wire form.
func SetBreakpointResultToWire(installed, pending bool) wire.List {
	return wire.List{wire.Keyword("installed"), installed, wire.Keyword("pending"), pending}
}
