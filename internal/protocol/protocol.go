// Package protocol converts domain values (index results, debug events,
// analyzer replies) to and from the wire's symbolic-expression lists, and
// holds the RPC form dispatch table the project router consults to find
// the component actor owning a given request.
package protocol

import (
	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/index"
	"github.com/adamchandra/ensime/internal/wire"
)

// Component names a component actor, used as the dispatch table's value
// and as the tag on forwarded internal messages.
type Component string

const (
	ComponentAnalyzer Component = "analyzer"
	ComponentIndexer  Component = "indexer"
	ComponentDebug    Component = "debug"
)

// formTable maps an RPC form's leading symbol to the component actor that
// owns it. Forms not listed here are unrecognized (wire.ErrUnrecognizedForm, 203).
var formTable = map[string]Component{
	"swank:remove-file":               ComponentAnalyzer,
	"swank:reload-all":                ComponentAnalyzer,
	"swank:reload-files":              ComponentAnalyzer,
	"swank:patch-source":              ComponentAnalyzer,
	"swank:completions":               ComponentAnalyzer,
	"swank:uses-of-symbol-at-point":   ComponentAnalyzer,
	"swank:package-member-completion": ComponentAnalyzer,
	"swank:inspect-type-at-point":     ComponentAnalyzer,
	"swank:inspect-type-by-id":        ComponentAnalyzer,
	"swank:symbol-at-point":           ComponentAnalyzer,
	"swank:inspect-package-by-path":   ComponentAnalyzer,
	"swank:type-at-point":             ComponentAnalyzer,
	"swank:type-by-id":                ComponentAnalyzer,
	"swank:type-by-name":              ComponentAnalyzer,
	"swank:type-by-name-at-point":     ComponentAnalyzer,
	"swank:call-completion":           ComponentAnalyzer,
	"swank:symbol-designations":       ComponentAnalyzer,
	"swank:import-suggestions":        ComponentIndexer,
	"swank:public-symbol-search":      ComponentIndexer,
	"swank:init-project":              ComponentIndexer,
	"swank:debug-start":               ComponentDebug,
	"swank:debug-attach":              ComponentDebug,
	"swank:debug-set-break":           ComponentDebug,
	"swank:debug-clear-break":         ComponentDebug,
	"swank:debug-clear-all-breaks":    ComponentDebug,
	"swank:debug-continue":            ComponentDebug,
	"swank:debug-step":                ComponentDebug,
	"swank:debug-step-out":            ComponentDebug,
	"swank:debug-backtrace":           ComponentDebug,
	"swank:debug-value":               ComponentDebug,
	"swank:debug-to-string":           ComponentDebug,
	"swank:debug-set-value":           ComponentDebug,
}

// Route returns the component owning form's operation, given its leading
// symbol (e.g. "swank:completions").
func Route(formHead string) (Component, bool) {
	c, ok := formTable[formHead]
	return c, ok
}

// ResultToWire converts an index.Result to its wire-level tagged-list
// representation: (:name n :local-name l :decl-as d [:owner o] [:pos (:file f :offset o)]).
func ResultToWire(r index.Result) wire.List {
	l := wire.List{
		wire.Keyword("name"), r.Name,
		wire.Keyword("local-name"), r.LocalName,
		wire.Keyword("decl-as"), string(r.DeclaredAs),
	}
	if r.Owner != "" {
		l = append(l, wire.Keyword("owner"), r.Owner)
	}
	if r.Pos != nil {
		l = append(l, wire.Keyword("pos"), wire.List{
			wire.Keyword("file"), r.Pos.File,
			wire.Keyword("offset"), int64(r.Pos.Offset),
		})
	}
	return l
}

// ResultsToWire converts a slice of results to a wire list of wire lists.
func ResultsToWire(rs []index.Result) wire.List {
	out := make(wire.List, len(rs))
	for i, r := range rs {
		out[i] = ResultToWire(r)
	}
	return out
}

// SourcePositionToWire converts a debug.SourcePosition to (:file f :line l).
func SourcePositionToWire(p debug.SourcePosition) wire.List {
	return wire.List{wire.Keyword("file"), p.File, wire.Keyword("line"), int64(p.Line)}
}

// ControllerEventToWire converts a translated debug event to its event-tag
// wire form, one of DebugVMStart/DebugVMDisconnect/DebugBreak/DebugStep/
// DebugException.
func ControllerEventToWire(evt debug.ControllerEvent) wire.List {
	switch evt.Kind {
	case debug.DebugVMStart:
		return wire.Event("debug-vm-start")
	case debug.DebugVMDisconnect:
		return wire.Event("debug-vm-disconnect")
	case debug.DebugBreak:
		return wire.Event("debug-break", evt.ThreadID, evt.ThreadName, SourcePositionToWire(evt.Position))
	case debug.DebugStep:
		return wire.Event("debug-step", evt.ThreadID, evt.ThreadName, SourcePositionToWire(evt.Position))
	case debug.DebugException:
		payload := []interface{}{evt.ExceptionObjectID, evt.ThreadID, evt.ThreadName}
		if evt.HasCatchLocation {
			payload = append(payload, SourcePositionToWire(evt.Position))
		} else {
			payload = append(payload, nil)
		}
		return wire.Event("debug-exception", payload...)
	default:
		return wire.Event("debug-unknown")
	}
}

// FrameToWire converts a debug.Frame to its backtrace wire representation.
func FrameToWire(f debug.Frame) wire.List {
	locals := make(wire.List, len(f.Locals))
	for i, l := range f.Locals {
		locals[i] = wire.List{
			wire.Keyword("offset"), int64(l.Offset),
			wire.Keyword("name"), l.Name,
			wire.Keyword("type-name"), l.TypeName,
			wire.Keyword("summary"), l.ValueSummary,
		}
	}
	return wire.List{
		wire.Keyword("index"), int64(f.Index),
		wire.Keyword("locals"), locals,
		wire.Keyword("num-args"), int64(f.NumArgs),
		wire.Keyword("class-name"), f.ClassName,
		wire.Keyword("method-name"), f.MethodName,
		wire.Keyword("pc"), SourcePositionToWire(f.PCPosition),
		wire.Keyword("this-object-id"), int64(f.ThisObjectID),
	}
}

// ValueToWire converts a debug.Value to its wire representation: a tagged
// list carrying the rendered summary, the pinned object id, and the type
// name, so clients that only want a display string never need to derive it.
func ValueToWire(v debug.Value) wire.List {
	return wire.List{
		wire.Keyword("summary"), debug.ValueSummary(v),
		wire.Keyword("object-id"), int64(v.ObjectID),
		wire.Keyword("type-name"), v.TypeName,
	}
}

// ImportSuggestionsToWire converts the per-type-name suggestion map returned
// by Indexer.ImportSuggestions to a wire list of (:type-name name :suggestions (...))
// entries, one per requested type name, preserving typeNames order.
func ImportSuggestionsToWire(typeNames []string, suggestions map[string][]index.Result) wire.List {
	out := make(wire.List, len(typeNames))
	for i, name := range typeNames {
		out[i] = wire.List{
			wire.Keyword("type-name"), name,
			wire.Keyword("suggestions"), ResultsToWire(suggestions[name]),
		}
	}
	return out
}

// ExceptionKindFor picks the component's "exception" error kind: any
// unhandled error from an RPC handler is reported under its owning
// component's exception kind rather than a generic one.
func ExceptionKindFor(component Component) wire.ErrorKind {
	switch component {
	case ComponentAnalyzer:
		return wire.ErrAnalyzerException
	case ComponentIndexer:
		return wire.ErrIndexerException
	case ComponentDebug:
		return wire.ErrDebuggerException
	default:
		return wire.ErrMisc
	}
}
