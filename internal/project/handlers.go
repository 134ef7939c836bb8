package project

import (
	"context"
	"log"
	"time"

	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/protocol"
	"github.com/adamchandra/ensime/internal/registry"
	"github.com/adamchandra/ensime/internal/wire"
)

// buildHandlers wires one handlerFunc per entry in protocol's form
// dispatch table. Argument positions follow each request's declared field
// order; form[0] is always the leading form symbol.
func (r *Router) buildHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"swank:remove-file":               r.handleRemoveFile,
		"swank:reload-all":                r.handleReloadAll,
		"swank:reload-files":              r.handleReloadFiles,
		"swank:patch-source":              r.handlePatchSource,
		"swank:completions":               r.handleCompletions,
		"swank:uses-of-symbol-at-point":   r.handleUsesOfSymAtPoint,
		"swank:package-member-completion": r.handlePackageMemberCompletion,
		"swank:inspect-type-at-point":     r.handleInspectTypeAtPoint,
		"swank:inspect-type-by-id":        r.handleInspectTypeByID,
		"swank:symbol-at-point":           r.handleSymbolAtPoint,
		"swank:inspect-package-by-path":   r.handleInspectPackageByPath,
		"swank:type-at-point":             r.handleTypeAtPoint,
		"swank:type-by-id":                r.handleTypeByID,
		"swank:type-by-name":              r.handleTypeByName,
		"swank:type-by-name-at-point":     r.handleTypeByNameAtPoint,
		"swank:call-completion":           r.handleCallCompletion,
		"swank:symbol-designations":       r.handleSymbolDesignations,
		"swank:import-suggestions":        r.handleImportSuggestions,
		"swank:public-symbol-search":      r.handlePublicSymbolSearch,
		"swank:init-project":              r.handleInitProject,
		"swank:debug-start":               r.handleDebugStart,
		"swank:debug-attach":              r.handleDebugAttach,
		"swank:debug-set-break":           r.handleDebugSetBreak,
		"swank:debug-clear-break":         r.handleDebugClearBreak,
		"swank:debug-clear-all-breaks":    r.handleDebugClearAllBreaks,
		"swank:debug-continue":            r.handleDebugContinue,
		"swank:debug-step":                r.handleDebugStep,
		"swank:debug-step-out":            r.handleDebugStepOut,
		"swank:debug-backtrace":           r.handleDebugBacktrace,
		"swank:debug-value":               r.handleDebugValue,
		"swank:debug-to-string":           r.handleDebugToString,
		"swank:debug-set-value":           r.handleDebugSetValue,
	}
}

func truthy(v interface{}) bool {
	_, ok := v.(wire.T)
	return ok
}

func strArg(form wire.List, i int) string {
	s, _ := form.Str(i)
	return s
}

func intArg(form wire.List, i int) int64 {
	n, _ := form.Int(i)
	return n
}

func stringsArg(form wire.List, i int) []string {
	l, ok := form.Get(i).(wire.List)
	if !ok {
		return nil
	}
	out := make([]string, len(l))
	for j, v := range l {
		s, _ := v.(string)
		out[j] = s
	}
	return out
}

// --- analyzer forms ---

func (r *Router) handleRemoveFile(form wire.List) (interface{}, error) {
	ok, err := r.analyzer.RemoveFile(strArg(form, 1))
	return ok, err
}

func (r *Router) handleReloadAll(form wire.List) (interface{}, error) {
	ok, err := r.analyzer.ReloadAll(backgroundContext())
	return ok, err
}

func (r *Router) handleReloadFiles(form wire.List) (interface{}, error) {
	ok, err := r.analyzer.ReloadFiles(stringsArg(form, 1))
	return ok, err
}

func (r *Router) handlePatchSource(form wire.List) (interface{}, error) {
	editList, _ := form.Get(2).(wire.List)
	edits, err := protocol.EditsFromWire(editList)
	if err != nil {
		return nil, err
	}
	ok, err := r.analyzer.PatchSource(strArg(form, 1), edits)
	return ok, err
}

func (r *Router) handleCompletions(form wire.List) (interface{}, error) {
	cl, err := r.analyzer.Completions(strArg(form, 1), int(intArg(form, 2)), int(intArg(form, 3)), truthy(form.Get(4)), truthy(form.Get(5)))
	if err != nil {
		return nil, err
	}
	return protocol.CompletionListToWire(cl), nil
}

func (r *Router) handleUsesOfSymAtPoint(form wire.List) (interface{}, error) {
	ranges, err := r.analyzer.UsesOfSymAtPoint(strArg(form, 1), int(intArg(form, 2)))
	if err != nil {
		return nil, err
	}
	return protocol.SourceRangesToWire(ranges), nil
}

func (r *Router) handlePackageMemberCompletion(form wire.List) (interface{}, error) {
	members, err := r.analyzer.PackageMemberCompletion(strArg(form, 1), strArg(form, 2))
	if err != nil {
		return nil, err
	}
	return protocol.StringsToWire(members), nil
}

func (r *Router) handleInspectTypeAtPoint(form wire.List) (interface{}, error) {
	info, err := r.analyzer.InspectTypeAtPoint(strArg(form, 1), int(intArg(form, 2)))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleInspectTypeByID(form wire.List) (interface{}, error) {
	info, err := r.analyzer.InspectTypeByID(intArg(form, 1))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleSymbolAtPoint(form wire.List) (interface{}, error) {
	info, err := r.analyzer.SymbolAtPoint(strArg(form, 1), int(intArg(form, 2)))
	if err != nil {
		return nil, err
	}
	return protocol.SymbolInfoToWire(info), nil
}

func (r *Router) handleInspectPackageByPath(form wire.List) (interface{}, error) {
	info, err := r.analyzer.InspectPackageByPath(strArg(form, 1))
	if err != nil {
		return nil, err
	}
	return protocol.PackageInfoToWire(info), nil
}

func (r *Router) handleTypeAtPoint(form wire.List) (interface{}, error) {
	info, err := r.analyzer.TypeAtPoint(strArg(form, 1), int(intArg(form, 2)))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleTypeByID(form wire.List) (interface{}, error) {
	info, err := r.analyzer.TypeByID(intArg(form, 1))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleTypeByName(form wire.List) (interface{}, error) {
	info, err := r.analyzer.TypeByName(strArg(form, 1))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleTypeByNameAtPoint(form wire.List) (interface{}, error) {
	info, err := r.analyzer.TypeByNameAtPoint(strArg(form, 1), strArg(form, 2), int(intArg(form, 3)))
	if err != nil {
		return nil, err
	}
	return protocol.TypeInfoToWire(info), nil
}

func (r *Router) handleCallCompletion(form wire.List) (interface{}, error) {
	info, err := r.analyzer.CallCompletion(intArg(form, 1))
	if err != nil {
		return nil, err
	}
	return protocol.CallCompletionInfoToWire(info), nil
}

func (r *Router) handleSymbolDesignations(form wire.List) (interface{}, error) {
	ds, err := r.analyzer.SymbolDesignationsInRegion(strArg(form, 1), int(intArg(form, 2)), int(intArg(form, 3)), stringsArg(form, 4))
	if err != nil {
		return nil, err
	}
	return protocol.DesignationsToWire(ds), nil
}

// --- indexer forms ---

func (r *Router) handleImportSuggestions(form wire.List) (interface{}, error) {
	typeNames := stringsArg(form, 1)
	suggestions, err := r.analyzer.ImportSuggestions(typeNames, int(intArg(form, 2)))
	if err != nil {
		return nil, err
	}
	return protocol.ImportSuggestionsToWire(typeNames, suggestions), nil
}

func (r *Router) handlePublicSymbolSearch(form wire.List) (interface{}, error) {
	results, err := r.analyzer.PublicSymbolSearch(stringsArg(form, 1), int(intArg(form, 2)), truthy(form.Get(3)))
	if err != nil {
		return nil, err
	}
	return protocol.ResultsToWire(results), nil
}

// handleInitProject initializes the on-disk index for the given classpath
// and then kicks off the analyzer's background initial compile, so the
// client's first reload-all lands on an already-warm index.
func (r *Router) handleInitProject(form wire.List) (interface{}, error) {
	classpath := stringsArg(form, 1)
	if err := r.indexer.Initialize(classpath, nil, nil, map[string]string{}); err != nil {
		return nil, err
	}
	r.analyzer.Start(context.Background())
	return true, nil
}

// --- debug forms ---

func (r *Router) handleDebugStart(form wire.List) (interface{}, error) {
	return nil, r.debugCtl.Start(stringsArg(form, 1))
}

func (r *Router) handleDebugAttach(form wire.List) (interface{}, error) {
	return nil, r.debugCtl.Attach(strArg(form, 1), int(intArg(form, 2)))
}

func (r *Router) handleDebugSetBreak(form wire.List) (interface{}, error) {
	file, line := strArg(form, 1), int(intArg(form, 2))
	installed, pending, err := r.debugCtl.SetBreakpoint(file, line)
	if err != nil {
		return nil, err
	}
	if r.reg != nil {
		now := time.Now()
		if err := r.reg.SaveBreakpoint(&registry.Breakpoint{
			File: file, Line: line, Active: installed,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			log.Printf("project: persist breakpoint %s:%d: %v", file, line, err)
		}
	}
	return protocol.SetBreakpointResultToWire(installed, pending), nil
}

func (r *Router) handleDebugClearBreak(form wire.List) (interface{}, error) {
	file, line := strArg(form, 1), int(intArg(form, 2))
	err := r.debugCtl.ClearBreakpoint(file, line)
	if err != nil {
		return nil, err
	}
	if r.reg != nil {
		if err := r.reg.DeleteBreakpoint(file, line); err != nil {
			log.Printf("project: delete persisted breakpoint %s:%d: %v", file, line, err)
		}
	}
	return true, nil
}

func (r *Router) handleDebugClearAllBreaks(form wire.List) (interface{}, error) {
	err := r.debugCtl.ClearAllBreakpoints()
	if err != nil {
		return nil, err
	}
	if r.reg != nil {
		if err := r.reg.DeleteAllBreakpoints(); err != nil {
			log.Printf("project: delete all persisted breakpoints: %v", err)
		}
	}
	return true, nil
}

func (r *Router) handleDebugContinue(form wire.List) (interface{}, error) {
	return true, r.debugCtl.Continue()
}

func (r *Router) handleDebugStep(form wire.List) (interface{}, error) {
	return true, r.debugCtl.Step(intArg(form, 1), debug.StepInto)
}

func (r *Router) handleDebugStepOut(form wire.List) (interface{}, error) {
	return true, r.debugCtl.Step(intArg(form, 1), debug.StepOut)
}

func (r *Router) handleDebugBacktrace(form wire.List) (interface{}, error) {
	frames, err := r.debugCtl.Backtrace(intArg(form, 1), int(intArg(form, 2)), int(intArg(form, 3)))
	if err != nil {
		return nil, err
	}
	out := make(wire.List, len(frames))
	for i, f := range frames {
		out[i] = protocol.FrameToWire(f)
	}
	return out, nil
}

func (r *Router) handleDebugValue(form wire.List) (interface{}, error) {
	loc, err := protocol.ValueLocationFromWire(form.Get(1))
	if err != nil {
		return nil, err
	}
	v, err := r.debugCtl.DebugValue(loc)
	if err != nil {
		return nil, err
	}
	return protocol.ValueToWire(v), nil
}

func (r *Router) handleDebugToString(form wire.List) (interface{}, error) {
	loc, err := protocol.ValueLocationFromWire(form.Get(2))
	if err != nil {
		return nil, err
	}
	return r.debugCtl.ToStringValue(intArg(form, 1), loc)
}

func (r *Router) handleDebugSetValue(form wire.List) (interface{}, error) {
	loc, err := protocol.ValueLocationFromWire(form.Get(1))
	if err != nil {
		return nil, err
	}
	slot, ok := loc.(debug.StackSlot)
	if !ok {
		return nil, &wrongLocationKindError{}
	}
	return r.debugCtl.SetValue(slot, strArg(form, 2))
}

type wrongLocationKindError struct{}

func (e *wrongLocationKindError) Error() string {
	return "project: debug-set-value requires a stack-slot location"
}
