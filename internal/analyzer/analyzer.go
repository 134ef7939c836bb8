package analyzer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/adamchandra/ensime/internal/index"
)

// Event is a published analyzer lifecycle event.
type Event struct {
	Kind EventKind
}

type EventKind int

const (
	FullTypeCheckCompleteEvent EventKind = iota
	AnalyzerReadyEvent
)

// ErrNotReady is returned by every request method until the initial full
// type-check has completed.
var ErrNotReady = fmt.Errorf("analyzer: not ready")

// Analyzer is the façade actor in front of the presentation compiler and
// java compiler. It enforces the startup readiness gate and forwards
// ImportSuggestions/PublicSymbolSearch to the indexer verbatim.
type Analyzer struct {
	pc  PresentationCompiler
	jc  JavaCompiler
	idx *index.Indexer

	ready       atomic.Bool
	reloadGroup singleflight.Group

	mu          sync.Mutex
	subscribers []func(Event)
}

// New creates an Analyzer. Call Start to kick off the initial compile.
func New(pc PresentationCompiler, jc JavaCompiler, idx *index.Indexer) *Analyzer {
	return &Analyzer{pc: pc, jc: jc, idx: idx}
}

// Subscribe registers fn to receive every published Event.
func (a *Analyzer) Subscribe(fn func(Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

func (a *Analyzer) publish(evt Event) {
	a.mu.Lock()
	subs := append([]func(Event){}, a.subscribers...)
	a.mu.Unlock()
	for _, fn := range subs {
		fn(evt)
	}
}

// Start kicks off the initial full type-check on a background goroutine.
// On completion it flips the readiness gate, emits FullTypeCheckCompleteEvent
// then AnalyzerReadyEvent, and commits the indexer.
func (a *Analyzer) Start(ctx context.Context) {
	go func() {
		if err := a.pc.FullTypeCheck(ctx); err != nil {
			log.Printf("analyzer: initial full type check failed: %v", err)
		}
		a.publish(Event{Kind: FullTypeCheckCompleteEvent})
		a.ready.Store(true)
		a.publish(Event{Kind: AnalyzerReadyEvent})
		if err := a.idx.Commit(); err != nil {
			log.Printf("analyzer: post-ready indexer commit: %v", err)
		}
	}()
}

// Ready reports whether the initial full type-check has completed.
func (a *Analyzer) Ready() bool { return a.ready.Load() }

func (a *Analyzer) checkReady() error {
	if !a.ready.Load() {
		return ErrNotReady
	}
	return nil
}

func (a *Analyzer) RemoveFile(file string) (bool, error) {
	if err := a.checkReady(); err != nil {
		return false, err
	}
	if err := a.pc.RemoveFile(file); err != nil {
		return false, err
	}
	return true, nil
}

// ReloadAll re-kicks a full reload, deduplicating concurrent callers via
// singleflight so N simultaneous ReloadAll RPCs trigger exactly one
// underlying compile.
func (a *Analyzer) ReloadAll(ctx context.Context) (bool, error) {
	if err := a.checkReady(); err != nil {
		return false, err
	}
	_, err, _ := a.reloadGroup.Do("reload-all", func() (interface{}, error) {
		return nil, a.pc.FullTypeCheck(ctx)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReloadFiles routes java files to the java compiler and everything else
// to the presentation compiler.
func (a *Analyzer) ReloadFiles(files []string) (bool, error) {
	if err := a.checkReady(); err != nil {
		return false, err
	}
	var javaFiles, otherFiles []string
	for _, f := range files {
		if IsJavaSource(f) {
			javaFiles = append(javaFiles, f)
		} else {
			otherFiles = append(otherFiles, f)
		}
	}
	if len(javaFiles) > 0 {
		if err := a.jc.ReloadFiles(javaFiles); err != nil {
			return false, err
		}
	}
	if len(otherFiles) > 0 {
		if err := a.pc.ReloadFiles(otherFiles); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (a *Analyzer) PatchSource(file string, edits []Edit) (bool, error) {
	if err := a.checkReady(); err != nil {
		return false, err
	}
	if err := a.pc.PatchSource(file, edits); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Analyzer) Completions(file string, point, maxResults int, caseSens, reload bool) (CompletionList, error) {
	if err := a.checkReady(); err != nil {
		return CompletionList{}, err
	}
	return a.pc.Completions(file, point, maxResults, caseSens, reload)
}

func (a *Analyzer) UsesOfSymAtPoint(file string, point int) ([]SourceRange, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.UsesOfSymAtPoint(file, point)
}

func (a *Analyzer) PackageMemberCompletion(path, prefix string) ([]string, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.PackageMemberCompletion(path, prefix)
}

func (a *Analyzer) InspectTypeAtPoint(file string, point int) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.InspectTypeAtPoint(file, point)
}

func (a *Analyzer) InspectTypeByID(id int64) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.InspectTypeByID(id)
}

func (a *Analyzer) SymbolAtPoint(file string, point int) (*SymbolInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.SymbolAtPoint(file, point)
}

func (a *Analyzer) InspectPackageByPath(path string) (*PackageInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.InspectPackageByPath(path)
}

func (a *Analyzer) TypeAtPoint(file string, point int) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.TypeAtPoint(file, point)
}

func (a *Analyzer) TypeByID(id int64) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.TypeByID(id)
}

func (a *Analyzer) TypeByName(name string) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.TypeByName(name)
}

func (a *Analyzer) TypeByNameAtPoint(name, file string, point int) (*TypeInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.TypeByNameAtPoint(name, file, point)
}

func (a *Analyzer) CallCompletion(id int64) (*CallCompletionInfo, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.pc.CallCompletion(id)
}

// SymbolDesignationsInRegion returns an empty designation list, rather than
// an error, when file is not of the target language.
func (a *Analyzer) SymbolDesignationsInRegion(file string, start, end int, kinds []string) ([]Designation, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	if IsJavaSource(file) {
		return nil, nil
	}
	return a.pc.SymbolDesignationsInRegion(file, start, end, kinds)
}

// ImportSuggestions forwards verbatim to the indexer.
func (a *Analyzer) ImportSuggestions(typeNames []string, limit int) (map[string][]index.Result, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.idx.ImportSuggestions(typeNames, limit)
}

// PublicSymbolSearch forwards verbatim to the indexer.
func (a *Analyzer) PublicSymbolSearch(keywords []string, limit int, typesOnly bool) ([]index.Result, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	return a.idx.KeywordSearch(keywords, limit, typesOnly, true)
}
