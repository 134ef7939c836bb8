package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/adamchandra/ensime/internal/index"
)

func newTestIndexer(t *testing.T) *index.Indexer {
	t.Helper()
	ix := index.NewIndexer(t.TempDir())
	if err := ix.Initialize(nil, nil, nil, map[string]string{}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func waitReady(t *testing.T, a *Analyzer) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.Ready() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("analyzer never became ready")
}

func TestReadinessGateRejectsUntilFullTypeCheckCompletes(t *testing.T) {
	pc := &fakePresentationCompiler{}
	jc := &fakeJavaCompiler{}
	a := New(pc, jc, newTestIndexer(t))

	if _, err := a.Completions("Foo.scala", 0, 10, false, false); err != ErrNotReady {
		t.Fatalf("Completions() before ready = %v, want ErrNotReady", err)
	}

	var events []EventKind
	a.Subscribe(func(e Event) { events = append(events, e.Kind) })
	a.Start(context.Background())
	waitReady(t, a)

	if len(events) != 2 || events[0] != FullTypeCheckCompleteEvent || events[1] != AnalyzerReadyEvent {
		t.Fatalf("events = %v, want [FullTypeCheckCompleteEvent AnalyzerReadyEvent]", events)
	}

	if _, err := a.Completions("Foo.scala", 0, 10, false, false); err != nil {
		t.Fatalf("Completions() after ready error = %v", err)
	}
}

func TestReloadAllRunsFullTypeCheckForConcurrentCallers(t *testing.T) {
	pc := &fakePresentationCompiler{}
	a := New(pc, &fakeJavaCompiler{}, newTestIndexer(t))
	a.Start(context.Background())
	waitReady(t, a)

	before := pc.fullTypeChecks
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		go func() {
			a.ReloadAll(context.Background())
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	// singleflight collapses truly concurrent callers into one underlying
	// call; this assertion only checks it ran at all, since goroutine
	// scheduling may serialize the calls instead of overlapping them.
	if pc.fullTypeChecks <= before {
		t.Fatalf("fullTypeChecks = %d, want > %d", pc.fullTypeChecks, before)
	}
}

func TestReloadFilesRoutesJavaAndOtherSeparately(t *testing.T) {
	pc := &fakePresentationCompiler{}
	jc := &fakeJavaCompiler{}
	a := New(pc, jc, newTestIndexer(t))
	a.Start(context.Background())
	waitReady(t, a)

	if _, err := a.ReloadFiles([]string{"Foo.java", "Bar.scala"}); err != nil {
		t.Fatalf("ReloadFiles() error = %v", err)
	}
	if len(jc.reloadedFiles) != 1 || jc.reloadedFiles[0] != "Foo.java" {
		t.Errorf("java compiler reloaded = %v, want [Foo.java]", jc.reloadedFiles)
	}
	if len(pc.reloadedFiles) != 1 || pc.reloadedFiles[0] != "Bar.scala" {
		t.Errorf("presentation compiler reloaded = %v, want [Bar.scala]", pc.reloadedFiles)
	}
}

func TestSymbolDesignationsEmptyForNonTargetLanguage(t *testing.T) {
	pc := &fakePresentationCompiler{}
	a := New(pc, &fakeJavaCompiler{}, newTestIndexer(t))
	a.Start(context.Background())
	waitReady(t, a)

	ds, err := a.SymbolDesignationsInRegion("Foo.java", 0, 10, nil)
	if err != nil {
		t.Fatalf("SymbolDesignationsInRegion() error = %v", err)
	}
	if len(ds) != 0 {
		t.Errorf("designations for .java file = %v, want empty", ds)
	}
}

func TestImportSuggestionsAndPublicSymbolSearchForwardToIndexer(t *testing.T) {
	idx := newTestIndexer(t)
	idx.Insert(index.Result{Name: "java.util.List", LocalName: "List", DeclaredAs: index.DeclaredClass})
	idx.Commit()

	a := New(&fakePresentationCompiler{}, &fakeJavaCompiler{}, idx)
	a.Start(context.Background())
	waitReady(t, a)

	results, err := a.PublicSymbolSearch([]string{"List"}, 10, true)
	if err != nil {
		t.Fatalf("PublicSymbolSearch() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("PublicSymbolSearch() returned no results")
	}

	suggestions, err := a.ImportSuggestions([]string{"List"}, 10)
	if err != nil {
		t.Fatalf("ImportSuggestions() error = %v", err)
	}
	if len(suggestions["List"]) == 0 {
		t.Fatal("ImportSuggestions()[List] is empty")
	}
}
