package protocol

import (
	"testing"

	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/index"
	"github.com/adamchandra/ensime/internal/wire"
)

func TestRoute(t *testing.T) {
	c, ok := Route("swank:completions")
	if !ok || c != ComponentAnalyzer {
		t.Fatalf("Route(completions) = (%v, %v), want (analyzer, true)", c, ok)
	}
	c, ok = Route("swank:import-suggestions")
	if !ok || c != ComponentIndexer {
		t.Fatalf("Route(import-suggestions) = (%v, %v), want (indexer, true)", c, ok)
	}
	if _, ok := Route("swank:not-a-real-form"); ok {
		t.Fatal("Route() matched an unregistered form")
	}
}

func TestResultToWireIncludesOwnerOnlyForMethods(t *testing.T) {
	typ := index.Result{Name: "com.example.Foo", LocalName: "Foo", DeclaredAs: index.DeclaredClass}
	l := ResultToWire(typ)
	if kw, _ := wire.KeywordMap(l)["owner"]; kw != nil {
		t.Errorf("type result carried :owner in wire form: %v", l)
	}

	method := index.Result{Name: "com.example.Foo.bar", LocalName: "bar", DeclaredAs: index.DeclaredMethod, Owner: "com.example.Foo"}
	l = ResultToWire(method)
	m := wire.KeywordMap(l)
	if m["owner"] != "com.example.Foo" {
		t.Errorf("method result :owner = %v, want com.example.Foo", m["owner"])
	}
}

func TestControllerEventToWireTags(t *testing.T) {
	evt := debug.ControllerEvent{Kind: debug.DebugBreak, ThreadID: 1, ThreadName: "main", Position: debug.SourcePosition{File: "Foo.scala", Line: 10}}
	l := ControllerEventToWire(evt)
	if len(l) == 0 || l[0] != wire.Keyword("debug-break") {
		t.Fatalf("ControllerEventToWire(DebugBreak)[0] = %v, want debug-break", l[0])
	}
}
