// Package simulated provides an in-process stand-in for the presentation
// compiler and java compiler external collaborators, so ensimed can boot
// and answer RPCs without an actual Scala presentation compiler or javac
// instance attached. It never type-checks anything: FullTypeCheck returns
// immediately, and every lookup reports "not found" rather than blocking
// forever waiting on a real compiler backend.
package simulated

import (
	"context"
	"fmt"

	"github.com/adamchandra/ensime/internal/analyzer"
)

// PresentationCompiler is a no-op analyzer.PresentationCompiler: it never
// finds anything. List-valued requests return empty results and
// single-item lookups return a "no ... " error, which is enough to let the
// analyzer's readiness gate flip and every RPC answer instead of blocking
// or panicking.
type PresentationCompiler struct{}

func (PresentationCompiler) FullTypeCheck(ctx context.Context) error { return nil }
func (PresentationCompiler) RemoveFile(file string) error            { return nil }
func (PresentationCompiler) ReloadFiles(files []string) error        { return nil }
func (PresentationCompiler) PatchSource(file string, edits []analyzer.Edit) error {
	return nil
}

func (PresentationCompiler) Completions(file string, point, maxResults int, caseSens, reload bool) (analyzer.CompletionList, error) {
	return analyzer.CompletionList{}, nil
}

func (PresentationCompiler) UsesOfSymAtPoint(file string, point int) ([]analyzer.SourceRange, error) {
	return nil, nil
}

func (PresentationCompiler) PackageMemberCompletion(path, prefix string) ([]string, error) {
	return nil, nil
}

func (PresentationCompiler) InspectTypeAtPoint(file string, point int) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type at %s:%d", file, point)
}

func (PresentationCompiler) InspectTypeByID(id int64) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type with id %d", id)
}

func (PresentationCompiler) SymbolAtPoint(file string, point int) (*analyzer.SymbolInfo, error) {
	return nil, fmt.Errorf("simulated: no symbol at %s:%d", file, point)
}

func (PresentationCompiler) InspectPackageByPath(path string) (*analyzer.PackageInfo, error) {
	return nil, fmt.Errorf("simulated: no package %q", path)
}

func (PresentationCompiler) TypeAtPoint(file string, point int) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type at %s:%d", file, point)
}

func (PresentationCompiler) TypeByID(id int64) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type with id %d", id)
}

func (PresentationCompiler) TypeByName(name string) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type named %q", name)
}

func (PresentationCompiler) TypeByNameAtPoint(name, file string, point int) (*analyzer.TypeInfo, error) {
	return nil, fmt.Errorf("simulated: no type named %q", name)
}

func (PresentationCompiler) CallCompletion(id int64) (*analyzer.CallCompletionInfo, error) {
	return nil, fmt.Errorf("simulated: no call completion with id %d", id)
}

func (PresentationCompiler) SymbolDesignationsInRegion(file string, start, end int, kinds []string) ([]analyzer.Designation, error) {
	return nil, nil
}

// JavaCompiler is a no-op analyzer.JavaCompiler.
type JavaCompiler struct{}

func (JavaCompiler) ReloadFiles(files []string) error { return nil }
