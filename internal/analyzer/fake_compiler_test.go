package analyzer

import "context"

// fakePresentationCompiler is a minimal in-memory PresentationCompiler,
// analogous in spirit to the debug package's fakeVM: just enough behavior
// to exercise the analyzer's readiness gate and dispatch shape.
type fakePresentationCompiler struct {
	fullTypeChecks  int
	removedFiles    []string
	reloadedFiles   []string
	patchedFiles    []string
	completionsResp CompletionList
	failFullCheck   bool
}

func (f *fakePresentationCompiler) FullTypeCheck(ctx context.Context) error {
	f.fullTypeChecks++
	if f.failFullCheck {
		return context.Canceled
	}
	return nil
}

func (f *fakePresentationCompiler) RemoveFile(file string) error {
	f.removedFiles = append(f.removedFiles, file)
	return nil
}

func (f *fakePresentationCompiler) ReloadFiles(files []string) error {
	f.reloadedFiles = append(f.reloadedFiles, files...)
	return nil
}

func (f *fakePresentationCompiler) PatchSource(file string, edits []Edit) error {
	f.patchedFiles = append(f.patchedFiles, file)
	return nil
}

func (f *fakePresentationCompiler) Completions(file string, point, maxResults int, caseSens, reload bool) (CompletionList, error) {
	return f.completionsResp, nil
}

func (f *fakePresentationCompiler) UsesOfSymAtPoint(file string, point int) ([]SourceRange, error) {
	return []SourceRange{{File: file, Start: point, End: point + 1}}, nil
}

func (f *fakePresentationCompiler) PackageMemberCompletion(path, prefix string) ([]string, error) {
	return []string{prefix + "Member"}, nil
}

func (f *fakePresentationCompiler) InspectTypeAtPoint(file string, point int) (*TypeInfo, error) {
	return &TypeInfo{Name: "Foo"}, nil
}

func (f *fakePresentationCompiler) InspectTypeByID(id int64) (*TypeInfo, error) {
	return &TypeInfo{Name: "Foo"}, nil
}

func (f *fakePresentationCompiler) SymbolAtPoint(file string, point int) (*SymbolInfo, error) {
	return &SymbolInfo{Name: "foo"}, nil
}

func (f *fakePresentationCompiler) InspectPackageByPath(path string) (*PackageInfo, error) {
	return &PackageInfo{Name: path}, nil
}

func (f *fakePresentationCompiler) TypeAtPoint(file string, point int) (*TypeInfo, error) {
	return &TypeInfo{Name: "Foo"}, nil
}

func (f *fakePresentationCompiler) TypeByID(id int64) (*TypeInfo, error) {
	return &TypeInfo{Name: "Foo"}, nil
}

func (f *fakePresentationCompiler) TypeByName(name string) (*TypeInfo, error) {
	return &TypeInfo{Name: name}, nil
}

func (f *fakePresentationCompiler) TypeByNameAtPoint(name, file string, point int) (*TypeInfo, error) {
	return &TypeInfo{Name: name}, nil
}

func (f *fakePresentationCompiler) CallCompletion(id int64) (*CallCompletionInfo, error) {
	return &CallCompletionInfo{ID: id}, nil
}

func (f *fakePresentationCompiler) SymbolDesignationsInRegion(file string, start, end int, kinds []string) ([]Designation, error) {
	return []Designation{{Kind: "symbol", Start: start, End: end}}, nil
}

type fakeJavaCompiler struct {
	reloadedFiles []string
}

func (f *fakeJavaCompiler) ReloadFiles(files []string) error {
	f.reloadedFiles = append(f.reloadedFiles, files...)
	return nil
}
