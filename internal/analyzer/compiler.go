package analyzer

import "context"

// PresentationCompiler is the external collaborator that owns the actual
// incremental type-checking state. The analyzer actor never implements
// type-checking itself, it is a façade that enforces the readiness gate
// and routes requests to this collaborator.
type PresentationCompiler interface {
	FullTypeCheck(ctx context.Context) error
	RemoveFile(file string) error
	ReloadFiles(files []string) error
	PatchSource(file string, edits []Edit) error
	Completions(file string, point, maxResults int, caseSens, reload bool) (CompletionList, error)
	UsesOfSymAtPoint(file string, point int) ([]SourceRange, error)
	PackageMemberCompletion(path, prefix string) ([]string, error)
	InspectTypeAtPoint(file string, point int) (*TypeInfo, error)
	InspectTypeByID(id int64) (*TypeInfo, error)
	SymbolAtPoint(file string, point int) (*SymbolInfo, error)
	InspectPackageByPath(path string) (*PackageInfo, error)
	TypeAtPoint(file string, point int) (*TypeInfo, error)
	TypeByID(id int64) (*TypeInfo, error)
	TypeByName(name string) (*TypeInfo, error)
	TypeByNameAtPoint(name, file string, point int) (*TypeInfo, error)
	CallCompletion(id int64) (*CallCompletionInfo, error)
	SymbolDesignationsInRegion(file string, start, end int, kinds []string) ([]Designation, error)
}

// JavaCompiler is the external collaborator java source files are routed
// to, kept separate from the presentation compiler.
type JavaCompiler interface {
	ReloadFiles(files []string) error
}

// IsJavaSource reports whether file should be routed to the java compiler
// rather than the presentation compiler.
func IsJavaSource(file string) bool {
	return len(file) > len(".java") && file[len(file)-len(".java"):] == ".java"
}
