// Package analyzer implements the façade actor in front of the
// presentation compiler and java compiler external collaborators. It
// enforces the startup readiness gate, runs the initial compile in the
// background, and forwards index-backed requests to the indexer.
package analyzer

// SourceRange is a half-open range within a single file.
type SourceRange struct {
	File  string
	Start int
	End   int
}

// Edit is one of InsertEdit, DeleteEdit, ReplaceEdit, applied as if to the
// original source text.
type Edit interface{ isEdit() }

type InsertEdit struct {
	Offset int
	Text   string
}

type DeleteEdit struct{ From, To int }

type ReplaceEdit struct {
	From, To int
	Text     string
}

func (InsertEdit) isEdit()  {}
func (DeleteEdit) isEdit()  {}
func (ReplaceEdit) isEdit() {}

// Completion is a single proposed completion.
type Completion struct {
	Name       string
	TypeSig    string
	IsCallable bool
	ToInsert   string
}

// CompletionList is the result of Completions.
type CompletionList struct {
	Prefix      string
	Completions []Completion
}

// TypeInfo is a minimal description of a resolved type, enough to satisfy
// InspectType/TypeAt/TypeById/TypeByName family requests.
type TypeInfo struct {
	Name       string
	FullName   string
	DeclaredAs string
	Pos        *SourceRange
	Members    []string
}

// SymbolInfo describes the symbol at a point.
type SymbolInfo struct {
	Name     string
	TypeName string
	Pos      *SourceRange
	IsLocal  bool
}

// PackageInfo describes a package inspected by path.
type PackageInfo struct {
	Name     string
	FullName string
	Members  []string
}

// CallCompletionInfo is the resolved candidate set for a call-completion id.
type CallCompletionInfo struct {
	ID        int64
	TypeInfo  *TypeInfo
	ParamSets [][]string
}

// Designation tags a source range with a symbol kind, for editor
// highlighting.
type Designation struct {
	Kind  string
	Start int
	End   int
}
