// Package index implements the disk-persisted symbol index: tokenization,
// the re-index decision, the classfile writer pipeline, and keyword/fuzzy
// /prefix/import-suggestion queries over it.
package index

// DeclaredAs is the kind of declaration a Result names.
type DeclaredAs string

const (
	DeclaredClass  DeclaredAs = "class"
	DeclaredTrait  DeclaredAs = "trait"
	DeclaredObject DeclaredAs = "object"
	DeclaredMethod DeclaredAs = "method"
)

// DocType discriminates the two persisted document shapes.
type DocType string

const (
	DocTypeType   DocType = "type"
	DocTypeMethod DocType = "method"
)

// Position is an optional source location.
type Position struct {
	File   string
	Offset int
}

// Result is a tagged symbol-search-result variant: a type or a method.
// For a type, Owner is empty. For a method, Owner names the declaring type.
type Result struct {
	Name       string
	LocalName  string
	DeclaredAs DeclaredAs
	Pos        *Position
	Owner      string // methods only
}

// DocType returns the persisted discriminator for r.
func (r Result) DocType() DocType {
	if r.DeclaredAs == DeclaredMethod {
		return DocTypeMethod
	}
	return DocTypeType
}

// Valid reports whether r satisfies the data-model invariants: localName is
// a suffix of name, pos.offset >= 0 when present, and methods (but not
// types) carry an owner.
func (r Result) Valid() bool {
	if r.Pos != nil && r.Pos.Offset < 0 {
		return false
	}
	if !hasSuffixSegment(r.Name, r.LocalName) {
		return false
	}
	if r.DeclaredAs == DeclaredMethod {
		return r.Owner != ""
	}
	return r.Owner == ""
}

// hasSuffixSegment reports whether local is the trailing dot-delimited
// segment of name (name == local, or name ends in "."+local).
func hasSuffixSegment(name, local string) bool {
	if name == local {
		return true
	}
	if len(name) <= len(local) {
		return false
	}
	idx := len(name) - len(local)
	return name[idx-1] == '.' && name[idx:] == local
}
