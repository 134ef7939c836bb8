package index

import "strings"

// validType reports whether name is an acceptable type symbol: a "$" may
// appear either not at all or only as the final character. This excludes
// synthetic inner/companion classes while keeping terminal-$ object markers.
func validType(name string) bool {
	idx := strings.IndexByte(name, '$')
	if idx < 0 {
		return true
	}
	return idx == len(name)-1
}

// validMethod reports whether name is an acceptable method symbol: no "$",
// and neither a constructor nor an implicit outer-reference accessor.
func validMethod(name string) bool {
	if strings.Contains(name, "$") {
		return false
	}
	return name != "<init>" && name != "this"
}

// declaredAsFor infers class/trait/object from access flags and naming
// convention, mirroring how the Scala compiler lowers these constructs to
// class files: an interface bit means trait, a trailing "$" on an otherwise
// valid type name means a module/companion object, anything else is a class.
func declaredAsFor(name string, isInterface bool) DeclaredAs {
	if isInterface {
		return DeclaredTrait
	}
	if strings.HasSuffix(name, "$") {
		return DeclaredObject
	}
	return DeclaredClass
}
