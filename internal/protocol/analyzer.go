package protocol

import (
	"github.com/adamchandra/ensime/internal/analyzer"
	"github.com/adamchandra/ensime/internal/wire"
)

// SourceRangeToWire converts an analyzer.SourceRange to (:file f :start s :end e).
func SourceRangeToWire(r analyzer.SourceRange) wire.List {
	return wire.List{
		wire.Keyword("file"), r.File,
		wire.Keyword("start"), int64(r.Start),
		wire.Keyword("end"), int64(r.End),
	}
}

// SourceRangesToWire converts a slice of ranges to a wire list of wire lists.
func SourceRangesToWire(rs []analyzer.SourceRange) wire.List {
	out := make(wire.List, len(rs))
	for i, r := range rs {
		out[i] = SourceRangeToWire(r)
	}
	return out
}

// CompletionToWire converts a single analyzer.Completion.
func CompletionToWire(c analyzer.Completion) wire.List {
	return wire.List{
		wire.Keyword("name"), c.Name,
		wire.Keyword("type-sig"), c.TypeSig,
		wire.Keyword("is-callable"), c.IsCallable,
		wire.Keyword("to-insert"), c.ToInsert,
	}
}

// CompletionListToWire converts an analyzer.CompletionList.
func CompletionListToWire(cl analyzer.CompletionList) wire.List {
	completions := make(wire.List, len(cl.Completions))
	for i, c := range cl.Completions {
		completions[i] = CompletionToWire(c)
	}
	return wire.List{
		wire.Keyword("prefix"), cl.Prefix,
		wire.Keyword("completions"), completions,
	}
}

// TypeInfoToWire converts a *analyzer.TypeInfo, or nil if info is nil.
func TypeInfoToWire(info *analyzer.TypeInfo) interface{} {
	if info == nil {
		return nil
	}
	members := make(wire.List, len(info.Members))
	for i, m := range info.Members {
		members[i] = m
	}
	l := wire.List{
		wire.Keyword("name"), info.Name,
		wire.Keyword("full-name"), info.FullName,
		wire.Keyword("decl-as"), info.DeclaredAs,
		wire.Keyword("members"), members,
	}
	if info.Pos != nil {
		l = append(l, wire.Keyword("pos"), SourceRangeToWire(*info.Pos))
	}
	return l
}

// SymbolInfoToWire converts a *analyzer.SymbolInfo, or nil if info is nil.
func SymbolInfoToWire(info *analyzer.SymbolInfo) interface{} {
	if info == nil {
		return nil
	}
	l := wire.List{
		wire.Keyword("name"), info.Name,
		wire.Keyword("type-name"), info.TypeName,
		wire.Keyword("is-local"), info.IsLocal,
	}
	if info.Pos != nil {
		l = append(l, wire.Keyword("pos"), SourceRangeToWire(*info.Pos))
	}
	return l
}

// PackageInfoToWire converts a *analyzer.PackageInfo, or nil if info is nil.
func PackageInfoToWire(info *analyzer.PackageInfo) interface{} {
	if info == nil {
		return nil
	}
	members := make(wire.List, len(info.Members))
	for i, m := range info.Members {
		members[i] = m
	}
	return wire.List{
		wire.Keyword("name"), info.Name,
		wire.Keyword("full-name"), info.FullName,
		wire.Keyword("members"), members,
	}
}

// CallCompletionInfoToWire converts a *analyzer.CallCompletionInfo, or nil.
func CallCompletionInfoToWire(info *analyzer.CallCompletionInfo) interface{} {
	if info == nil {
		return nil
	}
	paramSets := make(wire.List, len(info.ParamSets))
	for i, set := range info.ParamSets {
		params := make(wire.List, len(set))
		for j, p := range set {
			params[j] = p
		}
		paramSets[i] = params
	}
	return wire.List{
		wire.Keyword("id"), info.ID,
		wire.Keyword("type-info"), TypeInfoToWire(info.TypeInfo),
		wire.Keyword("param-sets"), paramSets,
	}
}

// DesignationsToWire converts a slice of analyzer.Designation.
func DesignationsToWire(ds []analyzer.Designation) wire.List {
	out := make(wire.List, len(ds))
	for i, d := range ds {
		out[i] = wire.List{
			wire.Keyword("kind"), d.Kind,
			wire.Keyword("start"), int64(d.Start),
			wire.Keyword("end"), int64(d.End),
		}
	}
	return out
}

// StringsToWire converts a []string to a wire list of strings.
func StringsToWire(ss []string) wire.List {
	out := make(wire.List, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// EditsFromWire parses a wire list of edit tuples, one of
// (:insert offset text), (:delete from to), (:replace from to text), into
// analyzer.Edit values.
func EditsFromWire(l wire.List) ([]analyzer.Edit, error) {
	edits := make([]analyzer.Edit, 0, len(l))
	for _, v := range l {
		el, ok := v.(wire.List)
		if !ok || len(el) == 0 {
			return nil, errMalformedEdit(v)
		}
		kw, ok := el.Keyword(0)
		if !ok {
			return nil, errMalformedEdit(v)
		}
		switch kw {
		case "insert":
			offset, _ := el.Int(1)
			text, _ := el.Str(2)
			edits = append(edits, analyzer.InsertEdit{Offset: int(offset), Text: text})
		case "delete":
			from, _ := el.Int(1)
			to, _ := el.Int(2)
			edits = append(edits, analyzer.DeleteEdit{From: int(from), To: int(to)})
		case "replace":
			from, _ := el.Int(1)
			to, _ := el.Int(2)
			text, _ := el.Str(3)
			edits = append(edits, analyzer.ReplaceEdit{From: int(from), To: int(to), Text: text})
		default:
			return nil, errMalformedEdit(v)
		}
	}
	return edits, nil
}

type malformedEditError struct{ v interface{} }

func (e *malformedEditError) Error() string { return "protocol: malformed edit tuple" }

func errMalformedEdit(v interface{}) error { return &malformedEditError{v: v} }
