package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowercaser = cases.Lower(language.Und)

// Tokenize lowercases s and splits it on space, dot, and camel-case
// boundaries, returning the original lowercased string prefixed before one
// space-separated token per split.
//   Tokenize("Foo.Bar BazQux") = "foo.bar bazqux foo bar baz qux"
func Tokenize(s string) string {
	lower := lowercaser.String(s)
	var tokens []string
	for _, piece := range splitSpaceDot(s) {
		if piece == "" {
			continue
		}
		for _, camel := range SplitTypeName(piece) {
			tokens = append(tokens, lowercaser.String(camel))
		}
	}
	if len(tokens) == 0 {
		return lower
	}
	return lower + " " + strings.Join(tokens, " ")
}

// splitSpaceDot splits s on space and dot boundaries only.
func splitSpaceDot(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if r == ' ' || r == '.' {
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return tokens
}

// SplitTypeName splits on camel-case boundaries: every uppercase character
// preceded by anything starts a new token.
//   SplitTypeName("FooBarBaz") = ["Foo","Bar","Baz"]
//   SplitTypeName("") = []
//   SplitTypeName("URLParser") = ["U","R","L","Parser"]
func SplitTypeName(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	var cur []rune
	for i, r := range []rune(s) {
		if unicode.IsUpper(r) && i > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}
	return tokens
}

// LocalNameTags tokenizes the camel-case split of a local (unqualified) name,
// lowercased, matching the `localNameTags` analyzer field.
func LocalNameTags(localName string) string {
	lower := lowercaser.String(localName)
	parts := SplitTypeName(localName)
	lowered := make([]string, len(parts))
	for i, p := range parts {
		lowered[i] = lowercaser.String(p)
	}
	if len(lowered) == 0 {
		return lower
	}
	return lower + " " + strings.Join(lowered, " ")
}
