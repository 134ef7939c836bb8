package index

import (
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestSplitTypeName(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"FooBarBaz", []string{"Foo", "Bar", "Baz"}},
		{"", nil},
		{"URLParser", []string{"U", "R", "L", "Parser"}},
	}
	for _, c := range cases {
		got := SplitTypeName(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitTypeName(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Foo.Bar BazQux")
	want := "foo.bar bazqux foo bar baz qux"
	if got != want {
		t.Fatalf("Tokenize() = %q, want %q", got, want)
	}
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func TestTokenizeIdempotentTokenSet(t *testing.T) {
	inputs := []string{"Foo.Bar BazQux", "com.example.FooBar", "single", ""}
	for _, in := range inputs {
		once := Tokenize(in)
		twice := Tokenize(once)
		a := sortedKeys(wordSet(once))
		b := sortedKeys(wordSet(twice))
		for _, w := range a {
			if !contains(b, w) {
				t.Errorf("Tokenize(%q): term %q lost on re-tokenization", in, w)
			}
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
