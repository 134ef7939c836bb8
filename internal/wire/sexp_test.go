package wire

import (
	"bufio"
	"bytes"
	"reflect"
	"testing"
)

func TestParseEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want interface{}
	}{
		{"nil", "nil", nil},
		{"t", "t", T{}},
		{"int", "42", int64(42)},
		{"negative int", "-7", int64(-7)},
		{"string", `"hello world"`, "hello world"},
		{"escaped string", `"a\"b"`, `a"b`},
		{"keyword", ":swank-rpc", Keyword("swank-rpc")},
		{"symbol", "foo-bar", Symbol("foo-bar")},
		{"empty list", "()", List(nil)},
		{"nested list", `(:ok (1 2 "x"))`, List{Keyword("ok"), List{int64(1), int64(2), "x"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(c.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.in, err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", c.in, got, c.want)
			}
		})
	}
}

func TestEncodeList(t *testing.T) {
	v := List{Keyword("return"), List{Keyword("ok"), int64(1)}, int64(7)}
	got := Encode(v)
	want := `(:return (:ok 1) 7)`
	if got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	msg := List{Keyword("swank-rpc"), List{Symbol("swank:connection-info")}, int64(1)}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, msg); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	r := bufio.NewReader(&buf)
	got, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("ReadFrame() = %#v, want %#v", got, msg)
	}
}

func TestParseRequest(t *testing.T) {
	v, err := Parse(`(:swank-rpc (swank:completions "foo.scala" 10 100 nil nil) 5)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	req, err := ParseRequest(v)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.CallID != 5 {
		t.Fatalf("CallID = %d, want 5", req.CallID)
	}
	if sym, ok := req.Form.Get(0).(Symbol); !ok || sym != "swank:completions" {
		t.Fatalf("Form[0] = %#v, want swank:completions", req.Form.Get(0))
	}
}

func TestParseRequestMalformed(t *testing.T) {
	v, err := Parse(`(:not-swank-rpc foo 1)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ParseRequest(v); err == nil || !IsMalformed(err) {
		t.Fatalf("ParseRequest: want malformed error, got %v", err)
	}
}
