package tokenize

import (
	"reflect"
	"testing"
)

func TestEdgeNgram(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		min, max int
		want     []string
	}{
		{"basic", "Heath Jones", 0, 1, []string{"H", "J"}},
		{"hello-world", "Hello World", 2, 4, []string{"He", "Hel", "Hell", "Wo", "Wor", "Worl"}},
		{"min-gt-max", "abc", 3, 1, nil},
		{"empty", "", 1, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EdgeNgram{Min: tt.min, Max: tt.max}.Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}

func TestEdgeNgramRaw(t *testing.T) {
	got := EdgeNgramRaw{Min: 2, Max: 4}.Tokenize("Hello World")
	want := []string{"He", "Hel", "Hell"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestNgram(t *testing.T) {
	got := Ngram{Length: 3}.Tokenize("abcde")
	want := []string{"abc", "bcd", "cde"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	if got := (Ngram{Length: 0}).Tokenize("abc"); got != nil {
		t.Fatalf("expected nil for zero length, got %#v", got)
	}
	if got := (Ngram{Length: 5}).Tokenize("ab"); got != nil {
		t.Fatalf("expected nil for short input, got %#v", got)
	}
}

func TestStandard(t *testing.T) {
	got := Standard{}.Tokenize("foo, bar; baz:qux!quux")
	want := []string{"foo", "bar", "baz", "qux", "quux"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestFilters(t *testing.T) {
	out := ApplyAll([]Filter{Upcase{}}, []string{"abc", "Def"})
	if !reflect.DeepEqual(out, []string{"ABC", "DEF"}) {
		t.Fatalf("got %#v", out)
	}
	out = ApplyAll([]Filter{Downcase{}}, []string{"ABC"})
	if !reflect.DeepEqual(out, []string{"abc"}) {
		t.Fatalf("got %#v", out)
	}
}

func TestStripLikeWildcards(t *testing.T) {
	tests := map[string]string{
		"%foo%": "foo",
		"_foo_": "foo",
		"foo":   "foo",
		"%foo":  "foo",
		"foo%":  "foo",
		"%":     "",
	}
	for in, want := range tests {
		if got := StripLikeWildcards(in); got != want {
			t.Fatalf("StripLikeWildcards(%q) = %q, want %q", in, got, want)
		}
	}
}
