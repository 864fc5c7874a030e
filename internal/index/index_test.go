package index

import (
	"testing"

	"github.com/cuemby/vaultindex/internal/plaintext"
)

func seed() Accumulator {
	return FromSalt([]byte("test-salt"))
}

func TestExactIndexSingleTerm(t *testing.T) {
	idx := ExactIndex{Field: "email"}
	cp, err := NewComposablePlaintext(plaintext.NewUtf8Str("test@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	acc, err := idx.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	if acc.Len() != 1 {
		t.Fatalf("got %d terms, want 1", acc.Len())
	}
}

func TestTwoExactIndexesOneTerm(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).And(ExactIndex{Field: "b"})
	cp, err := NewComposablePlaintext(plaintext.NewUtf8Str("alice"), plaintext.NewUtf8Str("bob"))
	if err != nil {
		t.Fatal(err)
	}
	acc, err := compound.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	if acc.Len() != 1 {
		t.Fatalf("got %d terms, want 1", acc.Len())
	}
}

func TestThreeExactIndexesOneTerm(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).And(ExactIndex{Field: "b"}).And(ExactIndex{Field: "c"})
	cp, err := NewComposablePlaintext(
		plaintext.NewUtf8Str("alice"),
		plaintext.NewUtf8Str("bob"),
		plaintext.NewUtf8Str("carol"),
	)
	if err != nil {
		t.Fatal(err)
	}
	acc, err := compound.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	if acc.Len() != 1 {
		t.Fatalf("got %d terms, want 1", acc.Len())
	}
}

func TestExactAndPrefixTwoTerms(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).
		And(PrefixIndex{Field: "b", MinLength: 2, MaxLength: 3})
	cp, err := NewComposablePlaintext(plaintext.NewUtf8Str("alice"), plaintext.NewUtf8Str("bobby"))
	if err != nil {
		t.Fatal(err)
	}
	acc, err := compound.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	// "bobby" with min=2 max=3 (raw, no alpha filtering): bo, bob -> 2 grams
	if acc.Len() != 2 {
		t.Fatalf("got %d terms, want 2", acc.Len())
	}
}

func TestExactPrefixExactThreeTerms(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).
		And(PrefixIndex{Field: "b", MinLength: 2, MaxLength: 5}).
		And(ExactIndex{Field: "c"})
	cp, err := NewComposablePlaintext(
		plaintext.NewUtf8Str("alice"),
		plaintext.NewUtf8Str("wxyz"),
		plaintext.NewUtf8Str("carol"),
	)
	if err != nil {
		t.Fatal(err)
	}
	acc, err := compound.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	// "wxyz" min=2 max=5: wx, wxy, wxyz -> 3 grams
	if acc.Len() != 3 {
		t.Fatalf("got %d terms, want 3", acc.Len())
	}
}

func TestExactPrefixPrefixSixteenTerms(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).
		And(PrefixIndex{Field: "b", MinLength: 1, MaxLength: 4}).
		And(PrefixIndex{Field: "c", MinLength: 1, MaxLength: 4})
	cp, err := NewComposablePlaintext(
		plaintext.NewUtf8Str("alice"),
		plaintext.NewUtf8Str("wxyz"),
		plaintext.NewUtf8Str("wxyz"),
	)
	if err != nil {
		t.Fatal(err)
	}
	acc, err := compound.ComposeIndex(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	// 4 grams * 4 grams = 16
	if acc.Len() != 16 {
		t.Fatalf("got %d terms, want 16", acc.Len())
	}
}

func TestComposeQueryPrefixCollapsesToOneTerm(t *testing.T) {
	leaf := PrefixIndex{Field: "b", MinLength: 2, MaxLength: 5}
	cp, err := NewComposablePlaintext(plaintext.NewUtf8Str("wx"))
	if err != nil {
		t.Fatal(err)
	}
	acc, err := leaf.ComposeQuery(cp, seed())
	if err != nil {
		t.Fatal(err)
	}
	if acc.Len() != 1 {
		t.Fatalf("got %d terms, want 1", acc.Len())
	}
}

func TestComposeQueryPrefixTooShort(t *testing.T) {
	leaf := PrefixIndex{Field: "b", MinLength: 3, MaxLength: 5}
	cp, err := NewComposablePlaintext(plaintext.NewUtf8Str("wx"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := leaf.ComposeQuery(cp, seed()); err == nil {
		t.Fatal("expected ErrQueryTooShort")
	}
}

func TestComposeIndexRequiresText(t *testing.T) {
	leaf := PrefixIndex{Field: "b", MinLength: 1, MaxLength: 3}
	cp, err := NewComposablePlaintext(plaintext.NewInt(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := leaf.ComposeIndex(cp, seed()); err == nil {
		t.Fatal("expected error for non-text plaintext")
	}
}

func TestTooManyAndTooFewArguments(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).And(ExactIndex{Field: "b"})

	tooFew, err := NewComposablePlaintext(plaintext.NewUtf8Str("only-one"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := compound.ComposeIndex(tooFew, seed()); err == nil {
		t.Fatal("expected too-few-arguments error")
	}

	tooMany, err := NewComposablePlaintext(
		plaintext.NewUtf8Str("a"), plaintext.NewUtf8Str("b"), plaintext.NewUtf8Str("c"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := compound.ComposeIndex(tooMany, seed()); err == nil {
		t.Fatal("expected too-many-arguments error")
	}
}

func TestAccumulatorExactlyOne(t *testing.T) {
	if _, err := EmptyAccumulator().ExactlyOne(); err == nil {
		t.Fatal("expected error for empty accumulator")
	}
	multi := fromTerms([][]byte{{1}, {2}})
	if _, err := multi.ExactlyOne(); err == nil {
		t.Fatal("expected error for multi-term accumulator")
	}
	single := fromTerms([][]byte{{1}})
	got, err := single.ExactlyOne()
	if err != nil || len(got) != 1 {
		t.Fatalf("got %v %v", got, err)
	}
}

func TestAccumulatorTruncate(t *testing.T) {
	acc := fromTerms([][]byte{make([]byte, 40)})
	if _, err := acc.Truncate(33); err == nil {
		t.Fatal("expected error for length > 32")
	}
	truncated, err := acc.Truncate(12)
	if err != nil {
		t.Fatal(err)
	}
	if len(truncated.Terms()[0]) != 12 {
		t.Fatalf("got %d bytes, want 12", len(truncated.Terms()[0]))
	}
}

func TestComposablePlaintextArity(t *testing.T) {
	if _, err := NewComposablePlaintext(); err == nil {
		t.Fatal("expected error for zero arguments")
	}
	five := make([]plaintext.Plaintext, 5)
	for i := range five {
		five[i] = plaintext.NewInt(int32(i))
	}
	if _, err := NewComposablePlaintext(five...); err == nil {
		t.Fatal("expected error for arity > 4")
	}
}

func TestSupportedOperators(t *testing.T) {
	compound := NewCompoundIndex(ExactIndex{Field: "a"}).And(PrefixIndex{Field: "b", MinLength: 1, MaxLength: 3})
	ops := compound.SupportedOperators().Flatten()
	if len(ops) != 2 {
		t.Fatalf("got %d field-ops, want 2", len(ops))
	}
	if ops[0].Field != "a" || ops[0].Operators[0] != OpEq {
		t.Fatalf("unexpected first field-ops: %#v", ops[0])
	}
	if ops[1].Field != "b" || ops[1].Operators[0] != OpStartsWith {
		t.Fatalf("unexpected second field-ops: %#v", ops[1])
	}
}
