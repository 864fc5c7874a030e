package index

import (
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// maxComposableArity mirrors the ceiling on how many fields a single
// compound index may cover. A query builder or derive front-end that
// tries to compose a fifth field is almost certainly a configuration
// mistake, not a legitimate use case.
const maxComposableArity = 4

// ComposablePlaintext is a small cons-list of plaintexts: the values a
// compound index consumes, one per leaf, in declaration order.
type ComposablePlaintext struct {
	items []plaintext.Plaintext
}

// NewComposablePlaintext builds a ComposablePlaintext from 1 to 4
// plaintext values.
func NewComposablePlaintext(items ...plaintext.Plaintext) (ComposablePlaintext, error) {
	if len(items) == 0 {
		return ComposablePlaintext{}, vaulterr.Wrap(vaulterr.KindIndex, "NewComposablePlaintext", vaulterr.ErrTooFewArguments)
	}
	if len(items) > maxComposableArity {
		return ComposablePlaintext{}, vaulterr.Wrap(vaulterr.KindIndex, "NewComposablePlaintext", vaulterr.ErrTooManyArguments)
	}
	cp := make([]plaintext.Plaintext, len(items))
	copy(cp, items)
	return ComposablePlaintext{items: cp}, nil
}

// Len reports how many plaintexts remain in the cons-list.
func (c ComposablePlaintext) Len() int {
	return len(c.items)
}

// Pop removes and returns the head plaintext, along with the remaining
// tail. The tail is nil when c held exactly one item.
func (c ComposablePlaintext) Pop() (plaintext.Plaintext, *ComposablePlaintext) {
	head := c.items[0]
	if len(c.items) == 1 {
		return head, nil
	}
	tail := ComposablePlaintext{items: c.items[1:]}
	return head, &tail
}

func single(p plaintext.Plaintext) ComposablePlaintext {
	return ComposablePlaintext{items: []plaintext.Plaintext{p}}
}
