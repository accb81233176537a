// Package bank holds the depletable question → answer mapping of a session.
package bank

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrEmptyBank is returned when drawing from a bank with no questions left.
	ErrEmptyBank = errors.New("bank: no questions left")
	// ErrMalformed indicates content that is not a flat string → string mapping.
	ErrMalformed = errors.New("bank: not a flat mapping of strings to strings")
)

// Bank is a set of question/answer pairs that only shrinks.
// Keys are kept in a slice so a draw is uniform over what remains.
type Bank struct {
	answers map[string]string
	keys    []string
	index   map[string]int
	rnd     *rand.Rand
}

// New builds a bank from entries. The map is copied.
func New(entries map[string]string) *Bank {
	b := &Bank{
		answers: make(map[string]string, len(entries)),
		keys:    make([]string, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for q, a := range entries {
		b.answers[q] = a
		b.index[q] = len(b.keys)
		b.keys = append(b.keys, q)
	}
	return b
}

// SetRand replaces the random source used by RandomSelect.
func (b *Bank) SetRand(rnd *rand.Rand) {
	if rnd != nil {
		b.rnd = rnd
	}
}

// Size returns the number of remaining questions.
func (b *Bank) Size() int {
	return len(b.keys)
}

// RandomSelect picks one remaining question uniformly at random.
// A question answered wrong stays eligible and may come up again right away.
func (b *Bank) RandomSelect() (string, error) {
	if len(b.keys) == 0 {
		return "", ErrEmptyBank
	}
	return b.keys[b.rnd.Intn(len(b.keys))], nil
}

// Remove drops a question. Removing an absent question is a no-op.
func (b *Bank) Remove(question string) {
	i, ok := b.index[question]
	if !ok {
		return
	}
	last := len(b.keys) - 1
	if i != last {
		moved := b.keys[last]
		b.keys[i] = moved
		b.index[moved] = i
	}
	b.keys = b.keys[:last]
	delete(b.index, question)
	delete(b.answers, question)
}

// AnswerFor returns the stored answer. The caller guarantees the question exists.
func (b *Bank) AnswerFor(question string) string {
	return b.answers[question]
}

// Has reports whether the question is still in the bank.
func (b *Bank) Has(question string) bool {
	_, ok := b.answers[question]
	return ok
}

// Entries returns a copy of the remaining pairs.
func (b *Bank) Entries() map[string]string {
	out := make(map[string]string, len(b.answers))
	for q, a := range b.answers {
		out[q] = a
	}
	return out
}

// Clone returns an independent copy sharing the random source.
func (b *Bank) Clone() *Bank {
	c := &Bank{
		answers: make(map[string]string, len(b.answers)),
		keys:    make([]string, len(b.keys)),
		index:   make(map[string]int, len(b.index)),
		rnd:     b.rnd,
	}
	copy(c.keys, b.keys)
	for q, a := range b.answers {
		c.answers[q] = a
	}
	for q, i := range b.index {
		c.index[q] = i
	}
	return c
}
