package track

import "fmt"

// Selector chooses one element of a non-empty ordered sequence. Pick is
// given the sequence length n and returns the index of the chosen element,
// which must lie in [0, n).
type Selector interface {
	Pick(n int) int
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(n int) int

func (f SelectorFunc) Pick(n int) int { return f(n) }

// Pick returns the element of items chosen by sel.
func Pick[T any](sel Selector, items []T) (T, error) {
	var zero T
	i, err := pickIndex(sel, len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}

// pickIndex consults sel for a sequence of length n. A single-element
// sequence has only one possible outcome and sel is not called.
func pickIndex(sel Selector, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: empty sequence", ErrSelection)
	}
	if n == 1 {
		return 0, nil
	}
	if sel == nil {
		return 0, fmt.Errorf("%w: no selector", ErrSelection)
	}
	i := sel.Pick(n)
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: picked %d of %d", ErrSelection, i, n)
	}
	return i, nil
}
