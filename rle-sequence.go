package textwerk

import (
	"fmt"
	"strings"
)

// RLESequence is a run-length-encoded infinite sequence: a finite list of
// runs followed by an infinite tail of a single value. It supports cheap
// appends, positional reads and pointwise combination, and is the storage
// behind per-line category overlays.
type RLESequence[T comparable] struct {
	runs []rleRun[T]
	tail T
}

// rleRun is a contiguous run of equal elements.
type rleRun[T comparable] struct {
	value  T
	length int
}

// NewRLESequence creates a sequence that is tail everywhere.
func NewRLESequence[T comparable](tail T) *RLESequence[T] {
	return &RLESequence[T]{tail: tail}
}

// NumRuns returns the number of finite runs.
func (s *RLESequence[T]) NumRuns() int {
	return len(s.runs)
}

// finalRunHasValue reports whether the last finite run holds value.
func (s *RLESequence[T]) finalRunHasValue(value T) bool {
	return len(s.runs) > 0 && s.runs[len(s.runs)-1].value == value
}

// Clear resets the sequence to tail everywhere.
func (s *RLESequence[T]) Clear(tail T) {
	s.runs = nil
	s.tail = tail
}

// Append adds length elements of value after the last finite run but
// before the infinite tail. Adjacent equal runs coalesce.
func (s *RLESequence[T]) Append(value T, length int) {
	if length < 0 {
		panic("textwerk: negative run length")
	}
	if length == 0 {
		return
	}
	if s.finalRunHasValue(value) {
		s.runs[len(s.runs)-1].length += length
	} else {
		s.runs = append(s.runs, rleRun[T]{value: value, length: length})
	}
}

// SetTailValue sets the value of the infinite tail, removing a redundant
// final run of the same value. Call after appending the finite portion.
func (s *RLESequence[T]) SetTailValue(tail T) {
	s.tail = tail
	if s.finalRunHasValue(tail) {
		s.runs = s.runs[:len(s.runs)-1]
	}
}

// TailValue returns the value of the infinite tail.
func (s *RLESequence[T]) TailValue() T {
	return s.tail
}

// At returns the value at the given position. Index must be >= 0.
func (s *RLESequence[T]) At(index int) T {
	if index < 0 {
		panic("textwerk: negative sequence index")
	}
	for _, run := range s.runs {
		if run.length > index {
			return run.value
		}
		index -= run.length
	}
	return s.tail
}

// Equal reports whether two sequences are elementwise identical.
func (s *RLESequence[T]) Equal(other *RLESequence[T]) bool {
	if s.tail != other.tail || len(s.runs) != len(other.runs) {
		return false
	}
	for i, run := range s.runs {
		if run != other.runs[i] {
			return false
		}
	}
	return true
}

// SwapWith exchanges the contents of two sequences.
func (s *RLESequence[T]) SwapWith(other *RLESequence[T]) {
	*s, *other = *other, *s
}

// String renders the sequence as "[v1,n1][v2,n2][tail".
func (s *RLESequence[T]) String() string {
	var sb strings.Builder
	for _, run := range s.runs {
		fmt.Fprintf(&sb, "[%v,%d]", run.value, run.length)
	}
	fmt.Fprintf(&sb, "[%v", s.tail)
	return sb.String()
}

// UnaryString renders the sequence element by element, as
// "v1v1v1v2v2tail...".
func (s *RLESequence[T]) UnaryString() string {
	var sb strings.Builder
	for _, run := range s.runs {
		for range run.length {
			fmt.Fprintf(&sb, "%v", run.value)
		}
	}
	fmt.Fprintf(&sb, "%v...", s.tail)
	return sb.String()
}

// RLEIter walks an RLESequence run by run.
type RLEIter[T comparable] struct {
	seq   *RLESequence[T]
	index int // next run to load
	run   rleRun[T]
}

// Iter creates an iterator positioned at the first run.
func (s *RLESequence[T]) Iter() *RLEIter[T] {
	it := &RLEIter[T]{seq: s, run: rleRun[T]{value: s.tail}}
	if !it.AtEnd() {
		it.NextRun()
	}
	return it
}

// Value returns the value of the current run.
func (it *RLEIter[T]) Value() T {
	return it.run.value
}

// RunLength returns the remaining elements in the current run. When
// AtEnd, it returns 0 although the true remaining length is infinite.
func (it *RLEIter[T]) RunLength() int {
	return it.run.length
}

// AtEnd reports whether the iterator has reached the infinite tail.
func (it *RLEIter[T]) AtEnd() bool {
	return it.index == it.seq.NumRuns() && it.run.length == 0
}

// NextRun moves to the next run. Requires !AtEnd().
func (it *RLEIter[T]) NextRun() {
	if it.AtEnd() {
		panic("textwerk: iterating past the infinite tail")
	}
	if it.index < it.seq.NumRuns() {
		it.run = it.seq.runs[it.index]
		it.index++
	} else {
		it.run = rleRun[T]{value: it.seq.tail}
	}
}

// Advance moves the iterator forward by count elements. Count must be
// >= 0.
func (it *RLEIter[T]) Advance(count int) {
	if count < 0 {
		panic("textwerk: negative advance")
	}
	for count > 0 && !it.AtEnd() {
		if it.run.length <= count {
			count -= it.run.length
			it.NextRun()
		} else {
			it.run.length -= count
			count = 0
		}
	}
}

// minRunLength returns the smaller of the two iterators' current run
// lengths, treating an at-end iterator as infinitely long.
func minRunLength[A, B comparable](a *RLEIter[A], b *RLEIter[B]) int {
	switch {
	case a.AtEnd():
		return b.RunLength()
	case b.AtEnd():
		return a.RunLength()
	default:
		return min(a.RunLength(), b.RunLength())
	}
}

// CombineRLE combines two sequences pointwise: the result at every
// position i is combine(lhs.At(i), rhs.At(i)), computed run by run.
func CombineRLE[R, L, Rh comparable](
	lhs *RLESequence[L],
	rhs *RLESequence[Rh],
	combine func(L, Rh) R,
) *RLESequence[R] {
	var dest RLESequence[R]

	lhsIter := lhs.Iter()
	rhsIter := rhs.Iter()

	for !lhsIter.AtEnd() || !rhsIter.AtEnd() {
		n := minRunLength(lhsIter, rhsIter)
		dest.Append(combine(lhsIter.Value(), rhsIter.Value()), n)
		lhsIter.Advance(n)
		rhsIter.Advance(n)
	}

	dest.SetTailValue(combine(lhsIter.Value(), rhsIter.Value()))
	return &dest
}
