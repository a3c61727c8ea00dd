package textwerk

import (
	"bytes"
	"fmt"
)

// HistoryError is returned when a history element cannot be applied
// because the document state is not consistent with the information
// recorded in the element. The document is left unmodified in that case.
type HistoryError struct {
	Reason string
}

func (e *HistoryError) Error() string {
	return "history: " + e.Reason
}

// historyErr builds a HistoryError.
func historyErr(format string, args ...any) error {
	return &HistoryError{Reason: fmt.Sprintf(format, args...)}
}

// rollbackMismatch reports a failure while undoing a partially-applied
// group. The elements being reversed were just applied successfully in
// the opposite direction, so a failure here means the history no longer
// corresponds to the document at all; there is no way to continue.
func rollbackMismatch() {
	panic("textwerk: correspondence mismatch during history rollback")
}

// HistoryElement is one invertible transformation of a Document: either a
// single text edit or a group of elements undone and redone as a unit.
//
// Apply performs the transformation, in reverse if requested, and returns
// the coordinate of the left edge of the affected text. If the element
// does not correspond to the current document state it returns a
// HistoryError and leaves the document unmodified.
type HistoryElement interface {
	Apply(doc *Document, reverse bool) (Coord, error)
}

// TextEdit records a single insertion or deletion at a coordinate. The
// recorded bytes may contain newlines; Apply decomposes them into the
// document's single-line primitives. A deletion carries the bytes it
// removed so that it can be inverted.
type TextEdit struct {
	At        Coord
	Insertion bool
	Text      []byte
}

// NewInsertion records an insertion of text at tc.
func NewInsertion(tc Coord, text []byte) *TextEdit {
	return &TextEdit{At: tc, Insertion: true, Text: append([]byte(nil), text...)}
}

// NewDeletion records a deletion at tc whose bytes are captured from doc
// with ComputeText before the deletion is performed.
func NewDeletion(tc Coord) *TextEdit {
	return &TextEdit{At: tc, Insertion: false}
}

// ComputeText captures the count bytes that a forward application of this
// deletion will remove, enabling later inversion. The entire span must
// lie within the document.
func (e *TextEdit) ComputeText(doc *Document, count int) {
	if e.Insertion || e.Text != nil {
		panic("textwerk: ComputeText on an insertion or a filled deletion")
	}
	text, ok := doc.GetTextSpanningLines(e.At, count)
	if !ok {
		panic("textwerk: deletion span is not entirely within the document")
	}
	e.Text = text
}

// Apply implements HistoryElement. Insertion XOR reverse selects the
// direction actually performed.
func (e *TextEdit) Apply(doc *Document, reverse bool) (Coord, error) {
	var err error
	if e.Insertion != reverse {
		err = applyInsert(doc, e.At, e.Text)
	} else {
		err = applyDelete(doc, e.At, e.Text)
	}
	if err != nil {
		return Coord{}, err
	}
	return e.At, nil
}

// applyInsert inserts text, which may contain newlines, at tc.
func applyInsert(doc *Document, tc Coord, text []byte) error {
	if !doc.ValidCoord(tc) {
		return historyErr("coordinate %v is not within the document", tc)
	}
	doc.insertMultiline(tc, text)
	return nil
}

// applyDelete removes text at tc, first checking that the document
// actually contains those bytes there. On mismatch the document is left
// untouched.
func applyDelete(doc *Document, tc Coord, text []byte) error {
	if !doc.ValidCoord(tc) {
		return historyErr("coordinate %v is not within the document", tc)
	}

	actual, ok := doc.GetTextSpanningLines(tc, len(text))
	if !ok {
		return historyErr("deletion span at %v extends past end of document", tc)
	}
	if !bytes.Equal(actual, text) {
		return historyErr("deletion text does not match document contents at %v", tc)
	}

	// Contents are known to match; committed from here.
	doc.deleteMultiline(tc, len(text))
	return nil
}

// Group is an ordered sequence of history elements treated as a unit for
// interactive undo and redo. Groups nest.
type Group struct {
	seq []HistoryElement
}

// SeqLength returns the number of direct child elements.
func (g *Group) SeqLength() int {
	return len(g.seq)
}

// Append adds an element to the end of the group.
func (g *Group) Append(e HistoryElement) {
	g.seq = append(g.seq, e)
}

// PopLastElement removes and returns the final element; the group must
// not be empty.
func (g *Group) PopLastElement() HistoryElement {
	e := g.seq[len(g.seq)-1]
	g.seq = g.seq[:len(g.seq)-1]
	return e
}

// Truncate discards all elements with index newLength or greater.
func (g *Group) Truncate(newLength int) {
	if newLength < 0 || newLength > len(g.seq) {
		panic("textwerk: history truncation length out of range")
	}
	// Clear the tail so the dropped elements can be collected.
	for i := newLength; i < len(g.seq); i++ {
		g.seq[i] = nil
	}
	g.seq = g.seq[:newLength]
}

// Clear discards all elements.
func (g *Group) Clear() {
	g.Truncate(0)
}

// ApplyOne applies the single element at index, possibly in reverse.
func (g *Group) ApplyOne(doc *Document, index int, reverse bool) (Coord, error) {
	return g.seq[index].Apply(doc, reverse)
}

// applySeq applies the elements with indices in [start, end). They are
// applied left to right, unless reverse is true, in which case they are
// applied right to left with each element itself reversed. If an element
// fails partway through, the already-applied prefix is rolled back with
// inverse operations before the error is returned; a failure during that
// rollback is a fatal correspondence mismatch.
func (g *Group) applySeq(doc *Document, start, end int, reverse bool) (Coord, error) {
	at := func(offset int) int {
		if reverse {
			return start + (end - start) - offset - 1
		}
		return start + offset
	}

	leftEdge := doc.EndCoord()
	for i := 0; i < end-start; i++ {
		tc, err := g.ApplyOne(doc, at(i), reverse)
		if err != nil {
			// Roll back the already-applied prefix.
			for j := i - 1; j >= 0; j-- {
				if _, rollErr := g.ApplyOne(doc, at(j), !reverse); rollErr != nil {
					rollbackMismatch()
				}
			}
			return Coord{}, err
		}
		if tc.Less(leftEdge) {
			leftEdge = tc
		}
	}
	return leftEdge, nil
}

// Apply implements HistoryElement for the whole group.
func (g *Group) Apply(doc *Document, reverse bool) (Coord, error) {
	return g.applySeq(doc, 0, len(g.seq), reverse)
}

// describe renders an element as an indented text line, used by History
// dumps and tests.
func describe(e HistoryElement, indent string) string {
	switch e := e.(type) {
	case *TextEdit:
		verb := "Del"
		if e.Insertion {
			verb = "Ins"
		}
		return fmt.Sprintf("%s%s(%v, %q)\n", indent, verb, e.At, e.Text)
	case *Group:
		s := indent + "group {\n"
		for _, child := range e.seq {
			s += describe(child, indent+"  ")
		}
		return s + indent + "}\n"
	default:
		return fmt.Sprintf("%s%T\n", indent, e)
	}
}
