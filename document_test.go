package textwerk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// appendLine adds text as a new line at the end of the document, the way
// a file reader would: break the final line, then fill the fresh one.
func appendLine(d *Document, text string) {
	line := d.NumLines() - 1
	d.InsertString(Coord{Line: line, Byte: d.LineLengthBytes(line)}, text)
	d.InsertLine(line + 1)
}

// docOf builds a document whose serialized form is contents.
func docOf(contents string) *Document {
	d := NewDocument()
	d.setWholeFile([]byte(contents))
	return d
}

func TestNewDocument(t *testing.T) {
	d := NewDocument()

	assert.Equal(t, 1, d.NumLines())
	assert.Equal(t, 0, d.LineLengthBytes(0))
	assert.True(t, d.ValidCoord(Coord{0, 0}))
	assert.False(t, d.ValidCoord(Coord{0, 1}))
	assert.Equal(t, Coord{0, 0}, d.EndCoord())
	assert.Equal(t, 0, d.MaxLineLengthBytes())
	assert.Equal(t, 0, d.NumLinesExceptFinalEmpty())
	assert.Equal(t, "", d.GetWholeFileString())
	d.SelfCheck()
}

func TestDocumentShape(t *testing.T) {
	d := NewDocument()

	appendLine(d, "one")
	assert.Equal(t, 2, d.NumLines())
	assert.Equal(t, 1, d.NumLinesExceptFinalEmpty())

	appendLine(d, "  two")
	appendLine(d, "three   ")
	appendLine(d, "    four    ")
	appendLine(d, "     ")
	d.InsertLine(5) // stays a nil slot internally
	d.InsertString(Coord{Line: 6, Byte: 0}, "      ")

	assert.Equal(t,
		"one\n"+
			"  two\n"+
			"three   \n"+
			"    four    \n"+
			"     \n"+
			"\n"+
			"      ",
		d.GetWholeFileString())

	assert.Equal(t, 7, d.NumLines())
	assert.Equal(t, 7, d.NumLinesExceptFinalEmpty())
	assert.Equal(t, 3, d.LineLengthBytes(0))
	assert.Equal(t, 6, d.LineLengthBytes(6))
	assert.True(t, d.ValidCoord(Coord{0, 1}))
	assert.True(t, d.ValidCoord(Coord{6, 6}))
	assert.False(t, d.ValidCoord(Coord{6, 7}))
	assert.False(t, d.ValidCoord(Coord{7, 0}))
	assert.Equal(t, Coord{6, 6}, d.EndCoord())
	assert.Equal(t, 12, d.MaxLineLengthBytes())
	d.SelfCheck()
}

func TestDocumentVersionNumber(t *testing.T) {
	d := NewDocument()
	v := d.Version()

	checkBumped := func() {
		t.Helper()
		assert.Greater(t, d.Version(), v)
		v = d.Version()
	}

	d.InsertLine(1)
	checkBumped()
	d.InsertString(Coord{1, 0}, "abc")
	checkBumped()
	d.DeleteTextBytes(Coord{1, 0}, 3)
	checkBumped()
	d.DeleteLine(1)
	checkBumped()

	// Queries do not bump the version.
	_ = d.GetWholeFileString()
	_ = d.LineLengthBytes(0)
	assert.Equal(t, v, d.Version())

	other := NewDocument()
	d.SwapWith(other)
	checkBumped()
}

func TestDocumentWhitespaceCounts(t *testing.T) {
	d := docOf(
		"one\n" +
			"  two\n" +
			"three   \n" +
			"    four    \n" +
			"     \n" +
			"\n" +
			"      ")

	checkSpaces := func() {
		t.Helper()
		wants := [][2]int{
			{0, 0}, {2, 0}, {0, 3}, {4, 4}, {5, 5}, {0, 0}, {6, 6},
		}
		for line, want := range wants {
			assert.Equal(t, want[0], d.CountLeadingSpacesTabs(line), "leading, line %d", line)
			assert.Equal(t, want[1], d.CountTrailingSpacesTabs(line), "trailing, line %d", line)
		}
	}

	checkSpaces()

	// Promote each line to recent in turn and repeat the queries; the
	// answers must not depend on where a line's contents live.
	for line := 0; line <= 6; line++ {
		tc := Coord{Line: line}
		d.InsertText(tc, []byte("x"))
		d.DeleteTextBytes(tc, 1)
		checkSpaces()
		d.SelfCheck()
	}
}

func TestDocumentDeleteLine(t *testing.T) {
	d := docOf("one\n\nthree")

	d.DeleteLine(1)
	assert.Equal(t, "one\nthree", d.GetWholeFileString())

	// Deleting a non-blank line panics.
	assert.Panics(t, func() { d.DeleteLine(0) })

	// Deleting the last remaining line panics.
	single := NewDocument()
	assert.Panics(t, func() { single.DeleteLine(0) })
}

func TestDocumentRecentLineCache(t *testing.T) {
	d := docOf("alpha\nbeta\ngamma")

	// Editing a line promotes it into the recent buffer and nils the
	// spine slot.
	d.InsertString(Coord{1, 4}, "!")
	in := d.DumpInternals()
	assert.Equal(t, 1, in.Recent)
	assert.Equal(t, "", in.Lines[1])
	assert.Equal(t, "beta!", in.RecentLine)

	// Editing another line migrates the cache; the old line is written
	// back to its slot.
	d.InsertString(Coord{2, 0}, "x")
	in = d.DumpInternals()
	assert.Equal(t, 2, in.Recent)
	assert.Equal(t, "beta!", in.Lines[1])
	assert.Equal(t, "xgamma", in.RecentLine)

	assert.Equal(t, "alpha\nbeta!\nxgamma", d.GetWholeFileString())
	d.SelfCheck()
}

func TestDocumentInsertLineAdjustsRecent(t *testing.T) {
	d := docOf("alpha\nbeta")
	d.InsertString(Coord{1, 0}, "x") // line 1 becomes recent

	d.InsertLine(0)
	in := d.DumpInternals()
	assert.Equal(t, 2, in.Recent)
	assert.Equal(t, "\nalpha\nxbeta", d.GetWholeFileString())

	d.DeleteLine(0)
	in = d.DumpInternals()
	assert.Equal(t, 1, in.Recent)
	assert.Equal(t, "alpha\nxbeta", d.GetWholeFileString())
	d.SelfCheck()
}

func TestDocumentGetPartialLine(t *testing.T) {
	d := docOf("abcdef\nxyz")

	assert.Equal(t, "cde", string(d.GetPartialLine(Coord{0, 2}, 3)))
	assert.Equal(t, "", string(d.GetPartialLine(Coord{0, 6}, 0)))
	assert.Equal(t, "xyz", string(d.GetWholeLine(1)))

	// The same reads work when the line is recent.
	d.InsertString(Coord{0, 0}, "")
	d.InsertString(Coord{0, 6}, "!")
	assert.Equal(t, "cde", string(d.GetPartialLine(Coord{0, 2}, 3)))
	assert.Equal(t, "abcdef!", string(d.GetWholeLine(0)))

	assert.Panics(t, func() { d.GetPartialLine(Coord{0, 5}, 4) })
}

func TestDocumentGetTextSpanningLines(t *testing.T) {
	d := docOf("one\ntwo\nthree")

	text, ok := d.GetTextSpanningLines(Coord{0, 0}, 7)
	assert.True(t, ok)
	assert.Equal(t, "one\ntwo", string(text))

	text, ok = d.GetTextSpanningLines(Coord{0, 2}, 4)
	assert.True(t, ok)
	assert.Equal(t, "e\ntw", string(text))

	// Span running past the end of the document.
	_, ok = d.GetTextSpanningLines(Coord{2, 0}, 6)
	assert.False(t, ok)
}

func TestDocumentCountBytesInRange(t *testing.T) {
	d := docOf("one\ntwo\nthree")

	tests := []struct {
		r    CoordRange
		want int
	}{
		{MakeCoordRange(0, 0, 0, 0), 0},
		{MakeCoordRange(0, 0, 0, 3), 3},
		{MakeCoordRange(0, 1, 0, 2), 1},
		{MakeCoordRange(0, 0, 1, 0), 4},
		{MakeCoordRange(0, 0, 2, 5), 13},
		{MakeCoordRange(1, 2, 2, 1), 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.CountBytesInRange(tt.r), "range %v", tt.r)
		assert.Len(t, d.GetTextRange(tt.r), tt.want)
	}
}

func TestDocumentWalkCoordBytes(t *testing.T) {
	// Lines: "one", "", "three", "".
	d := docOf("one\n\nthree\n")

	walk := func(from Coord, distance int) (Coord, bool) {
		return d.WalkCoordBytes(from, distance)
	}

	type W struct {
		from     Coord
		distance int
		want     Coord
		ok       bool
	}
	tests := []W{
		{Coord{0, 0}, -1, Coord{}, false},
		{Coord{0, 0}, 0, Coord{0, 0}, true},
		{Coord{0, 0}, 1, Coord{0, 1}, true},
		{Coord{0, 0}, 3, Coord{0, 3}, true},
		{Coord{0, 0}, 4, Coord{1, 0}, true},
		{Coord{0, 0}, 5, Coord{2, 0}, true},
		{Coord{0, 0}, 10, Coord{2, 5}, true},
		{Coord{0, 0}, 11, Coord{3, 0}, true},
		{Coord{0, 0}, 12, Coord{}, false},

		{Coord{0, 1}, -2, Coord{}, false},
		{Coord{0, 1}, -1, Coord{0, 0}, true},
		{Coord{0, 3}, 1, Coord{1, 0}, true},
		{Coord{2, 4}, -9, Coord{0, 0}, true},
		{Coord{2, 4}, 2, Coord{3, 0}, true},
		{Coord{2, 4}, 3, Coord{}, false},
		{Coord{3, 0}, -11, Coord{0, 0}, true},
		{Coord{3, 0}, 1, Coord{}, false},
	}

	for _, tt := range tests {
		got, ok := walk(tt.from, tt.distance)
		assert.Equal(t, tt.ok, ok, "walk(%v, %d) ok", tt.from, tt.distance)
		if ok {
			assert.Equal(t, tt.want, got, "walk(%v, %d)", tt.from, tt.distance)
		}
	}

	// Walking is invertible: +d then -d restores the coordinate.
	for _, tt := range tests {
		if !tt.ok {
			continue
		}
		mid, ok := walk(tt.from, tt.distance)
		assert.True(t, ok)
		back, ok := walk(mid, -tt.distance)
		assert.True(t, ok)
		assert.Equal(t, tt.from, back, "round trip from %v by %d", tt.from, tt.distance)
	}
}

func TestDocumentAdjustCoord(t *testing.T) {
	d := docOf("zero\none\ntwo\nthree\n")

	adj := func(il, ib, ol, ob int) {
		t.Helper()
		tc := Coord{il, ib}
		assert.True(t, d.AdjustCoord(&tc), "adjust(%d,%d)", il, ib)
		assert.Equal(t, Coord{ol, ob}, tc)
	}
	noAdj := func(il, ib int) {
		t.Helper()
		tc := Coord{il, ib}
		assert.False(t, d.AdjustCoord(&tc), "noAdjust(%d,%d)", il, ib)
		assert.Equal(t, Coord{il, ib}, tc)
	}

	adj(-1, 0, 0, 0)
	adj(-1, -1, 0, 0)
	adj(0, -1, 0, 0)
	noAdj(0, 0)
	noAdj(0, 4)
	adj(0, 5, 0, 4)
	adj(0, 6, 0, 4)

	adj(1, -1, 1, 0)
	noAdj(1, 0)
	noAdj(1, 3)
	adj(1, 4, 1, 3)

	noAdj(3, 0)
	noAdj(3, 5)
	adj(3, 6, 3, 5)

	noAdj(4, 0)
	adj(4, 1, 4, 0)
	adj(5, 0, 4, 0)
	adj(6, 0, 4, 0)
}

func TestDocumentAdjustRange(t *testing.T) {
	d := docOf("zero\none\ntwo\nthree\n")

	adj := func(isl, isb, iel, ieb, osl, osb, oel, oeb int) {
		t.Helper()
		r := MakeCoordRange(isl, isb, iel, ieb)
		assert.True(t, d.AdjustRange(&r), "adjust%v", r)
		assert.Equal(t, MakeCoordRange(osl, osb, oel, oeb), r)
	}
	noAdj := func(isl, isb, iel, ieb int) {
		t.Helper()
		r := MakeCoordRange(isl, isb, iel, ieb)
		assert.False(t, d.AdjustRange(&r))
		assert.Equal(t, MakeCoordRange(isl, isb, iel, ieb), r)
	}

	adj(-1, 0, 1, 0, 0, 0, 1, 0)
	adj(-1, 0, -1, 0, 0, 0, 0, 0)

	noAdj(0, 0, 0, 0)
	noAdj(0, 0, 1, 0)
	noAdj(0, 0, 4, 0)

	adj(0, 0, 0, 9, 0, 0, 0, 4)
	adj(0, 0, 4, 1, 0, 0, 4, 0)
	adj(0, 0, 5, 0, 0, 0, 4, 0)
	adj(1, 1, 1, 9, 1, 1, 1, 3)

	// end < start collapses onto the adjusted start
	adj(2, 2, 1, 1, 2, 2, 2, 2)
	adj(2, 9, 1, 1, 2, 3, 2, 3)
	adj(-5, 0, 5, 0, 0, 0, 4, 0)
	adj(-5, 0, -1, 0, 0, 0, 0, 0)
}

func TestDocumentClear(t *testing.T) {
	d := docOf("one\ntwo\nthree")
	d.Clear()
	assert.Equal(t, 1, d.NumLines())
	assert.Equal(t, "", d.GetWholeFileString())
	d.SelfCheck()
}

func TestDocumentSwapWith(t *testing.T) {
	a := docOf("aaa\nbbb")
	b := docOf("ccc")

	a.SwapWith(b)
	assert.Equal(t, "ccc", a.GetWholeFileString())
	assert.Equal(t, "aaa\nbbb", b.GetWholeFileString())
	a.SelfCheck()
	b.SelfCheck()
}

// recordingObserver records every notification it receives, in order.
type recordingObserver struct {
	NopObserver
	events []string
}

func (r *recordingObserver) ObserveInsertLine(doc *Document, line int) {
	r.events = append(r.events, "insertLine")
}
func (r *recordingObserver) ObserveDeleteLine(doc *Document, line int) {
	r.events = append(r.events, "deleteLine")
}
func (r *recordingObserver) ObserveInsertText(doc *Document, tc Coord, text []byte) {
	r.events = append(r.events, "insertText:"+string(text))
}
func (r *recordingObserver) ObserveDeleteText(doc *Document, tc Coord, length int) {
	r.events = append(r.events, "deleteText")
}
func (r *recordingObserver) ObserveTotalChange(doc *Document) {
	r.events = append(r.events, "totalChange")
}

func TestDocumentObserverDelivery(t *testing.T) {
	d := NewDocument()
	first := &recordingObserver{}
	second := &recordingObserver{}

	assert.False(t, d.HasObserver(first))
	d.AddObserver(first)
	d.AddObserver(second)
	assert.True(t, d.HasObserver(first))
	assert.Panics(t, func() { d.AddObserver(first) }, "duplicate registration")

	d.InsertLine(1)
	d.InsertString(Coord{0, 0}, "hi")
	d.DeleteTextBytes(Coord{0, 0}, 2)
	d.DeleteLine(1)

	want := []string{"insertLine", "insertText:hi", "deleteText", "deleteLine"}
	assert.Equal(t, want, first.events)
	assert.Equal(t, want, second.events, "all observers see every mutation")

	d.RemoveObserver(first)
	assert.False(t, d.HasObserver(first))
	d.InsertLine(1)
	assert.Len(t, first.events, 4, "removed observer hears nothing")
	assert.Len(t, second.events, 5)

	assert.Panics(t, func() { d.RemoveObserver(first) })
}

// panickingObserver blows up on every notification.
type panickingObserver struct{ NopObserver }

func (panickingObserver) ObserveInsertText(*Document, Coord, []byte) {
	panic("observer failure")
}

func TestDocumentObserverPanicContained(t *testing.T) {
	d := NewDocument()
	bad := panickingObserver{}
	after := &recordingObserver{}
	d.AddObserver(bad)
	d.AddObserver(after)

	assert.NotPanics(t, func() {
		d.InsertString(Coord{0, 0}, "x")
	})
	assert.Equal(t, "x", d.GetWholeFileString())
	assert.Equal(t, []string{"insertText:x"}, after.events,
		"later observers still notified")
}

func TestDocumentIteratorPinsDocument(t *testing.T) {
	d := docOf("abc\ndef")

	it := d.IterateLine(0)
	var collected []byte
	for it.Has() {
		collected = append(collected, it.ByteAt())
		it.Advance()
	}
	assert.Equal(t, "abc", string(collected))
	assert.Equal(t, 3, it.ByteOffset())

	assert.Panics(t, func() { d.InsertString(Coord{0, 0}, "x") },
		"mutation with live iterator")

	it.Close()
	assert.NotPanics(t, func() { d.InsertString(Coord{0, 0}, "x") })

	// Out-of-range lines iterate as empty.
	it2 := d.IterateLine(99)
	assert.False(t, it2.Has())
	it2.Close()
}

func TestDocumentIterateRecentLine(t *testing.T) {
	d := docOf("abc")
	d.InsertString(Coord{0, 3}, "d") // line 0 becomes recent

	it := d.IterateLine(0)
	defer it.Close()
	var collected []byte
	for it.Has() {
		collected = append(collected, it.ByteAt())
		it.Advance()
	}
	assert.Equal(t, "abcd", string(collected))
}

func TestDocumentMaxLineLengthIsMonotone(t *testing.T) {
	d := docOf("short\nlongest line here")
	assert.Equal(t, 17, d.MaxLineLengthBytes())

	// Delete the longest line; the answer does not decay.
	d.DeleteTextBytes(Coord{1, 0}, 17)
	d.DeleteLine(1)
	assert.Equal(t, 17, d.MaxLineLengthBytes())
}
