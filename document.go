package textwerk

// Document is the line-structured core of an editable text buffer. It is a
// non-empty sequence of lines, where a line is a sequence of bytes not
// containing '\n'. To convert a document to an on-disk file, a single
// newline is inserted *between* every pair of lines; consequently the
// document consisting of one empty line corresponds to a 0-byte file.
//
// The document is encoding-agnostic over bytes; UTF-8 is the recommended
// convention but is not validated. All lengths and indices are byte
// counts.
//
// Storage layout: the spine holds one slot per line. A slot is either nil,
// meaning the line is blank (or is the recent line), or the line's bytes.
// The contents of the most-recently edited line live in an auxiliary gap
// buffer instead, giving amortized O(1) edits at the point of typing while
// all other lines stay as compact allocations.
//
// A Document is single-threaded: at most one goroutine may use it at a
// time, and even read paths can promote a line into the recent-line cache.
// Callers that need concurrency must serialize externally.
//
// Document has no undo facility; TextDocument layers history on top.
type Document struct {
	// The spine of the document. Every slot is either nil, meaning a
	// blank line or the recent line, or the line's contents.
	lines GapBuffer[[]byte]

	// The most-recently edited line number, or -1 when no line's contents
	// are held in recentLine.
	recent int

	// If recent != -1, holds the contents of that line; lines[recent] is
	// nil in that case.
	recentLine GapBuffer[byte]

	// Length in bytes of the longest line this document has ever had.
	// Monotone: it does not decrease when the longest line shrinks or is
	// deleted.
	longestLengthSoFar int

	// Registered observers, notified after every mutation.
	observers []Observer

	// Monotonic counter, incremented by every mutating primitive. Clients
	// use it to detect staleness.
	version uint64

	// Number of live line iterators; mutations are forbidden while any
	// iterator exists.
	iteratorCount int
}

// NewDocument creates an empty document holding exactly one empty line.
func NewDocument() *Document {
	d := &Document{recent: -1}
	d.lines.Insert(0, nil)
	return d
}

// ---------------------- document shape ------------------------

// NumLines returns the number of lines in the document, always at least 1.
func (d *Document) NumLines() int {
	return d.lines.Length()
}

// bc panics unless line names an existing line.
func (d *Document) bc(line int) {
	if line < 0 || line >= d.NumLines() {
		panic("textwerk: line number out of range")
	}
}

// bctc panics unless tc is a valid coordinate.
func (d *Document) bctc(tc Coord) {
	if !d.ValidCoord(tc) {
		panic("textwerk: invalid coordinate " + tc.String())
	}
}

// LineLengthBytes returns the length of the given line in bytes, not
// counting any line separator.
func (d *Document) LineLengthBytes(line int) int {
	d.bc(line)
	if line == d.recent {
		return d.recentLine.Length()
	}
	return len(d.lines.Get(line))
}

// IsEmptyLine reports whether the given line has no bytes.
func (d *Document) IsEmptyLine(line int) bool {
	return d.LineLengthBytes(line) == 0
}

// ValidCoord reports whether tc names a line in [0, NumLines()) and a byte
// index in [0, LineLengthBytes(line)]; end of line is a valid position.
func (d *Document) ValidCoord(tc Coord) bool {
	return 0 <= tc.Line && tc.Line < d.NumLines() &&
		0 <= tc.Byte && tc.Byte <= d.LineLengthBytes(tc.Line)
}

// ValidRange reports whether both endpoints are valid and Start <= End.
func (d *Document) ValidRange(r CoordRange) bool {
	return d.ValidCoord(r.Start) && d.ValidCoord(r.End) && r.IsRectified()
}

// BeginCoord returns the first valid coordinate.
func (d *Document) BeginCoord() Coord {
	return Coord{}
}

// EndCoord returns the last valid coordinate.
func (d *Document) EndCoord() Coord {
	line := d.NumLines() - 1
	return Coord{Line: line, Byte: d.LineLengthBytes(line)}
}

// LineBeginCoord returns the coordinate of the start of the given line.
func (d *Document) LineBeginCoord(line int) Coord {
	d.bc(line)
	return Coord{Line: line}
}

// LineEndCoord returns the coordinate of the end of the given line.
func (d *Document) LineEndCoord(line int) Coord {
	return Coord{Line: line, Byte: d.LineLengthBytes(line)}
}

// MaxLineLengthBytes returns the length of the longest line the document
// has ever contained. The value never decreases, even when the longest
// line is deleted.
func (d *Document) MaxLineLengthBytes() int {
	return d.longestLengthSoFar
}

// NumLinesExceptFinalEmpty returns the number of lines as a user would
// typically count them: if the file ends in a newline the final empty
// line is not counted.
func (d *Document) NumLinesExceptFinalEmpty() int {
	lastLine := d.NumLines() - 1
	if d.LineLengthBytes(lastLine) == 0 {
		return lastLine
	}
	return lastLine + 1
}

// Version returns the document's current version number. The counter
// strictly increases with every mutating primitive.
func (d *Document) Version() uint64 {
	return d.version
}

// ---------------------- recent-line cache ---------------------

// detachRecent copies the recent line's contents back into its spine
// slot, leaving no line recent.
func (d *Document) detachRecent() {
	if d.recent == -1 {
		return
	}
	if d.lines.Get(d.recent) != nil {
		panic("textwerk: recent line has a non-nil spine slot")
	}

	if n := d.recentLine.Length(); n > 0 {
		p := make([]byte, n)
		d.recentLine.WriteIntoArray(p, n, 0)
		d.lines.Set(d.recent, p)
		d.recentLine.Clear()
	}
	// An empty recent line leaves the slot nil, which already means blank.

	d.recent = -1
}

// attachRecent promotes tc.Line into the recent-line buffer, putting the
// gap at tc.Byte with room for insLength bytes.
func (d *Document) attachRecent(tc Coord, insLength int) {
	if d.recent == tc.Line {
		return
	}
	d.detachRecent()

	if p := d.lines.Get(tc.Line); len(p) > 0 {
		d.recentLine.FillFromArray(p, tc.Byte, insLength)
		d.lines.Set(tc.Line, nil)
	} else if d.recentLine.Length() != 0 {
		panic("textwerk: recent buffer not empty while no line is recent")
	}

	d.recent = tc.Line
}

// seenLineLength folds a line length into the longest-ever tracker.
func (d *Document) seenLineLength(n int) {
	if n > d.longestLengthSoFar {
		d.longestLengthSoFar = n
	}
}

// beginMutation enforces the iterator pin and bumps the version.
func (d *Document) beginMutation() {
	if d.iteratorCount > 0 {
		panic("textwerk: document mutated while a line iterator is live")
	}
	d.version++
}

// ----------------- manipulation interface -------------------
//
// This interface is deliberately very simple: callers either insert or
// remove *blank* lines, or edit the contents of a *single* line. The
// composite operations and TextDocument provide friendlier entry points.

// InsertLine inserts a new blank line so that it becomes line number
// line, which must be in [0, NumLines()].
func (d *Document) InsertLine(line int) {
	if line < 0 || line > d.NumLines() {
		panic("textwerk: line insertion position out of range")
	}
	d.beginMutation()

	d.lines.Insert(line, nil)

	if d.recent >= line {
		d.recent++
	}

	d.notify(func(o Observer) { o.ObserveInsertLine(d, line) })
}

// DeleteLine removes the given line, which must already be blank. The last
// remaining line cannot be deleted.
func (d *Document) DeleteLine(line int) {
	d.bc(line)
	d.beginMutation()

	if line == d.recent {
		if d.recentLine.Length() != 0 {
			panic("textwerk: deleting a non-blank line")
		}
		d.detachRecent()
	}
	if d.lines.Get(line) != nil {
		panic("textwerk: deleting a non-blank line")
	}
	if d.NumLines() <= 1 {
		panic("textwerk: deleting the last line")
	}

	d.lines.Remove(line)

	if d.recent > line {
		d.recent--
	}

	d.notify(func(o Observer) { o.ObserveDeleteLine(d, line) })
}

// InsertText inserts text into a single line at tc, which must be valid.
// The text must not contain '\n'.
func (d *Document) InsertText(tc Coord, text []byte) {
	d.bctc(tc)
	for _, b := range text {
		if b == '\n' {
			panic("textwerk: inserted text contains a newline")
		}
	}
	d.beginMutation()

	if tc.Byte == 0 && d.LineLengthBytes(tc.Line) == 0 && tc.Line != d.recent {
		// Filling an empty cold line: set the slot directly, leaving the
		// recent-line cache where it is.
		if len(text) > 0 {
			p := make([]byte, len(text))
			copy(p, text)
			d.lines.Set(tc.Line, p)
		}
		d.seenLineLength(len(text))
	} else {
		d.attachRecent(tc, len(text))
		d.recentLine.InsertMany(tc.Byte, text)
		d.seenLineLength(d.recentLine.Length())
	}

	d.notify(func(o Observer) { o.ObserveInsertText(d, tc, text) })
}

// InsertString inserts a string at tc; see InsertText.
func (d *Document) InsertString(tc Coord, text string) {
	d.InsertText(tc, []byte(text))
}

// DeleteTextBytes deletes length bytes at and to the right of tc. The
// range must lie within the single line.
func (d *Document) DeleteTextBytes(tc Coord, length int) {
	d.bctc(tc)
	if length < 0 || tc.Byte+length > d.LineLengthBytes(tc.Line) {
		panic("textwerk: deletion range extends past end of line")
	}
	d.beginMutation()

	if tc.Byte == 0 && length == d.LineLengthBytes(tc.Line) && tc.Line != d.recent {
		// Removing an entire cold line: drop the allocation, no need to
		// disturb the recent-line cache.
		d.lines.Set(tc.Line, nil)
	} else {
		d.attachRecent(tc, 0)
		d.recentLine.RemoveMany(tc.Byte, length)
	}

	d.notify(func(o Observer) { o.ObserveDeleteText(d, tc, length) })
}

// --------------------- line contents ------------------------

// GetPartialLine returns n bytes of line contents starting at tc. All of
// the requested bytes must currently exist on the line.
func (d *Document) GetPartialLine(tc Coord, n int) []byte {
	d.bc(tc.Line)
	if n < 0 || tc.Byte < 0 || tc.Byte+n > d.LineLengthBytes(tc.Line) {
		panic("textwerk: partial line read out of range")
	}

	dest := make([]byte, n)
	if tc.Line == d.recent {
		d.recentLine.WriteIntoArray(dest, n, tc.Byte)
	} else {
		copy(dest, d.lines.Get(tc.Line)[tc.Byte:])
	}
	return dest
}

// GetWholeLine returns a copy of the given line's bytes, without any
// newline.
func (d *Document) GetWholeLine(line int) []byte {
	return d.GetPartialLine(Coord{Line: line}, d.LineLengthBytes(line))
}

// GetTextSpanningLines retrieves n bytes starting at tc, which must be
// valid. Line boundaries appear in the result as '\n'. If the span runs
// past the end of the document, ok is false and text is nil.
func (d *Document) GetTextSpanningLines(tc Coord, n int) (text []byte, ok bool) {
	d.bctc(tc)

	out := make([]byte, 0, n)
	for len(out) < n {
		remaining := d.LineLengthBytes(tc.Line) - tc.Byte

		if n-len(out) <= remaining {
			out = append(out, d.GetPartialLine(tc, n-len(out))...)
			return out, true
		}

		out = append(out, d.GetPartialLine(tc, remaining)...)
		out = append(out, '\n')

		tc.Line++
		tc.Byte = 0
		if tc.Line >= d.NumLines() {
			return nil, false
		}
	}
	return out, true
}

// GetTextRange returns the bytes in the given range, which must be valid.
// Line boundaries appear in the result as '\n'.
func (d *Document) GetTextRange(r CoordRange) []byte {
	if !d.ValidRange(r) {
		panic("textwerk: invalid range " + r.String())
	}
	text, ok := d.GetTextSpanningLines(r.Start, d.CountBytesInRange(r))
	if !ok {
		panic("textwerk: range unexpectedly exceeds document")
	}
	return text
}

// CountBytesInRange computes the number of bytes in a valid range,
// counting each line boundary as one byte.
func (d *Document) CountBytesInRange(r CoordRange) int {
	if !d.ValidRange(r) {
		panic("textwerk: invalid range " + r.String())
	}

	if r.WithinOneLine() {
		return r.End.Byte - r.Start.Byte
	}

	// Rest of the first line, plus its newline.
	n := d.LineLengthBytes(r.Start.Line) - r.Start.Byte + 1
	for line := r.Start.Line + 1; line < r.End.Line; line++ {
		n += d.LineLengthBytes(line) + 1
	}
	return n + r.End.Byte
}

// WalkCoordBytes walks tc forward (right, then down, when distance > 0) or
// backward (left, then up, when distance < 0) through the valid
// coordinates of the document, counting each line boundary as one byte.
// tc must initially be valid; if the walk would leave the document the
// function returns false.
func (d *Document) WalkCoordBytes(tc Coord, distance int) (Coord, bool) {
	d.bctc(tc)

	for ; distance > 0; distance-- {
		if tc.Byte == d.LineLengthBytes(tc.Line) {
			tc.Line++
			if tc.Line >= d.NumLines() {
				return tc, false
			}
			tc.Byte = 0
		} else {
			tc.Byte++
		}
	}

	for ; distance < 0; distance++ {
		if tc.Byte == 0 {
			tc.Line--
			if tc.Line < 0 {
				return tc, false
			}
			tc.Byte = d.LineLengthBytes(tc.Line)
		} else {
			tc.Byte--
		}
	}

	return tc, true
}

// WalkBackwards is the reverse-direction walk: it moves tc backward by
// distance bytes.
func (d *Document) WalkBackwards(tc Coord, distance int) (Coord, bool) {
	return d.WalkCoordBytes(tc, -distance)
}

// AdjustCoord clamps tc to the nearest valid coordinate and reports
// whether any change was made.
func (d *Document) AdjustCoord(tc *Coord) bool {
	adjusted := *tc

	if adjusted.Line < 0 {
		adjusted = Coord{}
	} else if adjusted.Line >= d.NumLines() {
		adjusted = Coord{Line: d.NumLines() - 1}
	}

	if adjusted.Byte < 0 {
		adjusted.Byte = 0
	} else if n := d.LineLengthBytes(adjusted.Line); adjusted.Byte > n {
		adjusted.Byte = n
	}

	if adjusted == *tc {
		return false
	}
	*tc = adjusted
	return true
}

// AdjustRange clamps both endpoints of r to validity, then rectifies a
// range whose end precedes its start by collapsing the end onto the
// start. Reports whether any change was made.
func (d *Document) AdjustRange(r *CoordRange) bool {
	changed := d.AdjustCoord(&r.Start)
	changed = d.AdjustCoord(&r.End) || changed

	if r.End.Less(r.Start) {
		r.End = r.Start
		changed = true
	}
	return changed
}

// isSpaceOrTab reports whether b is a space or tab byte.
func isSpaceOrTab(b byte) bool {
	return b == ' ' || b == '\t'
}

// CountLeadingSpacesTabs returns the number of consecutive space and tab
// bytes at the start of the given line.
func (d *Document) CountLeadingSpacesTabs(line int) int {
	d.bc(line)

	if line == d.recent {
		i := 0
		for i < d.recentLine.Length() && isSpaceOrTab(d.recentLine.Get(i)) {
			i++
		}
		return i
	}

	p := d.lines.Get(line)
	i := 0
	for i < len(p) && isSpaceOrTab(p[i]) {
		i++
	}
	return i
}

// CountTrailingSpacesTabs returns the number of consecutive space and tab
// bytes at the end of the given line.
func (d *Document) CountTrailingSpacesTabs(line int) int {
	d.bc(line)

	if line == d.recent {
		i := d.recentLine.Length()
		for i > 0 && isSpaceOrTab(d.recentLine.Get(i-1)) {
			i--
		}
		return d.recentLine.Length() - i
	}

	p := d.lines.Get(line)
	i := len(p)
	for i > 0 && isSpaceOrTab(p[i-1]) {
		i--
	}
	return len(p) - i
}

// ---------------------- whole file -------------------------

// Clear returns the document to its initial state of one empty line.
func (d *Document) Clear() {
	for d.NumLines() > 1 {
		d.DeleteTextBytes(Coord{}, d.LineLengthBytes(0))
		d.DeleteLine(0)
	}
	d.DeleteTextBytes(Coord{}, d.LineLengthBytes(0))
}

// SwapWith exchanges the contents of two documents. Observer lists stay
// with their documents; both sides receive ObserveTotalChange.
func (d *Document) SwapWith(other *Document) {
	if d == other {
		return
	}
	d.beginMutation()
	other.beginMutation()

	d.lines.SwapWith(&other.lines)
	d.recent, other.recent = other.recent, d.recent
	d.recentLine.SwapWith(&other.recentLine)
	d.longestLengthSoFar, other.longestLengthSoFar =
		other.longestLengthSoFar, d.longestLengthSoFar

	d.notify(func(o Observer) { o.ObserveTotalChange(d) })
	other.notify(func(o Observer) { o.ObserveTotalChange(other) })
}

// ---------------------- iterator ----------------------------

// LineIterator iterates over the bytes of one line. While any iterator
// exists the document cannot be mutated; Close releases the pin.
//
// Unlike most Document methods, the line number may be out of bounds, in
// which case the iterator behaves as if the line were empty.
type LineIterator struct {
	doc    *Document
	line   []byte // nil when iterating the recent line
	recent bool
	offset int
	length int
	closed bool
}

// IterateLine creates an iterator over the given line and pins the
// document against mutation until Close is called.
func (d *Document) IterateLine(line int) *LineIterator {
	it := &LineIterator{doc: d}
	if 0 <= line && line < d.NumLines() {
		if line == d.recent {
			it.recent = true
			it.length = d.recentLine.Length()
		} else {
			it.line = d.lines.Get(line)
			it.length = len(it.line)
		}
	}
	d.iteratorCount++
	return it
}

// Has reports whether the iterator has not yet reached the end of the
// line.
func (it *LineIterator) Has() bool {
	return it.offset < it.length
}

// ByteOffset returns the iterator's position within the line. It is legal
// to call this when !Has(), in which case it returns the line length.
func (it *LineIterator) ByteOffset() int {
	return it.offset
}

// ByteAt returns the byte at the current position. Requires Has().
func (it *LineIterator) ByteAt() byte {
	if !it.Has() {
		panic("textwerk: line iterator read past end of line")
	}
	if it.recent {
		return it.doc.recentLine.Get(it.offset)
	}
	return it.line[it.offset]
}

// Advance moves to the next byte. Requires Has().
func (it *LineIterator) Advance() {
	if !it.Has() {
		panic("textwerk: line iterator advanced past end of line")
	}
	it.offset++
}

// Close releases the iterator's pin on the document. Closing twice is
// harmless.
func (it *LineIterator) Close() {
	if !it.closed {
		it.closed = true
		it.doc.iteratorCount--
	}
}

// ---------------------- debugging ---------------------------

// DocumentInternals is a deterministic dump of a document's internal
// state, used by snapshot tests.
type DocumentInternals struct {
	Lines              []string // spine contents; recent slot rendered empty
	Recent             int
	RecentLine         string
	LongestLengthSoFar int
	Version            uint64
	NumObservers       int
	IteratorCount      int
}

// AllLines returns every line of the document as a string.
func (d *Document) AllLines() []string {
	out := make([]string, d.NumLines())
	for i := range out {
		out[i] = string(d.GetWholeLine(i))
	}
	return out
}

// DumpInternals captures the internal representation for inspection.
func (d *Document) DumpInternals() DocumentInternals {
	spine := make([]string, d.lines.Length())
	for i := range spine {
		spine[i] = string(d.lines.Get(i))
	}
	return DocumentInternals{
		Lines:              spine,
		Recent:             d.recent,
		RecentLine:         string(d.recentLine.Elements()),
		LongestLengthSoFar: d.longestLengthSoFar,
		Version:            d.version,
		NumObservers:       len(d.observers),
		IteratorCount:      d.iteratorCount,
	}
}

// SelfCheck panics if an internal invariant is broken.
func (d *Document) SelfCheck() {
	if d.NumLines() < 1 {
		panic("textwerk: document has no lines")
	}
	if d.recent < -1 || d.recent >= d.NumLines() {
		panic("textwerk: recent line out of range")
	}
	if d.recent >= 0 {
		if d.lines.Get(d.recent) != nil {
			panic("textwerk: recent line has a non-nil spine slot")
		}
	} else if d.recentLine.Length() != 0 {
		panic("textwerk: recent buffer not empty while no line is recent")
	}
	for i := 0; i < d.NumLines(); i++ {
		if d.LineLengthBytes(i) > d.longestLengthSoFar {
			panic("textwerk: longest-length tracker fell behind")
		}
	}
}
