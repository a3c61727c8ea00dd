package textwerk

import "bytes"

// This file holds the composite operations built from the four mutation
// primitives: whole-file import/export and multi-line replacement. The
// primitives never see an embedded '\n'; everything here decomposes its
// input into single-line edits plus line insertions/deletions, so that
// observers receive the same notification stream no matter which entry
// point performed the edit.

// insertMultiline inserts text, which may contain newlines, at tc. The
// coordinate must be valid. Text after the insertion point on the first
// line is floated down to the end of the inserted text.
func (d *Document) insertMultiline(tc Coord, text []byte) {
	begin := tc

	// Text on the first line to the right of the insertion point, saved
	// and re-appended after the final inserted segment.
	var excess []byte

	for len(text) > 0 || tc == begin {
		segment := text
		newline := false
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			segment = text[:i]
			newline = true
		}

		if len(segment) > 0 {
			d.InsertText(tc, segment)
			tc.Byte += len(segment)
		}

		if !newline {
			break
		}

		// The tail of the starting line moves to the end of the insertion;
		// this can only happen on the first line.
		if tc.Line == begin.Line && tc.Byte < d.LineLengthBytes(tc.Line) {
			n := d.LineLengthBytes(tc.Line) - tc.Byte
			excess = d.GetPartialLine(tc, n)
			d.DeleteTextBytes(tc, n)
		}

		tc.Line++
		d.InsertLine(tc.Line)
		tc.Byte = 0

		text = text[len(segment)+1:]
	}

	if len(excess) > 0 {
		d.InsertText(tc, excess)
	}
}

// deleteMultiline deletes n bytes at and to the right of tc, which must be
// valid; the span may cross line boundaries, each counting as one byte,
// and must lie within the document.
func (d *Document) deleteMultiline(tc Coord, n int) {
	text, ok := d.GetTextSpanningLines(tc, n)
	if !ok {
		panic("textwerk: deletion span extends past end of document")
	}

	// Whether the partially-deleted first line still needs the remainder
	// of the final line spliced onto it.
	pendingSplice := false

	for len(text) > 0 {
		segment := text
		newline := false
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			segment = text[:i]
			newline = true
		}

		if len(segment) > 0 {
			d.DeleteTextBytes(tc, len(segment))
		}

		if !newline {
			break
		}

		if tc.Byte == 0 {
			// The line is now empty; remove it entirely.
			d.DeleteLine(tc.Line)
		} else {
			// Move on to whole-line deletions, remembering the splice.
			tc.Line++
			tc.Byte = 0
			pendingSplice = true
		}

		text = text[len(segment)+1:]
	}

	if pendingSplice {
		// The final line's remainder joins the end of the first line.
		splice := d.GetWholeLine(tc.Line)
		d.DeleteTextBytes(tc, len(splice))
		d.DeleteLine(tc.Line)

		tc.Line--
		tc.Byte = d.LineLengthBytes(tc.Line)
		if len(splice) > 0 {
			d.InsertText(tc, splice)
		}
	}
}

// ReplaceMultilineRange deletes the given range, which must be valid, and
// inserts text in its place. The text may contain newlines.
func (d *Document) ReplaceMultilineRange(r CoordRange, text []byte) {
	if !d.ValidRange(r) {
		panic("textwerk: invalid range " + r.String())
	}
	d.deleteMultiline(r.Start, d.CountBytesInRange(r))
	d.insertMultiline(r.Start, text)
}

// ReplaceMultilineRangeString is ReplaceMultilineRange for a string.
func (d *Document) ReplaceMultilineRangeString(r CoordRange, text string) {
	d.ReplaceMultilineRange(r, []byte(text))
}

// GetWholeFile returns the document contents in on-disk form: lines joined
// by single '\n' separators, with no newline after the final line.
func (d *Document) GetWholeFile() []byte {
	var out bytes.Buffer
	for line := 0; line < d.NumLines(); line++ {
		out.Write(d.GetWholeLine(line))
		if line < d.NumLines()-1 {
			out.WriteByte('\n')
		}
	}
	return out.Bytes()
}

// GetWholeFileString returns the document contents as a string; see
// GetWholeFile.
func (d *Document) GetWholeFileString() string {
	return string(d.GetWholeFile())
}

// setWholeFile clears the document and streams contents into it through
// the mutation primitives.
func (d *Document) setWholeFile(contents []byte) {
	d.Clear()

	tc := Coord{}
	for len(contents) > 0 {
		segment := contents
		newline := false
		if i := bytes.IndexByte(contents, '\n'); i >= 0 {
			segment = contents[:i]
			newline = true
		}

		if len(segment) > 0 {
			d.InsertText(tc, segment)
			tc.Byte += len(segment)
		}

		if !newline {
			break
		}
		tc.Line++
		d.InsertLine(tc.Line)
		tc.Byte = 0
		contents = contents[len(segment)+1:]
	}
}

// ReplaceWholeFile atomically replaces the document contents with the
// given bytes, interpreted with the LF-separator convention. Observers
// receive a single ObserveTotalChange.
func (d *Document) ReplaceWholeFile(contents []byte) {
	tmp := NewDocument()
	tmp.setWholeFile(contents)
	d.SwapWith(tmp)
}

// ReplaceWholeFileString is ReplaceWholeFile for a string.
func (d *Document) ReplaceWholeFileString(contents string) {
	d.ReplaceWholeFile([]byte(contents))
}

// Equal reports whether two documents have identical line contents.
func (d *Document) Equal(other *Document) bool {
	if d.NumLines() != other.NumLines() {
		return false
	}
	for line := 0; line < d.NumLines(); line++ {
		if !bytes.Equal(d.GetWholeLine(line), other.GetWholeLine(line)) {
			return false
		}
	}
	return true
}
