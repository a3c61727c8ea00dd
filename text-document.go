package textwerk

import "strings"

// TextDocument is a Document together with its undo/redo history. All
// writes go through this type so that every edit produces an invertible
// history element; reads are forwarded to the core.
type TextDocument struct {
	// The sequence of text lines, without any history information.
	core *Document

	// Modification history. Usually historyIndex == history.SeqLength(),
	// meaning we are at the end of the recorded history; undo and redo
	// move historyIndex and the core but never history itself.
	history      Group
	historyIndex int

	// The index in history corresponding to the file's on-disk contents,
	// or -1 if no index is known to correspond. The client reports saves
	// through NoUnsavedChanges; this tracks divergence from that point.
	savedHistoryIndex int

	// Stack of open groups. Elements recorded while a group is open
	// accumulate there instead of in history. Typically empty or one
	// deep, but nesting is allowed.
	groupStack []*Group

	// If true, the user interface should prevent modification. The
	// methods of this type do not enforce it; that is a UI concern.
	readOnly bool
}

// NewTextDocument creates an empty document with empty history.
func NewTextDocument() *TextDocument {
	return &TextDocument{
		core: NewDocument(),
	}
}

// Core returns the underlying Document for read access and observer
// registration.
func (td *TextDocument) Core() *Document {
	return td.core
}

// ------------------------ query forwarding -----------------------

func (td *TextDocument) NumLines() int                 { return td.core.NumLines() }
func (td *TextDocument) LineLengthBytes(line int) int  { return td.core.LineLengthBytes(line) }
func (td *TextDocument) ValidCoord(tc Coord) bool      { return td.core.ValidCoord(tc) }
func (td *TextDocument) EndCoord() Coord               { return td.core.EndCoord() }
func (td *TextDocument) MaxLineLengthBytes() int       { return td.core.MaxLineLengthBytes() }
func (td *TextDocument) NumLinesExceptFinalEmpty() int { return td.core.NumLinesExceptFinalEmpty() }
func (td *TextDocument) GetWholeFileString() string    { return td.core.GetWholeFileString() }

// IsReadOnly reports the advisory read-only flag.
func (td *TextDocument) IsReadOnly() bool {
	return td.readOnly
}

// SetReadOnly changes the advisory read-only flag.
func (td *TextDocument) SetReadOnly(readOnly bool) {
	td.readOnly = readOnly
}

// ------------------------ observers ------------------------------

// AddObserver registers an observer of the underlying document.
func (td *TextDocument) AddObserver(o Observer) {
	td.core.AddObserver(o)
}

// RemoveObserver unregisters an observer of the underlying document.
func (td *TextDocument) RemoveObserver(o Observer) {
	td.core.RemoveObserver(o)
}

// ------------------------ global changes -------------------------

// ClearHistory discards the undo/redo history, leaving the document
// contents alone. Afterward no history index corresponds to the on-disk
// state.
func (td *TextDocument) ClearHistory() {
	td.historyIndex = 0
	td.savedHistoryIndex = -1
	td.history.Truncate(0)
	td.groupStack = nil

	td.core.notify(func(o Observer) { o.ObserveUnsavedChangesChange(td) })
}

// ClearContentsAndHistory clears both the contents and the history.
func (td *TextDocument) ClearContentsAndHistory() {
	td.ClearHistory()
	td.core.Clear()
}

// ReadFile replaces the contents with the named file. The read is atomic:
// on error the document is unmodified. On success the history is cleared,
// even if undo groups were open, and the new state is marked saved.
func (td *TextDocument) ReadFile(path string) error {
	if err := td.core.ReadFile(path); err != nil {
		return err
	}
	td.ClearHistory()
	td.NoUnsavedChanges()
	return nil
}

// WriteFile writes the contents to the named file. It does not change the
// saved state; callers decide when to call NoUnsavedChanges.
func (td *TextDocument) WriteFile(path string) error {
	return td.core.WriteFile(path)
}

// ------------- modify document, appending to history -----------

// appendElement adds an element to the open group, or directly to the
// history if no group is open. A direct append truncates any redoable
// tail first.
func (td *TextDocument) appendElement(e HistoryElement) {
	if n := len(td.groupStack); n > 0 {
		td.groupStack[n-1].Append(e)
		return
	}

	td.history.Truncate(td.historyIndex)
	td.history.Append(e)
	td.bumpHistoryIndex(+1)
}

// bumpHistoryIndex moves the history index and notifies observers when
// the answer to "are there unsaved changes?" may have flipped.
func (td *TextDocument) bumpHistoryIndex(inc int) {
	equalBefore := td.historyIndex == td.savedHistoryIndex
	td.historyIndex += inc
	equalAfter := td.historyIndex == td.savedHistoryIndex

	if equalBefore != equalAfter {
		td.core.notify(func(o Observer) { o.ObserveUnsavedChangesChange(td) })
	}
}

// InsertAt inserts text at tc, which must be valid. The text may contain
// newlines. Inserting nothing records nothing.
func (td *TextDocument) InsertAt(tc Coord, text []byte) error {
	if len(text) == 0 {
		return nil
	}

	e := NewInsertion(tc, text)
	if _, err := e.Apply(td.core, false); err != nil {
		return err
	}
	td.appendElement(e)
	return nil
}

// InsertStringAt inserts a string; see InsertAt.
func (td *TextDocument) InsertStringAt(tc Coord, text string) error {
	return td.InsertAt(tc, []byte(text))
}

// DeleteAt deletes count bytes at and to the right of tc, which must be
// valid. The span may cross lines; each line boundary counts as one byte.
func (td *TextDocument) DeleteAt(tc Coord, count int) error {
	if count <= 0 {
		return nil
	}

	e := NewDeletion(tc)
	e.ComputeText(td.core, count)
	if _, err := e.Apply(td.core, false); err != nil {
		return err
	}
	td.appendElement(e)
	return nil
}

// AppendText inserts text at the end of the document.
func (td *TextDocument) AppendText(text []byte) error {
	return td.InsertAt(td.core.EndCoord(), text)
}

// AppendString inserts a string at the end of the document.
func (td *TextDocument) AppendString(text string) error {
	return td.AppendText([]byte(text))
}

// -------------------------- undo/redo --------------------------

// BeginUndoGroup opens a group; edits recorded until the matching
// EndUndoGroup collapse into a single undo step.
func (td *TextDocument) BeginUndoGroup() {
	td.groupStack = append(td.groupStack, &Group{})
}

// EndUndoGroup closes the innermost open group. A group with two or more
// elements is appended as a unit; a group of one is unwrapped; an empty
// group is dropped. Calling with no open group is a silent no-op, which
// happens when a file reload cleared the stack underneath an open group.
func (td *TextDocument) EndUndoGroup() {
	n := len(td.groupStack)
	if n == 0 {
		return
	}

	g := td.groupStack[n-1]
	td.groupStack = td.groupStack[:n-1]

	switch {
	case g.SeqLength() >= 2:
		td.appendElement(g)
	case g.SeqLength() == 1:
		// Throw away the useless group container.
		td.appendElement(g.PopLastElement())
	}
}

// InUndoGroup reports whether a group is open. Undo and redo are not
// allowed in that case, even though CanUndo and CanRedo may return true.
func (td *TextDocument) InUndoGroup() bool {
	return len(td.groupStack) > 0
}

// CanUndo reports whether there is history to undo.
func (td *TextDocument) CanUndo() bool {
	return td.historyIndex > 0
}

// CanRedo reports whether there is history to redo.
func (td *TextDocument) CanRedo() bool {
	return td.historyIndex < td.history.SeqLength()
}

// Undo reverses the most recent edit and returns the coordinate at the
// left edge of the modified text. Requires CanUndo() and no open group.
func (td *TextDocument) Undo() (Coord, error) {
	if !td.CanUndo() || td.InUndoGroup() {
		panic("textwerk: undo without undoable history")
	}

	td.bumpHistoryIndex(-1)
	return td.history.ApplyOne(td.core, td.historyIndex, true)
}

// Redo re-applies the most recently undone edit and returns the
// coordinate at the left edge of the modified text. Requires CanRedo()
// and no open group.
func (td *TextDocument) Redo() (Coord, error) {
	if !td.CanRedo() || td.InUndoGroup() {
		panic("textwerk: redo without redoable history")
	}

	tc, err := td.history.ApplyOne(td.core, td.historyIndex, false)
	if err != nil {
		return tc, err
	}
	td.bumpHistoryIndex(+1)
	return tc, nil
}

// UnsavedChanges reports whether the current contents differ from the
// state last marked saved. Open groups count as unsaved once they contain
// a modification.
func (td *TextDocument) UnsavedChanges() bool {
	if td.savedHistoryIndex != td.historyIndex {
		return true
	}
	// Even at the saved index, an open group may hold changes that have
	// not yet been folded into the history.
	for _, g := range td.groupStack {
		if g.SeqLength() > 0 {
			return true
		}
	}
	return false
}

// NoUnsavedChanges records the current history index as the one matching
// the on-disk contents.
func (td *TextDocument) NoUnsavedChanges() {
	td.savedHistoryIndex = td.historyIndex

	// This is called rarely; notifying unconditionally is fine.
	td.core.notify(func(o Observer) { o.ObserveUnsavedChangesChange(td) })
}

// HistoryString renders the recorded history in a textual format with the
// current index marked, for diagnostics and snapshot tests.
func (td *TextDocument) HistoryString() string {
	var sb strings.Builder
	sb.WriteString("history {\n")
	for i, e := range td.history.seq {
		if i == td.historyIndex {
			sb.WriteString("--->\n")
		}
		sb.WriteString(describe(e, "  "))
	}
	if td.historyIndex == len(td.history.seq) {
		sb.WriteString("--->\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
