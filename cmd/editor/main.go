// Command editor is a small terminal text editor demonstrating the
// textwerk document core: gap-buffered editing, undo/redo groups,
// incremental search highlighting and atomic file I/O.
//
// Usage:
//
//	editor [file]
//
// Keys:
//   - Arrows, Home, End, PgUp, PgDn: navigation
//   - Ctrl+Z / Ctrl+Y: undo / redo
//   - Ctrl+F: incremental search (Enter/Esc to leave, n/N via F3/Shift+F3)
//   - Ctrl+K: cut line, Ctrl+C: copy line, Ctrl+V: paste
//   - Ctrl+S: save, Ctrl+Q: quit
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/tekugo/textwerk"
)

// editor holds the interactive state around a TextDocument.
type editor struct {
	doc    *textwerk.TextDocument
	search *textwerk.Search
	screen tcell.Screen
	path   string

	cursor           textwerk.Coord
	offsetX, offsetY int

	searching bool
	query     string
	status    string
	quit      bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "editor:", err)
		os.Exit(1)
	}
}

func run() error {
	ed := &editor{doc: textwerk.NewTextDocument()}

	if len(os.Args) > 1 {
		ed.path = os.Args[1]
		if err := ed.doc.ReadFile(ed.path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			ed.status = "new file: " + ed.path
		}
	}

	ed.search = textwerk.NewSearch(ed.doc.Core())
	defer ed.search.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	ed.screen = screen

	for !ed.quit {
		ed.render()
		ed.handle(screen.PollEvent())
	}
	return nil
}

// ---- rendering ----

// displayWidth measures a string in terminal cells, grapheme-aware.
func displayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// visualColumn converts the cursor byte offset into a terminal column.
func (ed *editor) visualColumn() int {
	line := string(ed.doc.Core().GetWholeLine(ed.cursor.Line))
	if ed.cursor.Byte > len(line) {
		return displayWidth(line)
	}
	return displayWidth(line[:ed.cursor.Byte])
}

func (ed *editor) render() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	textH := h - 1

	ed.adjustViewport(w, textH)

	normal := tcell.StyleDefault
	hit := tcell.StyleDefault.Reverse(true)

	for row := 0; row < textH; row++ {
		line := ed.offsetY + row
		if line >= ed.doc.NumLines() {
			break
		}
		text := string(ed.doc.Core().GetWholeLine(line))

		// Overlay search hits on this line.
		overlay := map[int]bool{}
		if ed.search.CountLineMatches(line) > 0 {
			for _, m := range ed.search.LineMatches(line) {
				for i := m.Start; i < m.Start+m.Length; i++ {
					overlay[i] = true
				}
			}
		}

		col := -ed.offsetX
		byteAt := 0
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			cluster := g.Str()
			width := displayWidth(cluster)
			if col >= 0 && col < w {
				style := normal
				if overlay[byteAt] {
					style = hit
				}
				runes := []rune(cluster)
				ed.screen.SetContent(col, row, runes[0], runes[1:], style)
			}
			col += width
			byteAt += len(cluster)
		}
	}

	ed.renderStatus(w, h-1)

	ed.screen.ShowCursor(ed.visualColumn()-ed.offsetX, ed.cursor.Line-ed.offsetY)
	ed.screen.Show()
}

func (ed *editor) renderStatus(w, row int) {
	left := ed.path
	if left == "" {
		left = "[no name]"
	}
	if ed.doc.UnsavedChanges() {
		left += " *"
	}
	if ed.searching {
		left = "/" + ed.query
		if ed.search.CountAllMatches() > 0 {
			left += fmt.Sprintf("  (%d matches)", ed.search.CountAllMatches())
		}
	} else if ed.status != "" {
		left += "  " + ed.status
	}
	right := fmt.Sprintf("%d:%d", ed.cursor.Line+1, ed.cursor.Byte)

	style := tcell.StyleDefault.Reverse(true)
	line := left + strings.Repeat(" ", max(1, w-displayWidth(left)-displayWidth(right))) + right
	col := 0
	for _, r := range line {
		if col >= w {
			break
		}
		ed.screen.SetContent(col, row, r, nil, style)
		col++
	}
}

func (ed *editor) adjustViewport(w, h int) {
	if h <= 0 || w <= 0 {
		return
	}
	if ed.cursor.Line < ed.offsetY {
		ed.offsetY = ed.cursor.Line
	} else if ed.cursor.Line >= ed.offsetY+h {
		ed.offsetY = ed.cursor.Line - h + 1
	}

	vc := ed.visualColumn()
	if vc < ed.offsetX {
		ed.offsetX = vc
	} else if vc >= ed.offsetX+w {
		ed.offsetX = vc - w + 1
	}
}

// ---- cursor movement ----

// clampCursor keeps the cursor on a valid coordinate.
func (ed *editor) clampCursor() {
	ed.doc.Core().AdjustCoord(&ed.cursor)
}

func (ed *editor) left() {
	if tc, ok := ed.doc.Core().WalkBackwards(ed.cursor, 1); ok {
		ed.cursor = tc
	}
}

func (ed *editor) right() {
	if tc, ok := ed.doc.Core().WalkCoordBytes(ed.cursor, 1); ok {
		ed.cursor = tc
	}
}

func (ed *editor) vertical(delta int) {
	ed.cursor.Line += delta
	ed.clampCursor()
}

// ---- editing ----

func (ed *editor) insert(text string) {
	ed.doc.BeginUndoGroup()
	defer ed.doc.EndUndoGroup()
	if err := ed.doc.InsertStringAt(ed.cursor, text); err != nil {
		ed.status = err.Error()
		return
	}
	ed.advancePast(text)
}

// advancePast moves the cursor to the end of just-inserted text.
func (ed *editor) advancePast(text string) {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		ed.cursor.Line += strings.Count(text, "\n")
		ed.cursor.Byte = len(text) - i - 1
	} else {
		ed.cursor.Byte += len(text)
	}
}

func (ed *editor) backspace() {
	tc, ok := ed.doc.Core().WalkBackwards(ed.cursor, 1)
	if !ok {
		return
	}
	if err := ed.doc.DeleteAt(tc, 1); err != nil {
		ed.status = err.Error()
		return
	}
	ed.cursor = tc
}

func (ed *editor) deleteForward() {
	if _, ok := ed.doc.Core().WalkCoordBytes(ed.cursor, 1); !ok {
		return
	}
	if err := ed.doc.DeleteAt(ed.cursor, 1); err != nil {
		ed.status = err.Error()
	}
}

func (ed *editor) undo() {
	if !ed.doc.CanUndo() {
		ed.status = "nothing to undo"
		return
	}
	tc, err := ed.doc.Undo()
	if err != nil {
		ed.status = err.Error()
		return
	}
	ed.cursor = tc
	ed.clampCursor()
}

func (ed *editor) redo() {
	if !ed.doc.CanRedo() {
		ed.status = "nothing to redo"
		return
	}
	tc, err := ed.doc.Redo()
	if err != nil {
		ed.status = err.Error()
		return
	}
	ed.cursor = tc
	ed.clampCursor()
}

// cutLine removes the current line (including its separator) onto the
// clipboard.
func (ed *editor) cutLine() {
	core := ed.doc.Core()
	line := ed.cursor.Line
	text := string(core.GetWholeLine(line))

	start := textwerk.Coord{Line: line}
	count := core.LineLengthBytes(line)
	if line < ed.doc.NumLines()-1 {
		count++ // take the separator too
	}
	if count == 0 {
		return
	}
	if err := clipboard.WriteAll(text + "\n"); err != nil {
		ed.status = err.Error()
		return
	}
	if err := ed.doc.DeleteAt(start, count); err != nil {
		ed.status = err.Error()
		return
	}
	ed.cursor = start
	ed.clampCursor()
}

func (ed *editor) copyLine() {
	text := string(ed.doc.Core().GetWholeLine(ed.cursor.Line))
	if err := clipboard.WriteAll(text + "\n"); err != nil {
		ed.status = err.Error()
	}
}

func (ed *editor) paste() {
	text, err := clipboard.ReadAll()
	if err != nil {
		ed.status = err.Error()
		return
	}
	ed.insert(text)
}

func (ed *editor) save() {
	if ed.path == "" {
		ed.status = "no file name"
		return
	}
	if err := ed.doc.WriteFile(ed.path); err != nil {
		ed.status = err.Error()
		return
	}
	ed.doc.NoUnsavedChanges()
	ed.status = "saved " + ed.path
}

// ---- search ----

func (ed *editor) findNext(reverse bool) {
	r := textwerk.CoordRange{Start: ed.cursor, End: ed.cursor}
	if ed.search.NextMatch(reverse, &r) {
		ed.cursor = r.Start
	} else {
		ed.status = "no more matches"
	}
}

// ---- input ----

func (ed *editor) handle(ev tcell.Event) {
	ed.status = ""

	switch ev := ev.(type) {
	case *tcell.EventResize:
		ed.screen.Sync()

	case *tcell.EventKey:
		if ed.searching {
			ed.handleSearchKey(ev)
			return
		}
		ed.handleKey(ev)
	}
}

func (ed *editor) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		ed.searching = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.query) > 0 {
			ed.query = ed.query[:len(ed.query)-1]
			ed.search.SetSearchString(ed.query)
		}
	case tcell.KeyRune:
		ed.query += string(ev.Rune())
		ed.search.SetSearchString(ed.query)
		ed.findNext(false)
	}
}

func (ed *editor) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyLeft:
		ed.left()
	case tcell.KeyRight:
		ed.right()
	case tcell.KeyUp:
		ed.vertical(-1)
	case tcell.KeyDown:
		ed.vertical(+1)
	case tcell.KeyHome:
		ed.cursor.Byte = 0
	case tcell.KeyEnd:
		ed.cursor.Byte = ed.doc.LineLengthBytes(ed.cursor.Line)
	case tcell.KeyPgUp:
		_, h := ed.screen.Size()
		ed.vertical(-(h - 1))
	case tcell.KeyPgDn:
		_, h := ed.screen.Size()
		ed.vertical(h - 1)
	case tcell.KeyEnter:
		ed.insert("\n")
	case tcell.KeyTab:
		ed.insert("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.backspace()
	case tcell.KeyDelete:
		ed.deleteForward()
	case tcell.KeyCtrlZ:
		ed.undo()
	case tcell.KeyCtrlY:
		ed.redo()
	case tcell.KeyCtrlF:
		ed.searching = true
		ed.query = ""
		ed.search.SetSearchString("")
	case tcell.KeyF3:
		ed.findNext(ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyCtrlK:
		ed.cutLine()
	case tcell.KeyCtrlC:
		ed.copyLine()
	case tcell.KeyCtrlV:
		ed.paste()
	case tcell.KeyCtrlS:
		ed.save()
	case tcell.KeyCtrlQ:
		ed.quit = true
	case tcell.KeyRune:
		ed.insert(string(ev.Rune()))
	}
}
