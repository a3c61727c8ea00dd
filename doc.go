// Package textwerk provides the editable text document core of a text
// editor: an in-memory representation of a file as a sequence of lines
// with efficient localized edits, an observer notification protocol, an
// invertible undo/redo engine, and an incremental line-by-line search
// index that tracks the document.
//
// # Overview
//
// The package is organized as a small stack of cooperating types:
//
//   - GapBuffer: a generic growable sequence with a movable gap, giving
//     O(1) amortized insertions and deletions at the editing position
//   - Document: the line-structured buffer. Lines are stored as compact
//     byte slices in a gap-buffer spine; the most-recently edited line is
//     promoted into its own gap buffer so typing at the cursor is cheap
//   - TextDocument: a Document plus an invertible edit history with
//     nestable undo groups and saved-state tracking
//   - Search: a per-line match table kept synchronized with the document
//     through the observer protocol, with literal and regex modes
//   - RLESequence and LineCategories: run-length encoded descriptions of
//     per-byte styling, used by higher layers for category overlays
//   - Watcher: an fsnotify-based helper that reloads a document when its
//     file changes on disk
//
// # Coordinates and encoding
//
// Positions are Coord values: a 0-based line number and a 0-based byte
// index within the line. The core is encoding-agnostic over bytes; UTF-8
// is the recommended convention, and callers that insert UTF-8 must keep
// coordinates aligned to sequence boundaries. Files use '\n' as the sole
// line separator: lines are separated, not terminated, so a 0-byte file
// is a document of one empty line and final lines without a newline
// round-trip unchanged.
//
// # Observers
//
// Every mutation notifies registered observers after the document's
// internal state is consistent, in registration order. The history engine
// and the search index are both built on this protocol, and UI layers
// attach the same way.
//
// # Concurrency
//
// A document is single-threaded: even read paths may promote a line into
// the recent-line cache. Callers that need concurrent access must
// serialize externally.
package textwerk
