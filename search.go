package textwerk

import (
	"errors"
	"regexp"
	"regexp/syntax"
	"strings"
)

// SearchFlags control the interpretation of a search string.
type SearchFlags uint8

const (
	// SearchLiteral means the text is matched literally.
	SearchLiteral SearchFlags = 0

	// SearchCaseInsensitive ignores letter case.
	SearchCaseInsensitive SearchFlags = 1 << iota

	// SearchRegex interprets the text as a regular expression.
	SearchRegex
)

// MatchExtent describes one search hit within a single line.
type MatchExtent struct {
	Start  int // byte offset of the start of the match
	Length int // length of the match in bytes
}

// defaultMatchCountLimit bounds how many hits one recomputation collects.
const defaultMatchCountLimit = 1000

// Search computes the set of search hits within a Document, both from
// scratch and incrementally: it registers itself as an observer of the
// document and keeps a per-line match table synchronized with every edit.
//
// Call Close when done so the observer registration is released.
type Search struct {
	NopObserver

	// The document being searched. Never nil.
	document *Document

	// What to look for. The empty string matches nothing.
	searchString string
	flags        SearchFlags

	// Compiled form of searchString when SearchRegex is set. On a compile
	// error regex is nil and regexErr holds the failure; an invalid
	// pattern matches nothing.
	regex    *regexp.Regexp
	regexErr error

	// Maximum number of hits collected by a single recomputation pass.
	// When exceeded, incomplete is set and further scanning stops, except
	// that stale per-line results are still cleared. Not a precise limit:
	// the line being scanned when it trips is finished first.
	matchCountLimit int
	incomplete      bool

	// Per-line match lists, kept the same length as the document. A nil
	// slot means the line has no matches. Matches are ordered by Start
	// then Length, without duplicates.
	lineToMatches GapBuffer[[]MatchExtent]
}

// NewSearch creates a search over the given document and registers it as
// an observer. The search string starts empty, matching nothing.
func NewSearch(document *Document) *Search {
	s := &Search{
		document:        document,
		matchCountLimit: defaultMatchCountLimit,
	}
	s.recomputeMatches()
	document.AddObserver(s)
	return s
}

// Close detaches the search from its document.
func (s *Search) Close() {
	s.document.RemoveObserver(s)
}

// Document returns the document being searched.
func (s *Search) Document() *Document {
	return s.document
}

// DocumentLines returns the number of lines covered by the match table.
func (s *Search) DocumentLines() int {
	return s.lineToMatches.Length()
}

// HasSearchString reports whether a non-empty search string is active.
func (s *Search) HasSearchString() bool {
	return s.searchString != ""
}

// SearchString returns the current search string.
func (s *Search) SearchString() string {
	return s.searchString
}

// Flags returns the current search flags.
func (s *Search) Flags() SearchFlags {
	return s.flags
}

// SetSearchString sets the search string and recomputes all matches.
func (s *Search) SetSearchString(searchString string) {
	s.searchString = searchString
	s.computeRegex()
	s.recomputeMatches()
}

// SetFlags sets the flags and recomputes all matches.
func (s *Search) SetFlags(flags SearchFlags) {
	s.flags = flags
	s.computeRegex()
	s.recomputeMatches()
}

// SetSearchStringAndFlags sets both, saving one recomputation.
func (s *Search) SetSearchStringAndFlags(searchString string, flags SearchFlags) {
	s.searchString = searchString
	s.flags = flags
	s.computeRegex()
	s.recomputeMatches()
}

// MatchCountLimit returns the per-recomputation hit limit.
func (s *Search) MatchCountLimit() int {
	return s.matchCountLimit
}

// SetMatchCountLimit changes the per-recomputation hit limit.
func (s *Search) SetMatchCountLimit(limit int) {
	s.matchCountLimit = limit
}

// HasIncompleteMatches reports whether the last recomputation stopped at
// the match count limit, leaving the table incomplete.
func (s *Search) HasIncompleteMatches() bool {
	return s.incomplete
}

// computeRegex compiles the search string when in regex mode.
func (s *Search) computeRegex() {
	s.regex = nil
	s.regexErr = nil
	if s.flags&SearchRegex == 0 {
		return
	}

	pattern := s.searchString
	if s.flags&SearchCaseInsensitive != 0 {
		pattern = "(?i)" + pattern
	}
	s.regex, s.regexErr = regexp.Compile(pattern)
}

// IsValid reports whether the search string is syntactically valid under
// the current flags. The empty string is valid but matches nothing.
func (s *Search) IsValid() bool {
	return s.regexErr == nil
}

// SyntaxError describes what is wrong with an invalid search string, or
// "" when it is valid.
func (s *Search) SyntaxError() string {
	if s.regexErr == nil {
		return ""
	}
	return s.regexErr.Error()
}

// ErrorOffset returns the byte offset within the search string of the
// offending construct of an invalid pattern, or -1 when the pattern is
// valid or the offset cannot be determined.
func (s *Search) ErrorOffset() int {
	var serr *syntax.Error
	if !errors.As(s.regexErr, &serr) {
		return -1
	}
	if i := strings.Index(s.searchString, serr.Expr); i >= 0 {
		return i
	}
	return -1
}

// EndsWithEOL reports whether the search is a regex anchored at end of
// line.
func (s *Search) EndsWithEOL() bool {
	return s.flags&SearchRegex != 0 && strings.HasSuffix(s.searchString, "$")
}

// ---------------------- recomputation -----------------------

// recomputeMatches resizes the match table to the document and recomputes
// every line from scratch.
func (s *Search) recomputeMatches() {
	for s.lineToMatches.Length() < s.document.NumLines() {
		s.lineToMatches.Insert(s.lineToMatches.Length(), nil)
	}
	for s.lineToMatches.Length() > s.document.NumLines() {
		s.lineToMatches.Remove(s.lineToMatches.Length() - 1)
	}

	s.incomplete = false
	s.recomputeLineRange(0, s.document.NumLines())
}

// recomputeLine recomputes a single line.
func (s *Search) recomputeLine(line int) {
	s.recomputeLineRange(line, line+1)
}

// foldByte lowercases an ASCII letter byte; other bytes pass through.
func foldByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// hasLiteralMatchAt reports whether needle occurs at the start of
// candidate, honoring case insensitivity bytewise.
func (s *Search) hasLiteralMatchAt(candidate []byte, needle string) bool {
	if s.flags&SearchCaseInsensitive == 0 {
		return string(candidate[:len(needle)]) == needle
	}
	for i := 0; i < len(needle); i++ {
		if foldByte(candidate[i]) != foldByte(needle[i]) {
			return false
		}
	}
	return true
}

// scanLine computes the matches for one line's contents.
func (s *Search) scanLine(contents []byte) []MatchExtent {
	if s.searchString == "" || s.regexErr != nil {
		return nil
	}

	var found []MatchExtent
	if s.regex != nil {
		for _, loc := range s.regex.FindAllIndex(contents, -1) {
			// Zero-width and adjacent matches are permitted here; the host
			// UI treats them specially.
			found = append(found, MatchExtent{Start: loc[0], Length: loc[1] - loc[0]})
		}
	} else {
		n := len(s.searchString)
		offset := 0
		for offset+n <= len(contents) {
			if s.hasLiteralMatchAt(contents[offset:], s.searchString) {
				found = append(found, MatchExtent{Start: offset, Length: n})

				// Move one past the match so that subsequent hits are not
				// adjacent, since the UI would show adjacent hits as one
				// long match.
				offset += n + 1
			} else {
				offset++
			}
		}
	}
	return found
}

// matchesEqual compares two match lists.
func matchesEqual(a, b []MatchExtent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recomputeLineRange recomputes the lines in [startLine, endLinePlusOne).
// The match table must already be sized to the document.
func (s *Search) recomputeLineRange(startLine, endLinePlusOne int) {
	s.selfCheck()
	if startLine < 0 || startLine > endLinePlusOne ||
		endLinePlusOne > s.document.NumLines() {
		panic("textwerk: search recompute range out of range")
	}

	count := 0
	limited := false

	for line := startLine; line < endLinePlusOne; line++ {
		var found []MatchExtent
		if !limited {
			found = s.scanLine(s.document.GetWholeLine(line))
			count += len(found)
			if count > s.matchCountLimit {
				limited = true
				s.incomplete = true
			}
		}
		// When limited, found stays nil: stale results are still cleared.

		// Replace the table row only when the contents changed, to keep
		// allocator traffic low while the user types.
		existing := s.lineToMatches.Get(line)
		switch {
		case len(found) == 0 && existing == nil:
			// Both empty.
		case len(found) == 0:
			s.lineToMatches.Set(line, nil)
		case matchesEqual(found, existing):
			// Same contents; keep the old row.
		default:
			s.lineToMatches.Set(line, found)
		}
	}
}

// ---------------------- observer methods --------------------

func (s *Search) ObserveInsertLine(doc *Document, line int) {
	s.mustBeOurs(doc)
	s.lineToMatches.Insert(line, nil)
	s.selfCheck()
}

func (s *Search) ObserveDeleteLine(doc *Document, line int) {
	s.mustBeOurs(doc)
	s.lineToMatches.Remove(line)
	s.selfCheck()
}

func (s *Search) ObserveInsertText(doc *Document, tc Coord, text []byte) {
	s.mustBeOurs(doc)
	s.recomputeLine(tc.Line)
}

func (s *Search) ObserveDeleteText(doc *Document, tc Coord, length int) {
	s.mustBeOurs(doc)
	s.recomputeLine(tc.Line)
}

func (s *Search) ObserveTotalChange(doc *Document) {
	s.mustBeOurs(doc)
	s.recomputeMatches()
}

// mustBeOurs panics when a notification arrives from a foreign document.
func (s *Search) mustBeOurs(doc *Document) {
	if doc != s.document {
		panic("textwerk: search observing a foreign document")
	}
}

// selfCheck verifies the invariants that hold between notifications.
func (s *Search) selfCheck() {
	if s.lineToMatches.Length() != s.document.NumLines() {
		panic("textwerk: search match table out of sync with document")
	}
}

// ---------------------- queries -----------------------------

// CountRangeMatches counts the hits on lines in [startLine,
// endPlusOneLine). Lines outside the document silently contribute 0.
func (s *Search) CountRangeMatches(startLine, endPlusOneLine int) int {
	n := 0
	for line := startLine; line < endPlusOneLine; line++ {
		if 0 <= line && line < s.lineToMatches.Length() {
			n += len(s.lineToMatches.Get(line))
		}
	}
	return n
}

// CountLineMatches counts the hits on one line.
func (s *Search) CountLineMatches(line int) int {
	return s.CountRangeMatches(line, line+1)
}

// CountMatchesAbove counts the hits on lines before line.
func (s *Search) CountMatchesAbove(line int) int {
	return s.CountRangeMatches(0, line)
}

// CountMatchesBelow counts the hits on lines after line.
func (s *Search) CountMatchesBelow(line int) int {
	return s.CountRangeMatches(line+1, s.DocumentLines())
}

// CountAllMatches counts every hit in the table.
func (s *Search) CountAllMatches() int {
	return s.CountRangeMatches(0, s.DocumentLines())
}

// LineMatches returns the hits on one line, ordered by Start then Length.
// It may only be called when CountLineMatches(line) > 0, and the returned
// slice must not be modified; it is invalidated by any subsequent change
// to the search or document.
func (s *Search) LineMatches(line int) []MatchExtent {
	if line < 0 || line >= s.lineToMatches.Length() {
		panic("textwerk: line number out of range")
	}
	matches := s.lineToMatches.Get(line)
	if len(matches) == 0 {
		panic("textwerk: no matches on line")
	}
	return matches
}

// lineMatchCount is CountLineMatches without the table bounds panic; out
// of range yields 0.
func (s *Search) lineMatchCount(line int) int {
	if line < 0 || line >= s.lineToMatches.Length() {
		return 0
	}
	return len(s.lineToMatches.Get(line))
}

// NextMatch finds the first hit strictly after r in the direction of
// travel (strictly before when reverse), and narrows r onto it. The range
// is rectified first; the result is therefore independent of the order of
// its endpoints. When there is no such hit the function returns false and
// leaves r unspecified.
//
// "After" orders hits by start coordinate and then end coordinate, so
// repeatedly invoking NextMatch visits every hit exactly once in each
// direction.
func (s *Search) NextMatch(reverse bool, r *CoordRange) bool {
	*r = r.Rectified()

	if reverse {
		for line := r.Start.Line; line >= 0; line-- {
			for i := s.lineMatchCount(line) - 1; i >= 0; i-- {
				m := s.lineToMatches.Get(line)[i]
				mStart := Coord{Line: line, Byte: m.Start}
				mEnd := Coord{Line: line, Byte: m.Start + m.Length}
				if r.Start.Less(mStart) {
					continue // hit is after the range
				}
				if mStart == r.Start && !mEnd.Less(r.End) {
					continue // same start but not strictly before
				}
				r.Start, r.End = mStart, mEnd
				return true
			}
		}
		return false
	}

	for line := r.Start.Line; line < s.DocumentLines(); line++ {
		for i := 0; i < s.lineMatchCount(line); i++ {
			m := s.lineToMatches.Get(line)[i]
			mStart := Coord{Line: line, Byte: m.Start}
			mEnd := Coord{Line: line, Byte: m.Start + m.Length}
			if mStart.Less(r.Start) {
				continue // hit is before the range
			}
			if mStart == r.Start && !r.End.Less(mEnd) {
				continue // same start but not strictly after
			}
			r.Start, r.End = mStart, mEnd
			return true
		}
	}
	return false
}

// RangeIsMatch reports whether there is a hit on a single line spanning
// exactly a..b (in either order).
func (s *Search) RangeIsMatch(a, b Coord) bool {
	if b.Less(a) {
		a, b = b, a
	}
	if a.Line != b.Line {
		// Hits never cross line boundaries.
		return false
	}

	for i := 0; i < s.lineMatchCount(a.Line); i++ {
		m := s.lineToMatches.Get(a.Line)[i]
		if m.Start == a.Byte && m.Length == b.Byte-a.Byte {
			return true
		}
	}
	return false
}

// GetReplacementText computes the replacement for a matched string. In
// regex mode, replaceSpec may reference capture groups with \0 through
// \9, use \t, \n and \r escapes, and any other escaped byte stands for
// itself; a trailing backslash is kept. In literal mode the spec is
// returned verbatim.
func (s *Search) GetReplacementText(existing, replaceSpec string) string {
	if s.regex == nil {
		return replaceSpec
	}

	groups := s.regex.FindStringSubmatch(existing)

	var sb strings.Builder
	for i := 0; i < len(replaceSpec); i++ {
		c := replaceSpec[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(replaceSpec) {
			sb.WriteByte('\\')
			break
		}
		i++
		switch c = replaceSpec[i]; {
		case '0' <= c && c <= '9':
			if n := int(c - '0'); groups != nil && n < len(groups) {
				sb.WriteString(groups[n])
			}
		case c == 't':
			sb.WriteByte('\t')
		case c == 'n':
			sb.WriteByte('\n')
		case c == 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
