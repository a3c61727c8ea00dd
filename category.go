package textwerk

// Category classifies a run of bytes for presentation purposes, such as
// syntax highlighting. The document core does not interpret categories;
// they exist so that higher layers and tests can describe per-line
// styling and match overlays.
type Category uint8

const (
	// CatNormal is ordinary text.
	CatNormal Category = iota + 1

	// CatError is text that could not be lexed.
	CatError

	CatComment
	CatString
	CatKeyword
	CatSpecial
	CatNumber
	CatOperator
	CatPreprocessor

	// Categories for unified diff output.
	CatDiffContext
	CatDiffOldFile
	CatDiffNewFile
	CatDiffSection
	CatDiffRemoval
	CatDiffAddition
)

// OverlayAttr is an attribute drawn on top of a category. At most one
// applies to a given byte.
type OverlayAttr uint8

const (
	// OverlayNone means no overlay.
	OverlayNone OverlayAttr = iota

	// OverlaySelection marks selected text.
	OverlaySelection

	// OverlaySearchHit marks text that is part of a search hit.
	OverlaySearchHit

	// OverlayPreprocessor marks text inside a preprocessor directive.
	OverlayPreprocessor
)

// StyleCell is a category combined with an overlay attribute.
type StyleCell struct {
	Category Category
	Overlay  OverlayAttr
}

// LineCategories describes the categories of one line as a run-length
// encoded sequence: the line's bytes get the finite runs, and the tail
// value styles the area past the end of the line.
type LineCategories struct {
	runs RLESequence[Category]
}

// NewLineCategories creates a line description whose every byte is tail.
func NewLineCategories(tail Category) *LineCategories {
	return &LineCategories{runs: *NewRLESequence(tail)}
}

// Clear resets the line to tail everywhere.
func (lc *LineCategories) Clear(tail Category) {
	lc.runs.Clear(tail)
}

// Append adds length bytes of the given category.
func (lc *LineCategories) Append(c Category, length int) {
	lc.runs.Append(c, length)
}

// EndAt fixes the end of the finite portion and assigns tail to the rest.
func (lc *LineCategories) EndAt(tail Category) {
	lc.runs.SetTailValue(tail)
}

// At returns the category of the byte at index.
func (lc *LineCategories) At(index int) Category {
	return lc.runs.At(index)
}

// Equal reports whether two line descriptions are identical.
func (lc *LineCategories) Equal(other *LineCategories) bool {
	return lc.runs.Equal(&other.runs)
}

// String renders the runs; see RLESequence.String.
func (lc *LineCategories) String() string {
	return lc.runs.String()
}

// OverlayForLine builds the overlay sequence for one line of search hits:
// every byte inside a hit gets OverlaySearchHit, all others OverlayNone.
// The hits must be ordered by start offset, as LineMatches returns them.
func OverlayForLine(matches []MatchExtent) *RLESequence[OverlayAttr] {
	seq := NewRLESequence(OverlayNone)
	at := 0
	for _, m := range matches {
		if m.Start > at {
			seq.Append(OverlayNone, m.Start-at)
			at = m.Start
		}
		if end := m.Start + m.Length; end > at {
			seq.Append(OverlaySearchHit, end-at)
			at = end
		}
	}
	seq.SetTailValue(OverlayNone)
	return seq
}

// ApplyOverlay combines a line's categories with an overlay sequence into
// renderable style cells.
func ApplyOverlay(
	categories *LineCategories,
	overlay *RLESequence[OverlayAttr],
) *RLESequence[StyleCell] {
	return CombineRLE(&categories.runs, overlay,
		func(c Category, o OverlayAttr) StyleCell {
			return StyleCell{Category: c, Overlay: o}
		})
}
