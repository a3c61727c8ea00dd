package textwerk

// Observer is the interface through which interested parties track changes
// to a Document. All methods are invoked after the document has fully
// updated its internal state, in observer registration order.
//
// Observers hold no ownership over the document and must remove themselves
// before they are discarded. From the document's perspective notifications
// cannot fail; a panicking observer is contained by the notification path
// and cannot disturb the mutation that triggered it.
type Observer interface {
	// ObserveInsertLine is called after a blank line was inserted at line.
	ObserveInsertLine(doc *Document, line int)

	// ObserveDeleteLine is called after the blank line at line was removed.
	ObserveDeleteLine(doc *Document, line int)

	// ObserveInsertText is called after text (no newlines) was inserted at tc.
	ObserveInsertText(doc *Document, tc Coord, text []byte)

	// ObserveDeleteText is called after length bytes were removed at tc.
	ObserveDeleteText(doc *Document, tc Coord, length int)

	// ObserveTotalChange is called after a change too large to describe
	// incrementally, such as a whole-file replacement or a swap. Observers
	// must refresh completely.
	ObserveTotalChange(doc *Document)

	// ObserveUnsavedChangesChange is called when the observee is a
	// TextDocument and its "has unsaved changes" answer may have flipped.
	ObserveUnsavedChangesChange(doc *TextDocument)
}

// NopObserver is an Observer implementation whose methods all do nothing.
// Embed it to implement only the notifications of interest.
type NopObserver struct{}

func (NopObserver) ObserveInsertLine(*Document, int)           {}
func (NopObserver) ObserveDeleteLine(*Document, int)           {}
func (NopObserver) ObserveInsertText(*Document, Coord, []byte) {}
func (NopObserver) ObserveDeleteText(*Document, Coord, int)    {}
func (NopObserver) ObserveTotalChange(*Document)               {}
func (NopObserver) ObserveUnsavedChangesChange(*TextDocument)  {}

// AddObserver registers an observer. The observer must not already be
// registered.
func (d *Document) AddObserver(o Observer) {
	if d.HasObserver(o) {
		panic("textwerk: observer registered twice")
	}
	d.observers = append(d.observers, o)
}

// RemoveObserver unregisters an observer, which must be registered.
func (d *Document) RemoveObserver(o Observer) {
	for i, existing := range d.observers {
		if existing == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
	panic("textwerk: removing observer that is not registered")
}

// HasObserver reports whether o is currently registered.
func (d *Document) HasObserver(o Observer) bool {
	for _, existing := range d.observers {
		if existing == o {
			return true
		}
	}
	return false
}

// notify runs fn for every observer in registration order, containing
// panics so a broken observer cannot disturb the mutation path.
func (d *Document) notify(fn func(Observer)) {
	for _, o := range d.observers {
		func() {
			defer func() { _ = recover() }()
			fn(o)
		}()
	}
}
