package textwerk

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher binds a TextDocument to a file on disk and reloads the document
// when the file changes underneath the editor. Reloads use the atomic
// read path, so observers see either the old contents or the complete new
// ones, announced by a single ObserveTotalChange.
//
// The watcher runs one goroutine draining file system events, and it
// invokes the Reload callback from that goroutine. The default Reload
// reads the file into the document right there, on the watcher goroutine;
// replacing Reload lets the caller choose the goroutine on which the
// document is touched.
type Watcher struct {
	doc  *TextDocument
	path string
	fsw  *fsnotify.Watcher
	done chan struct{}

	// Reload is invoked whenever the watched file was written or
	// recreated. The default performs the reload directly; callers with
	// an event loop typically replace it to marshal the call onto their
	// own goroutine.
	Reload func() error

	// Errors receives watch failures. The channel is never closed while
	// the watcher runs; unread errors are dropped.
	Errors chan error
}

// NewWatcher creates a watcher for the document's file at path. Call
// Start to begin watching.
func NewWatcher(doc *TextDocument, path string) *Watcher {
	w := &Watcher{
		doc:    doc,
		path:   path,
		done:   make(chan struct{}),
		Errors: make(chan error, 1),
	}
	w.Reload = func() error { return doc.ReadFile(path) }
	return w
}

// Start begins watching the file's directory. Watching the directory
// rather than the file keeps the watch alive across editors that replace
// the file by rename.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", w.path, err)
	}
	w.fsw = fsw

	go w.run()
	return nil
}

// run drains fsnotify events until Stop.
func (w *Watcher) run() {
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.Reload(); err != nil {
				w.report(err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// report delivers an error without blocking the event loop.
func (w *Watcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

// Stop ends the watch and releases the file system resources. The watcher
// cannot be restarted.
func (w *Watcher) Stop() error {
	close(w.done)
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
