package textwerk

// GapBuffer implements a generic gap buffer data structure, which is an
// efficient way to store and manipulate sequences with frequent insertions
// and deletions around a single position. This data structure is commonly
// used in text editors.
//
// The gap buffer maintains a contiguous array split into three segments: a
// left part of length L, a gap of length G, and a right part of length R.
// The logical sequence is the left part followed by the right part;
// insertions happen at the left edge of the gap, and deletions widen the
// gap. This allows O(1) insertions and deletions at the gap position, with
// O(n) cost only when moving the gap to a different position.
//
// The element type must be freely copyable; the buffer moves elements with
// the built-in copy and never runs finalization logic on them.
type GapBuffer[T any] struct {
	buffer []T // backing array, len(buffer) == left+gap+right
	left   int // elements before the gap
	gap    int // unused slots between the halves
	right  int // elements after the gap
}

// NewGapBuffer creates a new, empty gap buffer with the specified initial
// gap capacity. The buffer will automatically resize when needed.
//
// Parameters:
//   - capacity: Initial gap size. Values below zero are treated as zero.
//
// Returns:
//   - *GapBuffer[T]: A new gap buffer instance with the gap at position 0.
func NewGapBuffer[T any](capacity int) *GapBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &GapBuffer[T]{
		buffer: make([]T, capacity),
		gap:    capacity,
	}
}

// Length returns the number of elements currently stored in the buffer,
// excluding the gap. This operation has O(1) time complexity.
func (gb *GapBuffer[T]) Length() int {
	return gb.left + gb.right
}

// bc panics unless index names an existing element.
func (gb *GapBuffer[T]) bc(index int) {
	if index < 0 || index >= gb.Length() {
		panic("textwerk: gap buffer index out of range")
	}
}

// pos maps a logical index to its physical slot in the backing array.
func (gb *GapBuffer[T]) pos(index int) int {
	if index < gb.left {
		return index
	}
	return index + gb.gap
}

// Get returns the element at the given logical index.
// Panics if index is outside [0, Length()).
func (gb *GapBuffer[T]) Get(index int) T {
	gb.bc(index)
	return gb.buffer[gb.pos(index)]
}

// Set replaces the element at the given logical index.
// Panics if index is outside [0, Length()).
func (gb *GapBuffer[T]) Set(index int, value T) {
	gb.bc(index)
	gb.buffer[gb.pos(index)] = value
}

// Swap replaces the element at the given logical index and returns the
// previous value.
func (gb *GapBuffer[T]) Swap(index int, value T) T {
	old := gb.Get(index)
	gb.Set(index, value)
	return old
}

// makeGapAt moves the gap so that it starts at index, and widens it to at
// least gapSize slots. Which half gets shifted depends on which side of
// the gap the target index lies.
func (gb *GapBuffer[T]) makeGapAt(index, gapSize int) {
	if index != gb.left {
		if index < gb.left {
			// Move gap left: shift [index, left) to the right edge of the gap.
			n := gb.left - index
			copy(gb.buffer[gb.left+gb.gap-n:], gb.buffer[index:gb.left])
			gb.left -= n
			gb.right += n
		} else {
			// Move gap right: shift n elements from the right half down.
			n := index - gb.left
			copy(gb.buffer[gb.left:], gb.buffer[gb.left+gb.gap:gb.left+gb.gap+n])
			gb.left += n
			gb.right -= n
		}
	}

	if gb.gap < gapSize {
		// New capacity: 150% of the existing capacity, plus 10, or the
		// requested gap if that is bigger.
		newGap := len(gb.buffer)*3/2 + 10 - gb.left - gb.right
		if newGap < gapSize {
			newGap = gapSize
		}

		newBuffer := make([]T, gb.left+newGap+gb.right)
		copy(newBuffer, gb.buffer[:gb.left])
		copy(newBuffer[gb.left+newGap:], gb.buffer[gb.left+gb.gap:])

		gb.buffer = newBuffer
		gb.gap = newGap
	}
}

// prepareToInsert positions and widens the gap for an insertion of insLen
// elements at index. Panics if index is outside [0, Length()].
func (gb *GapBuffer[T]) prepareToInsert(index, insLen int) {
	if index < 0 || index > gb.Length() {
		panic("textwerk: gap buffer insertion index out of range")
	}
	if index != gb.left || gb.gap < insLen {
		gb.makeGapAt(index, insLen)
	}
}

// Insert adds a single element so that it ends up at logical position
// index; all elements at index or greater shift up by one. Amortized O(1)
// when index is at the gap.
func (gb *GapBuffer[T]) Insert(index int, value T) {
	gb.prepareToInsert(index, 1)
	gb.buffer[gb.left] = value
	gb.left++
	gb.gap--
}

// InsertMany inserts a run of elements at index, equivalent to inserting
// src[0], src[1], ... one at a time but with a single bulk copy.
func (gb *GapBuffer[T]) InsertMany(index int, src []T) {
	gb.prepareToInsert(index, len(src))
	copy(gb.buffer[gb.left:], src)
	gb.left += len(src)
	gb.gap -= len(src)
}

// InsertManyZeroes inserts count zero-valued elements at index.
func (gb *GapBuffer[T]) InsertManyZeroes(index, count int) {
	if count < 0 {
		panic("textwerk: negative insertion count")
	}
	gb.prepareToInsert(index, count)
	var zero T
	for i := range count {
		gb.buffer[gb.left+i] = zero
	}
	gb.left += count
	gb.gap -= count
}

// Remove deletes the element at index; all elements above it shift down
// by one.
func (gb *GapBuffer[T]) Remove(index int) {
	gb.bc(index)
	if index != gb.left {
		gb.makeGapAt(index, 0)
	}
	gb.gap++
	gb.right--
}

// RemoveMany deletes count elements starting at index.
func (gb *GapBuffer[T]) RemoveMany(index, count int) {
	if count < 0 || index < 0 || index > gb.Length()-count {
		panic("textwerk: gap buffer removal range out of range")
	}
	if index != gb.left {
		gb.makeGapAt(index, 0)
	}
	gb.gap += count
	gb.right -= count
}

// Clear removes all elements. The backing array is retained, with all of
// its space moved into the gap.
func (gb *GapBuffer[T]) Clear() {
	gb.gap += gb.left + gb.right
	gb.left = 0
	gb.right = 0
}

// EnsureValidIndex extends the buffer with zero-valued elements so that
// index names a valid element afterward.
func (gb *GapBuffer[T]) EnsureValidIndex(index int) {
	if n := gb.Length(); index >= n {
		gb.InsertManyZeroes(n, index+1-n)
	}
}

// FillFromArray replaces the contents with a copy of src, leaving a gap of
// at least gapSize slots at logical position index. This is the bulk-load
// entry point used when a line is promoted into the recent-line buffer:
// the caller passes the upcoming insertion point so the first edit finds
// the gap already in place.
//
// Parameters:
//   - src: Elements to load.
//   - index: Where the gap goes; must be in [0, len(src)].
//   - gapSize: Minimum gap to reserve; must be >= 0.
func (gb *GapBuffer[T]) FillFromArray(src []T, index, gapSize int) {
	if index < 0 || index > len(src) {
		panic("textwerk: gap position outside source range")
	}
	if gapSize < 0 {
		panic("textwerk: negative gap size")
	}

	gb.Clear()

	// Replace the backing array only if it cannot hold the load. No extra
	// headroom: future growth uses the normal resize path.
	if gb.gap < len(src)+gapSize {
		gb.gap = len(src) + gapSize
		gb.buffer = make([]T, gb.gap)
	}

	gb.left = index
	gb.right = len(src) - index
	gb.gap -= gb.left + gb.right

	copy(gb.buffer, src[:gb.left])
	copy(gb.buffer[gb.left+gb.gap:], src[gb.left:])
}

// WriteIntoArray copies count elements starting at logical position from
// into dest[0:count], straddling the gap with at most two copies.
func (gb *GapBuffer[T]) WriteIntoArray(dest []T, count, from int) {
	if count < 0 || from < 0 || from+count > gb.Length() {
		panic("textwerk: gap buffer read range out of range")
	}

	if from < gb.left {
		n := min(gb.left-from, count)
		copy(dest, gb.buffer[from:from+n])
		copy(dest[n:count], gb.buffer[gb.left+gb.gap:])
	} else {
		copy(dest[:count], gb.buffer[from+gb.gap:])
	}
}

// Elements returns the logical contents as a freshly allocated slice.
func (gb *GapBuffer[T]) Elements() []T {
	out := make([]T, gb.Length())
	gb.WriteIntoArray(out, len(out), 0)
	return out
}

// SqueezeGap drops the reserved gap space, shrinking the backing array to
// exactly the logical contents. Called when the buffer is not expected to
// grow any more.
func (gb *GapBuffer[T]) SqueezeGap() {
	if gb.gap == 0 {
		return
	}
	newBuffer := make([]T, gb.left+gb.right)
	copy(newBuffer, gb.buffer[:gb.left])
	copy(newBuffer[gb.left:], gb.buffer[gb.left+gb.gap:])
	gb.buffer = newBuffer
	gb.gap = 0
}

// SwapWith exchanges the contents of two gap buffers in O(1).
func (gb *GapBuffer[T]) SwapWith(other *GapBuffer[T]) {
	*gb, *other = *other, *gb
}

// Internals reports the sizes of the left, gap and right segments for
// debugging and whitebox tests.
func (gb *GapBuffer[T]) Internals() (left, gap, right int) {
	return gb.left, gb.gap, gb.right
}
