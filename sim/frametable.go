package sim

// NoPage marks an empty frame slot.
const NoPage = ""

// A FrameTable models the physical memory frames and their use bits. Slot
// index is the frame's identity and never changes after creation.
type FrameTable struct {
	frames  []string
	useBits []bool
}

// NewFrameTable creates a table with numFrames empty slots. All use bits
// start cleared.
func NewFrameTable(numFrames int) *FrameTable {
	return &FrameTable{
		frames:  make([]string, numFrames),
		useBits: make([]bool, numFrames),
	}
}

// NumFrames returns the number of physical frames in the table.
func (t *FrameTable) NumFrames() int {
	return len(t.frames)
}

// Page returns the page resident in frame i, or NoPage when the frame is
// empty.
func (t *FrameTable) Page(i int) string {
	return t.frames[i]
}

// UseBit returns the use bit of frame i. An empty frame's use bit is always
// false.
func (t *FrameTable) UseBit(i int) bool {
	return t.useBits[i]
}

// SetUseBit sets or clears the use bit of frame i.
func (t *FrameTable) SetUseBit(i int, v bool) {
	t.useBits[i] = v
}

// FindPage returns the index of the frame holding page, or -1 when the page
// is not resident.
func (t *FrameTable) FindPage(page string) int {
	if page == NoPage {
		return -1
	}

	for i, p := range t.frames {
		if p == page {
			return i
		}
	}

	return -1
}

// Install places page in frame i with its use bit set, returning the evicted
// occupant. The returned page is NoPage when the frame was empty.
func (t *FrameTable) Install(i int, page string) string {
	victim := t.frames[i]

	t.frames[i] = page
	t.useBits[i] = true

	return victim
}

// Pages returns a copy of the occupant list.
func (t *FrameTable) Pages() []string {
	pages := make([]string, len(t.frames))
	copy(pages, t.frames)

	return pages
}

// UseBits returns a copy of the use bit list.
func (t *FrameTable) UseBits() []bool {
	bits := make([]bool, len(t.useBits))
	copy(bits, t.useBits)

	return bits
}
