package state

const chunkSize = 4096

// LineBuffer is an append-only line store. Lines are kept in fixed-size
// chunks so growth never copies earlier lines, and an index assigned by
// Append stays valid for the life of the buffer.
type LineBuffer struct {
	chunks [][]string
	size   int
}

// NewLineBuffer creates an empty buffer
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

// Append adds a line and returns its index.
func (b *LineBuffer) Append(line string) int {
	if b.size%chunkSize == 0 {
		b.chunks = append(b.chunks, make([]string, 0, chunkSize))
	}
	last := len(b.chunks) - 1
	b.chunks[last] = append(b.chunks[last], line)
	b.size++
	return b.size - 1
}

// Get returns the line at index (0-based from oldest)
func (b *LineBuffer) Get(index int) (string, bool) {
	if index < 0 || index >= b.size {
		return "", false
	}
	return b.chunks[index/chunkSize][index%chunkSize], true
}

// Len returns the number of stored lines
func (b *LineBuffer) Len() int {
	return b.size
}

// ForEach calls fn for each line in [start, end) until fn returns false.
func (b *LineBuffer) ForEach(start, end int, fn func(index int, line string) bool) {
	if start < 0 {
		start = 0
	}
	if end > b.size {
		end = b.size
	}
	for i := start; i < end; i++ {
		if !fn(i, b.chunks[i/chunkSize][i%chunkSize]) {
			return
		}
	}
}
