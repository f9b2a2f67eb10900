package bytecode

import "github.com/apache/arrow-go/v18/arrow/memory"

// LineRun attributes Count consecutive code bytes to source line Line.
type LineRun struct {
	Line  int
	Count int
}

// LineTable maps code offsets to source lines using run-length encoding.
// One entry is recorded per code byte, so the total of all run counts
// always equals the length of the code it describes.
type LineTable struct {
	runs  Buffer[LineRun]
	total int
}

// NewLineTable creates an empty table backed by mem (nil for the default
// allocator).
func NewLineTable(mem memory.Allocator) *LineTable {
	return &LineTable{runs: Buffer[LineRun]{mem: mem}}
}

// Record attributes the next offset to line. A line equal to the previous
// one extends the current run.
func (t *LineTable) Record(line int) {
	t.total++
	if last := t.runs.Last(); last != nil && last.Line == line {
		last.Count++
		return
	}
	t.runs.Push(LineRun{Line: line, Count: 1})
}

// Lookup returns the line attributed to offset and whether offset is the
// first byte of its run. ok is false when offset is not covered.
func (t *LineTable) Lookup(offset int) (line int, first bool, ok bool) {
	if offset < 0 || offset >= t.total {
		return 0, false, false
	}
	rest := offset
	for _, run := range t.runs.Slice() {
		if rest < run.Count {
			return run.Line, rest == 0, true
		}
		rest -= run.Count
	}
	return 0, false, false
}

// Line returns the line attributed to offset, or 0 when not covered.
func (t *LineTable) Line(offset int) int {
	line, _, _ := t.Lookup(offset)
	return line
}

// Len returns the number of offsets covered.
func (t *LineTable) Len() int {
	return t.total
}

// Runs returns a read-only view of the encoded runs.
func (t *LineTable) Runs() []LineRun {
	return t.runs.Slice()
}

// Free releases the table's storage.
func (t *LineTable) Free() {
	t.runs.Free()
	t.total = 0
}
