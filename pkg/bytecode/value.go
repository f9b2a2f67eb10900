package bytecode

import "strconv"

// Value is a runtime constant held in a chunk's constant pool.
type Value float64

// String renders the value the way fmt's %v renders a float64.
func (v Value) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
