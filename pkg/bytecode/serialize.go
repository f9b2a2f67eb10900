package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BytecodeVersion is the current serialized format version.
// Increment when making incompatible changes to the format.
const BytecodeVersion uint16 = 1

// Magic bytes for serialized chunks: "LXBC" (Lox ByteCode)
var BytecodeMagic = []byte{'L', 'X', 'B', 'C'}

// Serialize encodes the chunk to bytes for storage/transport.
// Format:
//
//	[magic:4] [version:2]
//	[code_len:4] [code:...]
//	[const_count:4] [constants:8 each, IEEE 754 bits]
//	[run_count:4] [runs: line:4 count:4 each]
func (c *Chunk) Serialize() ([]byte, error) {
	runs := c.lines.Runs()
	size := 4 + 2 + 4 + c.code.Len() + 4 + 8*c.constants.Len() + 4 + 8*len(runs)
	buf := make([]byte, 0, size)

	buf = append(buf, BytecodeMagic...)
	buf = binary.BigEndian.AppendUint16(buf, BytecodeVersion)

	buf = binary.BigEndian.AppendUint32(buf, uint32(c.code.Len()))
	buf = append(buf, c.code.Slice()...)

	buf = binary.BigEndian.AppendUint32(buf, uint32(c.constants.Len()))
	for _, v := range c.constants.Values() {
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(float64(v)))
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(runs)))
	for _, run := range runs {
		if run.Line < 0 || int64(run.Line) > math.MaxUint32 {
			return nil, fmt.Errorf("line %d cannot be serialized", run.Line)
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(run.Line))
		buf = binary.BigEndian.AppendUint32(buf, uint32(run.Count))
	}

	return buf, nil
}

// Deserialize decodes a chunk from bytes using the default allocator.
func Deserialize(data []byte) (*Chunk, error) {
	return DeserializeWithAllocator(data, nil)
}

// DeserializeWithAllocator decodes a chunk from bytes into buffers backed
// by mem. The decoded chunk is validated, so it is safe to disassemble.
func DeserializeWithAllocator(data []byte, mem memory.Allocator) (*Chunk, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("bytecode too short: need at least 6 bytes, got %d", len(data))
	}
	if string(data[0:4]) != string(BytecodeMagic) {
		return nil, fmt.Errorf("invalid bytecode magic: expected %q, got %q", BytecodeMagic, data[0:4])
	}
	if version := binary.BigEndian.Uint16(data[4:6]); version != BytecodeVersion {
		return nil, fmt.Errorf("unsupported bytecode version %d (supported: %d)", version, BytecodeVersion)
	}

	d := decoder{data: data, pos: 6}
	c := NewChunkWithAllocator(mem)

	codeLen, err := d.uint32("code length")
	if err != nil {
		return nil, err
	}
	code, err := d.bytes(int(codeLen), "code section")
	if err != nil {
		return nil, err
	}
	for _, b := range code {
		c.code.Push(b)
	}

	constCount, err := d.uint32("constant count")
	if err != nil {
		c.Free()
		return nil, err
	}
	for i := 0; i < int(constCount); i++ {
		bits, err := d.uint64(fmt.Sprintf("constant %d", i))
		if err != nil {
			c.Free()
			return nil, err
		}
		c.constants.Add(Value(math.Float64frombits(bits)))
	}

	runCount, err := d.uint32("line run count")
	if err != nil {
		c.Free()
		return nil, err
	}
	prev := -1
	for i := 0; i < int(runCount); i++ {
		line, err := d.uint32(fmt.Sprintf("line run %d", i))
		if err != nil {
			c.Free()
			return nil, err
		}
		count, err := d.uint32(fmt.Sprintf("line run %d count", i))
		if err != nil {
			c.Free()
			return nil, err
		}
		if count == 0 || int(line) == prev {
			c.Free()
			return nil, fmt.Errorf("%w: malformed line run %d (line %d, count %d)", ErrCorruptStream, i, line, count)
		}
		c.lines.runs.Push(LineRun{Line: int(line), Count: int(count)})
		c.lines.total += int(count)
		prev = int(line)
	}

	if d.pos != len(data) {
		c.Free()
		return nil, fmt.Errorf("%d trailing bytes after chunk", len(data)-d.pos)
	}
	if err := c.Validate(); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) bytes(n int, what string) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, fmt.Errorf("unexpected end of bytecode reading %s at pos %d", what, d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) uint32(what string) (uint32, error) {
	b, err := d.bytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) uint64(what string) (uint64, error) {
	b, err := d.bytes(8, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
