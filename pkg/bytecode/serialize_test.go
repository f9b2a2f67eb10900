package bytecode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildSampleChunk() *Chunk {
	c := NewChunk()
	c.WriteConstant(1.2, 123)
	c.WriteConstant(-3, 124)
	c.WriteOpcode(OpReturn, 124)
	return c
}

func TestSerializeDeserializeEmpty(t *testing.T) {
	c := NewChunk()

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if !bytes.HasPrefix(data, BytecodeMagic) {
		t.Error("Serialized data missing magic header")
	}

	c2, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if c2.Len() != 0 || c2.ConstantCount() != 0 {
		t.Errorf("round trip of empty chunk gave len=%d constants=%d", c2.Len(), c2.ConstantCount())
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	c := buildSampleChunk()
	defer c.Free()

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}

	mem := newCountingAllocator()
	defer mem.AssertSize(t, 0)
	c2, err := DeserializeWithAllocator(data, mem)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	defer c2.Free()

	if diff := cmp.Diff(c.Code(), c2.Code()); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.Constants().Values(), c2.Constants().Values()); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.Lines().Runs(), c2.Lines().Runs()); diff != "" {
		t.Errorf("line runs mismatch (-want +got):\n%s", diff)
	}
	if c.Disassemble("x") != c2.Disassemble("x") {
		t.Error("disassembly differs after round trip")
	}
}

func TestDeserializeErrors(t *testing.T) {
	c := buildSampleChunk()
	defer c.Free()
	good, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}

	badMagic := append([]byte("NOPE"), good[4:]...)
	newer := append([]byte(nil), good...)
	newer[5] = byte(BytecodeVersion + 1)
	zero := append([]byte(nil), good...)
	zero[4], zero[5] = 0, 0
	trailing := append(append([]byte(nil), good...), 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"too short", good[:3]},
		{"bad magic", badMagic},
		{"newer version", newer},
		{"version zero", zero},
		{"truncated", good[:len(good)-3]},
		{"trailing bytes", trailing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Deserialize(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDeserializeRejectsCorruptCode(t *testing.T) {
	c := NewChunk()
	defer c.Free()
	c.Write(0x7F, 1)

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}

	mem := newCountingAllocator()
	defer mem.AssertSize(t, 0)
	if _, err := DeserializeWithAllocator(data, mem); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("Deserialize err = %v, want ErrCorruptStream", err)
	}
}
