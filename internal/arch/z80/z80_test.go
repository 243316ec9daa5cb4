package z80

import (
	"errors"
	"sync"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/symbols"
)

func newMemory(t *testing.T, address uint16, data ...byte) *memory.Memory {
	t.Helper()
	mem := memory.New()
	assert.NoError(t, mem.Load(address, data))
	return mem
}

type decodeTest struct {
	name    string
	address uint16
	data    []byte
	symbols map[uint16]string
	text    string
	length  int
}

func runDecodeTests(t *testing.T, tests []decodeTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := symbols.New()
			for address, name := range tt.symbols {
				table.Set(address, name)
			}
			dis := New(table)
			mem := newMemory(t, tt.address, tt.data...)

			ins, err := dis.Decode(mem, tt.address)
			assert.NoError(t, err)
			assert.Equal(t, tt.text, ins.Text)
			assert.Equal(t, tt.length, ins.Length)
			assert.Equal(t, tt.length, len(ins.Data))
			assert.Equal(t, tt.address, ins.Address)
		})
	}
}

func TestDecoder_Base(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "nop", data: []byte{0x00}, text: "nop", length: 1},
		{name: "16 bit immediate", data: []byte{0x01, 0x02, 0x03}, text: "ld bc,$0302", length: 3},
		{name: "16 bit memory", data: []byte{0x2a, 0x00, 0x40}, text: "ld hl,($4000)", length: 3},
		{name: "store hl", data: []byte{0x22, 0x00, 0x40}, text: "ld ($4000),hl", length: 3},
		{name: "8 bit immediate", data: []byte{0x3e, 0x10}, text: "ld a,$0010", length: 2},
		{name: "8 bit port", data: []byte{0xd3, 0xfe}, text: "out ($00fe),a", length: 2},
		{name: "register load", data: []byte{0x65}, text: "ld h,l", length: 1},
		{name: "indirect load", data: []byte{0x7e}, text: "ld a,(hl)", length: 1},
		{name: "arithmetic", data: []byte{0x96}, text: "sub (hl)", length: 1},
		{name: "arithmetic with accumulator", data: []byte{0x8c}, text: "adc a,h", length: 1},
		{name: "halt", data: []byte{0x76}, text: "halt", length: 1},
		{name: "jump pointer", data: []byte{0xe9}, text: "jp (hl)", length: 1},
		{name: "exchange", data: []byte{0x08}, text: "ex af,af'", length: 1},
		{name: "restart", data: []byte{0xff}, text: "rst 38h", length: 1},
		{name: "conditional call", data: []byte{0xcc, 0x34, 0x12}, text: "call z,$1234", length: 3},
		{
			name:    "16 bit wraps around",
			address: 0xffff,
			data:    []byte{0x01, 0x34, 0x12},
			text:    "ld bc,$1234",
			length:  3,
		},
		{
			name:    "8 bit wraps around",
			address: 0xffff,
			data:    []byte{0x06, 0x99},
			text:    "ld b,$0099",
			length:  2,
		},
	})
}

func TestDecoder_Relative(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "backward", data: []byte{0x18, 0xfe}, text: "jr -2", length: 2},
		{name: "forward", data: []byte{0x18, 0x05}, text: "jr +5", length: 2},
		{name: "zero", data: []byte{0x18, 0x00}, text: "jr +0", length: 2},
		{name: "minimum", data: []byte{0x10, 0x80}, text: "djnz -128", length: 2},
		{name: "maximum", data: []byte{0x20, 0x7f}, text: "jr nz,+127", length: 2},
		{
			name:    "symbol at destination",
			data:    []byte{0x18, 0xfe},
			symbols: map[uint16]string{0x0000: "loop"},
			text:    "jr loop",
			length:  2,
		},
		{
			name:    "symbol at wrapped destination",
			data:    []byte{0x10, 0x80},
			symbols: map[uint16]string{0xff82: "far"},
			text:    "djnz far",
			length:  2,
		},
		{
			name:    "symbol at wrong address is ignored",
			address: 0x8000,
			data:    []byte{0x38, 0x02},
			symbols: map[uint16]string{0x8002: "next"},
			text:    "jr c,+2",
			length:  2,
		},
		{
			name:    "destination past end of address space",
			address: 0xfffe,
			data:    []byte{0x18, 0x04},
			symbols: map[uint16]string{0x0004: "wrapped"},
			text:    "jr wrapped",
			length:  2,
		},
	})
}

func TestDecoder_Symbols(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{
			name:    "absolute",
			data:    []byte{0xc3, 0x00, 0x80},
			symbols: map[uint16]string{0x8000: "Start"},
			text:    "jp Start",
			length:  3,
		},
		{
			name:    "memory",
			data:    []byte{0x3a, 0x00, 0x40},
			symbols: map[uint16]string{0x4000: "Screen"},
			text:    "ld a,(Screen)",
			length:  3,
		},
		{
			name:    "8 bit immediate",
			data:    []byte{0x3e, 0x10},
			symbols: map[uint16]string{0x0010: "ten"},
			text:    "ld a,ten",
			length:  2,
		},
		{
			name:    "extended memory",
			data:    []byte{0xed, 0x73, 0x00, 0xc0},
			symbols: map[uint16]string{0xc000: "stack"},
			text:    "ld (stack),sp",
			length:  4,
		},
	})
}

func TestDecoder_Bit(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "rlc b", data: []byte{0xcb, 0x00}, text: "rlc b", length: 2},
		{name: "sll b", data: []byte{0xcb, 0x30}, text: "sll b", length: 2},
		{name: "srl a", data: []byte{0xcb, 0x3f}, text: "srl a", length: 2},
		{name: "bit 0,(hl)", data: []byte{0xcb, 0x46}, text: "bit 0,(hl)", length: 2},
		{name: "res 4,c", data: []byte{0xcb, 0xa1}, text: "res 4,c", length: 2},
		{name: "set 7,a", data: []byte{0xcb, 0xff}, text: "set 7,a", length: 2},
		{name: "prefix wraps around", address: 0xffff, data: []byte{0xcb, 0x11}, text: "rl c", length: 2},
	})
}

func TestDecoder_Extended(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "in b,(c)", data: []byte{0xed, 0x40}, text: "in b,(c)", length: 2},
		{name: "ldi", data: []byte{0xed, 0xa0}, text: "ldi", length: 2},
		{name: "otdr", data: []byte{0xed, 0xbb}, text: "otdr", length: 2},
		{name: "im 0/1", data: []byte{0xed, 0x4e}, text: "im 0/1", length: 2},
		{name: "out (c),0", data: []byte{0xed, 0x71}, text: "out (c),0", length: 2},
		{name: "store pair", data: []byte{0xed, 0x43, 0x34, 0x12}, text: "ld ($1234),bc", length: 4},
		{name: "load pair", data: []byte{0xed, 0x7b, 0x00, 0xff}, text: "ld sp,($ff00)", length: 4},
		{name: "undefined low", data: []byte{0xed, 0x00}, text: "", length: 2},
		{name: "undefined gap", data: []byte{0xed, 0x77}, text: "", length: 2},
		{name: "undefined block", data: []byte{0xed, 0xa4}, text: "", length: 2},
		{name: "undefined high", data: []byte{0xed, 0xff}, text: "", length: 2},
	})
}

func TestDecoder_Index(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "high register", data: []byte{0xdd, 0x24}, text: "inc ixh", length: 2},
		{name: "low register", data: []byte{0xfd, 0x2d}, text: "dec iyl", length: 2},
		{name: "both byte registers", data: []byte{0xdd, 0x65}, text: "ld ixh,ixl", length: 2},
		{name: "positive displacement", data: []byte{0xdd, 0x34, 0x05}, text: "inc (ix + 5)", length: 3},
		{name: "negative displacement", data: []byte{0xdd, 0x34, 0xfb}, text: "inc (ix - 5)", length: 3},
		{name: "zero displacement", data: []byte{0xfd, 0x35, 0x00}, text: "dec (iy + 0)", length: 3},
		{name: "minimum displacement", data: []byte{0xfd, 0x86, 0x80}, text: "add a,(iy - 128)", length: 3},
		{name: "maximum displacement", data: []byte{0xdd, 0x7e, 0x7f}, text: "ld a,(ix + 127)", length: 3},
		{name: "register stays with memory", data: []byte{0xdd, 0x66, 0x03}, text: "ld h,(ix + 3)", length: 3},
		{name: "register stays with memory store", data: []byte{0xdd, 0x75, 0x03}, text: "ld (ix + 3),l", length: 3},
		{name: "displacement before immediate", data: []byte{0xdd, 0x36, 0xfe, 0x42}, text: "ld (ix - 2),$0042", length: 4},
		{name: "pair immediate", data: []byte{0xdd, 0x21, 0x34, 0x12}, text: "ld ix,$1234", length: 4},
		{name: "pair memory", data: []byte{0xfd, 0x22, 0x00, 0x80}, text: "ld ($8000),iy", length: 4},
		{name: "pair arithmetic", data: []byte{0xdd, 0x29}, text: "add ix,ix", length: 2},
		{name: "pair with other register", data: []byte{0xfd, 0x09}, text: "add iy,bc", length: 2},
		{name: "stack exchange", data: []byte{0xdd, 0xe3}, text: "ex (sp),ix", length: 2},
		{name: "push", data: []byte{0xfd, 0xe5}, text: "push iy", length: 2},
		{name: "jump pointer", data: []byte{0xdd, 0xe9}, text: "jp (ix)", length: 2},
		{name: "stack pointer load", data: []byte{0xfd, 0xf9}, text: "ld sp,iy", length: 2},
		{name: "unaffected exchange", data: []byte{0xdd, 0xeb}, text: "ex de,hl", length: 2},
		{name: "unaffected instruction", data: []byte{0xdd, 0x00}, text: "nop", length: 2},
		{name: "relative jump", data: []byte{0xdd, 0x18, 0xfd}, text: "jr -3", length: 3},
		{name: "index byte immediate", data: []byte{0xdd, 0x26, 0x12}, text: "ld ixh,$0012", length: 3},
		{name: "wraps around", address: 0xfffe, data: []byte{0xdd, 0x34, 0x01}, text: "inc (ix + 1)", length: 3},
		{name: "repeated prefix", data: []byte{0xdd, 0xdd, 0x24}, text: "", length: 1},
		{name: "other index prefix", data: []byte{0xdd, 0xfd, 0x24}, text: "", length: 1},
		{name: "extended prefix", data: []byte{0xfd, 0xed, 0xa0}, text: "", length: 1},
	})
}

func TestDecoder_IndexBit(t *testing.T) {
	runDecodeTests(t, []decodeTest{
		{name: "rotate memory", data: []byte{0xdd, 0xcb, 0x05, 0x06}, text: "rlc (ix + 5)", length: 4},
		{name: "res memory", data: []byte{0xdd, 0xcb, 0x05, 0x86}, text: "res 0,(ix + 5)", length: 4},
		{name: "res with register copy", data: []byte{0xdd, 0xcb, 0x05, 0x80}, text: "res 0,(ix + 5),b", length: 4},
		{name: "set with register copy", data: []byte{0xdd, 0xcb, 0x10, 0xc7}, text: "set 0,(ix + 16),a", length: 4},
		{name: "rotate with register copy", data: []byte{0xfd, 0xcb, 0xfe, 0x3b}, text: "srl (iy - 2),e", length: 4},
		{name: "bit test", data: []byte{0xfd, 0xcb, 0xff, 0x7e}, text: "bit 7,(iy - 1)", length: 4},
		{name: "bit test has no register copy", data: []byte{0xfd, 0xcb, 0x00, 0x78}, text: "bit 7,(iy + 0)", length: 4},
		{name: "wraps around", address: 0xfffd, data: []byte{0xdd, 0xcb, 0x80, 0xfe}, text: "set 7,(ix - 128)", length: 4},
	})
}

func TestDecoder_Operand(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		operand      Operand
		indexed      bool
		displacement int8
		target       uint16
		hasTarget    bool
	}{
		{"none", []byte{0x00}, Operand{}, false, 0, 0, false},
		{"absolute", []byte{0xc3, 0x00, 0x80}, Operand{Kind: OperandAbsolute, Value: 0x8000}, false, 0, 0x8000, true},
		{"immediate", []byte{0x3e, 0xff}, Operand{Kind: OperandImmediate, Value: 0xff}, false, 0, 0, false},
		{"relative", []byte{0x18, 0xfe}, Operand{Kind: OperandRelative, Value: -2}, false, 0, 0x1000, true},
		{"indexed", []byte{0xdd, 0x34, 0xfb}, Operand{Kind: OperandIndexed, Value: -5}, true, -5, 0, false},
		{"indexed immediate", []byte{0xdd, 0x36, 0x02, 0x42}, Operand{Kind: OperandImmediate, Value: 0x42}, true, 2, 0, false},
		{"indexed bit", []byte{0xdd, 0xcb, 0x07, 0x46}, Operand{Kind: OperandIndexed, Value: 7}, true, 7, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := symbols.New()
			table.Set(0x8000, "Start")
			dis := New(table)
			mem := newMemory(t, 0x1000, tt.data...)

			ins, err := dis.Decode(mem, 0x1000)
			assert.NoError(t, err)
			assert.Equal(t, tt.operand, ins.Operand)
			assert.Equal(t, tt.operand.Kind != OperandNone, ins.HasOperand())
			assert.Equal(t, tt.indexed, ins.Indexed)
			assert.Equal(t, tt.displacement, ins.Displacement)

			target, ok := ins.Target()
			assert.Equal(t, tt.hasTarget, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestDecoder_BaseLengths(t *testing.T) {
	dis := New(nil)
	mem := memory.New()

	for b := 0; b < 256; b++ {
		entry := baseTable[b]
		if entry.Kind != KindInstruction {
			continue
		}

		expected := 1
		switch {
		case entry.has(ArgImmediate16), entry.has(ArgMemory16):
			expected = 3
		case entry.has(ArgImmediate8), entry.has(ArgPort8), entry.has(ArgRelative):
			expected = 2
		}

		mem.WriteMemory(0x4000, byte(b))
		ins, err := dis.Decode(mem, 0x4000)
		assert.NoError(t, err)
		assert.Equal(t, expected, ins.Length)
		assert.True(t, ins.Length >= 1 && ins.Length <= 3)
		assert.NotEmpty(t, ins.Text)
	}
}

func TestDecoder_AllSequencesMakeProgress(t *testing.T) {
	dis := New(nil)
	mem := memory.New()

	for _, prefix := range []byte{0xcb, 0xdd, 0xed, 0xfd} {
		for b := 0; b < 256; b++ {
			mem.WriteMemory(0x0000, prefix)
			mem.WriteMemory(0x0001, byte(b))

			ins, err := dis.Decode(mem, 0x0000)
			assert.NoError(t, err)
			assert.True(t, ins.Length >= 1 && ins.Length <= MaxInstructionSize)
		}
	}
}

func TestDecoder_ShortSource(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"missing immediate", []byte{0x01, 0x02}},
		{"missing relative", []byte{0x18}},
		{"missing bit opcode", []byte{0xcb}},
		{"missing extended opcode", []byte{0xed}},
		{"missing index opcode", []byte{0xdd}},
		{"missing displacement", []byte{0xdd, 0x34}},
		{"missing index bit opcode", []byte{0xfd, 0xcb, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dis := New(nil)
			mem := memory.NewSlice(0x8000, tt.data)

			_, err := dis.Decode(mem, 0x8000)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, memory.ErrOutOfRange))
		})
	}
}

func TestDecoder_Concurrent(t *testing.T) {
	table := symbols.New()
	table.Set(0x8000, "Start")
	dis := New(table)
	mem := newMemory(t, 0x0000, 0xc3, 0x00, 0x80)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ins, err := dis.Decode(mem, 0x0000)
				if err != nil || ins.Text != "jp Start" {
					t.Errorf("unexpected decode result %q: %v", ins.Text, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
