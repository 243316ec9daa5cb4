package z80

import "strconv"

// registers lists the 8 bit register operands in opcode encoding order.
// Index 6 is the memory operand addressed by hl.
var registers = [8]string{"b", "c", "d", "e", "H", "L", "(HL)", "a"}

const indirectRegister = 6

var (
	baseTable     = buildBaseTable()
	bitTable      = buildBitTable()
	extendedTable = compileTable(extendedTemplates)
)

// baseTemplates contains all unprefixed opcodes except the 0x40-0xbf
// register load and arithmetic block, which is generated.
var baseTemplates = [256]string{
	0x00: "nop",
	0x01: "ld bc,nn",
	0x02: "ld (bc),a",
	0x03: "inc bc",
	0x04: "inc b",
	0x05: "dec b",
	0x06: "ld b,M",
	0x07: "rlca",
	0x08: "ex af,af'",
	0x09: "add HL,bc",
	0x0a: "ld a,(bc)",
	0x0b: "dec bc",
	0x0c: "inc c",
	0x0d: "dec c",
	0x0e: "ld c,M",
	0x0f: "rrca",
	0x10: "djnz E",
	0x11: "ld de,nn",
	0x12: "ld (de),a",
	0x13: "inc de",
	0x14: "inc d",
	0x15: "dec d",
	0x16: "ld d,M",
	0x17: "rla",
	0x18: "jr E",
	0x19: "add HL,de",
	0x1a: "ld a,(de)",
	0x1b: "dec de",
	0x1c: "inc e",
	0x1d: "dec e",
	0x1e: "ld e,M",
	0x1f: "rra",
	0x20: "jr nz,E",
	0x21: "ld HL,nn",
	0x22: "ld (nn),HL",
	0x23: "inc HL",
	0x24: "inc H",
	0x25: "dec H",
	0x26: "ld H,M",
	0x27: "daa",
	0x28: "jr z,E",
	0x29: "add HL,HL",
	0x2a: "ld HL,(nn)",
	0x2b: "dec HL",
	0x2c: "inc L",
	0x2d: "dec L",
	0x2e: "ld L,M",
	0x2f: "cpl",
	0x30: "jr nc,E",
	0x31: "ld sp,nn",
	0x32: "ld (nn),a",
	0x33: "inc sp",
	0x34: "inc (HL)",
	0x35: "dec (HL)",
	0x36: "ld (HL),M",
	0x37: "scf",
	0x38: "jr c,E",
	0x39: "add HL,sp",
	0x3a: "ld a,(nn)",
	0x3b: "dec sp",
	0x3c: "inc a",
	0x3d: "dec a",
	0x3e: "ld a,M",
	0x3f: "ccf",
	0xc0: "ret nz",
	0xc1: "pop bc",
	0xc2: "jp nz,nn",
	0xc3: "jp nn",
	0xc4: "call nz,nn",
	0xc5: "push bc",
	0xc6: "add a,M",
	0xc7: "rst 00h",
	0xc8: "ret z",
	0xc9: "ret",
	0xca: "jp z,nn",
	0xcc: "call z,nn",
	0xcd: "call nn",
	0xce: "adc a,M",
	0xcf: "rst 08h",
	0xd0: "ret nc",
	0xd1: "pop de",
	0xd2: "jp nc,nn",
	0xd3: "out (M),a",
	0xd4: "call nc,nn",
	0xd5: "push de",
	0xd6: "sub M",
	0xd7: "rst 10h",
	0xd8: "ret c",
	0xd9: "exx",
	0xda: "jp c,nn",
	0xdb: "in a,(M)",
	0xdc: "call c,nn",
	0xde: "sbc a,M",
	0xdf: "rst 18h",
	0xe0: "ret po",
	0xe1: "pop HL",
	0xe2: "jp po,nn",
	0xe3: "ex (sp),HL",
	0xe4: "call po,nn",
	0xe5: "push HL",
	0xe6: "and M",
	0xe7: "rst 20h",
	0xe8: "ret pe",
	0xe9: "jp [HL]",
	0xea: "jp pe,nn",
	0xeb: "ex de,hl", // not affected by index prefixes
	0xec: "call pe,nn",
	0xee: "xor M",
	0xef: "rst 28h",
	0xf0: "ret p",
	0xf1: "pop af",
	0xf2: "jp p,nn",
	0xf3: "di",
	0xf4: "call p,nn",
	0xf5: "push af",
	0xf6: "or M",
	0xf7: "rst 30h",
	0xf8: "ret m",
	0xf9: "ld sp,HL",
	0xfa: "jp m,nn",
	0xfb: "ei",
	0xfc: "call m,nn",
	0xfe: "cp M",
	0xff: "rst 38h",
}

// arithmeticOperations lists the 0x80-0xbf instruction groups in opcode order.
var arithmeticOperations = [8]string{"add a,", "adc a,", "sub ", "sbc a,", "and ", "xor ", "or ", "cp "}

func buildBaseTable() Table {
	templates := baseTemplates

	for i := 0x40; i < 0x80; i++ {
		templates[i] = "ld " + registers[(i>>3)&7] + "," + registers[i&7]
	}
	templates[0x76] = "halt"

	for i := 0x80; i < 0xc0; i++ {
		templates[i] = arithmeticOperations[(i>>3)&7] + registers[i&7]
	}

	table := compileTable(templates)
	table[0xcb] = Entry{Kind: KindBitPrefix}
	table[0xdd] = Entry{Kind: KindIXPrefix}
	table[0xed] = Entry{Kind: KindExtendedPrefix}
	table[0xfd] = Entry{Kind: KindIYPrefix}
	return table
}

var (
	bitRotations  = [8]string{"rlc", "rrc", "rl", "rr", "sla", "sra", "sll", "srl"}
	bitOperations = [3]string{"bit", "res", "set"}
	bitRegisters  = [8]string{"b", "c", "d", "e", "h", "l", "(hl)", "a"}
)

// buildBitTable generates the 0xcb prefixed table: 8 rotations and shifts
// for each register, followed by bit, res and set for every bit of every
// register.
func buildBitTable() Table {
	var table Table
	i := 0

	for _, mnemonic := range bitRotations {
		for _, register := range bitRegisters {
			table[i] = Entry{
				Kind:     KindInstruction,
				Mnemonic: mnemonic,
				Args:     []Arg{{Kind: ArgLiteral, Text: register}},
			}
			i++
		}
	}

	for _, mnemonic := range bitOperations {
		for bit := 0; bit < 8; bit++ {
			for _, register := range bitRegisters {
				table[i] = Entry{
					Kind:     KindInstruction,
					Mnemonic: mnemonic,
					Args: []Arg{
						{Kind: ArgLiteral, Text: strconv.Itoa(bit)},
						{Kind: ArgLiteral, Text: register},
					},
				}
				i++
			}
		}
	}
	return table
}

// extendedTemplates contains the 0xed prefixed opcodes, undefined slots
// are empty.
var extendedTemplates = [256]string{
	0x40: "in b,(c)",
	0x41: "out (c),b",
	0x42: "sbc hl,bc",
	0x43: "ld (nn),bc",
	0x44: "neg",
	0x45: "retn",
	0x46: "im 0",
	0x47: "ld i,a",
	0x48: "in c,(c)",
	0x49: "out (c),c",
	0x4a: "adc hl,bc",
	0x4b: "ld bc,(nn)",
	0x4c: "neg",
	0x4d: "reti",
	0x4e: "im 0/1",
	0x4f: "ld r,a",
	0x50: "in d,(c)",
	0x51: "out (c),d",
	0x52: "sbc hl,de",
	0x53: "ld (nn),de",
	0x54: "neg",
	0x55: "retn",
	0x56: "im 1",
	0x57: "ld a,i",
	0x58: "in e,(c)",
	0x59: "out (c),e",
	0x5a: "adc hl,de",
	0x5b: "ld de,(nn)",
	0x5c: "neg",
	0x5d: "retn",
	0x5e: "im 2",
	0x5f: "ld a,r",
	0x60: "in h,(c)",
	0x61: "out (c),h",
	0x62: "sbc hl,hl",
	0x63: "ld (nn),hl",
	0x64: "neg",
	0x65: "retn",
	0x66: "im 0",
	0x67: "rrd",
	0x68: "in l,(c)",
	0x69: "out (c),l",
	0x6a: "adc hl,hl",
	0x6b: "ld hl,(nn)",
	0x6c: "neg",
	0x6d: "retn",
	0x6e: "im 0/1",
	0x6f: "rld",
	0x70: "in (c)",
	0x71: "out (c),0",
	0x72: "sbc hl,sp",
	0x73: "ld (nn),sp",
	0x74: "neg",
	0x75: "retn",
	0x76: "im 1",
	0x78: "in a,(c)",
	0x79: "out (c),a",
	0x7a: "adc hl,sp",
	0x7b: "ld sp,(nn)",
	0x7c: "neg",
	0x7d: "retn",
	0x7e: "im 2",
	0xa0: "ldi",
	0xa1: "cpi",
	0xa2: "ini",
	0xa3: "outi",
	0xa8: "ldd",
	0xa9: "cpd",
	0xaa: "ind",
	0xab: "outd",
	0xb0: "ldir",
	0xb1: "cpir",
	0xb2: "inir",
	0xb3: "otir",
	0xb8: "lddr",
	0xb9: "cpdr",
	0xba: "indr",
	0xbb: "otdr",
}
