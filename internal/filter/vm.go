package filter

// scratchSize is the number of 32-bit scratch memory words the M[] and
// MEM addressing mode read and write (classic BPF fixes this at 16).
const scratchSize = 16

// Run executes prog against pkt (the captured frame bytes) and returns the
// 32-bit accumulator the RET instruction produced: 0 means drop, any
// other value means accept the first min(k, len(pkt)) bytes (spec §4.6).
// Run never panics: every memory access the program performs is bounds
// checked, and a program that accesses past the end of pkt simply reads
// zero, matching classic BPF's defined behavior for short packets.
func Run(prog []Instruction, pkt []byte) uint32 {
	var a, x uint32
	var mem [scratchSize]uint32

	pc := 0
	for pc < len(prog) {
		ins := prog[pc]
		class := ins.Op & classMask

		switch class {
		case classLD:
			a = loadValue(ins, pkt, a, x, &mem)
			pc++
		case classLDX:
			x = loadValue(ins, pkt, a, x, &mem)
			pc++
		case classST:
			mem[ins.K%scratchSize] = a
			pc++
		case classSTX:
			mem[ins.K%scratchSize] = x
			pc++
		case classALU:
			operand := aluOperand(ins, x)
			a = applyALU(ins.Op&opMask, a, operand)
			pc++
		case classJMP:
			pc = stepJMP(ins, a, x, pc)
		case classRET:
			if ins.Op&0x10 == retA {
				return a
			}
			return ins.K
		case classMISC:
			if ins.Op&miscTXA == miscTXA {
				a = x
			} else {
				x = a
			}
			pc++
		default:
			return 0
		}
	}
	return 0
}

func loadValue(ins Instruction, pkt []byte, a, x uint32, mem *[scratchSize]uint32) uint32 {
	switch ins.Op & modeMask {
	case modeIMM:
		return ins.K
	case modeABS:
		return readPacket(pkt, int(ins.K), ins.Op&sizeMask)
	case modeIND:
		return readPacket(pkt, int(ins.K)+int(x), ins.Op&sizeMask)
	case modeMEM:
		return mem[ins.K%scratchSize]
	case modeLEN:
		return uint32(len(pkt))
	case modeMSH:
		// 4*([k]&0xf): read one byte at offset k, mask its low nibble,
		// multiply by 4. Classic BPF uses this to compute an IP header
		// length in 32-bit words, scaled to bytes.
		b := readPacket(pkt, int(ins.K), sizeB)
		return (b & 0x0f) * 4
	default:
		return 0
	}
}

// readPacket reads a big-endian value of the given size from pkt at
// offset, returning 0 for any access that would run past the end —
// classic BPF's defined behavior for a too-short packet, not an error.
func readPacket(pkt []byte, offset int, size uint16) uint32 {
	if offset < 0 {
		return 0
	}
	var width int
	switch size {
	case sizeB:
		width = 1
	case sizeH:
		width = 2
	default:
		width = 4
	}
	if offset+width > len(pkt) {
		return 0
	}
	var v uint32
	for i := 0; i < width; i++ {
		v = v<<8 | uint32(pkt[offset+i])
	}
	return v
}

func aluOperand(ins Instruction, x uint32) uint32 {
	if ins.Op&srcMask == srcX {
		return x
	}
	return ins.K
}

func applyALU(op uint16, a, operand uint32) uint32 {
	switch op {
	case aluADD:
		return a + operand
	case aluSUB:
		return a - operand
	case aluMUL:
		return a * operand
	case aluDIV:
		if operand == 0 {
			return 0
		}
		return a / operand
	case aluMOD:
		if operand == 0 {
			return 0
		}
		return a % operand
	case aluOR:
		return a | operand
	case aluAND:
		return a & operand
	case aluXOR:
		return a ^ operand
	case aluLSH:
		return a << (operand & 0x1f)
	case aluRSH:
		return a >> (operand & 0x1f)
	case aluNEG:
		return uint32(-int32(a))
	default:
		return a
	}
}

func stepJMP(ins Instruction, a, x uint32, pc int) int {
	op := ins.Op & opMask
	if op == jmpJA {
		return pc + 1 + int(ins.K)
	}
	operand := aluOperand(ins, x)
	var taken bool
	switch op {
	case jmpJEQ:
		taken = a == operand
	case jmpJGT:
		taken = a > operand
	case jmpJGE:
		taken = a >= operand
	case jmpJSET:
		taken = a&operand != 0
	}
	if taken {
		return pc + 1 + int(ins.Jt)
	}
	return pc + 1 + int(ins.Jf)
}
