// Package filter implements a BPF-classic packet filter: a two-pass
// assembler that turns a small line-oriented source language into a
// program of fixed-width instructions, and an interpreter that runs that
// program against captured frame bytes (spec §4.6).
//
// The wire instruction shape — a 16-bit opcode, two 8-bit jump offsets,
// and a 32-bit immediate/offset field — matches what the kernel's classic
// BPF and golang.org/x/net/bpf.RawInstruction both use; this package's
// encoding and interpreter are hand-built rather than delegating to
// x/net/bpf, since the filter VM is one of this system's own named
// subsystems, not a pass-through to the kernel's.
package filter

// Instruction is one classic-BPF instruction in its fixed-width wire form.
type Instruction struct {
	Op uint16 // opcode: class | size/mode/alu-op | src
	Jt uint8  // jump-true offset (JMP class only)
	Jf uint8  // jump-false offset (JMP class only)
	K  uint32 // immediate, or byte offset, or jump offset (unconditional JMP)
}

// Instruction classes (low 3 bits of Op).
const (
	classLD  = 0x00
	classLDX = 0x01
	classST  = 0x02
	classSTX = 0x03
	classALU = 0x04
	classJMP = 0x05
	classRET = 0x06
	classMISC = 0x07

	classMask = 0x07
)

// LD/LDX size field (bits 3-4).
const (
	sizeW = 0x00 // word (4 bytes)
	sizeH = 0x08 // half word (2 bytes)
	sizeB = 0x10 // byte

	sizeMask = 0x18
)

// LD/LDX addressing mode field (bits 5-7).
const (
	modeIMM = 0x00
	modeABS = 0x20
	modeIND = 0x40
	modeMEM = 0x60
	modeLEN = 0x80
	modeMSH = 0xa0

	modeMask = 0xe0
)

// ALU/JMP operation field (bits 4-7).
const (
	aluADD = 0x00
	aluSUB = 0x10
	aluMUL = 0x20
	aluDIV = 0x30
	aluOR  = 0x40
	aluAND = 0x50
	aluLSH = 0x60
	aluRSH = 0x70
	aluNEG = 0x80
	aluMOD = 0x90
	aluXOR = 0xa0

	jmpJA   = 0x00
	jmpJEQ  = 0x10
	jmpJGT  = 0x20
	jmpJGE  = 0x30
	jmpJSET = 0x40

	opMask = 0xf0
)

// ALU/JMP source field (bit 3): operand is the immediate K, or register X.
const (
	srcK = 0x00
	srcX = 0x08

	srcMask = 0x08
)

// RET value-source field (bit 4).
const (
	retK = 0x00
	retA = 0x10
)

// MISC transfer-register field (bit 7).
const (
	miscTAX = 0x00
	miscTXA = 0x80
)

// MaxProgramLength bounds assembled program size (spec §4.6).
const MaxProgramLength = 4096
