package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AssembleError is returned by Assemble when the source fails to parse. It
// carries enough to format the "file:line: error: ..." diagnostic spec
// §4.6 requires.
type AssembleError struct {
	File string
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("%s:%d: error: %s", e.File, e.Line, e.Msg)
}

type statement struct {
	label    string // "" if this statement has no label
	mnemonic string // "" if this statement is label-only
	operands string
	line     int
}

// Assemble compiles source (named file in diagnostics) into a program. On
// any parse error it returns the file:line diagnostic and a nil program —
// callers should treat that as "reject the filter", never as "accept
// everything" (spec §4.6: "returns an empty program").
func Assemble(file, source string) ([]Instruction, error) {
	stmts, err := splitStatements(source)
	if err != nil {
		return nil, &AssembleError{File: file, Line: 0, Msg: err.Error()}
	}

	labels := make(map[string]int)
	instrIdx := 0
	for _, s := range stmts {
		if s.label != "" {
			if _, dup := labels[s.label]; dup {
				return nil, &AssembleError{File: file, Line: s.line, Msg: fmt.Sprintf("duplicate label %q", s.label)}
			}
			labels[s.label] = instrIdx
		}
		if s.mnemonic != "" {
			instrIdx++
		}
	}
	if instrIdx > MaxProgramLength {
		return nil, &AssembleError{File: file, Line: 0, Msg: fmt.Sprintf("program length %d exceeds maximum %d", instrIdx, MaxProgramLength)}
	}

	prog := make([]Instruction, 0, instrIdx)
	for _, s := range stmts {
		if s.mnemonic == "" {
			continue
		}
		ins, err := assembleOne(s.mnemonic, s.operands, len(prog), labels)
		if err != nil {
			return nil, &AssembleError{File: file, Line: s.line, Msg: err.Error()}
		}
		prog = append(prog, ins)
	}
	return prog, nil
}

var labelStmtRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)

func splitStatements(source string) ([]statement, error) {
	var out []statement
	lineNo := 0
	for _, rawLine := range strings.Split(source, "\n") {
		lineNo++
		if semi := strings.IndexByte(rawLine, ';'); semi >= 0 {
			rawLine = rawLine[:semi]
		}
		part := strings.TrimSpace(rawLine)
		if part == "" {
			continue
		}
		label := ""
		if m := labelStmtRE.FindStringSubmatch(part); m != nil {
			label = m[1]
			part = strings.TrimSpace(m[2])
		}
		if part == "" {
			out = append(out, statement{label: label, line: lineNo})
			continue
		}
		fields := strings.SplitN(part, " ", 2)
		mnemonic := strings.ToLower(fields[0])
		operands := ""
		if len(fields) == 2 {
			operands = strings.TrimSpace(fields[1])
		}
		out = append(out, statement{label: label, mnemonic: mnemonic, operands: operands, line: lineNo})
	}
	return out, nil
}

var (
	immRE = regexp.MustCompile(`^#(-?\w+)$`)
	absRE = regexp.MustCompile(`^\[(\w+)\]$`)
	indRE = regexp.MustCompile(`^\[x\s*\+\s*(\w+)\]$`)
	memRE = regexp.MustCompile(`^M\[(\w+)\]$`)
	mshRE = regexp.MustCompile(`^4\*\(\[(\w+)\]\s*&\s*0xf\)$`)
)

func parseNumber(tok string) (uint32, error) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return uint32(int32(v)), nil
}

func sizeSuffix(mnemonic, base string) (uint16, bool) {
	switch {
	case mnemonic == base:
		return sizeW, true
	case mnemonic == base+"h":
		return sizeH, true
	case mnemonic == base+"b":
		return sizeB, true
	}
	return 0, false
}

func assembleOne(mnemonic, operands string, idx int, labels map[string]int) (Instruction, error) {
	switch {
	case mnemonic == "ld", mnemonic == "ldh", mnemonic == "ldb":
		size, _ := sizeSuffix(mnemonic, "ld")
		return assembleLoad(classLD, size, operands)
	case mnemonic == "ldx", mnemonic == "ldxh", mnemonic == "ldxb":
		size, _ := sizeSuffix(mnemonic, "ldx")
		return assembleLoad(classLDX, size, operands)
	case mnemonic == "st":
		return assembleStore(classST, operands)
	case mnemonic == "stx":
		return assembleStore(classSTX, operands)
	case isALUMnemonic(mnemonic):
		return assembleALU(mnemonic, operands)
	case mnemonic == "jmp", mnemonic == "ja":
		return assembleJA(operands, idx, labels)
	case mnemonic == "jeq", mnemonic == "jgt", mnemonic == "jge", mnemonic == "jset":
		return assembleJcc(mnemonic, operands, idx, labels)
	case mnemonic == "ret":
		return assembleRet(operands)
	case mnemonic == "tax":
		return Instruction{Op: classMISC | miscTAX}, nil
	case mnemonic == "txa":
		return Instruction{Op: classMISC | miscTXA}, nil
	default:
		return Instruction{}, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
}

func assembleLoad(class uint16, size uint16, operands string) (Instruction, error) {
	switch {
	case operands == "len":
		return Instruction{Op: class | modeLEN}, nil
	case immRE.MatchString(operands):
		k, err := parseNumber(immRE.FindStringSubmatch(operands)[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: class | modeIMM, K: k}, nil
	case memRE.MatchString(operands):
		k, err := parseNumber(memRE.FindStringSubmatch(operands)[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: class | modeMEM, K: k}, nil
	case mshRE.MatchString(operands):
		k, err := parseNumber(mshRE.FindStringSubmatch(operands)[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: class | modeMSH | sizeB, K: k}, nil
	case indRE.MatchString(operands):
		k, err := parseNumber(indRE.FindStringSubmatch(operands)[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: class | modeIND | size, K: k}, nil
	case absRE.MatchString(operands):
		k, err := parseNumber(absRE.FindStringSubmatch(operands)[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: class | modeABS | size, K: k}, nil
	default:
		return Instruction{}, fmt.Errorf("unrecognized load operand %q", operands)
	}
}

func assembleStore(class uint16, operands string) (Instruction, error) {
	m := memRE.FindStringSubmatch(operands)
	if m == nil {
		return Instruction{}, fmt.Errorf("store requires M[k], got %q", operands)
	}
	k, err := parseNumber(m[1])
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Op: class, K: k}, nil
}

var aluOps = map[string]uint16{
	"add": aluADD, "sub": aluSUB, "mul": aluMUL, "div": aluDIV, "mod": aluMOD,
	"and": aluAND, "or": aluOR, "xor": aluXOR, "lsh": aluLSH, "rsh": aluRSH, "neg": aluNEG,
}

func isALUMnemonic(mnemonic string) bool {
	_, ok := aluOps[mnemonic]
	return ok
}

func assembleALU(mnemonic, operands string) (Instruction, error) {
	op := aluOps[mnemonic]
	if mnemonic == "neg" {
		return Instruction{Op: classALU | op}, nil
	}
	if operands == "x" {
		return Instruction{Op: classALU | op | srcX}, nil
	}
	if m := immRE.FindStringSubmatch(operands); m != nil {
		k, err := parseNumber(m[1])
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: classALU | op | srcK, K: k}, nil
	}
	return Instruction{}, fmt.Errorf("alu operand must be #k or x, got %q", operands)
}

func assembleJA(operands string, idx int, labels map[string]int) (Instruction, error) {
	target, ok := labels[operands]
	if !ok {
		return Instruction{}, fmt.Errorf("undefined label %q", operands)
	}
	if target <= idx {
		return Instruction{}, fmt.Errorf("backward jump to %q rejected", operands)
	}
	return Instruction{Op: classJMP | jmpJA, K: uint32(target - idx - 1)}, nil
}

func assembleJcc(mnemonic, operands string, idx int, labels map[string]int) (Instruction, error) {
	parts := strings.Split(operands, ",")
	if len(parts) != 3 {
		return Instruction{}, fmt.Errorf("%s requires \"#k, true, false\", got %q", mnemonic, operands)
	}
	kTok := strings.TrimSpace(parts[0])
	trueLabel := strings.TrimSpace(parts[1])
	falseLabel := strings.TrimSpace(parts[2])

	var op uint16
	switch mnemonic {
	case "jeq":
		op = jmpJEQ
	case "jgt":
		op = jmpJGT
	case "jge":
		op = jmpJGE
	case "jset":
		op = jmpJSET
	}

	var src uint16
	var k uint32
	if kTok == "x" {
		src = srcX
	} else if m := immRE.FindStringSubmatch(kTok); m != nil {
		v, err := parseNumber(m[1])
		if err != nil {
			return Instruction{}, err
		}
		k = v
	} else {
		return Instruction{}, fmt.Errorf("jump condition operand must be #k or x, got %q", kTok)
	}

	jt, err := jumpOffset(trueLabel, idx, labels)
	if err != nil {
		return Instruction{}, err
	}
	jf, err := jumpOffset(falseLabel, idx, labels)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: classJMP | op | src, Jt: jt, Jf: jf, K: k}, nil
}

func jumpOffset(label string, idx int, labels map[string]int) (uint8, error) {
	target, ok := labels[label]
	if !ok {
		return 0, fmt.Errorf("undefined label %q", label)
	}
	if target <= idx {
		return 0, fmt.Errorf("backward jump to %q rejected", label)
	}
	offset := target - idx - 1
	if offset > 0xff {
		return 0, fmt.Errorf("jump to %q out of range for an 8-bit offset", label)
	}
	return uint8(offset), nil
}

func assembleRet(operands string) (Instruction, error) {
	if operands == "a" {
		return Instruction{Op: classRET | retA}, nil
	}
	m := immRE.FindStringSubmatch(operands)
	if m == nil {
		return Instruction{}, fmt.Errorf("ret requires #k or a, got %q", operands)
	}
	k, err := parseNumber(m[1])
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Op: classRET | retK, K: k}, nil
}
