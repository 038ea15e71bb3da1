package filter

import (
	"fmt"
	"strings"
)

// DumpFormat selects how Dump renders an assembled program (spec §6,
// mirroring the original tool's `-d`/`--dd` flags).
type DumpFormat int

const (
	// AsInts renders a first line holding the instruction count, then one
	// "code jt jf k" line per instruction, in decimal.
	AsInts DumpFormat = iota
	// AsGoLiteral renders the program as a Go composite literal of
	// filter.Instruction values, suitable for pasting into source.
	AsGoLiteral
)

// Dump renders prog in the requested format.
func Dump(prog []Instruction, format DumpFormat) string {
	switch format {
	case AsGoLiteral:
		return dumpGoLiteral(prog)
	default:
		return dumpInts(prog)
	}
}

func dumpInts(prog []Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(prog))
	for _, ins := range prog {
		fmt.Fprintf(&b, "%d %d %d %d\n", ins.Op, ins.Jt, ins.Jf, ins.K)
	}
	return b.String()
}

func dumpGoLiteral(prog []Instruction) string {
	var b strings.Builder
	b.WriteString("[]filter.Instruction{\n")
	for _, ins := range prog {
		fmt.Fprintf(&b, "\t{Op: 0x%04x, Jt: %d, Jf: %d, K: 0x%08x},\n", ins.Op, ins.Jt, ins.Jf, ins.K)
	}
	b.WriteString("}\n")
	return b.String()
}
