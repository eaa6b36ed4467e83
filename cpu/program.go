package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Program is a loaded or assembled LS-8 program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode covering an address.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode covering address ip, if any.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Bytes returns an iterator over the address and value of every byte.
func (prog *Program) Bytes() iter.Seq2[int, uint8] {
	return func(yield func(ip int, value uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(op.Ip+n, value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []uint8) {
	for ip, value := range prog.Bytes() {
		for len(bins) < ip {
			bins = append(bins, 0)
		}
		bins = append(bins, value)
	}

	return
}

// Write emits the program as LS-8 binary text. The first byte of each
// opcode carries its source words as a comment.
func (prog *Program) Write(w io.Writer) (err error) {
	out := bufio.NewWriter(w)

	for ip, value := range prog.Bytes() {
		dbg := prog.Debug(ip)
		if dbg.Index == 0 && len(dbg.Words) > 0 {
			_, err = fmt.Fprintf(out, "%08b # %v\n", value, strings.Join(dbg.Words, " "))
		} else {
			_, err = fmt.Fprintf(out, "%08b\n", value)
		}
		if err != nil {
			return
		}
	}

	err = out.Flush()
	return
}
