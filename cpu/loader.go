package cpu

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Loader reads LS-8 binary text: one base-2 byte per line, '#' starts a
// comment, and blank lines are skipped.
type Loader struct {
	Verbose bool // If set, verbosely logs each loaded byte.
}

// Parse parses an input stream into a Program, one byte per line.
func (ld *Loader) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	var opcodes []Opcode
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		code, comment, _ := strings.Cut(text, "#")
		line = strings.TrimSpace(code)
		if len(line) == 0 {
			continue
		}

		var value uint64
		value, err = strconv.ParseUint(line, 2, 8)
		if err != nil {
			err = ErrParseBinary(line)
			return
		}

		ip := len(opcodes)
		if ip >= RAM_SIZE {
			err = ErrProgramSize
			return
		}

		if ld.Verbose {
			log.Printf("loader: %02x: %08b", ip, value)
		}

		opcodes = append(opcodes, Opcode{
			LineNo: lineno,
			Ip:     ip,
			Words:  strings.Fields(comment),
			Bytes:  []uint8{uint8(value)},
		})
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes: opcodes,
	}

	return
}

// LoadFile parses the named file. A file that cannot be opened is
// reported as *ErrProgramMissing.
func (ld *Loader) LoadFile(name string) (prog *Program, err error) {
	inf, err := os.Open(name)
	if err != nil {
		err = &ErrProgramMissing{Path: name, Err: err}
		return
	}
	defer inf.Close()

	prog, err = ld.Parse(inf)
	return
}
