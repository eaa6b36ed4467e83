package cpu

import (
	"fmt"
)

// Code is an LS-8 instruction byte.
//
// The top two bits of an instruction give its operand count.
type Code uint8

const (
	OP_HLT  = Code(0b00000001) // HLT
	OP_LDI  = Code(0b10000010) // LDI
	OP_PRN  = Code(0b01000111) // PRN
	OP_MUL  = Code(0b10100010) // MUL
	OP_PUSH = Code(0b01000101) // PUSH
	OP_POP  = Code(0b01000110) // POP
)

var codeName = map[Code]string{
	OP_HLT:  "HLT",
	OP_LDI:  "LDI",
	OP_PRN:  "PRN",
	OP_MUL:  "MUL",
	OP_PUSH: "PUSH",
	OP_POP:  "POP",
}

// codeMap maps mnemonics to instruction codes.
var codeMap = map[string]Code{
	"HLT":  OP_HLT,
	"LDI":  OP_LDI,
	"PRN":  OP_PRN,
	"MUL":  OP_MUL,
	"PUSH": OP_PUSH,
	"POP":  OP_POP,
}

// Valid returns true if the code is a recognized instruction.
func (code Code) Valid() bool {
	_, ok := codeName[code]
	return ok
}

// Operands returns the number of operand bytes following the instruction.
func (code Code) Operands() int {
	return int(code >> 6)
}

// String returns the mnemonic, or the binary value of an unknown code.
func (code Code) String() string {
	name, ok := codeName[code]
	if !ok {
		return fmt.Sprintf("0b%08b", uint8(code))
	}

	return name
}

// AluOp is an ALU operation type.
type AluOp int

const (
	ALU_OP_ADD = AluOp(0) // add
	ALU_OP_MUL = AluOp(1) // mul
)

func (op AluOp) String() string {
	switch op {
	case ALU_OP_ADD:
		return "add"
	case ALU_OP_MUL:
		return "mul"
	}

	return fmt.Sprintf("AluOp(%d)", int(op))
}

// Opcode represents a line of loaded or assembled code with its source
// location and generated bytes.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Bytes     []uint8
	LinkLabel string
}
