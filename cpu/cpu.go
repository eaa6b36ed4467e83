// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
	"strings"

	"github.com/ezrec/ls8/translate"
)

const (
	RAM_SIZE       = 256  // Bytes of RAM.
	REGISTER_COUNT = 8    // Number of general-purpose registers.
	REG_SP         = 7    // Register mirroring the stack pointer.
	STACK_TOP      = 0xff // Stack pointer after reset.
	STACK_MODULUS  = 255  // The stack pointer wraps modulo this value.
)

var _cpu_defines = map[string]string{
	"RAM_SIZE":  fmt.Sprintf("%v", RAM_SIZE),
	"REG_SP":    fmt.Sprintf("%v", REG_SP),
	"STACK_TOP": fmt.Sprintf("%#x", STACK_TOP),
}

// Defines returns the predefined machine constants.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Cpu is the simulation context for the LS-8 machine.
type Cpu struct {
	Verbose bool          // Set to enable verbose logging.
	Unknown UnknownPolicy // Action taken on unrecognized instructions.

	Output      io.Writer // PRN and diagnostic output; nil is os.Stdout.
	TraceOutput io.Writer // If set, receives a trace line before each cycle.

	Ram      [RAM_SIZE]uint8       // Memory.
	Register [REGISTER_COUNT]uint8 // Register bank. r7 mirrors Sp.
	Pc       int                   // Program counter.
	Sp       uint8                 // Stack pointer.
	Halted   bool                  // Set once HLT has executed.

	Ticks int // CPU ticks counter.
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Output: os.Stdout,
	}

	cpu.Reset()

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "sp", "halt",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Sp)
		case "halt":
			strval = "false"
			if cpu.Halted {
				strval = "true"
			}
		default:
			val := cpu.Register[byte(reg[1]-'0')]
			strval = fmt.Sprintf("%02X (%d)", val, val)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Trace returns a one line snapshot of the program counter, the next
// three bytes of memory, and the register bank.
func (cpu *Cpu) Trace() string {
	hex := func(address int) string {
		value, err := cpu.RamRead(address)
		if err != nil {
			return "--"
		}
		return fmt.Sprintf("%02X", value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "TRACE: %02X | %v %v %v |", cpu.Pc, hex(cpu.Pc), hex(cpu.Pc+1), hex(cpu.Pc+2))
	for _, val := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", val)
	}

	return sb.String()
}

// Reset the CPU state.
// - Clears memory and the registers.
// - Sets the stack pointer to STACK_TOP.
// - Zeros the program counter and ticks counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Ram[:])
	clear(cpu.Register[:])
	cpu.setRegister(REG_SP, STACK_TOP)
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load copies a program image into memory, starting at address 0.
// Registers, the program counter, and the stack pointer are untouched.
func (cpu *Cpu) Load(data []uint8) (err error) {
	if len(data) > len(cpu.Ram) {
		err = ErrProgramSize
		return
	}

	copy(cpu.Ram[:], data)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(data))
	}

	return
}

// RamRead returns the byte at address.
func (cpu *Cpu) RamRead(address int) (value uint8, err error) {
	if address < 0 || address >= len(cpu.Ram) {
		err = ErrAddress(address)
		return
	}

	value = cpu.Ram[address]
	return
}

// RamWrite stores value at address.
func (cpu *Cpu) RamWrite(address int, value uint8) (err error) {
	if address < 0 || address >= len(cpu.Ram) {
		err = ErrAddress(address)
		return
	}

	cpu.Ram[address] = value
	return
}

// checkRegister validates a register index.
func checkRegister(index uint8) (err error) {
	if int(index) >= REGISTER_COUNT {
		err = ErrRegisterInvalid
	}
	return
}

// setRegister is the only writer of the register bank, and keeps Sp
// equal to r7. The index must already be valid.
func (cpu *Cpu) setRegister(index uint8, value uint8) {
	cpu.Register[index] = value
	if index == REG_SP {
		cpu.Sp = value
	}
}

// output returns the writer for PRN and diagnostics.
func (cpu *Cpu) output() io.Writer {
	if cpu.Output == nil {
		return os.Stdout
	}
	return cpu.Output
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	value, err := cpu.RamRead(cpu.Pc)
	if err != nil {
		return
	}

	code = Code(value)
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	if cpu.TraceOutput != nil {
		fmt.Fprintln(cpu.TraceOutput, cpu.Trace())
	}

	err = cpu.Execute(code)

	return
}

// Execute executes a single instruction located at the program counter.
func (cpu *Cpu) Execute(code Code) (err error) {
	pc := cpu.Pc
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Code: code, Pc: pc}, err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, code)
	}

	if !code.Valid() {
		err = cpu.unknown(code)
		return
	}

	var args [2]uint8
	for n := range code.Operands() {
		args[n], err = cpu.RamRead(cpu.Pc + 1 + n)
		if err != nil {
			return
		}
	}

	switch code {
	case OP_HLT:
		cpu.Halted = true
	case OP_LDI:
		err = checkRegister(args[0])
		if err != nil {
			return
		}
		cpu.setRegister(args[0], args[1])
	case OP_PRN:
		err = checkRegister(args[0])
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(cpu.output(), cpu.Register[args[0]])
	case OP_MUL:
		err = cpu.Alu(ALU_OP_MUL, args[0], args[1])
	case OP_PUSH:
		err = cpu.Push(args[0])
	case OP_POP:
		err = cpu.Pop(args[0])
	}
	if err != nil {
		return
	}

	if !cpu.Halted {
		cpu.Pc += 1 + code.Operands()
	}
	cpu.Ticks += 1

	return
}

// unknown reports an unrecognized instruction, then applies the
// configured policy.
func (cpu *Cpu) unknown(code Code) (err error) {
	translate.Fprintf(cpu.output(), "Unknown instruction %v at address %v\n", uint8(code), cpu.Pc)

	switch cpu.Unknown {
	case UNKNOWN_SKIP:
		cpu.Pc += 1
	case UNKNOWN_HALT:
		cpu.Halted = true
		err = ErrOpcodeUnknown
	default:
		// The program counter stays put; the next fetch sees the same byte.
	}
	cpu.Ticks += 1

	return
}

// Alu performs the requested ALU action on two registers, storing the
// result in reg_a. Results wrap to 8 bits.
func (cpu *Cpu) Alu(op AluOp, reg_a, reg_b uint8) (err error) {
	err = checkRegister(reg_a)
	if err != nil {
		return
	}
	err = checkRegister(reg_b)
	if err != nil {
		return
	}

	output, err := doAlu(op, cpu.Register[reg_a], cpu.Register[reg_b])
	if err != nil {
		return
	}

	cpu.setRegister(reg_a, output)

	return
}

// doAlu returns the output of an ALU operation.
func doAlu(op AluOp, input uint8, value uint8) (output uint8, err error) {
	switch op {
	case ALU_OP_ADD:
		output = input + value
	case ALU_OP_MUL:
		output = input * value
	default:
		err = fmt.Errorf("%w: %v", ErrAluUnsupported, op)
	}

	return
}

// stackStep moves the stack pointer by delta, wrapping modulo STACK_MODULUS.
func stackStep(sp uint8, delta int) uint8 {
	return uint8((int(sp) + delta + STACK_MODULUS) % STACK_MODULUS)
}

// Push decrements the stack pointer, then copies a register to the
// top of the stack.
func (cpu *Cpu) Push(reg uint8) (err error) {
	err = checkRegister(reg)
	if err != nil {
		return
	}

	cpu.setRegister(REG_SP, stackStep(cpu.Sp, -1))

	err = cpu.RamWrite(int(cpu.Sp), cpu.Register[reg])

	return
}

// Pop copies the top of the stack to a register, then increments the
// stack pointer.
func (cpu *Cpu) Pop(reg uint8) (err error) {
	err = checkRegister(reg)
	if err != nil {
		return
	}

	sp := cpu.Sp
	value, err := cpu.RamRead(int(sp))
	if err != nil {
		return
	}

	cpu.setRegister(reg, value)
	cpu.setRegister(REG_SP, stackStep(sp, 1))

	return
}
