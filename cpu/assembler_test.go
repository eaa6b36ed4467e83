package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", RAM_SIZE), asm.Equate["RAM_SIZE"])
	assert.Equal(fmt.Sprintf("%#x", STACK_TOP), asm.Equate["STACK_TOP"])
	assert.Equal(fmt.Sprintf("%v", REG_SP), asm.Equate["REG_SP"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"LDI R0,8       ; load",
		"ldi r1 0b1001  # lower case works too",
		"MUL R0, R1",
		"PUSH R0",
		"POP SP",
		"PRN R0",
		"HLT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"LDI", "R0", "8"}, []uint8{0x82, 0, 8}, ""},
		{2, 3, []string{"ldi", "r1", "0b1001"}, []uint8{0x82, 1, 9}, ""},
		{3, 6, []string{"MUL", "R0", "R1"}, []uint8{0xa2, 0, 1}, ""},
		{4, 9, []string{"PUSH", "R0"}, []uint8{0x45, 0}, ""},
		{5, 11, []string{"POP", "SP"}, []uint8{0x46, 7}, ""},
		{6, 13, []string{"PRN", "R0"}, []uint8{0x47, 0}, ""},
		{7, 15, []string{"HLT"}, []uint8{0x01}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerValues(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x10")

	program := []string{
		".equ COUNT 6",
		".equ ACC R3",
		"LDI ACC COUNT",
		"LDI R0 $(COUNT * 7)",
		"LDI R1 $(BASE + LINENO)",
		"LDI R2 'A'",
		"LDI R4 -1",
		"LDI R5 $(STACK_TOP - 1)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]uint8{
		0x82, 3, 6,
		0x82, 0, 42,
		0x82, 1, 0x15,
		0x82, 2, 'A',
		0x82, 4, 0xff,
		0x82, 5, 0xfe,
	}, prog.Binary())
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"start: LDI R0 data",
		"       LDI R1 start",
		"       LDI R2 $(start + 3)",
		"       HLT",
		"data:  .byte 1 0x02 0b11",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(0, asm.Label["start"])
	assert.Equal(10, asm.Label["data"])
	assert.Equal("data", prog.Opcodes[0].LinkLabel)
	assert.Equal([]uint8{
		0x82, 0, 10,
		0x82, 1, 0,
		0x82, 2, 3,
		0x01,
		1, 2, 3,
	}, prog.Binary())
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"LDI R0 6",
		"LDI R1 7",
		"MUL R0 R1",
		"PRN R0",
		"HLT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	cpu, output := newTestCpu(t, prog.Binary()...)
	assert.NoError(runTicks(cpu, 10))
	assert.True(cpu.Halted)
	assert.Equal("42\n", output.String())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		program  []string
		lineno   int
		expected error
	}){
		{"unknown", []string{"JMP R0"}, 1, ErrInstructionInvalid},
		{"missing", []string{"HLT", "LDI R0"}, 2, ErrOpcodeValueMissing},
		{"extra", []string{"PRN R0 R1"}, 1, ErrOpcodeExtraArgs},
		{"extra hlt", []string{"HLT R0"}, 1, ErrOpcodeExtraArgs},
		{"register", []string{"PUSH R8"}, 1, ErrRegisterInvalid},
		{"range", []string{"LDI R0 256"}, 1, ErrValueRange},
		{"range expr", []string{"LDI R0 $(-129)"}, 1, ErrValueRange},
		{"byte", []string{".byte"}, 1, ErrOpcodeValueMissing},
		{"byte number", []string{".byte zz"}, 1, ErrParseNumber("zz")},
		{"equ syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ duplicate", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"label duplicate", []string{"a: HLT", "a: HLT"}, 2, ErrLabelDuplicate},
		{"label missing", []string{"HLT", "LDI R0 nowhere", "HLT"}, 2, ErrLabelMissing("nowhere")},
		{"expression", []string{"LDI R0 $(1 +)"}, 1, ErrParseExpression("1 +")},
		{"size", []string{fmt.Sprintf(".byte %v", strings.Repeat("0 ", RAM_SIZE+1))}, 1, ErrProgramSize},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.expected, entry.name)

		var syntax *ErrSyntax
		assert.True(errors.As(err, &syntax), entry.name)
		if syntax != nil {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}
