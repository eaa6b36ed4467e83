package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(0, emu.MaxTicks)
}

func doLoad(emu *Emulator, program []string, t *testing.T) (output *bytes.Buffer) {
	assert := assert.New(t)

	ld := &cpu.Loader{}
	prog, err := ld.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	output = &bytes.Buffer{}
	emu.Cpu.Output = output

	err = emu.Reset()
	assert.NoError(err)

	return
}

func TestEmulatorPrint8(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"# print8.ls8",
		"10000010 # LDI R0,40",
		"00000000",
		"00101000",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
	}

	output := doLoad(emu, program, t)

	lines := []int{2, 5, 7}
	for _, line := range lines {
		assert.Equal(line, emu.LineNo())
		done, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(line == 7, done)
	}

	assert.Equal("40\n", output.String())
	assert.True(emu.Cpu.Halted)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorMult(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"10000010 # LDI R0,8",
		"00000000",
		"00001000",
		"10000010 # LDI R1,9",
		"00000001",
		"00001001",
		"10100010 # MUL R0,R1",
		"00000000",
		"00000001",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
	}

	output := doLoad(emu, program, t)

	err := emu.Run()
	assert.NoError(err)
	assert.Equal("72\n", output.String())
	assert.Equal(cpu.OP_HLT, emu.Code())
}

func TestEmulatorStack(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"10000010 # LDI R0,1",
		"00000000",
		"00000001",
		"10000010 # LDI R1,2",
		"00000001",
		"00000010",
		"01000101 # PUSH R0",
		"00000000",
		"01000101 # PUSH R1",
		"00000001",
		"10000010 # LDI R0,3",
		"00000000",
		"00000011",
		"01000110 # POP R0",
		"00000000",
		"01000111 # PRN R0",
		"00000000",
		"10000010 # LDI R0,4",
		"00000000",
		"00000100",
		"01000101 # PUSH R0",
		"00000000",
		"01000110 # POP R2",
		"00000010",
		"01000110 # POP R1",
		"00000001",
		"01000111 # PRN R2",
		"00000010",
		"01000111 # PRN R1",
		"00000001",
		"00000001 # HLT",
	}

	output := doLoad(emu, program, t)

	err := emu.Run()
	assert.NoError(err)
	assert.Equal("2\n4\n1\n", output.String())
	assert.Equal(emu.Cpu.Sp, emu.Cpu.Register[cpu.REG_SP])
}

func TestEmulatorUnknownStall(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Apply(Config{Unknown: cpu.UNKNOWN_STALL, MaxTicks: 10})

	output := doLoad(emu, []string{"11111111", "00000001"}, t)

	err := emu.Run()
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(0, emu.Cpu.Pc)
	assert.Equal(10, emu.Cpu.Ticks)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	if runtime != nil {
		assert.Equal(1, runtime.LineNo)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	assert.Len(lines, 10)
	assert.Contains(lines[0], "255")
}

func TestEmulatorUnknownHalt(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Apply(DefaultConfig())

	doLoad(emu, []string{"10000010", "00000000", "00000001", "00000000"}, t)

	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrOpcodeUnknown)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	if runtime != nil {
		assert.Equal(4, runtime.LineNo)
	}
}

func TestEmulatorTrace(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	output := &bytes.Buffer{}
	emu.Cpu.Output = output
	emu.Apply(Config{Trace: true})

	ld := &cpu.Loader{}
	prog, err := ld.Parse(strings.NewReader("10000010\n00000000\n00101000\n01000111\n00000000\n00000001\n"))
	assert.NoError(err)
	emu.Program = prog
	assert.NoError(emu.Reset())

	assert.NoError(emu.Run())

	expected := []string{
		"TRACE: 00 | 82 00 28 | 00 00 00 00 00 00 00 FF",
		"TRACE: 03 | 47 00 01 | 28 00 00 00 00 00 00 FF",
		"40",
		"TRACE: 05 | 01 00 00 | 28 00 00 00 00 00 00 FF",
	}
	assert.Equal(strings.Join(expected, "\n")+"\n", output.String())
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Opcodes: []cpu.Opcode{
			{LineNo: 1, Ip: 0, Bytes: make([]uint8, cpu.RAM_SIZE+1)},
		},
	}

	err := emu.Reset()
	assert.ErrorIs(err, cpu.ErrProgramSize)
}
