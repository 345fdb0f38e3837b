// Package emu provides functional LC-3 emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/lc3sim/insts"
)

// PCStart is the address execution begins at.
const PCStart uint16 = 0x3000

// ErrIllegalOpcode reports execution of RTI or the reserved opcode.
var ErrIllegalOpcode = errors.New("illegal opcode")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program stopped (via the HALT trap).
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes LC-3 instructions functionally.
type Emulator struct {
	regFile     *RegFile
	memory      *Memory
	decoder     *insts.Decoder
	trapHandler TrapHandler

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdin  io.Reader
	stdout io.Writer

	// Execution state
	running          bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom writer for trap output.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStdin sets a custom reader for trap character input.
func WithStdin(r io.Reader) EmulatorOption {
	return func(e *Emulator) {
		e.stdin = r
	}
}

// WithKeyboard attaches the keyboard poller behind the KBSR/KBDR
// memory-mapped registers.
func WithKeyboard(kb KeyboardPoller) EmulatorOption {
	return func(e *Emulator) {
		e.memory.SetKeyboard(kb)
	}
}

// WithTrapHandler sets a custom trap handler.
func WithTrapHandler(handler TrapHandler) EmulatorOption {
	return func(e *Emulator) {
		e.trapHandler = handler
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new LC-3 emulator. Memory and registers start
// zeroed, the condition register holds FlagZro, and the PC is at PCStart.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{PC: PCStart, Cond: FlagZro}
	memory := NewMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		decoder: insts.NewDecoder(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		running: true,
	}

	// Apply options first (may set stdin/stdout)
	for _, opt := range opts {
		opt(e)
	}

	// Create execution units
	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, memory)
	e.branchUnit = NewBranchUnit(regFile)

	// If no trap handler was provided, create a default one
	if e.trapHandler == nil {
		e.trapHandler = NewDefaultTrapHandler(regFile, memory, e.stdin, e.stdout)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Running reports whether the machine has not yet halted.
func (e *Emulator) Running() bool {
	return e.running
}

// Reset restores the initial machine state: zeroed registers and memory,
// FlagZro, PC at PCStart. The configured I/O and trap handler survive a
// reset only if they do not hold per-run state.
func (e *Emulator) Reset() {
	*e.regFile = RegFile{PC: PCStart, Cond: FlagZro}
	kb := e.memory.keyboard
	*e.memory = Memory{}
	e.memory.SetKeyboard(kb)
	e.running = true
	e.instructionCount = 0
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fmt.Errorf("max instructions reached"),
		}
	}

	// 1. Fetch: read the word at PC through the MMIO-aware path, then
	// advance PC so PC-relative operands see the next instruction.
	word := e.memory.Read(e.regFile.PC)
	e.regFile.IncrementPC()

	// 2. Decode
	inst := e.decoder.Decode(word)

	// 3. Execute
	result := e.execute(inst)

	// Increment instruction count
	e.instructionCount++

	if result.Halted {
		e.running = false
	}

	return result
}

// Run executes instructions until the program halts or an error occurs.
// It returns nil on a clean HALT.
func (e *Emulator) Run() error {
	for e.running {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
	}
	return nil
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpBR:
		e.branchUnit.BR(inst.NZP, inst.Off9)
	case insts.OpADD:
		if inst.ImmMode {
			e.alu.ADDImm(inst.DR, inst.SR1, inst.Imm5)
		} else {
			e.alu.ADD(inst.DR, inst.SR1, inst.SR2)
		}
	case insts.OpLD:
		e.lsu.LD(inst.DR, inst.Off9)
	case insts.OpST:
		e.lsu.ST(inst.SR, inst.Off9)
	case insts.OpJSR:
		if inst.ImmMode {
			e.branchUnit.JSR(inst.Off11)
		} else {
			e.branchUnit.JSRR(inst.BaseR)
		}
	case insts.OpAND:
		if inst.ImmMode {
			e.alu.ANDImm(inst.DR, inst.SR1, inst.Imm5)
		} else {
			e.alu.AND(inst.DR, inst.SR1, inst.SR2)
		}
	case insts.OpLDR:
		e.lsu.LDR(inst.DR, inst.BaseR, inst.Off6)
	case insts.OpSTR:
		e.lsu.STR(inst.SR, inst.BaseR, inst.Off6)
	case insts.OpNOT:
		e.alu.NOT(inst.DR, inst.SR)
	case insts.OpLDI:
		e.lsu.LDI(inst.DR, inst.Off9)
	case insts.OpSTI:
		e.lsu.STI(inst.SR, inst.Off9)
	case insts.OpJMP:
		e.branchUnit.JMP(inst.BaseR)
	case insts.OpLEA:
		e.lsu.LEA(inst.DR, inst.Off9)
	case insts.OpTRAP:
		trapResult := e.trapHandler.Handle(inst.TrapVect)
		return StepResult{Halted: trapResult.Halted, Err: trapResult.Err}
	case insts.OpRTI, insts.OpRes:
		return StepResult{
			Err: fmt.Errorf("%w: %v at PC=0x%04X", ErrIllegalOpcode, inst.Op, e.regFile.PC-1),
		}
	}

	return StepResult{}
}
