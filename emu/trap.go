// Package emu provides functional LC-3 emulation.
package emu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// LC-3 trap vectors.
const (
	// TrapGetc reads one character into R0 without echo.
	TrapGetc uint8 = 0x20
	// TrapOut writes the character in R0.
	TrapOut uint8 = 0x21
	// TrapPuts writes the zero-terminated string of words at R0.
	TrapPuts uint8 = 0x22
	// TrapIn prompts for and echoes one character into R0.
	TrapIn uint8 = 0x23
	// TrapPutsp writes the zero-terminated byte-packed string at R0.
	TrapPutsp uint8 = 0x24
	// TrapHalt stops execution.
	TrapHalt uint8 = 0x25
)

// ErrBadTrapVector reports a TRAP instruction with an unrecognized vector.
var ErrBadTrapVector = errors.New("bad trap vector")

// TrapResult represents the result of a trap service routine.
type TrapResult struct {
	// Halted is true if the trap stopped the machine (HALT).
	Halted bool

	// Err is set on an unknown vector or a console I/O failure.
	Err error
}

// TrapHandler is the interface for executing LC-3 trap service routines.
type TrapHandler interface {
	// Handle executes the service routine for the given vector against
	// the register file and memory it was constructed with.
	Handle(vector uint8) TrapResult
}

// DefaultTrapHandler implements the six standard trap routines over a
// console reader and writer. Output is buffered and flushed at the end of
// each routine so an observer sees it in program order.
type DefaultTrapHandler struct {
	regFile *RegFile
	memory  *Memory
	stdin   io.Reader
	stdout  *bufio.Writer
}

// NewDefaultTrapHandler creates a trap handler reading characters from
// stdin and writing to stdout.
func NewDefaultTrapHandler(regFile *RegFile, memory *Memory, stdin io.Reader, stdout io.Writer) *DefaultTrapHandler {
	return &DefaultTrapHandler{
		regFile: regFile,
		memory:  memory,
		stdin:   stdin,
		stdout:  bufio.NewWriter(stdout),
	}
}

// Handle executes the service routine for the given vector.
func (h *DefaultTrapHandler) Handle(vector uint8) TrapResult {
	switch vector {
	case TrapGetc:
		return h.getc()
	case TrapOut:
		return h.out()
	case TrapPuts:
		return h.puts()
	case TrapIn:
		return h.in()
	case TrapPutsp:
		return h.putsp()
	case TrapHalt:
		return h.halt()
	default:
		return TrapResult{Err: fmt.Errorf("%w: 0x%02X", ErrBadTrapVector, vector)}
	}
}

// getc blocks for one byte and stores it zero-extended in R0.
func (h *DefaultTrapHandler) getc() TrapResult {
	b, err := h.readByte()
	if err != nil {
		return h.ioFailure(TrapGetc, err)
	}
	h.regFile.Write(0, uint16(b))
	h.regFile.UpdateCond(0)
	return TrapResult{}
}

// out writes the low byte of R0.
func (h *DefaultTrapHandler) out() TrapResult {
	if err := h.stdout.WriteByte(byte(h.regFile.Read(0))); err != nil {
		return h.ioFailure(TrapOut, err)
	}
	return h.flush(TrapOut)
}

// puts writes one character per word starting at R0 until a zero word.
func (h *DefaultTrapHandler) puts() TrapResult {
	addr := h.regFile.Read(0)
	for {
		word := h.memory.Read(addr)
		if word == 0 {
			break
		}
		if err := h.stdout.WriteByte(byte(word)); err != nil {
			return h.ioFailure(TrapPuts, err)
		}
		addr++
	}
	return h.flush(TrapPuts)
}

// in prompts, blocks for one byte, echoes the byte read, and stores it in
// R0.
func (h *DefaultTrapHandler) in() TrapResult {
	if _, err := h.stdout.WriteString("Enter character: "); err != nil {
		return h.ioFailure(TrapIn, err)
	}
	if err := h.stdout.Flush(); err != nil {
		return h.ioFailure(TrapIn, err)
	}
	b, err := h.readByte()
	if err != nil {
		return h.ioFailure(TrapIn, err)
	}
	if err := h.stdout.WriteByte(b); err != nil {
		return h.ioFailure(TrapIn, err)
	}
	h.regFile.Write(0, uint16(b))
	h.regFile.UpdateCond(0)
	return h.flush(TrapIn)
}

// putsp writes two characters per word starting at R0, low byte first,
// until a zero word. A zero high byte ends the word but not the string.
func (h *DefaultTrapHandler) putsp() TrapResult {
	addr := h.regFile.Read(0)
	for {
		word := h.memory.Read(addr)
		if word == 0 {
			break
		}
		if err := h.stdout.WriteByte(byte(word)); err != nil {
			return h.ioFailure(TrapPutsp, err)
		}
		if high := byte(word >> 8); high != 0 {
			if err := h.stdout.WriteByte(high); err != nil {
				return h.ioFailure(TrapPutsp, err)
			}
		}
		addr++
	}
	return h.flush(TrapPutsp)
}

// halt announces the halt and stops the machine.
func (h *DefaultTrapHandler) halt() TrapResult {
	if _, err := h.stdout.WriteString("HALT\n"); err != nil {
		return h.ioFailure(TrapHalt, err)
	}
	if err := h.stdout.Flush(); err != nil {
		return h.ioFailure(TrapHalt, err)
	}
	return TrapResult{Halted: true}
}

// readByte reads exactly one byte from stdin, blocking until it arrives.
func (h *DefaultTrapHandler) readByte() (byte, error) {
	var buf [1]byte
	if h.stdin == nil {
		return 0, io.EOF
	}
	if _, err := io.ReadFull(h.stdin, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (h *DefaultTrapHandler) flush(vector uint8) TrapResult {
	if err := h.stdout.Flush(); err != nil {
		return h.ioFailure(vector, err)
	}
	return TrapResult{}
}

func (h *DefaultTrapHandler) ioFailure(vector uint8, err error) TrapResult {
	return TrapResult{Err: fmt.Errorf("trap 0x%02X: console I/O: %w", vector, err)}
}
