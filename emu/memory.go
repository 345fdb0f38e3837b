// Package emu provides functional LC-3 emulation.
package emu

// MemorySize is the number of addressable 16-bit words.
const MemorySize = 1 << 16

// Memory-mapped device registers.
const (
	// AddrKBSR is the keyboard status register. Bit 15 is set iff a key
	// is available.
	AddrKBSR uint16 = 0xFE00
	// AddrKBDR is the keyboard data register. It holds the last
	// character read.
	AddrKBDR uint16 = 0xFE02
)

// KeyboardPoller reports whether a key press is immediately available.
// Poll must never block; it returns the pending byte and true, or false
// when no input is waiting.
type KeyboardPoller interface {
	Poll() (byte, bool)
}

// Memory is the LC-3 word-addressable memory with the keyboard device
// mapped at AddrKBSR/AddrKBDR.
type Memory struct {
	words    [MemorySize]uint16
	keyboard KeyboardPoller
}

// NewMemory creates a zeroed memory with no keyboard attached. Without a
// keyboard, reads of AddrKBSR always report no key available.
func NewMemory() *Memory {
	return &Memory{}
}

// SetKeyboard attaches the keyboard poller consulted on AddrKBSR reads.
func (m *Memory) SetKeyboard(kb KeyboardPoller) {
	m.keyboard = kb
}

// Read returns the word at addr.
//
// Reading AddrKBSR polls the keyboard first: if a byte is pending, KBSR is
// set to 0x8000 and KBDR to the byte; otherwise KBSR is cleared. This is
// the only implicit side-effect of a memory read, and every instruction
// funnels its loads through here so guest programs spinning on LDI KBSR
// observe key presses.
func (m *Memory) Read(addr uint16) uint16 {
	if addr == AddrKBSR {
		if b, ok := m.poll(); ok {
			m.words[AddrKBSR] = 1 << 15
			m.words[AddrKBDR] = uint16(b)
		} else {
			m.words[AddrKBSR] = 0
		}
	}
	return m.words[addr]
}

// Write stores value at addr. Writes have no device side-effects.
func (m *Memory) Write(addr, value uint16) {
	m.words[addr] = value
}

func (m *Memory) poll() (byte, bool) {
	if m.keyboard == nil {
		return 0, false
	}
	return m.keyboard.Poll()
}
