// Package emu provides functional LC-3 emulation.
package emu

// LoadStoreUnit implements the LC-3 load and store operations.
//
// All PC-relative forms use the already-incremented PC of the following
// instruction, and every load goes through Memory.Read so that the
// keyboard status side-effect fires for any addressing mode.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LD performs a PC-relative load: R[dr] = mem[PC + off]
func (lsu *LoadStoreUnit) LD(dr uint8, off uint16) {
	value := lsu.memory.Read(lsu.regFile.PC + off)
	lsu.regFile.Write(dr, value)
	lsu.regFile.UpdateCond(dr)
}

// LDR performs a base+offset load: R[dr] = mem[R[baseR] + off]
func (lsu *LoadStoreUnit) LDR(dr, baseR uint8, off uint16) {
	value := lsu.memory.Read(lsu.regFile.Read(baseR) + off)
	lsu.regFile.Write(dr, value)
	lsu.regFile.UpdateCond(dr)
}

// LDI performs an indirect load: R[dr] = mem[mem[PC + off]]
func (lsu *LoadStoreUnit) LDI(dr uint8, off uint16) {
	addr := lsu.memory.Read(lsu.regFile.PC + off)
	lsu.regFile.Write(dr, lsu.memory.Read(addr))
	lsu.regFile.UpdateCond(dr)
}

// LEA loads an effective address: R[dr] = PC + off
func (lsu *LoadStoreUnit) LEA(dr uint8, off uint16) {
	lsu.regFile.Write(dr, lsu.regFile.PC+off)
	lsu.regFile.UpdateCond(dr)
}

// ST performs a PC-relative store: mem[PC + off] = R[sr]
// Stores do not modify the condition register.
func (lsu *LoadStoreUnit) ST(sr uint8, off uint16) {
	lsu.memory.Write(lsu.regFile.PC+off, lsu.regFile.Read(sr))
}

// STR performs a base+offset store: mem[R[baseR] + off] = R[sr]
func (lsu *LoadStoreUnit) STR(sr, baseR uint8, off uint16) {
	lsu.memory.Write(lsu.regFile.Read(baseR)+off, lsu.regFile.Read(sr))
}

// STI performs an indirect store: mem[mem[PC + off]] = R[sr]
func (lsu *LoadStoreUnit) STI(sr uint8, off uint16) {
	addr := lsu.memory.Read(lsu.regFile.PC + off)
	lsu.memory.Write(addr, lsu.regFile.Read(sr))
}
