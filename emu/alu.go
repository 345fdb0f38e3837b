// Package emu provides functional LC-3 emulation.
package emu

// ALU implements the LC-3 arithmetic and logic operations. All arithmetic
// wraps modulo 2^16, and every result updates the condition register.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// ADD performs register-mode addition: R[dr] = R[sr1] + R[sr2]
func (a *ALU) ADD(dr, sr1, sr2 uint8) {
	result := a.regFile.Read(sr1) + a.regFile.Read(sr2)
	a.regFile.Write(dr, result)
	a.regFile.UpdateCond(dr)
}

// ADDImm performs immediate-mode addition: R[dr] = R[sr1] + imm
// The immediate is already sign-extended to 16 bits.
func (a *ALU) ADDImm(dr, sr1 uint8, imm uint16) {
	result := a.regFile.Read(sr1) + imm
	a.regFile.Write(dr, result)
	a.regFile.UpdateCond(dr)
}

// AND performs register-mode bitwise and: R[dr] = R[sr1] & R[sr2]
func (a *ALU) AND(dr, sr1, sr2 uint8) {
	result := a.regFile.Read(sr1) & a.regFile.Read(sr2)
	a.regFile.Write(dr, result)
	a.regFile.UpdateCond(dr)
}

// ANDImm performs immediate-mode bitwise and: R[dr] = R[sr1] & imm
func (a *ALU) ANDImm(dr, sr1 uint8, imm uint16) {
	result := a.regFile.Read(sr1) & imm
	a.regFile.Write(dr, result)
	a.regFile.UpdateCond(dr)
}

// NOT performs bitwise complement: R[dr] = ^R[sr]
func (a *ALU) NOT(dr, sr uint8) {
	a.regFile.Write(dr, ^a.regFile.Read(sr))
	a.regFile.UpdateCond(dr)
}
