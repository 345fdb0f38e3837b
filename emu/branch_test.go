package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc3sim/emu"
)

var _ = Describe("Branches", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
	})

	Describe("BR", func() {
		It("should take BRn when the negative flag is set", func() {
			e.RegFile().Cond = emu.FlagNeg
			e.Memory().Write(0x3000, 0x0805) // BRn #5

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(0x3001 + 5)))
		})

		It("should fall through BRz when the negative flag is set", func() {
			e.RegFile().Cond = emu.FlagNeg
			e.Memory().Write(0x3000, 0x0405) // BRz #5

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(0x3001)))
		})

		It("should always take BRnzp", func() {
			for _, cond := range []emu.Flag{emu.FlagPos, emu.FlagZro, emu.FlagNeg} {
				e.RegFile().Cond = cond
				e.RegFile().PC = 0x3000
				e.Memory().Write(0x3000, 0x0E05) // BRnzp #5

				e.Step()

				Expect(e.RegFile().PC).To(Equal(uint16(0x3001 + 5)))
			}
		})

		It("should never take an empty condition mask", func() {
			for _, cond := range []emu.Flag{emu.FlagPos, emu.FlagZro, emu.FlagNeg} {
				e.RegFile().Cond = cond
				e.RegFile().PC = 0x3000
				e.Memory().Write(0x3000, 0x0005) // BR (never) #5

				e.Step()

				Expect(e.RegFile().PC).To(Equal(uint16(0x3001)))
			}
		})

		It("should wrap a backward branch past address zero", func() {
			e.RegFile().Cond = emu.FlagZro
			e.RegFile().PC = 0
			e.Memory().Write(0, 0x0FFB) // BRnzp #-5

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(0xFFFC)))
		})

		It("should not modify the condition register", func() {
			e.RegFile().Cond = emu.FlagNeg
			e.Memory().Write(0x3000, 0x0E05) // BRnzp #5

			e.Step()

			Expect(e.RegFile().Cond).To(Equal(emu.FlagNeg))
		})
	})

	Describe("JMP", func() {
		It("should jump to the base register", func() {
			e.RegFile().Write(5, 25)
			e.Memory().Write(0x3000, 0xC140) // JMP R5

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(25)))
		})

		It("should return through R7 with RET", func() {
			e.RegFile().Write(7, 0x4000)
			e.Memory().Write(0x3000, 0xC1C0) // RET

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(0x4000)))
		})
	})

	Describe("JSR", func() {
		It("should save the return address and branch PC-relative", func() {
			e.RegFile().PC = 15
			e.Memory().Write(15, 0x4FFB) // JSR #-5

			e.Step()

			Expect(e.RegFile().Read(7)).To(Equal(uint16(16)))
			Expect(e.RegFile().PC).To(Equal(uint16(11)))
		})

		It("should save the return address and jump to a register with JSRR", func() {
			e.RegFile().Write(5, 50)
			e.RegFile().PC = 15
			e.Memory().Write(15, 0x4140) // JSRR R5

			e.Step()

			Expect(e.RegFile().Read(7)).To(Equal(uint16(16)))
			Expect(e.RegFile().PC).To(Equal(uint16(50)))
		})

		It("should jump to the old R7 when JSRR names R7", func() {
			e.RegFile().Write(7, 0x5000)
			e.Memory().Write(0x3000, 0x41C0) // JSRR R7

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint16(0x5000)))
			Expect(e.RegFile().Read(7)).To(Equal(uint16(0x3001)))
		})

		It("should not modify the condition register", func() {
			e.RegFile().Cond = emu.FlagPos
			e.Memory().Write(0x3000, 0x4801) // JSR #1

			e.Step()

			Expect(e.RegFile().Cond).To(Equal(emu.FlagPos))
		})
	})
})
