package console_test

import (
	"io"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc3sim/console"
)

var _ = Describe("Input", func() {
	Describe("Read", func() {
		It("should deliver bytes one at a time in order", func() {
			in := console.NewInput(strings.NewReader("ab"))

			var buf [1]byte
			n, err := in.Read(buf[:])
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(buf[0]).To(Equal(byte('a')))

			n, err = in.Read(buf[:])
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(buf[0]).To(Equal(byte('b')))
		})

		It("should report EOF once the stream is drained", func() {
			in := console.NewInput(strings.NewReader("x"))

			var buf [1]byte
			_, err := in.Read(buf[:])
			Expect(err).NotTo(HaveOccurred())

			_, err = in.Read(buf[:])
			Expect(err).To(Equal(io.EOF))
		})

		It("should block until a byte arrives", func() {
			pr, pw := io.Pipe()
			in := console.NewInput(pr)

			done := make(chan byte, 1)
			go func() {
				defer GinkgoRecover()
				var buf [1]byte
				_, err := in.Read(buf[:])
				Expect(err).NotTo(HaveOccurred())
				done <- buf[0]
			}()

			Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

			_, err := pw.Write([]byte{'k'})
			Expect(err).NotTo(HaveOccurred())
			Eventually(done).Should(Receive(Equal(byte('k'))))
		})
	})

	Describe("Poll", func() {
		It("should return false immediately when nothing is pending", func() {
			pr, _ := io.Pipe()
			in := console.NewInput(pr)

			_, ok := in.Poll()
			Expect(ok).To(BeFalse())
		})

		It("should return a buffered byte without blocking", func() {
			in := console.NewInput(strings.NewReader("z"))

			Eventually(func() bool {
				b, ok := in.Poll()
				return ok && b == 'z'
			}).Should(BeTrue())
		})

		It("should return false after the stream ends", func() {
			in := console.NewInput(strings.NewReader(""))

			Eventually(func() bool {
				_, ok := in.Poll()
				return ok
			}).Should(BeFalse())
		})

		It("should not consume bytes it does not return", func() {
			in := console.NewInput(strings.NewReader("q"))

			var got byte
			Eventually(func() bool {
				b, ok := in.Poll()
				if ok {
					got = b
				}
				return ok
			}).Should(BeTrue())
			Expect(got).To(Equal(byte('q')))

			// The stream held a single byte; nothing further is pending.
			_, ok := in.Poll()
			Expect(ok).To(BeFalse())
		})
	})
})
