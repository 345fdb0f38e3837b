// Package console owns the host terminal for the virtual machine.
//
// It puts stdin into raw (non-canonical, no-echo) mode for the duration of
// a run and multiplexes the byte stream into the two shapes the machine
// consumes: blocking single-byte reads for the GETC/IN traps, and a
// zero-timeout poll for the KBSR memory-mapped status register.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrTerminalSetup reports a failure to put the terminal into raw mode.
var ErrTerminalSetup = errors.New("terminal setup failed")

// Input multiplexes a byte stream into blocking reads and non-blocking
// polls. A single reader goroutine drains the underlying stream into a
// buffered channel; Poll is a zero-timeout receive on that channel and
// therefore never blocks.
type Input struct {
	keys chan byte

	mu  sync.Mutex
	err error
}

// NewInput starts draining r and returns the multiplexer.
func NewInput(r io.Reader) *Input {
	in := &Input{keys: make(chan byte, 64)}
	go in.pump(r)
	return in
}

func (in *Input) pump(r io.Reader) {
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			in.keys <- buf[0]
		}
		if err != nil {
			in.mu.Lock()
			in.err = err
			in.mu.Unlock()
			close(in.keys)
			return
		}
	}
}

// Read blocks until one byte is available and returns it. It implements
// io.Reader for the trap handler's blocking character input. After the
// underlying stream ends, Read reports its error (io.EOF included).
func (in *Input) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, ok := <-in.keys
	if !ok {
		return 0, in.readErr()
	}
	p[0] = b
	return 1, nil
}

// Poll reports a pending byte without blocking: the byte and true when a
// key press is buffered, false otherwise.
func (in *Input) Poll() (byte, bool) {
	select {
	case b, ok := <-in.keys:
		if !ok {
			return 0, false
		}
		return b, true
	default:
		return 0, false
	}
}

func (in *Input) readErr() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.err == nil {
		return io.EOF
	}
	return in.err
}

// Console couples an Input over os.Stdin with raw-mode ownership of the
// controlling terminal. Restore must run on every exit path.
type Console struct {
	*Input

	fd   int
	prev *term.State

	restoreOnce sync.Once
	restoreErr  error
}

// New puts stdin into raw mode and starts the input pump.
func New() (*Console, error) {
	fd := int(os.Stdin.Fd())
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTerminalSetup, err)
	}
	return &Console{
		Input: NewInput(os.Stdin),
		fd:    fd,
		prev:  prev,
	}, nil
}

// Restore returns the terminal to the mode it was in before New. It is
// safe to call from a signal handler and from a deferred cleanup on the
// same Console; only the first call touches the terminal.
func (c *Console) Restore() error {
	c.restoreOnce.Do(func() {
		if err := term.Restore(c.fd, c.prev); err != nil {
			c.restoreErr = fmt.Errorf("terminal restore failed: %w", err)
		}
	})
	return c.restoreErr
}
