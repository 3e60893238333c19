// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

import "io"

// A Driver is the device below a terminal.
// Its methods are called with interrupts disabled.
type Driver interface {
	// Start resumes output after flow control stopped it.
	Start(t *TTY)

	// Stop suspends output.
	Stop(t *TTY)

	// Output takes bytes from t.Outq() to the device.
	// A driver that cannot take everything at once calls
	// t.Transmit when the device is ready for more.
	Output(t *TTY)

	// DeleteTab erases a tab from the screen, which takes the cursor
	// back from t.Column() to t.TabStart().
	DeleteTab(t *TTY)
}

// Drivers may also implement Opener, Closer and TermiosSetter.
type (
	Opener        interface{ Open(t *TTY) error }
	Closer        interface{ Close(t *TTY) error }
	TermiosSetter interface{ SetTermios(t *TTY) }
)

// A Console is a driver that copies output to a writer.
type Console struct {
	w          io.Writer
	scrollLock bool
	err        error
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Start(t *TTY) { c.scrollLock = false }
func (c *Console) Stop(t *TTY)  { c.scrollLock = true }

func (c *Console) Output(t *TTY) {
	q := t.Outq()
	if q.Empty() {
		return
	}
	buf := q.Bytes()
	q.Flush()
	if _, err := c.w.Write(buf); err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Console) DeleteTab(t *TTY) {
	start := t.TabStart()
	for t.Column() > start {
		if t.Emit('\b') != nil {
			break
		}
	}
}

// ScrollLock reports whether output is stopped.
func (c *Console) ScrollLock() bool { return c.scrollLock }

// Err returns the first error from the writer.
func (c *Console) Err() error { return c.err }
