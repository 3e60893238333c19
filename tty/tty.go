// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tty implements the terminal layer of the kernel: the character
// queues of each terminal, the line discipline that turns typed bytes into
// edited lines, and the blocking read and write calls.
//
// Bytes arrive from a device interrupt through Input into the raw queue.
// The line discipline moves them into the cooked queue, echoing and
// editing as it goes. Read takes bytes from the cooked queue (or, in raw
// keyboard mode, straight from the raw queue). Write runs bytes through
// output processing into the output queue, which the device driver drains.
package tty

import (
	"fmt"

	"rsc.io/tty/charq"
	"rsc.io/tty/spl"
)

// A Dev is a device number.
type Dev uint16

func Mkdev(major, minor int) Dev { return Dev(major<<8 | minor&0xff) }

func (d Dev) Major() int { return int(d >> 8) }
func (d Dev) Minor() int { return int(d & 0xff) }

func (d Dev) String() string { return fmt.Sprintf("%d,%d", d.Major(), d.Minor()) }

// Device majors.
const (
	ConsoleMajor = 4 // virtual consoles, minor 0 is the current console
	TTYAuxMajor  = 5 // minor 0 is /dev/tty, the caller's controlling terminal
)

// A KbdMode selects how much translation keyboard input gets.
type KbdMode int

const (
	KbdRaw    KbdMode = 0 // scancodes, read straight from the raw queue
	KbdXlate  KbdMode = 1 // translated characters, run through the line discipline
	KbdMedRaw KbdMode = 2 // keycodes, read straight from the raw queue
)

const (
	TabSize    = 8   // columns between default tab stops
	MaxTabCols = 132 // columns with a tab stop entry
)

// A line is a completed canonical line waiting in the cooked queue.
type line struct {
	n   int  // bytes left in the cooked queue, terminator included
	eof bool // terminated by VEOF, which is not delivered
}

// A TTY is one terminal.
// Fields are guarded by the kernel's interrupt state.
type TTY struct {
	dev Dev
	k   Kernel
	cpu *spl.CPU
	drv Driver

	openCount int
	kbd       KbdMode
	termios   Termios
	win       Winsize
	sid       int // session that owns the terminal
	pgid      int // foreground process group

	rawq    charq.Queue // bytes from the device
	cookedq charq.Queue // bytes after the line discipline
	outq    charq.Queue // bytes for the device

	lines   []line // completed lines at the front of cookedq
	editLen int    // bytes of the line being edited, at the back of cookedq
	lineCol int    // output column at which the line being edited began
	column  int    // output column
	tabStop [MaxTabCols]bool
	lnext   bool // next input byte is taken literally
	stopped bool // output suspended by flow control
}

func newTTY(dev Dev, k Kernel, drv Driver) *TTY {
	t := &TTY{
		dev: dev,
		k:   k,
		cpu: k.CPU(),
		drv: drv,
		kbd: KbdXlate,
		win: Winsize{Row: 25, Col: 80},
	}
	for i := range t.tabStop {
		t.tabStop[i] = i%TabSize == 0
	}
	t.termios.Reset()
	return t
}

func (t *TTY) String() string { return "tty" + t.dev.String() }

// Dev returns the terminal's device number.
func (t *TTY) Dev() Dev { return t.dev }

// The following methods are for drivers, which are called with
// interrupts already disabled.

// Outq returns the output queue.
func (t *TTY) Outq() *charq.Queue { return &t.outq }

// Column returns the output column.
func (t *TTY) Column() int { return t.column }

// Emit appends c to the output queue with output processing.
func (t *TTY) Emit(c byte) error { return t.opost(c) }

// Stopped reports whether output is suspended by flow control.
func (t *TTY) Stopped() bool { return t.stopped }

// TabStart returns the column at which a tab just erased from the end of
// the line being edited began.
func (t *TTY) TabStart() int {
	col := t.lineCol
	for _, c := range t.editLine() {
		switch {
		case c == '\t':
			col = t.nextTab(col)
		case isctrl(c) && !isspace(c) && t.termios.EchoCtl():
			col += 2
		case !isctrl(c):
			col++
		}
	}
	return col
}

func (t *TTY) nextTab(col int) int {
	last := int(t.win.Col) - 1
	if last >= MaxTabCols || last < 0 {
		last = MaxTabCols - 1
	}
	for col < last {
		col++
		if t.tabStop[col] {
			break
		}
	}
	return col
}

// editLine returns a copy of the line being edited.
func (t *TTY) editLine() []byte {
	b := t.cookedq.Bytes()
	return b[len(b)-t.editLen:]
}

func (t *TTY) flushInput() {
	t.rawq.Flush()
	t.cookedq.Flush()
	t.lines = nil
	t.editLen = 0
	t.lnext = false
}

func (t *TTY) flushOutput() {
	t.outq.Flush()
	t.k.Wakeup(writeWait{t})
}

// output hands the output queue to the driver unless flow control
// has stopped it, and wakes writers waiting for space.
func (t *TTY) output() {
	if t.stopped {
		return
	}
	t.drv.Output(t)
	t.k.Wakeup(writeWait{t})
}

func (t *TTY) start() {
	if !t.stopped {
		return
	}
	t.stopped = false
	t.drv.Start(t)
	t.output()
}

func (t *TTY) stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	t.drv.Stop(t)
}

// Input is the device interrupt: it appends b to the raw queue and runs
// the line discipline. If the raw queue stays full after cooking, the
// remaining bytes are dropped and Input returns ENOMEM.
func (t *TTY) Input(b []byte) error {
	defer t.cpu.Off().Restore()
	var err error
	for _, c := range b {
		if t.rawq.Put(c) == nil {
			continue
		}
		err = t.cook()
		if t.rawq.Put(c) != nil {
			return ENOMEM
		}
	}
	if err1 := t.cook(); err == nil {
		err = err1
	}
	return err
}

// Open records an open of the terminal by p. A session leader without a
// controlling terminal acquires this one unless fl has ONOCTTY or
// another session owns it.
func (t *TTY) Open(p Proc, fl Flags) error {
	defer t.cpu.Off().Restore()
	if o, ok := t.drv.(Opener); ok {
		if err := o.Open(t); err != nil {
			return err
		}
	}
	t.openCount++
	t.column = 0
	if p.SessionLeader() && p.CTTY() == nil && fl&ONOCTTY == 0 && t.sid == 0 {
		p.SetCTTY(t)
		t.sid = p.Sid()
		t.pgid = p.Pgid()
	}
	return nil
}

// Close records a close by p. The last close resets the terminal and
// detaches it from its session, so that no process keeps it as its
// controlling terminal.
func (t *TTY) Close(p Proc) error {
	defer t.cpu.Off().Restore()
	if c, ok := t.drv.(Closer); ok {
		if err := c.Close(t); err != nil {
			return err
		}
	}
	if t.openCount > 0 {
		t.openCount--
	}
	if t.openCount == 0 {
		t.hangup()
	}
	return nil
}

// hangup returns the terminal to its state before the first open:
// input is discarded, the settings reset, output resumed, and no
// process keeps it as controlling terminal.
func (t *TTY) hangup() {
	t.flushInput()
	var tio Termios
	tio.Reset()
	t.setTermios(&tio)
	t.kbd = KbdXlate
	t.column = 0
	t.lineCol = 0
	if t.stopped {
		t.stopped = false
		t.drv.Start(t)
	}
	t.disassociate()
}

// disassociate detaches the terminal from its session.
func (t *TTY) disassociate() {
	t.sid = 0
	t.pgid = 0
	t.k.ReleaseCTTY(t)
}

// OpenCount returns the number of opens not yet closed.
func (t *TTY) OpenCount() int {
	defer t.cpu.Off().Restore()
	return t.openCount
}

// Poll reports whether a read would find data and a write would find
// space without blocking.
func (t *TTY) Poll() (readable, writable bool) {
	defer t.cpu.Off().Restore()
	switch {
	case t.kbd != KbdXlate:
		readable = !t.rawq.Empty()
	case t.termios.Canonical():
		readable = len(t.lines) > 0
	default:
		readable = !t.cookedq.Empty()
	}
	writable = !t.stopped && t.outq.Remaining() > 0
	return
}

// LineReady reports whether a complete canonical line is waiting.
func (t *TTY) LineReady() bool {
	defer t.cpu.Off().Restore()
	return len(t.lines) > 0
}

// QueueLens returns the number of bytes in the raw, cooked and output queues.
func (t *TTY) QueueLens() (raw, cooked, out int) {
	defer t.cpu.Off().Restore()
	return t.rawq.Len(), t.cookedq.Len(), t.outq.Len()
}

// Transmit is the device's transmit interrupt: the driver is offered
// the output queue again and writers waiting for space are woken.
func (t *TTY) Transmit() {
	defer t.cpu.Off().Restore()
	t.output()
}
