// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

import (
	"errors"

	"rsc.io/tty/charq"
)

// Read reads from the terminal on behalf of p.
//
// In raw keyboard mode it returns whatever the raw queue holds.
// In canonical mode it returns at most one line, including the line
// terminator unless that is the EOF character; an EOF at the start of
// a line returns 0 bytes. In non-canonical mode VMIN and VTIME decide
// how long to wait.
//
// A member of a background process group gets SIGTTIN sent to its
// group and ERESTART, or EIO if SIGTTIN is blocked or the group is
// orphaned. With ONONBLOCK, a read that would wait fails with EAGAIN.
func (t *TTY) Read(p Proc, b []byte, fl Flags) (int, error) {
	defer t.cpu.Off().Restore()
	if err := t.checkRead(p); err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}
	for {
		var (
			n   int
			err error
		)
		switch {
		case t.kbd != KbdXlate:
			n, err = t.readRaw(p, b, fl)
		case t.termios.Canonical():
			n, err = t.readCanon(p, b, fl)
		default:
			n, err = t.readNonCanon(p, b, fl)
		}
		if err != errModeChange {
			return n, err
		}
	}
}

// errModeChange restarts a read whose mode changed while it slept.
var errModeChange = errors.New("terminal mode changed")

func (t *TTY) checkRead(p Proc) error {
	if p.CTTY() != t || p.Pgid() == t.pgid {
		return nil
	}
	if p.SignalMasked(SIGTTIN) || t.k.OrphanedGroup(p.Pgid()) {
		return EIO
	}
	t.k.SignalGroup(p.Pgid(), SIGTTIN)
	return ERESTART
}

// wait sleeps until the next input wakeup.
func (t *TTY) wait(p Proc, fl Flags) error {
	if fl&ONONBLOCK != 0 {
		return EAGAIN
	}
	return p.Sleep(readWait{t})
}

func drain(q *charq.Queue, b []byte) int {
	n := 0
	for n < len(b) {
		c, ok := q.Get()
		if !ok {
			break
		}
		b[n] = c
		n++
	}
	return n
}

func (t *TTY) readRaw(p Proc, b []byte, fl Flags) (int, error) {
	for {
		if t.kbd == KbdXlate {
			return 0, errModeChange
		}
		if n := drain(&t.rawq, b); n > 0 {
			return n, nil
		}
		if err := t.wait(p, fl); err != nil {
			return 0, err
		}
	}
}

func (t *TTY) readCanon(p Proc, b []byte, fl Flags) (int, error) {
	for len(t.lines) == 0 {
		if err := t.wait(p, fl); err != nil {
			return 0, err
		}
		if t.kbd != KbdXlate || !t.termios.Canonical() {
			return 0, errModeChange
		}
	}

	l := &t.lines[0]
	data := l.n
	if l.eof {
		data--
	}
	n := 0
	for n < len(b) && data > 0 {
		c, _ := t.cookedq.Get()
		b[n] = c
		n++
		data--
		l.n--
	}
	if data == 0 {
		if l.eof {
			t.cookedq.Get()
		}
		t.lines = t.lines[1:]
	}
	return n, nil
}

func (t *TTY) readNonCanon(p Proc, b []byte, fl Flags) (int, error) {
	vmin, vtime := t.termios.Min(), t.termios.Time()
	key := readWait{t}
	nonblock := fl&ONONBLOCK != 0

	switch {
	case vmin == 0 && vtime > 0:
		// Pure timeout: wait up to VTIME tenths of a second for the first byte.
		if t.cookedq.Empty() {
			if nonblock {
				return 0, EAGAIN
			}
			ticks := uint64(vtime * HZ / 10)
			start := t.k.Ticks()
			for t.cookedq.Empty() {
				elapsed := t.k.Ticks() - start
				if elapsed >= ticks {
					break
				}
				t.k.Timeout(key, int(ticks-elapsed))
				err := p.Sleep(key)
				t.k.Untimeout(key)
				if err != nil {
					return 0, err
				}
				if t.kbd != KbdXlate || t.termios.Canonical() {
					return 0, errModeChange
				}
			}
		}
		return drain(&t.cookedq, b), nil

	case vmin > 0:
		// Batch: wait for VMIN bytes, or with VTIME set, until the
		// input goes quiet for VTIME tenths of a second. Bytes beyond
		// VMIN that are already queued are returned too.
		want := min(vmin, len(b))
		n := 0
		for {
			n += drain(&t.cookedq, b[n:])
			if n >= want {
				return n, nil
			}
			if nonblock {
				if n > 0 {
					return n, nil
				}
				return 0, EAGAIN
			}
			if vtime > 0 {
				t.k.Timeout(key, vtime*HZ/10)
			}
			err := p.Sleep(key)
			if vtime > 0 {
				t.k.Untimeout(key)
			}
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			if t.kbd != KbdXlate || t.termios.Canonical() {
				if n > 0 {
					return n, nil
				}
				return 0, errModeChange
			}
			if vtime > 0 && t.cookedq.Empty() {
				return n, nil
			}
		}
	}

	// Immediate: wait for at least one byte.
	for t.cookedq.Empty() {
		if err := t.wait(p, fl); err != nil {
			return 0, err
		}
		if t.kbd != KbdXlate || t.termios.Canonical() {
			return 0, errModeChange
		}
	}
	return drain(&t.cookedq, b), nil
}
