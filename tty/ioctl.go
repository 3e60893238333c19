// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

// Ioctl requests.
const (
	TCGETS     = 0x5401
	TCSETS     = 0x5402
	TCSETSW    = 0x5403
	TCSETSF    = 0x5404
	TCGETA     = 0x5405
	TCSETA     = 0x5406
	TCSETAW    = 0x5407
	TCSETAF    = 0x5408
	TCXONC     = 0x540A
	TCFLSH     = 0x540B
	TIOCSCTTY  = 0x540E
	TIOCGPGRP  = 0x540F
	TIOCSPGRP  = 0x5410
	TIOCGWINSZ = 0x5413
	TIOCSWINSZ = 0x5414
	TIOCNOTTY  = 0x5422
	KDGKBMODE  = 0x4B44
	KDSKBMODE  = 0x4B45
)

// When to apply SetTermios.
const (
	TCSANOW   = 0 // immediately
	TCSADRAIN = 1 // after the output queue drains
	TCSAFLUSH = 2 // after the output queue drains, discarding pending input
)

// Flow actions.
const (
	TCOOFF = 0 // suspend output
	TCOON  = 1 // resume output
	TCIOFF = 2 // transmit STOP
	TCION  = 3 // transmit START
)

// Flush selectors.
const (
	TCIFLUSH  = 0
	TCOFLUSH  = 1
	TCIOFLUSH = 2
)

// Termios returns the terminal configuration.
func (t *TTY) Termios() Termios {
	defer t.cpu.Off().Restore()
	return t.termios
}

// SetTermios replaces the terminal configuration.
// With TCSADRAIN or TCSAFLUSH it first waits for pending output,
// and with TCSAFLUSH it then discards pending input.
func (t *TTY) SetTermios(p Proc, when int, tio *Termios) error {
	defer t.cpu.Off().Restore()
	switch when {
	case TCSANOW:
	case TCSADRAIN, TCSAFLUSH:
		if err := t.drainOutput(p); err != nil {
			return err
		}
	default:
		return EINVAL
	}
	t.setTermios(tio)
	if when == TCSAFLUSH {
		t.flushInput()
	}
	return nil
}

func (t *TTY) setTermios(tio *Termios) {
	wasCanon := t.termios.Canonical()
	t.termios = *tio
	if canon := t.termios.Canonical(); canon != wasCanon {
		// Completed lines become plain input, and plain input
		// becomes the line being edited.
		t.lines = nil
		t.editLen = 0
		t.lnext = false
		if canon {
			t.editLen = t.cookedq.Len()
		}
	}
	if s, ok := t.drv.(TermiosSetter); ok {
		s.SetTermios(t)
	}
	if !t.termios.FlowControl() {
		t.start()
	}
	t.k.Wakeup(readWait{t})
}

// Winsize returns the window size.
func (t *TTY) Winsize() Winsize {
	defer t.cpu.Off().Restore()
	return t.win
}

// SetWinsize sets the window size, sending SIGWINCH to the foreground
// process group if it changed.
func (t *TTY) SetWinsize(ws Winsize) {
	defer t.cpu.Off().Restore()
	if ws == t.win {
		return
	}
	t.win = ws
	if t.pgid > 0 {
		t.k.SignalGroup(t.pgid, SIGWINCH)
	}
}

// KbdMode returns the keyboard mode.
func (t *TTY) KbdMode() KbdMode {
	defer t.cpu.Off().Restore()
	return t.kbd
}

// SetKbdMode sets the keyboard mode, discarding the raw queue.
// An unknown mode selects KbdXlate.
func (t *TTY) SetKbdMode(m KbdMode) {
	defer t.cpu.Off().Restore()
	switch m {
	case KbdRaw, KbdXlate, KbdMedRaw:
	default:
		m = KbdXlate
	}
	t.kbd = m
	t.rawq.Flush()
	t.k.Wakeup(readWait{t})
}

// Flush discards pending input, output, or both.
func (t *TTY) Flush(sel int) error {
	defer t.cpu.Off().Restore()
	switch sel {
	case TCIFLUSH:
		t.flushInput()
	case TCOFLUSH:
		t.flushOutput()
	case TCIOFLUSH:
		t.flushInput()
		t.flushOutput()
	default:
		return EINVAL
	}
	return nil
}

// Flow suspends or resumes output.
func (t *TTY) Flow(action int) error {
	defer t.cpu.Off().Restore()
	switch action {
	case TCOOFF:
		t.stop()
	case TCOON:
		t.start()
	default:
		return EINVAL
	}
	return nil
}

// Pgrp returns the foreground process group, 0 if there is none.
func (t *TTY) Pgrp() int {
	defer t.cpu.Off().Restore()
	return t.pgid
}

// SetPgrp sets the foreground process group.
func (t *TTY) SetPgrp(pgid int) error {
	defer t.cpu.Off().Restore()
	if pgid < 1 {
		return EINVAL
	}
	t.pgid = pgid
	return nil
}

// SetCTTY makes the terminal the controlling terminal of p, which must
// be a session leader without one. A terminal that belongs to another
// session is taken from it only if steal is set; otherwise SetCTTY
// fails with EPERM. It succeeds at once if the terminal already
// belongs to p's session.
func (t *TTY) SetCTTY(p Proc, steal bool) error {
	defer t.cpu.Off().Restore()
	if p.SessionLeader() && p.Sid() == t.sid {
		return nil
	}
	if !p.SessionLeader() || p.CTTY() != nil {
		return EPERM
	}
	if t.sid != 0 {
		if !steal {
			return EPERM
		}
		t.disassociate()
	}
	p.SetCTTY(t)
	t.sid = p.Sid()
	t.pgid = p.Pgid()
	return nil
}

// NoCTTY detaches p from the terminal, which must be its controlling
// terminal. When p is the session leader, the whole session loses the
// terminal and p's process group gets SIGHUP and SIGCONT.
func (t *TTY) NoCTTY(p Proc) error {
	defer t.cpu.Off().Restore()
	if p.CTTY() != t {
		return ENOTTY
	}
	if !p.SessionLeader() {
		p.SetCTTY(nil)
		return nil
	}
	t.disassociate()
	t.k.SignalGroup(p.Pgid(), SIGHUP)
	t.k.SignalGroup(p.Pgid(), SIGCONT)
	return nil
}

// Ioctl performs the request cmd on behalf of p.
// Requests that return a value store it through arg, which must be a
// pointer of the matching type: *Termios, *Termio, *Winsize, *int or
// *KbdMode. Requests that take a value read it from arg, a pointer for
// structures and an int otherwise.
func (t *TTY) Ioctl(p Proc, cmd int, arg any) error {
	switch cmd {
	case TCGETS:
		tp, ok := arg.(*Termios)
		if !ok {
			return EFAULT
		}
		*tp = t.Termios()
		return nil

	case TCSETS, TCSETSW, TCSETSF:
		tp, ok := arg.(*Termios)
		if !ok {
			return EFAULT
		}
		return t.SetTermios(p, cmd-TCSETS, tp)

	case TCGETA:
		tp, ok := arg.(*Termio)
		if !ok {
			return EFAULT
		}
		tio := t.Termios()
		*tp = tio.ToTermio()
		return nil

	case TCSETA, TCSETAW, TCSETAF:
		tp, ok := arg.(*Termio)
		if !ok {
			return EFAULT
		}
		tio := t.Termios()
		tio.FromTermio(tp)
		return t.SetTermios(p, cmd-TCSETA, &tio)

	case TCXONC:
		n, ok := arg.(int)
		if !ok {
			return EINVAL
		}
		return t.Flow(n)

	case TCFLSH:
		n, ok := arg.(int)
		if !ok {
			return EINVAL
		}
		return t.Flush(n)

	case TIOCGPGRP:
		np, ok := arg.(*int)
		if !ok {
			return EFAULT
		}
		*np = t.Pgrp()
		return nil

	case TIOCSPGRP:
		n, ok := arg.(int)
		if !ok {
			return EINVAL
		}
		return t.SetPgrp(n)

	case TIOCSCTTY:
		n, ok := arg.(int)
		if !ok {
			return EINVAL
		}
		return t.SetCTTY(p, n == 1)

	case TIOCNOTTY:
		return t.NoCTTY(p)

	case TIOCGWINSZ:
		wp, ok := arg.(*Winsize)
		if !ok {
			return EFAULT
		}
		*wp = t.Winsize()
		return nil

	case TIOCSWINSZ:
		wp, ok := arg.(*Winsize)
		if !ok {
			return EFAULT
		}
		t.SetWinsize(*wp)
		return nil

	case KDGKBMODE:
		mp, ok := arg.(*KbdMode)
		if !ok {
			return EFAULT
		}
		*mp = t.KbdMode()
		return nil

	case KDSKBMODE:
		switch m := arg.(type) {
		case KbdMode:
			t.SetKbdMode(m)
		case int:
			t.SetKbdMode(KbdMode(m))
		default:
			return EINVAL
		}
		return nil
	}
	return ENOTTY
}
