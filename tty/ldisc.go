// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

// CookInput runs the line discipline over the raw queue.
func (t *TTY) CookInput() error {
	defer t.cpu.Off().Restore()
	return t.cook()
}

// cook moves bytes from the raw queue to the cooked queue, handling
// signals, flow control, line editing and echo. A full cooked queue
// stops the pass: the byte that did not fit is dropped and the rest
// stay in the raw queue.
// Echo output that does not fit is dropped and reported as ENOMEM.
func (t *TTY) cook() error {
	if t.kbd != KbdXlate {
		// Raw readers take bytes straight from the raw queue.
		if !t.rawq.Empty() {
			t.k.Wakeup(readWait{t})
		}
		return nil
	}

	var echoErr error
	var err error
	for err == nil {
		c, ok := t.rawq.Get()
		if !ok {
			break
		}
		var more bool
		more, err = t.cook1(c, &echoErr)
		if !more {
			break
		}
	}
	t.output()
	if !t.termios.Canonical() && !t.cookedq.Empty() || len(t.lines) > 0 {
		t.k.Wakeup(readWait{t})
	}
	if err == nil && echoErr != nil {
		err = ENOMEM
	}
	return err
}

// cook1 processes one byte. It returns more=false to end the pass.
func (t *TTY) cook1(c byte, echoErr *error) (more bool, err error) {
	tio := &t.termios
	echo := func(c byte) {
		if err := t.echo(c); err != nil && *echoErr == nil {
			*echoErr = err
		}
	}

	if tio.Signals() && !t.lnext {
		var sig Signal
		switch {
		case tio.IsIntr(c):
			sig = SIGINT
		case tio.IsQuit(c):
			sig = SIGQUIT
		case tio.IsSusp(c):
			sig = SIGTSTP
		}
		if sig != 0 {
			if sig == SIGINT && !tio.NoFlush() {
				t.flushInput()
			}
			if t.pgid > 0 {
				t.k.SignalGroup(t.pgid, sig)
			}
			return false, nil
		}
	}

	if tio.Strip() {
		c &= 0o177
	}
	if tio.Lowercase() && 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	if !t.lnext {
		switch {
		case c == '\r' && tio.IgnoreCR():
			return true, nil
		case c == '\r' && tio.MapCRtoNL():
			c = '\n'
		case c == '\n' && tio.MapNLtoCR():
			c = '\r'
		}
	}

	if !t.lnext && tio.FlowControl() {
		switch {
		case tio.IsStart(c):
			t.start()
			return true, nil
		case tio.IsStop(c):
			t.stop()
			return true, nil
		case tio.AnyRestarts():
			t.start()
		}
	}

	canon := tio.Canonical()
	if canon && !t.lnext {
		switch {
		case tio.IsEditing(c):
			if err := t.erase(c); err != nil && *echoErr == nil {
				*echoErr = err
			}
			return true, nil
		case tio.IsReprint(c):
			if err := t.reprint(c); err != nil && *echoErr == nil {
				*echoErr = err
			}
			return true, nil
		case tio.IsLnext(c):
			t.lnext = true
			if tio.EchoCtl() {
				for _, b := range []byte("^\b") {
					if err := t.opost(b); err != nil && *echoErr == nil {
						*echoErr = ENOMEM
					}
				}
			}
			return true, nil
		}
	}

	first, lit := t.editLen == 0, t.lnext
	if err := t.store(c); err != nil {
		return false, err
	}
	if first {
		t.lineCol = t.column
	}
	switch {
	case canon && tio.IsEOF(c) && !lit:
		// not echoed
	case tio.Echo(), c == '\n' && tio.EchoNL():
		echo(c)
	}
	return true, nil
}

// store appends c to the cooked queue and updates the line accounting.
func (t *TTY) store(c byte) error {
	if t.cookedq.Put(c) != nil {
		return ENOMEM
	}
	lit := t.lnext
	t.lnext = false
	if !t.termios.Canonical() {
		return nil
	}
	t.editLen++
	if !lit && t.termios.IsTerminator(c) {
		t.lines = append(t.lines, line{n: t.editLen, eof: t.termios.IsEOF(c)})
		t.editLen = 0
	}
	return nil
}

// echo writes c to the output queue as the user should see it.
func (t *TTY) echo(c byte) error {
	if isctrl(c) && !isspace(c) && t.termios.EchoCtl() {
		if t.outq.Remaining() < 2 {
			return ENOMEM
		}
		if err := t.outq.Put('^'); err != nil {
			return ENOMEM
		}
		if err := t.outq.Put(caret(c)); err != nil {
			t.outq.Unput()
			return ENOMEM
		}
		t.column += 2
		return nil
	}
	if err := t.opost(c); err != nil {
		return ENOMEM
	}
	return nil
}

// erase handles the ERASE, WERASE and KILL characters.
// Editing never reaches back past the start of the line being edited.
func (t *TTY) erase(c byte) error {
	tio := &t.termios
	var err error
	keep := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	erased := false
	switch {
	case tio.IsErase(c):
		if t.editLen > 0 {
			keep(t.rubout())
			erased = true
		}
	case tio.IsWerase(c):
		word := false
		for t.editLen > 0 {
			last, _ := t.cookedq.Last()
			if last == ' ' || last == '\t' {
				if word {
					break
				}
			} else {
				word = true
			}
			keep(t.rubout())
			erased = true
		}
	case tio.IsKill(c):
		for t.editLen > 0 {
			keep(t.rubout())
			erased = true
		}
		if tio.Echo() && !tio.VisualErase() {
			keep(t.echo(c))
			if tio.EchoKillNL() {
				keep(t.echo('\n'))
			}
		}
		return err
	}
	if erased && tio.Echo() && !tio.VisualErase() {
		keep(t.echo(c))
	}
	return err
}

// rubout removes the last byte of the line being edited and, with
// visual erase, erases it from the screen.
func (t *TTY) rubout() error {
	c, _ := t.cookedq.Unput()
	t.editLen--
	if !t.termios.VisualErase() {
		return nil
	}
	if c == '\t' {
		t.drv.DeleteTab(t)
		return nil
	}
	n := 1
	switch {
	case isctrl(c) && !isspace(c) && t.termios.EchoCtl():
		n = 2
	case isctrl(c):
		n = 0
	}
	for i := 0; i < n; i++ {
		for _, b := range []byte("\b \b") {
			if err := t.opost(b); err != nil {
				return ENOMEM
			}
		}
	}
	return nil
}

// reprint echoes the REPRINT character, a newline and the line being edited.
func (t *TTY) reprint(c byte) error {
	if !t.termios.Echo() {
		return nil
	}
	if err := t.echo(c); err != nil {
		return err
	}
	if err := t.echo('\n'); err != nil {
		return err
	}
	t.lineCol = t.column
	for _, b := range t.editLine() {
		if err := t.echo(b); err != nil {
			return err
		}
	}
	return nil
}

// opost appends c to the output queue with output processing,
// tracking the output column.
func (t *TTY) opost(c byte) error {
	tio := &t.termios
	if !tio.PostProcess() {
		return t.outq.Put(c)
	}
	col := t.column
	switch c {
	case '\n':
		if tio.MapNLtoCRNL() {
			if err := t.outq.Put('\r'); err != nil {
				return err
			}
			if err := t.outq.Put('\n'); err != nil {
				t.outq.Unput()
				return err
			}
			t.column = 0
			return nil
		}
	case '\r':
		col = 0
	case '\t':
		col = t.nextTab(col)
	case '\b':
		if col > 0 {
			col--
		}
	default:
		if tio.Uppercase() && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if !isctrl(c) {
			col++
		}
	}
	if err := t.outq.Put(c); err != nil {
		return err
	}
	t.column = col
	return nil
}
