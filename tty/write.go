// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

// Write writes b to the terminal on behalf of p, sleeping while the
// output queue is full. It returns the number of bytes accepted.
//
// With TOSTOP set, a member of a background process group gets SIGTTOU
// sent to its group and ERESTART, or EIO if the group is orphaned.
// A process that blocks or ignores SIGTTOU writes anyway.
// A signal that arrives after some bytes were accepted ends the write
// early with the count so far.
func (t *TTY) Write(p Proc, b []byte, fl Flags) (int, error) {
	defer t.cpu.Off().Restore()
	if err := t.checkWrite(p); err != nil {
		return 0, err
	}
	n := 0
	for {
		if p.SignalPending() {
			if n > 0 {
				return n, nil
			}
			return 0, ERESTART
		}
		for n < len(b) && t.opost(b[n]) == nil {
			n++
		}
		t.output()
		if n == len(b) {
			break
		}
		if fl&ONONBLOCK != 0 {
			if n > 0 {
				return n, nil
			}
			return 0, EAGAIN
		}
		if !t.outq.Empty() {
			if err := p.Sleep(writeWait{t}); err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
		}
		if t.k.NeedResched() {
			p.Yield()
		}
	}
	if t.k.NeedResched() {
		p.Yield()
	}
	return n, nil
}

func (t *TTY) checkWrite(p Proc) error {
	if p.CTTY() != t || p.Pgid() == t.pgid || !t.termios.StopBackground() {
		return nil
	}
	if p.SignalMasked(SIGTTOU) {
		return nil
	}
	if t.k.OrphanedGroup(p.Pgid()) {
		return EIO
	}
	t.k.SignalGroup(p.Pgid(), SIGTTOU)
	return ERESTART
}

// drainOutput waits until the output queue is empty.
func (t *TTY) drainOutput(p Proc) error {
	for {
		t.output()
		if t.outq.Empty() {
			return nil
		}
		if err := p.Sleep(writeWait{t}); err != nil {
			return err
		}
	}
}
