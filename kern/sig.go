// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kern

import "rsc.io/tty/tty"

func bit(sig tty.Signal) uint32 { return 1 << uint(sig) }

/*
 * Send the specified signal to
 * all processes in process group pgid.
 * Called by the terminal layer for
 * interrupts, quits, suspends and
 * background access.
 */
func (sys *System) SignalGroup(pgid int, sig tty.Signal) {
	for _, p := range sys.procs {
		if p.pgid == pgid {
			sys.psignal(p, sig)
		}
	}
}

/*
 * Send the specified signal to
 * the specified process.
 * Ignored signals are discarded.
 */
func (sys *System) psignal(p *Proc, sig tty.Signal) {
	if sig <= 0 || sig >= tty.NSIG {
		return
	}
	if sig != tty.SIGKILL && p.ignored&bit(sig) != 0 {
		return
	}
	p.sig |= bit(sig)
	if p.wkey != nil && p.issig() {
		sys.setrun(p)
	}
}

// Kill sends sig to process pid.
func (sys *System) Kill(pid int, sig tty.Signal) error {
	defer sys.cpu.Off().Restore()
	p := sys.lookpid(pid)
	if p == nil {
		return tty.ESRCH
	}
	sys.psignal(p, sig)
	return nil
}

/*
 * Returns true if the process
 * has an unblocked signal pending.
 */
func (p *Proc) issig() bool {
	return p.sig&^(p.blocked&^bit(tty.SIGKILL)) != 0
}

func (p *Proc) SignalPending() bool { return p.issig() }

func (p *Proc) SignalMasked(sig tty.Signal) bool {
	return (p.blocked|p.ignored)&bit(sig) != 0
}

// Block blocks or unblocks sig. A blocked signal stays pending
// without interrupting sleeps.
func (p *Proc) Block(sig tty.Signal, on bool) {
	defer p.Sys.cpu.Off().Restore()
	if on {
		p.blocked |= bit(sig)
	} else {
		p.blocked &^= bit(sig)
	}
}

// Ignore sets whether sig is discarded on arrival.
// SIGWINCH starts out ignored.
func (p *Proc) Ignore(sig tty.Signal, on bool) {
	defer p.Sys.cpu.Off().Restore()
	if on {
		p.ignored |= bit(sig)
		p.sig &^= bit(sig)
	} else {
		p.ignored &^= bit(sig)
	}
}

// Pending reports whether sig is pending for p.
func (p *Proc) Pending(sig tty.Signal) bool {
	defer p.Sys.cpu.Off().Restore()
	return p.sig&bit(sig) != 0
}

// TakeSignal removes and returns the lowest numbered unblocked
// pending signal, as delivery would.
func (p *Proc) TakeSignal() (tty.Signal, bool) {
	defer p.Sys.cpu.Off().Restore()
	for sig := tty.Signal(1); sig < tty.NSIG; sig++ {
		if p.sig&bit(sig) != 0 && (sig == tty.SIGKILL || p.blocked&bit(sig) == 0) {
			p.sig &^= bit(sig)
			return sig, true
		}
	}
	return 0, false
}

// OrphanedGroup reports whether process group pgid is orphaned: no
// member has a parent in a different group of the same session.
func (sys *System) OrphanedGroup(pgid int) bool {
	for _, p := range sys.procs {
		if p.pgid != pgid {
			continue
		}
		if q := sys.lookpid(p.ppid); q != nil && q.pgid != pgid && q.sid == p.sid {
			return false
		}
	}
	return true
}
