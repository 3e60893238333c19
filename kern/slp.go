// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kern

import (
	"runtime"

	"rsc.io/tty/tty"
)

/*
 * Give up the processor till a wakeup occurs
 * on key. A signal, pending before the sleep
 * or arriving during it, ends the sleep with EINTR.
 * Callers of this routine must be prepared for
 * premature return, and check that the reason for
 * sleeping has gone away.
 */
func (p *Proc) Sleep(key any) error {
	if p.issig() {
		return tty.EINTR
	}
	select {
	case <-p.wake:
	default:
	}
	p.wkey = key
	p.Sys.cpu.Enable(func() { <-p.wake })
	if p.issig() {
		return tty.EINTR
	}
	return nil
}

/*
 * Wake up all processes sleeping on key.
 */
func (sys *System) Wakeup(key any) {
	for _, p := range sys.procs {
		if p.wkey != nil && p.wkey == key {
			sys.setrun(p)
		}
	}
}

/*
 * Set the process running.
 */
func (sys *System) setrun(p *Proc) {
	p.wkey = nil
	select {
	case p.wake <- true:
	default:
	}
	sys.runrun++
}

// NeedResched reports whether a process has been woken since the
// last Yield.
func (sys *System) NeedResched() bool { return sys.runrun > 0 }

// Yield lets the processes that have been woken run.
func (p *Proc) Yield() {
	p.Sys.runrun = 0
	p.Sys.cpu.Enable(runtime.Gosched)
}

// Asleep reports whether p is waiting for a wakeup.
func (p *Proc) Asleep() bool {
	defer p.Sys.cpu.Off().Restore()
	return p.wkey != nil
}
