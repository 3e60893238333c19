// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kern is a small uniprocessor kernel for the terminal layer:
// a process table with sessions and process groups, sleep and wakeup,
// signals, and a clock with timeouts.
//
// The exported methods of System and Proc that take no lock are the
// ones package tty calls with interrupts already disabled; the rest
// disable interrupts themselves.
package kern

import (
	"rsc.io/tty/spl"
	"rsc.io/tty/tty"
)

/*
 * tunable variables
 */
const (
	NPROC = 50 /* max number of processes */
	NCALL = 20 /* max simultaneous time callouts */
)

var (
	_ tty.Kernel = (*System)(nil)
	_ tty.Proc   = (*Proc)(nil)
)

type System struct {
	cpu     spl.CPU
	procs   []*Proc
	nextPid int
	runrun  int /* a woken process wants the processor */
	ticks   uint64
	callout []callout
}

type Proc struct {
	Sys  *System
	pid  int
	ppid int
	pgid int
	sid  int
	ctty *tty.TTY

	wkey    any       /* sleep key, nil if running */
	wake    chan bool /* wakeup for a sleeping process */
	sig     uint32    /* pending signals */
	blocked uint32
	ignored uint32
}

func NewSystem() *System {
	return &System{nextPid: 1}
}

// NewProc creates a process. A child of parent inherits its session,
// process group, controlling terminal and signal dispositions; a process
// with no parent leads a new session.
func (sys *System) NewProc(parent *Proc) (*Proc, error) {
	defer sys.cpu.Off().Restore()
	if len(sys.procs) >= NPROC {
		return nil, tty.EAGAIN
	}
	p := &Proc{
		Sys:     sys,
		pid:     sys.nextPid,
		wake:    make(chan bool, 1),
		ignored: bit(tty.SIGWINCH),
	}
	sys.nextPid++
	if parent != nil {
		p.ppid = parent.pid
		p.pgid = parent.pgid
		p.sid = parent.sid
		p.ctty = parent.ctty
		p.blocked = parent.blocked
		p.ignored = parent.ignored
	} else {
		p.pgid = p.pid
		p.sid = p.pid
	}
	sys.procs = append(sys.procs, p)
	return p, nil
}

func (sys *System) lookpid(pid int) *Proc {
	for _, p := range sys.procs {
		if p.pid == pid {
			return p
		}
	}
	return nil
}

// Procs returns the process table.
func (sys *System) Procs() []*Proc {
	defer sys.cpu.Off().Restore()
	return append([]*Proc(nil), sys.procs...)
}

// Exit removes p from the process table.
func (p *Proc) Exit() {
	sys := p.Sys
	defer sys.cpu.Off().Restore()
	for i, p1 := range sys.procs {
		if p1 == p {
			sys.procs = append(sys.procs[:i], sys.procs[i+1:]...)
			break
		}
	}
	p.ctty = nil
}

// ReleaseCTTY clears the controlling terminal of every process
// that has t as its controlling terminal.
func (sys *System) ReleaseCTTY(t *tty.TTY) {
	for _, p := range sys.procs {
		if p.ctty == t {
			p.ctty = nil
		}
	}
}

// Setsid makes p the leader of a new session with no controlling terminal.
func (p *Proc) Setsid() error {
	defer p.Sys.cpu.Off().Restore()
	if p.pgid == p.pid {
		for _, p1 := range p.Sys.procs {
			if p1 != p && p1.pgid == p.pid {
				return tty.EPERM
			}
		}
	}
	p.sid = p.pid
	p.pgid = p.pid
	p.ctty = nil
	return nil
}

// Setpgid moves p to process group pgid, or to a new group led by p
// if pgid is 0. The group must be in p's session.
func (p *Proc) Setpgid(pgid int) error {
	defer p.Sys.cpu.Off().Restore()
	if p.sid == p.pid {
		return tty.EPERM
	}
	if pgid == 0 {
		pgid = p.pid
	}
	if pgid != p.pid {
		found := false
		for _, p1 := range p.Sys.procs {
			if p1.pgid == pgid && p1.sid == p.sid {
				found = true
				break
			}
		}
		if !found {
			return tty.EPERM
		}
	}
	p.pgid = pgid
	return nil
}

func (p *Proc) Pid() int            { return p.pid }
func (p *Proc) Ppid() int           { return p.ppid }
func (p *Proc) Pgid() int           { return p.pgid }
func (p *Proc) Sid() int            { return p.sid }
func (p *Proc) SessionLeader() bool { return p.sid == p.pid }
func (p *Proc) CTTY() *tty.TTY      { return p.ctty }
func (p *Proc) SetCTTY(t *tty.TTY)  { p.ctty = t }

// CPU returns the interrupt state.
func (sys *System) CPU() *spl.CPU { return &sys.cpu }
